package network

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"kitesim/protocol"
	"kitesim/session"
)

var upgrader = websocket.Upgrader{
	// For dev, allow all origins. Lock this down in prod.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	pingEvery    = 25 * time.Second
)

// Router builds the HTTP surface: health, session management, and the
// websocket attach point for a session code.
func Router(m *session.Manager) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.HandleFunc("/sessions", listSessionsHandler(m)).Methods("GET")
	r.HandleFunc("/sessions", createSessionHandler(m)).Methods("POST")
	r.HandleFunc("/ws/{code}", wsHandler(m))
	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func listSessionsHandler(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, m.ListSessions())
	}
}

func createSessionHandler(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := m.CreateSession()
		writeJSON(w, map[string]string{"code": code})
	}
}

// wsConn adapts a websocket connection to session.Conn. Session broadcast
// and the ping loop both write, hence the lock.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) Send(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

func wsHandler(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := mux.Vars(r)["code"]
		sess := m.GetOrCreateSession(code)
		if sess == nil {
			http.Error(w, "session code required", http.StatusBadRequest)
			return
		}

		raw, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade:", err)
			return
		}
		conn := &wsConn{conn: raw}

		raw.SetReadLimit(1 << 16)
		_ = raw.SetReadDeadline(time.Now().Add(readTimeout))
		raw.SetPongHandler(func(string) error {
			_ = raw.SetReadDeadline(time.Now().Add(readTimeout))
			return nil
		})

		// First message must be a hello.
		_, msg, err := raw.ReadMessage()
		if err != nil {
			_ = raw.Close()
			return
		}
		env, err := protocol.DecodeEnvelope(msg)
		if err != nil || env.T != protocol.MsgHello {
			_ = raw.Close()
			return
		}
		hello, err := protocol.DecodePayload[protocol.Hello](env)
		if err != nil {
			_ = raw.Close()
			return
		}

		reply := make(chan session.JoinResult, 1)
		sess.Inbox <- session.Join{Conn: conn, Name: hello.Name, Reply: reply}
		res := <-reply

		welcome, err := protocol.Encode(protocol.MsgWelcome, protocol.Welcome{
			ClientID: res.ClientID,
			TickHz:   protocol.SimTickHz,
		})
		if err == nil {
			_ = conn.Send(welcome)
		}

		done := make(chan struct{})
		go pingLoop(conn, done)

		readLoop(raw, sess, res.ClientID)
		close(done)
		sess.Inbox <- session.Leave{ClientID: res.ClientID}
	}
}

func pingLoop(c *wsConn, done <-chan struct{}) {
	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func readLoop(raw *websocket.Conn, sess *session.Session, clientID string) {
	for {
		_, msg, err := raw.ReadMessage()
		if err != nil {
			return
		}
		env, err := protocol.DecodeEnvelope(msg)
		if err != nil {
			continue
		}
		switch env.T {
		case protocol.MsgSteer:
			steer, err := protocol.DecodePayload[protocol.Steer](env)
			if err != nil {
				continue
			}
			sess.Inbox <- session.Steer{ClientID: clientID, S: steer.S}
		case protocol.MsgPause:
			pause, err := protocol.DecodePayload[protocol.Pause](env)
			if err != nil {
				continue
			}
			sess.Inbox <- session.SetPaused{Paused: pause.Paused}
		case protocol.MsgReset:
			sess.Inbox <- session.Reset{}
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
