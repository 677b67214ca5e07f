package session

import (
	"crypto/rand"
	"math/big"
	"sync"

	"kitesim/physics"
)

// SessionInfo is returned by the API for the session list.
type SessionInfo struct {
	Code    string `json:"code"`
	Clients int    `json:"clients"`
}

// Manager holds multiple sessions by code. Sessions are created on first
// join or via CreateSession, and removed when the last client leaves.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	params   physics.Params
}

func NewManager(params physics.Params) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		params:   params,
	}
}

// GetOrCreateSession returns the session for the given code, creating it
// if needed.
func (m *Manager) GetOrCreateSession(code string) *Session {
	if code == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[code]; ok {
		return s
	}
	s := New(m.params)
	s.Code = code
	s.OnEmpty = func(c string) {
		m.removeSession(c)
	}
	m.sessions[code] = s
	go s.Run()
	return s
}

func (m *Manager) removeSession(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[code]; ok {
		s.Stop()
		delete(m.sessions, code)
	}
}

const codeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CreateSession generates a unique 6-char code, creates the session, and
// returns the code.
func (m *Manager) CreateSession() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for {
		code := generateCode(6)
		if _, exists := m.sessions[code]; exists {
			continue
		}
		s := New(m.params)
		s.Code = code
		s.OnEmpty = func(c string) {
			m.removeSession(c)
		}
		m.sessions[code] = s
		go s.Run()
		return code
	}
}

// ListSessions returns all active sessions with code and client count.
func (m *Manager) ListSessions() []SessionInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]SessionInfo, 0, len(m.sessions))
	for code, s := range m.sessions {
		out = append(out, SessionInfo{Code: code, Clients: s.NumClients()})
	}
	return out
}

func generateCode(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(codeChars)))
	for i := range b {
		idx, _ := rand.Int(rand.Reader, max)
		b[i] = codeChars[idx.Int64()]
	}
	return string(b)
}
