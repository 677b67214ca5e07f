package session

import (
	"math"
	"sync"
	"time"

	uuid "github.com/satori/go.uuid"

	"kitesim/geom"
	"kitesim/physics"
	"kitesim/protocol"
)

// Session owns one kite rig and runs it at a fixed tick rate. All access
// goes through the Inbox; the goroutine running Run is the only one that
// touches the rig, so the physics core stays single-threaded as required.
type Session struct {
	Inbox          chan any
	tickHz         int
	broadcastEvery int
	rig            *physics.Rig
	report         physics.StepReport
	clientsMu      sync.RWMutex // guards clients against ListSessions reads
	clients        map[string]Conn
	steer          float64
	paused         bool
	quit           chan struct{}

	Code    string           // session code (e.g. "ABC123")
	OnEmpty func(code string) // called when last client leaves
}

func New(params physics.Params) *Session {
	broadcastEvery := protocol.SimTickHz / protocol.BroadcastHz
	if broadcastEvery <= 0 {
		broadcastEvery = 1
	}
	return &Session{
		Inbox:          make(chan any, 256),
		tickHz:         protocol.SimTickHz,
		broadcastEvery: broadcastEvery,
		rig:            physics.NewRig(params),
		clients:        make(map[string]Conn),
		quit:           make(chan struct{}),
	}
}

func (s *Session) Stop() {
	close(s.quit)
}

// NumClients returns the current number of connected clients. Safe to
// call from outside the session goroutine.
func (s *Session) NumClients() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

func (s *Session) Run() {
	ticker := time.NewTicker(time.Second / time.Duration(s.tickHz))
	defer ticker.Stop()

	dt := 1.0 / float64(s.tickHz)
	for {
		select {
		case <-s.quit:
			return
		case cmd := <-s.Inbox:
			s.handleCommand(cmd)
		case <-ticker.C:
			if s.paused {
				continue
			}
			s.rig.SetBarRoll(s.steer * s.rig.Params.MaxBarRoll)
			s.report = s.rig.Step(dt)
			if s.report.Tick%s.broadcastEvery == 0 {
				s.broadcastState()
			}
		}
	}
}

func (s *Session) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case Join:
		clientID := uuid.NewV4().String()
		s.clientsMu.Lock()
		s.clients[clientID] = c.Conn
		s.clientsMu.Unlock()
		c.Reply <- JoinResult{ClientID: clientID}
		s.sendStateTo(c.Conn)
	case Steer:
		if _, ok := s.clients[c.ClientID]; !ok {
			return
		}
		s.steer = math.Max(-1, math.Min(1, c.S))
	case SetPaused:
		s.paused = c.Paused
		s.broadcastState()
	case Reset:
		s.rig.Reset()
		s.steer = 0
		s.report = physics.StepReport{}
		s.broadcastState()
	case Leave:
		s.handleLeave(c.ClientID)
	}
}

func (s *Session) handleLeave(clientID string) {
	s.removeClient(clientID)
	if len(s.clients) == 0 && s.OnEmpty != nil && s.Code != "" {
		s.OnEmpty(s.Code)
	}
}

func (s *Session) removeClient(clientID string) {
	if c, ok := s.clients[clientID]; ok {
		_ = c.Close()
	}
	s.clientsMu.Lock()
	delete(s.clients, clientID)
	s.clientsMu.Unlock()
}

func (s *Session) broadcastState() {
	b, err := protocol.Encode(protocol.MsgState, s.buildSnapshot())
	if err != nil {
		return
	}

	var failed []string
	for id, c := range s.clients {
		if err := c.Send(b); err != nil {
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		s.removeClient(id)
	}
}

func (s *Session) sendStateTo(c Conn) {
	b, err := protocol.Encode(protocol.MsgState, s.buildSnapshot())
	if err != nil {
		return
	}
	_ = c.Send(b)
}

func (s *Session) buildSnapshot() protocol.State {
	snapshot := protocol.State{
		Tick:   s.report.Tick,
		Paused: s.paused,
		Wind:   wireVec(s.report.Wind),
		Kite:   wireBody(s.rig.Kite),
		Bar:    wireBody(s.rig.Bar),
		Lines:  make([]protocol.LineSnapshot, 0, len(s.report.Lines)),
		Faults: protocol.FaultsSnapshot{
			NumericalResets:    s.report.Faults.NumericalResets,
			InfeasibleBridles:  s.report.Faults.InfeasibleBridles,
			Overstretches:      s.report.Faults.Overstretches,
			SkippedConstraints: s.report.Faults.SkippedConstraints,
		},
	}
	for _, l := range s.report.Lines {
		snapshot.Lines = append(snapshot.Lines, protocol.LineSnapshot{
			Taut:    l.Taut,
			Length:  l.Length,
			Tension: l.Tension,
		})
	}
	for _, f := range s.report.SurfaceForces {
		snapshot.Surfaces = append(snapshot.Surfaces, wireVec(f))
	}
	return snapshot
}

func wireVec(v geom.Vec3) protocol.Vec3 {
	return protocol.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

func wireBody(b *physics.RigidBody) protocol.BodySnapshot {
	return protocol.BodySnapshot{
		Pos: wireVec(b.Position),
		Vel: wireVec(b.Velocity),
		QW:  b.Orientation.W,
		QX:  b.Orientation.X,
		QY:  b.Orientation.Y,
		QZ:  b.Orientation.Z,
	}
}
