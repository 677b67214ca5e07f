package session

import (
	"testing"
	"time"

	"kitesim/physics"
	"kitesim/protocol"
)

type fakeConn struct {
	sendCh chan []byte
}

func (f *fakeConn) Send(b []byte) error {
	cp := make([]byte, len(b))
	copy(cp, b)
	f.sendCh <- cp
	return nil
}

func (f *fakeConn) Close() error {
	return nil
}

func quietParams() physics.Params {
	p := physics.DefaultParams()
	p.Turbulence = 0
	p.GustAmplitude = 0
	return p
}

// nextState pulls state snapshots off a fake conn until the deadline.
func nextState(t *testing.T, fc *fakeConn, timeout time.Duration) (protocol.State, bool) {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case b := <-fc.sendCh:
			env, err := protocol.DecodeEnvelope(b)
			if err != nil || env.T != protocol.MsgState {
				continue
			}
			st, err := protocol.DecodePayload[protocol.State](env)
			if err != nil {
				t.Fatalf("decode state: %v", err)
			}
			return st, true
		case <-deadline:
			return protocol.State{}, false
		}
	}
}

func TestSessionJoinReceivesSnapshots(t *testing.T) {
	s := New(quietParams())
	go s.Run()
	defer s.Stop()

	fc := &fakeConn{sendCh: make(chan []byte, 64)}
	reply := make(chan JoinResult, 1)
	s.Inbox <- Join{Conn: fc, Name: "pilot", Reply: reply}
	res := <-reply
	if res.ClientID == "" {
		t.Fatalf("expected client id, got empty")
	}

	st, ok := nextState(t, fc, time.Second)
	if !ok {
		t.Fatalf("timed out waiting for state broadcast")
	}
	if len(st.Lines) != 2 {
		t.Fatalf("snapshot has %d lines, want 2", len(st.Lines))
	}
}

func TestSessionTwoClientsGetUniqueIDs(t *testing.T) {
	s := New(quietParams())
	go s.Run()
	defer s.Stop()

	fc1 := &fakeConn{sendCh: make(chan []byte, 64)}
	fc2 := &fakeConn{sendCh: make(chan []byte, 64)}
	reply1 := make(chan JoinResult, 1)
	reply2 := make(chan JoinResult, 1)

	s.Inbox <- Join{Conn: fc1, Name: "a", Reply: reply1}
	res1 := <-reply1
	s.Inbox <- Join{Conn: fc2, Name: "b", Reply: reply2}
	res2 := <-reply2

	if res1.ClientID == "" || res2.ClientID == "" {
		t.Fatalf("expected non-empty ids, got %q and %q", res1.ClientID, res2.ClientID)
	}
	if res1.ClientID == res2.ClientID {
		t.Fatalf("expected unique client ids, got same: %q", res1.ClientID)
	}
}

func TestSessionTickAdvancesInSnapshots(t *testing.T) {
	s := New(quietParams())
	go s.Run()
	defer s.Stop()

	fc := &fakeConn{sendCh: make(chan []byte, 256)}
	reply := make(chan JoinResult, 1)
	s.Inbox <- Join{Conn: fc, Name: "pilot", Reply: reply}
	<-reply

	first, ok := nextState(t, fc, time.Second)
	if !ok {
		t.Fatalf("no first snapshot")
	}
	deadline := time.After(time.Second)
	for {
		st, ok := nextState(t, fc, time.Second)
		if !ok {
			t.Fatalf("no follow-up snapshot")
		}
		if st.Tick > first.Tick {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("tick never advanced past %d", first.Tick)
		default:
		}
	}
}

func TestSessionPauseFreezesTick(t *testing.T) {
	s := New(quietParams())
	go s.Run()
	defer s.Stop()

	fc := &fakeConn{sendCh: make(chan []byte, 256)}
	reply := make(chan JoinResult, 1)
	s.Inbox <- Join{Conn: fc, Name: "pilot", Reply: reply}
	<-reply

	s.Inbox <- SetPaused{Paused: true}

	// Drain anything sent before the pause landed, then sample.
	time.Sleep(100 * time.Millisecond)
	for len(fc.sendCh) > 0 {
		<-fc.sendCh
	}
	s.Inbox <- SetPaused{Paused: true} // forces a broadcast while paused
	st1, ok := nextState(t, fc, time.Second)
	if !ok {
		t.Fatalf("no snapshot while paused")
	}
	time.Sleep(100 * time.Millisecond)
	s.Inbox <- SetPaused{Paused: true}
	st2, ok := nextState(t, fc, time.Second)
	if !ok {
		t.Fatalf("no second snapshot while paused")
	}
	if st2.Tick != st1.Tick {
		t.Fatalf("tick advanced while paused: %d -> %d", st1.Tick, st2.Tick)
	}
	if !st2.Paused {
		t.Fatalf("snapshot not flagged paused")
	}
}

func TestSessionResetRewindsTick(t *testing.T) {
	s := New(quietParams())
	go s.Run()
	defer s.Stop()

	fc := &fakeConn{sendCh: make(chan []byte, 256)}
	reply := make(chan JoinResult, 1)
	s.Inbox <- Join{Conn: fc, Name: "pilot", Reply: reply}
	<-reply

	// Let it tick for a while.
	deadline := time.After(2 * time.Second)
	for {
		st, ok := nextState(t, fc, time.Second)
		if !ok {
			t.Fatalf("no snapshot before reset")
		}
		if st.Tick > 10 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("session never reached tick 10")
		default:
		}
	}

	s.Inbox <- Reset{}

	deadline = time.After(time.Second)
	for {
		st, ok := nextState(t, fc, time.Second)
		if !ok {
			t.Fatalf("no snapshot after reset")
		}
		if st.Tick <= 10 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("tick never rewound after reset")
		default:
		}
	}
}

func TestSessionSteerTiltsBar(t *testing.T) {
	s := New(quietParams())
	go s.Run()
	defer s.Stop()

	fc := &fakeConn{sendCh: make(chan []byte, 256)}
	reply := make(chan JoinResult, 1)
	s.Inbox <- Join{Conn: fc, Name: "pilot", Reply: reply}
	res := <-reply

	s.Inbox <- Steer{ClientID: res.ClientID, S: 1}

	deadline := time.After(2 * time.Second)
	for {
		st, ok := nextState(t, fc, time.Second)
		if !ok {
			t.Fatalf("no snapshot after steer")
		}
		// Full steer rolls the bar well away from identity.
		if st.Bar.QX != 0 || st.Bar.QW != 1 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("bar orientation never changed under full steer")
		default:
		}
	}
}

func TestManagerCountsClientsOfLiveSession(t *testing.T) {
	m := NewManager(quietParams())
	code := m.CreateSession()
	s := m.GetOrCreateSession(code)

	fc1 := &fakeConn{sendCh: make(chan []byte, 256)}
	fc2 := &fakeConn{sendCh: make(chan []byte, 256)}
	reply := make(chan JoinResult, 1)
	s.Inbox <- Join{Conn: fc1, Name: "a", Reply: reply}
	<-reply
	s.Inbox <- Join{Conn: fc2, Name: "b", Reply: reply}
	res2 := <-reply

	// The list endpoint reads the count from outside the session
	// goroutine while it keeps ticking and broadcasting.
	waitForCount := func(want int) {
		t.Helper()
		deadline := time.After(2 * time.Second)
		for {
			for _, info := range m.ListSessions() {
				if info.Code == code && info.Clients == want {
					return
				}
			}
			select {
			case <-deadline:
				t.Fatalf("session %q never reported %d clients", code, want)
			case <-time.After(10 * time.Millisecond):
			}
		}
	}
	waitForCount(2)

	s.Inbox <- Leave{ClientID: res2.ClientID}
	waitForCount(1)
}

func TestManagerCreatesAndListsSessions(t *testing.T) {
	m := NewManager(quietParams())
	code := m.CreateSession()
	if len(code) != 6 {
		t.Fatalf("session code = %q, want 6 chars", code)
	}

	infos := m.ListSessions()
	found := false
	for _, info := range infos {
		if info.Code == code {
			found = true
		}
	}
	if !found {
		t.Fatalf("created session %q not listed", code)
	}

	if m.GetOrCreateSession(code) == nil {
		t.Fatalf("expected to fetch existing session")
	}
	if m.GetOrCreateSession("") != nil {
		t.Fatalf("empty code should not create a session")
	}
}
