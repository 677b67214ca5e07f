package session

type Conn interface {
	Send([]byte) error
	Close() error
}

// Join: issued once after hello parsed
type Join struct {
	Conn  Conn
	Name  string
	Reply chan<- JoinResult
}

type JoinResult struct {
	ClientID string
}

// Steer: latest bar steering signal from a client, -1..1
type Steer struct {
	ClientID string
	S        float64
}

// SetPaused: freeze or resume the tick loop (skipped ticks, no partial ones)
type SetPaused struct {
	Paused bool
}

// Reset: reinitialize all body and constraint state
type Reset struct{}

// Leave: issued on disconnect
type Leave struct {
	ClientID string
}
