package protocol

// Messages coming in from the client.

type Hello struct {
	V    int    `json:"v"`              // protocol version
	Name string `json:"name,omitempty"` // optional pilot name
}

type Steer struct {
	S float64 `json:"s"` // -1..1 bar steering signal
}

type Pause struct {
	Paused bool `json:"paused"`
}
