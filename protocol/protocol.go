package protocol

import (
	"encoding/json"
)

const (
	MsgHello   = "hello"
	MsgSteer   = "steer"
	MsgPause   = "pause"
	MsgReset   = "reset"
	MsgWelcome = "welcome"
	MsgState   = "state"
)

const (
	SimTickHz     = 60
	ClientInputHz = 30
	BroadcastHz   = 20
)

type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"` // raw payload bytes
}
