package protocol

type Welcome struct {
	ClientID string `json:"clientId"`
	TickHz   int    `json:"tickHz"`
}

// State is the broadcast snapshot of one simulation tick.
type State struct {
	Tick     int            `json:"tick"`
	Paused   bool           `json:"paused,omitempty"`
	Wind     Vec3           `json:"wind"`
	Kite     BodySnapshot   `json:"kite"`
	Bar      BodySnapshot   `json:"bar"`
	Lines    []LineSnapshot `json:"lines"`
	Surfaces []Vec3         `json:"surfaces,omitempty"` // per-surface force vectors
	Faults   FaultsSnapshot `json:"faults"`
}

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type BodySnapshot struct {
	Pos Vec3    `json:"pos"`
	Vel Vec3    `json:"vel"`
	QW  float64 `json:"qw"`
	QX  float64 `json:"qx"`
	QY  float64 `json:"qy"`
	QZ  float64 `json:"qz"`
}

type LineSnapshot struct {
	Taut    bool    `json:"taut"`
	Length  float64 `json:"length"`
	Tension float64 `json:"tension"`
}

type FaultsSnapshot struct {
	NumericalResets    int `json:"numericalResets,omitempty"`
	InfeasibleBridles  int `json:"infeasibleBridles,omitempty"`
	Overstretches      int `json:"overstretches,omitempty"`
	SkippedConstraints int `json:"skippedConstraints,omitempty"`
}
