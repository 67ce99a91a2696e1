package relay

import "github.com/Garsondee/Night-Watch/internal/sim"

// Message types. Every message is a JSON object with a "type" field.
const (
	TypeWelcome = "welcome"
	TypeInput   = "input"
	TypeFrame   = "frame"
)

// WelcomeMsg is the first message on a new connection.
type WelcomeMsg struct {
	Type       string `json:"type"`
	Session    string `json:"session"`
	TickRateHz int    `json:"tick_rate_hz"`
	Duration   int    `json:"duration"`
}

// InputMsg carries the client's current controls. The latest message wins;
// a restart request is held until the next tick consumes it.
type InputMsg struct {
	Type string `json:"type"`
	sim.Input
}

// FrameMsg is sent once per tick.
type FrameMsg struct {
	Type  string    `json:"type"`
	Frame sim.Frame `json:"frame"`
}
