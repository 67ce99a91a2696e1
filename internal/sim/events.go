package sim

import "fmt"

// EventKind tags a transition a presentation layer may react to.
type EventKind int

const (
	EventSpotted         EventKind = iota // patrol → chase
	EventLostSight                        // chase → patrol
	EventCaptured                         // chase → captured, outcome decided
	EventCaptureComplete                  // close-up finished
	EventWon                              // survived the full duration
	EventRestarted                        // actors and clock reset
	EventPlayerStep                       // player footfall
	EventAgentStep                        // agent footfall
)

func (k EventKind) String() string {
	switch k {
	case EventSpotted:
		return "spotted"
	case EventLostSight:
		return "lost_sight"
	case EventCaptured:
		return "captured"
	case EventCaptureComplete:
		return "capture_complete"
	case EventWon:
		return "won"
	case EventRestarted:
		return "restarted"
	case EventPlayerStep:
		return "player_step"
	case EventAgentStep:
		return "agent_step"
	default:
		return "unknown"
	}
}

func (k EventKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *EventKind) UnmarshalText(b []byte) error {
	for c := EventSpotted; c <= EventAgentStep; c++ {
		if c.String() == string(b) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("sim: unknown event %q", b)
}

// Event is one transition record. Distance is the agent→player ground
// distance at the moment of the event where that is meaningful.
type Event struct {
	Tick     int       `json:"tick"`
	Kind     EventKind `json:"kind"`
	Distance float64   `json:"distance,omitempty"`
}

func (e Event) String() string {
	if e.Distance > 0 {
		return fmt.Sprintf("T=%d %s d=%.2f", e.Tick, e.Kind, e.Distance)
	}
	return fmt.Sprintf("T=%d %s", e.Tick, e.Kind)
}
