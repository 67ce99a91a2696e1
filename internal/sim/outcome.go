package sim

import "fmt"

// Outcome describes how a session ended, if it has.
type Outcome int

const (
	OutcomeOngoing  Outcome = iota // clock running, agent active
	OutcomeWon                     // survived until dawn
	OutcomeCaptured                // the agent closed the distance
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOngoing:
		return "ongoing"
	case OutcomeWon:
		return "won"
	case OutcomeCaptured:
		return "captured"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further simulation happens until restart.
func (o Outcome) Terminal() bool { return o != OutcomeOngoing }

// MarshalText lets outcomes appear by name in frames and traces.
func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Outcome) UnmarshalText(b []byte) error {
	for c := OutcomeOngoing; c <= OutcomeCaptured; c++ {
		if c.String() == string(b) {
			*o = c
			return nil
		}
	}
	return fmt.Errorf("sim: unknown outcome %q", b)
}
