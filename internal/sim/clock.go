package sim

import "time"

// Clock is the survival countdown. It advances in whole seconds and stops
// for good once an outcome is decided.
type Clock struct {
	Elapsed  int
	Duration int

	outcome Outcome
}

// NewClock creates a clock that declares a win after duration seconds.
func NewClock(duration int) *Clock {
	return &Clock{Duration: duration}
}

// Tick advances one second while the session is ongoing.
func (c *Clock) Tick() Outcome {
	if c.outcome != OutcomeOngoing {
		return c.outcome
	}
	c.Elapsed++
	if c.Elapsed >= c.Duration {
		c.Elapsed = c.Duration
		c.outcome = OutcomeWon
	}
	return c.outcome
}

// Freeze stops the clock with a decided outcome.
func (c *Clock) Freeze(o Outcome) {
	if c.outcome == OutcomeOngoing {
		c.outcome = o
	}
}

// Remaining is the number of seconds left to survive.
func (c *Clock) Remaining() int { return c.Duration - c.Elapsed }

// Outcome returns the clock's view of the session.
func (c *Clock) Outcome() Outcome { return c.outcome }

// Reset rewinds the clock for a new attempt.
func (c *Clock) Reset() {
	c.Elapsed = 0
	c.outcome = OutcomeOngoing
}

// SecondTimer turns wall-clock deltas into whole-second ticks, carrying
// the remainder between calls.
type SecondTimer struct {
	acc time.Duration
}

// Add accumulates d and returns how many whole seconds completed.
func (t *SecondTimer) Add(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	t.acc += d
	n := int(t.acc / time.Second)
	t.acc -= time.Duration(n) * time.Second
	return n
}

// Reset discards any partial second.
func (t *SecondTimer) Reset() { t.acc = 0 }
