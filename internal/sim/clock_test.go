package sim

import (
	"testing"
	"time"
)

func TestClock_WinsExactlyAtDuration(t *testing.T) {
	c := NewClock(720)
	wins := 0
	prev := 0
	for i := 0; i < 800; i++ {
		if c.Tick() == OutcomeWon && c.Elapsed == 720 && prev < 720 {
			wins++
		}
		if c.Elapsed < prev {
			t.Fatalf("elapsed went backwards: %d → %d", prev, c.Elapsed)
		}
		if c.Elapsed > c.Duration {
			t.Fatalf("elapsed %d exceeds duration", c.Elapsed)
		}
		prev = c.Elapsed
	}
	if wins != 1 {
		t.Fatalf("expected a single transition to won, got %d", wins)
	}
	if c.Remaining() != 0 {
		t.Fatalf("remaining %d after the win", c.Remaining())
	}
}

func TestClock_FreezeOnCapture(t *testing.T) {
	c := NewClock(720)
	c.Tick()
	c.Freeze(OutcomeCaptured)
	if c.Tick() != OutcomeCaptured || c.Elapsed != 1 {
		t.Fatalf("frozen clock advanced: %d %s", c.Elapsed, c.Outcome())
	}
	c.Freeze(OutcomeWon)
	if c.Outcome() != OutcomeCaptured {
		t.Fatal("a decided outcome must not change")
	}
	c.Reset()
	if c.Elapsed != 0 || c.Outcome() != OutcomeOngoing {
		t.Fatal("reset should rewind the clock")
	}
}

func TestSecondTimer_CarriesRemainder(t *testing.T) {
	var st SecondTimer
	if n := st.Add(1500 * time.Millisecond); n != 1 {
		t.Fatalf("1.5s → %d seconds", n)
	}
	if n := st.Add(600 * time.Millisecond); n != 1 {
		t.Fatalf("carried 0.5s + 0.6s → %d seconds", n)
	}
	if n := st.Add(-time.Second); n != 0 {
		t.Fatalf("negative delta → %d seconds", n)
	}
	if n := st.Add(3 * time.Second); n != 3 {
		t.Fatalf("3s → %d seconds", n)
	}
}

func TestSession_SurvivingTheNightWinsOnce(t *testing.T) {
	ts := NewTestSim(
		WithSimSeed(5),
		WithSimTuning(func(tu *Tuning) { tu.DurationSeconds = 3 }),
		WithPlayerAt(0, 0, 0),
		WithAgentAt(300, 300, 0),
	)
	ts.RunTicks(60 * 6)
	dumpLog(t, ts)

	if ts.Session.Outcome() != OutcomeWon {
		t.Fatalf("expected won, got %s", ts.Session.Outcome())
	}
	if ts.CountEvents(EventWon) != 1 {
		t.Fatalf("expected one won event, got %d", ts.CountEvents(EventWon))
	}
	if e, ok := ts.SimLog.LastOf("outcome", "won"); !ok || e.Tick != 180 {
		t.Fatalf("expected the win at tick 180, got %+v", e)
	}
	if ts.Session.Clock().Elapsed != 3 {
		t.Fatalf("clock should stop at duration, got %d", ts.Session.Clock().Elapsed)
	}
}

func TestSession_ElapseWallClock(t *testing.T) {
	reg := NewRegistry(6, 4)
	s := NewSession(reg, Spawns{Player: V3(0, 1.5, 0), Agent: V3(500, -0.8, 500)})
	for i := 0; i < 719; i++ {
		if s.Elapse(time.Second) != OutcomeOngoing {
			t.Fatalf("won early at %d seconds", i+1)
		}
	}
	if s.Elapse(999*time.Millisecond) != OutcomeOngoing {
		t.Fatal("a partial second must not count")
	}
	if s.Elapse(time.Millisecond) != OutcomeWon {
		t.Fatal("expected the win once 720 seconds have passed")
	}
	if s.Elapse(time.Hour) != OutcomeWon || s.Clock().Elapsed != 720 {
		t.Fatal("won session should be frozen")
	}
}
