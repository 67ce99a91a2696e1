package game

import (
	"math"
	"strings"
	"testing"

	"github.com/Garsondee/Night-Watch/internal/sim"
)

func TestSessionReport(t *testing.T) {
	ts := sim.NewTestSim(
		sim.WithPlayerAt(0, 0, 0),
		sim.WithAgentAt(0, 6, math.Pi),
		sim.WithAgentState(sim.ChaseState()),
	)
	ts.RunTicks(60)

	r := sessionReport(ts.Session, 0)
	for _, want := range []string{"session=testsim-1", "seed=1", "Outcome: captured", "== log =="} {
		if !strings.Contains(r, want) {
			t.Fatalf("report missing %q:\n%s", want, r)
		}
	}
}

func TestSessionReport_WindowLimitsLog(t *testing.T) {
	ts := sim.NewTestSim(sim.WithWall(5, 5, 6, 6))
	ts.RunTicks(400)
	r := sessionReport(ts.Session, 10)
	if !strings.Contains(r, "tick_range=[391..400]") {
		t.Fatalf("unexpected range:\n%s", r)
	}
}
