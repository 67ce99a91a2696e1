package game

import (
	"strings"
	"testing"

	"github.com/Garsondee/Night-Watch/internal/sim"
)

func TestEventLog_RingKeepsNewest(t *testing.T) {
	el := NewEventLog()
	for i := 0; i < logMaxEntries+5; i++ {
		el.Add(i, sim.EventSpotted, "x")
	}
	if el.Len() != logMaxEntries {
		t.Fatalf("expected %d entries, got %d", logMaxEntries, el.Len())
	}
	got := el.Recent()
	if got[0].Tick != 5 {
		t.Fatalf("oldest entry should be tick 5, got %d", got[0].Tick)
	}
	if got[len(got)-1].Tick != logMaxEntries+4 {
		t.Fatalf("newest entry should be last, got tick %d", got[len(got)-1].Tick)
	}
}

func TestEventLog_RecordSkipsFootsteps(t *testing.T) {
	el := NewEventLog()
	el.Record(sim.Frame{Events: []sim.Event{
		{Tick: 1, Kind: sim.EventPlayerStep},
		{Tick: 1, Kind: sim.EventAgentStep, Distance: 4},
		{Tick: 1, Kind: sim.EventSpotted, Distance: 7.25},
		{Tick: 2, Kind: sim.EventWon},
	}})
	got := el.Recent()
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(got), got)
	}
	if !strings.Contains(got[0].Message, "spotted") || !strings.Contains(got[0].Message, "7.2") {
		t.Fatalf("unexpected message %q", got[0].Message)
	}
	if got[1].Kind != sim.EventWon {
		t.Fatalf("expected won entry, got %s", got[1].Kind)
	}
}
