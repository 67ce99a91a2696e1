package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"

	"github.com/Garsondee/Night-Watch/internal/sim"
)

const (
	logPanelWidth = 260
	logMaxEntries = 60
	logLineHeight = 11
)

// LogEntry is a single line in the event log.
type LogEntry struct {
	Tick    int
	Kind    sim.EventKind
	Message string
}

// EventLog is a ring buffer of session events rendered on-screen.
type EventLog struct {
	entries []LogEntry
	head    int
	count   int
}

func NewEventLog() *EventLog {
	return &EventLog{entries: make([]LogEntry, logMaxEntries)}
}

// Add appends an entry, overwriting the oldest once full.
func (el *EventLog) Add(tick int, kind sim.EventKind, msg string) {
	el.entries[el.head] = LogEntry{Tick: tick, Kind: kind, Message: msg}
	el.head = (el.head + 1) % logMaxEntries
	if el.count < logMaxEntries {
		el.count++
	}
}

// Record adds the events of one frame. Footsteps are too frequent to be
// useful in the panel and are skipped.
func (el *EventLog) Record(f sim.Frame) {
	for _, e := range f.Events {
		switch e.Kind {
		case sim.EventPlayerStep, sim.EventAgentStep:
			continue
		case sim.EventSpotted, sim.EventLostSight, sim.EventCaptured:
			el.Add(e.Tick, e.Kind, fmt.Sprintf("%s d=%.1f", e.Kind, e.Distance))
		default:
			el.Add(e.Tick, e.Kind, e.Kind.String())
		}
	}
}

// Len returns the number of stored entries.
func (el *EventLog) Len() int { return el.count }

// Recent returns entries in chronological order (oldest first).
func (el *EventLog) Recent() []LogEntry {
	result := make([]LogEntry, el.count)
	for i := 0; i < el.count; i++ {
		idx := (el.head - el.count + i + logMaxEntries) % logMaxEntries
		result[i] = el.entries[idx]
	}
	return result
}

func eventColor(k sim.EventKind) color.Color {
	switch k {
	case sim.EventSpotted, sim.EventCaptured:
		return colornames.Orangered
	case sim.EventLostSight:
		return colornames.Khaki
	case sim.EventWon, sim.EventCaptureComplete:
		return colornames.Palegreen
	default:
		return colornames.Slategray
	}
}

// Draw renders the log panel on the right side of the screen.
func (el *EventLog) Draw(screen *ebiten.Image, panelX int, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), float32(panelH), color.RGBA{R: 10, G: 10, B: 14, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, colornames.Darkslategray, false)

	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), 16, color.RGBA{R: 20, G: 20, B: 30, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, "EVENTS", panelX+8, 2)
	vector.StrokeLine(screen, float32(panelX), 16, float32(panelX+logPanelWidth), 16, 1.0, colornames.Darkslategray, false)

	entries := el.Recent()
	maxVisible := (panelH - 24) / logLineHeight
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}

	y := 20
	for i, e := range entries {
		if i >= len(entries)-3 {
			vector.FillRect(screen, float32(panelX+2), float32(y), float32(logPanelWidth-4), float32(logLineHeight), color.RGBA{R: 30, G: 30, B: 44, A: 160}, false)
		}
		vector.FillRect(screen, float32(panelX+5), float32(y+3), 3, 5, eventColor(e.Kind), false)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%5d %s", e.Tick, e.Message), panelX+12, y)
		y += logLineHeight
	}
}
