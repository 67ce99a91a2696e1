package game

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/Garsondee/Night-Watch/internal/sim"
)

const reportWindowTicks = 600

// sessionReport formats the last lastTicks ticks of a session for pasting
// into a bug report.
func sessionReport(s *sim.Session, lastTicks int) string {
	if lastTicks <= 0 {
		lastTicks = reportWindowTicks
	}
	toTick := s.Ticks()
	fromTick := max(0, toTick-lastTicks+1)

	var b strings.Builder
	fmt.Fprintf(&b, "--- Night Watch session report ---\n")
	fmt.Fprintf(&b, "session=%s seed=%d tick_range=[%d..%d]\n", s.ID, s.Seed(), fromTick, toTick)
	b.WriteString(s.SimLog().Summary(s))
	b.WriteString("\n== log ==\n")
	if lines := s.SimLog().FormatRange(fromTick, toTick); lines != "" {
		b.WriteString(lines)
	} else {
		b.WriteString("(no entries)\n")
	}
	return b.String()
}

// copyReport puts the session report on the system clipboard.
func copyReport(s *sim.Session) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard unavailable on this system")
	}
	return clipboard.WriteAll(sessionReport(s, reportWindowTicks))
}
