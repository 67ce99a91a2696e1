// Package game hosts a session in a desktop window with a top-down debug
// view. The first-person renderer lives outside this module and talks to a
// session through the relay; this host is for tuning and diagnosis.
package game

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/Garsondee/Night-Watch/internal/config"
	"github.com/Garsondee/Night-Watch/internal/sim"
)

// borderWidth is the pixel gap between the window edge and the map.
const borderWidth = 16

// maxFrameGap caps the wall time fed to the clock after a stall, so a
// dragged window does not fast-forward the night.
const maxFrameGap = 250 * time.Millisecond

type Game struct {
	sess *sim.Session
	cfg  config.HostConfig
	log  *zap.Logger

	look    *sim.Look
	keys    keyEdges
	pointer pointer
	grabbed bool

	events *EventLog
	last   sim.Frame
	prev   time.Time

	paused   bool
	showCone bool
	showHelp bool
	status   string
	statusT  int

	// World-to-screen mapping.
	minX, minZ float64
	ppu        float64
	mapW, mapH int
	width      int
	height     int

	coneBuf *ebiten.Image
}

// New wraps a session. The session is driven from Update at the host's
// frame rate, which ebiten keeps at the session tick rate.
func New(sess *sim.Session, cfg config.HostConfig, log *zap.Logger) *Game {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Game{
		sess:     sess,
		cfg:      cfg,
		log:      log,
		look:     sim.NewLook(sess.Player.Yaw),
		keys:     newKeyEdges(),
		events:   NewEventLog(),
		showCone: true,
		showHelp: true,
	}
	if cfg.MouseSensitivity > 0 {
		g.look.Sensitivity = cfg.MouseSensitivity
	}
	g.fitMap()
	g.coneBuf = ebiten.NewImage(g.mapW, g.mapH)
	g.last = sess.Snapshot()
	return g
}

// fitMap scales the level's wall extents into the configured window, less
// the log panel.
func (g *Game) fitMap() {
	minX, minZ := math.Inf(1), math.Inf(1)
	maxX, maxZ := math.Inf(-1), math.Inf(-1)
	for _, w := range g.sess.Registry().Walls() {
		b := w.Bounds()
		lo, hi := b.Min(), b.Max()
		minX, minZ = math.Min(minX, lo.X), math.Min(minZ, lo.Z)
		maxX, maxZ = math.Max(maxX, hi.X), math.Max(maxZ, hi.Z)
	}
	if math.IsInf(minX, 1) {
		p := g.sess.Player.Pos
		minX, minZ, maxX, maxZ = p.X-20, p.Z-20, p.X+20, p.Z+20
	}
	g.minX, g.minZ = minX, minZ

	avail := float64(g.cfg.Width - logPanelWidth - 2*borderWidth)
	availH := float64(g.cfg.Height - 2*borderWidth)
	g.ppu = g.cfg.PixelsPerUnit
	fit := math.Min(avail/(maxX-minX), availH/(maxZ-minZ))
	if fit <= 0 {
		fit = 1
	}
	if g.ppu <= 0 || g.ppu > fit {
		g.ppu = fit
	}
	g.mapW = int(math.Ceil((maxX - minX) * g.ppu))
	g.mapH = int(math.Ceil((maxZ - minZ) * g.ppu))
	g.width = max(g.cfg.Width, g.mapW+2*borderWidth+logPanelWidth)
	g.height = max(g.cfg.Height, g.mapH+2*borderWidth)
}

// toScreen projects a world position onto the map, +X right and +Z down.
func (g *Game) toScreen(p sim.Vec3) (float32, float32) {
	return float32((p.X-g.minX)*g.ppu) + borderWidth, float32((p.Z-g.minZ)*g.ppu) + borderWidth
}

func (g *Game) Update() error {
	now := time.Now()
	dt := time.Duration(0)
	if !g.prev.IsZero() {
		dt = min(now.Sub(g.prev), maxFrameGap)
	}
	g.prev = now

	restart := g.handleKeys()
	if g.statusT > 0 {
		g.statusT--
	}
	if g.paused && !restart {
		return nil
	}

	in := g.readInput()
	in.Restart = restart
	f := g.sess.Tick(in)
	g.sess.Elapse(dt)
	g.events.Record(f)
	g.last = f
	return nil
}

// handleKeys processes edge-triggered toggles and reports a restart request.
func (g *Game) handleKeys() (restart bool) {
	k := &g.keys
	defer k.next()

	restart = k.pressed(ebiten.KeyR, ebiten.IsKeyPressed(ebiten.KeyR))
	if k.pressed(ebiten.KeyP, ebiten.IsKeyPressed(ebiten.KeyP)) {
		g.paused = !g.paused
	}
	if k.pressed(ebiten.KeyV, ebiten.IsKeyPressed(ebiten.KeyV)) {
		g.showCone = !g.showCone
	}
	if k.pressed(ebiten.KeyH, ebiten.IsKeyPressed(ebiten.KeyH)) {
		g.showHelp = !g.showHelp
	}
	if k.pressed(ebiten.KeyC, ebiten.IsKeyPressed(ebiten.KeyC)) {
		if err := copyReport(g.sess); err != nil {
			g.log.Warn("copy report failed", zap.Error(err))
			g.flash("copy failed: " + err.Error())
		} else {
			g.flash("session report copied")
		}
	}
	if k.pressed(ebiten.KeyEscape, ebiten.IsKeyPressed(ebiten.KeyEscape)) && g.grabbed {
		g.grabbed = false
		ebiten.SetCursorMode(ebiten.CursorModeVisible)
	}
	if !g.grabbed && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.grabbed = true
		g.pointer.reset()
		ebiten.SetCursorMode(ebiten.CursorModeCaptured)
	}
	if restart {
		g.events.Add(g.sess.Ticks(), sim.EventRestarted, "restart requested")
	}
	return restart
}

func (g *Game) flash(msg string) {
	g.status = msg
	g.statusT = 120
}

// readInput samples the devices into one immutable snapshot.
func (g *Game) readInput() sim.Input {
	if g.grabbed {
		dx, dy := g.pointer.delta(ebiten.CursorPosition())
		g.look.Apply(dx, dy)
	}
	readTurnKeys().apply(g.look, g.cfg.TurnSpeed)
	return sim.Input{
		Move:  readMoveKeys().Move(),
		Yaw:   g.look.Yaw,
		Pitch: g.look.Pitch,
	}
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 8, G: 8, B: 12, A: 255})
	g.drawLevel(screen)
	if g.showCone {
		g.drawCone(screen)
	}
	g.drawActors(screen)
	g.drawHUD(screen)
	g.events.Draw(screen, g.width-logPanelWidth, g.height)
}

// clock formats seconds as m:ss.
func clock(sec int) string {
	sec = max(0, sec)
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}
