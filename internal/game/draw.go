package game

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"

	"github.com/Garsondee/Night-Watch/internal/sim"
)

// coneDrawLength is how far the sight fan is drawn. Sight itself is
// unlimited in range.
const coneDrawLength = 14.0

func withAlpha(c color.RGBA, a uint8) color.RGBA {
	c.A = a
	return c
}

func stateColor(k sim.AgentStateKind) color.RGBA {
	switch k {
	case sim.AgentChase:
		return colornames.Orangered
	case sim.AgentCaptured:
		return colornames.Crimson
	default:
		return colornames.Khaki
	}
}

func (g *Game) drawLevel(screen *ebiten.Image) {
	vector.FillRect(screen, borderWidth, borderWidth, float32(g.mapW), float32(g.mapH),
		color.RGBA{R: 22, G: 20, B: 26, A: 255}, false)

	reg := g.sess.Registry()
	for _, w := range reg.Walls() {
		b := w.Bounds()
		x0, y0 := g.toScreen(b.Min())
		x1, y1 := g.toScreen(b.Max())
		vector.FillRect(screen, x0, y0, x1-x0, y1-y0, colornames.Dimgray, false)
	}
	for _, p := range reg.Props() {
		g.drawProp(screen, p)
	}

	// Windows glow with the window signal of the nearest one.
	glow := uint8(90 + 165*g.last.Signals.Window)
	for _, w := range reg.PointsOfInterest() {
		x, y := g.toScreen(w)
		vector.FillCircle(screen, x, y, 3, withAlpha(colornames.Lightskyblue, glow), true)
	}
}

// drawProp outlines the rotated footprint and shades the world-axis box
// that collisions actually use.
func (g *Game) drawProp(screen *ebiten.Image, p sim.Volume) {
	b := p.Bounds()
	x0, y0 := g.toScreen(b.Min())
	x1, y1 := g.toScreen(b.Max())
	vector.FillRect(screen, x0, y0, x1-x0, y1-y0, withAlpha(colornames.Saddlebrown, 90), false)

	c := p.Box.Center
	r, f := sim.Right(p.Yaw), sim.Forward(p.Yaw)
	hx, hz := p.Box.Half.X, p.Box.Half.Z
	corners := [4]sim.Vec3{
		c.Add(r.Scale(-hx)).Add(f.Scale(-hz)),
		c.Add(r.Scale(hx)).Add(f.Scale(-hz)),
		c.Add(r.Scale(hx)).Add(f.Scale(hz)),
		c.Add(r.Scale(-hx)).Add(f.Scale(hz)),
	}
	for i := range corners {
		ax, ay := g.toScreen(corners[i])
		bx, by := g.toScreen(corners[(i+1)%4])
		vector.StrokeLine(screen, ax, ay, bx, by, 1.5, colornames.Peru, true)
	}
}

// drawCone renders the agent's sight fan clipped against walls, the same
// occluders perception uses.
func (g *Game) drawCone(screen *ebiten.Image) {
	a := g.last.Agent
	if a.State == sim.AgentCaptured {
		return
	}
	tun := g.sess.Tuning()
	col := g.sess.Collider()
	eye := a.Pos.Add(sim.V3(0, tun.AgentEyeHeight, 0))

	buf := g.coneBuf
	buf.Clear()
	local := func(p sim.Vec3) (float32, float32) {
		x, y := g.toScreen(p)
		return x - borderWidth, y - borderWidth
	}

	const steps = 36
	var path vector.Path
	path.MoveTo(local(a.Pos))
	half := tun.FOVHalfAngle
	for i := 0; i <= steps; i++ {
		yaw := a.Yaw - half + 2*half*float64(i)/steps
		dir := sim.Forward(yaw)
		reach := coneDrawLength
		if hit, ok := col.Raycast(eye, dir, reach, sim.KindWall); ok {
			reach = hit
		}
		path.LineTo(local(a.Pos.Add(dir.Scale(reach))))
	}
	path.Close()
	vector.FillPath(buf, &path, &vector.FillOptions{}, &vector.DrawPathOptions{AntiAlias: true})

	cx, cy := local(a.Pos)
	vector.StrokeCircle(buf, cx, cy, float32(tun.NearField*g.ppu), 1, color.White, true)

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Translate(borderWidth, borderWidth)
	opts.ColorScale.ScaleWithColor(stateColor(a.State))
	opts.ColorScale.ScaleAlpha(0.22)
	screen.DrawImage(buf, opts)
}

func (g *Game) drawActors(screen *ebiten.Image) {
	tun := g.sess.Tuning()
	p, a := g.last.Player, g.last.Agent

	px, py := g.toScreen(p.Pos)
	pr := float32(tun.PlayerExtents.X * g.ppu)
	vector.FillCircle(screen, px, py, max(pr, 3), colornames.Palegreen, true)
	fx, fy := g.toScreen(p.Pos.Add(sim.Forward(p.Yaw).Scale(1.5)))
	vector.StrokeLine(screen, px, py, fx, fy, 2, colornames.Palegreen, true)

	ax, ay := g.toScreen(a.Pos)
	ar := float32(tun.AgentExtents.X * g.ppu)
	sc := stateColor(a.State)
	vector.FillCircle(screen, ax, ay, max(ar, 3), sc, true)
	hx, hy := g.toScreen(a.Pos.Add(sim.Forward(a.Yaw).Scale(2)))
	vector.StrokeLine(screen, ax, ay, hx, hy, 2, sc, true)
	vector.StrokeCircle(screen, ax, ay, float32(tun.CaptureRadius*g.ppu), 1, withAlpha(sc, 120), true)

	// Swinging legs give a sense of the walk cycle from above.
	if a.Moving {
		side := sim.Right(a.Yaw).Scale(0.3)
		for i, swing := range [2]float64{a.Pose.LegLeft, a.Pose.LegRight} {
			s := side
			if i == 1 {
				s = side.Scale(-1)
			}
			hip := a.Pos.Add(s)
			foot := hip.Add(sim.Forward(a.Yaw).Scale(math.Sin(swing) * 0.8))
			x0, y0 := g.toScreen(hip)
			x1, y1 := g.toScreen(foot)
			vector.StrokeLine(screen, x0, y0, x1, y1, 2, withAlpha(sc, 200), true)
		}
	}

	if a.CloseUp != nil {
		cx, cy := g.toScreen(*a.CloseUp)
		vector.StrokeCircle(screen, cx, cy, 5, 1, colornames.Crimson, true)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	f := g.last
	lines := []string{
		fmt.Sprintf("time left %s  (%d/%ds)  tick %d", clock(f.Duration-f.Elapsed), f.Elapsed, f.Duration, f.Tick),
		fmt.Sprintf("agent %-8s d=%5.1f  signal %.2f", f.Agent.State, f.Signals.AgentDistance, f.Signals.Agent),
		fmt.Sprintf("window d=%5.1f  signal %.2f", f.Signals.WindowDistance, f.Signals.Window),
	}
	switch f.Outcome {
	case sim.OutcomeCaptured:
		lines = append(lines, "CAUGHT. Press R to restart.")
	case sim.OutcomeWon:
		lines = append(lines, "You made it to 6 AM. Press R to play again.")
	}
	if g.paused {
		lines = append(lines, "PAUSED")
	}
	if g.statusT > 0 {
		lines = append(lines, g.status)
	}
	if g.showHelp {
		lines = append(lines,
			"WASD move  arrows/mouse look  click grab  Esc release",
			"R restart  P pause  V cone  C copy report  H help")
	}

	const lineH = 16
	x, y := borderWidth+6, borderWidth+4
	w := float32(0)
	for _, l := range lines {
		w = max(w, float32(len(l)*6+10))
	}
	vector.FillRect(screen, float32(x-4), float32(y-2), w, float32(len(lines)*lineH+4), color.RGBA{R: 0, G: 0, B: 0, A: 170}, false)
	for i, l := range lines {
		ebitenutil.DebugPrintAt(screen, l, x, y+i*lineH)
	}
}
