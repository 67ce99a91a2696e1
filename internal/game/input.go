package game

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Night-Watch/internal/sim"
)

// keyEdges turns held keys into press events.
type keyEdges struct {
	prev map[ebiten.Key]bool
	cur  map[ebiten.Key]bool
}

func newKeyEdges() keyEdges {
	return keyEdges{prev: map[ebiten.Key]bool{}, cur: map[ebiten.Key]bool{}}
}

// pressed reports whether k went down since the last frame. down is the
// key's current state.
func (k *keyEdges) pressed(key ebiten.Key, down bool) bool {
	k.cur[key] = down
	return down && !k.prev[key]
}

// next ends the frame.
func (k *keyEdges) next() {
	k.prev, k.cur = k.cur, k.prev
	clear(k.cur)
}

// moveKeys is the held state of the four locomotion keys.
type moveKeys struct {
	Forward, Back, Left, Right bool
}

func axis(pos, neg bool) float64 {
	switch {
	case pos && !neg:
		return 1
	case neg && !pos:
		return -1
	}
	return 0
}

// Move converts held keys into an intent. Opposite keys cancel.
func (m moveKeys) Move() sim.Move {
	return sim.Move{Forward: axis(m.Forward, m.Back), Strafe: axis(m.Right, m.Left)}
}

// turnKeys is the held state of the keyboard look keys.
type turnKeys struct {
	Left, Right, Up, Down bool
}

// apply turns look by speed radians per held key. Left turns
// anticlockwise, which is positive yaw.
func (t turnKeys) apply(look *sim.Look, speed float64) {
	if speed <= 0 || look.Sensitivity <= 0 {
		return
	}
	// Expressed as pointer units so Look owns wrapping and clamping.
	units := speed / look.Sensitivity
	look.Apply(-axis(t.Left, t.Right)*units, -axis(t.Up, t.Down)*units)
}

// pointer tracks cursor deltas while the cursor is captured.
type pointer struct {
	x, y  int
	valid bool
}

// delta returns the movement since the last sample. The first sample after
// a reset yields zero.
func (p *pointer) delta(x, y int) (dx, dy float64) {
	if p.valid {
		dx, dy = float64(x-p.x), float64(y-p.y)
	}
	p.x, p.y, p.valid = x, y, true
	return dx, dy
}

func (p *pointer) reset() { p.valid = false }

func readMoveKeys() moveKeys {
	return moveKeys{
		Forward: ebiten.IsKeyPressed(ebiten.KeyW),
		Back:    ebiten.IsKeyPressed(ebiten.KeyS),
		Left:    ebiten.IsKeyPressed(ebiten.KeyA),
		Right:   ebiten.IsKeyPressed(ebiten.KeyD),
	}
}

func readTurnKeys() turnKeys {
	return turnKeys{
		Left:  ebiten.IsKeyPressed(ebiten.KeyArrowLeft),
		Right: ebiten.IsKeyPressed(ebiten.KeyArrowRight),
		Up:    ebiten.IsKeyPressed(ebiten.KeyArrowUp),
		Down:  ebiten.IsKeyPressed(ebiten.KeyArrowDown),
	}
}
