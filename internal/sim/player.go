package sim

import "math"

// Move is a normalised locomotion intent. Forward and Strafe are each in
// [-1, 1]; positive Strafe moves right.
type Move struct {
	Forward float64 `json:"forward"`
	Strafe  float64 `json:"strafe"`
}

// IsZero reports whether the intent requests no movement.
func (m Move) IsZero() bool { return m.Forward == 0 && m.Strafe == 0 }

func (m Move) clamped() Move {
	return Move{Forward: clampUnit(m.Forward), Strafe: clampUnit(m.Strafe)}
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}

// Player is the first-person protagonist.
type Player struct {
	Pos     Vec3
	Yaw     float64
	Pitch   float64
	Extents Vec3
	Moving  bool
	CameraY float64

	bob       float64
	stepTimer int
}

// newPlayer places a player at pos. The step timer starts full so the first
// moving tick produces a footstep.
func newPlayer(pos Vec3, yaw float64, t Tuning) Player {
	return Player{
		Pos:       pos,
		Yaw:       yaw,
		Extents:   t.PlayerExtents,
		CameraY:   pos.Y,
		stepTimer: t.PlayerStepTicks,
	}
}

// Camera returns the eye position including head bob.
func (p *Player) Camera() Vec3 { return p.Pos.WithY(p.CameraY) }

// step applies one tick of locomotion relative to the player's facing and
// reports whether a footstep fell on this tick.
func (p *Player) step(col *Collider, t Tuning, move Move) bool {
	move = move.clamped()
	p.Moving = !move.IsZero()
	if !p.Moving {
		p.bob = 0
		p.CameraY = p.Pos.Y
		p.stepTimer = t.PlayerStepTicks
		return false
	}

	dir := Forward(p.Yaw).Scale(move.Forward).Add(Right(p.Yaw).Scale(move.Strafe))
	delta := dir.Normalize().Scale(t.PlayerSpeed)
	p.Pos = col.AttemptSlideMove(p.Pos, delta, p.Extents)

	p.bob += t.HeadBobStep
	p.CameraY = p.Pos.Y + math.Sin(p.bob)*t.HeadBobAmp

	p.stepTimer++
	if p.stepTimer > t.PlayerStepTicks {
		p.stepTimer = 0
		return true
	}
	return false
}
