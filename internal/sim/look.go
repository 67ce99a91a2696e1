package sim

import "math"

// MaxPitch bounds the look angle above and below the horizon.
const MaxPitch = math.Pi / 2

// Look accumulates pointer deltas into a facing. Moving the pointer right
// or down yields negative yaw or pitch changes.
type Look struct {
	Yaw         float64
	Pitch       float64
	Sensitivity float64
}

// DefaultSensitivity is radians per pointer unit.
const DefaultSensitivity = 0.002

// NewLook starts a facing at yaw with a level pitch.
func NewLook(yaw float64) *Look {
	return &Look{Yaw: yaw, Sensitivity: DefaultSensitivity}
}

// Apply adds one pointer delta.
func (l *Look) Apply(dx, dy float64) {
	l.Yaw = normalizeAngle(l.Yaw - dx*l.Sensitivity)
	l.Pitch = ClampPitch(l.Pitch - dy*l.Sensitivity)
}

// ClampPitch limits p to [-MaxPitch, MaxPitch]. NaN becomes level.
func ClampPitch(p float64) float64 {
	if math.IsNaN(p) {
		return 0
	}
	return math.Max(-MaxPitch, math.Min(MaxPitch, p))
}
