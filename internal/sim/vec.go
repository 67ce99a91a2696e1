package sim

import "math"

// Vec3 is a world-space position or direction. Y is up; the ground plane is XZ.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// V3 is shorthand for Vec3{x, y, z}.
func V3(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) Add(o Vec3) Vec3           { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3           { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3      { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Dot(o Vec3) float64        { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Len() float64              { return math.Sqrt(v.Dot(v)) }
func (v Vec3) IsZero() bool              { return v.X == 0 && v.Y == 0 && v.Z == 0 }
func (v Vec3) Flat() Vec3                { return Vec3{v.X, 0, v.Z} }
func (v Vec3) WithY(y float64) Vec3      { return Vec3{v.X, y, v.Z} }
func (v Vec3) DistanceTo(o Vec3) float64 { return o.Sub(v).Len() }

// Normalize returns the unit vector in v's direction, or the zero vector
// when v has no length.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l < 1e-12 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// HorizontalDistance is the ground-plane distance between a and b. All
// gameplay thresholds use it, since actor elevations are not comparable.
func HorizontalDistance(a, b Vec3) float64 {
	dx := b.X - a.X
	dz := b.Z - a.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// Forward returns the ground-plane unit vector for a yaw angle.
// Yaw 0 faces +Z; positive yaw turns toward +X.
func Forward(yaw float64) Vec3 {
	return Vec3{math.Sin(yaw), 0, math.Cos(yaw)}
}

// Right returns the ground-plane unit vector to the right of Forward(yaw).
func Right(yaw float64) Vec3 {
	return Vec3{-math.Cos(yaw), 0, math.Sin(yaw)}
}

// YawTo returns the yaw that faces from a toward b on the ground plane.
func YawTo(a, b Vec3) float64 {
	return math.Atan2(b.X-a.X, b.Z-a.Z)
}

// normalizeAngle wraps an angle to [-pi, pi]. Non-finite angles map to 0.
func normalizeAngle(a float64) float64 {
	if !finite(a) {
		return 0
	}
	return math.Remainder(a, 2*math.Pi)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// angleBetween returns the unsigned angle between two vectors in [0, pi].
func angleBetween(a, b Vec3) float64 {
	la, lb := a.Len(), b.Len()
	if la < 1e-12 || lb < 1e-12 {
		return 0
	}
	c := a.Dot(b) / (la * lb)
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return math.Acos(c)
}
