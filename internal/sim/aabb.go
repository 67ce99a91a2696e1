package sim

import "math"

// AABB is an axis-aligned box stored as centre plus half-extents.
type AABB struct {
	Center Vec3
	Half   Vec3
}

// BoxAt builds the box an actor occupies at pos with the given half-extents.
func BoxAt(pos, half Vec3) AABB {
	return AABB{Center: pos, Half: half}
}

// BoxFromMinMax builds a box from its corner points.
func BoxFromMinMax(minP, maxP Vec3) AABB {
	return AABB{
		Center: minP.Add(maxP).Scale(0.5),
		Half:   maxP.Sub(minP).Scale(0.5),
	}
}

func (b AABB) Min() Vec3 { return b.Center.Sub(b.Half) }
func (b AABB) Max() Vec3 { return b.Center.Add(b.Half) }

// Intersects reports strict overlap on every axis. Boxes that only touch
// along a face do not intersect, so an actor may stand flush against a wall.
func (b AABB) Intersects(o AABB) bool {
	bMin, bMax := b.Min(), b.Max()
	oMin, oMax := o.Min(), o.Max()
	return bMin.X < oMax.X && bMax.X > oMin.X &&
		bMin.Y < oMax.Y && bMax.Y > oMin.Y &&
		bMin.Z < oMax.Z && bMax.Z > oMin.Z
}

// Contains reports whether p lies inside or on the box.
func (b AABB) Contains(p Vec3) bool {
	bMin, bMax := b.Min(), b.Max()
	return p.X >= bMin.X && p.X <= bMax.X &&
		p.Y >= bMin.Y && p.Y <= bMax.Y &&
		p.Z >= bMin.Z && p.Z <= bMax.Z
}

// RotatedY returns the world-axis box enclosing b after rotating it by yaw
// about its vertical axis.
func (b AABB) RotatedY(yaw float64) AABB {
	if yaw == 0 {
		return b
	}
	c := math.Abs(math.Cos(yaw))
	s := math.Abs(math.Sin(yaw))
	return AABB{
		Center: b.Center,
		Half: Vec3{
			X: b.Half.X*c + b.Half.Z*s,
			Y: b.Half.Y,
			Z: b.Half.X*s + b.Half.Z*c,
		},
	}
}

// rayHit returns the distance along a unit direction at which a ray from
// origin enters box, limited to maxDist. The bool is false when there is
// no hit. A ray that starts inside the box reports no hit; a volume
// containing the eye never occludes anything.
func rayHit(origin, dir Vec3, maxDist float64, box AABB) (float64, bool) {
	if box.Contains(origin) {
		return 0, false
	}
	bMin, bMax := box.Min(), box.Max()

	tMin := 0.0
	tMax := maxDist

	o := [3]float64{origin.X, origin.Y, origin.Z}
	d := [3]float64{dir.X, dir.Y, dir.Z}
	lo := [3]float64{bMin.X, bMin.Y, bMin.Z}
	hi := [3]float64{bMax.X, bMax.Y, bMax.Z}

	for axis := 0; axis < 3; axis++ {
		if math.Abs(d[axis]) < 1e-12 {
			if o[axis] < lo[axis] || o[axis] > hi[axis] {
				return 0, false
			}
			continue
		}
		invD := 1.0 / d[axis]
		t1 := (lo[axis] - o[axis]) * invD
		t2 := (hi[axis] - o[axis]) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}
	return tMin, true
}
