package sim

// Collider resolves actor movement against a frozen Registry. It holds no
// mutable state, so one Collider may serve both actors.
type Collider struct {
	reg *Registry
}

// NewCollider creates a collider over reg.
func NewCollider(reg *Registry) *Collider {
	return &Collider{reg: reg}
}

// WouldCollide reports whether an actor box at pos with half-extents ext
// strictly overlaps any nearby volume.
func (c *Collider) WouldCollide(pos, ext Vec3) bool {
	_, hit := c.Blocker(pos, ext)
	return hit
}

// Blocker returns the first nearby volume that an actor box at pos would
// overlap.
func (c *Collider) Blocker(pos, ext Vec3) (Volume, bool) {
	box := BoxAt(pos, ext)
	for _, v := range c.reg.Query(box) {
		if box.Intersects(v.Bounds()) {
			return v, true
		}
	}
	return Volume{}, false
}

// AttemptSlideMove moves an actor by delta one ground axis at a time: X
// first, then Z from the possibly updated position. A blocked axis is
// dropped while the other still applies, so actors slide along walls
// instead of sticking in corners. The vertical component of delta is
// ignored.
func (c *Collider) AttemptSlideMove(cur, delta, ext Vec3) Vec3 {
	if delta.X == 0 && delta.Z == 0 {
		return cur
	}
	pos := cur
	if delta.X != 0 {
		afterX := Vec3{pos.X + delta.X, pos.Y, pos.Z}
		if !c.WouldCollide(afterX, ext) {
			pos = afterX
		}
	}
	if delta.Z != 0 {
		afterZ := Vec3{pos.X, pos.Y, pos.Z + delta.Z}
		if !c.WouldCollide(afterZ, ext) {
			pos = afterZ
		}
	}
	return pos
}

// MoveDirect applies the whole ground delta when the destination is free
// and falls back to AttemptSlideMove otherwise.
func (c *Collider) MoveDirect(cur, delta, ext Vec3) Vec3 {
	if delta.X == 0 && delta.Z == 0 {
		return cur
	}
	next := Vec3{cur.X + delta.X, cur.Y, cur.Z + delta.Z}
	if !c.WouldCollide(next, ext) {
		return next
	}
	return c.AttemptSlideMove(cur, delta, ext)
}

// Raycast returns the distance to the nearest volume of kind hit by a ray
// from origin along dir within maxDist. dir need not be normalised.
func (c *Collider) Raycast(origin, dir Vec3, maxDist float64, kind VolumeKind) (float64, bool) {
	unit := dir.Normalize()
	if unit.IsZero() || maxDist <= 0 {
		return 0, false
	}
	// Prune around the segment midpoint with a region covering its length.
	mid := origin.Add(unit.Scale(maxDist / 2))
	half := maxDist / 2
	region := AABB{Center: mid, Half: Vec3{half, half, half}}

	best := 0.0
	found := false
	for _, v := range c.reg.QueryKind(region, kind) {
		if d, ok := rayHit(origin, unit, maxDist, v.Bounds()); ok {
			if !found || d < best {
				best = d
				found = true
			}
		}
	}
	return best, found
}
