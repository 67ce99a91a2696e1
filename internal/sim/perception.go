package sim

// Sighting is the full result of one perception check.
type Sighting struct {
	Visible  bool
	Occluded bool    // a wall lies between eye and target
	InCone   bool    // target is inside the field-of-view half-angle
	Distance float64 // ground-plane distance observer→target
	Angle    float64 // radians between facing and direction to target
}

// Perception answers whether an observer can see a target. Only walls
// block sight; props are low enough to see over.
type Perception struct {
	col       *Collider
	halfAngle float64
	nearField float64
}

// NewPerception creates a perception module from tuning.
func NewPerception(col *Collider, t Tuning) *Perception {
	return &Perception{col: col, halfAngle: t.FOVHalfAngle, nearField: t.NearField}
}

// CanSee reports whether an observer at pos facing yaw, with eyes eyeHeight
// above pos, can see target.
func (p *Perception) CanSee(pos Vec3, yaw, eyeHeight float64, target Vec3) bool {
	return p.Assess(pos, yaw, eyeHeight, target).Visible
}

// Assess runs the occlusion ray then the field-of-view test. Targets within
// the near field are detected regardless of facing.
func (p *Perception) Assess(pos Vec3, yaw, eyeHeight float64, target Vec3) Sighting {
	var s Sighting
	eye := pos.Add(Vec3{0, eyeHeight, 0})
	toTarget := target.Sub(eye)
	if dist := toTarget.Len(); dist > 1e-9 {
		if hit, ok := p.col.Raycast(eye, toTarget, dist, KindWall); ok && hit < dist {
			s.Occluded = true
		}
	}

	s.Distance = HorizontalDistance(pos, target)
	flat := target.Sub(pos).Flat()
	s.Angle = angleBetween(Forward(yaw), flat)
	s.InCone = s.Angle <= p.halfAngle

	s.Visible = !s.Occluded && (s.InCone || s.Distance <= p.nearField)
	return s
}
