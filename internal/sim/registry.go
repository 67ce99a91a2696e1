package sim

import "math"

// VolumeKind tags a collidable volume.
type VolumeKind int

const (
	KindWall VolumeKind = iota // structural, blocks movement and sight
	KindProp                   // furniture, blocks movement only
)

func (k VolumeKind) String() string {
	switch k {
	case KindWall:
		return "wall"
	case KindProp:
		return "prop"
	default:
		return "unknown"
	}
}

// Volume is one piece of static level geometry.
type Volume struct {
	Box  AABB    // unrotated local box, centred on its world position
	Yaw  float64 // rotation about the vertical axis
	Kind VolumeKind

	bounds AABB // world-axis bounds of the rotated box
}

// NewVolume creates a volume and precomputes its world-axis bounds.
func NewVolume(kind VolumeKind, box AABB, yaw float64) Volume {
	return Volume{Box: box, Yaw: yaw, Kind: kind, bounds: box.RotatedY(yaw)}
}

// Bounds returns the axis-aligned box used for every collision and ray test.
func (v Volume) Bounds() AABB { return v.bounds }

// Registry holds the static collidables of a level. It is filled once while
// the level is built and is read-only after Freeze, so any number of readers
// may query it without locking.
type Registry struct {
	walls  []Volume
	props  []Volume
	pois   []Vec3
	frozen bool

	wallPrune float64
	propPrune float64
}

// NewRegistry creates an empty registry with the given prune radii.
// Candidates whose centre is farther than the radius from the query centre
// are skipped before the exact test.
func NewRegistry(wallPrune, propPrune float64) *Registry {
	return &Registry{wallPrune: wallPrune, propPrune: propPrune}
}

// Register adds a volume. Registering after Freeze is a programming error.
func (r *Registry) Register(v Volume) {
	if r.frozen {
		panic("sim: Register on frozen registry")
	}
	if v.bounds == (AABB{}) {
		v.bounds = v.Box.RotatedY(v.Yaw)
	}
	switch v.Kind {
	case KindWall:
		r.walls = append(r.walls, v)
	default:
		r.props = append(r.props, v)
	}
}

// AddPointOfInterest records an ambient position such as a window.
func (r *Registry) AddPointOfInterest(p Vec3) {
	if r.frozen {
		panic("sim: AddPointOfInterest on frozen registry")
	}
	r.pois = append(r.pois, p)
}

// Freeze ends the build phase. A frozen registry may be shared by sessions
// running on different goroutines; freezing it again does not write.
func (r *Registry) Freeze() {
	if !r.frozen {
		r.frozen = true
	}
}

// Frozen reports whether the build phase has ended.
func (r *Registry) Frozen() bool { return r.frozen }

func (r *Registry) Walls() []Volume          { return r.walls }
func (r *Registry) Props() []Volume          { return r.props }
func (r *Registry) PointsOfInterest() []Vec3 { return r.pois }
func (r *Registry) Len() int                 { return len(r.walls) + len(r.props) }

// Query returns the volumes near region, pruned by centre distance.
// The result may include volumes that do not actually overlap region;
// callers perform the exact test.
func (r *Registry) Query(region AABB) []Volume {
	var out []Volume
	out = appendNear(out, r.walls, region, r.wallPrune)
	out = appendNear(out, r.props, region, r.propPrune)
	return out
}

// QueryKind is Query restricted to one kind of volume.
func (r *Registry) QueryKind(region AABB, kind VolumeKind) []Volume {
	if kind == KindWall {
		return appendNear(nil, r.walls, region, r.wallPrune)
	}
	return appendNear(nil, r.props, region, r.propPrune)
}

func appendNear(out, vols []Volume, region AABB, radius float64) []Volume {
	// Large regions and large volumes widen the cutoff so nothing that
	// overlaps is skipped.
	reach := radius + math.Max(region.Half.X, region.Half.Z)
	for _, v := range vols {
		if v.bounds.Center.DistanceTo(region.Center) < reach+v.bounds.Half.Len() {
			out = append(out, v)
		}
	}
	return out
}
