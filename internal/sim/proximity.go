package sim

import "math"

// Signals are the normalised proximity intensities of one tick, for an
// audio or haptics layer to map onto volumes.
type Signals struct {
	Window         float64 `json:"window"`
	Agent          float64 `json:"agent"`
	WindowDistance float64 `json:"window_distance"`
	AgentDistance  float64 `json:"agent_distance"`
}

// ProximityEmitter converts distances into intensities in [0, 1].
type ProximityEmitter struct {
	pois []Vec3

	windowNear, windowFar float64
	agentNear, agentFar   float64
}

// NewProximityEmitter creates an emitter over the registry's points of
// interest.
func NewProximityEmitter(reg *Registry, t Tuning) *ProximityEmitter {
	return &ProximityEmitter{
		pois:       reg.PointsOfInterest(),
		windowNear: t.WindowNear,
		windowFar:  t.WindowFar,
		agentNear:  t.CaptureRadius,
		agentFar:   t.AgentSignalFar,
	}
}

// NearestWindow returns the horizontal distance to the closest point of
// interest, or +Inf when the level has none.
func (e *ProximityEmitter) NearestWindow(player Vec3) float64 {
	best := math.Inf(1)
	for _, p := range e.pois {
		if d := HorizontalDistance(player, p); d < best {
			best = d
		}
	}
	return best
}

// Emit computes both signals for the current positions.
func (e *ProximityEmitter) Emit(player, agent Vec3) Signals {
	wd := e.NearestWindow(player)
	ad := HorizontalDistance(player, agent)
	s := Signals{
		Window:         falloff(wd, e.windowNear, e.windowFar),
		Agent:          falloff(ad, e.agentNear, e.agentFar),
		WindowDistance: wd,
		AgentDistance:  ad,
	}
	if math.IsInf(wd, 1) {
		s.WindowDistance = -1
	}
	return s
}

// falloff is 1 at or inside near, 0 at or beyond far, linear between.
func falloff(d, near, far float64) float64 {
	switch {
	case d <= near:
		return 1
	case d >= far:
		return 0
	}
	return 1 - (d-near)/(far-near)
}
