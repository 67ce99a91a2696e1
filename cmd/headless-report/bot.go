package main

import (
	"math"
	"math/rand"

	"github.com/Garsondee/Night-Watch/internal/sim"
)

// Player scripts for batch runs.
const (
	botStill  = "still"
	botWander = "wander"
)

// wanderer walks the maze, turning at obstacles and now and then at random,
// and runs directly away once the agent gives chase.
type wanderer struct {
	rng     *rand.Rand
	yaw     float64
	turnIn  int
	lookout float64
}

func newWanderer(seed int64, yaw float64) *wanderer {
	return &wanderer{
		rng:     rand.New(rand.NewSource(seed)), // #nosec G404 -- scripted player
		yaw:     yaw,
		turnIn:  120,
		lookout: 2.0,
	}
}

func (w *wanderer) blocked(ts *sim.TestSim, yaw float64) bool {
	col := ts.Session.Collider()
	p := ts.Player()
	dir := sim.Forward(yaw)
	for _, k := range []sim.VolumeKind{sim.KindWall, sim.KindProp} {
		origin := p.Pos
		if k == sim.KindProp {
			origin = origin.WithY(0.5)
		}
		if hit, ok := col.Raycast(origin, dir, w.lookout, k); ok && hit < w.lookout {
			return true
		}
	}
	return false
}

func (w *wanderer) next(ts *sim.TestSim) sim.Input {
	a := ts.Agent()
	if a.State.Kind == sim.AgentChase {
		away := sim.YawTo(a.Pos, ts.Player().Pos)
		if !w.blocked(ts, away) {
			w.yaw = away
			return sim.Input{Move: sim.Move{Forward: 1}, Yaw: w.yaw}
		}
	}

	w.turnIn--
	if w.turnIn <= 0 || w.blocked(ts, w.yaw) {
		// Try a handful of headings, preferring open ones.
		for i := 0; i < 8; i++ {
			cand := w.yaw + (w.rng.Float64()*2-1)*math.Pi
			if !w.blocked(ts, cand) {
				w.yaw = cand
				break
			}
		}
		w.turnIn = 60 + w.rng.Intn(180)
	}
	return sim.Input{Move: sim.Move{Forward: 1}, Yaw: w.yaw}
}
