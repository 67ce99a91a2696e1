package sim

import (
	"fmt"
	"time"
)

// TestSim is a headless harness over a Session for tests and batch runs.
// It builds a registry from options, drives the clock from the tick count
// and records every frame's events.
type TestSim struct {
	Session *Session
	SimLog  *SimLog
	Events  []Event
	Last    Frame

	reg        *Registry
	tun        Tuning
	spawns     Spawns
	seed       int64
	agentState *AgentState
	script     func(*TestSim) Input
	ticks      int
	prebuilt   bool
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra simOptionKind = iota // tuning, seed, verbose, geometry
	simOptActor                      // spawns, applied once tuning is final
	simOptState                      // overrides on the built session
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithSimSeed sets the RNG seed for deterministic runs.
func WithSimSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.seed = seed }}
}

// WithSimTuning adjusts the reference constants.
func WithSimTuning(fn func(*Tuning)) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { fn(&ts.tun) }}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.SimLog = NewSimLog(v) }}
}

// WithWall adds a full-height wall covering [minX,maxX]×[minZ,maxZ] on the
// ground plane.
func WithWall(minX, minZ, maxX, maxZ float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		box := BoxFromMinMax(Vec3{minX, -2, minZ}, Vec3{maxX, 4, maxZ})
		ts.reg.Register(NewVolume(KindWall, box, 0))
	}}
}

// WithProp adds a prop box centred at (x, z) with the given half-extents.
func WithProp(x, z float64, half Vec3, yaw float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		box := AABB{Center: Vec3{x, half.Y, z}, Half: half}
		ts.reg.Register(NewVolume(KindProp, box, yaw))
	}}
}

// WithWindow adds an ambient point of interest.
func WithWindow(x, z float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.reg.AddPointOfInterest(Vec3{x, 2, z})
	}}
}

// WithRegistry runs over a prebuilt level instead of option geometry. The
// registry may be shared between harnesses; it is frozen, never modified.
// Geometry options given before it are discarded.
func WithRegistry(reg *Registry, spawns Spawns) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.reg = reg
		ts.spawns = spawns
		ts.prebuilt = true
	}}
}

// WithPlayerAt places the player at eye height over (x, z).
func WithPlayerAt(x, z, yaw float64) SimOption {
	return SimOption{simOptActor, func(ts *TestSim) {
		ts.spawns.Player = Vec3{x, ts.tun.PlayerEyeHeight, z}
		ts.spawns.PlayerYaw = yaw
	}}
}

// WithAgentAt places the agent on the ground at (x, z).
func WithAgentAt(x, z, yaw float64) SimOption {
	return SimOption{simOptActor, func(ts *TestSim) {
		ts.spawns.Agent = Vec3{x, ts.tun.AgentGroundY, z}
		ts.spawns.AgentYaw = yaw
	}}
}

// WithAgentState forces the agent's starting state.
func WithAgentState(st AgentState) SimOption {
	return SimOption{simOptState, func(ts *TestSim) {
		ts.agentState = &st
		ts.Session.Agent.State = st
	}}
}

// WithInput feeds the same input every tick.
func WithInput(in Input) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.script = func(*TestSim) Input { return in }
	}}
}

// WithScript computes each tick's input from the harness state.
func WithScript(fn func(*TestSim) Input) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.script = fn }}
}

// NewTestSim constructs a TestSim from the given options in ordered passes:
//  1. Infrastructure (tuning, seed, verbose, geometry)
//  2. Actor spawns
//  3. Session, then state overrides
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{
		SimLog: NewSimLog(false),
		tun:    DefaultTuning(),
		seed:   1,
	}
	// Geometry options register directly, so the registry must exist before
	// tuning options run; prune radii are applied afterwards.
	ts.reg = NewRegistry(0, 0)
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}
	if !ts.prebuilt {
		ts.reg.wallPrune = ts.tun.WallPrune
		ts.reg.propPrune = ts.tun.PropPrune
		ts.spawns = Spawns{
			Player: Vec3{0, ts.tun.PlayerEyeHeight, 0},
			Agent:  Vec3{40, ts.tun.AgentGroundY, 40},
		}
	}
	for _, o := range opts {
		if o.kind == simOptActor {
			o.fn(ts)
		}
	}

	ts.Session = NewSession(ts.reg, ts.spawns,
		WithTuning(ts.tun),
		WithSeed(ts.seed),
		WithSimLog(ts.SimLog),
		WithID(fmt.Sprintf("testsim-%d", ts.seed)))
	for _, o := range opts {
		if o.kind == simOptState {
			o.fn(ts)
		}
	}
	ts.Last = ts.Session.Snapshot()
	return ts
}

// Restart resets the session and reapplies any forced agent state.
func (ts *TestSim) Restart() {
	ts.Session.Restart()
	if ts.agentState != nil {
		ts.Session.Agent.State = *ts.agentState
	}
}

// RunTicks advances the simulation n ticks.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		ts.step()
	}
}

// RunUntil advances the simulation up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.step()
		if predicate(ts) {
			return ts.Last.Tick
		}
	}
	return -1
}

// step runs one tick and feeds the clock a whole second every TickRateHz
// ticks, which keeps runs independent of wall time.
func (ts *TestSim) step() {
	var in Input
	if ts.script != nil {
		in = ts.script(ts)
	} else {
		in = Input{Yaw: ts.Session.Player.Yaw}
	}
	ts.Last = ts.Session.Tick(in)
	ts.ticks++
	if rate := ts.tun.TickRateHz; rate > 0 && ts.ticks%rate == 0 {
		ts.Session.Elapse(time.Second)
	}
	ts.Events = append(ts.Events, ts.Last.Events...)
}

// CurrentTick returns the current simulation tick.
func (ts *TestSim) CurrentTick() int {
	return ts.Session.Ticks()
}

// Agent and Player are shorthands for the session's actors.
func (ts *TestSim) Agent() *Agent   { return &ts.Session.Agent }
func (ts *TestSim) Player() *Player { return &ts.Session.Player }

// CountEvents returns how many recorded events have kind k.
func (ts *TestSim) CountEvents(k EventKind) int {
	n := 0
	for _, e := range ts.Events {
		if e.Kind == k {
			n++
		}
	}
	return n
}
