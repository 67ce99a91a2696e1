package sim

import (
	"fmt"
	"math"
	"math/rand"
)

// AgentStateKind is the high-level behaviour of the pursuing agent.
type AgentStateKind int

const (
	AgentPatrol   AgentStateKind = iota // wandering, re-heading on obstacles
	AgentChase                          // closing on a visible player
	AgentCaptured                       // terminal, presentation only
)

func (k AgentStateKind) String() string {
	switch k {
	case AgentPatrol:
		return "patrol"
	case AgentChase:
		return "chase"
	case AgentCaptured:
		return "captured"
	default:
		return "unknown"
	}
}

func (k AgentStateKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *AgentStateKind) UnmarshalText(b []byte) error {
	for c := AgentPatrol; c <= AgentCaptured; c++ {
		if c.String() == string(b) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("sim: unknown agent state %q", b)
}

// AgentState is a tagged variant. Only the fields of the active Kind are
// meaningful: Heading and Countdown for Patrol, ElapsedTicks for Captured.
type AgentState struct {
	Kind         AgentStateKind
	Heading      float64
	Countdown    int
	ElapsedTicks int
}

func PatrolState(heading float64, countdown int) AgentState {
	return AgentState{Kind: AgentPatrol, Heading: heading, Countdown: countdown}
}

func ChaseState() AgentState { return AgentState{Kind: AgentChase} }

func CapturedState() AgentState { return AgentState{Kind: AgentCaptured} }

// Pose is the limb swing of the agent's walk cycle, in radians about each
// limb's hip or shoulder. It is recomputed from Phase, which advances only
// while the agent moves.
type Pose struct {
	LegLeft  float64 `json:"leg_left"`
	LegRight float64 `json:"leg_right"`
	ArmLeft  float64 `json:"arm_left"`
	ArmRight float64 `json:"arm_right"`
	Phase    float64 `json:"phase"`
}

func (p *Pose) advance(step, swing float64) {
	p.Phase += step
	p.LegLeft = math.Sin(p.Phase) * swing
	p.LegRight = math.Sin(p.Phase+math.Pi) * swing
	p.ArmLeft = math.Sin(p.Phase+math.Pi) * swing
	p.ArmRight = math.Sin(p.Phase) * swing
}

// Agent is the single pursuer.
type Agent struct {
	Pos     Vec3
	Yaw     float64
	Extents Vec3
	State   AgentState
	Pose    Pose
	Moving  bool
	Speed   float64

	stepTimer float64
}

// agentEnv is what the agent consults during a tick.
type agentEnv struct {
	col *Collider
	per *Perception
	rng *rand.Rand
	tun Tuning
}

// agentStep summarises one agent update for the session.
type agentStep struct {
	From, To AgentStateKind
	Sight    Sighting
	Footstep bool
	Reheaded bool
}

// update runs one tick of perception-driven behaviour. Transitions are
// evaluated in order: capture (only from a chase that was already under
// way), then gaining or losing sight, then per-state movement.
func (a *Agent) update(env agentEnv, player Vec3) agentStep {
	st := agentStep{From: a.State.Kind}
	a.Moving = false
	a.Speed = 0

	if a.State.Kind == AgentCaptured {
		st.To = AgentCaptured
		return st
	}

	dist := HorizontalDistance(a.Pos, player)
	if a.State.Kind == AgentChase && dist <= env.tun.CaptureRadius {
		a.Yaw = YawTo(a.Pos, player)
		a.State = CapturedState()
		st.To = AgentCaptured
		st.Sight.Distance = dist
		return st
	}

	st.Sight = env.per.Assess(a.Pos, a.Yaw, env.tun.AgentEyeHeight, player)
	switch {
	case st.Sight.Visible && a.State.Kind == AgentPatrol:
		a.State = ChaseState()
	case !st.Sight.Visible && a.State.Kind == AgentChase:
		// Re-roll on the next patrol tick.
		a.State = PatrolState(a.Yaw, 0)
	}

	switch a.State.Kind {
	case AgentChase:
		a.chase(env, player, dist)
	case AgentPatrol:
		st.Reheaded = a.patrol(env)
	}
	a.Pos.Y = env.tun.AgentGroundY

	if a.Moving {
		a.Pose.advance(env.tun.PoseStep, env.tun.PoseSwing)
		a.stepTimer++
		if a.stepTimer > env.tun.agentStepInterval(a.Speed) {
			a.stepTimer = 0
			st.Footstep = true
		}
	}
	st.To = a.State.Kind
	return st
}

func (a *Agent) chase(env agentEnv, player Vec3, dist float64) {
	a.Yaw = YawTo(a.Pos, player)
	if dist <= env.tun.CaptureRadius {
		return
	}
	delta := player.Sub(a.Pos).Flat().Normalize().Scale(env.tun.ChaseSpeed)
	a.Pos = env.col.MoveDirect(a.Pos, delta, a.Extents)
	a.Moving = true
	a.Speed = env.tun.ChaseSpeed
}

// patrol walks along the current heading, picking a new one when the probe
// ray meets a wall or the countdown expires. It reports whether the
// heading changed.
func (a *Agent) patrol(env agentEnv) bool {
	t := env.tun
	st := &a.State
	st.Countdown--

	probe := a.Pos.Add(Vec3{0, t.ProbeHeight, 0})
	hit, ok := env.col.Raycast(probe, Forward(st.Heading), t.ProbeDistance, KindWall)
	blocked := ok && hit < t.ProbeDistance

	reheaded := false
	if blocked || st.Countdown <= 0 {
		var turn float64
		if blocked {
			turn = math.Pi/2 + env.rng.Float64()
		} else {
			turn = (env.rng.Float64() - 0.5) * math.Pi
		}
		st.Heading = normalizeAngle(st.Heading + turn)
		st.Countdown = t.TurnTicksMin
		if span := t.TurnTicksMax - t.TurnTicksMin; span > 0 {
			st.Countdown += env.rng.Intn(span)
		}
		reheaded = true
	}

	a.Yaw = st.Heading
	delta := Forward(st.Heading).Scale(t.PatrolSpeed)
	a.Pos = env.col.AttemptSlideMove(a.Pos, delta, a.Extents)
	a.Moving = true
	a.Speed = t.PatrolSpeed
	return reheaded
}
