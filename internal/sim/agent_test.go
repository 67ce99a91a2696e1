package sim

import (
	"math"
	"math/rand"
	"testing"
)

func newTestEnv(seed int64, vols ...Volume) agentEnv {
	col := newTestCollider(vols...)
	tun := DefaultTuning()
	return agentEnv{
		col: col,
		per: NewPerception(col, tun),
		rng: rand.New(rand.NewSource(seed)), // #nosec G404 -- test
		tun: tun,
	}
}

func newTestAgent(x, z, yaw float64, st AgentState) *Agent {
	return &Agent{
		Pos:     V3(x, 3, z),
		Yaw:     yaw,
		Extents: DefaultTuning().AgentExtents,
		State:   st,
	}
}

func TestAgent_PinnedToGround(t *testing.T) {
	env := newTestEnv(1)
	a := newTestAgent(0, 0, 0, PatrolState(0, 50))
	a.update(env, V3(0, 1.5, -50))
	if a.Pos.Y != env.tun.AgentGroundY {
		t.Fatalf("agent y = %.2f, want %.2f", a.Pos.Y, env.tun.AgentGroundY)
	}
}

func TestAgent_CapturedIsAbsorbing(t *testing.T) {
	env := newTestEnv(1)
	a := newTestAgent(0, 0, 0, CapturedState())
	for _, player := range []Vec3{V3(0, 1.5, 0.5), V3(0, 1.5, 100), V3(50, 1.5, 0)} {
		st := a.update(env, player)
		if a.State.Kind != AgentCaptured || st.To != AgentCaptured {
			t.Fatalf("captured agent left the state for player at %+v", player)
		}
		if a.Moving {
			t.Fatal("captured agent should not move")
		}
	}
}

// Chase→Captured requires a chase already under way on the prior tick.
func TestAgent_CaptureOnlyFromChase(t *testing.T) {
	env := newTestEnv(1)
	a := newTestAgent(0, 0, 0, PatrolState(0, 50))
	player := V3(0, 1.5, 1.0)

	st := a.update(env, player)
	if st.To != AgentChase {
		t.Fatalf("patrol within reach should first become chase, got %s", st.To)
	}
	st = a.update(env, player)
	if st.From != AgentChase || st.To != AgentCaptured {
		t.Fatalf("expected chase → captured, got %s → %s", st.From, st.To)
	}
}

func TestAgent_CaptureIgnoresVisibility(t *testing.T) {
	// A wall sliver between them does not save a player already in reach.
	env := newTestEnv(1, NewVolume(KindWall, BoxFromMinMax(V3(-2, -2, 0.5), V3(2, 4, 0.6)), 0))
	a := newTestAgent(0, 0, math.Pi, ChaseState())
	a.Pos.Y = env.tun.AgentGroundY
	if st := a.update(env, V3(0, 1.5, 1.1)); st.To != AgentCaptured {
		t.Fatalf("expected capture inside radius, got %s", st.To)
	}
}

func TestAgent_ChaseClosesAtChaseSpeed(t *testing.T) {
	env := newTestEnv(1)
	a := newTestAgent(0, 0, 0, ChaseState())
	player := V3(0, 1.5, 10)
	before := HorizontalDistance(a.Pos, player)
	a.update(env, player)
	after := HorizontalDistance(a.Pos, player)
	if !approx(before-after, env.tun.ChaseSpeed, 1e-9) {
		t.Fatalf("chase closed %.4f, want %.4f", before-after, env.tun.ChaseSpeed)
	}
	if a.State.Kind != AgentChase || !a.Moving || a.Speed != env.tun.ChaseSpeed {
		t.Fatalf("unexpected chase state %+v", a)
	}
}

func TestAgent_ChaseFacesPlayer(t *testing.T) {
	env := newTestEnv(1)
	a := newTestAgent(0, 0, 0.3, ChaseState())
	player := V3(5, 1.5, 5)
	a.update(env, player)
	if !approx(a.Yaw, math.Pi/4, 1e-2) {
		t.Fatalf("chasing agent should face the player, yaw %.3f", a.Yaw)
	}
}

func TestAgent_LosingSightReturnsToPatrol(t *testing.T) {
	env := newTestEnv(1)
	a := newTestAgent(0, 0, 0, ChaseState())
	// Facing +Z, player far behind.
	st := a.update(env, V3(0, 1.5, -20))
	if st.To != AgentPatrol {
		t.Fatalf("expected patrol after losing sight, got %s", st.To)
	}
	// The fresh patrol re-rolled immediately.
	if !st.Reheaded || a.State.Countdown < 100 || a.State.Countdown >= 300 {
		t.Fatalf("expected immediate reheading, got %+v", a.State)
	}
}

func TestAgent_PatrolClearTurnIsBounded(t *testing.T) {
	env := newTestEnv(3)
	for i := 0; i < 200; i++ {
		a := newTestAgent(0, 0, 0, PatrolState(0, 1))
		st := a.update(env, V3(0, 1.5, -100))
		if !st.Reheaded {
			t.Fatal("expired countdown should rehead")
		}
		if math.Abs(a.State.Heading) > math.Pi/2 {
			t.Fatalf("clear turn %.3f outside [-pi/2, pi/2]", a.State.Heading)
		}
	}
}

func TestAgent_PatrolMovesAtPatrolSpeed(t *testing.T) {
	env := newTestEnv(1)
	a := newTestAgent(0, 0, 0, PatrolState(0, 50))
	start := a.Pos
	a.update(env, V3(0, 1.5, -100))
	if d := HorizontalDistance(start, a.Pos); !approx(d, env.tun.PatrolSpeed, 1e-9) {
		t.Fatalf("patrol moved %.4f, want %.4f", d, env.tun.PatrolSpeed)
	}
	if a.State.Countdown != 49 {
		t.Fatalf("countdown should decrement, got %d", a.State.Countdown)
	}
}

func TestAgent_BoxedInKeepsRerolling(t *testing.T) {
	env := newTestEnv(5,
		wallBox(-4, 1, 4, 2), wallBox(-4, -2, 4, -1),
		wallBox(1, -4, 2, 4), wallBox(-2, -4, -1, 4))
	a := newTestAgent(0, 0, 0, PatrolState(0, 1000))
	a.Pos.Y = env.tun.AgentGroundY
	for i := 0; i < 20; i++ {
		st := a.update(env, V3(100, 1.5, 100))
		if !st.Reheaded {
			t.Fatalf("boxed-in agent should re-roll every tick (tick %d)", i)
		}
	}
}

func TestAgent_FootstepCadence(t *testing.T) {
	env := newTestEnv(1)
	a := newTestAgent(0, 0, 0, PatrolState(0, 10000))
	steps := 0
	for i := 0; i < 320; i++ {
		if a.update(env, V3(0, 1.5, -500)).Footstep {
			steps++
		}
	}
	// Patrol cadence is 25/(0.08·10) = 31.25 ticks, so a step every 32.
	if steps != 10 {
		t.Fatalf("expected 10 patrol footsteps in 320 ticks, got %d", steps)
	}
}

func TestAgent_PoseAdvancesOnlyWhileMoving(t *testing.T) {
	env := newTestEnv(1)
	a := newTestAgent(0, 0, 0, PatrolState(0, 50))
	a.update(env, V3(0, 1.5, -100))
	if !approx(a.Pose.Phase, env.tun.PoseStep, 1e-12) {
		t.Fatalf("phase %.4f after one moving tick", a.Pose.Phase)
	}
	if !approx(a.Pose.LegLeft, -a.Pose.LegRight, 1e-12) || !approx(a.Pose.ArmLeft, a.Pose.LegRight, 1e-12) {
		t.Fatalf("limbs out of phase: %+v", a.Pose)
	}
	a.State = CapturedState()
	phase := a.Pose.Phase
	a.update(env, V3(0, 1.5, 0))
	if a.Pose.Phase != phase {
		t.Fatal("phase advanced while standing")
	}
}
