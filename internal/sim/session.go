package sim

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Input is the immutable per-tick control snapshot. Yaw and Pitch are the
// absolute facing accumulated by the host (see Look).
type Input struct {
	Move    Move    `json:"move"`
	Yaw     float64 `json:"yaw"`
	Pitch   float64 `json:"pitch"`
	Restart bool    `json:"restart,omitempty"`
}

// Spawns are the starting poses of both actors.
type Spawns struct {
	Player    Vec3
	PlayerYaw float64
	Agent     Vec3
	AgentYaw  float64
}

// PlayerFrame is the read-only player view of one tick.
type PlayerFrame struct {
	Pos    Vec3    `json:"pos"`
	Yaw    float64 `json:"yaw"`
	Pitch  float64 `json:"pitch"`
	EyeY   float64 `json:"eye_y"`
	Moving bool    `json:"moving"`
}

// AgentFrame is the read-only agent view of one tick. CloseUp is set while
// the capture close-up plays; renderers draw the agent there instead of
// at Pos.
type AgentFrame struct {
	Pos          Vec3           `json:"pos"`
	Yaw          float64        `json:"yaw"`
	State        AgentStateKind `json:"state"`
	Pose         Pose           `json:"pose"`
	Moving       bool           `json:"moving"`
	Speed        float64        `json:"speed"`
	CloseUp      *Vec3          `json:"close_up,omitempty"`
	CloseUpYaw   float64        `json:"close_up_yaw,omitempty"`
	CloseUpTicks int            `json:"close_up_ticks,omitempty"`
}

// Frame is everything a renderer or audio layer needs after a tick.
type Frame struct {
	SessionID string      `json:"session"`
	Tick      int         `json:"tick"`
	Outcome   Outcome     `json:"outcome"`
	Elapsed   int         `json:"elapsed"`
	Duration  int         `json:"duration"`
	Player    PlayerFrame `json:"player"`
	Agent     AgentFrame  `json:"agent"`
	Signals   Signals     `json:"signals"`
	Events    []Event     `json:"events,omitempty"`
}

// Option configures a Session.
type Option func(*Session)

// WithTuning replaces the reference constants.
func WithTuning(t Tuning) Option {
	return func(s *Session) { s.tun = t }
}

// WithLogger injects a structured logger. The default discards output.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithSeed seeds the session's random source for reproducible runs.
func WithSeed(seed int64) Option {
	return func(s *Session) {
		s.seed = seed
		s.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- gameplay randomness
	}
}

// WithSimLog records transitions into sl.
func WithSimLog(sl *SimLog) Option {
	return func(s *Session) { s.simLog = sl }
}

// WithID fixes the session id instead of generating one.
func WithID(id string) Option {
	return func(s *Session) { s.ID = id }
}

// Session owns one player, one agent and every collaborator they use.
// It is not safe for concurrent use; one goroutine drives it.
type Session struct {
	ID     string
	Player Player
	Agent  Agent

	tun    Tuning
	reg    *Registry
	col    *Collider
	per    *Perception
	prox   *ProximityEmitter
	clock  *Clock
	timer  SecondTimer
	rng    *rand.Rand
	seed   int64
	log    *zap.Logger
	simLog *SimLog
	spawns Spawns

	tick    int
	outcome Outcome
	signals Signals
	pending []Event
}

// NewSession builds a session over reg, freezing it, and places both actors
// at their spawns.
func NewSession(reg *Registry, spawns Spawns, opts ...Option) *Session {
	s := &Session{
		tun:    DefaultTuning(),
		reg:    reg,
		spawns: spawns,
		log:    zap.NewNop(),
		seed:   1,
	}
	for _, o := range opts {
		o(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(s.seed)) // #nosec G404 -- gameplay randomness
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.simLog == nil {
		s.simLog = NewSimLog(false)
	}
	s.log = s.log.With(zap.String("session", s.ID))

	reg.Freeze()
	s.col = NewCollider(reg)
	s.per = NewPerception(s.col, s.tun)
	s.prox = NewProximityEmitter(reg, s.tun)
	s.clock = NewClock(s.tun.DurationSeconds)
	s.placeActors()

	s.log.Info("session started",
		zap.Int64("seed", s.seed),
		zap.Int("walls", len(reg.Walls())),
		zap.Int("props", len(reg.Props())),
		zap.Int("windows", len(reg.PointsOfInterest())))
	return s
}

func (s *Session) placeActors() {
	s.Player = newPlayer(s.spawns.Player, s.spawns.PlayerYaw, s.tun)
	s.Agent = Agent{
		Pos:     s.spawns.Agent.WithY(s.tun.AgentGroundY),
		Yaw:     s.spawns.AgentYaw,
		Extents: s.tun.AgentExtents,
		State:   PatrolState(s.spawns.AgentYaw, 0),
	}
	s.signals = s.prox.Emit(s.Player.Pos, s.Agent.Pos)
}

func (s *Session) Ticks() int          { return s.tick }
func (s *Session) Outcome() Outcome    { return s.outcome }
func (s *Session) Clock() *Clock       { return s.clock }
func (s *Session) Registry() *Registry { return s.reg }
func (s *Session) Tuning() Tuning      { return s.tun }
func (s *Session) Seed() int64         { return s.seed }
func (s *Session) SimLog() *SimLog     { return s.simLog }
func (s *Session) Collider() *Collider { return s.col }

// Perception exposes the agent's sight check for diagnostics.
func (s *Session) Perception() *Perception { return s.per }

// Restart returns both actors to their spawns and rewinds the clock. The
// registry and the random source carry on.
func (s *Session) Restart() {
	s.placeActors()
	s.clock.Reset()
	s.timer.Reset()
	s.outcome = OutcomeOngoing
	s.emit(EventRestarted, 0)
	s.simLog.Add(s.tick, ActorGlobal, "session", "restart", "actors and clock reset", 0)
	s.log.Info("session restarted", zap.Int("tick", s.tick))
}

// Tick advances the simulation by one fixed step and returns the frame.
// After an outcome is decided only the capture close-up keeps advancing.
// Yaw may be any accumulated value; a non-finite yaw or pitch keeps the
// previous orientation.
func (s *Session) Tick(in Input) Frame {
	if in.Restart {
		s.Restart()
	}
	s.tick++

	switch s.outcome {
	case OutcomeCaptured:
		s.advanceCloseUp()
		return s.frame()
	case OutcomeWon:
		return s.frame()
	}

	if finite(in.Yaw) {
		s.Player.Yaw = normalizeAngle(in.Yaw)
	}
	if finite(in.Pitch) {
		s.Player.Pitch = ClampPitch(in.Pitch)
	}
	if s.Player.step(s.col, s.tun, in.Move) {
		s.emit(EventPlayerStep, 0)
		s.simLog.AddVerbose(s.tick, ActorPlayer, "sound", "player_step", "", 0)
	}

	env := agentEnv{col: s.col, per: s.per, rng: s.rng, tun: s.tun}
	st := s.Agent.update(env, s.Player.Pos)
	s.recordAgent(st)

	s.signals = s.prox.Emit(s.Player.Pos, s.Agent.Pos)
	if s.simLog.Verbose() {
		s.simLog.AddVerbose(s.tick, ActorPlayer, "move", "position",
			fmt.Sprintf("(%.2f,%.2f)", s.Player.Pos.X, s.Player.Pos.Z), 0)
		s.simLog.AddVerbose(s.tick, ActorAgent, "move", "position",
			fmt.Sprintf("(%.2f,%.2f) %s", s.Agent.Pos.X, s.Agent.Pos.Z, s.Agent.State.Kind), 0)
	}
	return s.frame()
}

func (s *Session) recordAgent(st agentStep) {
	d := HorizontalDistance(s.Agent.Pos, s.Player.Pos)
	if st.Reheaded {
		s.simLog.Add(s.tick, ActorAgent, "move", "reheading",
			fmt.Sprintf("heading %.2f, next in %d", s.Agent.State.Heading, s.Agent.State.Countdown),
			s.Agent.State.Heading)
	}
	if st.Footstep {
		s.emit(EventAgentStep, d)
		s.simLog.AddVerbose(s.tick, ActorAgent, "sound", "agent_step", fmt.Sprintf("d=%.2f", d), d)
	}
	s.simLog.AddVerbose(s.tick, ActorAgent, "vision", "assess",
		fmt.Sprintf("visible=%t occluded=%t cone=%t angle=%.2f",
			st.Sight.Visible, st.Sight.Occluded, st.Sight.InCone, st.Sight.Angle),
		st.Sight.Distance)

	if st.From == st.To {
		return
	}
	s.simLog.Add(s.tick, ActorAgent, "state", "change",
		fmt.Sprintf("%s → %s", st.From, st.To), d)

	switch st.To {
	case AgentChase:
		s.emit(EventSpotted, d)
		s.simLog.Add(s.tick, ActorAgent, "state", "spotted", fmt.Sprintf("d=%.2f", d), d)
		s.log.Info("agent spotted player", zap.Int("tick", s.tick), zap.Float64("distance", d))
	case AgentPatrol:
		s.emit(EventLostSight, d)
		s.simLog.Add(s.tick, ActorAgent, "state", "lost_sight",
			fmt.Sprintf("d=%.2f occluded=%t", d, st.Sight.Occluded), d)
		s.log.Info("agent lost sight", zap.Int("tick", s.tick),
			zap.Float64("distance", d), zap.Bool("occluded", st.Sight.Occluded))
	case AgentCaptured:
		s.outcome = OutcomeCaptured
		s.clock.Freeze(OutcomeCaptured)
		s.emit(EventCaptured, d)
		s.simLog.Add(s.tick, ActorGlobal, "outcome", "captured",
			fmt.Sprintf("at %ds, d=%.2f", s.clock.Elapsed, d), d)
		s.log.Info("player captured", zap.Int("tick", s.tick),
			zap.Int("elapsed_s", s.clock.Elapsed), zap.Float64("distance", d))
	}
}

func (s *Session) advanceCloseUp() {
	st := &s.Agent.State
	if st.ElapsedTicks >= s.tun.CaptureTicks {
		return
	}
	st.ElapsedTicks++
	if st.ElapsedTicks == s.tun.CaptureTicks {
		s.emit(EventCaptureComplete, 0)
		s.simLog.Add(s.tick, ActorGlobal, "outcome", "capture_complete", "", 0)
		s.log.Debug("capture close-up finished", zap.Int("tick", s.tick))
	}
}

// Elapse feeds wall-clock time to the survival clock. It returns the
// outcome after any whole seconds have been applied.
func (s *Session) Elapse(d time.Duration) Outcome {
	for n := s.timer.Add(d); n > 0; n-- {
		if s.outcome.Terminal() {
			break
		}
		s.simLog.AddVerbose(s.tick, ActorGlobal, "clock", "second",
			fmt.Sprintf("%d/%d", s.clock.Elapsed+1, s.clock.Duration), 0)
		if s.clock.Tick() == OutcomeWon {
			s.outcome = OutcomeWon
			s.emit(EventWon, 0)
			s.simLog.Add(s.tick, ActorGlobal, "outcome", "won",
				fmt.Sprintf("survived %ds", s.clock.Elapsed), 0)
			s.log.Info("player survived", zap.Int("tick", s.tick), zap.Int("elapsed_s", s.clock.Elapsed))
		}
	}
	return s.outcome
}

func (s *Session) emit(kind EventKind, d float64) {
	s.pending = append(s.pending, Event{Tick: s.tick, Kind: kind, Distance: d})
}

// CloseUpAnchor returns where the agent is presented during the capture
// close-up: just in front of the camera and below eye level, facing it.
func (s *Session) CloseUpAnchor() (Vec3, float64) {
	cam := s.Player.Camera()
	anchor := cam.Add(Forward(s.Player.Yaw).Scale(s.tun.CloseUpOffset))
	anchor.Y = cam.Y - s.tun.CloseUpDrop
	return anchor, YawTo(anchor, cam)
}

// Snapshot returns the current frame without consuming pending events.
func (s *Session) Snapshot() Frame {
	f := s.buildFrame()
	f.Events = append([]Event(nil), s.pending...)
	return f
}

func (s *Session) frame() Frame {
	f := s.buildFrame()
	if len(s.pending) > 0 {
		f.Events = s.pending
		s.pending = nil
	}
	return f
}

func (s *Session) buildFrame() Frame {
	f := Frame{
		SessionID: s.ID,
		Tick:      s.tick,
		Outcome:   s.outcome,
		Elapsed:   s.clock.Elapsed,
		Duration:  s.clock.Duration,
		Player: PlayerFrame{
			Pos:    s.Player.Pos,
			Yaw:    s.Player.Yaw,
			Pitch:  s.Player.Pitch,
			EyeY:   s.Player.CameraY,
			Moving: s.Player.Moving,
		},
		Agent: AgentFrame{
			Pos:    s.Agent.Pos,
			Yaw:    s.Agent.Yaw,
			State:  s.Agent.State.Kind,
			Pose:   s.Agent.Pose,
			Moving: s.Agent.Moving,
			Speed:  s.Agent.Speed,
		},
		Signals: s.signals,
	}
	if s.outcome == OutcomeCaptured {
		anchor, yaw := s.CloseUpAnchor()
		f.Agent.CloseUp = &anchor
		f.Agent.CloseUpYaw = yaw
		f.Agent.CloseUpTicks = max(0, s.tun.CaptureTicks-s.Agent.State.ElapsedTicks)
	}
	return f
}
