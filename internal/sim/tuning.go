package sim

import "math"

// Tuning collects every gameplay constant of a session. Distances are world
// units, speeds are units per tick at TickRateHz.
type Tuning struct {
	TickRateHz      int `mapstructure:"tick_rate_hz"`
	DurationSeconds int `mapstructure:"duration_seconds"`

	PlayerSpeed     float64 `mapstructure:"player_speed"`
	PlayerExtents   Vec3    `mapstructure:"player_extents"`
	PlayerEyeHeight float64 `mapstructure:"player_eye_height"`
	HeadBobStep     float64 `mapstructure:"head_bob_step"`
	HeadBobAmp      float64 `mapstructure:"head_bob_amp"`
	PlayerStepTicks int     `mapstructure:"player_step_ticks"`

	PatrolSpeed    float64 `mapstructure:"patrol_speed"`
	ChaseSpeed     float64 `mapstructure:"chase_speed"`
	AgentExtents   Vec3    `mapstructure:"agent_extents"`
	AgentGroundY   float64 `mapstructure:"agent_ground_y"`
	AgentEyeHeight float64 `mapstructure:"agent_eye_height"`
	ProbeHeight    float64 `mapstructure:"probe_height"`
	ProbeDistance  float64 `mapstructure:"probe_distance"`
	TurnTicksMin   int     `mapstructure:"turn_ticks_min"`
	TurnTicksMax   int     `mapstructure:"turn_ticks_max"`
	PoseStep       float64 `mapstructure:"pose_step"`
	PoseSwing      float64 `mapstructure:"pose_swing"`
	AgentStepScale float64 `mapstructure:"agent_step_scale"`

	FOVHalfAngle   float64 `mapstructure:"fov_half_angle"`
	NearField      float64 `mapstructure:"near_field"`
	CaptureRadius  float64 `mapstructure:"capture_radius"`
	CaptureTicks   int     `mapstructure:"capture_ticks"`
	CloseUpOffset  float64 `mapstructure:"close_up_offset"`
	CloseUpDrop    float64 `mapstructure:"close_up_drop"`
	WallPrune      float64 `mapstructure:"wall_prune"`
	PropPrune      float64 `mapstructure:"prop_prune"`
	WindowNear     float64 `mapstructure:"window_near"`
	WindowFar      float64 `mapstructure:"window_far"`
	AgentSignalFar float64 `mapstructure:"agent_signal_far"`
}

// DefaultTuning returns the reference values.
func DefaultTuning() Tuning {
	return Tuning{
		TickRateHz:      60,
		DurationSeconds: 720,

		PlayerSpeed:     0.15,
		PlayerExtents:   Vec3{0.4, 1.0, 0.4},
		PlayerEyeHeight: 1.5,
		HeadBobStep:     0.2,
		HeadBobAmp:      0.08,
		PlayerStepTicks: 30,

		PatrolSpeed:    0.08,
		ChaseSpeed:     0.18,
		AgentExtents:   Vec3{0.6, 2.0, 0.6},
		AgentGroundY:   -0.8,
		AgentEyeHeight: 2.5,
		ProbeHeight:    1.5,
		ProbeDistance:  3.0,
		TurnTicksMin:   100,
		TurnTicksMax:   300,
		PoseStep:       1.0 / 6.0,
		PoseSwing:      0.6,
		AgentStepScale: 25,

		FOVHalfAngle:   1.2,
		NearField:      3.0,
		CaptureRadius:  1.2,
		CaptureTicks:   120,
		CloseUpOffset:  0.5,
		CloseUpDrop:    1.8,
		WallPrune:      6.0,
		PropPrune:      4.0,
		WindowNear:     2.0,
		WindowFar:      15.0,
		AgentSignalFar: 25.0,
	}
}

// agentStepInterval is the footstep cadence for a given speed; faster
// movement produces closer steps.
func (t Tuning) agentStepInterval(speed float64) float64 {
	if speed <= 0 {
		return math.Inf(1)
	}
	return t.AgentStepScale / (speed * 10)
}
