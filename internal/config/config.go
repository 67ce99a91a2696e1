// Package config loads runtime settings from an optional YAML file and
// NIGHTWATCH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Garsondee/Night-Watch/internal/sim"
)

// EnvPrefix namespaces environment overrides, e.g. NIGHTWATCH_SIM_CHASE_SPEED.
const EnvPrefix = "NIGHTWATCH"

type Config struct {
	Sim   sim.Tuning  `mapstructure:"sim"`
	Level LevelConfig `mapstructure:"level"`
	Log   LogConfig   `mapstructure:"log"`
	Host  HostConfig  `mapstructure:"host"`
	Relay RelayConfig `mapstructure:"relay"`
}

type LevelConfig struct {
	Path string `mapstructure:"path"` // empty selects the built-in maze
	Seed int64  `mapstructure:"seed"` // non-zero overrides the level's decoration seed
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug | info | warn | error
	Format string `mapstructure:"format"` // json | console
}

type HostConfig struct {
	Width            int     `mapstructure:"width"`
	Height           int     `mapstructure:"height"`
	Title            string  `mapstructure:"title"`
	PixelsPerUnit    float64 `mapstructure:"pixels_per_unit"`
	MouseSensitivity float64 `mapstructure:"mouse_sensitivity"`
	TurnSpeed        float64 `mapstructure:"turn_speed"` // radians per tick for keyboard turning
	SessionSeed      int64   `mapstructure:"session_seed"`
}

type RelayConfig struct {
	Addr         string        `mapstructure:"addr"`
	Path         string        `mapstructure:"path"`
	InputRate    float64       `mapstructure:"input_rate"`  // input messages per second
	InputBurst   int           `mapstructure:"input_burst"` // burst above the steady rate
	MaxSessions  int           `mapstructure:"max_sessions"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// AllowedOrigins lists the browser origins permitted to connect.
	// An empty slice allows all origins (local development only).
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads config from the given YAML file path. An empty path uses
// defaults and environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration Load produces with no file and no
// environment overrides.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	t := sim.DefaultTuning()
	vec := func(p sim.Vec3) map[string]any { return map[string]any{"x": p.X, "y": p.Y, "z": p.Z} }

	v.SetDefault("sim.tick_rate_hz", t.TickRateHz)
	v.SetDefault("sim.duration_seconds", t.DurationSeconds)
	v.SetDefault("sim.player_speed", t.PlayerSpeed)
	v.SetDefault("sim.player_extents", vec(t.PlayerExtents))
	v.SetDefault("sim.player_eye_height", t.PlayerEyeHeight)
	v.SetDefault("sim.head_bob_step", t.HeadBobStep)
	v.SetDefault("sim.head_bob_amp", t.HeadBobAmp)
	v.SetDefault("sim.player_step_ticks", t.PlayerStepTicks)
	v.SetDefault("sim.patrol_speed", t.PatrolSpeed)
	v.SetDefault("sim.chase_speed", t.ChaseSpeed)
	v.SetDefault("sim.agent_extents", vec(t.AgentExtents))
	v.SetDefault("sim.agent_ground_y", t.AgentGroundY)
	v.SetDefault("sim.agent_eye_height", t.AgentEyeHeight)
	v.SetDefault("sim.probe_height", t.ProbeHeight)
	v.SetDefault("sim.probe_distance", t.ProbeDistance)
	v.SetDefault("sim.turn_ticks_min", t.TurnTicksMin)
	v.SetDefault("sim.turn_ticks_max", t.TurnTicksMax)
	v.SetDefault("sim.pose_step", t.PoseStep)
	v.SetDefault("sim.pose_swing", t.PoseSwing)
	v.SetDefault("sim.agent_step_scale", t.AgentStepScale)
	v.SetDefault("sim.fov_half_angle", t.FOVHalfAngle)
	v.SetDefault("sim.near_field", t.NearField)
	v.SetDefault("sim.capture_radius", t.CaptureRadius)
	v.SetDefault("sim.capture_ticks", t.CaptureTicks)
	v.SetDefault("sim.close_up_offset", t.CloseUpOffset)
	v.SetDefault("sim.close_up_drop", t.CloseUpDrop)
	v.SetDefault("sim.wall_prune", t.WallPrune)
	v.SetDefault("sim.prop_prune", t.PropPrune)
	v.SetDefault("sim.window_near", t.WindowNear)
	v.SetDefault("sim.window_far", t.WindowFar)
	v.SetDefault("sim.agent_signal_far", t.AgentSignalFar)

	v.SetDefault("level.path", "")
	v.SetDefault("level.seed", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("host.width", 960)
	v.SetDefault("host.height", 720)
	v.SetDefault("host.title", "Night Watch")
	v.SetDefault("host.pixels_per_unit", 11.0)
	v.SetDefault("host.mouse_sensitivity", sim.DefaultSensitivity)
	v.SetDefault("host.turn_speed", 0.05)
	v.SetDefault("host.session_seed", 1)

	v.SetDefault("relay.addr", ":8088")
	v.SetDefault("relay.path", "/ws")
	v.SetDefault("relay.input_rate", 120.0)
	v.SetDefault("relay.input_burst", 240)
	v.SetDefault("relay.max_sessions", 32)
	v.SetDefault("relay.write_timeout", "2s")
	v.SetDefault("relay.allowed_origins", []string{})
}

// Validate rejects settings the simulation cannot run with.
func (c *Config) Validate() error {
	t := c.Sim
	switch {
	case t.TickRateHz <= 0:
		return errors.New("sim.tick_rate_hz must be positive")
	case t.DurationSeconds <= 0:
		return errors.New("sim.duration_seconds must be positive")
	case t.ChaseSpeed <= t.PatrolSpeed:
		return fmt.Errorf("sim.chase_speed (%.3f) must exceed sim.patrol_speed (%.3f)", t.ChaseSpeed, t.PatrolSpeed)
	case t.TurnTicksMax < t.TurnTicksMin:
		return errors.New("sim.turn_ticks_max must not be below sim.turn_ticks_min")
	case t.WindowFar <= t.WindowNear:
		return errors.New("sim.window_far must exceed sim.window_near")
	case t.AgentSignalFar <= t.CaptureRadius:
		return errors.New("sim.agent_signal_far must exceed sim.capture_radius")
	case c.Relay.InputRate <= 0 || c.Relay.InputBurst <= 0:
		return errors.New("relay.input_rate and relay.input_burst must be positive")
	}
	return nil
}
