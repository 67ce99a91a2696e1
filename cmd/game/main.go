package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/Garsondee/Night-Watch/internal/config"
	"github.com/Garsondee/Night-Watch/internal/game"
	"github.com/Garsondee/Night-Watch/internal/level"
	"github.com/Garsondee/Night-Watch/internal/logging"
	"github.com/Garsondee/Night-Watch/internal/sim"
)

func main() {
	cfgPath := flag.String("config", "", "config file (YAML)")
	levelPath := flag.String("level", "", "level file (overrides config)")
	flag.Parse()

	if err := run(*cfgPath, *levelPath); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(cfgPath, levelPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if levelPath == "" {
		levelPath = cfg.Level.Path
	}
	desc, err := level.Resolve(levelPath, cfg.Level.Seed)
	if err != nil {
		return err
	}
	reg, spawns, err := desc.Build(cfg.Sim)
	if err != nil {
		return fmt.Errorf("build level: %w", err)
	}

	seed := cfg.Host.SessionSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sess := sim.NewSession(reg, spawns,
		sim.WithTuning(cfg.Sim),
		sim.WithSeed(seed),
		sim.WithLogger(log))
	log.Info("level loaded", zap.String("level", desc.Name), zap.Int("volumes", reg.Len()))

	ebiten.SetWindowTitle(cfg.Host.Title)
	ebiten.SetWindowSize(cfg.Host.Width, cfg.Host.Height)
	ebiten.SetTPS(cfg.Sim.TickRateHz)
	return ebiten.RunGame(game.New(sess, cfg.Host, log))
}
