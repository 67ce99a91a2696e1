package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Garsondee/Night-Watch/internal/config"
	"github.com/Garsondee/Night-Watch/internal/level"
	"github.com/Garsondee/Night-Watch/internal/logging"
	"github.com/Garsondee/Night-Watch/internal/relay"
)

func main() {
	cfgPath := flag.String("config", "", "config file (YAML)")
	levelPath := flag.String("level", "", "level file (overrides config)")
	addr := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *cfgPath, *levelPath, *addr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath, levelPath, addr string) error {
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
	if addr != "" {
		cfg.Relay.Addr = addr
	}
	desc, err := level.Resolve(levelPath, cfg.Level.Seed)
	if err != nil {
		return err
	}
	reg, spawns, err := desc.Build(cfg.Sim)
	if err != nil {
		return fmt.Errorf("build level: %w", err)
	}
	log.Info("level loaded", zap.String("level", desc.Name), zap.Int("volumes", reg.Len()))

	srv := relay.New(reg, spawns, cfg.Sim, cfg.Relay, relay.WithLogger(log))
	if err := srv.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("relay: %w", err)
	}
	log.Info("relay stopped")
	return nil
}
