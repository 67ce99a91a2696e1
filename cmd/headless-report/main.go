package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Garsondee/Night-Watch/internal/config"
	"github.com/Garsondee/Night-Watch/internal/level"
	"github.com/Garsondee/Night-Watch/internal/logging"
	"github.com/Garsondee/Night-Watch/internal/sim"
	"github.com/Garsondee/Night-Watch/internal/trace"
)

type runStats struct {
	runIndex int
	seed     int64

	outcome   sim.Outcome
	endTick   int
	elapsed   int
	firstSpot int
	captureAt int

	spotted     int
	lostSight   int
	reheadings  int
	playerSteps int
	agentSteps  int
	minGap      float64
	frames      int
}

type options struct {
	runs     int
	ticks    int
	seedBase int64
	seedStep int64
	bot      string
	trace    string
	verbose  bool
}

func main() {
	var o options
	var cfgPath, levelPath string
	flag.IntVar(&o.runs, "runs", 5, "number of headless runs")
	flag.IntVar(&o.ticks, "ticks", 0, "ticks per run (0 = the full night)")
	flag.Int64Var(&o.seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&o.seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&o.bot, "bot", botWander, "player script: wander | still")
	flag.StringVar(&o.trace, "trace", "", "write a zstd frame trace per run to this path")
	flag.BoolVar(&o.verbose, "v", false, "record per-tick detail in the sim log")
	flag.StringVar(&cfgPath, "config", "", "config file (YAML)")
	flag.StringVar(&levelPath, "level", "", "level file (overrides config)")
	flag.Parse()

	if err := run(o, cfgPath, levelPath); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(o options, cfgPath, levelPath string) error {
	if o.runs <= 0 {
		return fmt.Errorf("-runs must be > 0")
	}
	if o.bot != botWander && o.bot != botStill {
		return fmt.Errorf("unsupported bot %q (supported: %s, %s)", o.bot, botWander, botStill)
	}
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
	reg.Freeze()
	if o.ticks <= 0 {
		o.ticks = cfg.Sim.TickRateHz*cfg.Sim.DurationSeconds + cfg.Sim.TickRateHz
	}

	fmt.Printf("=== Headless Night Report ===\n")
	fmt.Printf("level=%s bot=%s runs=%d ticks=%d seed_base=%d seed_step=%d\n\n",
		desc.Name, o.bot, o.runs, o.ticks, o.seedBase, o.seedStep)

	all := make([]runStats, 0, o.runs)
	for i := 0; i < o.runs; i++ {
		seed := o.seedBase + int64(i)*o.seedStep
		rs, err := runOne(i+1, seed, o, reg, spawns, cfg.Sim, desc.Name, log)
		if err != nil {
			return err
		}
		all = append(all, rs)
		printRun(rs)
	}
	printAggregate(all)
	return nil
}

func runOne(runIndex int, seed int64, o options, reg *sim.Registry, spawns sim.Spawns, tun sim.Tuning, levelName string, log *zap.Logger) (runStats, error) {
	rs := runStats{runIndex: runIndex, seed: seed, firstSpot: -1, captureAt: -1, minGap: -1}

	opts := []sim.SimOption{
		sim.WithSimSeed(seed),
		sim.WithSimTuning(func(t *sim.Tuning) { *t = tun }),
		sim.WithRegistry(reg, spawns),
		sim.WithVerbose(o.verbose),
	}
	if o.bot == botWander {
		w := newWanderer(seed+7777, spawns.PlayerYaw)
		opts = append(opts, sim.WithScript(w.next))
	}
	ts := sim.NewTestSim(opts...)

	var tw *trace.Writer
	if o.trace != "" {
		path := tracePath(o.trace, runIndex, o.runs)
		var err error
		if tw, err = trace.Create(path); err != nil {
			return rs, fmt.Errorf("trace: %w", err)
		}
		err = tw.WriteHeader(trace.Header{
			Session: ts.Session.ID,
			Seed:    seed,
			Level:   levelName,
			Tuning:  tun,
			Started: time.Now().UTC(),
		})
		if err != nil {
			_ = tw.Close()
			return rs, fmt.Errorf("trace: %w", err)
		}
	}

	for i := 0; i < o.ticks; i++ {
		ts.RunTicks(1)
		gap := ts.Last.Signals.AgentDistance
		if rs.minGap < 0 || gap < rs.minGap {
			rs.minGap = gap
		}
		if tw != nil {
			if err := tw.WriteFrame(ts.Last); err != nil {
				_ = tw.Close()
				return rs, fmt.Errorf("trace: %w", err)
			}
		}
		// Let the close-up finish so traces include it.
		if out := ts.Session.Outcome(); out == sim.OutcomeWon ||
			(out == sim.OutcomeCaptured && ts.Agent().State.ElapsedTicks >= tun.CaptureTicks) {
			break
		}
	}
	if tw != nil {
		rs.frames = tw.Frames()
		if err := tw.Close(); err != nil {
			return rs, fmt.Errorf("trace: %w", err)
		}
	}

	rs.outcome = ts.Session.Outcome()
	rs.endTick = ts.CurrentTick()
	rs.elapsed = ts.Session.Clock().Elapsed
	rs.spotted = ts.CountEvents(sim.EventSpotted)
	rs.lostSight = ts.CountEvents(sim.EventLostSight)
	rs.playerSteps = ts.CountEvents(sim.EventPlayerStep)
	rs.agentSteps = ts.CountEvents(sim.EventAgentStep)
	rs.reheadings = ts.SimLog.CountCategory("move", "reheading")
	rs.firstSpot = firstTick(ts.Events, sim.EventSpotted)
	rs.captureAt = firstTick(ts.Events, sim.EventCaptured)

	log.Debug("run finished",
		zap.Int("run", runIndex),
		zap.Int64("seed", seed),
		zap.Stringer("outcome", rs.outcome),
		zap.Int("ticks", rs.endTick))
	return rs, nil
}

func firstTick(events []sim.Event, kind sim.EventKind) int {
	for _, e := range events {
		if e.Kind == kind {
			return e.Tick
		}
	}
	return -1
}

// tracePath numbers per-run traces when there is more than one run:
// runs/night.jsonl.zst becomes runs/night-03.jsonl.zst.
func tracePath(base string, runIndex, runs int) string {
	if runs <= 1 {
		return base
	}
	dir, file := filepath.Split(base)
	stem, ext := file, ""
	if i := strings.Index(file, "."); i > 0 {
		stem, ext = file[:i], file[i:]
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%02d%s", stem, runIndex, ext))
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("outcome=%s end_tick=%d survived=%ds capture_tick=%d\n",
		rs.outcome, rs.endTick, rs.elapsed, rs.captureAt)
	fmt.Printf("agent: first_spot=%d spotted=%d lost_sight=%d reheadings=%d steps=%d min_gap=%.2f\n",
		rs.firstSpot, rs.spotted, rs.lostSight, rs.reheadings, rs.agentSteps, rs.minGap)
	fmt.Printf("player: steps=%d\n", rs.playerSteps)
	if rs.frames > 0 {
		fmt.Printf("trace_frames=%d\n", rs.frames)
	}
	fmt.Println()
}

type aggregate struct {
	runs       int
	captured   int
	won        int
	avgElapsed float64
	avgSpotted float64
	avgLost    float64
	firstSpot  string
	captureAt  string
}

func summarize(all []runStats) aggregate {
	ag := aggregate{runs: len(all)}
	var elapsed, spotted, lost int
	var spots, captures []int
	for _, rs := range all {
		switch rs.outcome {
		case sim.OutcomeCaptured:
			ag.captured++
		case sim.OutcomeWon:
			ag.won++
		}
		elapsed += rs.elapsed
		spotted += rs.spotted
		lost += rs.lostSight
		if rs.firstSpot >= 0 {
			spots = append(spots, rs.firstSpot)
		}
		if rs.captureAt >= 0 {
			captures = append(captures, rs.captureAt)
		}
	}
	ag.avgElapsed = avg(elapsed, len(all))
	ag.avgSpotted = avg(spotted, len(all))
	ag.avgLost = avg(lost, len(all))
	ag.firstSpot = avgTickString(spots)
	ag.captureAt = avgTickString(captures)
	return ag
}

func printAggregate(all []runStats) {
	ag := summarize(all)
	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d captured=%d won=%d undecided=%d\n", ag.runs, ag.captured, ag.won, ag.runs-ag.captured-ag.won)
	fmt.Printf("avg_survived_s=%.1f avg_spotted=%.1f avg_lost_sight=%.1f\n", ag.avgElapsed, ag.avgSpotted, ag.avgLost)
	fmt.Printf("avg_ticks: first_spot=%s capture=%s\n", ag.firstSpot, ag.captureAt)
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}
