package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/ropeslack/config"
	"github.com/pthm-cable/ropeslack/scene"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Int("stats-window", 0, "Stats window size in frames (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "Driver noise seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 3000, "Stop after N frames (0 = unlimited)")
	untilSettled := flag.Bool("until-settled", false, "Stop once every rope is settled")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	s, err := scene.New(cfg, scene.Options{
		Seed:        rngSeed,
		LogStats:    *logStats,
		StatsWindow: *statsWindow,
		OutputDir:   *outputDir,
	})
	if err != nil {
		slog.Error("failed to create scene", "error", err)
		os.Exit(1)
	}

	slog.Info("starting rope simulation",
		"seed", rngSeed,
		"ropes", len(cfg.Scene.Ropes),
		"time_step", cfg.Physics.TimeStep,
		"spring", cfg.Derived.Spring,
		"max_stable_stiffness", cfg.Derived.MaxStableStiffness,
		"max_ticks", *maxTicks,
	)

	for {
		s.Update()

		if *untilSettled && s.Settled() == len(s.Ropes()) {
			slog.Info("all ropes settled", "tick", s.Tick())
			break
		}
		if *maxTicks > 0 && int(s.Tick()) >= *maxTicks {
			slog.Info("max ticks reached", "tick", s.Tick())
			break
		}
	}

	for _, r := range s.Ropes() {
		slog.Info("rope",
			"name", r.Name,
			"a", r.A,
			"b", r.B,
			"slack", r.Slack,
			"position", r.Position,
			"settled", r.Settled,
		)
	}

	if err := s.Unload(); err != nil {
		slog.Error("failed to close output", "error", err)
		os.Exit(1)
	}
}
