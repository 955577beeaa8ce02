package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/pkg/profile"

	"github.com/zeusync/simcore/internal/config"
	"github.com/zeusync/simcore/internal/core/observability/log"
	"github.com/zeusync/simcore/internal/injector"
)

func main() {
	os.Exit(execute(os.Args[1:]))
}

// execute returns the process exit code so deferred cleanup runs before os.Exit.
func execute(args []string) int {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "path to a .yaml, .yml or .toml config file")
		frames     = fs.Int("frames", 0, "run this many frames headless and exit; 0 runs in real time")
		profileDir = fs.String("profile", "", "write a CPU profile to this directory")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *profileDir != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*profileDir), profile.NoShutdownHook, profile.Quiet).Stop()
	}

	if err := run(*configPath, *frames); err != nil {
		fmt.Fprintln(os.Stderr, "simulate:", err)
		return 1
	}
	return 0
}

func run(configPath string, frames int) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}

	app, err := injector.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	logger := app.Logger.With(log.String("run", uuid.NewString()))
	defer func() { _ = app.Logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("simulation configured",
		log.Float64("fixed_step", cfg.Simulation.FixedStep),
		log.Int("frame_rate", cfg.Simulation.FrameRate),
		log.Int("entities", app.Registry.EntityCount()),
		log.Bool("inspector", cfg.Inspector.Enabled))

	if frames > 0 {
		err = app.RunHeadless(ctx, frames)
	} else {
		err = app.Run(ctx)
	}
	if err != nil {
		logger.Error("simulation failed", log.Error(err))
		return err
	}
	logger.Info("simulation finished",
		log.Uint64("ticks", app.Registry.Ticks()),
		log.Uint64("steps", app.World.Steps()),
		log.Uint64("digest", app.World.Digest()))
	return nil
}
