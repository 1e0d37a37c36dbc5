package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/ccs/datalogd/internal/config"
	"codeberg.org/ccs/datalogd/internal/logger"
	"codeberg.org/ccs/datalogd/internal/pid"
	"codeberg.org/ccs/datalogd/internal/power"
	"codeberg.org/ccs/datalogd/internal/record"
	"codeberg.org/ccs/datalogd/internal/schedule"
	"codeberg.org/ccs/datalogd/internal/sensor"
	"codeberg.org/ccs/datalogd/internal/state"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	log, err := logger.New(logger.Config{
		Level: cfg.LogLevel,
		Dir:   cfg.LogDir,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer log.Close()

	if err := pid.Write(); err != nil {
		log.Error().Err(err).Msg("Refusing to start")
		return 1
	}
	defer pid.Remove()

	store := schedule.NewStore()
	for i := range cfg.Sources {
		src := &cfg.Sources[i]
		if err := store.Register(&schedule.Descriptor{
			Name:        src.Name,
			Period:      src.Period,
			RolloverMax: src.RolloverCount,
			Settings:    src.Settings,
		}); err != nil {
			log.Error().Err(err).Msg("Invalid source configuration")
			return 1
		}
	}
	if store.Len() == 0 {
		log.Warn().Msg("No sources configured; nothing will be collected")
	}

	sources := make([]sensor.Source, 0, len(cfg.Sources))
	for i := range cfg.Sources {
		sc := &cfg.Sources[i]
		src, err := sensor.Open(sc.Driver, sc.Name)
		if err != nil {
			log.Error().Err(err).Str("source", sc.Name).
				Msg("No driver for source; excluded from collection")
			continue
		}
		sources = append(sources, src)
	}

	states, err := state.NewRepository(state.Config{Path: cfg.StateDB}, log)
	if err != nil {
		log.Error().Err(err).Msg("State persistence unavailable; continuing without it")
		states = state.NewNoopRepository()
	}
	defer states.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec := record.NewRecorder(cfg.DataDir, log)
	sched := schedule.New(store, rec, states, log, schedule.Options{
		Quantum:        time.Duration(cfg.TickSeconds) * time.Second,
		CollectOnStart: cfg.CollectOnStart,
	})
	if err := sched.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to restore schedule state; starting fresh")
	}
	sched.Bind(sources)

	if cfg.PowerManager != "" {
		return runPowerCycle(ctx, cfg, sched, log)
	}

	log.Info().Int("tick_seconds", cfg.TickSeconds).Msg("Entering collection loop")
	if err := sched.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Error in main loop")
		return 1
	}
	log.Info().Msg("Exiting...")

	return 0
}

// runPowerCycle performs one wake-collect-sleep cycle against the
// configured power device. An unreachable device is a clean exit, not
// a crash loop; the machine is assumed to be up for inspection.
func runPowerCycle(ctx context.Context, cfg *config.Config, sched *schedule.Scheduler, log *logger.Logger) int {
	dev, err := power.Open(cfg.PowerManager)
	if err != nil {
		log.Error().Err(err).Str("kind", cfg.PowerManager).
			Msg("Unknown power device; entering browse mode")
		return 0
	}

	coord := power.NewCoordinator(dev, sched,
		time.Duration(cfg.PowerPeriodSeconds)*time.Second, log)
	if err := coord.Run(ctx); err != nil {
		if power.IsSafeExit(err) {
			return 0
		}
		log.Error().Err(err).Msg("Wake cycle failed")
		return 1
	}

	return 0
}
