package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/plus3/archstore/ecs"
	"github.com/rotisserie/eris"
)

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "store-stress: %v\n", err)
		os.Exit(2)
	}

	// validate already checked the level.
	level, _ := cfg.slogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(cfg, logger, os.Stdout); err != nil {
		logger.Error("stress test failed", "err", eris.ToString(err, true))
		os.Exit(1)
	}
}

func startProfile(cfg Config) interface{ Stop() } {
	switch cfg.Profile {
	case "cpu":
		return profile.Start(profile.CPUProfile, profile.ProfilePath(cfg.ProfilePath), profile.NoShutdownHook, profile.Quiet)
	case "mem":
		return profile.Start(profile.MemProfileAllocs, profile.ProfilePath(cfg.ProfilePath), profile.NoShutdownHook, profile.Quiet)
	}
	return nil
}

// run drives the store for cfg.Duration and writes the report to out. A fatal
// store assertion is recovered and returned as an error.
func run(cfg Config, logger *slog.Logger, out io.Writer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			perr, ok := r.(error)
			if !ok {
				panic(r)
			}
			if eris.Is(perr, ecs.ErrInvariantViolation) {
				logger.Error("store invariant violated")
			}
			err = eris.Wrap(perr, "store assertion failed")
		}
	}()

	if p := startProfile(cfg); p != nil {
		logger.Info("profiling enabled", "mode", cfg.Profile, "path", cfg.ProfilePath)
		defer p.Stop()
	}

	logger.Info("starting store stress test")

	rng := rand.New(rand.NewSource(cfg.Seed))

	// 1. Setup Universe, Registry, and Scheduler
	universe := ecs.NewUniverse()
	c := registerComponents(universe)
	registry := ecs.NewRegistry(universe,
		ecs.WithLogger(ecs.NewSlogLogger(logger)),
		ecs.WithReserve(cfg.Reserve),
	)

	aging := &AgingSystem{MaxAge: cfg.MaxAge}
	boosts := &BoostSystem{boost: c.Boost, chance: cfg.BoostChance, rng: rng}
	spawner := &SpawnSystem{PerFrame: cfg.SpawnPerFrame, rng: rng}

	scheduler := ecs.NewScheduler(registry)
	scheduler.Register(&MovementSystem{})
	scheduler.Register(boosts)
	scheduler.Register(aging)
	scheduler.Register(spawner)

	// 2. Populate the registry with initial entities
	logger.Info("populating registry", "entities", cfg.Entities)
	for i := 0; i < cfg.Entities; i++ {
		registry.CreateEntityWith(randomComponents(rng)...)
	}
	logger.Info("population complete", "pools", registry.PoolCount())

	// 3. Run the simulation loop
	report := &Report{
		Config: cfg,
		UpdateTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	logger.Info("running simulation", "duration", cfg.Duration)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	startTime := time.Now()
	lastFrameTime := startTime

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			updateStart := time.Now()
			scheduler.Once(deltaTime.Seconds())
			report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))
			report.TotalUpdates++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.UpdateTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)

	report.Spawned = spawner.spawned
	report.Despawned = aging.despawned
	report.BoostsAdded = boosts.added
	report.BoostsGone = boosts.removed
	report.Store = registry.CollectStats()
	report.Scheduler = scheduler.Stats()

	logger.Info("simulation finished", "updates", report.TotalUpdates, "entities", registry.Len())

	// 4. Generate Report
	return report.Generate(out)
}
