package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/orbitguard/internal/ai"
	"github.com/udisondev/orbitguard/internal/config"
	"github.com/udisondev/orbitguard/internal/db"
	"github.com/udisondev/orbitguard/internal/sim"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config FIRST to determine log level
	cfgPath := config.Path()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	// Enable AI debug logging if log level is debug
	ai.EnableDebugLogging(logLevel == slog.LevelDebug)

	slog.Info("orbitguard starting", "config", cfgPath, "log_level", cfg.LogLevel)

	arena, err := sim.New(cfg)
	if err != nil {
		return fmt.Errorf("creating simulation: %w", err)
	}

	var store *db.DB
	if cfg.Database.Enabled {
		store, err = openStore(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := restore(ctx, store, arena); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	// The simulation loop ends the group when the encounter is decided.
	loopCtx, endEncounter := context.WithCancel(gctx)
	defer endEncounter()

	g.Go(func() error {
		defer endEncounter()
		outcome, err := arena.Run(loopCtx)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("simulation loop: %w", err)
		}
		slog.Info("encounter over", "outcome", outcome.String())
		return nil
	})

	g.Go(func() error {
		return reportStatus(loopCtx, arena, cfg.StatusInterval)
	})

	if store != nil && cfg.AutosaveInterval > 0 {
		g.Go(func() error {
			return autosave(loopCtx, store, arena, cfg.AutosaveInterval)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if store != nil {
		// ctx may already be canceled by a signal; persistence gets its own deadline.
		saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := persistFinal(saveCtx, store, arena); err != nil {
			return err
		}
	}

	st := arena.Status()
	slog.Info("orbitguard stopped",
		"phase", arena.Phase(),
		"score", st.Score,
		"shipsDestroyed", st.ShipsDestroyed,
		"elapsed", st.Elapsed)
	return nil
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (*db.DB, error) {
	store, err := db.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	slog.Info("database connected", "host", cfg.Host, "dbname", cfg.DBName)

	if err := db.RunMigrations(ctx, store.Pool()); err != nil {
		store.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return store, nil
}

func restore(ctx context.Context, store *db.DB, arena *sim.Context) error {
	data, err := store.Saves.LoadGame(ctx)
	if errors.Is(err, db.ErrNoSave) {
		slog.Info("no saved game, starting fresh")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading saved game: %w", err)
	}
	arena.RestoreState(data)

	if best, err := store.Results.BestScore(ctx); err == nil && best > 0 {
		slog.Info("best recorded score", "score", best)
	}
	return nil
}

// persistFinal records a decided encounter and clears the slot,
// or saves the slot if the encounter was interrupted.
func persistFinal(ctx context.Context, store *db.DB, arena *sim.Context) error {
	if res, ok := arena.Result(); ok {
		id, err := store.FinishEncounter(ctx, res)
		if err != nil {
			return fmt.Errorf("finishing encounter: %w", err)
		}
		slog.Info("encounter result recorded", "id", id, "outcome", res.Outcome, "score", res.Score)
		return nil
	}

	if err := store.Saves.SaveGame(ctx, arena.SaveState()); err != nil {
		return fmt.Errorf("saving game on exit: %w", err)
	}
	slog.Info("game saved on exit")
	return nil
}

// autosave periodically writes the save slot. Blocks until ctx is canceled.
func autosave(ctx context.Context, store *db.DB, arena *sim.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("autosave loop started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("autosave loop stopping")
			return nil
		case <-ticker.C:
			if err := store.Saves.SaveGame(ctx, arena.SaveState()); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				slog.Error("autosave failed", "error", err)
				continue
			}
			slog.Debug("game autosaved")
		}
	}
}

// reportStatus logs a summary of the arena. Blocks until ctx is canceled.
func reportStatus(ctx context.Context, arena *sim.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			st := arena.Status()
			slog.Info("arena status",
				"score", st.Score,
				"turretHealth", st.TurretHealth,
				"turretHits", st.TurretHits,
				"liveShips", st.LiveShips,
				"bullets", st.Bullets,
				"spawned", st.ShipsSpawned,
				"destroyed", st.ShipsDestroyed,
				"elapsed", fmt.Sprintf("%.1fs", st.Elapsed),
				"frames", st.Frames,
				"aiPanics", arena.TickManager().Panics())
		}
	}
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info for unknown values.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
