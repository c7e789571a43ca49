package sim

import (
	"log/slog"
	"time"

	"github.com/udisondev/orbitguard/internal/encounter"
	"github.com/udisondev/orbitguard/internal/model"
	"github.com/udisondev/orbitguard/internal/physics"
)

// Status is a point-in-time summary for the status reporter.
type Status struct {
	Score           int
	TurretHealth    float64
	TurretMaxHealth float64
	LiveShips       int
	Bullets         int
	ShipsSpawned    int64
	ShipsDestroyed  int
	TurretHits      int
	Elapsed         float64
	Frames          uint64
	Outcome         encounter.Outcome
	LastStep        physics.StepStats
}

// Status returns the current summary.
func (c *Context) Status() Status {
	env := c.env()
	c.mu.Lock()
	frames, stats, hits := c.frames, c.lastStats, c.turretHits
	c.mu.Unlock()

	return Status{
		Score:           env.Score,
		TurretHealth:    env.TurretHealth,
		TurretMaxHealth: env.TurretMaxHealth,
		LiveShips:       env.LiveShips,
		Bullets:         c.world.BulletCount(),
		ShipsSpawned:    c.spawner.SpawnCount(),
		ShipsDestroyed:  env.ShipsDestroyed,
		TurretHits:      hits,
		Elapsed:         env.Elapsed,
		Frames:          frames,
		Outcome:         c.director.Outcome(),
		LastStep:        stats,
	}
}

// Phase returns "running" until the encounter is decided, then the outcome.
func (c *Context) Phase() string {
	switch c.director.Outcome() {
	case encounter.OutcomeVictory:
		return PhaseVictory
	case encounter.OutcomeDefeat:
		return PhaseDefeat
	default:
		return PhaseRunning
	}
}

// SaveState captures the persistent part of the arena: score, turret health and
// progress counters. Ships and their controllers are not saved.
func (c *Context) SaveState() model.GameData {
	env := c.env()
	return model.GameData{
		TotalScore:          env.Score,
		TurretCurrentHealth: env.TurretHealth,
		TurretMaxHealth:     env.TurretMaxHealth,
		Phase:               c.Phase(),
		ShipsDestroyed:      env.ShipsDestroyed,
		Elapsed:             env.Elapsed,
		SavedAt:             time.Now(),
	}
}

// RestoreState applies a save taken by SaveState. Must be called before the first
// Frame. Saves of a finished encounter are ignored: the arena starts fresh.
func (c *Context) RestoreState(data model.GameData) bool {
	if data.Phase != "" && data.Phase != PhaseRunning {
		slog.Info("save belongs to a finished encounter, starting fresh", "phase", data.Phase)
		return false
	}

	c.ledger.Set(data.TotalScore)
	maxHealth := data.TurretMaxHealth
	if maxHealth <= 0 {
		_, maxHealth = c.turret.Health()
	}
	c.turret.SetHealth(data.TurretCurrentHealth, maxHealth)

	c.mu.Lock()
	c.shipsDestroyed = max(data.ShipsDestroyed, 0)
	c.turretHits = 0
	c.elapsed = max(data.Elapsed, 0)
	c.mu.Unlock()

	current, _ := c.turret.Health()
	slog.Info("game state restored",
		"score", c.ledger.Total(),
		"turretHealth", current,
		"shipsDestroyed", data.ShipsDestroyed,
		"savedAt", data.SavedAt)
	return true
}

// Result returns the finished encounter for the history table.
// Returns false while the encounter is undecided.
func (c *Context) Result() (model.EncounterResult, bool) {
	res, ok := c.director.Result()
	if !ok {
		return model.EncounterResult{}, false
	}
	return model.EncounterResult{
		Outcome:        res.Outcome.String(),
		Rule:           res.Rule,
		Score:          res.Env.Score,
		ShipsDestroyed: res.Env.ShipsDestroyed,
		TurretHealth:   res.Env.TurretHealth,
		Elapsed:        res.Env.Elapsed,
		FinishedAt:     time.Now(),
	}, true
}
