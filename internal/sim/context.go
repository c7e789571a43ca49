package sim

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/udisondev/orbitguard/internal/ai"
	"github.com/udisondev/orbitguard/internal/config"
	"github.com/udisondev/orbitguard/internal/encounter"
	"github.com/udisondev/orbitguard/internal/model"
	"github.com/udisondev/orbitguard/internal/physics"
	"github.com/udisondev/orbitguard/internal/score"
	"github.com/udisondev/orbitguard/internal/spawn"
	"github.com/udisondev/orbitguard/internal/world"
)

// Encounter phases stored in the save slot.
const (
	PhaseRunning = "running"
	PhaseVictory = "victory"
	PhaseDefeat  = "defeat"
)

// Context owns everything one loaded arena needs: the entity registry, the turret,
// the score ledger and the managers that drive them. Created on level load and
// discarded (or Reset) on unload.
//
// Frame and the setters below must be called from one goroutine; the accessors and
// Status are safe to call concurrently.
type Context struct {
	cfg config.Config

	world    *world.World
	turret   *model.Turret
	ledger   *score.Ledger
	ai       *ai.TickManager
	engine   *physics.Engine
	spawner  *spawn.Manager
	director *encounter.Director
	gunner   *Gunner
	params   ai.Params

	frameDt   float64
	physicsDt float64
	maxDt     float64

	accumulator float64

	mu             sync.Mutex
	elapsed        float64
	shipsDestroyed int
	turretHealth   float64 // last health seen by onTurretHealth
	turretHits     int
	frames         uint64
	lastStats      physics.StepStats
}

// New builds a simulation context from cfg.
func New(cfg config.Config) (*Context, error) {
	if cfg.Simulation.PhysicsStep <= 0 {
		return nil, fmt.Errorf("physics step must be positive, got %s", cfg.Simulation.PhysicsStep)
	}
	params, err := AIParams(cfg.AI, cfg.Turret)
	if err != nil {
		return nil, err
	}
	rules, err := EncounterRules(cfg.Encounter.Rules)
	if err != nil {
		return nil, err
	}
	director, err := encounter.NewDirector(rules)
	if err != nil {
		return nil, fmt.Errorf("building encounter director: %w", err)
	}
	catalog := ShipCatalog(cfg.Ships)
	if len(catalog) == 0 {
		return nil, spawn.ErrEmptyCatalog
	}

	w := world.New(cfg.Simulation.CellSize)
	turretPos := model.NewVec3(cfg.Turret.X, 0, cfg.Turret.Z)
	turret := model.NewTurret(w.IDs().NextTurretID(), cfg.Turret.Name, turretPos, cfg.Turret.MaxHealth)

	c := &Context{
		cfg:       cfg,
		world:     w,
		turret:    turret,
		ledger:    score.NewLedger(),
		ai:        ai.NewTickManager(),
		engine:    physics.NewEngine(PhysicsConfig(cfg.Simulation)),
		director:  director,
		params:    params,
		frameDt:   cfg.Simulation.FrameInterval.Seconds(),
		physicsDt: cfg.Simulation.PhysicsStep.Seconds(),
		maxDt:     cfg.Simulation.MaxFrameDelta.Seconds(),
	}
	c.turretHealth, _ = turret.Health()

	var rng *rand.Rand
	if seed := cfg.Spawner.Seed; seed != 0 {
		rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	c.spawner = spawn.NewManager(SpawnConfig(cfg, turretPos), catalog, w, c.ai, c.newController, rng)
	c.spawner.OnDespawn(c.onDespawn)

	if cfg.Turret.GunnerEnabled {
		c.gunner = NewGunner(GunnerConfig{
			FireInterval:   cfg.Turret.FireInterval.Seconds(),
			Range:          cfg.Turret.GunnerRange,
			BulletSpeed:    cfg.Turret.BulletSpeed,
			BulletLifetime: cfg.Turret.BulletLifetime.Seconds(),
		}, turret, w)
	}

	turret.OnHealthChange(c.onTurretHealth)
	turret.OnDeath(func() {
		slog.Warn("turret destroyed", "turret", turret.Name())
	})

	slog.Info("simulation context created",
		"arena", fmt.Sprintf("%.0fx%.0f", cfg.Simulation.ArenaWidth, cfg.Simulation.ArenaDepth),
		"shipTypes", len(catalog),
		"avoidance", params.AvoidanceMode.String(),
		"rules", len(rules),
		"gunner", cfg.Turret.GunnerEnabled)

	return c, nil
}

// newController is the spawner's factory: every ship gets the shared tuning,
// a direct reference to the turret and the score ledger.
func (c *Context) newController(ship *model.Ship) *ai.ShipAI {
	return ai.NewShipAI(ship, c.params, c.turret, c.ledger)
}

// contactHandler resolves the controller of a ship for the physics step.
func (c *Context) contactHandler(shipID uint32) (ai.ContactHandler, bool) {
	ctrl, err := c.ai.GetController(shipID)
	if err != nil {
		return nil, false
	}
	h, ok := ctrl.(ai.ContactHandler)
	return h, ok
}

func (c *Context) onDespawn(ship *model.Ship) {
	if !ship.IsDestroyed() {
		return
	}
	c.mu.Lock()
	c.shipsDestroyed++
	c.mu.Unlock()
}

// onTurretHealth counts health drops. Restores and resets only move the baseline.
func (c *Context) onTurretHealth(current, maxHealth float64) {
	c.mu.Lock()
	hit := current < c.turretHealth
	c.turretHealth = current
	if hit {
		c.turretHits++
	}
	hits := c.turretHits
	c.mu.Unlock()

	if hit {
		slog.Info("turret hit", "health", current, "maxHealth", maxHealth, "hits", hits)
	}
}

// World returns the entity registry.
func (c *Context) World() *world.World {
	return c.world
}

// Turret returns the defended target.
func (c *Context) Turret() *model.Turret {
	return c.turret
}

// Ledger returns the score ledger.
func (c *Context) Ledger() *score.Ledger {
	return c.ledger
}

// TickManager returns the controller manager.
func (c *Context) TickManager() *ai.TickManager {
	return c.ai
}

// Spawner returns the ship spawner.
func (c *Context) Spawner() *spawn.Manager {
	return c.spawner
}

// Director returns the encounter director.
func (c *Context) Director() *encounter.Director {
	return c.director
}

// Gunner returns the turret gunner, nil when disabled.
func (c *Context) Gunner() *Gunner {
	return c.gunner
}

// FrameInterval returns the configured frame period.
func (c *Context) FrameInterval() time.Duration {
	return c.cfg.Simulation.FrameInterval
}

// Reset unloads the level and starts over: all ships and bullets are removed,
// score and turret health are restored and the outcome is cleared.
func (c *Context) Reset() {
	c.ai.Reset()
	c.world.Reset()
	c.engine.Reset()
	c.spawner.Reset()
	c.director.Reset()
	c.ledger.Reset()
	_, maxHealth := c.turret.Health()
	c.turret.SetHealth(maxHealth, maxHealth)
	if c.gunner != nil {
		c.gunner.Reset()
	}

	c.accumulator = 0
	c.mu.Lock()
	c.elapsed = 0
	c.shipsDestroyed = 0
	c.turretHits = 0
	c.frames = 0
	c.lastStats = physics.StepStats{}
	c.mu.Unlock()

	slog.Info("simulation reset")
}
