package sim

import (
	"context"
	"log/slog"
	"time"

	"github.com/udisondev/orbitguard/internal/encounter"
	"github.com/udisondev/orbitguard/internal/physics"
)

// Frame advances the arena by dt seconds of simulation time.
//
// Order per frame: spawn, sense (snapshot of positions as left by the previous physics
// step), decision tick, fixed physics steps, gunner, encounter rules. Once the encounter
// is decided Frame is a no-op and returns the latched outcome.
func (c *Context) Frame(dt float64) (encounter.Outcome, bool) {
	if outcome := c.director.Outcome(); outcome != encounter.OutcomeNone {
		return outcome, true
	}
	if dt <= 0 {
		return encounter.OutcomeNone, false
	}
	if c.maxDt > 0 {
		dt = min(dt, c.maxDt)
	}

	if c.cfg.Spawner.Enabled {
		c.spawner.Update(dt)
	}

	snap := c.world.Snapshot()
	panicsBefore := c.ai.Panics()
	c.ai.TickAll(dt, snap)

	var stats physics.StepStats
	steps := 0
	c.accumulator += dt
	for c.accumulator >= c.physicsDt {
		steps++
		c.accumulator -= c.physicsDt
		c.ai.StepAll(c.physicsDt)
		s := c.engine.Step(c.physicsDt, c.world, c.turret, c.contactHandler)
		c.world.PruneBullets()
		stats = mergeStats(stats, s)
	}

	if c.ai.Panics() != panicsBefore {
		c.dropOrphans()
	}

	if c.gunner != nil {
		c.gunner.Update(dt)
	}

	c.mu.Lock()
	c.elapsed += dt
	c.frames++
	if steps > 0 {
		c.lastStats = stats
	}
	c.mu.Unlock()

	return c.director.Evaluate(c.env())
}

// dropOrphans removes ships whose controller was unregistered after a panic.
func (c *Context) dropOrphans() {
	for _, ship := range c.world.Ships() {
		if _, err := c.ai.GetController(ship.ObjectID()); err == nil {
			continue
		}
		c.spawner.Despawn(ship)
		slog.Warn("removed ship without controller", "objectID", ship.ObjectID(), "ship", ship.Name())
	}
}

func (c *Context) env() encounter.Env {
	current, maxHealth := c.turret.Health()
	c.mu.Lock()
	defer c.mu.Unlock()
	return encounter.Env{
		Score:           c.ledger.Total(),
		TurretHealth:    current,
		TurretMaxHealth: maxHealth,
		LiveShips:       c.world.ShipCount(),
		ShipsDestroyed:  c.shipsDestroyed,
		Elapsed:         c.elapsed,
	}
}

func mergeStats(a, b physics.StepStats) physics.StepStats {
	// Counts of live bodies are taken from the latest step; contacts accumulate.
	a.Ships = b.Ships
	a.Bullets = b.Bullets
	a.ThreatContacts += b.ThreatContacts
	a.TriggerContacts += b.TriggerContacts
	a.TargetContacts += b.TargetContacts
	a.ExpiredBullets += b.ExpiredBullets
	return a
}

// Run drives Frame from a wall-clock ticker until ctx is canceled or the
// encounter is decided. Frame deltas are measured, then clamped by Frame.
func (c *Context) Run(ctx context.Context) (encounter.Outcome, error) {
	interval := c.FrameInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("simulation loop started",
		"frameInterval", interval,
		"physicsStep", c.cfg.Simulation.PhysicsStep)

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			slog.Info("simulation loop stopping")
			return c.director.Outcome(), ctx.Err()
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if outcome, done := c.Frame(dt); done {
				slog.Info("simulation loop finished", "outcome", outcome.String())
				return outcome, nil
			}
		}
	}
}
