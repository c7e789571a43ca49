// Package physics integrates ship and bullet motion and reports contacts.
package physics

import (
	"log/slog"

	"github.com/udisondev/orbitguard/internal/ai"
	"github.com/udisondev/orbitguard/internal/model"
	"github.com/udisondev/orbitguard/internal/world"
)

// Bounds is the arena rectangle on the XZ plane, centered on the origin.
// Bullets further than Margin outside it are expired.
type Bounds struct {
	Width  float64
	Depth  float64
	Margin float64
}

// Contains reports whether pos is inside the bounds extended by the margin.
func (b Bounds) Contains(pos model.Vec3) bool {
	if b.Width <= 0 || b.Depth <= 0 {
		return true
	}
	hw := b.Width/2 + b.Margin
	hd := b.Depth/2 + b.Margin
	return pos.X >= -hw && pos.X <= hw && pos.Z >= -hd && pos.Z <= hd
}

// Config holds collider sizes.
type Config struct {
	ShipRadius    float64
	BulletRadius  float64
	TurretRadius  float64
	TriggerRadius float64 // ship trigger volume, independent of the collider
	Bounds        Bounds
}

// DefaultConfig returns collider sizes matching a 53×30 arena.
func DefaultConfig() Config {
	return Config{
		ShipRadius:    0.5,
		BulletRadius:  0.1,
		TurretRadius:  1.0,
		TriggerRadius: 0.6,
		Bounds:        Bounds{Width: 53, Depth: 30, Margin: 5},
	}
}

// HandlerLookup resolves the contact handler of a ship.
type HandlerLookup func(shipID uint32) (ai.ContactHandler, bool)

// StepStats summarizes one physics step.
type StepStats struct {
	Ships           int
	Bullets         int
	ThreatContacts  int // collider path
	TriggerContacts int // trigger path
	TargetContacts  int
	ExpiredBullets  int
}

// Engine is the rigid-body integrator with contact detection.
// Owned by the simulation loop; not safe for concurrent Step calls.
type Engine struct {
	cfg Config

	// ships currently touching the turret; contact is reported on enter only
	touching map[uint32]struct{}
}

// NewEngine creates a physics engine.
func NewEngine(cfg Config) *Engine {
	return &Engine{
		cfg:      cfg,
		touching: make(map[uint32]struct{}),
	}
}

// Config returns collider configuration
func (e *Engine) Config() Config {
	return e.cfg
}

type threatContact struct {
	handler ai.ContactHandler
	bullet  *model.Bullet
	trigger bool
}

// Step advances all bodies by dt and dispatches contacts.
// Motion is planar: ship Y is pinned to zero. target may be nil.
func (e *Engine) Step(dt float64, w *world.World, target ai.Target, lookup HandlerLookup) StepStats {
	var stats StepStats

	ships := w.Ships()
	for _, ship := range ships {
		if ship.IsDestroyed() {
			continue
		}
		pos := ship.Position().Add(ship.Velocity().Scale(dt))
		pos.Y = 0
		ship.SetPosition(pos)
		stats.Ships++
	}

	for _, b := range w.Bullets() {
		if !b.IsActive() {
			continue
		}
		if !b.Advance(dt) || !e.cfg.Bounds.Contains(b.Position()) {
			b.Deactivate()
			stats.ExpiredBullets++
			continue
		}
		stats.Bullets++
	}

	snap := w.Snapshot()

	// Collect first, dispatch after: both detection paths see the same bullets,
	// the handler applies a destruction only once.
	var hits []threatContact
	var rams []ai.ContactHandler
	seen := make(map[uint32]struct{}, len(ships))

	targetOK := target != nil && !target.IsDestroyed()
	var targetPos model.Vec3
	if targetOK {
		targetPos = target.Location()
	}

	for _, ship := range ships {
		if ship.IsDestroyed() {
			continue
		}
		handler, ok := lookup(ship.ObjectID())
		if !ok {
			continue
		}
		pos := ship.Position()

		snap.ForEachThreat(pos, e.cfg.ShipRadius+e.cfg.BulletRadius, func(t world.Threat) bool {
			hits = append(hits, threatContact{handler: handler, bullet: t.Bullet})
			return true
		})
		if e.cfg.TriggerRadius > 0 {
			snap.ForEachThreat(pos, e.cfg.TriggerRadius+e.cfg.BulletRadius, func(t world.Threat) bool {
				hits = append(hits, threatContact{handler: handler, bullet: t.Bullet, trigger: true})
				return true
			})
		}

		if !targetOK {
			continue
		}
		id := ship.ObjectID()
		if pos.Flat().Distance(targetPos.Flat()) <= e.cfg.ShipRadius+e.cfg.TurretRadius {
			seen[id] = struct{}{}
			if _, already := e.touching[id]; !already {
				e.touching[id] = struct{}{}
				rams = append(rams, handler)
			}
		}
	}

	// Contact episodes end when the ship separates or leaves the arena.
	for id := range e.touching {
		if _, ok := seen[id]; !ok {
			delete(e.touching, id)
		}
	}

	// A bullet is spent on the first ship it strikes; only that ship's other
	// detection path may still report it.
	consumed := make(map[*model.Bullet]ai.ContactHandler, len(hits))
	for _, h := range hits {
		if owner, ok := consumed[h.bullet]; ok && owner != h.handler {
			continue
		}
		if h.trigger {
			stats.TriggerContacts++
		} else {
			stats.ThreatContacts++
		}
		h.handler.OnThreatContact(h.bullet)
		consumed[h.bullet] = h.handler
	}

	for _, h := range rams {
		if h.OnTargetContact(target) {
			stats.TargetContacts++
		}
	}

	if stats.ThreatContacts+stats.TriggerContacts+stats.TargetContacts > 0 && ai.IsDebugEnabled() {
		slog.Debug("physics contacts",
			"threat", stats.ThreatContacts,
			"trigger", stats.TriggerContacts,
			"target", stats.TargetContacts)
	}

	return stats
}

// Reset forgets contact episodes. Used on level unload.
func (e *Engine) Reset() {
	clear(e.touching)
}
