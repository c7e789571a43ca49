package sim

import (
	"log/slog"
	"sync/atomic"

	"github.com/udisondev/orbitguard/internal/model"
	"github.com/udisondev/orbitguard/internal/world"
)

// GunnerConfig holds the turret weapon settings. Durations are seconds.
type GunnerConfig struct {
	FireInterval   float64
	Range          float64
	BulletSpeed    float64
	BulletLifetime float64
}

// Gunner fires the turret's weapon at the nearest live ship in range.
// Owned by the simulation loop.
type Gunner struct {
	cfg    GunnerConfig
	turret *model.Turret
	world  *world.World

	timer float64
	fired atomic.Int64
}

// NewGunner creates a gunner for turret. The first shot is ready immediately.
func NewGunner(cfg GunnerConfig, turret *model.Turret, w *world.World) *Gunner {
	return &Gunner{
		cfg:    cfg,
		turret: turret,
		world:  w,
		timer:  cfg.FireInterval,
	}
}

// Update advances the fire timer and fires at most one bullet.
// Returns the bullet, or nil if nothing was fired.
func (g *Gunner) Update(dt float64) *model.Bullet {
	if g.turret == nil || g.turret.IsDestroyed() {
		return nil
	}
	g.timer += dt
	if g.timer < g.cfg.FireInterval {
		return nil
	}

	origin := g.turret.Location()
	target, ok := g.nearestShip(origin)
	if !ok {
		// Stay loaded until something comes into range.
		return nil
	}
	dir := target.Position().Sub(origin).Flat().Normalized()
	if dir.IsZero() {
		return nil
	}

	b := model.NewBullet(g.world.IDs().NextBulletID(), origin, dir, g.cfg.BulletSpeed, g.cfg.BulletLifetime)
	if err := g.world.AddBullet(b); err != nil {
		slog.Error("failed to add bullet", "bulletID", b.ObjectID(), "error", err)
		return nil
	}
	g.timer = 0
	g.fired.Add(1)

	slog.Debug("turret fired",
		"bulletID", b.ObjectID(),
		"targetID", target.ObjectID(),
		"distance", origin.Distance(target.Position()))
	return b
}

func (g *Gunner) nearestShip(from model.Vec3) (*model.Ship, bool) {
	var nearest *model.Ship
	bestSq := g.cfg.Range * g.cfg.Range
	for _, ship := range g.world.Ships() {
		if ship.IsDestroyed() {
			continue
		}
		dSq := from.DistanceSquared(ship.Position())
		if dSq <= bestSq {
			bestSq = dSq
			nearest = ship
		}
	}
	return nearest, nearest != nil
}

// Fired returns the number of bullets fired.
func (g *Gunner) Fired() int64 {
	return g.fired.Load()
}

// Reset reloads the weapon.
func (g *Gunner) Reset() {
	g.timer = g.cfg.FireInterval
}
