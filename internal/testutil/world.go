package testutil

import (
	"testing"

	"github.com/udisondev/orbitguard/internal/model"
	"github.com/udisondev/orbitguard/internal/world"
)

// NewWorld creates an empty arena registry and resets it after the test.
func NewWorld(t testing.TB) *world.World {
	t.Helper()
	w := world.New(world.DefaultCellSize)
	t.Cleanup(w.Reset)
	return w
}

// AddShip registers a ship of tmpl at pos. The ship stays in the Spawning state.
func AddShip(t testing.TB, w *world.World, tmpl model.ShipTemplate, pos model.Vec3) *model.Ship {
	t.Helper()
	ship := model.NewShip(w.IDs().NextShipID(), tmpl, pos)
	if err := w.AddShip(ship); err != nil {
		t.Fatalf("adding ship: %v", err)
	}
	return ship
}

// AddBullet registers a bullet flying along dir.
func AddBullet(t testing.TB, w *world.World, pos, dir model.Vec3, speed, lifetime float64) *model.Bullet {
	t.Helper()
	b := model.NewBullet(w.IDs().NextBulletID(), pos, dir.Normalized(), speed, lifetime)
	if err := w.AddBullet(b); err != nil {
		t.Fatalf("adding bullet: %v", err)
	}
	return b
}

// NewTurret creates a turret with an ID from w at the fixture position.
func NewTurret(w *world.World, maxHealth float64) *model.Turret {
	return model.NewTurret(w.IDs().NextTurretID(), "turret", Fixtures.TurretPos, maxHealth)
}
