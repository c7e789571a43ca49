package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/orbitguard/internal/model"
	"github.com/udisondev/orbitguard/internal/testutil"
	"github.com/udisondev/orbitguard/internal/world"
)

func newGunnerFixture(t *testing.T) (*Gunner, *world.World, *model.Turret) {
	t.Helper()
	w := testutil.NewWorld(t)
	turret := testutil.NewTurret(w, 100)
	g := NewGunner(GunnerConfig{
		FireInterval:   0.5,
		Range:          10,
		BulletSpeed:    12,
		BulletLifetime: 3,
	}, turret, w)
	return g, w, turret
}

func addShip(t *testing.T, w *world.World, pos model.Vec3) *model.Ship {
	t.Helper()
	return testutil.AddShip(t, w, testutil.Fixtures.Fighter, pos)
}

func TestGunner_FiresAtNearestShip(t *testing.T) {
	g, w, _ := newGunnerFixture(t)
	addShip(t, w, model.NewVec3(8, 0, 0))
	addShip(t, w, model.NewVec3(0, 0, -4))

	b := g.Update(0.01)
	require.NotNil(t, b, "first shot is ready immediately")
	assert.InDelta(t, 0.0, b.Direction().X, 1e-9)
	assert.InDelta(t, -1.0, b.Direction().Z, 1e-9)
	assert.Equal(t, 1, w.BulletCount())
	assert.Equal(t, int64(1), g.Fired())
}

func TestGunner_FireInterval(t *testing.T) {
	g, w, _ := newGunnerFixture(t)
	addShip(t, w, model.NewVec3(5, 0, 0))

	require.NotNil(t, g.Update(0.01))
	assert.Nil(t, g.Update(0.2))
	assert.Nil(t, g.Update(0.2))
	assert.NotNil(t, g.Update(0.2), "0.6s since the last shot")
	assert.Equal(t, int64(2), g.Fired())
}

func TestGunner_OutOfRangeStaysLoaded(t *testing.T) {
	g, w, _ := newGunnerFixture(t)
	ship := addShip(t, w, model.NewVec3(20, 0, 0))

	assert.Nil(t, g.Update(1))
	assert.Zero(t, w.BulletCount())

	ship.SetPosition(model.NewVec3(9, 0, 0))
	assert.NotNil(t, g.Update(0), "loaded weapon fires as soon as a ship is in range")
}

func TestGunner_SkipsDestroyedShipsAndTurret(t *testing.T) {
	g, w, turret := newGunnerFixture(t)
	ship := addShip(t, w, model.NewVec3(3, 0, 0))
	ship.SetState(model.ShipStateDestroyed)

	assert.Nil(t, g.Update(1))

	addShip(t, w, model.NewVec3(4, 0, 0))
	turret.ApplyDamage(1000)
	assert.Nil(t, g.Update(1))
	assert.Zero(t, g.Fired())
}
