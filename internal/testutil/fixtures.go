package testutil

import (
	"github.com/udisondev/orbitguard/internal/config"
	"github.com/udisondev/orbitguard/internal/model"
)

// Fixtures holds shared test data so tests don't redefine the same ships and positions.
var Fixtures = struct {
	// Baseline fighter tuning
	Fighter model.ShipTemplate

	// Slow ship with a wide avoidance radius, for peer avoidance tests
	Hauler model.ShipTemplate

	// Turret position used by arena fixtures
	TurretPos model.Vec3

	// Spawn seed that makes spawner tests reproducible
	Seed uint64
}{
	Fighter: model.DefaultShipTemplate(),
	Hauler: model.ShipTemplate{
		Name:            "hauler",
		MoveSpeed:       1.5,
		RotationSpeed:   60,
		DetectionRange:  8,
		EvadeDistance:   3,
		OrbitRadius:     6,
		AvoidanceRadius: 4,
		AttackCooldown:  4,
		RetreatDuration: 2,
		PointsOnDestroy: 50,
		PointsLostOnHit: -20,
	},
	TurretPos: model.Vec3{},
	Seed:      42,
}

// HeadlessConfig returns the default config with the spawner and gunner off, so a test
// places every ship and bullet itself, and a fixed spawn seed.
func HeadlessConfig() config.Config {
	cfg := config.Default()
	cfg.Spawner.Enabled = false
	cfg.Spawner.Seed = Fixtures.Seed
	cfg.Turret.GunnerEnabled = false
	cfg.Turret.X = Fixtures.TurretPos.X
	cfg.Turret.Z = Fixtures.TurretPos.Z
	return cfg
}
