package sim

import (
	"fmt"

	"github.com/udisondev/orbitguard/internal/ai"
	"github.com/udisondev/orbitguard/internal/config"
	"github.com/udisondev/orbitguard/internal/encounter"
	"github.com/udisondev/orbitguard/internal/model"
	"github.com/udisondev/orbitguard/internal/physics"
	"github.com/udisondev/orbitguard/internal/spawn"
)

// ShipCatalog converts the configured ship types into templates.
// Zero-valued fields take the baseline fighter value; the penalty is always negative.
func ShipCatalog(types []config.ShipType) []model.ShipTemplate {
	base := model.DefaultShipTemplate()
	catalog := make([]model.ShipTemplate, 0, len(types))
	for _, st := range types {
		tmpl := base
		tmpl.Name = st.Name
		tmpl.MoveSpeed = orDefault(st.MoveSpeed, base.MoveSpeed)
		tmpl.RotationSpeed = orDefault(st.RotationSpeed, base.RotationSpeed)
		tmpl.DetectionRange = orDefault(st.DetectionRange, base.DetectionRange)
		tmpl.EvadeDistance = orDefault(st.EvadeDistance, base.EvadeDistance)
		tmpl.OrbitRadius = orDefault(st.OrbitRadius, base.OrbitRadius)
		tmpl.AvoidanceRadius = orDefault(st.AvoidanceRadius, base.AvoidanceRadius)
		tmpl.AttackCooldown = orDefault(st.AttackCooldown, base.AttackCooldown)
		tmpl.RetreatDuration = orDefault(st.RetreatDuration, base.RetreatDuration)
		tmpl.PointsOnDestroy = orDefault(st.Points, base.PointsOnDestroy)
		if st.PointsLostOnHit != 0 {
			tmpl.PointsLostOnHit = -abs(st.PointsLostOnHit)
		}
		catalog = append(catalog, tmpl)
	}
	return catalog
}

// AIParams builds controller tuning from the ai and turret sections.
func AIParams(cfg config.AI, turret config.Turret) (ai.Params, error) {
	mode, err := ai.ParseAvoidanceMode(cfg.AvoidanceMode)
	if err != nil {
		return ai.Params{}, fmt.Errorf("ai.avoidance_mode: %w", err)
	}
	return ai.Params{
		EvadeTimeout:           cfg.EvadeTimeout,
		AttackGrace:            cfg.AttackGrace,
		EvadeProjection:        cfg.EvadeProjection,
		RetreatProjection:      cfg.RetreatProjection,
		RetreatSpeedMultiplier: cfg.RetreatSpeedMultiplier,
		AvoidOrbitBoost:        cfg.AvoidOrbitBoost,
		AvoidOffset:            cfg.AvoidOffset,
		SpawnOrbitJitter:       cfg.SpawnOrbitJitter,
		ContactDamage:          turret.ContactDamage,
		AvoidanceMode:          mode,
	}, nil
}

// PhysicsConfig builds collider sizes and bullet bounds from the simulation section.
func PhysicsConfig(cfg config.Simulation) physics.Config {
	return physics.Config{
		ShipRadius:    cfg.ShipRadius,
		BulletRadius:  cfg.BulletRadius,
		TurretRadius:  cfg.TurretRadius,
		TriggerRadius: cfg.TriggerRadius,
		Bounds: physics.Bounds{
			Width:  cfg.ArenaWidth,
			Depth:  cfg.ArenaDepth,
			Margin: cfg.BulletMargin,
		},
	}
}

// SpawnConfig builds spawner settings. Ships face the turret.
func SpawnConfig(cfg config.Config, target model.Vec3) spawn.Config {
	return spawn.Config{
		Interval:     cfg.Spawner.Interval.Seconds(),
		ArenaWidth:   cfg.Simulation.ArenaWidth,
		ArenaDepth:   cfg.Simulation.ArenaDepth,
		Target:       target,
		MinSpacing:   cfg.Spawner.MinSpacing,
		MaxAttempts:  cfg.Spawner.MaxAttempts,
		MaxLiveShips: cfg.Spawner.MaxLiveShips,
	}
}

// EncounterRules converts configured rules.
func EncounterRules(rules []config.Rule) ([]encounter.Rule, error) {
	out := make([]encounter.Rule, 0, len(rules))
	for i, r := range rules {
		outcome, err := encounter.ParseOutcome(r.Outcome)
		if err != nil {
			return nil, fmt.Errorf("encounter.rules[%d]: %w", i, err)
		}
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("rule_%d", i)
		}
		out = append(out, encounter.Rule{Name: name, When: r.When, Outcome: outcome})
	}
	return out, nil
}

func orDefault[T int | float64](v, def T) T {
	if v == 0 {
		return def
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
