package config

import (
	"time"
)

// Simulation holds frame timing, arena size and collider sizes.
type Simulation struct {
	FrameInterval time.Duration `yaml:"frame_interval"` // decision tick period
	PhysicsStep   time.Duration `yaml:"physics_step"`   // fixed integrator step
	MaxFrameDelta time.Duration `yaml:"max_frame_delta"` // clamps long stalls

	ArenaWidth   float64 `yaml:"arena_width"`
	ArenaDepth   float64 `yaml:"arena_depth"`
	BulletMargin float64 `yaml:"bullet_margin"` // bullets expire this far outside the arena
	CellSize     float64 `yaml:"cell_size"`     // spatial grid cell

	ShipRadius    float64 `yaml:"ship_radius"`
	BulletRadius  float64 `yaml:"bullet_radius"`
	TurretRadius  float64 `yaml:"turret_radius"`
	TriggerRadius float64 `yaml:"trigger_radius"`
}

// DefaultSimulation returns 60 Hz decisions with a 50 Hz physics step on a 53×30 arena.
func DefaultSimulation() Simulation {
	return Simulation{
		FrameInterval: time.Second / 60,
		PhysicsStep:   20 * time.Millisecond,
		MaxFrameDelta: 250 * time.Millisecond,
		ArenaWidth:    53,
		ArenaDepth:    30,
		BulletMargin:  5,
		CellSize:      4,
		ShipRadius:    0.5,
		BulletRadius:  0.1,
		TurretRadius:  1.0,
		TriggerRadius: 0.6,
	}
}

// Turret holds the defended target and its automatic gunner.
type Turret struct {
	Name          string  `yaml:"name"`
	X             float64 `yaml:"x"`
	Z             float64 `yaml:"z"`
	MaxHealth     float64 `yaml:"max_health"`
	ContactDamage float64 `yaml:"contact_damage"` // dealt by a ramming ship

	GunnerEnabled  bool          `yaml:"gunner_enabled"`
	FireInterval   time.Duration `yaml:"fire_interval"`
	GunnerRange    float64       `yaml:"gunner_range"`
	BulletSpeed    float64       `yaml:"bullet_speed"`
	BulletLifetime time.Duration `yaml:"bullet_lifetime"`
}

// DefaultTurret returns a 100 HP turret at the arena center.
func DefaultTurret() Turret {
	return Turret{
		Name:           "turret",
		MaxHealth:      100,
		ContactDamage:  10,
		GunnerEnabled:  true,
		FireInterval:   600 * time.Millisecond,
		GunnerRange:    14,
		BulletSpeed:    12,
		BulletLifetime: 3 * time.Second,
	}
}

// AI holds controller tuning shared by all ship types.
type AI struct {
	AvoidanceMode          string  `yaml:"avoidance_mode"` // all|nearest
	EvadeTimeout           float64 `yaml:"evade_timeout"`
	AttackGrace            float64 `yaml:"attack_grace"`
	EvadeProjection        float64 `yaml:"evade_projection"`
	RetreatProjection      float64 `yaml:"retreat_projection"`
	RetreatSpeedMultiplier float64 `yaml:"retreat_speed_multiplier"`
	AvoidOrbitBoost        float64 `yaml:"avoid_orbit_boost"`
	AvoidOffset            float64 `yaml:"avoid_offset"`
	SpawnOrbitJitter       float64 `yaml:"spawn_orbit_jitter"`
}

// DefaultAI returns the baseline controller tuning.
func DefaultAI() AI {
	return AI{
		AvoidanceMode:          "all",
		EvadeTimeout:           1,
		AttackGrace:            3,
		EvadeProjection:        3,
		RetreatProjection:      4,
		RetreatSpeedMultiplier: 1.5,
		AvoidOrbitBoost:        45,
		AvoidOffset:            2,
		SpawnOrbitJitter:       30,
	}
}

// ShipType is one entry of the spawnable ship catalog.
// Zero-valued tuning fields fall back to the baseline fighter template.
type ShipType struct {
	Name            string  `yaml:"name"`
	Points          int     `yaml:"points"`
	MoveSpeed       float64 `yaml:"move_speed"`
	RotationSpeed   float64 `yaml:"rotation_speed"`
	DetectionRange  float64 `yaml:"detection_range"`
	EvadeDistance   float64 `yaml:"evade_distance"`
	OrbitRadius     float64 `yaml:"orbit_radius"`
	AvoidanceRadius float64 `yaml:"avoidance_radius"`
	AttackCooldown  float64 `yaml:"attack_cooldown"`
	RetreatDuration float64 `yaml:"retreat_duration"`
	PointsLostOnHit int     `yaml:"points_lost_on_hit"`
}

// DefaultShips returns five ship types worth 10 to 50 points.
func DefaultShips() []ShipType {
	return []ShipType{
		{Name: "scout", Points: 10},
		{Name: "fighter", Points: 20},
		{Name: "raider", Points: 30},
		{Name: "gunship", Points: 40},
		{Name: "dreadnought", Points: 50},
	}
}

// Spawner holds enemy wave settings.
type Spawner struct {
	Enabled      bool          `yaml:"enabled"`
	Interval     time.Duration `yaml:"interval"`
	MinSpacing   float64       `yaml:"min_spacing"`
	MaxAttempts  int           `yaml:"max_attempts"`
	MaxLiveShips int           `yaml:"max_live_ships"` // 0 = unlimited
	Seed         uint64        `yaml:"seed"`           // 0 = random
}

// DefaultSpawner returns one ship every two seconds.
func DefaultSpawner() Spawner {
	return Spawner{
		Enabled:      true,
		Interval:     2 * time.Second,
		MinSpacing:   5,
		MaxAttempts:  10,
		MaxLiveShips: 0,
	}
}

// Rule is an encounter rule as written in the config file.
type Rule struct {
	Name    string `yaml:"name"`
	When    string `yaml:"when"`
	Outcome string `yaml:"outcome"` // victory|defeat
}

// Encounter holds victory/defeat rules.
type Encounter struct {
	Rules []Rule `yaml:"rules"`
}

// DefaultEncounter wins at 250 points and loses with the turret.
func DefaultEncounter() Encounter {
	return Encounter{
		Rules: []Rule{
			{Name: "victory", When: "Score >= 250", Outcome: "victory"},
			{Name: "defeat", When: "TurretHealth <= 0", Outcome: "defeat"},
		},
	}
}
