package model

// ShipTemplate holds the immutable per-type tuning of an enemy ship.
// Distances are arena units, speeds units/s, RotationSpeed deg/s, timers seconds.
type ShipTemplate struct {
	Name            string
	MoveSpeed       float64
	RotationSpeed   float64
	DetectionRange  float64 // bullets beyond this are ignored
	EvadeDistance   float64 // bullets closer than this trigger evasion
	OrbitRadius     float64
	AvoidanceRadius float64 // peers closer than this are pushed away from
	AttackCooldown  float64
	RetreatDuration float64
	PointsOnDestroy int
	PointsLostOnHit int // negative: score delta applied when ramming the turret
}

// DefaultShipTemplate returns the baseline fighter tuning.
func DefaultShipTemplate() ShipTemplate {
	return ShipTemplate{
		Name:            "fighter",
		MoveSpeed:       3,
		RotationSpeed:   120,
		DetectionRange:  8,
		EvadeDistance:   3,
		OrbitRadius:     4,
		AvoidanceRadius: 2.5,
		AttackCooldown:  2,
		RetreatDuration: 1.5,
		PointsOnDestroy: 10,
		PointsLostOnHit: -10,
	}
}
