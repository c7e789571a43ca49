package ai

import (
	"fmt"
	"strings"
)

// AvoidanceMode selects how the peer repulsion vector is accumulated.
type AvoidanceMode int32

const (
	// AvoidanceAll sums repulsion over every peer inside the avoidance radius.
	AvoidanceAll AvoidanceMode = iota
	// AvoidanceNearest stops at the first peer found inside the radius.
	AvoidanceNearest
)

// String returns the config spelling of the mode
func (m AvoidanceMode) String() string {
	switch m {
	case AvoidanceAll:
		return "all"
	case AvoidanceNearest:
		return "nearest"
	default:
		return "unknown"
	}
}

// ParseAvoidanceMode parses "all" or "nearest" (empty means all).
func ParseAvoidanceMode(s string) (AvoidanceMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return AvoidanceAll, nil
	case "nearest", "first":
		return AvoidanceNearest, nil
	default:
		return AvoidanceAll, fmt.Errorf("unknown avoidance mode %q", s)
	}
}

// Params holds controller tuning shared by all ship types.
type Params struct {
	EvadeTimeout           float64 // seconds in Evade before returning to Patrol
	AttackGrace            float64 // seconds in Attack before returning to Patrol
	EvadeProjection        float64 // distance of the evade target along the perpendicular
	RetreatProjection      float64 // distance of the retreat target away from the turret
	RetreatSpeedMultiplier float64
	AvoidOrbitBoost        float64 // extra deg/s of orbit while avoiding peers in Patrol
	AvoidOffset            float64 // target offset along the repulsion vector
	SpawnOrbitJitter       float64 // ± degrees added to the initial orbit angle
	ContactDamage          float64 // damage dealt to the turret on ramming
	AvoidanceMode          AvoidanceMode
}

// DefaultParams returns the baseline controller tuning.
func DefaultParams() Params {
	return Params{
		EvadeTimeout:           1,
		AttackGrace:            3,
		EvadeProjection:        3,
		RetreatProjection:      4,
		RetreatSpeedMultiplier: 1.5,
		AvoidOrbitBoost:        45,
		AvoidOffset:            2,
		SpawnOrbitJitter:       30,
		ContactDamage:          10,
		AvoidanceMode:          AvoidanceAll,
	}
}
