package model

// ShipState is the gross behavior state of an enemy ship.
type ShipState int32

const (
	// ShipStateSpawning - transient state between construction and first activation
	ShipStateSpawning ShipState = iota
	// ShipStatePatrol - orbiting the turret
	ShipStatePatrol
	// ShipStateAttack - diving at the turret
	ShipStateAttack
	// ShipStateEvade - sidestepping an incoming bullet
	ShipStateEvade
	// ShipStateRetreat - bouncing off the turret after a hit
	ShipStateRetreat
	// ShipStateDestroyed - terminal, ship is scheduled for removal
	ShipStateDestroyed
)

// String returns human-readable state name
func (s ShipState) String() string {
	switch s {
	case ShipStateSpawning:
		return "SPAWNING"
	case ShipStatePatrol:
		return "PATROL"
	case ShipStateAttack:
		return "ATTACK"
	case ShipStateEvade:
		return "EVADE"
	case ShipStateRetreat:
		return "RETREAT"
	case ShipStateDestroyed:
		return "DESTROYED"
	default:
		return "UNKNOWN"
	}
}

// Decision is the single intent the decision layer emits per tick.
type Decision int32

const (
	DecisionKeepCourse Decision = iota
	DecisionEvadeThreat
	DecisionAttackTarget
	DecisionAvoidPeers
)

// String returns human-readable decision name
func (d Decision) String() string {
	switch d {
	case DecisionKeepCourse:
		return "KEEP_COURSE"
	case DecisionEvadeThreat:
		return "EVADE_THREAT"
	case DecisionAttackTarget:
		return "ATTACK_TARGET"
	case DecisionAvoidPeers:
		return "AVOID_PEERS"
	default:
		return "UNKNOWN"
	}
}
