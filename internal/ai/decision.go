package ai

import (
	"github.com/udisondev/orbitguard/internal/model"
	"github.com/udisondev/orbitguard/internal/world"
)

// decide samples the perception snapshot and emits exactly one intent.
// Priority: Retreat lock > Evade > AvoidPeers > Attack > KeepCourse.
// Only the per-tick scratch (threat, avoidance) is written here, never the state or target.
func (ai *ShipAI) decide(view Perception) model.Decision {
	ai.hasThreat = false
	ai.threat = world.Threat{}
	ai.avoidance = model.Vec3{}
	ai.avoidPending = false

	state := ai.ship.State()
	if state == model.ShipStateRetreat {
		return model.DecisionKeepCourse
	}

	if view != nil {
		pos := ai.ship.Position()

		if threat, ok := view.NearestThreat(pos, ai.tmpl.DetectionRange); ok {
			ai.threat = threat
			ai.hasThreat = true
			if threat.Distance < ai.tmpl.EvadeDistance {
				return model.DecisionEvadeThreat
			}
		}

		if ai.checkNearbyShips(view, pos) {
			return model.DecisionAvoidPeers
		}
	}

	if ai.attackReady(state) {
		return model.DecisionAttackTarget
	}

	return model.DecisionKeepCourse
}

// attackReady reports whether an attack intent may be emitted.
func (ai *ShipAI) attackReady(state model.ShipState) bool {
	return state != model.ShipStateAttack &&
		ai.attackTimer >= ai.tmpl.AttackCooldown &&
		!ai.attackedRecently &&
		ai.targetAvailable()
}

// checkNearbyShips accumulates the repulsion vector away from peers inside the avoidance
// radius, each contribution being the unit vector away from the peer divided by its distance.
// Returns true if at least one peer is too close.
func (ai *ShipAI) checkNearbyShips(view Perception, pos model.Vec3) bool {
	selfID := ai.ship.ObjectID()
	found := false

	switch ai.params.AvoidanceMode {
	case AvoidanceNearest:
		var nearest world.Peer
		nearest, _, found = view.NearestPeer(pos, ai.tmpl.AvoidanceRadius, selfID)
		if found {
			ai.avoidance = repulsion(pos, nearest.Position)
		}

	default:
		view.ForEachPeer(pos, ai.tmpl.AvoidanceRadius, func(p world.Peer) bool {
			if p.ID == selfID {
				return true
			}
			found = true
			ai.avoidance = ai.avoidance.Add(repulsion(pos, p.Position))
			return true
		})
	}

	if found && IsDebugEnabled() {
		debugLog("peers too close",
			"objectID", selfID,
			"mode", ai.params.AvoidanceMode.String(),
			"avoidance", ai.avoidance)
	}

	return found
}

// repulsion returns the unit vector from peer to self weighted by 1/distance.
// Coincident positions contribute nothing.
func repulsion(self, peer model.Vec3) model.Vec3 {
	away := self.Sub(peer).Flat()
	d := away.Length()
	if d == 0 {
		return model.Vec3{}
	}
	return away.Scale(1 / (d * d))
}

// reconcile maps the intent onto the state machine. At most one transition happens here.
func (ai *ShipAI) reconcile(decision model.Decision, dt float64) {
	state := ai.ship.State()

	switch decision {
	case model.DecisionEvadeThreat:
		if state != model.ShipStateEvade {
			ai.tryTransition(model.ShipStateEvade)
		}

	case model.DecisionAvoidPeers:
		// Motion perturbation only; the offset is applied after the state update.
		if state == model.ShipStatePatrol {
			ai.orbitAngle += ai.params.AvoidOrbitBoost * dt
		}
		ai.avoidPending = true

	case model.DecisionAttackTarget:
		if state != model.ShipStateAttack && ai.tryTransition(model.ShipStateAttack) {
			ai.attackTimer = 0
		}

	case model.DecisionKeepCourse:
		switch {
		case state == model.ShipStateEvade && !ai.hasThreat:
			ai.tryTransition(model.ShipStatePatrol)

		case state == model.ShipStateAttack && ai.stateTimer > ai.params.AttackGrace:
			if ai.tryTransition(model.ShipStatePatrol) {
				ai.attackedRecently = true
				ai.attackTimer = 0
				ai.attackFlagClearAt = ai.clock + ai.tmpl.AttackCooldown
			}
		}
	}
}
