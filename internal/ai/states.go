package ai

import (
	"math"

	"github.com/udisondev/orbitguard/internal/model"
)

// tryTransition performs a transition requested during a decision tick.
// Only one such transition is allowed per tick; a second request is dropped and the
// condition that produced it is re-evaluated on the next tick.
func (ai *ShipAI) tryTransition(newState model.ShipState) bool {
	if ai.transitionsThisTick > 0 {
		debugLog("transition deferred",
			"objectID", ai.ship.ObjectID(),
			"from", ai.ship.State().String(),
			"to", newState.String())
		return false
	}
	if !ai.transition(newState) {
		return false
	}
	ai.transitionsThisTick++
	return true
}

// transition runs exit hook → state assignment → timer reset → enter hook.
// Destroyed is absorbing: nothing leaves it.
func (ai *ShipAI) transition(newState model.ShipState) bool {
	old := ai.ship.State()
	if old == model.ShipStateDestroyed {
		return false
	}

	ai.onExit(old)

	ai.ship.SetState(newState)
	ai.stateTimer = 0
	ai.transitionCount++

	ai.onEnter(newState)

	debugLog("ship state changed",
		"objectID", ai.ship.ObjectID(),
		"from", old.String(),
		"to", newState.String())

	return true
}

func (ai *ShipAI) onExit(state model.ShipState) {
	ai.trace("exit", state)
}

// onEnter computes the initial target of the new state so its first update already has one.
func (ai *ShipAI) onEnter(state model.ShipState) {
	ai.trace("enter", state)

	switch state {
	case model.ShipStateAttack:
		if ai.targetAvailable() {
			ai.targetPos = ai.target.Location()
		}

	case model.ShipStateEvade:
		ai.computeEvadeTarget()

	case model.ShipStateRetreat:
		ai.computeRetreat()

	case model.ShipStateDestroyed:
		ai.ship.SetVelocity(model.Vec3{})
	}
}

// computeEvadeTarget projects a point perpendicular to the threat's flight direction,
// on the side facing away from the defended target.
func (ai *ShipAI) computeEvadeTarget() {
	if !ai.hasThreat {
		return
	}

	pos := ai.ship.Position()
	perp := ai.threat.Direction.Flat().Normalized().PerpendicularXZ()

	if ai.target != nil {
		toTarget := ai.target.Location().Sub(pos).Flat().Normalized()
		if perp.Dot(toTarget) > 0 {
			perp = perp.Neg()
		}
	}

	ai.targetPos = pos.Add(perp.Scale(ai.params.EvadeProjection))
}

// computeRetreat points the retreat straight away from the defended target.
// Without a target (or sitting on top of it) the ship backs off opposite its heading.
func (ai *ShipAI) computeRetreat() {
	pos := ai.ship.Position()

	var dir model.Vec3
	if ai.target != nil {
		dir = pos.Sub(ai.target.Location()).Flat().Normalized()
	}
	if dir.IsZero() {
		dir = model.DirectionFromYaw(ai.ship.Heading()).Neg()
	}

	ai.retreatDir = dir
	ai.targetPos = pos.Add(dir.Scale(ai.params.RetreatProjection))
}

// updateState runs the active state's per-tick behavior.
func (ai *ShipAI) updateState(dt float64) {
	state := ai.ship.State()
	ai.trace("update", state)

	switch state {
	case model.ShipStatePatrol:
		ai.updatePatrol(dt)

	case model.ShipStateAttack:
		// Pursuit: follow the target while it is alive, otherwise hold the last known point.
		if ai.targetAvailable() {
			ai.targetPos = ai.target.Location()
		}

	case model.ShipStateEvade:
		if ai.stateTimer > ai.params.EvadeTimeout {
			ai.tryTransition(model.ShipStatePatrol)
		}

	case model.ShipStateRetreat:
		if ai.stateTimer > ai.tmpl.RetreatDuration {
			ai.tryTransition(model.ShipStatePatrol)
		}
	}
}

// updatePatrol advances the orbit at half the rotation rate and targets the orbit point.
func (ai *ShipAI) updatePatrol(dt float64) {
	if !ai.targetAvailable() {
		return
	}

	ai.orbitAngle += ai.tmpl.RotationSpeed * 0.5 * dt

	rad := ai.orbitAngle * math.Pi / 180
	offset := model.NewVec3(math.Cos(rad), 0, math.Sin(rad)).Scale(ai.tmpl.OrbitRadius)
	ai.targetPos = ai.target.Location().Add(offset)
}

// applyAvoidanceOffset nudges the target along the repulsion vector computed this tick.
func (ai *ShipAI) applyAvoidanceOffset() {
	if !ai.avoidPending {
		return
	}
	ai.avoidPending = false

	if ai.ship.State() == model.ShipStateDestroyed || ai.avoidance.IsZero() {
		return
	}
	ai.targetPos = ai.targetPos.Add(ai.avoidance.Normalized().Scale(ai.params.AvoidOffset))
}

func (ai *ShipAI) trace(hook string, state model.ShipState) {
	if ai.traceHook != nil {
		ai.traceHook(hook, state)
	}
}
