package ai

import (
	"github.com/udisondev/orbitguard/internal/model"
)

// PhysicsStep converts the current target into a planar velocity and turns the heading
// toward it at a bounded rate. The integrator applies the velocity afterwards.
func (ai *ShipAI) PhysicsStep(dt float64) {
	if !ai.isRunning.Load() || ai.destroyed.Load() {
		return
	}

	var velocity model.Vec3
	switch ai.ship.State() {
	case model.ShipStateSpawning, model.ShipStateDestroyed:
		return
	case model.ShipStateRetreat:
		velocity = ai.retreatDir.Scale(ai.tmpl.MoveSpeed * ai.params.RetreatSpeedMultiplier)
	default:
		dir := ai.targetPos.Sub(ai.ship.Position()).Flat().Normalized()
		velocity = dir.Scale(ai.tmpl.MoveSpeed)
	}

	ai.ship.SetVelocity(velocity)

	// Zero velocity has no orientation; keep the current heading.
	if velocity.IsZero() {
		return
	}
	heading := model.RotateTowards(ai.ship.Heading(), velocity.Yaw(), ai.tmpl.RotationSpeed*dt)
	ai.ship.SetHeading(heading)
}
