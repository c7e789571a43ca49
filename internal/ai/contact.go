package ai

import (
	"log/slog"

	"github.com/udisondev/orbitguard/internal/model"
)

var _ ContactHandler = (*ShipAI)(nil)

// OnThreatContact destroys the ship when struck by a bullet.
// The bullet is always deactivated. Destruction, score award and despawn happen exactly
// once no matter how many contact paths report the hit.
func (ai *ShipAI) OnThreatContact(bullet *model.Bullet) bool {
	if bullet != nil {
		bullet.Deactivate()
	}

	if !ai.destroyed.CompareAndSwap(false, true) {
		return false
	}

	ai.transition(model.ShipStateDestroyed)
	ai.isRunning.Store(false)

	points := ai.ship.Points()
	if ai.score != nil {
		ai.score.AddScore(points)
	}

	slog.Debug("ship destroyed",
		"ship", ai.ship.Name(),
		"objectID", ai.ship.ObjectID(),
		"points", points)

	if ai.despawnFunc != nil {
		ai.despawnFunc(ai.ship)
	}
	return true
}

// OnTargetContact applies ramming damage to the defended target, charges the score
// penalty and bounces the ship into Retreat.
func (ai *ShipAI) OnTargetContact(target Target) bool {
	if ai.destroyed.Load() || target == nil {
		return false
	}

	health := target.ApplyDamage(ai.params.ContactDamage)

	penalty := ai.tmpl.PointsLostOnHit
	if penalty > 0 {
		penalty = -penalty
	}
	if ai.score != nil && penalty != 0 {
		ai.score.AddScore(penalty)
	}

	ai.transition(model.ShipStateRetreat)

	slog.Debug("ship rammed target",
		"ship", ai.ship.Name(),
		"objectID", ai.ship.ObjectID(),
		"targetHealth", health,
		"penalty", penalty)

	return true
}
