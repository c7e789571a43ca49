package ai

import (
	"github.com/udisondev/orbitguard/internal/model"
	"github.com/udisondev/orbitguard/internal/world"
)

// Controller represents the per-ship AI driven by the TickManager.
type Controller interface {
	// Start activates the controller (Spawning → Patrol)
	Start()

	// Stop deactivates the controller without destroying the ship
	Stop()

	// State returns current behavior state
	State() model.ShipState

	// Tick runs one decision tick: timers, sensing, arbitration, state update
	Tick(dt float64, view Perception)

	// PhysicsStep converts the current target into velocity and heading
	PhysicsStep(dt float64)
}

// ContactHandler receives physical contacts detected by the physics step.
type ContactHandler interface {
	// OnThreatContact handles a bullet strike. Returns true if this call destroyed the ship.
	OnThreatContact(bullet *model.Bullet) bool

	// OnTargetContact handles ramming the defended target. Returns true if it was applied.
	OnTargetContact(target Target) bool
}

// Perception is the read-only view of the arena a controller senses each tick.
// Implemented by *world.Snapshot.
type Perception interface {
	NearestThreat(from model.Vec3, radius float64) (world.Threat, bool)
	ForEachPeer(from model.Vec3, radius float64, fn func(world.Peer) bool)
	NearestPeer(from model.Vec3, radius float64, excludeID uint32) (world.Peer, float64, bool)
}

// Target is the defended target as seen by a controller.
// The controller only reads its position and reports damage; it never owns it.
type Target interface {
	Location() model.Vec3
	ApplyDamage(amount float64) float64
	IsDestroyed() bool
}

// ScoreSink receives score deltas. Implementations clamp the total at zero.
type ScoreSink interface {
	AddScore(delta int) int
}

// DespawnFunc removes a destroyed ship from the simulation.
// Injected by the simulation context to avoid an import cycle with the sim package.
type DespawnFunc func(ship *model.Ship)

var (
	_ Perception = (*world.Snapshot)(nil)
	_ Target     = (*model.Turret)(nil)
)
