package ai

import (
	"math"
	"math/rand/v2"
	"sync/atomic"

	"github.com/udisondev/orbitguard/internal/model"
	"github.com/udisondev/orbitguard/internal/world"
)

// ShipAI is the autonomous controller of one enemy ship.
// Decision layer → state machine → motion, ticked by the TickManager.
//
// Everything below isRunning/destroyed is only touched from the simulation goroutine
// (Tick, PhysicsStep and contact callbacks), so it needs no locking.
type ShipAI struct {
	ship   *model.Ship
	tmpl   model.ShipTemplate
	params Params
	target Target    // nil when the level has no defended target
	score  ScoreSink // nil disables score reporting

	despawnFunc DespawnFunc
	rng         *rand.Rand

	isRunning atomic.Bool
	destroyed atomic.Bool

	clock             float64 // controller-local simulation time
	stateTimer        float64
	attackTimer       float64
	attackedRecently  bool
	attackFlagClearAt float64 // clock value at which attackedRecently clears

	targetPos  model.Vec3
	orbitAngle float64 // degrees, continuous across Patrol ticks
	retreatDir model.Vec3

	// Per-tick scratch written by the decision layer, consumed in the same tick.
	threat       world.Threat
	hasThreat    bool
	avoidance    model.Vec3
	avoidPending bool
	lastDecision model.Decision

	transitionsThisTick int
	transitionCount     uint64

	// traceHook observes hook execution order (tests only).
	traceHook func(hook string, state model.ShipState)
}

// NewShipAI creates a controller for ship. target and score may be nil.
func NewShipAI(ship *model.Ship, params Params, target Target, score ScoreSink) *ShipAI {
	// A typed nil turret must not look like an available target.
	if t, ok := target.(*model.Turret); ok && t == nil {
		target = nil
	}
	return &ShipAI{
		ship:   ship,
		tmpl:   ship.Template(),
		params: params,
		target: target,
		score:  score,
		rng:    rand.New(rand.NewPCG(uint64(ship.ObjectID()), 0x5eed)),
	}
}

// SetDespawnFunc sets the callback that removes the ship once destroyed.
func (ai *ShipAI) SetDespawnFunc(fn DespawnFunc) {
	ai.despawnFunc = fn
}

// SetRand replaces the random source used for the spawn orbit jitter.
func (ai *ShipAI) SetRand(r *rand.Rand) {
	ai.rng = r
}

// Ship returns the controlled ship.
func (ai *ShipAI) Ship() *model.Ship {
	return ai.ship
}

// Initialize places the ship at its spawn position and derives the initial orbit angle
// from the spawn bearing around the target, plus a random offset so ships fan out.
// Must be called before the first tick (spawner handshake).
func (ai *ShipAI) Initialize(spawnPos model.Vec3) {
	ai.ship.SetPosition(spawnPos)
	ai.targetPos = spawnPos

	if ai.target == nil {
		return
	}

	dir := spawnPos.Sub(ai.target.Location()).Normalized()
	ai.orbitAngle = math.Atan2(dir.Z, dir.X) * 180 / math.Pi

	if jitter := ai.params.SpawnOrbitJitter; jitter > 0 {
		ai.orbitAngle += (ai.rng.Float64()*2 - 1) * jitter
	}
}

// SetPointsOnDestroy overrides the score awarded on destruction (spawner handshake).
func (ai *ShipAI) SetPointsOnDestroy(points int) {
	ai.ship.SetPoints(points)
}

// Start activates the controller: Spawning → Patrol.
func (ai *ShipAI) Start() {
	if ai.destroyed.Load() {
		return
	}
	ai.isRunning.Store(true)
	if ai.ship.State() == model.ShipStateSpawning {
		ai.transition(model.ShipStatePatrol)
	}

	debugLog("ship AI started",
		"ship", ai.ship.Name(),
		"objectID", ai.ship.ObjectID(),
		"orbitAngle", ai.orbitAngle)
}

// Stop deactivates the controller. The ship keeps its state but stops thinking and moving.
func (ai *ShipAI) Stop() {
	ai.isRunning.Store(false)
	ai.ship.SetVelocity(model.Vec3{})

	debugLog("ship AI stopped",
		"ship", ai.ship.Name(),
		"objectID", ai.ship.ObjectID())
}

// State returns current behavior state
func (ai *ShipAI) State() model.ShipState {
	return ai.ship.State()
}

// TargetPosition returns the point the motion model is steering to.
func (ai *ShipAI) TargetPosition() model.Vec3 {
	return ai.targetPos
}

// OrbitAngle returns the patrol orbit bearing in degrees.
func (ai *ShipAI) OrbitAngle() float64 {
	return ai.orbitAngle
}

// LastDecision returns the intent emitted on the most recent tick.
func (ai *ShipAI) LastDecision() model.Decision {
	return ai.lastDecision
}

// AvoidanceVector returns the peer repulsion computed on the most recent tick.
func (ai *ShipAI) AvoidanceVector() model.Vec3 {
	return ai.avoidance
}

// AttackedRecently reports whether the post-attack cooldown flag is set.
func (ai *ShipAI) AttackedRecently() bool {
	return ai.attackedRecently
}

// TransitionCount returns the total number of state transitions performed.
func (ai *ShipAI) TransitionCount() uint64 {
	return ai.transitionCount
}

// Tick performs one decision tick.
// Order: timers → sensing/arbitration → reconciliation → state update → avoidance offset.
func (ai *ShipAI) Tick(dt float64, view Perception) {
	if !ai.isRunning.Load() || ai.destroyed.Load() {
		return
	}

	ai.transitionsThisTick = 0
	ai.advanceTimers(dt)

	decision := ai.decide(view)
	ai.lastDecision = decision
	ai.reconcile(decision, dt)

	ai.updateState(dt)
	ai.applyAvoidanceOffset()
}

// advanceTimers advances all controller timers and clears the attack flag once its
// clear-at time has passed.
func (ai *ShipAI) advanceTimers(dt float64) {
	ai.clock += dt
	ai.stateTimer += dt
	ai.attackTimer += dt

	if ai.attackedRecently && ai.clock >= ai.attackFlagClearAt {
		ai.attackedRecently = false
	}
}

// targetAvailable reports whether the defended target can be engaged.
func (ai *ShipAI) targetAvailable() bool {
	return ai.target != nil && !ai.target.IsDestroyed()
}
