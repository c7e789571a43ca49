package model

import "sync"

// Ship is an enemy unit in the arena.
// Config (template) is immutable after spawn; the body (position, velocity, heading)
// is written by the physics step and read by sensing.
type Ship struct {
	objectID uint32
	template ShipTemplate

	mu       sync.RWMutex
	state    ShipState
	points   int
	position Vec3
	velocity Vec3
	heading  float64 // yaw in degrees
}

// NewShip creates a ship in the Spawning state.
func NewShip(objectID uint32, template ShipTemplate, pos Vec3) *Ship {
	return &Ship{
		objectID: objectID,
		template: template,
		state:    ShipStateSpawning,
		points:   template.PointsOnDestroy,
		position: pos,
	}
}

// ObjectID returns unique ship ID
func (s *Ship) ObjectID() uint32 {
	return s.objectID
}

// Template returns the ship's immutable tuning.
func (s *Ship) Template() ShipTemplate {
	return s.template
}

// Name returns the ship type name
func (s *Ship) Name() string {
	return s.template.Name
}

// State returns current behavior state
func (s *Ship) State() ShipState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetState sets behavior state. Only the ship's controller calls this.
func (s *Ship) SetState(state ShipState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// IsDestroyed reports whether the ship reached the terminal state.
func (s *Ship) IsDestroyed() bool {
	return s.State() == ShipStateDestroyed
}

// Points returns score awarded on destruction.
func (s *Ship) Points() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.points
}

// SetPoints overrides the destruction value (spawner handshake).
func (s *Ship) SetPoints(points int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = points
}

// Position returns current position
func (s *Ship) Position() Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.position
}

// SetPosition sets current position
func (s *Ship) SetPosition(pos Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = pos
}

// Velocity returns the last commanded velocity
func (s *Ship) Velocity() Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.velocity
}

// SetVelocity sets the commanded velocity
func (s *Ship) SetVelocity(v Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.velocity = v
}

// Heading returns yaw in degrees
func (s *Ship) Heading() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.heading
}

// SetHeading sets yaw in degrees
func (s *Ship) SetHeading(deg float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heading = NormalizeAngle(deg)
}
