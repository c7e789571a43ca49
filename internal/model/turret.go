package model

import "sync"

// HealthListener is notified after every health change.
type HealthListener func(current, max float64)

// Turret is the stationary defended target.
// Health is a process-wide pool damaged by many ships; all mutation is serialized by mu
// so concurrent damage sums exactly.
type Turret struct {
	objectID uint32
	name     string
	position Vec3

	mu        sync.Mutex
	maxHealth float64
	health    float64
	dead      bool
	onChange  []HealthListener
	onDeath   []func()
}

// NewTurret creates a turret at full health.
func NewTurret(objectID uint32, name string, pos Vec3, maxHealth float64) *Turret {
	return &Turret{
		objectID:  objectID,
		name:      name,
		position:  pos,
		maxHealth: maxHealth,
		health:    maxHealth,
	}
}

// ObjectID returns unique turret ID
func (t *Turret) ObjectID() uint32 {
	return t.objectID
}

// Name returns turret name
func (t *Turret) Name() string {
	return t.name
}

// Location returns turret position (immutable, turret is stationary).
func (t *Turret) Location() Vec3 {
	return t.position
}

// Health returns current and max health.
func (t *Turret) Health() (current, max float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.health, t.maxHealth
}

// IsDestroyed reports whether health reached zero.
func (t *Turret) IsDestroyed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dead
}

// OnHealthChange registers a listener called after every health change.
func (t *Turret) OnHealthChange(fn HealthListener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = append(t.onChange, fn)
}

// OnDeath registers a listener called once when health reaches zero.
func (t *Turret) OnDeath(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDeath = append(t.onDeath, fn)
}

// ApplyDamage subtracts amount (clamped at zero) and returns current health.
// Death listeners fire exactly once, on the call that brings health to zero.
func (t *Turret) ApplyDamage(amount float64) float64 {
	t.mu.Lock()
	t.health = max(t.health-amount, 0)
	current, maxHealth := t.health, t.maxHealth
	died := current == 0 && !t.dead
	if died {
		t.dead = true
	}
	changeFns := t.onChange
	deathFns := t.onDeath
	t.mu.Unlock()

	// Listeners run outside the lock so they may query the turret.
	for _, fn := range changeFns {
		fn(current, maxHealth)
	}
	if died {
		for _, fn := range deathFns {
			fn()
		}
	}
	return current
}

// SetHealth restores health (save/load). Clamped to [0, max]; does not fire death listeners.
func (t *Turret) SetHealth(current, maxHealth float64) {
	t.mu.Lock()
	if maxHealth > 0 {
		t.maxHealth = maxHealth
	}
	t.health = min(max(current, 0), t.maxHealth)
	t.dead = t.health == 0
	current, maxHealth = t.health, t.maxHealth
	changeFns := t.onChange
	t.mu.Unlock()

	for _, fn := range changeFns {
		fn(current, maxHealth)
	}
}
