package model

import (
	"sync"
	"sync/atomic"
)

// Bullet is a projectile fired by the turret.
// Ownership lies with the arena; ships only read it and request deactivation on impact.
type Bullet struct {
	objectID  uint32
	direction Vec3 // unit flight direction, immutable
	speed     float64
	lifetime  float64

	mu       sync.RWMutex
	position Vec3
	age      float64

	active atomic.Bool
}

// NewBullet creates an active bullet. direction is normalized.
func NewBullet(objectID uint32, pos, direction Vec3, speed, lifetime float64) *Bullet {
	b := &Bullet{
		objectID:  objectID,
		direction: direction.Normalized(),
		speed:     speed,
		lifetime:  lifetime,
		position:  pos,
	}
	b.active.Store(true)
	return b
}

// ObjectID returns unique bullet ID
func (b *Bullet) ObjectID() uint32 {
	return b.objectID
}

// Direction returns the flight direction
func (b *Bullet) Direction() Vec3 {
	return b.direction
}

// Speed returns flight speed
func (b *Bullet) Speed() float64 {
	return b.speed
}

// Position returns current position
func (b *Bullet) Position() Vec3 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.position
}

// SetPosition sets current position
func (b *Bullet) SetPosition(pos Vec3) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.position = pos
}

// Advance moves the bullet along its flight direction and ages it.
// Returns false once the bullet outlived its lifetime (it is deactivated).
func (b *Bullet) Advance(dt float64) bool {
	b.mu.Lock()
	b.position = b.position.Add(b.direction.Scale(b.speed * dt))
	b.age += dt
	expired := b.lifetime > 0 && b.age >= b.lifetime
	b.mu.Unlock()

	if expired {
		b.Deactivate()
		return false
	}
	return b.IsActive()
}

// IsActive reports whether the bullet is still in flight.
func (b *Bullet) IsActive() bool {
	return b.active.Load()
}

// Deactivate takes the bullet out of play. Returns true only for the call that deactivated it.
func (b *Bullet) Deactivate() bool {
	return b.active.CompareAndSwap(true, false)
}
