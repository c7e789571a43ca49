package world

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/udisondev/orbitguard/internal/model"
)

// World is the live-entity registry of one arena.
// Owned by the simulation context (one per loaded level), not a process singleton.
type World struct {
	cellSize float64
	ids      *ObjectIDGenerator

	mu      sync.RWMutex
	ships   map[uint32]*model.Ship
	bullets map[uint32]*model.Bullet
}

// New creates an empty arena registry.
func New(cellSize float64) *World {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &World{
		cellSize: cellSize,
		ids:      NewObjectIDGenerator(),
		ships:    make(map[uint32]*model.Ship),
		bullets:  make(map[uint32]*model.Bullet),
	}
}

// IDs returns the arena's object ID generator.
func (w *World) IDs() *ObjectIDGenerator {
	return w.ids
}

// CellSize returns the spatial grid cell size.
func (w *World) CellSize() float64 {
	return w.cellSize
}

// AddShip registers a ship.
func (w *World) AddShip(ship *model.Ship) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.ships[ship.ObjectID()]; exists {
		return fmt.Errorf("ship %d already registered", ship.ObjectID())
	}
	w.ships[ship.ObjectID()] = ship
	return nil
}

// RemoveShip unregisters a ship. Returns false if it was not registered.
func (w *World) RemoveShip(objectID uint32) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.ships[objectID]; !ok {
		return false
	}
	delete(w.ships, objectID)
	return true
}

// GetShip returns ship by ID
func (w *World) GetShip(objectID uint32) (*model.Ship, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	ship, ok := w.ships[objectID]
	return ship, ok
}

// Ships returns registered ships ordered by object ID.
func (w *World) Ships() []*model.Ship {
	w.mu.RLock()
	out := make([]*model.Ship, 0, len(w.ships))
	for _, s := range w.ships {
		out = append(out, s)
	}
	w.mu.RUnlock()

	slices.SortFunc(out, func(a, b *model.Ship) int {
		return cmp.Compare(a.ObjectID(), b.ObjectID())
	})
	return out
}

// ShipCount returns number of registered ships
func (w *World) ShipCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.ships)
}

// AddBullet registers a bullet.
func (w *World) AddBullet(b *model.Bullet) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.bullets[b.ObjectID()]; exists {
		return fmt.Errorf("bullet %d already registered", b.ObjectID())
	}
	w.bullets[b.ObjectID()] = b
	return nil
}

// RemoveBullet unregisters a bullet.
func (w *World) RemoveBullet(objectID uint32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.bullets, objectID)
}

// Bullets returns registered bullets ordered by object ID.
func (w *World) Bullets() []*model.Bullet {
	w.mu.RLock()
	out := make([]*model.Bullet, 0, len(w.bullets))
	for _, b := range w.bullets {
		out = append(out, b)
	}
	w.mu.RUnlock()

	slices.SortFunc(out, func(a, b *model.Bullet) int {
		return cmp.Compare(a.ObjectID(), b.ObjectID())
	})
	return out
}

// BulletCount returns number of registered bullets (active or not yet pruned)
func (w *World) BulletCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.bullets)
}

// PruneBullets drops deactivated bullets and returns how many were removed.
func (w *World) PruneBullets() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	removed := 0
	for id, b := range w.bullets {
		if !b.IsActive() {
			delete(w.bullets, id)
			removed++
		}
	}
	return removed
}

// Snapshot builds this frame's read-only spatial index.
func (w *World) Snapshot() *Snapshot {
	return NewSnapshot(w.cellSize, w.Ships(), w.Bullets())
}

// Reset removes all entities. Used on level unload and for test isolation.
func (w *World) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	clear(w.ships)
	clear(w.bullets)
}
