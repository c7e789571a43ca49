package ai

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ErrControllerNotFound is returned when no controller is registered for an object ID.
var ErrControllerNotFound = errors.New("controller not found")

// TickManager drives all registered ship controllers.
// The simulation loop calls TickAll once per frame and StepAll once per fixed physics step.
type TickManager struct {
	controllers     sync.Map     // map[uint32]Controller: objectID → controller
	controllerCount atomic.Int32 // cached count of controllers (O(1) access)
	panics          atomic.Int64
}

// NewTickManager creates new AI tick manager
func NewTickManager() *TickManager {
	return &TickManager{}
}

// Register registers a controller and starts it.
// Registering the same objectID twice replaces the previous controller.
func (m *TickManager) Register(objectID uint32, controller Controller) {
	if prev, loaded := m.controllers.Swap(objectID, controller); loaded {
		prev.(Controller).Stop()
	} else {
		m.controllerCount.Add(1)
	}
	controller.Start()

	slog.Debug("AI controller registered",
		"objectID", objectID,
		"state", controller.State().String())
}

// Unregister stops and removes a controller. Unknown IDs are ignored.
func (m *TickManager) Unregister(objectID uint32) {
	value, ok := m.controllers.LoadAndDelete(objectID)
	if !ok {
		return
	}

	m.controllerCount.Add(-1)

	controller := value.(Controller)
	controller.Stop()

	slog.Debug("AI controller unregistered", "objectID", objectID)
}

// TickAll runs one decision tick on every controller against the frame's snapshot.
func (m *TickManager) TickAll(dt float64, view Perception) {
	count := 0

	m.controllers.Range(func(key, value any) bool {
		m.safeRun(key.(uint32), "tick", func() {
			value.(Controller).Tick(dt, view)
		})
		count++
		return true
	})

	if count > 0 && IsDebugEnabled() {
		slog.Debug("AI tick completed", "controllers", count, "dt", dt)
	}
}

// StepAll runs one fixed physics step on every controller.
func (m *TickManager) StepAll(dt float64) {
	m.controllers.Range(func(key, value any) bool {
		m.safeRun(key.(uint32), "physics", func() {
			value.(Controller).PhysicsStep(dt)
		})
		return true
	})
}

// safeRun isolates a misbehaving controller: a panic is logged and the controller is
// unregistered so the rest of the arena keeps running.
func (m *TickManager) safeRun(objectID uint32, phase string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			m.panics.Add(1)
			slog.Error("AI controller panicked, unregistering",
				"objectID", objectID,
				"phase", phase,
				"panic", r)
			m.Unregister(objectID)
		}
	}()
	fn()
}

// Count returns number of registered controllers (O(1) cached count)
// IMPORTANT: Count is cached atomically and updated when controllers are registered/unregistered.
// This is a performance optimization to avoid O(N) Range() on sync.Map.
func (m *TickManager) Count() int {
	return int(m.controllerCount.Load())
}

// Panics returns how many controller panics were recovered.
func (m *TickManager) Panics() int64 {
	return m.panics.Load()
}

// GetController returns controller for a ship
func (m *TickManager) GetController(objectID uint32) (Controller, error) {
	value, ok := m.controllers.Load(objectID)
	if !ok {
		return nil, fmt.Errorf("objectID %d: %w", objectID, ErrControllerNotFound)
	}
	return value.(Controller), nil
}

// Reset stops and removes every controller. Used on level unload.
func (m *TickManager) Reset() {
	m.controllers.Range(func(key, _ any) bool {
		m.Unregister(key.(uint32))
		return true
	})
}
