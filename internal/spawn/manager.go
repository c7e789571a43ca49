package spawn

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/udisondev/orbitguard/internal/ai"
	"github.com/udisondev/orbitguard/internal/model"
	"github.com/udisondev/orbitguard/internal/world"
)

// ErrEmptyCatalog is returned when there are no ship types to spawn.
var ErrEmptyCatalog = errors.New("ship catalog is empty")

// ControllerFactory builds the controller of a freshly created ship.
// Injected by the simulation context so the spawner does not know about score or turret wiring.
type ControllerFactory func(ship *model.Ship) *ai.ShipAI

// Config holds wave and placement settings.
type Config struct {
	Interval     float64 // seconds of simulation time between spawns
	ArenaWidth   float64
	ArenaDepth   float64
	Center       model.Vec3 // arena center; ships face the defended target
	Target       model.Vec3
	MinSpacing   float64
	MaxAttempts  int
	MaxLiveShips int // 0 = unlimited
}

// DefaultConfig returns one spawn every 2s on the edges of a 53×30 arena.
func DefaultConfig() Config {
	return Config{
		Interval:    2,
		ArenaWidth:  53,
		ArenaDepth:  30,
		MinSpacing:  5,
		MaxAttempts: 10,
	}
}

// Manager spawns enemy ships on the arena edges and despawns them on destruction.
type Manager struct {
	cfg       Config
	catalog   []model.ShipTemplate
	world     *world.World
	aiManager *ai.TickManager
	factory   ControllerFactory

	mu        sync.Mutex
	rng       *rand.Rand
	timer     float64
	started   bool
	onDespawn []func(*model.Ship)

	spawnCount   atomic.Int64
	despawnCount atomic.Int64
}

// NewManager creates new spawn manager.
// A nil rng gets a randomly seeded source.
func NewManager(
	cfg Config,
	catalog []model.ShipTemplate,
	w *world.World,
	aiManager *ai.TickManager,
	factory ControllerFactory,
	rng *rand.Rand,
) *Manager {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Manager{
		cfg:       cfg,
		catalog:   catalog,
		world:     w,
		aiManager: aiManager,
		factory:   factory,
		rng:       rng,
	}
}

// OnDespawn registers a callback invoked after a ship left the arena.
func (m *Manager) OnDespawn(fn func(*model.Ship)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onDespawn = append(m.onDespawn, fn)
}

// Update advances the wave timer by dt and spawns every ship that became due.
// The first ship spawns on the first update.
func (m *Manager) Update(dt float64) []*model.Ship {
	m.mu.Lock()
	due := 0
	if !m.started {
		m.started = true
		due++
	}
	m.timer += dt
	if m.cfg.Interval > 0 {
		for m.timer >= m.cfg.Interval {
			m.timer -= m.cfg.Interval
			due++
		}
	}
	m.mu.Unlock()

	var spawned []*model.Ship
	for range due {
		if m.cfg.MaxLiveShips > 0 && m.world.ShipCount() >= m.cfg.MaxLiveShips {
			continue
		}
		ship, err := m.SpawnRandom()
		if err != nil {
			slog.Error("failed to spawn ship", "error", err)
			continue
		}
		spawned = append(spawned, ship)
	}
	return spawned
}

// SpawnRandom spawns a random ship type at a random edge position.
func (m *Manager) SpawnRandom() (*model.Ship, error) {
	if len(m.catalog) == 0 {
		return nil, ErrEmptyCatalog
	}
	m.mu.Lock()
	tmpl := m.catalog[m.rng.IntN(len(m.catalog))]
	m.mu.Unlock()

	pos := m.FindSpawnPosition()
	return m.Spawn(tmpl, pos)
}

// Spawn creates a ship of the given type at pos, hands it its spawn position and point
// value, and registers it with the world and the tick manager.
func (m *Manager) Spawn(tmpl model.ShipTemplate, pos model.Vec3) (*model.Ship, error) {
	objectID := m.world.IDs().NextShipID()
	ship := model.NewShip(objectID, tmpl, pos)

	if dir := m.cfg.Target.Sub(pos).Flat(); !dir.IsZero() {
		ship.SetHeading(dir.Yaw())
	}

	ctrl := m.factory(ship)
	ctrl.SetDespawnFunc(m.Despawn)
	m.mu.Lock()
	ctrl.SetRand(rand.New(rand.NewPCG(m.rng.Uint64(), m.rng.Uint64())))
	m.mu.Unlock()
	// Handshake: point value and spawn position before the first tick.
	ctrl.SetPointsOnDestroy(tmpl.PointsOnDestroy)
	ctrl.Initialize(pos)

	if err := m.world.AddShip(ship); err != nil {
		return nil, fmt.Errorf("adding ship to world: %w", err)
	}
	m.aiManager.Register(objectID, ctrl)

	n := m.spawnCount.Add(1)
	slog.Info("ship spawned",
		"objectID", objectID,
		"ship", tmpl.Name,
		"points", tmpl.PointsOnDestroy,
		"position", pos,
		"total", n)

	return ship, nil
}

// Despawn removes a ship from the tick manager and the world. Repeated calls are no-ops.
func (m *Manager) Despawn(ship *model.Ship) {
	if !m.world.RemoveShip(ship.ObjectID()) {
		return
	}
	m.aiManager.Unregister(ship.ObjectID())
	m.despawnCount.Add(1)

	m.mu.Lock()
	listeners := m.onDespawn
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(ship)
	}

	slog.Debug("ship despawned",
		"objectID", ship.ObjectID(),
		"ship", ship.Name(),
		"state", ship.State().String())
}

// FindSpawnPosition samples edge positions until one is at least MinSpacing away from
// every live ship. After MaxAttempts it gives up and returns a fresh sample anyway.
func (m *Manager) FindSpawnPosition() model.Vec3 {
	attempts := max(m.cfg.MaxAttempts, 1)
	for range attempts {
		pos := m.edgePosition()
		if m.isClearOfShips(pos) {
			return pos
		}
	}

	pos := m.edgePosition()
	slog.Warn("no clear spawn position found, spawning anyway",
		"attempts", attempts,
		"position", pos)
	return pos
}

// edgePosition returns a uniformly random point on one of the four arena edges.
func (m *Manager) edgePosition() model.Vec3 {
	m.mu.Lock()
	defer m.mu.Unlock()

	hw := m.cfg.ArenaWidth / 2
	hd := m.cfg.ArenaDepth / 2
	c := m.cfg.Center

	var x, z float64
	switch m.rng.IntN(4) {
	case 0:
		x, z = hw, m.uniform(-hd, hd)
	case 1:
		x, z = -hw, m.uniform(-hd, hd)
	case 2:
		x, z = m.uniform(-hw, hw), hd
	default:
		x, z = m.uniform(-hw, hw), -hd
	}
	return model.NewVec3(c.X+x, c.Y, c.Z+z)
}

// uniform must be called with m.mu held.
func (m *Manager) uniform(lo, hi float64) float64 {
	return lo + m.rng.Float64()*(hi-lo)
}

func (m *Manager) isClearOfShips(pos model.Vec3) bool {
	for _, ship := range m.world.Ships() {
		if ship.IsDestroyed() {
			continue
		}
		if pos.Distance(ship.Position()) < m.cfg.MinSpacing {
			return false
		}
	}
	return true
}

// SpawnCount returns total number of ships spawned
func (m *Manager) SpawnCount() int64 {
	return m.spawnCount.Load()
}

// DespawnCount returns total number of ships removed
func (m *Manager) DespawnCount() int64 {
	return m.despawnCount.Load()
}

// Reset restarts the wave timer. Used on level reload.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timer = 0
	m.started = false
}
