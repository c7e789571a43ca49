package world

import (
	"github.com/udisondev/orbitguard/internal/model"
)

// Threat is a bullet as captured in a Snapshot.
type Threat struct {
	ID        uint32
	Position  model.Vec3
	Direction model.Vec3
	Distance  float64 // filled by queries, distance from the query point
	Bullet    *model.Bullet
}

// Peer is a live ship as captured in a Snapshot.
type Peer struct {
	ID       uint32
	Position model.Vec3
	Ship     *model.Ship
}

// cell holds the entities whose position falls inside one grid cell.
type cell struct {
	threats []Threat
	peers   []Peer
}

// Snapshot is an immutable spatial index of threats and peers built once per frame.
// Positions are copied at build time, so every controller sensing during the frame
// observes the arena as of the end of the previous physics step.
// IMPORTANT: Snapshot is read-only after construction, safe for concurrent readers.
type Snapshot struct {
	cellSize float64
	cells    map[CellKey]*cell
	order    []CellKey // cell creation order, used for full scans

	threatCount int
	peerCount   int
}

// NewSnapshot builds a snapshot from the given entities.
// Inactive bullets and destroyed ships are skipped.
func NewSnapshot(cellSize float64, ships []*model.Ship, bullets []*model.Bullet) *Snapshot {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	s := &Snapshot{
		cellSize: cellSize,
		cells:    make(map[CellKey]*cell),
	}

	for _, b := range bullets {
		if !b.IsActive() {
			continue
		}
		pos := b.Position()
		c := s.cellAt(pos)
		c.threats = append(c.threats, Threat{
			ID:        b.ObjectID(),
			Position:  pos,
			Direction: b.Direction(),
			Bullet:    b,
		})
		s.threatCount++
	}

	for _, ship := range ships {
		if ship.IsDestroyed() {
			continue
		}
		pos := ship.Position()
		c := s.cellAt(pos)
		c.peers = append(c.peers, Peer{
			ID:       ship.ObjectID(),
			Position: pos,
			Ship:     ship,
		})
		s.peerCount++
	}

	return s
}

func (s *Snapshot) cellAt(pos model.Vec3) *cell {
	key := CoordToCell(pos.X, pos.Z, s.cellSize)
	c, ok := s.cells[key]
	if !ok {
		c = &cell{}
		s.cells[key] = c
		s.order = append(s.order, key)
	}
	return c
}

// ThreatCount returns number of indexed threats
func (s *Snapshot) ThreatCount() int {
	return s.threatCount
}

// PeerCount returns number of indexed peers
func (s *Snapshot) PeerCount() int {
	return s.peerCount
}

// forEachCell visits every populated cell intersecting the query square.
// Falls back to a scan of populated cells when the query covers more cells than exist.
// If fn returns false, iteration stops.
func (s *Snapshot) forEachCell(from model.Vec3, radius float64, fn func(*cell) bool) {
	lo, hi := CellRange(from, radius, s.cellSize)
	span := (int64(hi.X) - int64(lo.X) + 1) * (int64(hi.Z) - int64(lo.Z) + 1)

	if span > int64(len(s.order)) {
		for _, key := range s.order {
			if key.X < lo.X || key.X > hi.X || key.Z < lo.Z || key.Z > hi.Z {
				continue
			}
			if !fn(s.cells[key]) {
				return
			}
		}
		return
	}

	for x := lo.X; x <= hi.X; x++ {
		for z := lo.Z; z <= hi.Z; z++ {
			c, ok := s.cells[CellKey{X: x, Z: z}]
			if !ok {
				continue
			}
			if !fn(c) {
				return
			}
		}
	}
}

// ForEachThreat visits active threats strictly closer than radius to from.
// Threat.Distance is set for each visit. If fn returns false, iteration stops.
func (s *Snapshot) ForEachThreat(from model.Vec3, radius float64, fn func(Threat) bool) {
	radiusSq := radius * radius
	s.forEachCell(from, radius, func(c *cell) bool {
		for _, t := range c.threats {
			if t.Bullet != nil && !t.Bullet.IsActive() {
				continue
			}
			distSq := from.DistanceSquared(t.Position)
			if distSq >= radiusSq {
				continue
			}
			t.Distance = from.Distance(t.Position)
			if !fn(t) {
				return false
			}
		}
		return true
	})
}

// NearestThreat returns the closest active threat strictly within radius.
// Returns false if there is none.
func (s *Snapshot) NearestThreat(from model.Vec3, radius float64) (Threat, bool) {
	var (
		nearest Threat
		found   bool
	)
	s.ForEachThreat(from, radius, func(t Threat) bool {
		if !found || t.Distance < nearest.Distance {
			nearest = t
			found = true
		}
		return true
	})
	return nearest, found
}

// ForEachPeer visits live ships strictly closer than radius to from.
// The caller filters itself out by ID. If fn returns false, iteration stops.
func (s *Snapshot) ForEachPeer(from model.Vec3, radius float64, fn func(Peer) bool) {
	radiusSq := radius * radius
	s.forEachCell(from, radius, func(c *cell) bool {
		for _, p := range c.peers {
			if from.DistanceSquared(p.Position) >= radiusSq {
				continue
			}
			if !fn(p) {
				return false
			}
		}
		return true
	})
}

// NearestPeer returns the closest live ship strictly within radius, excluding excludeID.
func (s *Snapshot) NearestPeer(from model.Vec3, radius float64, excludeID uint32) (Peer, float64, bool) {
	var (
		nearest Peer
		best    float64
		found   bool
	)
	s.ForEachPeer(from, radius, func(p Peer) bool {
		if p.ID == excludeID {
			return true
		}
		d := from.Distance(p.Position)
		if !found || d < best {
			nearest, best, found = p, d, true
		}
		return true
	})
	return nearest, best, found
}
