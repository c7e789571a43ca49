package world

import "sync/atomic"

// ObjectIDGenerator generates unique object IDs for arena entities.
//
// ID ranges (convention):
//
//	0x00000000 - 0x0FFFFFFF: Reserved (0 = invalid)
//	0x10000000 - 0x1FFFFFFF: Turrets
//	0x20000000 - 0x2FFFFFFF: Ships
//	0x30000000 - 0x3FFFFFFF: Bullets
type ObjectIDGenerator struct {
	nextTurretID atomic.Uint32
	nextShipID   atomic.Uint32
	nextBulletID atomic.Uint32
}

// NewObjectIDGenerator creates a new ID generator.
func NewObjectIDGenerator() *ObjectIDGenerator {
	gen := &ObjectIDGenerator{}
	gen.nextTurretID.Store(0x10000000)
	gen.nextShipID.Store(0x20000000)
	gen.nextBulletID.Store(0x30000000)
	return gen
}

// NextTurretID generates next unique turret object ID.
func (g *ObjectIDGenerator) NextTurretID() uint32 {
	return g.nextTurretID.Add(1)
}

// NextShipID generates next unique ship object ID.
// Thread-safe via atomic increment.
func (g *ObjectIDGenerator) NextShipID() uint32 {
	return g.nextShipID.Add(1)
}

// NextBulletID generates next unique bullet object ID.
// Thread-safe via atomic increment.
func (g *ObjectIDGenerator) NextBulletID() uint32 {
	return g.nextBulletID.Add(1)
}

// IsShipID reports whether id is in the ship range.
func IsShipID(id uint32) bool {
	return id >= 0x20000000 && id < 0x30000000
}

// IsBulletID reports whether id is in the bullet range.
func IsBulletID(id uint32) bool {
	return id >= 0x30000000 && id < 0x40000000
}
