package world

import (
	"math"

	"github.com/udisondev/orbitguard/internal/model"
)

// DefaultCellSize is the grid cell edge in arena units.
// Sized so a detection-range query (8 units) touches at most 5×5 cells.
const DefaultCellSize = 4.0

// CellKey identifies a grid cell on the XZ plane.
type CellKey struct {
	X, Z int32
}

// CoordToCell converts an arena coordinate to its cell.
// Formula: floor(coord / cellSize), so negative coordinates map to negative cells.
func CoordToCell(x, z, cellSize float64) CellKey {
	return CellKey{
		X: int32(math.Floor(x / cellSize)),
		Z: int32(math.Floor(z / cellSize)),
	}
}

// CellRange returns the inclusive cell bounds covering a circle of radius around center.
func CellRange(center model.Vec3, radius, cellSize float64) (lo, hi CellKey) {
	lo = CoordToCell(center.X-radius, center.Z-radius, cellSize)
	hi = CoordToCell(center.X+radius, center.Z+radius, cellSize)
	return lo, hi
}
