package model

import "math"

// Vec3 is a point or direction in arena space.
// Motion is planar on the XZ plane; Y is kept so spawners can place entities at a height.
// Value type, passed by value.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// NewVec3 creates a Vec3.
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Neg returns -v.
func (v Vec3) Neg() Vec3 {
	return Vec3{X: -v.X, Y: -v.Y, Z: -v.Z}
}

// Dot returns the dot product.
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// LengthSquared returns |v|² (no sqrt for hot path comparisons).
func (v Vec3) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Length returns |v|.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.LengthSquared())
}

// IsZero reports whether all components are exactly zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Normalized returns the unit vector in v's direction.
// A zero-length vector normalizes to the zero vector instead of NaN.
func (v Vec3) Normalized() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{X: v.X / l, Y: v.Y / l, Z: v.Z / l}
}

// Flat returns v with the vertical component zeroed.
func (v Vec3) Flat() Vec3 {
	v.Y = 0
	return v
}

// DistanceSquared returns the squared distance to o.
func (v Vec3) DistanceSquared(o Vec3) float64 {
	return v.Sub(o).LengthSquared()
}

// Distance returns the distance to o.
func (v Vec3) Distance(o Vec3) float64 {
	return math.Sqrt(v.DistanceSquared(o))
}

// PerpendicularXZ returns v rotated 90° on the XZ plane: (-z, 0, x).
func (v Vec3) PerpendicularXZ() Vec3 {
	return Vec3{X: -v.Z, Y: 0, Z: v.X}
}

// Yaw returns the heading in degrees implied by v on the XZ plane (0 = +Z, 90 = +X).
func (v Vec3) Yaw() float64 {
	return math.Atan2(v.X, v.Z) * 180 / math.Pi
}

// DirectionFromYaw returns the unit XZ vector for a heading in degrees.
func DirectionFromYaw(deg float64) Vec3 {
	rad := deg * math.Pi / 180
	return Vec3{X: math.Sin(rad), Y: 0, Z: math.Cos(rad)}
}

// NormalizeAngle wraps an angle in degrees to (-180, 180].
func NormalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg <= -180 {
		deg += 360
	} else if deg > 180 {
		deg -= 360
	}
	return deg
}

// RotateTowards moves the heading current toward target by at most maxDelta degrees
// along the shortest arc. Never overshoots.
func RotateTowards(current, target, maxDelta float64) float64 {
	delta := NormalizeAngle(target - current)
	if math.Abs(delta) <= maxDelta {
		return NormalizeAngle(target)
	}
	if delta > 0 {
		return NormalizeAngle(current + maxDelta)
	}
	return NormalizeAngle(current - maxDelta)
}
