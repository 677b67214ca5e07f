// Package geom provides the small 3D math types used by the physics core:
// vectors, unit quaternions and 3x3 matrices, with epsilon-guarded
// normalization throughout.
package geom

import "math"

const normEpsilon = 1e-9

// Vec3 is a 3D vector. X is downwind, Y is up, Z is lateral (meters).
type Vec3 struct {
	X, Y, Z float64
}

// Add returns the sum of two vectors.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns the difference of two vectors.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale scales the vector by a scalar.
func (v Vec3) Scale(k float64) Vec3 { return Vec3{v.X * k, v.Y * k, v.Z * k} }

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cross returns the cross product of two vectors.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Len returns the Euclidean length.
func (v Vec3) Len() float64 { return math.Sqrt(v.Dot(v)) }

// LenSq returns the squared length, avoiding the sqrt.
func (v Vec3) LenSq() float64 { return v.Dot(v) }

// Normalize returns a unit vector in the same direction, or the zero
// vector when the input is too short to normalize safely.
func (v Vec3) Normalize() Vec3 {
	n := v.Len()
	if n < normEpsilon {
		return Vec3{}
	}
	return v.Scale(1 / n)
}

// Clamped returns the vector with its length limited to max.
func (v Vec3) Clamped(max float64) Vec3 {
	n := v.Len()
	if n <= max || n < normEpsilon {
		return v
	}
	return v.Scale(max / n)
}

// IsFinite reports whether every component is a finite number.
func (v Vec3) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}
