package geom

import "math"

// Quat is a rotation quaternion (W + Xi + Yj + Zk). Rotations keep it at
// unit norm; Normalize after any integration step.
type Quat struct {
	W, X, Y, Z float64
}

// IdentityQuat returns the no-rotation quaternion.
func IdentityQuat() Quat { return Quat{W: 1} }

// QuatFromAxisAngle builds a rotation of angle radians about axis.
// A degenerate axis yields the identity.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	u := axis.Normalize()
	if u == (Vec3{}) {
		return IdentityQuat()
	}
	s := math.Sin(angle / 2)
	return Quat{
		W: math.Cos(angle / 2),
		X: u.X * s,
		Y: u.Y * s,
		Z: u.Z * s,
	}
}

// Mul returns the Hamilton product q*o (o applied first).
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
	}
}

// Conj returns the conjugate. For unit quaternions this is the inverse.
func (q Quat) Conj() Quat { return Quat{W: q.W, X: -q.X, Y: -q.Y, Z: -q.Z} }

// Rotate applies the rotation to a vector.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{X: q.X, Y: q.Y, Z: q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// Norm returns the quaternion's Euclidean norm.
func (q Quat) Norm() float64 {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

// Normalize rescales to unit norm; a degenerate quaternion becomes identity.
func (q Quat) Normalize() Quat {
	n := q.Norm()
	if n < normEpsilon {
		return IdentityQuat()
	}
	return Quat{W: q.W / n, X: q.X / n, Y: q.Y / n, Z: q.Z / n}
}

// Integrate advances the orientation by an angular velocity over dt using
// the quaternion derivative dq/dt = 0.5*(omega (x) q), then renormalizes.
func (q Quat) Integrate(omega Vec3, dt float64) Quat {
	w := Quat{W: 0, X: omega.X, Y: omega.Y, Z: omega.Z}
	dq := w.Mul(q)
	h := 0.5 * dt
	return Quat{
		W: q.W + dq.W*h,
		X: q.X + dq.X*h,
		Y: q.Y + dq.Y*h,
		Z: q.Z + dq.Z*h,
	}.Normalize()
}

// Mat3 returns the equivalent rotation matrix.
func (q Quat) Mat3() Mat3 {
	xx, yy, zz := q.X*q.X, q.Y*q.Y, q.Z*q.Z
	xy, xz, yz := q.X*q.Y, q.X*q.Z, q.Y*q.Z
	wx, wy, wz := q.W*q.X, q.W*q.Y, q.W*q.Z
	return Mat3{
		1 - 2*(yy+zz), 2 * (xy - wz), 2 * (xz + wy),
		2 * (xy + wz), 1 - 2*(xx+zz), 2 * (yz - wx),
		2 * (xz - wy), 2 * (yz + wx), 1 - 2*(xx+yy),
	}
}

// IsFinite reports whether every component is a finite number.
func (q Quat) IsFinite() bool {
	return !math.IsNaN(q.W) && !math.IsInf(q.W, 0) &&
		!math.IsNaN(q.X) && !math.IsInf(q.X, 0) &&
		!math.IsNaN(q.Y) && !math.IsInf(q.Y, 0) &&
		!math.IsNaN(q.Z) && !math.IsInf(q.Z, 0)
}
