package geom

import "math"

// Mat3 is a row-major 3x3 matrix.
type Mat3 [9]float64

// IdentityMat3 returns the identity matrix.
func IdentityMat3() Mat3 {
	return Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// DiagMat3 returns a diagonal matrix with the given entries.
func DiagMat3(a, b, c float64) Mat3 {
	return Mat3{a, 0, 0, 0, b, 0, 0, 0, c}
}

// MulVec multiplies the matrix by a column vector.
func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		Y: m[3]*v.X + m[4]*v.Y + m[5]*v.Z,
		Z: m[6]*v.X + m[7]*v.Y + m[8]*v.Z,
	}
}

// Mul returns the matrix product m*o.
func (m Mat3) Mul(o Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i*3+j] = m[i*3]*o[j] + m[i*3+1]*o[3+j] + m[i*3+2]*o[6+j]
		}
	}
	return r
}

// Transpose returns the transposed matrix.
func (m Mat3) Transpose() Mat3 {
	return Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Inverse returns the inverse and true, or the identity and false when the
// matrix is singular (|det| below epsilon).
func (m Mat3) Inverse() (Mat3, bool) {
	c00 := m[4]*m[8] - m[5]*m[7]
	c01 := m[5]*m[6] - m[3]*m[8]
	c02 := m[3]*m[7] - m[4]*m[6]
	det := m[0]*c00 + m[1]*c01 + m[2]*c02
	if math.Abs(det) < normEpsilon {
		return IdentityMat3(), false
	}
	inv := 1 / det
	return Mat3{
		c00 * inv, (m[2]*m[7] - m[1]*m[8]) * inv, (m[1]*m[5] - m[2]*m[4]) * inv,
		c01 * inv, (m[0]*m[8] - m[2]*m[6]) * inv, (m[2]*m[3] - m[0]*m[5]) * inv,
		c02 * inv, (m[1]*m[6] - m[0]*m[7]) * inv, (m[0]*m[4] - m[1]*m[3]) * inv,
	}, true
}
