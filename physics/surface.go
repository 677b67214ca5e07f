package physics

import "kitesim/geom"

// Surface is one triangular fabric panel of the kite, fixed in the body
// frame. The vertex winding fixes the outward normal (counter-clockwise
// seen from outside). Area, centroid and normal are cached at build time;
// world-space versions are derived from the body pose each tick.
type Surface struct {
	V0, V1, V2 geom.Vec3 // body-local vertices

	area     float64
	normal   geom.Vec3 // body-local unit normal
	centroid geom.Vec3 // body-local
}

// NewSurface builds a panel from three body-local vertices.
func NewSurface(v0, v1, v2 geom.Vec3) Surface {
	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)
	n := e1.Cross(e2)
	return Surface{
		V0: v0, V1: v1, V2: v2,
		area:     0.5 * n.Len(),
		normal:   n.Normalize(),
		centroid: v0.Add(v1).Add(v2).Scale(1.0 / 3.0),
	}
}

// Area returns the cached panel area in m^2.
func (s Surface) Area() float64 { return s.area }

// World returns the panel centroid and unit normal in world space for the
// body's current pose.
func (s Surface) World(b *RigidBody) (centroid, normal geom.Vec3) {
	return b.WorldPoint(s.centroid), b.WorldDir(s.normal)
}
