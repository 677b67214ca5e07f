package physics

import (
	"math"

	"kitesim/geom"
)

// AeroCoefficients is the aerodynamic profile of the kite fabric.
// Below StallAngle lift is linear in incidence (offset by the zero-lift
// angle Alpha0, which emulates a cambered profile) and drag is the
// parasitic constant CD0. Across the StallBlend window past StallAngle
// both blend smoothly toward the post-stall values.
type AeroCoefficients struct {
	CL0         float64 // lift coefficient at zero incidence
	CLAlpha     float64 // lift slope per radian
	Alpha0      float64 // zero-lift incidence, radians (small, negative)
	CD0         float64 // parasitic drag coefficient
	CM          float64 // pitching moment coefficient
	StallAngle  float64 // radians
	StallBlend  float64 // transition window width, radians
	PostStallCL float64 // lift ceiling beyond stall
	PostStallCD float64 // inflated drag beyond stall
}

// AeroModel computes per-surface aerodynamic forces from apparent wind.
type AeroModel struct {
	Coef       AeroCoefficients
	AirDensity float64 // kg/m^3

	MinAirspeed float64 // below this apparent wind, no force at all
	MaxForce    float64 // per-surface force clamp, N
	MaxTorque   float64 // per-surface torque clamp, N*m
}

// smoothstep maps t in [0,1] to a C1-continuous ramp.
func smoothstep(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

// coefficients returns (CL, CD) for an incidence angle theta, blending
// across the stall boundary instead of switching hard.
func (m *AeroModel) coefficients(theta float64) (cl, cd float64) {
	linCL := m.Coef.CL0 + m.Coef.CLAlpha*(theta-m.Coef.Alpha0)
	blend := m.Coef.StallBlend
	if blend <= 0 {
		blend = 1e-3
	}
	t := smoothstep((theta - m.Coef.StallAngle) / blend)
	cl = linCL*(1-t) + m.Coef.PostStallCL*t
	cd = m.Coef.CD0*(1-t) + m.Coef.PostStallCD*t
	return cl, cd
}

// SurfaceForce computes the aerodynamic force on one panel given its world
// centroid velocity and the ambient wind. The returned moment is the pure
// pitching-moment contribution; the force itself is applied at the centroid
// by the caller, which yields the lever-arm torque.
func (m *AeroModel) SurfaceForce(normal geom.Vec3, area float64, velAtCentroid, wind geom.Vec3) (force, moment geom.Vec3) {
	w := wind.Sub(velAtCentroid)
	speed := w.Len()
	if speed < m.MinAirspeed {
		return geom.Vec3{}, geom.Vec3{}
	}
	wHat := w.Scale(1 / speed)

	// Face the panel into the wind; fabric has no preferred side.
	n := normal
	if n.Dot(wHat) < 0 {
		n = n.Scale(-1)
	}

	sinTheta := math.Min(math.Max(math.Abs(n.Dot(wHat)), 0), 1)
	theta := math.Asin(sinTheta)

	// Lift acts perpendicular to the apparent wind, in the plane spanned
	// by wind and normal. At grazing parallel alignment fall back to the
	// normal itself rather than a zero-length direction.
	liftDir := n.Sub(wHat.Scale(n.Dot(wHat)))
	if liftDir.LenSq() < 1e-12 {
		liftDir = n
	}
	liftDir = liftDir.Normalize()

	cl, cd := m.coefficients(theta)
	q := 0.5 * m.AirDensity * speed * speed
	force = liftDir.Scale(q * area * cl).Add(wHat.Scale(q * area * cd))
	force, _ = finiteVec(force, geom.Vec3{})
	force = force.Clamped(m.MaxForce)

	momentAxis := wHat.Cross(n).Normalize()
	moment = momentAxis.Scale(q * area * m.Coef.CM)
	moment, _ = finiteVec(moment, geom.Vec3{})
	moment = moment.Clamped(m.MaxTorque)
	return force, moment
}

// Apply computes and accumulates the aerodynamic force of every surface
// onto the body, returning the per-surface world force vectors.
func (m *AeroModel) Apply(b *RigidBody, surfaces []Surface, wind geom.Vec3) []geom.Vec3 {
	forces := make([]geom.Vec3, len(surfaces))
	for i, s := range surfaces {
		centroid, normal := s.World(b)
		force, moment := m.SurfaceForce(normal, s.Area(), b.VelocityAt(centroid), wind)
		torque := centroid.Sub(b.Position).Cross(force).Add(moment).Clamped(m.MaxTorque)
		b.ApplyForce(force)
		b.ApplyTorque(torque)
		forces[i] = force
	}
	return forces
}
