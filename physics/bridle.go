package physics

import (
	"math"

	"kitesim/geom"
)

// Bridle is one set of three cords running from fixed body-local anchor
// points on the kite frame (nose, intermediate, center) to a common
// virtual control point. The control point is massless geometry: it is
// recomputed from the anchors every tick, never integrated.
type Bridle struct {
	Anchors [3]geom.Vec3 // body-local
	Lengths [3]float64   // rest lengths, meters
}

const (
	bridleRefineIters = 20
	bridleTolerance   = 1e-4 // meters
)

// ControlPoint trilaterates the bridle's world-space control point for the
// body's current pose. The forward hint (body-local) picks which side of
// the anchor plane the apex lies on. The second return is false when the
// geometry was infeasible and the anchors' centroid was used instead.
func (br Bridle) ControlPoint(b *RigidBody) (geom.Vec3, bool) {
	a1 := b.WorldPoint(br.Anchors[0])
	a2 := b.WorldPoint(br.Anchors[1])
	a3 := b.WorldPoint(br.Anchors[2])
	hint := b.WorldDir(geom.Vec3{Y: -1})
	return SolveApex(a1, a2, a3, br.Lengths[0], br.Lengths[1], br.Lengths[2], hint)
}

// SolveApex computes the point at the given distances from three anchors:
// closed-form trilateration in an anchor-aligned basis, then a bounded
// Gauss-Newton refinement. Infeasible lengths (negative radicand) or
// near-collinear anchors fall back to the anchors' centroid and return
// false.
func SolveApex(a1, a2, a3 geom.Vec3, l1, l2, l3 float64, forwardHint geom.Vec3) (geom.Vec3, bool) {
	centroid := a1.Add(a2).Add(a3).Scale(1.0 / 3.0)

	ab := a2.Sub(a1)
	d := ab.Len()
	if d < 1e-9 {
		return centroid, false
	}
	ex := ab.Scale(1 / d)

	ac := a3.Sub(a1)
	i := ex.Dot(ac)
	eyRaw := ac.Sub(ex.Scale(i))
	j := eyRaw.Len()
	if j < 1e-9 {
		// anchors collinear
		return centroid, false
	}
	ey := eyRaw.Scale(1 / j)
	ez := ex.Cross(ey)

	// Subtracting the squared-distance equations pairwise leaves a linear
	// system in the apex's in-plane coordinates.
	x := (l1*l1 - l2*l2 + d*d) / (2 * d)
	y := (l1*l1-l3*l3+i*i+j*j)/(2*j) - (i/j)*x

	z2 := l1*l1 - x*x - y*y
	if z2 < -bridleTolerance {
		return centroid, false
	}
	if z2 < 0 {
		z2 = 0
	}
	z := math.Sqrt(z2)
	if ez.Dot(forwardHint) < 0 {
		z = -z
	}

	p := a1.Add(ex.Scale(x)).Add(ey.Scale(y)).Add(ez.Scale(z))
	p = refineApex(p, a1, a2, a3, l1, l2, l3)
	p, ok := finiteVec(p, centroid)
	return p, ok
}

// refineApex nudges the apex along each distance constraint's gradient
// until the worst residual is below tolerance or the iteration budget runs
// out. This corrects the small basis/linearization error of the closed
// form.
func refineApex(p, a1, a2, a3 geom.Vec3, l1, l2, l3 float64) geom.Vec3 {
	anchors := [3]geom.Vec3{a1, a2, a3}
	lengths := [3]float64{l1, l2, l3}

	for iter := 0; iter < bridleRefineIters; iter++ {
		var step geom.Vec3
		worst := 0.0
		for k := 0; k < 3; k++ {
			diff := p.Sub(anchors[k])
			dist := diff.Len()
			if dist < 1e-9 {
				continue
			}
			err := dist - lengths[k]
			if math.Abs(err) > worst {
				worst = math.Abs(err)
			}
			step = step.Add(diff.Scale(-err / dist))
		}
		if worst < bridleTolerance {
			break
		}
		p = p.Add(step.Scale(1.0 / 3.0))
	}
	return p
}
