package physics

import (
	"math"

	"kitesim/geom"
)

// Tether is one flying line: a unilateral distance constraint between a
// kite-side attachment (a bridle control point) and a bar-side handle.
// It pulls when stretched and does nothing while slack.
type Tether struct {
	RestLength float64

	// Telemetry, refreshed by the solver each tick.
	Taut       bool
	Length     float64
	Elongation float64
	Tension    float64

	lambda float64 // accumulated constraint multiplier for the tick
}

// TetherSolver projects tether constraints XPBD-style: position corrections
// with a compliance term instead of spring forces, which stays stable for
// any stiffness and any timestep.
type TetherSolver struct {
	Compliance         float64 // m/N; near zero models near-rigid cordage
	Iterations         int
	MaxCorrection      float64 // per-iteration displacement clamp, meters
	MaxForce           float64 // tension report cap, N
	MaxElongationRatio float64 // hard stretch limit as a fraction of rest length
}

// BeginTick resets the accumulated multiplier before the tick's iterations.
func (s *TetherSolver) BeginTick(t *Tether) { t.lambda = 0 }

// genInvMass computes the generalized inverse mass of a body for a
// constraint of direction n acting at lever arm r. Kinematic bodies
// contribute zero (infinite mass).
func genInvMass(b *RigidBody, r, n geom.Vec3) float64 {
	if b.Kinematic {
		return 0
	}
	rn := r.Cross(n)
	return b.InvMass + rn.Dot(b.InvInertiaWorld().MulVec(rn))
}

// nudge applies a position-level correction of magnitude lambda along n at
// lever arm r, with linear and angular parts clamped independently.
func (s *TetherSolver) nudge(b *RigidBody, r, n geom.Vec3, lambda float64) {
	if b.Kinematic {
		return
	}
	dp := n.Scale(lambda * b.InvMass).Clamped(s.MaxCorrection)
	b.Position = b.Position.Add(dp)

	dw := b.InvInertiaWorld().MulVec(r.Cross(n)).Scale(lambda).Clamped(s.MaxCorrection)
	b.Orientation = b.Orientation.Integrate(dw, 1)
}

// Project runs one constraint iteration. pA and pB are the current world
// attachment points on bodies a and b; the caller recomputes them between
// iterations as the poses move. A slack line (C <= 0) is left untouched.
func (s *TetherSolver) Project(t *Tether, a *RigidBody, pA geom.Vec3, b *RigidBody, pB geom.Vec3, dt float64) {
	if dt <= 0 {
		return
	}
	d := pA.Sub(pB)
	dist := d.Len()
	t.Length = dist

	c := dist - t.RestLength
	if c <= 0 || dist < 1e-9 {
		t.Taut = false
		return
	}
	t.Taut = true
	n := d.Scale(1 / dist)

	rA := pA.Sub(a.Position)
	rB := pB.Sub(b.Position)
	wA := genInvMass(a, rA, n)
	wB := genInvMass(b, rB, n)
	alphaTilde := s.Compliance / (dt * dt)

	denom := wA + wB + alphaTilde
	if denom < 1e-12 {
		return
	}
	dl := -c / denom
	t.lambda += dl

	s.nudge(a, rA, n, dl)
	s.nudge(b, rB, n, -dl)
}

// Finish closes out the tick for one line: clamps elongation past the hard
// limit, projects out residual separating velocity at the attachments so
// the constraint holds going into the next tick, and reports tension.
// A line counts as taut for the tick if any iteration engaged it; the
// per-iteration flag alone would miss lines whose corrections converged
// back to rest length within the tick. Returns 1 when the line had
// stretched past the elongation limit.
func (s *TetherSolver) Finish(t *Tether, a *RigidBody, pA geom.Vec3, b *RigidBody, pB geom.Vec3, dt float64) int {
	faults := 0
	d := pA.Sub(pB)
	dist := d.Len()
	t.Length = dist
	t.Elongation = math.Max(dist-t.RestLength, 0)

	t.Taut = t.lambda != 0
	if !t.Taut || dist < 1e-9 || dt <= 0 {
		t.Tension = 0
		return 0
	}
	n := d.Scale(1 / dist)
	rA := pA.Sub(a.Position)
	rB := pB.Sub(b.Position)
	wA := genInvMass(a, rA, n)
	wB := genInvMass(b, rB, n)

	maxLen := t.RestLength * (1 + s.MaxElongationRatio)
	if dist > maxLen && wA+wB > 1e-12 {
		// Past the hard cordage limit: snap the overshoot closed in one
		// projection, not subject to the per-iteration cap.
		lam := -(dist - maxLen) / (wA + wB)
		hardNudge(a, rA, n, lam)
		hardNudge(b, rB, n, -lam)
		t.Length = maxLen
		t.Elongation = t.RestLength * s.MaxElongationRatio
		faults++
	}

	// Remove outward radial velocity so positions do not have to be
	// re-solved from scratch next tick.
	vRel := a.VelocityAt(pA).Sub(b.VelocityAt(pB)).Dot(n)
	if vRel > 0 && wA+wB > 1e-12 {
		impulse := vRel / (wA + wB)
		applyImpulse(a, rA, n.Scale(-impulse))
		applyImpulse(b, rB, n.Scale(impulse))
	}

	t.Tension = math.Min(math.Abs(t.lambda)/(dt*dt), s.MaxForce)
	return faults
}

// hardNudge is nudge without the displacement clamp, for the elongation
// limit projection.
func hardNudge(b *RigidBody, r, n geom.Vec3, lambda float64) {
	if b.Kinematic {
		return
	}
	b.Position = b.Position.Add(n.Scale(lambda * b.InvMass))
	dw := b.InvInertiaWorld().MulVec(r.Cross(n)).Scale(lambda)
	b.Orientation = b.Orientation.Integrate(dw, 1)
}

// applyImpulse changes a body's linear and angular velocity by an impulse j
// acting at lever arm r.
func applyImpulse(b *RigidBody, r, j geom.Vec3) {
	if b.Kinematic {
		return
	}
	b.Velocity = b.Velocity.Add(j.Scale(b.InvMass))
	b.AngularVel = b.AngularVel.Add(b.InvInertiaWorld().MulVec(r.Cross(j)))
}
