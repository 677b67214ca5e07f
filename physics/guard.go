package physics

import "kitesim/geom"

// The finite-or-reset guard. Every public physics operation calls one of
// these at its boundary so a NaN or Inf produced mid-computation is zeroed
// there and never leaks into the next tick.

// finiteVec returns v, or fallback and false when v has a non-finite
// component.
func finiteVec(v, fallback geom.Vec3) (geom.Vec3, bool) {
	if v.IsFinite() {
		return v, true
	}
	return fallback, false
}

// sanitizeBody resets any non-finite state vector on the body and returns
// how many resets were needed. Vectors reset to zero, orientation to
// identity.
func sanitizeBody(b *RigidBody) int {
	faults := 0
	if !b.Velocity.IsFinite() {
		b.Velocity = geom.Vec3{}
		faults++
	}
	if !b.AngularVel.IsFinite() {
		b.AngularVel = geom.Vec3{}
		faults++
	}
	if !b.Position.IsFinite() {
		b.Position = geom.Vec3{}
		faults++
	}
	if !b.Orientation.IsFinite() {
		b.Orientation = geom.IdentityQuat()
		faults++
	}
	return faults
}
