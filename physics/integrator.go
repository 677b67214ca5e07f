package physics

import (
	"math"

	"kitesim/geom"
)

// Integrator advances rigid bodies by one semi-implicit Euler step.
// The clamps bound the damage a single bad tick can do: a transient
// constraint spike is cut off at MaxAccel instead of launching the body.
type Integrator struct {
	MaxAccel        float64 // m/s^2
	MaxSpeed        float64 // m/s
	MaxAngularAccel float64 // rad/s^2
	MaxAngularSpeed float64 // rad/s
}

// Integrate advances velocity, angular velocity, position and orientation
// using the body's accumulated force and torque, then clears the
// accumulators. Kinematic bodies only get their accumulators cleared.
// Returns the number of non-finite vectors that had to be reset.
func (in Integrator) Integrate(b *RigidBody, dt float64) int {
	defer b.ClearAccumulators()
	if b.Kinematic || dt <= 0 {
		return 0
	}

	faults := 0
	if !b.Force.IsFinite() {
		b.Force = geom.Vec3{}
		faults++
	}
	if !b.Torque.IsFinite() {
		b.Torque = geom.Vec3{}
		faults++
	}

	a := b.Force.Scale(b.InvMass).Clamped(in.MaxAccel)
	b.Velocity = b.Velocity.Add(a.Scale(dt))
	b.Velocity = b.Velocity.Scale(math.Exp(-b.LinearDamping * dt))
	b.Velocity = b.Velocity.Clamped(in.MaxSpeed)
	b.Position = b.Position.Add(b.Velocity.Scale(dt))

	alpha := b.InvInertiaWorld().MulVec(b.Torque).Clamped(in.MaxAngularAccel)
	b.AngularVel = b.AngularVel.Add(alpha.Scale(dt))
	b.AngularVel = b.AngularVel.Scale(math.Exp(-b.AngularDamping * dt))
	b.AngularVel = b.AngularVel.Clamped(in.MaxAngularSpeed)
	b.Orientation = b.Orientation.Integrate(b.AngularVel, dt)

	faults += sanitizeBody(b)
	return faults
}
