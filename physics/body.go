// Package physics implements the flight-dynamics core of the kite
// simulation: rigid-body integration, bridle trilateration, the tether
// constraint solver and the aerodynamic surface model, orchestrated by Rig.
package physics

import (
	"log"

	"kitesim/geom"
)

// RigidBody holds the pose and velocity state of the kite or the control
// bar. Force and torque accumulate between ticks and are consumed (and
// cleared) by the integrator. Kinematic bodies never integrate forces but
// still act as infinite-mass anchors for constraints.
type RigidBody struct {
	Position    geom.Vec3
	Orientation geom.Quat
	Velocity    geom.Vec3
	AngularVel  geom.Vec3

	Mass       float64
	InvMass    float64
	Inertia    geom.Mat3
	InvInertia geom.Mat3

	Force  geom.Vec3
	Torque geom.Vec3

	LinearDamping  float64
	AngularDamping float64

	Kinematic bool
}

// NewRigidBody builds a dynamic body with the given mass and body-frame
// inertia tensor. A non-invertible inertia tensor is replaced with identity.
func NewRigidBody(mass float64, inertia geom.Mat3, pos geom.Vec3, orient geom.Quat) *RigidBody {
	b := &RigidBody{
		Position:    pos,
		Orientation: orient.Normalize(),
		Mass:        mass,
		Inertia:     inertia,
	}
	if mass > 0 {
		b.InvMass = 1 / mass
	} else {
		b.Kinematic = true
	}
	inv, ok := inertia.Inverse()
	if !ok {
		log.Printf("physics: inertia tensor not invertible, using identity")
		b.Inertia = geom.IdentityMat3()
		inv = geom.IdentityMat3()
	}
	b.InvInertia = inv
	return b
}

// NewKinematicBody builds an infinite-mass body driven only by pose updates.
func NewKinematicBody(pos geom.Vec3, orient geom.Quat) *RigidBody {
	return &RigidBody{
		Position:    pos,
		Orientation: orient.Normalize(),
		Inertia:     geom.IdentityMat3(),
		InvInertia:  geom.IdentityMat3(),
		Kinematic:   true,
	}
}

// WorldPoint maps a body-local point into world space.
func (b *RigidBody) WorldPoint(local geom.Vec3) geom.Vec3 {
	return b.Position.Add(b.Orientation.Rotate(local))
}

// WorldDir maps a body-local direction into world space.
func (b *RigidBody) WorldDir(local geom.Vec3) geom.Vec3 {
	return b.Orientation.Rotate(local)
}

// VelocityAt returns the world velocity of a world-space point rigidly
// attached to the body.
func (b *RigidBody) VelocityAt(worldPoint geom.Vec3) geom.Vec3 {
	r := worldPoint.Sub(b.Position)
	return b.Velocity.Add(b.AngularVel.Cross(r))
}

// InvInertiaWorld returns the world-frame inverse inertia tensor
// R * Iinv * R^T for the current orientation.
func (b *RigidBody) InvInertiaWorld() geom.Mat3 {
	r := b.Orientation.Mat3()
	return r.Mul(b.InvInertia).Mul(r.Transpose())
}

// ApplyForce accumulates a force acting through the center of mass.
func (b *RigidBody) ApplyForce(f geom.Vec3) {
	b.Force = b.Force.Add(f)
}

// ApplyForceAt accumulates a force acting at a world-space point, adding
// the induced torque about the center of mass.
func (b *RigidBody) ApplyForceAt(f, worldPoint geom.Vec3) {
	b.Force = b.Force.Add(f)
	b.Torque = b.Torque.Add(worldPoint.Sub(b.Position).Cross(f))
}

// ApplyTorque accumulates a pure torque.
func (b *RigidBody) ApplyTorque(t geom.Vec3) {
	b.Torque = b.Torque.Add(t)
}

// ClearAccumulators zeroes the force and torque accumulators.
func (b *RigidBody) ClearAccumulators() {
	b.Force = geom.Vec3{}
	b.Torque = geom.Vec3{}
}
