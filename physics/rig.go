package physics

import (
	"math"

	"kitesim/geom"
)

// LineTelemetry is the per-line state reported after each tick.
type LineTelemetry struct {
	Taut       bool
	Length     float64
	Elongation float64
	Tension    float64
}

// FaultCounters tallies the recoverable faults of one tick. None of these
// abort the tick; they degrade it and get reported.
type FaultCounters struct {
	NumericalResets    int // non-finite vectors zeroed
	InfeasibleBridles  int // trilateration fell back to the centroid
	Overstretches      int // lines clamped at the elongation limit
	SkippedConstraints int // unconfigured constraints no-opped
}

// StepReport is the telemetry of one completed tick.
type StepReport struct {
	Tick          int
	Wind          geom.Vec3
	Lines         [2]LineTelemetry
	SurfaceForces []geom.Vec3
	Faults        FaultCounters
}

// Rig is the full kite/bar/line topology and the per-tick orchestrator.
// One tick runs, in fixed order: aerodynamics, gravity, bridle resolution,
// tether constraint iterations, integration, ground clamp. Strictly
// single-threaded; Step must not be called concurrently.
type Rig struct {
	Params   Params
	Kite     *RigidBody
	Bar      *RigidBody
	Surfaces []Surface
	Bridles  [2]Bridle
	Lines    [2]Tether
	Wind     *Wind

	aero       AeroModel
	integrator Integrator
	solver     TetherSolver

	barRoll float64
	tick    int
}

// NewRig assembles a rig from one parameter bundle.
func NewRig(p Params) *Rig {
	r := &Rig{
		Params:   p,
		Surfaces: defaultSurfaces(),
		Bridles:  defaultBridles(),
		aero: AeroModel{
			Coef:        p.Aero,
			AirDensity:  p.AirDensity,
			MinAirspeed: p.MinAirspeed,
			MaxForce:    p.MaxSurfaceForce,
			MaxTorque:   p.MaxSurfaceTorque,
		},
		integrator: Integrator{
			MaxAccel:        p.MaxAccel,
			MaxSpeed:        p.MaxSpeed,
			MaxAngularAccel: p.MaxAngularAccel,
			MaxAngularSpeed: p.MaxAngularSpeed,
		},
		solver: TetherSolver{
			Compliance:         p.LineCompliance,
			Iterations:         p.LineIterations,
			MaxCorrection:      p.MaxLineCorrection,
			MaxForce:           p.MaxLineForce,
			MaxElongationRatio: p.MaxElongationRatio,
		},
	}
	r.Reset()
	return r
}

// Reset reinitializes all body and constraint state to the launch pose.
// This is the only supported cancellation: a tick either runs whole or the
// rig starts over.
func (r *Rig) Reset() {
	p := r.Params

	r.Bar = NewKinematicBody(
		geom.Vec3{Y: p.GroundLevel + p.BarHeight},
		geom.IdentityQuat(),
	)
	r.barRoll = 0

	// Launch downwind of the bar at a 35 degree line elevation, canopy
	// facing the pilot.
	const elev = 35 * math.Pi / 180
	dir := geom.Vec3{X: math.Cos(elev), Y: math.Sin(elev)}
	kitePos := r.Bar.Position.Add(dir.Scale(p.LineRestLength * 0.97))
	orient := geom.QuatFromAxisAngle(geom.Vec3{Z: 1}, -(math.Pi/2 - elev)).
		Mul(geom.QuatFromAxisAngle(geom.Vec3{Y: 1}, -math.Pi/2))

	r.Kite = NewRigidBody(
		p.KiteMass,
		geom.DiagMat3(p.KiteInertia.X, p.KiteInertia.Y, p.KiteInertia.Z),
		kitePos,
		orient,
	)
	r.Kite.LinearDamping = p.LinearDamping
	r.Kite.AngularDamping = p.AngularDamping

	r.Lines = [2]Tether{
		{RestLength: p.LineRestLength},
		{RestLength: p.LineRestLength},
	}
	r.Wind = NewWind(
		WindFromSpeedAndDir(p.WindSpeed, p.WindDirectionDeg),
		p.GustAmplitude, p.GustPeriod, p.Turbulence, p.WindSeed,
	)
	r.tick = 0
}

// SetBarRoll drives the kinematic bar to a roll angle about the downwind
// axis, clamped to the steering authority. The session layer maps the raw
// steering signal to this angle; the core only ever sees the bar pose.
func (r *Rig) SetBarRoll(angle float64) {
	r.barRoll = math.Max(-r.Params.MaxBarRoll, math.Min(r.Params.MaxBarRoll, angle))
	r.Bar.Orientation = geom.QuatFromAxisAngle(geom.Vec3{X: 1}, r.barRoll)
}

// BarRoll returns the current bar roll angle.
func (r *Rig) BarRoll() float64 { return r.barRoll }

// handle returns the world position of bar handle i (0 = left, 1 = right).
func (r *Rig) handle(i int) geom.Vec3 {
	half := r.Params.BarWidth / 2
	if i == 0 {
		return r.Bar.WorldPoint(geom.Vec3{Z: -half})
	}
	return r.Bar.WorldPoint(geom.Vec3{Z: half})
}

// lineConfigured reports whether line i has a usable bridle and rest
// length. An unconfigured line is skipped for the tick, not an error.
func (r *Rig) lineConfigured(i int) bool {
	if r.Lines[i].RestLength <= 0 {
		return false
	}
	for _, l := range r.Bridles[i].Lengths {
		if l <= 0 {
			return false
		}
	}
	return true
}

// Step advances the simulation by one tick of at most MaxDeltaTime
// seconds and returns the tick's telemetry.
func (r *Rig) Step(dt float64) StepReport {
	p := r.Params
	if dt > p.MaxDeltaTime {
		dt = p.MaxDeltaTime
	}
	var faults FaultCounters
	if dt <= 0 {
		return StepReport{Tick: r.tick, Wind: r.Wind.Current()}
	}

	wind := r.Wind.Step(dt)

	// 1. Aerodynamics and gravity write the force accumulators.
	surfaceForces := r.aero.Apply(r.Kite, r.Surfaces, wind)
	r.Kite.ApplyForce(p.Gravity.Scale(p.KiteMass))

	// 2+3. Bridle resolution feeds the tether projection; the control
	// points are re-trilaterated every iteration as the poses move.
	for i := range r.Lines {
		r.solver.BeginTick(&r.Lines[i])
	}
	for it := 0; it < r.solver.Iterations; it++ {
		for i := range r.Lines {
			if !r.lineConfigured(i) {
				if it == 0 {
					faults.SkippedConstraints++
				}
				continue
			}
			cp, ok := r.Bridles[i].ControlPoint(r.Kite)
			if !ok && it == 0 {
				faults.InfeasibleBridles++
			}
			r.solver.Project(&r.Lines[i], r.Kite, cp, r.Bar, r.handle(i), dt)
		}
	}
	for i := range r.Lines {
		if !r.lineConfigured(i) {
			continue
		}
		cp, _ := r.Bridles[i].ControlPoint(r.Kite)
		faults.Overstretches += r.solver.Finish(&r.Lines[i], r.Kite, cp, r.Bar, r.handle(i), dt)
	}

	// 4. Integration consumes and clears the accumulators.
	faults.NumericalResets += r.integrator.Integrate(r.Kite, dt)
	r.integrator.Integrate(r.Bar, dt)

	// 5. Ground clamp.
	floor := p.GroundLevel + 0.05
	if r.Kite.Position.Y < floor {
		r.Kite.Position.Y = floor
		if r.Kite.Velocity.Y < 0 {
			r.Kite.Velocity.Y = 0
		}
	}

	r.tick++
	report := StepReport{
		Tick:          r.tick,
		Wind:          wind,
		SurfaceForces: surfaceForces,
		Faults:        faults,
	}
	for i, l := range r.Lines {
		report.Lines[i] = LineTelemetry{
			Taut:       l.Taut,
			Length:     l.Length,
			Elongation: l.Elongation,
			Tension:    l.Tension,
		}
	}
	return report
}

// Tick returns the number of completed steps since the last reset.
func (r *Rig) Tick() int { return r.tick }
