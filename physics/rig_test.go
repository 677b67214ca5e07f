package physics

import (
	"math"
	"testing"

	"kitesim/geom"
)

func TestStepStaysFiniteAndBounded(t *testing.T) {
	r := NewRig(DefaultParams())
	dt := 1.0 / 60
	maxLen := r.Params.LineRestLength*(1+r.Params.MaxElongationRatio) + 1e-3

	for i := 0; i < 600; i++ {
		rep := r.Step(dt)

		if !r.Kite.Position.IsFinite() || !r.Kite.Velocity.IsFinite() {
			t.Fatalf("non-finite kite state at tick %d: pos=%+v vel=%+v",
				rep.Tick, r.Kite.Position, r.Kite.Velocity)
		}
		if math.Abs(r.Kite.Orientation.Norm()-1) > 1e-6 {
			t.Fatalf("orientation norm = %f at tick %d", r.Kite.Orientation.Norm(), rep.Tick)
		}
		for li, l := range rep.Lines {
			if l.Taut && l.Length > maxLen {
				t.Fatalf("line %d length %f exceeds limit %f at tick %d", li, l.Length, maxLen, rep.Tick)
			}
			if l.Tension < 0 || l.Tension > r.Params.MaxLineForce {
				t.Fatalf("line %d tension %f out of range at tick %d", li, l.Tension, rep.Tick)
			}
		}
		if r.Kite.Position.Y < r.Params.GroundLevel {
			t.Fatalf("kite below ground at tick %d: y=%f", rep.Tick, r.Kite.Position.Y)
		}
	}
}

func TestStepClampsDeltaTime(t *testing.T) {
	r := NewRig(DefaultParams())
	before := r.Kite.Position

	r.Step(10) // a huge frame hitch

	moved := r.Kite.Position.Sub(before).Len()
	limit := r.Params.MaxSpeed*r.Params.MaxDeltaTime +
		float64(r.Params.LineIterations)*r.Params.MaxLineCorrection
	if moved > limit {
		t.Fatalf("kite moved %f m on one clamped step, want <= %f", moved, limit)
	}
}

func TestStepZeroDtIsNoOp(t *testing.T) {
	r := NewRig(DefaultParams())
	r.Step(1.0 / 60)
	pos := r.Kite.Position
	tick := r.Tick()

	r.Step(0)

	if r.Kite.Position != pos || r.Tick() != tick {
		t.Fatalf("zero-dt step changed state")
	}
}

func TestResetRestoresLaunchPose(t *testing.T) {
	p := DefaultParams()
	r := NewRig(p)
	fresh := NewRig(p)

	for i := 0; i < 120; i++ {
		r.Step(1.0 / 60)
	}
	r.Reset()

	if r.Tick() != 0 {
		t.Fatalf("tick after reset = %d, want 0", r.Tick())
	}
	if r.Kite.Position.Sub(fresh.Kite.Position).Len() > 1e-9 {
		t.Fatalf("reset pose = %+v, want %+v", r.Kite.Position, fresh.Kite.Position)
	}
	if r.Kite.Velocity != (geom.Vec3{}) {
		t.Fatalf("reset velocity = %+v, want zero", r.Kite.Velocity)
	}
}

func TestSetBarRollClampsToAuthority(t *testing.T) {
	r := NewRig(DefaultParams())

	r.SetBarRoll(10)

	if got := r.BarRoll(); math.Abs(got-r.Params.MaxBarRoll) > 1e-9 {
		t.Fatalf("bar roll = %f, want clamped to %f", got, r.Params.MaxBarRoll)
	}
	left := r.handle(0)
	right := r.handle(1)
	if math.Abs(left.Y-right.Y) < 1e-6 {
		t.Fatalf("rolled bar should raise one handle: left.y=%f right.y=%f", left.Y, right.Y)
	}
}

func TestSteeringTurnsKite(t *testing.T) {
	p := DefaultParams()
	p.Turbulence = 0 // deterministic
	p.GustAmplitude = 0

	run := func(roll float64) float64 {
		r := NewRig(p)
		for i := 0; i < 300; i++ {
			r.SetBarRoll(roll)
			r.Step(1.0 / 60)
		}
		return r.Kite.Position.Z
	}

	zLeft := run(-p.MaxBarRoll)
	zRight := run(p.MaxBarRoll)
	if math.Abs(zLeft-zRight) < 1e-3 {
		t.Fatalf("opposite steering produced identical lateral motion: %f vs %f", zLeft, zRight)
	}
}

func TestUnconfiguredLineIsSkipped(t *testing.T) {
	r := NewRig(DefaultParams())
	r.Bridles[1].Lengths[0] = 0

	rep := r.Step(1.0 / 60)

	if rep.Faults.SkippedConstraints == 0 {
		t.Fatalf("expected the unconfigured line to be reported as skipped")
	}
	if rep.Lines[1].Tension != 0 {
		t.Fatalf("skipped line reported tension %f", rep.Lines[1].Tension)
	}
}

func TestReportCarriesSurfaceForces(t *testing.T) {
	r := NewRig(DefaultParams())
	rep := r.Step(1.0 / 60)

	if len(rep.SurfaceForces) != len(r.Surfaces) {
		t.Fatalf("got %d surface forces, want %d", len(rep.SurfaceForces), len(r.Surfaces))
	}
	for i, f := range rep.SurfaceForces {
		if !f.IsFinite() {
			t.Fatalf("non-finite surface force %d: %+v", i, f)
		}
	}
}
