package physics

import (
	"math"
	"testing"

	"kitesim/geom"
)

func testAero() *AeroModel {
	p := DefaultParams()
	return &AeroModel{
		Coef:        p.Aero,
		AirDensity:  p.AirDensity,
		MinAirspeed: p.MinAirspeed,
		MaxForce:    p.MaxSurfaceForce,
		MaxTorque:   p.MaxSurfaceTorque,
	}
}

func TestZeroApparentWindNoForce(t *testing.T) {
	m := testAero()
	wind := geom.Vec3{X: 6}

	// Body moving exactly with the wind: zero apparent wind.
	force, moment := m.SurfaceForce(geom.Vec3{Y: 1}, 0.5, wind, wind)

	if force != (geom.Vec3{}) || moment != (geom.Vec3{}) {
		t.Fatalf("expected zero force in zero apparent wind, got force=%+v moment=%+v", force, moment)
	}
}

func TestBelowMinAirspeedNoForce(t *testing.T) {
	m := testAero()
	force, _ := m.SurfaceForce(geom.Vec3{Y: 1}, 0.5, geom.Vec3{}, geom.Vec3{X: m.MinAirspeed / 2})
	if force != (geom.Vec3{}) {
		t.Fatalf("expected zero force below minimum airspeed, got %+v", force)
	}
}

func TestDragPointsDownwind(t *testing.T) {
	m := testAero()
	wind := geom.Vec3{X: 8}
	normal := geom.Vec3{X: -0.3, Y: 1}.Normalize()

	force, _ := m.SurfaceForce(normal, 0.5, geom.Vec3{}, wind)

	if force.Dot(wind.Normalize()) <= 0 {
		t.Fatalf("expected a downwind drag component, got force=%+v", force)
	}
}

func TestNormalFlipsToFaceWind(t *testing.T) {
	m := testAero()
	wind := geom.Vec3{X: 8}
	up := geom.Vec3{X: -0.3, Y: 1}.Normalize()
	down := up.Scale(-1)

	f1, _ := m.SurfaceForce(up, 0.5, geom.Vec3{}, wind)
	f2, _ := m.SurfaceForce(down, 0.5, geom.Vec3{}, wind)

	if f1.Sub(f2).Len() > 1e-9 {
		t.Fatalf("fabric should be side-agnostic: %+v vs %+v", f1, f2)
	}
}

func TestForceClampedPerSurface(t *testing.T) {
	m := testAero()
	force, _ := m.SurfaceForce(geom.Vec3{X: -0.5, Y: 1}.Normalize(), 2.0, geom.Vec3{}, geom.Vec3{X: 60})
	if force.Len() > m.MaxForce+1e-9 {
		t.Fatalf("surface force = %f, want <= %f", force.Len(), m.MaxForce)
	}
}

func TestStallInflatesDragAndCapsLift(t *testing.T) {
	m := testAero()
	c := m.Coef

	clPre, cdPre := m.coefficients(c.StallAngle / 2)
	clPost, cdPost := m.coefficients(c.StallAngle + c.StallBlend + 0.1)

	if cdPost <= cdPre {
		t.Fatalf("drag did not rise past stall: pre=%f post=%f", cdPre, cdPost)
	}
	if clPre <= clPost {
		t.Fatalf("pre-stall lift %f should exceed the post-stall ceiling %f", clPre, clPost)
	}
	if math.Abs(clPost-c.PostStallCL) > 1e-9 {
		t.Fatalf("post-stall lift = %f, want ceiling %f", clPost, c.PostStallCL)
	}
}

func TestStallTransitionIsContinuous(t *testing.T) {
	m := testAero()
	stall := m.Coef.StallAngle

	// Sample tightly across the boundary; no jump bigger than the local
	// slope allows.
	prevCL, prevCD := m.coefficients(stall - 0.05)
	for theta := stall - 0.05; theta <= stall+m.Coef.StallBlend+0.05; theta += 0.001 {
		cl, cd := m.coefficients(theta)
		if math.Abs(cl-prevCL) > 0.05 || math.Abs(cd-prevCD) > 0.05 {
			t.Fatalf("coefficient jump at theta=%f: dCL=%f dCD=%f", theta, cl-prevCL, cd-prevCD)
		}
		prevCL, prevCD = cl, cd
	}
}

func TestApplyAccumulatesOntoBody(t *testing.T) {
	b := testBody(0.12)
	m := testAero()
	surfaces := defaultSurfaces()

	forces := m.Apply(b, surfaces, geom.Vec3{X: 6})

	if len(forces) != len(surfaces) {
		t.Fatalf("got %d surface forces, want %d", len(forces), len(surfaces))
	}
	if b.Force == (geom.Vec3{}) {
		t.Fatalf("expected accumulated force on body in a 6 m/s wind")
	}
	if !b.Force.IsFinite() || !b.Torque.IsFinite() {
		t.Fatalf("non-finite accumulators: force=%+v torque=%+v", b.Force, b.Torque)
	}
}
