package physics

import (
	"math"

	"kitesim/geom"
)

// Params is the complete, versioned tuning bundle for one rig. Every
// constant the core consumes lives here and is passed in at construction;
// nothing is read from globals mid-flight.
type Params struct {
	Version int

	Gravity    geom.Vec3 // m/s^2
	AirDensity float64   // kg/m^3

	KiteMass       float64   // kg
	KiteInertia    geom.Vec3 // principal moments, kg*m^2 (body axes)
	LinearDamping  float64   // 1/s, continuous exponential
	AngularDamping float64   // 1/s

	// Integrator safety clamps.
	MaxAccel        float64 // m/s^2
	MaxSpeed        float64 // m/s
	MaxAngularAccel float64 // rad/s^2
	MaxAngularSpeed float64 // rad/s

	Aero             AeroCoefficients
	MinAirspeed      float64 // m/s
	MaxSurfaceForce  float64 // N per surface
	MaxSurfaceTorque float64 // N*m per surface

	LineRestLength     float64 // meters
	LineCompliance     float64 // m/N
	LineIterations     int
	MaxLineForce       float64 // N, tension report cap
	MaxElongationRatio float64 // fraction of rest length
	MaxLineCorrection  float64 // meters per solver iteration

	BarWidth   float64 // meters between handles
	BarHeight  float64 // meters above ground
	MaxBarRoll float64 // radians of steering authority

	WindSpeed        float64 // m/s
	WindDirectionDeg float64
	GustAmplitude    float64 // m/s
	GustPeriod       float64 // s
	Turbulence       float64 // m/s
	WindSeed         int64

	GroundLevel  float64 // world Y of the ground plane
	MaxDeltaTime float64 // seconds, per-tick clamp
}

// DefaultParams returns the tuning for the stock 2m delta kite on 15m
// lines.
func DefaultParams() Params {
	return Params{
		Version: 1,

		Gravity:    geom.Vec3{Y: -9.81},
		AirDensity: 1.225,

		KiteMass:       0.12,
		KiteInertia:    geom.Vec3{X: 0.015, Y: 0.03, Z: 0.02},
		LinearDamping:  0.05,
		AngularDamping: 1.5,

		MaxAccel:        250,
		MaxSpeed:        40,
		MaxAngularAccel: 250,
		MaxAngularSpeed: 25,

		Aero: AeroCoefficients{
			CL0:         0.1,
			CLAlpha:     4.5,
			Alpha0:      -0.035,
			CD0:         0.05,
			CM:          -0.02,
			StallAngle:  0.31,
			StallBlend:  0.12,
			PostStallCL: 0.8,
			PostStallCD: 1.2,
		},
		MinAirspeed:      0.2,
		MaxSurfaceForce:  150,
		MaxSurfaceTorque: 60,

		LineRestLength:     15,
		LineCompliance:     1e-7,
		LineIterations:     8,
		MaxLineForce:       600,
		MaxElongationRatio: 0.02,
		MaxLineCorrection:  0.2,

		BarWidth:   0.55,
		BarHeight:  1.2,
		MaxBarRoll: 35 * math.Pi / 180,

		WindSpeed:        6,
		WindDirectionDeg: 0,
		GustAmplitude:    1.5,
		GustPeriod:       7,
		Turbulence:       0.4,
		WindSeed:         1,

		GroundLevel:  0,
		MaxDeltaTime: 1.0 / 30,
	}
}

// Kite geometry in the body frame: X spanwise (wingtips at +-X), Y the
// canopy normal pointing away from the pilot, Z toward the nose. All in
// meters for a ~2m wingspan delta.
var (
	kiteNose     = geom.Vec3{Z: 0.45}
	kiteTail     = geom.Vec3{Z: -0.45}
	kiteTipLeft  = geom.Vec3{X: -1.0, Y: 0.12, Z: -0.45}
	kiteTipRight = geom.Vec3{X: 1.0, Y: 0.12, Z: -0.45}
	kiteMidLeft  = geom.Vec3{X: -0.5, Y: 0.06, Z: -0.45}
	kiteMidRight = geom.Vec3{X: 0.5, Y: 0.06, Z: -0.45}
)

// defaultSurfaces splits each wing into two panels. Winding keeps every
// outward normal on the +Y side of the canopy.
func defaultSurfaces() []Surface {
	return []Surface{
		NewSurface(kiteNose, kiteTail, kiteMidLeft),
		NewSurface(kiteNose, kiteMidLeft, kiteTipLeft),
		NewSurface(kiteNose, kiteMidRight, kiteTail),
		NewSurface(kiteNose, kiteTipRight, kiteMidRight),
	}
}

// defaultBridles returns the left and right bridle sets. Each runs from
// the nose, an intermediate spar point and the keel to its control point
// hanging below the canopy (-Y side).
func defaultBridles() [2]Bridle {
	left := Bridle{
		Anchors: [3]geom.Vec3{
			kiteNose,
			{X: -0.5, Y: 0.06, Z: -0.05},
			{Z: -0.3},
		},
		Lengths: [3]float64{0.74, 0.68, 0.66},
	}
	right := Bridle{
		Anchors: [3]geom.Vec3{
			kiteNose,
			{X: 0.5, Y: 0.06, Z: -0.05},
			{Z: -0.3},
		},
		Lengths: [3]float64{0.74, 0.68, 0.66},
	}
	return [2]Bridle{left, right}
}
