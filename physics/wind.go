package physics

import (
	"math"
	"math/rand"

	"kitesim/geom"
)

// Wind is the ambient wind field: a steady base vector plus an optional
// sinusoidal gust along the base direction and a bounded low-pass-filtered
// turbulence component. The field is immutable within a tick; Step advances
// it once per tick and returns the vector the whole tick reads.
type Wind struct {
	Base          geom.Vec3
	GustAmplitude float64 // m/s, peak of the sinusoidal gust
	GustPeriod    float64 // seconds per gust cycle
	Turbulence    float64 // m/s, turbulence intensity (0 disables)

	rng     *rand.Rand
	turb    geom.Vec3
	elapsed float64
	current geom.Vec3
}

// NewWind builds a wind field. seed fixes the turbulence sequence so runs
// are reproducible.
func NewWind(base geom.Vec3, gustAmplitude, gustPeriod, turbulence float64, seed int64) *Wind {
	w := &Wind{
		Base:          base,
		GustAmplitude: gustAmplitude,
		GustPeriod:    gustPeriod,
		Turbulence:    turbulence,
		rng:           rand.New(rand.NewSource(seed)),
		current:       base,
	}
	return w
}

// WindFromSpeedAndDir builds the horizontal wind vector for a speed in m/s
// and a direction in degrees clockwise from +X when seen from above.
func WindFromSpeedAndDir(speed, directionDeg float64) geom.Vec3 {
	rad := directionDeg * math.Pi / 180
	return geom.Vec3{
		X: speed * math.Cos(rad),
		Z: speed * math.Sin(rad),
	}
}

// Step advances the field by dt and returns the wind vector for the tick.
func (w *Wind) Step(dt float64) geom.Vec3 {
	w.elapsed += dt

	v := w.Base
	if w.GustAmplitude > 0 && w.GustPeriod > 0 {
		gust := w.GustAmplitude * math.Sin(2*math.Pi*w.elapsed/w.GustPeriod)
		v = v.Add(w.Base.Normalize().Scale(gust))
	}

	if w.Turbulence > 0 {
		kick := geom.Vec3{
			X: w.rng.NormFloat64(),
			Y: w.rng.NormFloat64(),
			Z: w.rng.NormFloat64(),
		}.Scale(w.Turbulence)
		// first-order filter toward the fresh kick keeps it smooth
		blend := math.Min(dt*2, 1)
		w.turb = w.turb.Add(kick.Sub(w.turb).Scale(blend)).Clamped(2 * w.Turbulence)
		v = v.Add(w.turb)
	}

	w.current = v
	return v
}

// Current returns the wind vector of the most recent Step.
func (w *Wind) Current() geom.Vec3 { return w.current }
