package sim

import "math"

// The eclipse and incidence model is deliberately angular: the orbit is
// parameterised by its phase angle and the shadow cone is a fixed angular
// interval. Entry and exit are exclusive, so the satellite is still sunlit
// at exactly 120° and 270°.
const (
	eclipseEntryDeg = 120.0
	eclipseExitDeg  = 270.0

	// Panel incidence follows a cosine fall-off offset 45° from the orbit
	// phase, biased so the projection never drops below zero.
	projectionBias     = 0.6
	projectionSwing    = 0.4
	projectionPhaseDeg = 45.0
)

// Geometry is the sun-relative orbital state at one instant. It is shared by
// every panel configuration within a time step.
type Geometry struct {
	// ThetaDeg is the phase angle within the current orbit, in [0,360).
	ThetaDeg float64
	// Sunlit reports whether the satellite is illuminated. No power is
	// generated while it is false.
	Sunlit bool
	// Projection derates panel output for non-normal incidence, in [0,1].
	Projection float64
}

// OrbitModel maps elapsed mission time to orbital geometry.
type OrbitModel struct {
	periodSeconds float64
}

// NewOrbitModel builds the geometry model for the configured orbit.
func NewOrbitModel(cfg TimeConfig) OrbitModel {
	return OrbitModel{periodSeconds: cfg.OrbitPeriodSeconds}
}

// EclipseBoundsDeg returns the angular shadow interval. Both bounds are
// exclusive; see Geometry.Sunlit.
func (o OrbitModel) EclipseBoundsDeg() (entryDeg, exitDeg float64) {
	return eclipseEntryDeg, eclipseExitDeg
}

// At returns the geometry after the given elapsed mission time.
func (o OrbitModel) At(elapsedSeconds float64) Geometry {
	theta := 360 * math.Mod(elapsedSeconds, o.periodSeconds) / o.periodSeconds
	proj := projectionBias + projectionSwing*math.Cos((theta-projectionPhaseDeg)*math.Pi/180)
	if proj < 0 {
		proj = 0
	}
	return Geometry{
		ThetaDeg:   theta,
		Sunlit:     theta <= eclipseEntryDeg || theta >= eclipseExitDeg,
		Projection: proj,
	}
}
