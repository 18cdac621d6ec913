package flarepie

import (
	"math"

	"github.com/gonum/floats"
)

// Earth constants for the orbital analytics, in SI units.
const (
	gravitationalConstant = 6.67430e-11
	earthMass             = 5.972e24
	// EarthRadius is the mean Earth radius in meters.
	EarthRadius = 6.371e6
	earthμ      = gravitationalConstant * earthMass
)

// EscapeVelocity returns the escape velocity in m/s at a given altitude
// above the surface.
func EscapeVelocity(altitude float64) float64 {
	return math.Sqrt(2 * earthμ / (EarthRadius + altitude))
}

// CircularVelocity returns the circular orbital velocity in m/s at a given
// altitude above the surface.
func CircularVelocity(altitude float64) float64 {
	return math.Sqrt(earthμ / (EarthRadius + altitude))
}

// OrbitalElements are the six classical Keplerian elements. Angles are in
// radians, the semi-major axis in meters and infinite for a non-captive
// (parabolic or hyperbolic) state.
type OrbitalElements struct {
	SemiMajorAxis  float64
	Eccentricity   float64
	Inclination    float64
	ArgOfPeriapsis float64
	RAAN           float64
	TrueAnomaly    float64
}

// ElementsFromRV derives the classical elements from an ECI position and
// velocity vector pair, as in Vallado's RV2COE. Degenerate geometries
// (equatorial, circular, rectilinear) zero the undefined angles instead of
// returning NaN.
func ElementsFromRV(R, V []float64) OrbitalElements {
	r := norm(R)
	v := norm(V)
	hVec := cross(R, V)
	hNorm := norm(hVec)
	nVec := cross([]float64{0, 0, 1}, hVec)
	nNorm := norm(nVec)

	eVec := make([]float64, 3)
	for i := 0; i < 3; i++ {
		eVec[i] = ((v*v-earthμ/r)*R[i] - dot(R, V)*V[i]) / earthμ
	}
	e := norm(eVec)

	ξ := v*v/2 - earthμ/r
	a := math.Inf(1)
	if ξ < 0 {
		a = -earthμ / (2 * ξ)
	}

	var inc, Ω, ω, ν float64
	if hNorm > 0 {
		inc = math.Acos(hVec[2] / hNorm)
	}
	if nNorm > 0 {
		Ω = math.Acos(nVec[0] / nNorm)
		if nVec[1] < 0 {
			Ω = 2*math.Pi - Ω
		}
	}
	if nNorm > 0 && e > 0 {
		ω = math.Acos(dot(nVec, eVec) / (nNorm * e))
		if math.IsNaN(ω) {
			ω = 0
		}
		if eVec[2] < 0 {
			ω = 2*math.Pi - ω
		}
	}
	if e > 0 {
		cosν := dot(eVec, R) / (e * r)
		if abscosν := math.Abs(cosν); abscosν > 1 && floats.EqualWithinAbs(abscosν, 1, 1e-12) {
			// Rounding pushed the cosine just out of its domain.
			cosν = sign(cosν)
		}
		ν = math.Acos(cosν)
		if math.IsNaN(ν) {
			ν = 0
		}
		if dot(R, V) < 0 {
			ν = 2*math.Pi - ν
		}
	}

	return OrbitalElements{
		SemiMajorAxis:  a,
		Eccentricity:   e,
		Inclination:    inc,
		ArgOfPeriapsis: ω,
		RAAN:           Ω,
		TrueAnomaly:    ν,
	}
}
