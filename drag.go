package flarepie

import "math"

// Density returns the air density in kg/m³ from an exponential scale-height
// falloff. Altitudes above 1e6 m count as vacuum, as does any altitude deep
// enough below the reference for the exponential to overflow.
func Density(altitude float64) float64 {
	if altitude > 1e6 {
		return 0
	}
	x := -altitude / scaleHeight
	if x > 700 {
		// math.Exp would overflow float64.
		return 0
	}
	return seaLevelDensity * math.Exp(x)
}

// Mach returns the Mach number at the given velocity and altitude. The local
// speed of sound is floored at 0.1 m/s to keep the ratio finite in vacuum.
func Mach(velocity, altitude float64) float64 {
	return math.Abs(velocity) / math.Max(SpeedOfSound(altitude), 0.1)
}

// DragCoefficient returns the drag coefficient for a given Mach number via a
// three-segment drag-rise curve: constant subsonic, a linear transonic ramp
// between M0.8 and M1.1, and a supersonic decay asymptoting to 0.56. The
// breakpoints and coefficients are part of the model contract.
func DragCoefficient(mach float64) float64 {
	switch {
	case mach < 0.8:
		return 0.3
	case mach < 1.1:
		return 0.3 + (mach-0.8)*1.0
	default:
		return 0.6 - 0.1*math.Min(mach-1.1, 0.4)
	}
}

// DragForce returns the aerodynamic drag in Newtons, carrying the sign of
// the velocity so that subtracting drag/mass from the acceleration always
// retards the motion.
func DragForce(velocity, altitude, referenceArea float64) float64 {
	drag := 0.5 * Density(altitude) * velocity * velocity * referenceArea * DragCoefficient(Mach(velocity, altitude))
	if velocity > 0 {
		return drag
	}
	return -drag
}

// ParachuteDrag returns the canopy drag used during an abort descent, with
// the same sign convention as DragForce so the canopy opposes the velocity
// both on the way up and on the way down.
func ParachuteDrag(velocity, altitude, canopyArea, canopyCd float64) float64 {
	drag := 0.5 * Density(altitude) * velocity * velocity * canopyArea * canopyCd
	if velocity > 0 {
		return drag
	}
	return -drag
}
