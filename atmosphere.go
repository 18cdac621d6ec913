package flarepie

import "math"

const (
	seaLevelPressure = 101325.0 // Pa
	seaLevelDensity  = 1.225    // kg/m³
	scaleHeight      = 8500.0   // m
	lapseRate        = 2.25577e-5
	pressureExponent = 5.25588
)

// Pressure returns the ambient atmospheric pressure in Pa at the given
// altitude in meters. This is a troposphere-only barometric approximation:
// the pressure decreases monotonically, reaches exactly zero near 44330 m
// and stays there. Negative altitudes are clamped to sea level.
func Pressure(altitude float64) float64 {
	altitude = math.Max(0, altitude)
	base := math.Max(0, 1-lapseRate*altitude)
	if base == 0 {
		return 0
	}
	return math.Max(0, seaLevelPressure*math.Pow(base, pressureExponent))
}

// SpeedOfSound returns the local speed of sound in m/s, scaled from the
// sea-level value by the square root of the pressure ratio.
func SpeedOfSound(altitude float64) float64 {
	return 340.0 * math.Sqrt(Pressure(altitude)/seaLevelPressure)
}

// AtmospherePoint is one row of a sampled atmosphere table.
type AtmospherePoint struct {
	Altitude    float64 // m
	Pressure    float64 // Pa
	Temperature float64 // K
}

// AtmosphereProfile samples the atmosphere at evenly spaced altitudes from
// zero to maxAltitude inclusive. The temperature column uses a linear lapse
// clamped 80 K below the sea-level standard temperature.
func AtmosphereProfile(maxAltitude float64, steps int) []AtmospherePoint {
	if steps < 2 {
		steps = 2
	}
	points := make([]AtmospherePoint, steps)
	for i := range points {
		h := maxAltitude * float64(i) / float64(steps-1)
		points[i] = AtmospherePoint{
			Altitude:    h,
			Pressure:    Pressure(h),
			Temperature: 288.15 - math.Min(h/100, 80),
		}
	}
	return points
}
