package flarepie

import (
	"errors"
	"fmt"
	"math"
)

// g0 is the standard gravity used for both the weight term of the equations
// of motion and the Isp normalization.
const g0 = 9.81

// ErrUnknownFuelType is returned when a propellant identifier is not part of
// the supported propellant table.
var ErrUnknownFuelType = errors.New("unknown fuel type")

// PropellantProfile holds the combustion gas properties of one propellant
// family: the ratio of specific heats K and the specific gas constant R in
// J/(kg·K).
type PropellantProfile struct {
	K float64
	R float64
}

// propellants is a closed table. There is no dynamic registration: an
// identifier is either here or the run is rejected before any stepping.
var propellants = map[string]PropellantProfile{
	"RP1":  {1.2, 287.0},
	"LH2":  {1.4, 4124.0},
	"SRF":  {1.2, 191.0},
	"N2O4": {1.26, 320.0},
}

// PropellantByName returns the profile for a propellant identifier, or
// ErrUnknownFuelType for anything not in the table.
func PropellantByName(name string) (PropellantProfile, error) {
	prof, found := propellants[name]
	if !found {
		return PropellantProfile{}, fmt.Errorf("%w: %q", ErrUnknownFuelType, name)
	}
	return prof, nil
}

// ExhaustVelocity returns the effective exhaust velocity in m/s from the
// chamber state and the ambient pressure. The radicand is clamped at zero:
// at very low chamber pressures the pressure ratio exceeds one and the
// nozzle simply produces no exhaust velocity instead of a NaN.
func ExhaustVelocity(k, r, chamberTemp, chamberPressure, ambientPressure float64) float64 {
	var pressureRatio float64
	if chamberPressure > 0 {
		pressureRatio = math.Pow(ambientPressure/chamberPressure, (k-1)/k)
	}
	radicand := (2 * k) / (k - 1) * r * chamberTemp * (1 - pressureRatio)
	return math.Sqrt(math.Max(0, radicand))
}

// SpecificImpulse returns the Isp in seconds, and zero when there is no
// propellant flow.
func SpecificImpulse(thrust, massFlowRate float64) float64 {
	if massFlowRate > 0 {
		return thrust / (massFlowRate * g0)
	}
	return 0
}

// NozzlePerformance breaks a nozzle thrust down into its components.
type NozzlePerformance struct {
	Thrust         float64 // N
	Isp            float64 // s
	PressureThrust float64 // N
	MomentumThrust float64 // N
	ExpansionRatio float64
	PressureRatio  float64
	Efficiency     float64
}

// AnalyzeNozzle computes the nozzle-only performance figures from the mass
// flow rate, exhaust velocity, exit pressure, ambient pressure and exit
// area. The expansion ratio normalizes the exit area against a fixed
// 0.01 m² reference throat. The expansion-efficiency heuristic is 0.95 near
// ideal expansion and decays
// with the log of the pressure ratio, clamped to stay non-negative.
func AnalyzeNozzle(massFlowRate, exhaustVelocity, exitPressure, ambientPressure, exitArea float64) NozzlePerformance {
	momentum := massFlowRate * exhaustVelocity
	pressure := (exitPressure - ambientPressure) * exitArea
	thrust := momentum + pressure

	var pressureRatio float64
	if ambientPressure > 0 {
		pressureRatio = exitPressure / ambientPressure
	}

	efficiency := 0.95
	if math.Abs(exitPressure-ambientPressure) >= 0.1*ambientPressure {
		efficiency = 0.85 - 0.1*math.Min(math.Abs(math.Log10(pressureRatio+0.1)), 1.0)
	}
	if efficiency < 0 {
		efficiency = 0
	}

	return NozzlePerformance{
		Thrust:         thrust,
		Isp:            SpecificImpulse(thrust, massFlowRate),
		PressureThrust: pressure,
		MomentumThrust: momentum,
		ExpansionRatio: exitArea / 0.01,
		PressureRatio:  pressureRatio,
		Efficiency:     efficiency,
	}
}
