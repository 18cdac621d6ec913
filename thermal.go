package flarepie

import "math"

const stefanBoltzmann = 5.67e-8

// Material holds the lumped properties used for the skin temperature-rise
// estimate.
type Material struct {
	Conductivity float64 // W/(m·K)
	Density      float64 // kg/m³
	SpecificHeat float64 // J/(kg·K)
}

// materials is a closed table; unknown names fall back to aluminum.
var materials = map[string]Material{
	"aluminum":     {237, 2700, 900},
	"steel":        {50, 7850, 460},
	"carbon_fiber": {8, 1600, 1000},
}

// HeatTransfer is the aerothermal flux estimate at one flight condition.
type HeatTransfer struct {
	Convective      float64 // W/m²
	Radiative       float64 // W/m²
	Total           float64 // W/m²
	TemperatureRise float64 // K
	Material        string
}

// AnalyzeHeatTransfer estimates the aerothermal flux on the vehicle skin at
// a given velocity and altitude, and the lumped temperature rise across a
// skin of the given material and thickness. Non-positive velocities see no
// heating at all.
func AnalyzeHeatTransfer(velocity, altitude float64, material string, thickness float64) HeatTransfer {
	props, found := materials[material]
	if !found {
		props = materials["aluminum"]
	}
	if velocity <= 0 {
		return HeatTransfer{Material: material}
	}

	hConv := 0.026 * math.Pow(velocity, 0.8) * math.Pow(Density(altitude), 0.2)
	qConv := hConv * velocity * velocity / 2
	qRad := stefanBoltzmann * 0.8 * math.Pow(300, 4)
	total := qConv + qRad

	return HeatTransfer{
		Convective:      qConv,
		Radiative:       qRad,
		Total:           total,
		TemperatureRise: total * thickness / (props.Conductivity * props.Density * props.SpecificHeat),
		Material:        material,
	}
}
