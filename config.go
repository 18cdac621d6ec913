package flarepie

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// LoadScenario reads a TOML scenario file and returns the single-stage
// flight configuration and, when [[stage]] tables are present, the
// multi-stage specs. Each call uses its own viper instance so concurrent
// loads do not share state.
//
// Scenario layout:
//
//	[vehicle]
//	fuel = "RP1"
//	chamber_pressure = 7e6
//	chamber_temperature = 3500.0
//	initial_altitude = 0.0
//	total_mass = 10000.0
//	propellant_mass = 8000.0
//	mass_flow_rate = 250.0
//	time_step = 0.1
//	reference_area = 1.0
//
//	[failure]        # optional
//	enabled = true
//	time = 10.0
//
//	[abort]          # optional
//	enabled = true
//	time = 15.0
//	parachute_area = 10.0
//	parachute_cd = 1.5
//
//	[limits]         # optional, defaults applied by NewFlight
//	max_time = 10000.0
//	max_iterations = 200000
//
//	[[stage]]        # optional, multi-stage missions
//	name = "booster"
//	fuel = "RP1"
//	...
func LoadScenario(path string) (FlightConfig, []StageSpec, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return FlightConfig{}, nil, errors.Wrapf(err, "reading scenario %s", path)
	}

	cfg := FlightConfig{
		Vehicle: VehicleConfig{
			Fuel:            v.GetString("vehicle.fuel"),
			ChamberPressure: v.GetFloat64("vehicle.chamber_pressure"),
			ChamberTemp:     v.GetFloat64("vehicle.chamber_temperature"),
			InitialAltitude: v.GetFloat64("vehicle.initial_altitude"),
			TotalMass:       v.GetFloat64("vehicle.total_mass"),
			PropellantMass:  v.GetFloat64("vehicle.propellant_mass"),
			MassFlowRate:    v.GetFloat64("vehicle.mass_flow_rate"),
			TimeStep:        v.GetFloat64("vehicle.time_step"),
			ReferenceArea:   v.GetFloat64("vehicle.reference_area"),
		},
		Failure: FailurePlan{
			Enabled: v.GetBool("failure.enabled"),
			Time:    v.GetFloat64("failure.time"),
		},
		Abort: AbortPlan{
			Enabled:       v.GetBool("abort.enabled"),
			Time:          v.GetFloat64("abort.time"),
			ParachuteArea: v.GetFloat64("abort.parachute_area"),
			ParachuteCd:   v.GetFloat64("abort.parachute_cd"),
		},
		MaxTime:       v.GetFloat64("limits.max_time"),
		MaxIterations: v.GetInt("limits.max_iterations"),
	}
	if cfg.Vehicle.TimeStep <= 0 {
		cfg.Vehicle.TimeStep = 0.1
	}

	var stages []StageSpec
	if v.IsSet("stage") {
		if err := v.UnmarshalKey("stage", &stages); err != nil {
			return FlightConfig{}, nil, errors.Wrap(err, "decoding stages")
		}
	}
	return cfg, stages, nil
}
