package flarepie

import (
	"os"
	"path/filepath"
	"testing"
)

func writeScenario(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.toml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	path := writeScenario(t, `
[vehicle]
fuel = "RP1"
chamber_pressure = 7e6
chamber_temperature = 3500.0
initial_altitude = 0.0
total_mass = 10000.0
propellant_mass = 8000.0
mass_flow_rate = 250.0
time_step = 0.1
reference_area = 1.0

[abort]
enabled = true
time = 15.0
parachute_area = 10.0
parachute_cd = 1.5

[limits]
max_time = 500.0
max_iterations = 100000
`)
	cfg, stages, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Vehicle.Fuel != "RP1" || cfg.Vehicle.ChamberPressure != 7e6 || cfg.Vehicle.TimeStep != 0.1 {
		t.Fatalf("vehicle: %+v", cfg.Vehicle)
	}
	if cfg.Failure.Enabled {
		t.Fatal("failure must default to disabled")
	}
	if !cfg.Abort.Enabled || cfg.Abort.ParachuteArea != 10.0 || cfg.Abort.ParachuteCd != 1.5 {
		t.Fatalf("abort: %+v", cfg.Abort)
	}
	if cfg.MaxTime != 500.0 || cfg.MaxIterations != 100000 {
		t.Fatalf("limits: maxTime=%f maxIterations=%d", cfg.MaxTime, cfg.MaxIterations)
	}
	if stages != nil {
		t.Fatalf("no stages expected, got %+v", stages)
	}

	// The loaded config must be directly runnable.
	if _, err = NewFlight(cfg, nil); err != nil {
		t.Fatal(err)
	}
}

func TestLoadScenarioStages(t *testing.T) {
	path := writeScenario(t, `
[vehicle]
fuel = "RP1"

[[stage]]
name = "booster"
fuel = "RP1"
chamber_pressure = 7e6
chamber_temperature = 3500.0
total_mass = 6000.0
propellant_mass = 4000.0
mass_flow_rate = 200.0
reference_area = 1.0
fairing_mass = 100.0
fairing_altitude = 300.0

[[stage]]
name = "upper"
fuel = "LH2"
chamber_pressure = 6e6
chamber_temperature = 3000.0
total_mass = 2000.0
propellant_mass = 1000.0
mass_flow_rate = 50.0
reference_area = 0.5
separation_time = 40.0
`)
	_, stages, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(stages) != 2 {
		t.Fatalf("expected 2 stages, got %d", len(stages))
	}
	if stages[0].Name != "booster" || stages[0].FairingMass != 100.0 || stages[0].FairingAltitude != 300.0 {
		t.Fatalf("booster: %+v", stages[0])
	}
	if stages[1].Fuel != "LH2" || stages[1].SeparationTime != 40.0 {
		t.Fatalf("upper: %+v", stages[1])
	}
	if _, err = NewMission(stages, nil); err != nil {
		t.Fatal(err)
	}
}

func TestLoadScenarioDefaultTimeStep(t *testing.T) {
	path := writeScenario(t, `
[vehicle]
fuel = "SRF"
total_mass = 100.0
propellant_mass = 50.0
mass_flow_rate = 5.0
`)
	cfg, _, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Vehicle.TimeStep != 0.1 {
		t.Fatalf("default time step is %f", cfg.Vehicle.TimeStep)
	}
}

func TestLoadScenarioMissing(t *testing.T) {
	if _, _, err := LoadScenario(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected an error for a missing scenario file")
	}
}
