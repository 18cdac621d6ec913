package flarepie

import (
	"errors"
	"math"
	"testing"

	"github.com/gonum/floats"
)

func nominalConfig() FlightConfig {
	return FlightConfig{
		Vehicle: VehicleConfig{
			Fuel:            "RP1",
			ChamberPressure: 7e6,
			ChamberTemp:     3500,
			InitialAltitude: 0,
			TotalMass:       10000,
			PropellantMass:  8000,
			MassFlowRate:    250,
			TimeStep:        0.1,
			ReferenceArea:   1.0,
		},
	}
}

func TestFlightNominalRP1(t *testing.T) {
	flight, err := NewFlight(nominalConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	res := flight.Run()

	// 8000 kg at 250 kg/s burns for exactly 32 s, i.e. 320 steps of 0.1 s.
	if len(res.Samples) != 320 {
		t.Fatalf("expected 320 samples, got %d", len(res.Samples))
	}
	if !floats.EqualWithinAbs(res.FinalTime, 32.0, 1e-6) {
		t.Fatalf("final time is %f, expected 32.0", res.FinalTime)
	}
	if res.Phase != Depleted {
		t.Fatalf("final phase is %s, expected depleted", res.Phase)
	}
	if !res.Complete || res.Truncated {
		t.Fatalf("complete=%v truncated=%v", res.Complete, res.Truncated)
	}
	if res.InitialThrust <= 0 {
		t.Fatalf("initial thrust is %f", res.InitialThrust)
	}
	if res.Samples[0].Velocity != 0 || res.Samples[0].Altitude != 0 {
		t.Fatalf("run must start at rest: v=%f h=%f", res.Samples[0].Velocity, res.Samples[0].Altitude)
	}

	for i, s := range res.Samples {
		if s.Propellant < 0 || s.Propellant > 8000 {
			t.Fatalf("sample %d: propellant %f out of bounds", i, s.Propellant)
		}
		if i == 0 {
			continue
		}
		prev := res.Samples[i-1]
		if dt := s.Time - prev.Time; !floats.EqualWithinAbs(dt, 0.1, 1e-9) || dt <= 0 {
			t.Fatalf("sample %d: time step %f", i, dt)
		}
		if s.Propellant > prev.Propellant {
			t.Fatalf("sample %d: propellant grew from %f to %f", i, prev.Propellant, s.Propellant)
		}
	}

	// The gains-only delta-V accumulator at least covers the net climb to
	// the fastest sample.
	var maxV float64
	for _, s := range res.Samples {
		maxV = math.Max(maxV, s.Velocity)
	}
	if res.DeltaV < maxV || res.DeltaV <= 0 {
		t.Fatalf("delta-V %f inconsistent with max velocity %f", res.DeltaV, maxV)
	}
}

func TestFlightUnknownFuel(t *testing.T) {
	cfg := nominalConfig()
	cfg.Vehicle.Fuel = "XYZ"
	flight, err := NewFlight(cfg, nil)
	if !errors.Is(err, ErrUnknownFuelType) {
		t.Fatalf("expected ErrUnknownFuelType, got %v", err)
	}
	if flight != nil {
		t.Fatal("no integrator must be produced for an unknown fuel")
	}
}

func TestFlightNoPropellant(t *testing.T) {
	cfg := nominalConfig()
	cfg.Vehicle.PropellantMass = 0
	flight, err := NewFlight(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	res := flight.Run()
	if len(res.Samples) != 0 || res.Phase != Depleted || res.InitialThrust != 0 {
		t.Fatalf("dry vehicle produced samples=%d phase=%s", len(res.Samples), res.Phase)
	}
}

func TestFlightEngineFailure(t *testing.T) {
	cfg := nominalConfig()
	cfg.Failure = FailurePlan{Enabled: true, Time: 5.0}
	cfg.MaxTime = 50
	flight, err := NewFlight(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	res := flight.Run()

	if res.Phase != Failed {
		t.Fatalf("final phase is %s, expected failed", res.Phase)
	}
	if !res.Truncated {
		t.Fatal("a failed engine never depletes, the run must hit the ceiling")
	}
	if len(res.Events) != 1 || res.Events[0].Type != EngineFailure {
		t.Fatalf("events: %+v", res.Events)
	}
	if !floats.EqualWithinAbs(res.Events[0].Time, 5.0, 0.11) {
		t.Fatalf("failure event at t=%f", res.Events[0].Time)
	}
	var failed bool
	var frozen float64
	for _, s := range res.Samples {
		if s.Time >= 5.05 {
			if !failed {
				failed = true
				frozen = s.Propellant
			}
			if s.Thrust != 0 || s.MassFlow != 0 {
				t.Fatalf("t=%f: thrust=%f mfr=%f after failure", s.Time, s.Thrust, s.MassFlow)
			}
			if s.Propellant != frozen {
				t.Fatalf("t=%f: propellant moved to %f after failure", s.Time, s.Propellant)
			}
		}
	}
	if !failed {
		t.Fatal("no post-failure samples recorded")
	}
}

func TestFlightAbortLands(t *testing.T) {
	cfg := nominalConfig()
	cfg.Abort = AbortPlan{Enabled: true, Time: 10.0, ParachuteArea: 10, ParachuteCd: 1.5}
	flight, err := NewFlight(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	res := flight.Run()

	if res.Phase != Landed {
		t.Fatalf("final phase is %s, expected landed", res.Phase)
	}
	if res.Truncated {
		t.Fatal("an abort descent must land well before the ceiling")
	}
	if res.FinalTime <= 10 {
		t.Fatalf("landed at t=%f, before the abort even triggered", res.FinalTime)
	}
	var seenAbort bool
	for _, ev := range res.Events {
		if ev.Type == AbortTriggered {
			seenAbort = true
			if !floats.EqualWithinAbs(ev.Time, 10.0, 0.11) {
				t.Fatalf("abort event at t=%f", ev.Time)
			}
		}
	}
	if !seenAbort {
		t.Fatal("no abort event recorded")
	}
	last := res.Samples[len(res.Samples)-1]
	if last.Thrust != 0 {
		t.Fatalf("terminal thrust is %f", last.Thrust)
	}
	if flight.State().Altitude > 0 {
		t.Fatalf("final altitude is %f, expected at or below ground", flight.State().Altitude)
	}
}

func TestFlightAbortTakesPrecedenceOverFailure(t *testing.T) {
	cfg := nominalConfig()
	cfg.Failure = FailurePlan{Enabled: true, Time: 5.0}
	cfg.Abort = AbortPlan{Enabled: true, Time: 8.0, ParachuteArea: 10, ParachuteCd: 1.5}
	flight, err := NewFlight(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	res := flight.Run()
	if res.Phase != Landed {
		t.Fatalf("final phase is %s, expected landed", res.Phase)
	}
	if len(res.Events) != 2 || res.Events[0].Type != EngineFailure || res.Events[1].Type != AbortTriggered {
		t.Fatalf("events: %+v", res.Events)
	}
	if res.Events[1].Time < res.Events[0].Time {
		t.Fatal("abort recorded before failure")
	}
}

func TestFlightStream(t *testing.T) {
	cfg := nominalConfig()
	cfg.Vehicle.PropellantMass = 500 // 2 s burn
	flight, err := NewFlight(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	var partials, finals int
	var lastCount int
	var final Result
	for res := range flight.Stream(0.25) {
		if len(res.Samples) < lastCount {
			t.Fatalf("sample count regressed from %d to %d", lastCount, len(res.Samples))
		}
		lastCount = len(res.Samples)
		if res.Complete {
			finals++
			final = res
		} else {
			partials++
		}
	}
	if finals != 1 {
		t.Fatalf("expected exactly one final result, got %d", finals)
	}
	if partials == 0 {
		t.Fatal("expected at least one partial result")
	}
	if len(final.Samples) != 20 || final.Phase != Depleted {
		t.Fatalf("final: samples=%d phase=%s", len(final.Samples), final.Phase)
	}
	if !floats.EqualWithinAbs(final.FinalTime, 2.0, 1e-6) {
		t.Fatalf("final time is %f", final.FinalTime)
	}
}

func TestFlightInterrupt(t *testing.T) {
	flight, err := NewFlight(nominalConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	flight.Interrupt()
	res := flight.Run()
	if !res.Truncated || len(res.Samples) != 0 {
		t.Fatalf("interrupted run: truncated=%v samples=%d", res.Truncated, len(res.Samples))
	}
}
