package flarepie

import (
	"math"

	kitlog "github.com/go-kit/kit/log"
)

/* Handles the powered-ascent propagation. */

const (
	// DefaultMaxTime is the simulated-time ceiling of a run in seconds.
	DefaultMaxTime = 10000.0
	// DefaultMaxIterations is the hard iteration ceiling of a run.
	DefaultMaxIterations = 200000
	// DefaultStreamInterval is the simulated time between partial results
	// in streaming mode, in seconds.
	DefaultStreamInterval = 0.25
)

// Phase is the state of the flight state machine. Transitions are monotonic
// and sticky: once the engine has failed or an abort has triggered, the
// flight never returns to a nominal burn.
type Phase uint8

const (
	// Burning is the nominal powered phase.
	Burning Phase = iota + 1
	// Failed means the engine cut out but integration continues ballistic.
	Failed
	// Aborting means the engine is off and the parachute is deployed.
	Aborting
	// Landed terminates an abort once the vehicle is down.
	Landed
	// Depleted terminates a nominal or failed flight out of propellant.
	Depleted
)

func (p Phase) String() string {
	switch p {
	case Burning:
		return "burning"
	case Failed:
		return "failed"
	case Aborting:
		return "aborting"
	case Landed:
		return "landed"
	case Depleted:
		return "depleted"
	}
	panic("cannot stringify unknown flight phase")
}

// VehicleConfig describes a single-stage vehicle and its chamber state.
type VehicleConfig struct {
	Fuel            string  // propellant identifier, e.g. "RP1"
	ChamberPressure float64 // Pa
	ChamberTemp     float64 // K
	InitialAltitude float64 // m
	TotalMass       float64 // kg
	PropellantMass  float64 // kg, at most TotalMass
	MassFlowRate    float64 // kg/s
	TimeStep        float64 // s
	ReferenceArea   float64 // m²
}

// FailurePlan forces thrust and propellant flow to zero from Time on.
type FailurePlan struct {
	Enabled bool
	Time    float64 // s
}

// AbortPlan cuts the engine at Time and deploys a parachute; the run then
// continues until the vehicle is down and nearly still. Once triggered, the
// abort force model takes precedence over a failure.
type AbortPlan struct {
	Enabled       bool
	Time          float64 // s
	ParachuteArea float64 // m²
	ParachuteCd   float64
}

// FlightConfig is the full per-run input of a single-stage flight.
type FlightConfig struct {
	Vehicle VehicleConfig
	Failure FailurePlan
	Abort   AbortPlan
	// MaxTime and MaxIterations guarantee termination under pathological
	// inputs. Zero values select the defaults.
	MaxTime       float64
	MaxIterations int
}

// FlightState is the mutable state owned by exactly one Flight.
type FlightState struct {
	Time       float64 // s
	Mass       float64 // kg
	Velocity   float64 // m/s
	Altitude   float64 // m
	DeltaV     float64 // m/s, gains-only running sum
	Propellant float64 // kg
}

// Sample is one immutable record of the trajectory, appended once per
// accepted step. Velocity and altitude are the pre-update values; mass and
// propellant account for the flow consumed during the step.
type Sample struct {
	Time         float64
	Thrust       float64
	Velocity     float64
	Altitude     float64
	Propellant   float64
	MassFlow     float64
	Isp          float64
	Drag         float64
	Acceleration float64
	Energy       float64 // kinetic + potential
}

// Result is the externally visible product of a run. Streaming runs deliver
// intermediate Results with Complete unset; Truncated marks a run that hit
// the time or iteration ceiling, whose partial trajectory remains valid.
type Result struct {
	Samples       []Sample
	Events        []Event
	FinalTime     float64
	InitialThrust float64
	DeltaV        float64
	Phase         Phase
	Complete      bool
	Truncated     bool
}

// Flight integrates one powered ascent, owning its FlightState and the
// failure/abort state machine. A Flight is good for exactly one run;
// independent runs may execute concurrently since they share nothing.
type Flight struct {
	cfg       FlightConfig
	prof      PropellantProfile
	state     FlightState
	phase     Phase
	mfr       float64 // current flow rate, zeroed for good by failure or abort
	thrust    float64
	isp       float64
	aborted   bool
	truncated bool

	samples []Sample
	events  []Event
	logger  kitlog.Logger

	stopChan       chan bool
	streamChan     chan<- Result
	streamInterval float64
	lastEmit       float64
}

// NewFlight validates the propellant identifier and returns a ready-to-run
// integrator. A nil logger silences the progress side-channel.
func NewFlight(cfg FlightConfig, logger kitlog.Logger) (*Flight, error) {
	prof, err := PropellantByName(cfg.Vehicle.Fuel)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	if cfg.MaxTime <= 0 {
		cfg.MaxTime = DefaultMaxTime
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	return &Flight{
		cfg:  cfg,
		prof: prof,
		state: FlightState{
			Mass:       cfg.Vehicle.TotalMass,
			Altitude:   cfg.Vehicle.InitialAltitude,
			Propellant: cfg.Vehicle.PropellantMass,
		},
		phase:    Burning,
		mfr:      cfg.Vehicle.MassFlowRate,
		logger:   kitlog.With(logger, "subsys", "flight", "fuel", cfg.Vehicle.Fuel),
		stopChan: make(chan bool, 1),
	}, nil
}

// Run integrates until a terminal phase or a ceiling is reached.
func (f *Flight) Run() Result {
	f.logger.Log("level", "info", "status", "starting",
		"mass(kg)", f.state.Mass, "propellant(kg)", f.state.Propellant, "alt(m)", f.state.Altitude)
	NewMidpoint(0, f.cfg.Vehicle.TimeStep, f).Solve()
	f.logger.Log("level", "notice", "status", "finished", "phase", f.phase,
		"t(s)", f.state.Time, "Δv(m/s)", f.state.DeltaV, "alt(m)", f.state.Altitude, "v(m/s)", f.state.Velocity)
	res := f.result(true)
	if f.streamChan != nil {
		f.streamChan <- res
	}
	return res
}

// Stream runs the flight in a new goroutine and delivers a partial Result
// each time interval simulated seconds have accumulated, then the final
// Result with Complete set, and closes the channel. A slow consumer loses
// intermediate batches rather than stalling the integration. A non-positive
// interval selects DefaultStreamInterval.
func (f *Flight) Stream(interval float64) <-chan Result {
	if interval <= 0 {
		interval = DefaultStreamInterval
	}
	ch := make(chan Result, 16)
	f.streamChan = ch
	f.streamInterval = interval
	go func() {
		defer close(ch)
		f.Run()
	}()
	return ch
}

// Interrupt stops an in-progress run before it completes. The result is
// marked truncated.
func (f *Flight) Interrupt() {
	select {
	case f.stopChan <- true:
	default:
	}
}

// State returns a copy of the current flight state.
func (f *Flight) State() FlightState {
	return f.state
}

// Phase returns the current phase of the state machine.
func (f *Flight) Phase() Phase {
	return f.phase
}

func (f *Flight) result(complete bool) Result {
	samples := make([]Sample, len(f.samples))
	copy(samples, f.samples)
	events := make([]Event, len(f.events))
	copy(events, f.events)
	var initialThrust float64
	if len(samples) > 0 {
		initialThrust = samples[0].Thrust
	}
	return Result{
		Samples:       samples,
		Events:        events,
		FinalTime:     f.state.Time,
		InitialThrust: initialThrust,
		DeltaV:        f.state.DeltaV,
		Phase:         f.phase,
		Complete:      complete,
		Truncated:     f.truncated,
	}
}

// Stop implements Integrable. It decides termination and, when the run goes
// on, prepares the thrust, flow and mass for the step about to be taken.
func (f *Flight) Stop(i uint64) bool {
	select {
	case <-f.stopChan:
		f.truncated = true
		f.logger.Log("level", "warning", "status", "interrupted", "t(s)", f.state.Time)
		return true
	default:
	}
	if int(i) >= f.cfg.MaxIterations || f.state.Time >= f.cfg.MaxTime {
		f.truncated = true
		f.logger.Log("level", "critical", "status", "truncated", "t(s)", f.state.Time, "iterations", i)
		return true
	}
	if f.aborted {
		if f.state.Altitude <= 0 {
			f.phase = Landed
			return true
		}
		if f.state.Propellant <= 0 && !(f.state.Altitude > 0.5 && math.Abs(f.state.Velocity) > 0.5) {
			f.phase = Landed
			return true
		}
	} else if f.state.Propellant <= 0 {
		f.phase = Depleted
		return true
	}
	f.beginStep()
	return false
}

// beginStep computes the thrust from the current (possibly cut) chamber
// state, applies the failure and abort overrides, and consumes propellant.
// Thrust and mass then hold over the whole step.
func (f *Flight) beginStep() {
	v := f.cfg.Vehicle
	ambient := Pressure(f.state.Altitude)
	ve := ExhaustVelocity(f.prof.K, f.prof.R, v.ChamberTemp, v.ChamberPressure, ambient)
	f.thrust = f.mfr * ve

	if f.cfg.Failure.Enabled && f.state.Time >= f.cfg.Failure.Time {
		if f.phase == Burning {
			f.phase = Failed
			f.events = append(f.events, Event{Time: f.state.Time, Type: EngineFailure,
				Altitude: f.state.Altitude, Velocity: f.state.Velocity})
			f.logger.Log("level", "warning", "event", EngineFailure, "t(s)", f.state.Time, "alt(m)", f.state.Altitude)
		}
		f.thrust = 0
		f.mfr = 0
	}
	if f.cfg.Abort.Enabled && f.state.Time >= f.cfg.Abort.Time {
		if !f.aborted {
			f.aborted = true
			f.phase = Aborting
			f.events = append(f.events, Event{Time: f.state.Time, Type: AbortTriggered,
				Altitude: f.state.Altitude, Velocity: f.state.Velocity})
			f.logger.Log("level", "warning", "event", AbortTriggered, "t(s)", f.state.Time, "alt(m)", f.state.Altitude)
		}
		f.thrust = 0
		f.mfr = 0
	}

	massUsed := math.Min(f.mfr*v.TimeStep, f.state.Propellant)
	f.state.Propellant -= massUsed
	f.state.Mass -= massUsed
	f.isp = SpecificImpulse(f.thrust, f.mfr)
}

// drag selects the active force model: the vehicle's aerodynamic drag, or
// the parachute once an abort has triggered.
func (f *Flight) drag(velocity, altitude float64) float64 {
	if f.aborted {
		return ParachuteDrag(velocity, altitude, f.cfg.Abort.ParachuteArea, f.cfg.Abort.ParachuteCd)
	}
	return DragForce(velocity, altitude, f.cfg.Vehicle.ReferenceArea)
}

// GetState implements Integrable: the integrated state is [velocity altitude].
func (f *Flight) GetState() []float64 {
	return []float64{f.state.Velocity, f.state.Altitude}
}

// Func implements Integrable. Thrust and mass are held over the step; only
// drag reacts to the estimated state, which is what the midpoint correction
// needs. A massless vehicle degrades to zero acceleration, never NaN.
func (f *Flight) Func(t float64, s []float64) []float64 {
	v, h := s[0], s[1]
	var a float64
	if f.state.Mass > 0 {
		a = f.thrust/f.state.Mass - g0 - f.drag(v, h)/f.state.Mass
	}
	return []float64{a, v}
}

// SetState implements Integrable: record the accepted step, then advance.
func (f *Flight) SetState(i uint64, s []float64) {
	st := &f.state
	d := f.drag(st.Velocity, st.Altitude)
	var a float64
	if st.Mass > 0 {
		a = f.thrust/st.Mass - g0 - d/st.Mass
	}
	vNew, hNew := s[0], s[1]
	st.DeltaV += math.Max(0, vNew-st.Velocity)
	f.samples = append(f.samples, Sample{
		Time:         st.Time,
		Thrust:       f.thrust,
		Velocity:     st.Velocity,
		Altitude:     st.Altitude,
		Propellant:   st.Propellant,
		MassFlow:     f.mfr,
		Isp:          f.isp,
		Drag:         d,
		Acceleration: a,
		Energy:       0.5*st.Mass*st.Velocity*st.Velocity + st.Mass*g0*st.Altitude,
	})
	if int(st.Time)%5 == 0 || st.Time < 1 {
		f.logger.Log("level", "info", "t(s)", st.Time, "thrust(N)", f.thrust,
			"v(m/s)", st.Velocity, "alt(m)", st.Altitude, "Δv(m/s)", st.DeltaV, "drag(N)", d)
	}

	st.Velocity = vNew
	st.Altitude = hNew
	st.Time += f.cfg.Vehicle.TimeStep

	if f.streamChan != nil && st.Time-f.lastEmit >= f.streamInterval {
		f.lastEmit = st.Time
		select {
		case f.streamChan <- f.result(false):
		default:
		}
	}
}
