package flarepie

import (
	"errors"
	"fmt"
	"math"

	kitlog "github.com/go-kit/kit/log"
)

// EventType tags the discrete events of a run.
type EventType uint8

const (
	// StageSeparation is emitted when a stage's separation trigger fires.
	StageSeparation EventType = iota + 1
	// FairingSeparation is emitted when the payload fairing is jettisoned.
	FairingSeparation
	// StageDepletion is emitted when the active stage runs out of propellant.
	StageDepletion
	// MissionComplete is emitted once the cursor runs past the last stage.
	MissionComplete
	// EngineFailure is emitted by a single-stage flight when the failure
	// time is reached.
	EngineFailure
	// AbortTriggered is emitted by a single-stage flight when the abort
	// time is reached.
	AbortTriggered
)

func (e EventType) String() string {
	switch e {
	case StageSeparation:
		return "stage_separation"
	case FairingSeparation:
		return "fairing_separation"
	case StageDepletion:
		return "stage_depletion"
	case MissionComplete:
		return "mission_complete"
	case EngineFailure:
		return "engine_failure"
	case AbortTriggered:
		return "abort"
	}
	panic("cannot stringify unknown event type")
}

// Event records one discrete event and the state snapshot at that time.
type Event struct {
	Time           float64
	Type           EventType
	Stage          int
	Altitude       float64
	Velocity       float64
	MassJettisoned float64 // only set for fairing separations
}

// StageSpec describes one stage of a multi-stage mission. Zero-valued
// separation and fairing triggers are disabled.
type StageSpec struct {
	Name               string  `mapstructure:"name"`
	Fuel               string  `mapstructure:"fuel"`
	ChamberPressure    float64 `mapstructure:"chamber_pressure"`
	ChamberTemp        float64 `mapstructure:"chamber_temperature"`
	TotalMass          float64 `mapstructure:"total_mass"`
	PropellantMass     float64 `mapstructure:"propellant_mass"`
	MassFlowRate       float64 `mapstructure:"mass_flow_rate"`
	ReferenceArea      float64 `mapstructure:"reference_area"`
	SeparationAltitude float64 `mapstructure:"separation_altitude"`
	SeparationTime     float64 `mapstructure:"separation_time"`
	FairingMass        float64 `mapstructure:"fairing_mass"`
	FairingAltitude    float64 `mapstructure:"fairing_altitude"`
}

// MissionSample is one record of a multi-stage trajectory.
type MissionSample struct {
	Time     float64
	Altitude float64
	Velocity float64
	Mass     float64
	Thrust   float64
	Stage    int
}

// MissionResult is the product of a multi-stage run.
type MissionResult struct {
	Samples     []MissionSample
	Events      []Event
	FinalTime   float64
	MaxAltitude float64
	MaxVelocity float64
	Truncated   bool
}

// Mission sequences flight steps across an ordered stage list. Velocity and
// altitude are mission-wide and never reset across a transition; mass is one
// running total consumed by whichever stage is currently active. Stage
// separation does not shed dry mass; only the fairing jettison is a
// discrete mass drop.
type Mission struct {
	stages     []StageSpec
	profs      []PropellantProfile
	propellant []float64
	cursor     int

	dt       float64
	maxTime  float64
	time     float64
	velocity float64
	altitude float64
	mass     float64
	thrust   float64

	truncated bool
	samples   []MissionSample
	events    []Event
	logger    kitlog.Logger
}

// NewMission validates every stage's propellant up front and returns a
// scheduler positioned on the first stage. A nil logger silences the
// progress side-channel.
func NewMission(stages []StageSpec, logger kitlog.Logger) (*Mission, error) {
	if len(stages) == 0 {
		return nil, errors.New("no stages defined")
	}
	profs := make([]PropellantProfile, len(stages))
	propellant := make([]float64, len(stages))
	total := 0.0
	for i, stage := range stages {
		prof, err := PropellantByName(stage.Fuel)
		if err != nil {
			return nil, fmt.Errorf("stage %d (%s): %w", i, stage.Name, err)
		}
		profs[i] = prof
		propellant[i] = stage.PropellantMass
		total += stage.TotalMass
	}
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &Mission{
		stages:     append([]StageSpec(nil), stages...),
		profs:      profs,
		propellant: propellant,
		mass:       total,
		logger:     kitlog.With(logger, "subsys", "mission"),
	}, nil
}

// Run integrates the whole mission with the given time step. A non-positive
// maxTime selects the default ceiling.
func (m *Mission) Run(dt, maxTime float64) MissionResult {
	if maxTime <= 0 {
		maxTime = DefaultMaxTime
	}
	m.dt, m.maxTime = dt, maxTime
	m.logger.Log("level", "info", "status", "starting", "stages", len(m.stages), "mass(kg)", m.mass)
	NewMidpoint(0, dt, m).Solve()
	m.logger.Log("level", "notice", "status", "finished", "t(s)", m.time,
		"alt(m)", m.altitude, "v(m/s)", m.velocity, "mass(kg)", m.mass)

	res := MissionResult{
		Samples:   make([]MissionSample, len(m.samples)),
		Events:    make([]Event, len(m.events)),
		FinalTime: m.time,
		Truncated: m.truncated,
	}
	copy(res.Samples, m.samples)
	copy(res.Events, m.events)
	for _, s := range m.samples {
		res.MaxAltitude = math.Max(res.MaxAltitude, s.Altitude)
		res.MaxVelocity = math.Max(res.MaxVelocity, s.Velocity)
	}
	return res
}

// Stop implements Integrable. It consumes any pending separation, fairing
// and depletion events, which take no simulated time, then sets up the
// thrust and mass budget for the physics step about to be taken.
func (m *Mission) Stop(i uint64) bool {
	if m.time >= m.maxTime {
		m.truncated = true
		m.logger.Log("level", "critical", "status", "truncated", "t(s)", m.time)
		return true
	}
	for {
		if m.cursor >= len(m.stages) {
			m.events = append(m.events, Event{Time: m.time, Type: MissionComplete,
				Stage: m.cursor, Altitude: m.altitude, Velocity: m.velocity})
			m.logger.Log("level", "notice", "event", MissionComplete, "t(s)", m.time, "alt(m)", m.altitude)
			return true
		}
		stage := &m.stages[m.cursor]

		if (stage.SeparationAltitude > 0 && m.altitude >= stage.SeparationAltitude) ||
			(stage.SeparationTime > 0 && m.time >= stage.SeparationTime) {
			m.events = append(m.events, Event{Time: m.time, Type: StageSeparation,
				Stage: m.cursor, Altitude: m.altitude, Velocity: m.velocity})
			m.logger.Log("level", "info", "event", StageSeparation, "stage", m.cursor, "t(s)", m.time)
			m.cursor++
			continue
		}
		if stage.FairingMass > 0 && stage.FairingAltitude > 0 && m.altitude >= stage.FairingAltitude {
			m.events = append(m.events, Event{Time: m.time, Type: FairingSeparation,
				Stage: m.cursor, Altitude: m.altitude, Velocity: m.velocity, MassJettisoned: stage.FairingMass})
			m.logger.Log("level", "info", "event", FairingSeparation, "stage", m.cursor, "mass(kg)", stage.FairingMass)
			m.mass -= stage.FairingMass
			stage.FairingMass = 0
		}

		prof := m.profs[m.cursor]
		ambient := Pressure(m.altitude)
		ve := ExhaustVelocity(prof.K, prof.R, stage.ChamberTemp, stage.ChamberPressure, ambient)
		m.thrust = stage.MassFlowRate * ve

		used := math.Min(stage.MassFlowRate*m.dt, m.propellant[m.cursor])
		m.propellant[m.cursor] -= used
		m.mass -= used
		if m.propellant[m.cursor] <= 0 {
			m.events = append(m.events, Event{Time: m.time, Type: StageDepletion,
				Stage: m.cursor, Altitude: m.altitude, Velocity: m.velocity})
			m.logger.Log("level", "info", "event", StageDepletion, "stage", m.cursor, "t(s)", m.time)
			m.cursor++
			continue
		}
		return false
	}
}

// GetState implements Integrable: the integrated state is [velocity altitude].
func (m *Mission) GetState() []float64 {
	return []float64{m.velocity, m.altitude}
}

// Func implements Integrable, using the active stage's drag reference area.
func (m *Mission) Func(t float64, s []float64) []float64 {
	v, h := s[0], s[1]
	var a float64
	if m.mass > 0 {
		d := DragForce(v, h, m.stages[m.cursor].ReferenceArea)
		a = m.thrust/m.mass - g0 - d/m.mass
	}
	return []float64{a, v}
}

// SetState implements Integrable: record the accepted step, then advance.
func (m *Mission) SetState(i uint64, s []float64) {
	m.samples = append(m.samples, MissionSample{
		Time:     m.time,
		Altitude: m.altitude,
		Velocity: m.velocity,
		Mass:     m.mass,
		Thrust:   m.thrust,
		Stage:    m.cursor,
	})
	m.velocity, m.altitude = s[0], s[1]
	m.time += m.dt
}
