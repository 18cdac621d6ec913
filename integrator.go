package flarepie

// Integrable defines something which can be integrated, i.e. has a state
// vector. Implementations manage their own bookkeeping per iteration.
type Integrable interface {
	GetState() []float64                   // Latest state of this integrable.
	SetState(i uint64, s []float64)        // Set the state s of iteration i.
	Stop(i uint64) bool                    // Whether to stop the integration at iteration i.
	Func(t float64, s []float64) []float64 // Derivative of the state s at time t.
}

// Midpoint is a fixed-step explicit midpoint (RK2) integrator. The
// derivative is re-evaluated at the half-step estimate, which is what lets
// a velocity-dependent force model react to the mid-step state.
type Midpoint struct {
	X0         float64 // Initial value of the independent variable.
	StepSize   float64
	Integrator Integrable
}

// NewMidpoint returns a new explicit midpoint integrator instance.
func NewMidpoint(x0, stepSize float64, inte Integrable) *Midpoint {
	if stepSize <= 0 {
		panic("config StepSize must be positive")
	}
	if inte == nil {
		panic("config Integrator may not be nil")
	}
	return &Midpoint{X0: x0, StepSize: stepSize, Integrator: inte}
}

// Solve runs the integration until the Integrable requests a stop.
// Returns the number of iterations performed and the last X_i.
func (m *Midpoint) Solve() (uint64, float64) {
	half := m.StepSize / 2

	iterNum := uint64(0)
	xi := m.X0
	for !m.Integrator.Stop(iterNum) {
		state := m.Integrator.GetState()
		mid := make([]float64, len(state))
		newState := make([]float64, len(state))

		for i, yDot := range m.Integrator.Func(xi, state) {
			mid[i] = state[i] + half*yDot
		}
		for i, yDot := range m.Integrator.Func(xi+half, mid) {
			newState[i] = state[i] + m.StepSize*yDot
		}
		m.Integrator.SetState(iterNum, newState)

		xi += m.StepSize
		iterNum++
	}

	return iterNum, xi
}
