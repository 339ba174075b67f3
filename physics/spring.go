package physics

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// Default integration constants.
const (
	DefaultTimeStep = 0.2
	DefaultGravity  = 9.8
)

var (
	// ErrInvalidParameter reports spring or simulation parameters the
	// integrator cannot use (non-positive mass, negative stiffness, ...).
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrUnstable reports parameters for which the fixed step diverges.
	ErrUnstable = errors.New("unstable spring parameters")
)

// SpringParams configures the oscillator.
type SpringParams struct {
	Stiffness float64 `yaml:"stiffness"` // restoring force per unit displacement
	Mass      float64 `yaml:"mass"`      // must be > 0
	Damping   float64 `yaml:"damping"`   // resistive force per unit velocity
}

// DefaultSpringParams returns the parameters used by the plug demos.
func DefaultSpringParams() SpringParams {
	return SpringParams{Stiffness: 10, Mass: 8, Damping: 4}
}

// Validate reports whether the integrator can use p.
func (p SpringParams) Validate() error {
	switch {
	case !finite(p.Stiffness) || !finite(p.Mass) || !finite(p.Damping):
		return fmt.Errorf("spring params %+v: non-finite value: %w", p, ErrInvalidParameter)
	case p.Mass <= 0:
		return fmt.Errorf("mass %v must be positive: %w", p.Mass, ErrInvalidParameter)
	case p.Stiffness < 0:
		return fmt.Errorf("stiffness %v must not be negative: %w", p.Stiffness, ErrInvalidParameter)
	case p.Damping < 0:
		return fmt.Errorf("damping %v must not be negative: %w", p.Damping, ErrInvalidParameter)
	}
	return nil
}

// SimulationConfig holds the constants of the integration scheme.
type SimulationConfig struct {
	TimeStep float64 `yaml:"time_step"`
	Gravity  float64 `yaml:"gravity"` // applied on +Y only
}

// DefaultSimulationConfig returns a 0.2 step with 9.8 gravity.
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{TimeStep: DefaultTimeStep, Gravity: DefaultGravity}
}

// Validate reports whether the integrator can use c.
func (c SimulationConfig) Validate() error {
	if !finite(c.TimeStep) || c.TimeStep <= 0 {
		return fmt.Errorf("time step %v must be positive: %w", c.TimeStep, ErrInvalidParameter)
	}
	if !finite(c.Gravity) {
		return fmt.Errorf("gravity %v must be finite: %w", c.Gravity, ErrInvalidParameter)
	}
	return nil
}

// State is the oscillator's position and velocity.
type State struct {
	Position Point
	Velocity Velocity
}

// StepSpring advances prev by one time step toward anchor using
// semi-implicit Euler: velocity is updated first and the new velocity
// moves the position. Inputs are not validated; see Step.
func StepSpring(prev State, anchor Point, params SpringParams, cfg SimulationConfig) State {
	// F = -k(x - anchor) - c*v + m*g (gravity on y)
	force := r2.Add(
		r2.Scale(-params.Stiffness, r2.Sub(prev.Position, anchor)),
		r2.Scale(-params.Damping, prev.Velocity),
	)
	force.Y += params.Mass * cfg.Gravity

	accel := r2.Scale(1/params.Mass, force)
	vel := r2.Add(prev.Velocity, r2.Scale(cfg.TimeStep, accel))
	pos := r2.Add(prev.Position, r2.Scale(cfg.TimeStep, vel))

	return State{Position: pos, Velocity: vel}
}

// Step is StepSpring with parameter validation.
func Step(prev State, anchor Point, params SpringParams, cfg SimulationConfig) (State, error) {
	if err := params.Validate(); err != nil {
		return prev, err
	}
	if err := cfg.Validate(); err != nil {
		return prev, err
	}
	return StepSpring(prev, anchor, params, cfg), nil
}

// Spring is one rope's oscillator. Its velocity belongs to this instance
// alone. A Spring is not safe for concurrent use.
type Spring struct {
	params SpringParams
	cfg    SimulationConfig
	state  State
}

// NewSpring returns a spring at rest at initial. It rejects parameters that
// would make the integrator produce NaN or Inf.
func NewSpring(params SpringParams, cfg SimulationConfig, initial Point) (*Spring, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !Finite(initial) {
		return nil, fmt.Errorf("initial position %v: %w", initial, ErrInvalidParameter)
	}
	return &Spring{
		params: params,
		cfg:    cfg,
		state:  State{Position: initial},
	}, nil
}

// Advance steps the spring toward anchor and returns the new position.
func (s *Spring) Advance(anchor Point) Point {
	s.state = StepSpring(s.state, anchor, s.params, s.cfg)
	return s.state.Position
}

// State returns the current position and velocity.
func (s *Spring) State() State {
	return s.state
}

// Reset puts the spring at rest at p.
func (s *Spring) Reset(p Point) {
	s.state = State{Position: p}
}

// Params returns the spring's parameters.
func (s *Spring) Params() SpringParams {
	return s.params
}

// Config returns the spring's integration constants.
func (s *Spring) Config() SimulationConfig {
	return s.cfg
}

// Settled reports whether the spring has come to rest at its equilibrium
// for anchor, within eps.
func (s *Spring) Settled(anchor Point, eps float64) bool {
	return IsSettled(s.state, Equilibrium(anchor, s.params, s.cfg), eps)
}

// IsSettled reports whether st is within eps of rest at equilibrium.
// Both squared speed and squared distance must be below eps².
func IsSettled(st State, equilibrium Point, eps float64) bool {
	eps2 := eps * eps
	return r2.Norm2(st.Velocity) < eps2 &&
		r2.Norm2(r2.Sub(st.Position, equilibrium)) < eps2
}
