package main

import (
	"errors"
	"math"

	"github.com/pthm-cable/ropeslack/physics"
)

// Penalties for parameter sets that never come to rest.
const (
	unstablePenalty = 1e6
	unsettledFrames = 1e4
)

// Scenario is one settle test: the spring starts at rest at Start and chases
// the anchor of a rope strung between A and B.
type Scenario struct {
	Name  string
	A, B  physics.Point
	Start physics.Point
}

// DefaultScenarios covers a slack rope pulled from the origin, a taut rope,
// and a small plug nudge.
func DefaultScenarios() []Scenario {
	return []Scenario{
		{Name: "reference", A: physics.Pt(56, 156), B: physics.Pt(356, 256), Start: physics.Pt(0, 0)},
		{Name: "taut", A: physics.Pt(0, 200), B: physics.Pt(450, 200), Start: physics.Pt(225, 400)},
		{Name: "nudge", A: physics.Pt(100, 100), B: physics.Pt(140, 100), Start: physics.Pt(130, 460)},
	}
}

// FitnessEvaluator runs spring scenarios and scores how quickly and cleanly
// they settle (lower = better).
type FitnessEvaluator struct {
	mass            float64
	sim             physics.SimulationConfig
	slackLength     float64
	epsilon         float64
	maxFrames       int
	overshootWeight float64
	scenarios       []Scenario
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(mass float64, sim physics.SimulationConfig, slackLength, epsilon float64, maxFrames int) *FitnessEvaluator {
	return &FitnessEvaluator{
		mass:            mass,
		sim:             sim,
		slackLength:     slackLength,
		epsilon:         epsilon,
		maxFrames:       maxFrames,
		overshootWeight: 2,
		scenarios:       DefaultScenarios(),
	}
}

// Result is the outcome of one evaluation.
type Result struct {
	Fitness      float64
	SettleFrames int     // Worst case over scenarios (maxFrames if any never settled)
	Overshoot    float64 // Largest travel past equilibrium, in units
	Stable       bool
}

// Evaluate scores stiffness and damping for the evaluator's mass.
func (fe *FitnessEvaluator) Evaluate(stiffness, damping float64) Result {
	params := physics.SpringParams{Stiffness: stiffness, Mass: fe.mass, Damping: damping}

	rho, err := physics.SpectralRadius(params, fe.sim)
	if err != nil || rho >= 1 {
		if err == nil {
			err = physics.ErrUnstable
		}
		penalty := unstablePenalty
		if !errors.Is(err, physics.ErrInvalidParameter) {
			penalty += rho * 1e3
		}
		return Result{Fitness: penalty, SettleFrames: fe.maxFrames}
	}

	res := Result{Stable: true}
	var total float64
	for _, sc := range fe.scenarios {
		frames, overshoot := fe.run(params, sc)
		res.SettleFrames = max(res.SettleFrames, frames)
		res.Overshoot = math.Max(res.Overshoot, overshoot)
		if frames >= fe.maxFrames {
			total += unsettledFrames
		}
		total += float64(frames) + fe.overshootWeight*overshoot
	}
	res.Fitness = total / float64(len(fe.scenarios))
	return res
}

// run steps one scenario until the spring settles or maxFrames pass.
func (fe *FitnessEvaluator) run(params physics.SpringParams, sc Scenario) (frames int, overshoot float64) {
	anchor := physics.Anchor(sc.A, sc.B, fe.slackLength)
	eq := physics.Equilibrium(anchor, params, fe.sim)

	// Travel direction from start to equilibrium; overshoot is motion past eq along it.
	dir := physics.Pt(eq.X-sc.Start.X, eq.Y-sc.Start.Y)
	dirLen := physics.Distance(eq, sc.Start)

	spring, err := physics.NewSpring(params, fe.sim, sc.Start)
	if err != nil {
		return fe.maxFrames, 0
	}
	for frames = 1; frames <= fe.maxFrames; frames++ {
		pos := spring.Advance(anchor)
		if dirLen > 0 {
			past := ((pos.X-eq.X)*dir.X + (pos.Y-eq.Y)*dir.Y) / dirLen
			overshoot = math.Max(overshoot, past)
		}
		if spring.Settled(anchor, fe.epsilon) {
			return frames, overshoot
		}
	}
	return fe.maxFrames, overshoot
}
