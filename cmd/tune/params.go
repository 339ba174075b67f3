package main

import (
	"github.com/pthm-cable/ropeslack/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of tunable spring parameters. Mass stays fixed:
// only the stiffness/mass and damping/mass ratios affect the motion.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the tunable parameters, seeded from cfg.
func NewParamVector(cfg *config.Config) *ParamVector {
	maxK := cfg.Derived.MaxStableStiffness
	if maxK <= 0 {
		maxK = 100 * cfg.Spring.Mass
	}
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "stiffness", Path: "spring.stiffness", Min: 0.5, Max: maxK, Default: cfg.Spring.Stiffness},
			{Name: "damping", Path: "spring.damping", Min: 0, Max: 2 * cfg.Spring.Mass / cfg.Physics.TimeStep, Default: cfg.Spring.Damping},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes parameter values into cfg. Order must match Specs.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	cfg.Spring.Stiffness = clamped[0]
	cfg.Spring.Damping = clamped[1]
}
