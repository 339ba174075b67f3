package physics

import (
	"errors"
	"math"
	"testing"
)

func TestEquilibrium(t *testing.T) {
	params := SpringParams{Stiffness: 10, Mass: 8, Damping: 4}
	got := Equilibrium(Pt(100, 100), params, DefaultSimulationConfig())
	if got.X != 100 || math.Abs(got.Y-107.84) > 1e-9 {
		t.Errorf("expected (100, 107.84), got %v", got)
	}

	loose := SpringParams{Stiffness: 0, Mass: 8, Damping: 4}
	if got := Equilibrium(Pt(3, 4), loose, DefaultSimulationConfig()); got != Pt(3, 4) {
		t.Errorf("zero stiffness should return the anchor, got %v", got)
	}
}

func TestSpectralRadiusDefaults(t *testing.T) {
	rho, err := SpectralRadius(DefaultSpringParams(), DefaultSimulationConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Complex pair with |λ|² = det = 1 - h*c/m = 0.9.
	if math.Abs(rho-math.Sqrt(0.9)) > 1e-9 {
		t.Errorf("expected spectral radius %f, got %f", math.Sqrt(0.9), rho)
	}
	if err := CheckStability(DefaultSpringParams(), DefaultSimulationConfig()); err != nil {
		t.Errorf("defaults should be stable: %v", err)
	}
}

func TestCheckStabilityUnstable(t *testing.T) {
	cfg := DefaultSimulationConfig()
	tests := []struct {
		name   string
		params SpringParams
	}{
		{"stiffness past bound", SpringParams{Stiffness: 800, Mass: 8, Damping: 4}},
		{"overdamped step", SpringParams{Stiffness: 10, Mass: 1, Damping: 12}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := CheckStability(tc.params, cfg); !errors.Is(err, ErrUnstable) {
				t.Errorf("expected ErrUnstable, got %v", err)
			}
		})
	}
}

func TestCheckStabilityInvalid(t *testing.T) {
	err := CheckStability(SpringParams{Stiffness: 10, Mass: 0, Damping: 4}, DefaultSimulationConfig())
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestMaxStableStiffness(t *testing.T) {
	cfg := DefaultSimulationConfig()
	kMax := MaxStableStiffness(8, 4, cfg)
	if math.Abs(kMax-760) > 1e-9 {
		t.Fatalf("expected 760, got %f", kMax)
	}

	below := SpringParams{Stiffness: kMax * 0.95, Mass: 8, Damping: 4}
	if err := CheckStability(below, cfg); err != nil {
		t.Errorf("stiffness below bound should be stable: %v", err)
	}
	above := SpringParams{Stiffness: kMax * 1.05, Mass: 8, Damping: 4}
	if err := CheckStability(above, cfg); !errors.Is(err, ErrUnstable) {
		t.Errorf("stiffness above bound should be unstable, got %v", err)
	}

	if got := MaxStableStiffness(8, 0, cfg); got != 0 {
		t.Errorf("undamped spring never decays, expected 0, got %f", got)
	}
	if got := MaxStableStiffness(0, 4, cfg); got != 0 {
		t.Errorf("zero mass should give 0, got %f", got)
	}
}

func TestUnstableParamsDiverge(t *testing.T) {
	params := SpringParams{Stiffness: 800, Mass: 8, Damping: 4}
	cfg := DefaultSimulationConfig()
	anchor := Pt(100, 100)
	eq := Equilibrium(anchor, params, cfg)

	st := State{}
	for i := 0; i < 200; i++ {
		st = StepSpring(st, anchor, params, cfg)
	}
	if d := Distance(st.Position, eq); d < 1000 {
		t.Errorf("expected divergence for unstable params, distance only %f", d)
	}
}
