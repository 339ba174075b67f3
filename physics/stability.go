package physics

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// Equilibrium returns where the spring comes to rest for a fixed anchor:
// gravity stretches it below the anchor by m*g/k. With zero stiffness there
// is no equilibrium and the anchor is returned.
func Equilibrium(anchor Point, params SpringParams, cfg SimulationConfig) Point {
	if params.Stiffness == 0 {
		return anchor
	}
	anchor.Y += params.Mass * cfg.Gravity / params.Stiffness
	return anchor
}

// AmplificationMatrix returns the linear map one step applies to
// (displacement from equilibrium, velocity) on either axis:
//
//	v' = -h*k/m * x + (1 - h*c/m) * v
//	x' = x + h*v'
func AmplificationMatrix(params SpringParams, cfg SimulationConfig) *mat.Dense {
	h := cfg.TimeStep
	kh := h * params.Stiffness / params.Mass
	ch := 1 - h*params.Damping/params.Mass
	return mat.NewDense(2, 2, []float64{
		1 - h*kh, h * ch,
		-kh, ch,
	})
}

// SpectralRadius returns the largest eigenvalue magnitude of the
// amplification matrix. Displacements shrink each step when it is below 1.
func SpectralRadius(params SpringParams, cfg SimulationConfig) (float64, error) {
	if err := params.Validate(); err != nil {
		return 0, err
	}
	if err := cfg.Validate(); err != nil {
		return 0, err
	}

	var eig mat.Eigen
	if ok := eig.Factorize(AmplificationMatrix(params, cfg), mat.EigenNone); !ok {
		return 0, fmt.Errorf("eigen decomposition failed for %+v", params)
	}
	var rho float64
	for _, v := range eig.Values(nil) {
		rho = math.Max(rho, cmplx.Abs(v))
	}
	return rho, nil
}

// CheckStability returns ErrUnstable when the parameters do not decay under
// the configured time step.
func CheckStability(params SpringParams, cfg SimulationConfig) error {
	rho, err := SpectralRadius(params, cfg)
	if err != nil {
		return err
	}
	if rho >= 1 {
		return fmt.Errorf("spectral radius %.4f (stiffness %v, mass %v, damping %v, step %v): %w",
			rho, params.Stiffness, params.Mass, params.Damping, cfg.TimeStep, ErrUnstable)
	}
	return nil
}

// MaxStableStiffness returns the stiffness at which the step stops
// decaying for the given mass and damping: k*h² < 4m - 2c*h.
// Stability also needs 0 < c*h/m < 2; when that fails the result is 0.
func MaxStableStiffness(mass, damping float64, cfg SimulationConfig) float64 {
	h := cfg.TimeStep
	if mass <= 0 || h <= 0 {
		return 0
	}
	b := h * damping / mass
	if b <= 0 || b >= 2 {
		return 0
	}
	return (4*mass - 2*damping*h) / (h * h)
}
