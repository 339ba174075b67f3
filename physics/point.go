// Package physics implements the rope slack model and the damped spring
// integrator that chases the rope's anchor point one frame at a time.
package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a position in render space.
type Point = r2.Vec

// Velocity is the rate of change of a Point, in units per time step.
type Velocity = r2.Vec

// Pt is shorthand for constructing a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return r2.Norm(r2.Sub(a, b))
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point) Point {
	return r2.Scale(0.5, r2.Add(a, b))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Finite reports whether both coordinates of p are finite.
func Finite(p Point) bool {
	return finite(p.X) && finite(p.Y)
}

// Speed returns the magnitude of v.
func Speed(v Velocity) float64 {
	return r2.Norm(v)
}
