package physics

import "math"

// SlackLength is the default rope length. Endpoints at least this far apart
// pull the rope taut.
const SlackLength = 400.0

// ComputeSlack returns how far below the endpoints' midpoint the rope sags,
// using the default rope length.
func ComputeSlack(p1, p2 Point) float64 {
	return SlackWithLength(p1, p2, SlackLength)
}

// SlackWithLength returns length minus the endpoint separation, clamped to
// [0, length]. Coincident endpoints give full sag, fully stretched give none.
func SlackWithLength(p1, p2 Point, length float64) float64 {
	raw := length - Distance(p1, p2)
	return math.Max(math.Min(length, raw), 0)
}

// Anchor returns the point the spring chases: the endpoints' midpoint lowered
// by the slack for a rope of the given length.
func Anchor(p1, p2 Point, length float64) Point {
	return AnchorWithSlack(p1, p2, SlackWithLength(p1, p2, length))
}

// AnchorWithSlack returns the endpoints' midpoint lowered by slack.
func AnchorWithSlack(p1, p2 Point, slack float64) Point {
	mid := Midpoint(p1, p2)
	mid.Y += slack
	return mid
}
