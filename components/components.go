// Package components defines ECS components for the rope simulation.
package components

import "github.com/pthm-cable/ropeslack/physics"

// Endpoints holds the two plug positions a rope is strung between.
// Written by the driver, read by the rope system.
type Endpoints struct {
	A, B physics.Point
}

// Rope holds a rope's identity and fixed spring configuration.
type Rope struct {
	ID          uint32
	Name        string
	Params      physics.SpringParams
	SlackLength float64
}

// Spring holds a rope's simulated curve point. Each rope entity owns its own
// velocity; nothing is shared between ropes.
type Spring struct {
	physics.State
	Anchor physics.Point // Anchor chased on the last step
	Slack  float64       // Slack used to build Anchor
}

// Settle tracks whether a rope has come to rest.
type Settle struct {
	Settled     bool
	QuietFrames int   // Consecutive frames within epsilon of equilibrium
	SettledAt   int32 // Tick the rope last became settled
}

// Driver holds the scripted plug motion for a rope.
type Driver struct {
	BaseA, BaseB physics.Point // Plug positions the noise offsets from
	Offset       float64       // Noise-space offset so ropes move independently
}

// NoSocket marks a plug that is not in any socket.
const NoSocket = -1

// End selects one of a rope's two plugs.
type End int

const (
	EndA End = iota
	EndB
)

func (e End) String() string {
	if e == EndA {
		return "a"
	}
	return "b"
}

// Plugged holds the socket index each plug is seated in (NoSocket if none).
// A plug released outside every socket returns to its socket here.
type Plugged struct {
	A, B int
}

// Socket returns the socket index for end.
func (p *Plugged) Socket(end End) int {
	if end == EndA {
		return p.A
	}
	return p.B
}

// Set seats end in socket.
func (p *Plugged) Set(end End, socket int) {
	if end == EndA {
		p.A = socket
	} else {
		p.B = socket
	}
}

// Point returns the plug position for end.
func (e *Endpoints) Point(end End) physics.Point {
	if end == EndA {
		return e.A
	}
	return e.B
}

// SetPoint moves the plug for end.
func (e *Endpoints) SetPoint(end End, p physics.Point) {
	if end == EndA {
		e.A = p
	} else {
		e.B = p
	}
}

// SetBase moves the driver's base position for end.
func (d *Driver) SetBase(end End, p physics.Point) {
	if end == EndA {
		d.BaseA = p
	} else {
		d.BaseB = p
	}
}
