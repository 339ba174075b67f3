// Package systems provides ECS systems for the rope simulation.
package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ropeslack/components"
	"github.com/pthm-cable/ropeslack/physics"
)

// RopeSystem advances every rope's spring one step toward its slack anchor.
type RopeSystem struct {
	filter *ecs.Filter3[components.Endpoints, components.Rope, components.Spring]
	sim    physics.SimulationConfig
}

// NewRopeSystem creates a new rope system.
func NewRopeSystem(w *ecs.World, sim physics.SimulationConfig) *RopeSystem {
	return &RopeSystem{
		filter: ecs.NewFilter3[components.Endpoints, components.Rope, components.Spring](w),
		sim:    sim,
	}
}

// Update runs the rope system.
func (s *RopeSystem) Update(w *ecs.World) {
	query := s.filter.Query()
	for query.Next() {
		ends, rope, spring := query.Get()

		spring.Slack = physics.SlackWithLength(ends.A, ends.B, rope.SlackLength)
		spring.Anchor = physics.AnchorWithSlack(ends.A, ends.B, spring.Slack)
		spring.State = physics.StepSpring(spring.State, spring.Anchor, rope.Params, s.sim)
	}
}
