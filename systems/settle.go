package systems

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ropeslack/components"
	"github.com/pthm-cable/ropeslack/physics"
)

// SettleSystem marks ropes settled once they stay within epsilon of their
// equilibrium for a number of consecutive frames.
type SettleSystem struct {
	filter  *ecs.Filter3[components.Rope, components.Spring, components.Settle]
	sim     physics.SimulationConfig
	epsilon float64
	frames  int
}

// NewSettleSystem creates a new settle system. frames < 1 settles on the
// first quiet frame.
func NewSettleSystem(w *ecs.World, sim physics.SimulationConfig, epsilon float64, frames int) *SettleSystem {
	if frames < 1 {
		frames = 1
	}
	return &SettleSystem{
		filter:  ecs.NewFilter3[components.Rope, components.Spring, components.Settle](w),
		sim:     sim,
		epsilon: epsilon,
		frames:  frames,
	}
}

// SettleResult summarizes one settle pass.
type SettleResult struct {
	Settled      int // Ropes currently settled
	NewlySettled int // Ropes that settled this frame
	Disturbed    int // Settled ropes that started moving this frame
}

// Update runs the settle system.
func (s *SettleSystem) Update(w *ecs.World, tick int32) SettleResult {
	var res SettleResult
	query := s.filter.Query()
	for query.Next() {
		rope, spring, st := query.Get()

		eq := physics.Equilibrium(spring.Anchor, rope.Params, s.sim)
		if !physics.IsSettled(spring.State, eq, s.epsilon) {
			if st.Settled {
				res.Disturbed++
				slog.Debug("rope disturbed", "rope", rope.Name, "tick", tick)
			}
			st.QuietFrames = 0
			st.Settled = false
			continue
		}

		st.QuietFrames++
		if !st.Settled && st.QuietFrames >= s.frames {
			st.Settled = true
			st.SettledAt = tick
			res.NewlySettled++
			slog.Debug("rope settled", "rope", rope.Name, "tick", tick)
		}
		if st.Settled {
			res.Settled++
		}
	}
	return res
}
