package scene

import (
	"log/slog"

	"github.com/pthm-cable/ropeslack/physics"
	"github.com/pthm-cable/ropeslack/systems"
	"github.com/pthm-cable/ropeslack/telemetry"
)

// recordTelemetry samples every rope for the current frame.
func (s *Scene) recordTelemetry(res systems.SettleResult) {
	for i := 0; i < res.NewlySettled; i++ {
		s.collector.RecordSettle()
	}
	for i := 0; i < res.Disturbed; i++ {
		s.collector.RecordDisturb()
	}
	for i := 0; i < s.replugged; i++ {
		s.collector.RecordReplug()
	}

	every := s.cfg.Telemetry.TrajectoryEvery
	writeTraj := s.output != nil && every > 0 && s.tick%int32(every) == 0
	s.trajRows = s.trajRows[:0]

	query := s.ropeFilter.Query()
	for query.Next() {
		rope, ends, spring, settle, _ := query.Get()

		eq := physics.Equilibrium(spring.Anchor, rope.Params, s.cfg.Derived.Sim)
		s.collector.RecordSample(
			physics.Speed(spring.Velocity),
			physics.Distance(spring.Position, eq),
			spring.Slack,
		)

		if writeTraj {
			s.trajRows = append(s.trajRows, telemetry.TrajectoryRow{
				Tick:    s.tick,
				Rope:    rope.Name,
				AX:      ends.A.X,
				AY:      ends.A.Y,
				BX:      ends.B.X,
				BY:      ends.B.Y,
				Slack:   spring.Slack,
				AnchorX: spring.Anchor.X,
				AnchorY: spring.Anchor.Y,
				X:       spring.Position.X,
				Y:       spring.Position.Y,
				VX:      spring.Velocity.X,
				VY:      spring.Velocity.Y,
				Settled: settle.Settled,
			})
		}
	}

	if writeTraj {
		if err := s.output.WriteTrajectory(s.trajRows); err != nil {
			slog.Error("failed to write trajectory", "error", err)
		}
	}
}

// flushTelemetry checks if the stats window should be flushed.
func (s *Scene) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	stats := s.collector.Flush(s.tick, s.ropeCount(), s.settled)
	perfStats := s.perf.Stats()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if s.output != nil {
		if err := s.output.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := s.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

func (s *Scene) ropeCount() int {
	n := 0
	query := s.ropeFilter.Query()
	for query.Next() {
		n++
	}
	return n
}
