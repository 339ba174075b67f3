package systems

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"
	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/ropeslack/components"
	"github.com/pthm-cable/ropeslack/config"
)

// Noise-space offsets so each plug coordinate follows its own curve.
const (
	driverAX = 0.0
	driverAY = 17.3
	driverBX = 41.9
	driverBY = 73.1
)

// DriverSystem moves rope plugs along smooth noise curves around their base
// positions, standing in for a user dragging them. With HoldEvery set it
// alternates moving and holding phases so ropes get a chance to settle; each
// hold starts by releasing both plugs into the sockets.
type DriverSystem struct {
	filter    *ecs.Filter4[components.Driver, components.Endpoints, components.Plugged, components.Rope]
	noise     opensimplex.Noise
	sockets   Sockets
	amplitude float64
	speed     float64
	holdEvery int
	t         float64
}

// NewDriverSystem creates a new driver system.
func NewDriverSystem(w *ecs.World, cfg config.DriverConfig, sockets Sockets, seed int64) *DriverSystem {
	return &DriverSystem{
		filter:    ecs.NewFilter4[components.Driver, components.Endpoints, components.Plugged, components.Rope](w),
		noise:     opensimplex.New(seed),
		sockets:   sockets,
		amplitude: cfg.Amplitude,
		speed:     cfg.Speed,
		holdEvery: cfg.HoldEvery,
	}
}

// Holding reports whether plugs stay put on the given tick.
func (s *DriverSystem) Holding(tick int32) bool {
	return s.holdEvery > 0 && (int(tick)/s.holdEvery)%2 == 1
}

// releasing reports whether tick is the first frame of a hold phase.
func (s *DriverSystem) releasing(tick int32) bool {
	return s.Holding(tick) && int(tick)%s.holdEvery == 0
}

// Update runs the driver system and returns how many plugs moved to a
// different socket.
func (s *DriverSystem) Update(w *ecs.World, tick int32) int {
	if s.releasing(tick) {
		return s.release(tick)
	}
	if s.Holding(tick) {
		return 0
	}
	s.t += s.speed

	query := s.filter.Query()
	for query.Next() {
		drv, ends, _, _ := query.Get()
		o := drv.Offset

		ends.A.X = drv.BaseA.X + s.amplitude*s.noise.Eval2(s.t, o+driverAX)
		ends.A.Y = drv.BaseA.Y + s.amplitude*s.noise.Eval2(s.t, o+driverAY)
		ends.B.X = drv.BaseB.X + s.amplitude*s.noise.Eval2(s.t, o+driverBX)
		ends.B.Y = drv.BaseB.Y + s.amplitude*s.noise.Eval2(s.t, o+driverBY)
	}
	return 0
}

// release drops every plug where it is.
func (s *DriverSystem) release(tick int32) int {
	if len(s.sockets) == 0 {
		return 0
	}
	replugged := 0
	query := s.filter.Query()
	for query.Next() {
		drv, ends, plugged, rope := query.Get()
		for _, end := range []components.End{components.EndA, components.EndB} {
			prev := plugged.Socket(end)
			socket, snapped := s.sockets.ReleasePlug(end, ends.Point(end), ends, plugged, drv)
			if socket != prev {
				replugged++
				slog.Info("rope plugged", "rope", rope.Name, "end", end.String(), "socket", socket, "tick", tick)
			} else if !snapped {
				slog.Debug("plug returned", "rope", rope.Name, "end", end.String(), "socket", socket, "tick", tick)
			}
		}
	}
	return replugged
}
