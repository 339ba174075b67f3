// Package scene wires rope entities, systems and telemetry into a frame loop.
package scene

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ropeslack/components"
	"github.com/pthm-cable/ropeslack/config"
	"github.com/pthm-cable/ropeslack/physics"
	"github.com/pthm-cable/ropeslack/systems"
	"github.com/pthm-cable/ropeslack/telemetry"
)

// ErrNoRope reports an entity that is not a live rope.
var ErrNoRope = errors.New("no such rope")

// Options configures a scene.
type Options struct {
	Seed          int64                        // Driver noise seed
	LogStats      bool                         // Log window stats via slog
	StatsWindow   int                          // Frames per stats window (0 = config)
	OutputDir     string                       // CSV/YAML output directory (empty = disabled)
	StatsCallback func(telemetry.WindowStats) // Called on every stats flush (optional)
}

// RopeView is a read-only snapshot of one rope, enough to draw its curve:
// a quadratic from A to B through Position.
type RopeView struct {
	Entity   ecs.Entity
	Name     string
	A, B     physics.Point
	Anchor   physics.Point
	Slack    float64
	Position physics.Point
	Velocity physics.Velocity
	Settled  bool
	SocketA  int // Socket index of plug A (components.NoSocket if none)
	SocketB  int
}

// Scene holds the complete simulation state.
type Scene struct {
	cfg   *config.Config
	world *ecs.World

	ropeMapper *ecs.Map6[
		components.Endpoints,
		components.Rope,
		components.Spring,
		components.Settle,
		components.Driver,
		components.Plugged,
	]
	ropeFilter *ecs.Filter5[
		components.Rope,
		components.Endpoints,
		components.Spring,
		components.Settle,
		components.Plugged,
	]
	endsMap    *ecs.Map1[components.Endpoints]
	driverMap  *ecs.Map1[components.Driver]
	pluggedMap *ecs.Map1[components.Plugged]
	sockets    systems.Sockets

	// Systems
	driver *systems.DriverSystem // nil when the driver is disabled
	ropes  *systems.RopeSystem
	settle *systems.SettleSystem

	// Telemetry
	perf          *telemetry.PerfCollector
	collector     *telemetry.Collector
	output        *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)
	trajRows      []telemetry.TrajectoryRow

	// State
	tick      int32
	replugged int // Plugs that changed socket on the last frame
	nextID    uint32
	settled   int
}

// New creates a scene and spawns the ropes listed in cfg.
func New(cfg *config.Config, opts Options) (*Scene, error) {
	world := ecs.NewWorld()
	sim := cfg.Derived.Sim

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindow > 0 {
		statsWindow = opts.StatsWindow
	}

	s := &Scene{
		cfg:   cfg,
		world: world,
		ropeMapper: ecs.NewMap6[
			components.Endpoints,
			components.Rope,
			components.Spring,
			components.Settle,
			components.Driver,
			components.Plugged,
		](world),
		ropeFilter: ecs.NewFilter5[
			components.Rope,
			components.Endpoints,
			components.Spring,
			components.Settle,
			components.Plugged,
		](world),
		endsMap:    ecs.NewMap1[components.Endpoints](world),
		driverMap:  ecs.NewMap1[components.Driver](world),
		pluggedMap: ecs.NewMap1[components.Plugged](world),
		sockets:    systems.NewSockets(cfg.Scene.Sockets),

		ropes:  systems.NewRopeSystem(world, sim),
		settle: systems.NewSettleSystem(world, sim, cfg.Physics.SettleEpsilon, cfg.Physics.SettleFrames),

		perf:          telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		collector:     telemetry.NewCollector(statsWindow, sim.TimeStep),
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
	}

	if cfg.Driver.Enabled {
		s.driver = systems.NewDriverSystem(world, cfg.Driver, s.sockets, opts.Seed)
	}

	for _, rc := range cfg.Scene.Ropes {
		if _, err := s.AddRope(rc); err != nil {
			return nil, err
		}
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	s.output = output
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	return s, nil
}

// AddRope spawns a rope entity with its own spring state. It fails fast on
// parameters the integrator cannot use.
func (s *Scene) AddRope(rc config.RopeConfig) (ecs.Entity, error) {
	params := s.cfg.RopeSpring(rc)
	start := physics.Pt(0, 0)
	if rc.Start != nil {
		start = rc.Start.Point()
	}

	a, b := rc.A.Point(), rc.B.Point()
	if err := params.Validate(); err != nil {
		return ecs.Entity{}, fmt.Errorf("rope %q: %w", rc.Name, err)
	}
	if err := s.cfg.Derived.Sim.Validate(); err != nil {
		return ecs.Entity{}, fmt.Errorf("rope %q: %w", rc.Name, err)
	}
	if !physics.Finite(start) || !physics.Finite(a) || !physics.Finite(b) {
		return ecs.Entity{}, fmt.Errorf("rope %q: non-finite position: %w", rc.Name, physics.ErrInvalidParameter)
	}

	id := s.nextID
	s.nextID++
	ends := components.Endpoints{A: a, B: b}
	rope := components.Rope{
		ID:          id,
		Name:        rc.Name,
		Params:      params,
		SlackLength: s.cfg.RopeSlackLength(rc),
	}
	spring := components.Spring{State: physics.State{Position: start}}
	settle := components.Settle{}
	// Offset noise per rope so ropes wander independently
	drv := components.Driver{BaseA: a, BaseB: b, Offset: float64(id) * 101.7}
	plugged := components.Plugged{A: s.sockets.Find(a), B: s.sockets.Find(b)}

	entity := s.ropeMapper.NewEntity(&ends, &rope, &spring, &settle, &drv, &plugged)
	slog.Debug("rope added", "rope", rc.Name, "id", id, "a", a, "b", b, "params", params)
	return entity, nil
}

// RemoveRope removes a rope and its spring state.
func (s *Scene) RemoveRope(e ecs.Entity) error {
	if !s.world.Alive(e) {
		return fmt.Errorf("removing %v: %w", e, ErrNoRope)
	}
	s.world.RemoveEntity(e)
	return nil
}

// SetEndpoints moves a rope's plugs, as a gesture handler would while
// dragging. The driver's base positions follow so scripted motion continues
// from here.
func (s *Scene) SetEndpoints(e ecs.Entity, a, b physics.Point) error {
	if !s.world.Alive(e) {
		return fmt.Errorf("moving %v: %w", e, ErrNoRope)
	}
	if !physics.Finite(a) || !physics.Finite(b) {
		return fmt.Errorf("moving %v to %v, %v: %w", e, a, b, physics.ErrInvalidParameter)
	}
	ends := s.endsMap.Get(e)
	ends.A, ends.B = a, b
	drv := s.driverMap.Get(e)
	drv.BaseA, drv.BaseB = a, b
	return nil
}

// ReleasePlug drops one plug of a rope at p, as a gesture handler would at
// the end of a drag. Inside a socket the plug snaps to its center; anywhere
// else it returns to the socket it was seated in. It reports the socket the
// plug ends up in and whether it snapped into a socket under p.
func (s *Scene) ReleasePlug(e ecs.Entity, end components.End, p physics.Point) (socket int, snapped bool, err error) {
	if !s.world.Alive(e) {
		return components.NoSocket, false, fmt.Errorf("releasing %v: %w", e, ErrNoRope)
	}
	if !physics.Finite(p) {
		return components.NoSocket, false, fmt.Errorf("releasing %v at %v: %w", e, p, physics.ErrInvalidParameter)
	}
	plugged := s.pluggedMap.Get(e)
	prev := plugged.Socket(end)
	socket, snapped = s.sockets.ReleasePlug(end, p, s.endsMap.Get(e), plugged, s.driverMap.Get(e))
	if socket != prev {
		s.collector.RecordReplug()
		slog.Info("rope plugged", "entity", e, "end", end.String(), "socket", socket, "tick", s.tick)
	}
	return socket, snapped, nil
}

// Update advances every rope by one frame.
func (s *Scene) Update() {
	s.perf.StartTick()

	s.perf.StartPhase(telemetry.PhaseDriver)
	s.replugged = 0
	if s.driver != nil {
		s.replugged = s.driver.Update(s.world, s.tick)
	}

	s.perf.StartPhase(telemetry.PhaseRopeSpring)
	s.ropes.Update(s.world)

	s.perf.StartPhase(telemetry.PhaseSettle)
	res := s.settle.Update(s.world, s.tick)
	s.settled = res.Settled

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.recordTelemetry(res)

	s.perf.EndTick()
	s.tick++

	s.flushTelemetry()
}

// Ropes returns a snapshot of every rope.
func (s *Scene) Ropes() []RopeView {
	var views []RopeView
	query := s.ropeFilter.Query()
	for query.Next() {
		rope, ends, spring, settle, plugged := query.Get()
		views = append(views, RopeView{
			Entity:   query.Entity(),
			Name:     rope.Name,
			A:        ends.A,
			B:        ends.B,
			Anchor:   spring.Anchor,
			Slack:    spring.Slack,
			Position: spring.Position,
			Velocity: spring.Velocity,
			Settled:  settle.Settled,
			SocketA:  plugged.A,
			SocketB:  plugged.B,
		})
	}
	return views
}

// Tick returns the number of frames simulated.
func (s *Scene) Tick() int32 {
	return s.tick
}

// Settled returns how many ropes were settled after the last frame.
func (s *Scene) Settled() int {
	return s.settled
}

// Unload releases resources.
func (s *Scene) Unload() error {
	return s.output.Close()
}
