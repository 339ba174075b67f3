// Package config provides configuration loading and access for the rope simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/ropeslack/physics"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Physics   PhysicsConfig   `yaml:"physics"`
	Spring    SpringConfig    `yaml:"spring"`
	Scene     SceneConfig     `yaml:"scene"`
	Driver    DriverConfig    `yaml:"driver"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// PhysicsConfig holds the integration constants and the slack model.
type PhysicsConfig struct {
	TimeStep      float64 `yaml:"time_step"`
	Gravity       float64 `yaml:"gravity"`        // Applied on +Y only
	SlackLength   float64 `yaml:"slack_length"`   // Rope length; endpoints this far apart pull it taut
	SettleEpsilon float64 `yaml:"settle_epsilon"` // Distance and speed below which a rope counts as settled
	SettleFrames  int     `yaml:"settle_frames"`  // Consecutive quiet frames before a rope is reported settled
}

// SpringConfig holds default spring parameters for every rope.
type SpringConfig struct {
	Stiffness float64 `yaml:"stiffness"`
	Mass      float64 `yaml:"mass"`
	Damping   float64 `yaml:"damping"`
}

// Params converts to the physics representation.
func (s SpringConfig) Params() physics.SpringParams {
	return physics.SpringParams{Stiffness: s.Stiffness, Mass: s.Mass, Damping: s.Damping}
}

// PointConfig is a 2D point in render space.
type PointConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Point converts to the physics representation.
func (p PointConfig) Point() physics.Point {
	return physics.Pt(p.X, p.Y)
}

// RopeConfig describes one rope strung between two plugs.
type RopeConfig struct {
	Name        string        `yaml:"name"`
	A           PointConfig   `yaml:"a"`
	B           PointConfig   `yaml:"b"`
	Start       *PointConfig  `yaml:"start,omitempty"`        // Initial spring point (nil = origin)
	SlackLength float64       `yaml:"slack_length,omitempty"` // 0 = physics.slack_length
	Spring      *SpringConfig `yaml:"spring,omitempty"`       // nil = spring defaults
}

// SocketConfig is a square socket a plug can be dropped into.
type SocketConfig struct {
	X    float64 `yaml:"x"` // Left edge
	Y    float64 `yaml:"y"` // Top edge
	Size float64 `yaml:"size"`
}

// SceneConfig holds the ropes to simulate and the sockets their plugs snap to.
type SceneConfig struct {
	Ropes   []RopeConfig   `yaml:"ropes"`
	Sockets []SocketConfig `yaml:"sockets"`
}

// DriverConfig holds parameters for the scripted endpoint motion used in headless runs.
type DriverConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Amplitude float64 `yaml:"amplitude"`  // Max plug offset from its base position
	Speed     float64 `yaml:"speed"`      // Noise advance per frame
	HoldEvery int     `yaml:"hold_every"` // Alternate moving/holding every N frames (0 = always moving)
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"`          // Frames per stats window
	PerfCollectorWindow int `yaml:"perf_collector_window"` // Frames averaged by the perf collector
	TrajectoryEvery     int `yaml:"trajectory_every"`      // Write a trajectory row every N frames (0 = off)
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Sim                physics.SimulationConfig // Physics.TimeStep and Gravity
	Spring             physics.SpringParams     // Spring section
	MaxStableStiffness float64                  // Stiffness bound for Spring.Mass and Spring.Damping
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	return Parse(data)
}

// Parse builds a configuration from YAML bytes layered over the embedded defaults.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Unmarshal into same struct - only overwrites fields present in data
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Sim = physics.SimulationConfig{
		TimeStep: c.Physics.TimeStep,
		Gravity:  c.Physics.Gravity,
	}
	c.Derived.Spring = c.Spring.Params()
	c.Derived.MaxStableStiffness = physics.MaxStableStiffness(c.Spring.Mass, c.Spring.Damping, c.Derived.Sim)

	if c.Physics.SlackLength == 0 {
		c.Physics.SlackLength = physics.SlackLength
	}
	if c.Telemetry.StatsWindow <= 0 {
		c.Telemetry.StatsWindow = 60
	}

	// Name unnamed ropes by index
	for i := range c.Scene.Ropes {
		if c.Scene.Ropes[i].Name == "" {
			c.Scene.Ropes[i].Name = fmt.Sprintf("rope-%d", i)
		}
	}
}

// RopeSpring returns the spring parameters for the rope, falling back to the defaults.
func (c *Config) RopeSpring(r RopeConfig) physics.SpringParams {
	if r.Spring != nil {
		return r.Spring.Params()
	}
	return c.Derived.Spring
}

// RopeSlackLength returns the rope's length, falling back to physics.slack_length.
func (c *Config) RopeSlackLength(r RopeConfig) float64 {
	if r.SlackLength > 0 {
		return r.SlackLength
	}
	return c.Physics.SlackLength
}

// Validate rejects parameters the integrator cannot use. Unstable but valid
// springs are only logged, since they are a tuning problem rather than a fault.
func (c *Config) Validate() error {
	if err := c.Derived.Sim.Validate(); err != nil {
		return fmt.Errorf("physics: %w", err)
	}
	// IsSettled compares strictly, so a zero epsilon never settles.
	if !positive(c.Physics.SettleEpsilon) {
		return fmt.Errorf("physics: settle_epsilon %v must be positive: %w",
			c.Physics.SettleEpsilon, physics.ErrInvalidParameter)
	}
	if !positive(c.Physics.SlackLength) {
		return fmt.Errorf("physics: slack_length %v must be positive: %w",
			c.Physics.SlackLength, physics.ErrInvalidParameter)
	}
	if err := c.validateSpring("spring", c.Derived.Spring); err != nil {
		return err
	}
	for _, r := range c.Scene.Ropes {
		if r.SlackLength < 0 || math.IsNaN(r.SlackLength) || math.IsInf(r.SlackLength, 0) {
			return fmt.Errorf("rope %s: slack_length %v must be positive: %w",
				r.Name, r.SlackLength, physics.ErrInvalidParameter)
		}
		if !physics.Finite(r.A.Point()) || !physics.Finite(r.B.Point()) {
			return fmt.Errorf("rope %s: non-finite plug position: %w", r.Name, physics.ErrInvalidParameter)
		}
		if r.Spring == nil {
			continue
		}
		if err := c.validateSpring("rope "+r.Name, r.Spring.Params()); err != nil {
			return err
		}
	}
	for i, sc := range c.Scene.Sockets {
		if !positive(sc.Size) || !physics.Finite(physics.Pt(sc.X, sc.Y)) {
			return fmt.Errorf("socket %d: %+v needs a finite corner and positive size: %w",
				i, sc, physics.ErrInvalidParameter)
		}
	}
	return nil
}

// positive reports whether v is finite and above zero.
func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func (c *Config) validateSpring(what string, p physics.SpringParams) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if err := physics.CheckStability(p, c.Derived.Sim); err != nil {
		if !errors.Is(err, physics.ErrUnstable) {
			return fmt.Errorf("%s: %w", what, err)
		}
		slog.Warn("spring parameters diverge at this time step",
			"source", what,
			"error", err,
			"max_stable_stiffness", physics.MaxStableStiffness(p.Mass, p.Damping, c.Derived.Sim),
		)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
