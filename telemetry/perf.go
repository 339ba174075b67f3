package telemetry

import (
	"log/slog"
	"time"
)

// Phase identifies one stage of a simulation frame.
type Phase int

// Frame phases, in execution order.
const (
	PhaseDriver Phase = iota
	PhaseRopeSpring
	PhaseSettle
	PhaseTelemetry
	numPhases
)

var phaseNames = [numPhases]string{"driver", "rope_spring", "settle", "telemetry"}

func (p Phase) String() string {
	if p < 0 || p >= numPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// frameSample holds timing for one frame.
type frameSample struct {
	total  time.Duration
	phases [numPhases]time.Duration
}

// PerfCollector times frame phases over a ring of recent frames.
type PerfCollector struct {
	ring  []frameSample
	next  int
	count int

	cur        frameSample
	frameStart time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool
}

// NewPerfCollector creates a collector averaging over window frames.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{ring: make([]frameSample, window)}
}

// StartTick begins timing a frame.
func (p *PerfCollector) StartTick() {
	p.frameStart = time.Now()
	p.cur = frameSample{}
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and opens phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phase, p.phaseStart, p.inPhase = phase, now, true
}

// EndTick closes the frame and stores it in the ring.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.cur.total = now.Sub(p.frameStart)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	p.count = min(p.count+1, len(p.ring))
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
		p.inPhase = false
	}
}

// PerfStats summarizes the frames currently in the ring.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	TicksPerSecond  float64

	PhaseAvg [numPhases]time.Duration
	PhasePct [numPhases]float64 // Share of the average frame, 0-100
}

// Stats aggregates the ring.
func (p *PerfCollector) Stats() PerfStats {
	var st PerfStats
	if p.count == 0 {
		return st
	}

	var total time.Duration
	var phaseSum [numPhases]time.Duration
	for i, s := range p.ring[:p.count] {
		total += s.total
		if i == 0 || s.total < st.MinTickDuration {
			st.MinTickDuration = s.total
		}
		st.MaxTickDuration = max(st.MaxTickDuration, s.total)
		for ph, d := range s.phases {
			phaseSum[ph] += d
		}
	}

	n := time.Duration(p.count)
	st.AvgTickDuration = total / n
	for ph := range phaseSum {
		st.PhaseAvg[ph] = phaseSum[ph] / n
		if st.AvgTickDuration > 0 {
			st.PhasePct[ph] = 100 * float64(st.PhaseAvg[ph]) / float64(st.AvgTickDuration)
		}
	}
	if st.AvgTickDuration > 0 {
		st.TicksPerSecond = float64(time.Second) / float64(st.AvgTickDuration)
	}
	return st
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	for ph, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(Phase(ph).String()+"_pct", pct))
	}
	return slog.GroupValue(attrs...)
}

// LogStats logs the perf summary.
func (s PerfStats) LogStats() {
	slog.Info("perf", "perf", s)
}

// PerfStatsCSV is the perf.csv row.
type PerfStatsCSV struct {
	WindowEnd     int32   `csv:"window_end"`
	AvgTickUS     int64   `csv:"avg_tick_us"`
	MinTickUS     int64   `csv:"min_tick_us"`
	MaxTickUS     int64   `csv:"max_tick_us"`
	TicksPerSec   float64 `csv:"ticks_per_sec"`
	DriverPct     float64 `csv:"driver_pct"`
	RopeSpringPct float64 `csv:"rope_spring_pct"`
	SettlePct     float64 `csv:"settle_pct"`
	TelemetryPct  float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats into a perf.csv row.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:     windowEnd,
		AvgTickUS:     s.AvgTickDuration.Microseconds(),
		MinTickUS:     s.MinTickDuration.Microseconds(),
		MaxTickUS:     s.MaxTickDuration.Microseconds(),
		TicksPerSec:   s.TicksPerSecond,
		DriverPct:     s.PhasePct[PhaseDriver],
		RopeSpringPct: s.PhasePct[PhaseRopeSpring],
		SettlePct:     s.PhasePct[PhaseSettle],
		TelemetryPct:  s.PhasePct[PhaseTelemetry],
	}
}
