package telemetry

import (
	"log/slog"
	"sort"
)

// WindowStats holds aggregated rope statistics for a window of frames.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Rope counts at window end
	Ropes   int `csv:"ropes"`
	Settled int `csv:"settled"`

	// Events during window
	SettleEvents  int `csv:"settle_events"`
	DisturbEvents int `csv:"disturb_events"`
	ReplugEvents  int `csv:"replug_events"`

	// Spring point speed over all ropes and frames (units per step)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
	SpeedMax  float64 `csv:"speed_max"`

	// Distance from the spring point to its gravity-shifted equilibrium
	EqDistMean float64 `csv:"eq_dist_mean"`
	EqDistMax  float64 `csv:"eq_dist_max"`

	SlackMean float64 `csv:"slack_mean"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeSpeedStats calculates mean, median, p90 and max of speed samples.
func ComputeSpeedStats(values []float64) (mean, p50, p90, max float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(n)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	return mean, Percentile(sorted, 0.50), Percentile(sorted, 0.90), sorted[n-1]
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("ropes", s.Ropes),
		slog.Int("settled", s.Settled),
		slog.Int("settle_events", s.SettleEvents),
		slog.Int("disturb_events", s.DisturbEvents),
		slog.Int("replug_events", s.ReplugEvents),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("eq_dist_mean", s.EqDistMean),
		slog.Float64("eq_dist_max", s.EqDistMax),
		slog.Float64("slack_mean", s.SlackMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"ropes", s.Ropes,
		"settled", s.Settled,
		"speed_mean", s.SpeedMean,
		"speed_max", s.SpeedMax,
		"eq_dist_max", s.EqDistMax,
	)
}
