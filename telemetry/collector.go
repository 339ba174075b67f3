package telemetry

import "math"

// Collector accumulates per-frame rope samples within windows and produces WindowStats.
type Collector struct {
	windowTicks int32
	dt          float64

	// Current window tracking
	windowStartTick int32

	speeds        []float64
	eqDistSum     float64
	eqDistMax     float64
	slackSum      float64
	samples       int
	settleEvents  int
	disturbEvents int
	replugEvents  int
}

// NewCollector creates a new stats collector.
// windowTicks: frames per window
// dt: simulation time per frame (used for tick-to-time conversion)
func NewCollector(windowTicks int, dt float64) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowTicks: int32(windowTicks),
		dt:          dt,
	}
}

// RecordSample records one rope's state for one frame.
func (c *Collector) RecordSample(speed, eqDist, slack float64) {
	c.speeds = append(c.speeds, speed)
	c.eqDistSum += eqDist
	c.eqDistMax = math.Max(c.eqDistMax, eqDist)
	c.slackSum += slack
	c.samples++
}

// RecordSettle records a rope coming to rest.
func (c *Collector) RecordSettle() {
	c.settleEvents++
}

// RecordDisturb records a settled rope starting to move again.
func (c *Collector) RecordDisturb() {
	c.disturbEvents++
}

// RecordReplug records a plug moving to a different socket.
func (c *Collector) RecordReplug() {
	c.replugEvents++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, ropes, settled int) WindowStats {
	speedMean, speedP50, speedP90, speedMax := ComputeSpeedStats(c.speeds)

	var eqMean, slackMean float64
	if c.samples > 0 {
		eqMean = c.eqDistSum / float64(c.samples)
		slackMean = c.slackSum / float64(c.samples)
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,
		Ropes:           ropes,
		Settled:         settled,
		SettleEvents:    c.settleEvents,
		DisturbEvents:   c.disturbEvents,
		ReplugEvents:    c.replugEvents,
		SpeedMean:       speedMean,
		SpeedP50:        speedP50,
		SpeedP90:        speedP90,
		SpeedMax:        speedMax,
		EqDistMean:      eqMean,
		EqDistMax:       c.eqDistMax,
		SlackMean:       slackMean,
	}

	c.windowStartTick = currentTick
	c.speeds = c.speeds[:0]
	c.eqDistSum, c.eqDistMax, c.slackSum = 0, 0, 0
	c.samples, c.settleEvents, c.disturbEvents, c.replugEvents = 0, 0, 0, 0

	return stats
}
