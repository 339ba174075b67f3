package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{0.5, 3},
		{0.25, 2},
		{0.9, 4.6},
		{1, 5},
	}
	for _, tc := range tests {
		if got := Percentile(sorted, tc.p); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("Percentile(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
	if got := Percentile(nil, 0.5); got != 0 {
		t.Errorf("expected 0 for empty slice, got %v", got)
	}
}

func TestComputeSpeedStats(t *testing.T) {
	values := []float64{4, 1, 3, 2, 5}
	mean, p50, p90, max := ComputeSpeedStats(values)
	if mean != 3 || p50 != 3 || max != 5 {
		t.Errorf("got mean=%v p50=%v max=%v", mean, p50, max)
	}
	if math.Abs(p90-4.6) > 1e-9 {
		t.Errorf("expected p90 4.6, got %v", p90)
	}
	if values[0] != 4 {
		t.Error("input slice was reordered")
	}
}

func TestCollector_FlushResets(t *testing.T) {
	c := NewCollector(10, 0.2)

	if c.ShouldFlush(9) {
		t.Error("should not flush before window ends")
	}
	if !c.ShouldFlush(10) {
		t.Error("should flush when window ends")
	}

	c.RecordSample(2, 10, 80)
	c.RecordSample(4, 30, 90)
	c.RecordSettle()
	c.RecordDisturb()
	c.RecordDisturb()
	c.RecordReplug()

	s := c.Flush(10, 2, 1)
	if s.WindowStartTick != 0 || s.WindowEndTick != 10 {
		t.Errorf("unexpected window bounds %d-%d", s.WindowStartTick, s.WindowEndTick)
	}
	if math.Abs(s.SimTimeSec-2) > 1e-9 {
		t.Errorf("expected sim time 2, got %v", s.SimTimeSec)
	}
	if s.SpeedMean != 3 || s.SpeedMax != 4 {
		t.Errorf("unexpected speed stats %+v", s)
	}
	if s.EqDistMean != 20 || s.EqDistMax != 30 || s.SlackMean != 85 {
		t.Errorf("unexpected distance/slack stats %+v", s)
	}
	if s.SettleEvents != 1 || s.DisturbEvents != 2 || s.ReplugEvents != 1 || s.Ropes != 2 || s.Settled != 1 {
		t.Errorf("unexpected counts %+v", s)
	}

	next := c.Flush(20, 2, 2)
	if next.WindowStartTick != 10 {
		t.Errorf("expected next window to start at 10, got %d", next.WindowStartTick)
	}
	if next.SpeedMax != 0 || next.SettleEvents != 0 || next.ReplugEvents != 0 || next.EqDistMax != 0 {
		t.Errorf("expected counters reset, got %+v", next)
	}
}
