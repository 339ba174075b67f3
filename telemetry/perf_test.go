package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_TracksFramePhases(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseDriver)
		time.Sleep(50 * time.Microsecond)
		pc.StartPhase(PhaseRopeSpring)
		time.Sleep(2 * time.Millisecond)
		pc.StartPhase(PhaseSettle)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average frame duration")
	}
	for _, ph := range []Phase{PhaseDriver, PhaseRopeSpring} {
		if stats.PhaseAvg[ph] <= 0 {
			t.Errorf("expected %s phase to be tracked", ph)
		}
	}
	if stats.PhaseAvg[PhaseTelemetry] != 0 {
		t.Errorf("telemetry phase never ran, got %v", stats.PhaseAvg[PhaseTelemetry])
	}
	if stats.PhasePct[PhaseRopeSpring] <= stats.PhasePct[PhaseDriver] {
		t.Errorf("expected rope_spring (%v%%) > driver (%v%%)",
			stats.PhasePct[PhaseRopeSpring], stats.PhasePct[PhaseDriver])
	}
	if stats.MinTickDuration > stats.AvgTickDuration || stats.AvgTickDuration > stats.MaxTickDuration {
		t.Errorf("expected min <= avg <= max, got %v %v %v",
			stats.MinTickDuration, stats.AvgTickDuration, stats.MaxTickDuration)
	}
}

func TestPerfCollector_WindowWraps(t *testing.T) {
	pc := NewPerfCollector(3)
	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseRopeSpring)
		pc.EndTick()
	}
	if pc.count != 3 {
		t.Errorf("expected sample count capped at 3, got %d", pc.count)
	}
	if pc.next != 10%3 {
		t.Errorf("expected write index %d, got %d", 10%3, pc.next)
	}
}

func TestPerfCollector_Empty(t *testing.T) {
	if stats := NewPerfCollector(0).Stats(); stats != (PerfStats{}) {
		t.Errorf("expected zero stats for empty collector, got %+v", stats)
	}
}

func TestPhaseString(t *testing.T) {
	if got := PhaseRopeSpring.String(); got != "rope_spring" {
		t.Errorf("expected rope_spring, got %q", got)
	}
	if got := Phase(99).String(); got != "unknown" {
		t.Errorf("expected unknown, got %q", got)
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	stats := PerfStats{AvgTickDuration: 120 * time.Microsecond}
	stats.PhasePct[PhaseDriver] = 10
	stats.PhasePct[PhaseRopeSpring] = 70
	stats.PhasePct[PhaseSettle] = 15
	stats.PhasePct[PhaseTelemetry] = 5

	row := stats.ToCSV(300)
	if row.WindowEnd != 300 || row.AvgTickUS != 120 {
		t.Errorf("unexpected header fields %+v", row)
	}
	if row.DriverPct != 10 || row.RopeSpringPct != 70 || row.SettlePct != 15 || row.TelemetryPct != 5 {
		t.Errorf("unexpected phase percentages %+v", row)
	}
}
