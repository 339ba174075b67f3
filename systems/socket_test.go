package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/ropeslack/components"
	"github.com/pthm-cable/ropeslack/config"
	"github.com/pthm-cable/ropeslack/physics"
)

func TestSocketContainsEdges(t *testing.T) {
	s := NewSocket(-4, 96, 120)
	tests := []struct {
		name string
		p    physics.Point
		want bool
	}{
		{"center", physics.Pt(56, 156), true},
		{"top-left corner", physics.Pt(-4, 96), true},
		{"bottom-right corner", physics.Pt(116, 216), true},
		{"left edge", physics.Pt(-4, 150), true},
		{"right edge", physics.Pt(116, 150), true},
		{"just left", physics.Pt(-4.001, 150), false},
		{"just right", physics.Pt(116.001, 150), false},
		{"just above", physics.Pt(56, 95.999), false},
		{"just below", physics.Pt(56, 216.001), false},
		{"nan", physics.Pt(math.NaN(), 150), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := s.Contains(tc.p); got != tc.want {
				t.Errorf("Contains(%v) = %v, want %v", tc.p, got, tc.want)
			}
		})
	}
	if got := s.Center(); got != physics.Pt(56, 156) {
		t.Errorf("expected center (56, 156), got %v", got)
	}
}

func TestSocketsRelease(t *testing.T) {
	ss := NewSockets([]config.SocketConfig{
		{X: 0, Y: 0, Size: 100},
		{X: 300, Y: 0, Size: 100},
	})

	tests := []struct {
		name        string
		active      int
		p           physics.Point
		wantSocket  int
		wantSnapped bool
		wantPos     physics.Point
	}{
		{"hit other socket", 0, physics.Pt(310, 90), 1, true, physics.Pt(350, 50)},
		{"hit own socket", 0, physics.Pt(20, 20), 0, true, physics.Pt(50, 50)},
		{"hit on edge", 0, physics.Pt(400, 100), 1, true, physics.Pt(350, 50)},
		{"miss returns to active", 1, physics.Pt(200, 50), 1, false, physics.Pt(350, 50)},
		{"miss without active stays", components.NoSocket, physics.Pt(200, 50), components.NoSocket, false, physics.Pt(200, 50)},
		{"miss with stale active stays", 7, physics.Pt(200, 50), components.NoSocket, false, physics.Pt(200, 50)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			socket, snapped, pos := ss.Release(tc.active, tc.p)
			if socket != tc.wantSocket || snapped != tc.wantSnapped || pos != tc.wantPos {
				t.Errorf("Release(%d, %v) = (%d, %v, %v), want (%d, %v, %v)",
					tc.active, tc.p, socket, snapped, pos, tc.wantSocket, tc.wantSnapped, tc.wantPos)
			}
		})
	}
}

func TestSocketsFindFirstMatch(t *testing.T) {
	// Overlapping sockets resolve to the lower index.
	ss := Sockets{NewSocket(0, 0, 100), NewSocket(50, 50, 100)}
	if got := ss.Find(physics.Pt(75, 75)); got != 0 {
		t.Errorf("expected socket 0, got %d", got)
	}
	if got := ss.Find(physics.Pt(140, 140)); got != 1 {
		t.Errorf("expected socket 1, got %d", got)
	}
	if got := ss.Find(physics.Pt(-1, 0)); got != components.NoSocket {
		t.Errorf("expected no socket, got %d", got)
	}
}

func TestSocketsReleasePlug(t *testing.T) {
	ss := Sockets{NewSocket(0, 0, 100), NewSocket(300, 0, 100)}
	ends := components.Endpoints{A: physics.Pt(50, 50), B: physics.Pt(350, 50)}
	plugged := components.Plugged{A: 0, B: 1}
	drv := components.Driver{BaseA: ends.A, BaseB: ends.B}

	socket, snapped := ss.ReleasePlug(components.EndA, physics.Pt(330, 10), &ends, &plugged, &drv)
	if socket != 1 || !snapped {
		t.Fatalf("expected snap into socket 1, got %d %v", socket, snapped)
	}
	if ends.A != physics.Pt(350, 50) || drv.BaseA != physics.Pt(350, 50) || plugged.A != 1 {
		t.Errorf("plug A not seated: ends %+v driver %+v plugged %+v", ends, drv, plugged)
	}
	if ends.B != physics.Pt(350, 50) || plugged.B != 1 {
		t.Errorf("plug B should be untouched: ends %+v plugged %+v", ends, plugged)
	}

	// A nil driver is allowed.
	socket, snapped = ss.ReleasePlug(components.EndB, physics.Pt(-50, -50), &ends, &plugged, nil)
	if socket != 1 || snapped || ends.B != physics.Pt(350, 50) {
		t.Errorf("expected plug B to return to socket 1, got %d %v %v", socket, snapped, ends.B)
	}
}
