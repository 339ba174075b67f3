package physics

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestComputeSlack(t *testing.T) {
	tests := []struct {
		name   string
		p1, p2 Point
		want   float64
	}{
		{"coincident", Pt(10, 10), Pt(10, 10), SlackLength},
		{"origin", Pt(0, 0), Pt(0, 0), SlackLength},
		{"exactly taut", Pt(0, 0), Pt(400, 0), 0},
		{"beyond taut", Pt(0, 0), Pt(300, 400), 0},
		{"halfway", Pt(0, 0), Pt(0, 200), 200},
		{"diagonal", Pt(0, 0), Pt(30, 40), 350},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeSlack(tc.p1, tc.p2)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("ComputeSlack(%v, %v) = %f, want %f", tc.p1, tc.p2, got, tc.want)
			}
		})
	}
}

func TestComputeSlackTautIsZero(t *testing.T) {
	for _, d := range []float64{400.001, 500, 1e6} {
		for _, angle := range []float64{0, 0.3, math.Pi / 2, 2.5, math.Pi} {
			p1 := Pt(56, 156)
			p2 := Pt(p1.X+d*math.Cos(angle), p1.Y+d*math.Sin(angle))
			if got := ComputeSlack(p1, p2); got != 0 {
				t.Errorf("distance %f angle %f: expected 0 slack, got %f", d, angle, got)
			}
		}
	}
}

func TestComputeSlackSymmetric(t *testing.T) {
	pairs := [][2]Point{
		{Pt(56, 156), Pt(356, 256)},
		{Pt(-20, 7), Pt(13, -90)},
		{Pt(0, 0), Pt(1000, 0)},
		{Pt(1.5, 2.5), Pt(1.5, 2.5)},
	}
	for _, p := range pairs {
		a, b := ComputeSlack(p[0], p[1]), ComputeSlack(p[1], p[0])
		if a != b {
			t.Errorf("slack not symmetric for %v: %f vs %f", p, a, b)
		}
	}
}

func TestComputeSlackRange(t *testing.T) {
	for x := -600.0; x <= 600; x += 37 {
		for y := -600.0; y <= 600; y += 41 {
			s := ComputeSlack(Pt(0, 0), Pt(x, y))
			if s < 0 || s > SlackLength {
				t.Fatalf("slack %f out of [0, %f] for (%f, %f)", s, SlackLength, x, y)
			}
		}
	}
}

func TestSlackWithLength(t *testing.T) {
	if got := SlackWithLength(Pt(0, 0), Pt(0, 0), 120); got != 120 {
		t.Errorf("expected full sag 120, got %f", got)
	}
	if got := SlackWithLength(Pt(0, 0), Pt(0, 50), 120); got != 70 {
		t.Errorf("expected 70, got %f", got)
	}
	if got := SlackWithLength(Pt(0, 0), Pt(0, 50), -10); got != 0 {
		t.Errorf("negative length should clamp to 0, got %f", got)
	}
}

func TestAnchorReferencePlugs(t *testing.T) {
	p1, p2 := Pt(56, 156), Pt(356, 256)

	slack := ComputeSlack(p1, p2)
	wantSlack := 400 - math.Sqrt(300*300+100*100)
	if math.Abs(slack-wantSlack) > 1e-9 {
		t.Fatalf("expected slack %f, got %f", wantSlack, slack)
	}
	if math.Abs(slack-83.77) > 0.01 {
		t.Errorf("expected slack ~83.77, got %f", slack)
	}

	got := Anchor(p1, p2, SlackLength)
	want := Pt(206, 206+wantSlack)
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("anchor mismatch (-want +got):\n%s", diff)
	}
}

func TestAnchorWithSlack(t *testing.T) {
	p1, p2 := Pt(56, 156), Pt(356, 256)
	slack := ComputeSlack(p1, p2)
	if got, want := AnchorWithSlack(p1, p2, slack), Anchor(p1, p2, SlackLength); got != want {
		t.Errorf("AnchorWithSlack = %v, Anchor = %v", got, want)
	}
	if got := AnchorWithSlack(Pt(0, 0), Pt(10, 20), 0); got != Pt(5, 10) {
		t.Errorf("zero slack should give the midpoint, got %v", got)
	}
}

func TestFinite(t *testing.T) {
	tests := []struct {
		p    Point
		want bool
	}{
		{Pt(1, 2), true},
		{Pt(math.NaN(), 0), false},
		{Pt(0, math.Inf(-1)), false},
	}
	for _, tc := range tests {
		if got := Finite(tc.p); got != tc.want {
			t.Errorf("Finite(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}
