package traffic

import (
	"math"
	"testing"
)

func TestRealRootsInUnitClosedForms(t *testing.T) {
	// Linear: 2x - 1 = 0 at 0.5.
	roots := realRootsInUnit([]float64{-1, 2})
	if len(roots) != 1 || math.Abs(roots[0]-0.5) > 1e-9 {
		t.Errorf("linear roots: got %v, want [0.5]", roots)
	}

	// Quadratic: (x-0.25)(x-0.75) = x^2 - x + 0.1875.
	roots = realRootsInUnit([]float64{0.1875, -1, 1})
	if len(roots) != 2 || math.Abs(roots[0]-0.25) > 1e-9 || math.Abs(roots[1]-0.75) > 1e-9 {
		t.Errorf("quadratic roots: got %v, want [0.25, 0.75]", roots)
	}

	// No real roots.
	if roots = realRootsInUnit([]float64{1, 0, 1}); len(roots) != 0 {
		t.Errorf("x^2+1 roots: got %v, want none", roots)
	}

	// Identically zero.
	if roots = realRootsInUnit([]float64{0, 0, 0}); len(roots) != 0 {
		t.Errorf("zero polynomial roots: got %v, want none", roots)
	}
}

func TestRealRootsInUnitQuintic(t *testing.T) {
	// (x-0.2)(x-0.5)(x-0.8)(x^2+1), which keeps only the three real
	// roots inside the unit interval.
	coeffs := []float64{-0.08, 0.66, -1.58, 1.66, -1.5, 1}
	roots := realRootsInUnit(coeffs)

	want := []float64{0.2, 0.5, 0.8}
	if len(roots) != len(want) {
		t.Fatalf("quintic roots: got %v, want %v", roots, want)
	}
	for i := range want {
		if math.Abs(roots[i]-want[i]) > 1e-6 {
			t.Errorf("root %d: got %f, want %f", i, roots[i], want[i])
		}
	}
}

func TestRealRootsInUnitExcludesOutside(t *testing.T) {
	// (x+0.5)(x-0.5)(x-2): roots -0.5, 0.5, 2; only 0.5 is in (0,1].
	// Expanded: x^3 - 2x^2 - 0.25x + 0.5.
	roots := realRootsInUnit([]float64{0.5, -0.25, -2, 1})
	if len(roots) != 1 || math.Abs(roots[0]-0.5) > 1e-6 {
		t.Errorf("got %v, want [0.5]", roots)
	}
}

func TestDistanceDifferentialPassingStatic(t *testing.T) {
	// A drives past a stationary B: approaching until the closest point
	// at t=5, separating after. The sign change there goes negative to
	// positive, which is a recovery, not an approach.
	a := NewSpline(wp(0, 0, 0, 1, 0), wp(10, 10, 0, 1, 0))
	b := NewSpline(wp(0, 5, 2, 0, 0), wp(10, 5, 2, 0, 0))

	d := NewDistanceDifferential(a, b)

	if !d.InitiallyApproaching() {
		t.Error("A closes on B from the start")
	}
	if times := d.ApproachTimes(); len(times) != 0 {
		t.Errorf("approach times: got %v, want none", times)
	}
	if !d.StartTime().Equal(at(0)) || !d.FinishTime().Equal(at(10)) {
		t.Errorf("interval: got [%v, %v]", d.StartTime(), d.FinishTime())
	}
}

func TestDistanceDifferentialSeparating(t *testing.T) {
	// B runs away from A twice as fast; the distance only grows.
	a := NewSpline(wp(0, 0, 0, 1, 0), wp(10, 10, 0, 1, 0))
	b := NewSpline(wp(0, 0.5, 0, 2, 0), wp(10, 20.5, 0, 2, 0))

	d := NewDistanceDifferential(a, b)
	if d.InitiallyApproaching() {
		t.Error("separating pair must not be initially approaching")
	}
	if times := d.ApproachTimes(); len(times) != 0 {
		t.Errorf("approach times: got %v, want none", times)
	}
}

func TestDistanceDifferentialApproachInstant(t *testing.T) {
	// B pulls ahead while decelerating; A catches up. The pair first
	// separates and then begins approaching at t = 10/6 s, where the
	// relative velocity changes sign.
	a := NewSpline(wp(0, 0, 0, 1, 0), wp(10, 10, 0, 1, 0))
	b := NewSpline(wp(0, 0.5, 0, 2, 0), wp(10, 2.5, 0, 0, 0))

	d := NewDistanceDifferential(a, b)
	if d.InitiallyApproaching() {
		t.Error("the pair separates first")
	}

	times := d.ApproachTimes()
	if len(times) != 1 {
		t.Fatalf("approach times: got %v, want exactly one", times)
	}
	got := times[0].Sub(at(0)).Seconds()
	if math.Abs(got-10.0/6.0) > 1e-6 {
		t.Errorf("approach instant: got %f s, want %f s", got, 10.0/6.0)
	}
}

func TestDistanceDifferentialSharedInterval(t *testing.T) {
	a := NewSpline(wp(0, 0, 0, 1, 0), wp(10, 10, 0, 1, 0))
	b := NewSpline(wp(4, 8, 0, -1, 0), wp(12, 0, 0, -1, 0))

	d := NewDistanceDifferential(a, b)
	if !d.StartTime().Equal(at(4)) {
		t.Errorf("start: got %v, want %v", d.StartTime(), at(4))
	}
	if !d.FinishTime().Equal(at(10)) {
		t.Errorf("finish: got %v, want %v", d.FinishTime(), at(10))
	}
}
