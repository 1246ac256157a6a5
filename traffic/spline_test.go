package traffic

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

var epoch = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func at(seconds float64) time.Time {
	return epoch.Add(time.Duration(seconds * float64(time.Second)))
}

func wp(seconds, x, y, vx, vy float64) Waypoint {
	return Waypoint{
		Time:     at(seconds),
		Position: mgl64.Vec3{x, y, 0},
		Velocity: mgl64.Vec3{vx, vy, 0},
	}
}

func TestTrajectoryInsertOrdering(t *testing.T) {
	traj := &Trajectory{}
	for _, s := range []float64{5, 1, 3} {
		if err := traj.Insert(wp(s, s, 0, 0, 0)); err != nil {
			t.Fatalf("Insert(%f) failed: %v", s, err)
		}
	}

	if traj.Size() != 3 {
		t.Fatalf("size: got %d, want 3", traj.Size())
	}
	for i, want := range []float64{1, 3, 5} {
		if got := traj.Waypoint(i).Time; !got.Equal(at(want)) {
			t.Errorf("waypoint %d time: got %v, want %v", i, got, at(want))
		}
	}

	if err := traj.Insert(wp(3, 0, 0, 0, 0)); err == nil {
		t.Error("expected error inserting duplicate waypoint time")
	}
}

func TestTrajectoryFindSegment(t *testing.T) {
	traj, err := NewTrajectory(
		wp(0, 0, 0, 1, 0),
		wp(10, 10, 0, 1, 0),
		wp(20, 20, 0, 1, 0),
	)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		seconds float64
		want    int
	}{
		{0, 1},
		{5, 1},
		{10, 1},
		{10.5, 2},
		{20, 2},
		{25, 2},
	}
	for _, tc := range cases {
		if got := traj.FindSegment(at(tc.seconds)); got != tc.want {
			t.Errorf("FindSegment(%f): got %d, want %d", tc.seconds, got, tc.want)
		}
	}
}

func TestSplineEndpoints(t *testing.T) {
	w0 := wp(0, 1, 2, 0.5, -0.25)
	w1 := wp(4, 5, -1, 1.5, 2)
	s := NewSpline(w0, w1)

	p0 := s.Position(w0.Time)
	p1 := s.Position(w1.Time)
	v0 := s.Velocity(w0.Time)
	v1 := s.Velocity(w1.Time)

	for dim := 0; dim < 2; dim++ {
		if math.Abs(p0[dim]-w0.Position[dim]) > 1e-12 {
			t.Errorf("start position dim %d: got %f, want %f", dim, p0[dim], w0.Position[dim])
		}
		if math.Abs(p1[dim]-w1.Position[dim]) > 1e-12 {
			t.Errorf("finish position dim %d: got %f, want %f", dim, p1[dim], w1.Position[dim])
		}
		if math.Abs(v0[dim]-w0.Velocity[dim]) > 1e-12 {
			t.Errorf("start velocity dim %d: got %f, want %f", dim, v0[dim], w0.Velocity[dim])
		}
		if math.Abs(v1[dim]-w1.Velocity[dim]) > 1e-12 {
			t.Errorf("finish velocity dim %d: got %f, want %f", dim, v1[dim], w1.Velocity[dim])
		}
	}
}

func TestSplineLinearMotion(t *testing.T) {
	// Velocities consistent with a straight line collapse the cubic terms.
	s := NewSpline(wp(0, 0, 0, 1, 0), wp(10, 10, 0, 1, 0))
	c := s.Coefficients(0)
	if math.Abs(c[2]) > 1e-9 || math.Abs(c[3]) > 1e-9 {
		t.Errorf("linear motion should have no quadratic/cubic terms, got %v", c)
	}

	p := s.Position(at(3))
	if math.Abs(p[0]-3) > 1e-9 {
		t.Errorf("position at 3s: got %f, want 3", p[0])
	}
}

func TestSplineMotionReparam(t *testing.T) {
	s := NewSpline(wp(0, 0, 0, 0, 2), wp(10, 10, 5, 3, 0))

	t0, t1 := at(2), at(7)
	m := s.Motion(t0, t1)

	for _, sigma := range []float64{0, 0.25, 0.5, 0.75, 1} {
		want := s.Position(at(2 + 5*sigma))
		got := m.PoseAt(sigma)
		if math.Abs(got.Position[0]-want[0]) > 1e-9 ||
			math.Abs(got.Position[1]-want[1]) > 1e-9 {
			t.Errorf("sigma %f: got (%f, %f), want (%f, %f)",
				sigma, got.Position[0], got.Position[1], want[0], want[1])
		}
	}
}

func TestLocalExtremaPolicy(t *testing.T) {
	cases := []struct {
		name   string
		coeffs [4]float64
		lo, hi float64
	}{
		{
			// p = t: endpoints only.
			name:   "linear",
			coeffs: [4]float64{0, 1, 0, 0},
			lo:     0, hi: 1,
		},
		{
			// p = t - t^2 peaks at 0.25 in the middle.
			name:   "quadratic vertex",
			coeffs: [4]float64{0, 1, -1, 0},
			lo:     0, hi: 0.25,
		},
		{
			// p = 2t^3 - 3t^2 + 0.75t: positive discriminant, interior
			// critical points at (2±sqrt(2))/4.
			name:   "cubic with interior extrema",
			coeffs: [4]float64{0, 0.75, -3, 2},
			lo:     -0.3017767, hi: 0.0517767,
		},
		{
			// p = t^3: D = 0, double root at t=0.
			name:   "degenerate discriminant",
			coeffs: [4]float64{0, 0, 0, 1},
			lo:     0, hi: 1,
		},
	}

	for _, tc := range cases {
		lo, hi := localExtrema(tc.coeffs, EpsDiscriminant)
		if math.Abs(lo-tc.lo) > 1e-6 || math.Abs(hi-tc.hi) > 1e-6 {
			t.Errorf("%s: got (%f, %f), want (%f, %f)", tc.name, lo, hi, tc.lo, tc.hi)
		}
	}
}

func TestLocalExtremaDiscardsOutsideUnit(t *testing.T) {
	// p = t - t^2/4: vertex at t=2, outside [0,1]; endpoints win.
	lo, hi := localExtrema([4]float64{0, 1, -0.25, 0}, EpsDiscriminant)
	if lo != 0 || hi != 0.75 {
		t.Errorf("got (%f, %f), want (0, 0.75)", lo, hi)
	}
}

func TestBoundingSoundness(t *testing.T) {
	// Sampled positions inflated by a characteristic length must stay
	// inside the inflated analytic bounding box.
	s := NewSpline(wp(0, 0, 0, 3, -4), wp(6, 5, 2, -2, 6))
	const ell = 0.7
	box := s.BoundingBox().Inflated(ell)

	for i := 0; i <= 200; i++ {
		tt := at(6 * float64(i) / 200)
		p := s.Position(tt)
		for dim := 0; dim < 2; dim++ {
			if p[dim]-ell < box.Min[dim]-1e-9 || p[dim]+ell > box.Max[dim]+1e-9 {
				t.Fatalf("position %v at %v escapes inflated box %v", p, tt, box)
			}
		}
	}
}

func TestVoidBoxNeverOverlaps(t *testing.T) {
	huge := BoundingBox{Min: mgl64.Vec2{-1e9, -1e9}, Max: mgl64.Vec2{1e9, 1e9}}
	if Overlap(VoidBox(), huge) {
		t.Error("void box must not overlap anything")
	}
	if Overlap(VoidBox(), VoidBox()) {
		t.Error("void boxes must not overlap each other")
	}
}

func TestOverlap(t *testing.T) {
	a := BoundingBox{Min: mgl64.Vec2{0, 0}, Max: mgl64.Vec2{2, 2}}
	b := BoundingBox{Min: mgl64.Vec2{1, 1}, Max: mgl64.Vec2{3, 3}}
	c := BoundingBox{Min: mgl64.Vec2{2.5, 0}, Max: mgl64.Vec2{4, 1}}

	if !Overlap(a, b) {
		t.Error("a and b should overlap")
	}
	if Overlap(a, c) {
		t.Error("a and c should not overlap")
	}
	// Shared edges count as overlap.
	d := BoundingBox{Min: mgl64.Vec2{2, 0}, Max: mgl64.Vec2{3, 2}}
	if !Overlap(a, d) {
		t.Error("touching boxes should overlap")
	}
}
