package traffic

import (
	"time"

	"github.com/Sunshengjin/rmf-core/collision"
	"github.com/Sunshengjin/rmf-core/geometry"
)

// Conflict is one detected conflict between two trajectories. Segments are
// identified by the index of their right-hand waypoint, stable for the
// duration of the call that produced them.
type Conflict struct {
	SegmentA int
	SegmentB int
	Time     time.Time
}

// DetectorConfig tunes the numeric behaviour of a Detector.
type DetectorConfig struct {
	// DiscriminantTolerance is the |D| threshold of the bounding-box
	// extrema search. Defaults to EpsDiscriminant.
	DiscriminantTolerance float64
	// Narrowphase configures the continuous-collision solver.
	Narrowphase collision.Request
}

// DefaultDetectorConfig returns the production tolerances.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		DiscriminantTolerance: EpsDiscriminant,
		Narrowphase:           collision.DefaultRequest(),
	}
}

// Detector runs conflict detection between pairs of trajectories. It is
// stateless between calls; a single Detector must not be shared across
// goroutines running calls concurrently with reconfiguration.
type Detector struct {
	cfg DetectorConfig
}

// NewDetector builds a detector with the given configuration. Zero-valued
// fields fall back to the defaults.
func NewDetector(cfg DetectorConfig) *Detector {
	if cfg.DiscriminantTolerance <= 0 {
		cfg.DiscriminantTolerance = EpsDiscriminant
	}
	if cfg.Narrowphase.MaxIterations <= 0 {
		cfg.Narrowphase.MaxIterations = collision.DefaultMaxIterations
	}
	if cfg.Narrowphase.ContactTolerance <= 0 {
		cfg.Narrowphase.ContactTolerance = collision.DefaultContactTolerance
	}
	return &Detector{cfg: cfg}
}

var defaultDetector = NewDetector(DefaultDetectorConfig())

// Between reports the earliest time at which the two trajectories come
// into conflict, or ok=false when they never do.
//
// It fails with InvalidTrajectoryError when either trajectory has fewer
// than two waypoints. All other negative outcomes, including missing
// profile geometry and non-overlapping time ranges, return ok=false.
func Between(
	profileA Profile, trajectoryA *Trajectory,
	profileB Profile, trajectoryB *Trajectory,
) (time.Time, bool, error) {
	return defaultDetector.Between(profileA, trajectoryA, profileB, trajectoryB)
}

// BetweenAll is Between in the extended form: conflicts is cleared and then
// filled with every detected conflict in discovery order. The returned time
// is the first entry's.
func BetweenAll(
	profileA Profile, trajectoryA *Trajectory,
	profileB Profile, trajectoryB *Trajectory,
	conflicts *[]Conflict,
) (time.Time, bool, error) {
	return defaultDetector.BetweenAll(profileA, trajectoryA, profileB, trajectoryB, conflicts)
}

// Between reports the earliest conflict time between two trajectories. See
// the package-level Between.
func (d *Detector) Between(
	profileA Profile, trajectoryA *Trajectory,
	profileB Profile, trajectoryB *Trajectory,
) (time.Time, bool, error) {
	return d.between(profileA, trajectoryA, profileB, trajectoryB, nil)
}

// BetweenAll collects every conflict between two trajectories. See the
// package-level BetweenAll.
func (d *Detector) BetweenAll(
	profileA Profile, trajectoryA *Trajectory,
	profileB Profile, trajectoryB *Trajectory,
	conflicts *[]Conflict,
) (time.Time, bool, error) {
	return d.between(profileA, trajectoryA, profileB, trajectoryB, conflicts)
}

func (d *Detector) between(
	profileA Profile, trajectoryA *Trajectory,
	profileB Profile, trajectoryB *Trajectory,
	out *[]Conflict,
) (time.Time, bool, error) {
	if trajectoryA.Size() < 2 {
		return time.Time{}, false, InvalidTrajectoryError{Waypoints: trajectoryA.Size()}
	}
	if trajectoryB.Size() < 2 {
		return time.Time{}, false, InvalidTrajectoryError{Waypoints: trajectoryB.Size()}
	}

	pa := profileA.normalized()
	pb := profileB.normalized()

	// No physical presence on either side means nothing can conflict.
	if pa.Footprint == nil && pb.Footprint == nil {
		return time.Time{}, false, nil
	}

	// Normalization promotes the vicinity to the footprint, so a missing
	// vicinity here means the profile has no geometry at all.
	if pa.Vicinity == nil || pb.Vicinity == nil {
		return time.Time{}, false, nil
	}

	if !haveTimeOverlap(trajectoryA, trajectoryB) {
		return time.Time{}, false, nil
	}

	aIt, bIt := initialIterators(trajectoryA, trajectoryB)

	if d.closeStart(pa, trajectoryA, aIt, pb, trajectoryB, bIt) {
		// Starting inside each other's vicinity is exempt; it only
		// becomes a conflict if the vehicles keep closing in.
		return d.detectApproach(pa, trajectoryA, aIt, pb, trajectoryB, bIt, out)
	}

	return d.detectInvasion(pa, trajectoryA, aIt, pb, trajectoryB, bIt, out)
}

func haveTimeOverlap(a, b *Trajectory) bool {
	if b.FinishTime().Before(a.StartTime()) {
		return false
	}
	if a.FinishTime().Before(b.StartTime()) {
		return false
	}
	return true
}

// initialIterators aligns the two trajectories: the one that starts first
// is sought to the segment containing the other's start time, and the
// other begins at its first segment. Simultaneous starts begin both at
// their first segment.
func initialIterators(a, b *Trajectory) (int, int) {
	switch {
	case a.StartTime().Before(b.StartTime()):
		return a.FindSegment(b.StartTime()), 1
	case b.StartTime().Before(a.StartTime()):
		return 1, b.FindSegment(a.StartTime())
	default:
		return 1, 1
	}
}

// checkOverlapAt evaluates static overlap between the two profiles at a
// single instant, testing footprint-versus-vicinity in both directions.
// The (footprint A, vicinity B) pair is always tested first.
func checkOverlapAt(pa Profile, splineA Spline, pb Profile, splineB Spline, at time.Time) bool {
	pairs := [2][2]*geometry.FinalConvexShape{
		{pa.Footprint, pb.Vicinity},
		{pa.Vicinity, pb.Footprint},
	}

	poseA := poseFromPosition(splineA.Position(at))
	poseB := poseFromPosition(splineB.Position(at))

	for _, pair := range pairs {
		if pair[0] == nil || pair[1] == nil {
			continue
		}
		if collision.Intersect(pair[0].Collision(), poseA, pair[1].Collision(), poseB) {
			return true
		}
	}
	return false
}

func poseFromPosition(p [3]float64) collision.Pose {
	return collision.Pose{Position: [2]float64{p[0], p[1]}, Yaw: p[2]}
}

// closeStart reports whether the two vehicles already overlap at the
// aligned start. The sample time is max of the two seeded segments' start
// times; when one trajectory starts strictly before the other, its state
// before that instant is never examined.
func (d *Detector) closeStart(pa Profile, ta *Trajectory, aIt int, pb Profile, tb *Trajectory, bIt int) bool {
	splineA := ta.Segment(aIt)
	splineB := tb.Segment(bIt)
	at := maxTime(splineA.StartTime(), splineB.StartTime())
	return checkOverlapAt(pa, splineA, pb, splineB, at)
}

// computeTime converts a narrowphase contact fraction on [t0,t1] into an
// absolute time.
func computeTime(fraction float64, t0, t1 time.Time) time.Time {
	return t0.Add(time.Duration(fraction * float64(t1.Sub(t0))))
}

// detectInvasion advances both trajectories in lock-step by segment finish
// time, pruning each concurrent segment pair with inflated bounding boxes
// before running continuous collision on it.
func (d *Detector) detectInvasion(
	pa Profile, ta *Trajectory, aIt int,
	pb Profile, tb *Trajectory, bIt int,
	out *[]Conflict,
) (time.Time, bool, error) {
	var splineA, splineB *Spline

	// Both directions must be tested unless footprint and vicinity are
	// the same shape on both sides, in which case the two tests coincide.
	testComplement := pa.Vicinity != pa.Footprint || pb.Vicinity != pb.Footprint

	if out != nil {
		*out = (*out)[:0]
	}

	aEnd, bEnd := ta.Size(), tb.Size()
	for aIt < aEnd && bIt < bEnd {
		if splineA == nil {
			s := ta.Segment(aIt)
			splineA = &s
		}
		if splineB == nil {
			s := tb.Segment(bIt)
			splineB = &s
		}

		startTime := maxTime(splineA.StartTime(), splineB.StartTime())
		finishTime := minTime(splineA.FinishTime(), splineB.FinishTime())

		motionA := splineA.Motion(startTime, finishTime)
		motionB := splineB.Motion(startTime, finishTime)

		boundA := newBoundingProfile(*splineA, pa, d.cfg.DiscriminantTolerance)
		boundB := newBoundingProfile(*splineB, pb, d.cfg.DiscriminantTolerance)

		if Overlap(boundA.footprint, boundB.vicinity) {
			if tau, hit := collision.Collide(
				pa.Footprint.Collision(), motionA,
				pb.Vicinity.Collision(), motionB,
				d.cfg.Narrowphase,
			); hit {
				t := computeTime(tau, startTime, finishTime)
				if out == nil {
					return t, true, nil
				}
				*out = append(*out, Conflict{SegmentA: aIt, SegmentB: bIt, Time: t})
			}
		}

		if testComplement && Overlap(boundA.vicinity, boundB.footprint) {
			if tau, hit := collision.Collide(
				pa.Vicinity.Collision(), motionA,
				pb.Footprint.Collision(), motionB,
				d.cfg.Narrowphase,
			); hit {
				t := computeTime(tau, startTime, finishTime)
				if out == nil {
					return t, true, nil
				}
				*out = append(*out, Conflict{SegmentA: aIt, SegmentB: bIt, Time: t})
			}
		}

		switch {
		case splineA.FinishTime().Before(splineB.FinishTime()):
			splineA = nil
			aIt++
		case splineB.FinishTime().Before(splineA.FinishTime()):
			splineB = nil
			bIt++
		default:
			splineA = nil
			aIt++
			splineB = nil
			bIt++
		}
	}

	if out == nil || len(*out) == 0 {
		return time.Time{}, false, nil
	}
	return (*out)[0].Time, true, nil
}

// sliceTrajectory builds the remainder of a trajectory from the given time
// onward: a synthetic leading waypoint evaluated on the current segment,
// followed by the remaining waypoints.
func sliceTrajectory(at time.Time, s Spline, t *Trajectory, it int) *Trajectory {
	out := &Trajectory{}
	out.waypoints = append(out.waypoints, Waypoint{
		Time:     at,
		Position: s.Position(at),
		Velocity: s.Velocity(at),
	})
	for ; it < t.Size(); it++ {
		out.waypoints = append(out.waypoints, t.Waypoint(it))
	}
	return out
}

// detectApproach handles trajectories that start within each other's
// vicinity: any further approach is a conflict, and once the vehicles
// separate, detection reverts to invasion mode.
func (d *Detector) detectApproach(
	pa Profile, ta *Trajectory, aIt int,
	pb Profile, tb *Trajectory, bIt int,
	out *[]Conflict,
) (time.Time, bool, error) {
	var splineA, splineB *Spline

	if out != nil {
		*out = (*out)[:0]
	}

	aEnd, bEnd := ta.Size(), tb.Size()
	for aIt < aEnd && bIt < bEnd {
		if splineA == nil {
			s := ta.Segment(aIt)
			splineA = &s
		}
		if splineB == nil {
			s := tb.Segment(bIt)
			splineB = &s
		}

		diff := NewDistanceDifferential(*splineA, *splineB)

		if diff.InitiallyApproaching() {
			t := diff.StartTime()
			if out == nil {
				return t, true, nil
			}
			*out = append(*out, Conflict{SegmentA: aIt, SegmentB: bIt, Time: t})
		}

		for _, t := range diff.ApproachTimes() {
			if !checkOverlapAt(pa, *splineA, pb, *splineB, t) {
				// The vehicles separated before this approach began,
				// so from here on the normal invasion rules apply.
				slicedA := sliceTrajectory(t, *splineA, ta, aIt)
				slicedB := sliceTrajectory(t, *splineB, tb, bIt)
				return d.detectInvasion(pa, slicedA, 1, pb, slicedB, 1, out)
			}

			// Still inside each other's vicinity while approaching.
			if out == nil {
				return t, true, nil
			}
			*out = append(*out, Conflict{SegmentA: aIt, SegmentB: bIt, Time: t})
		}

		stillClose := checkOverlapAt(pa, *splineA, pb, *splineB, diff.FinishTime())

		switch {
		case splineA.FinishTime().Before(splineB.FinishTime()):
			splineA = nil
			aIt++
		case splineB.FinishTime().Before(splineA.FinishTime()):
			splineB = nil
			bIt++
		default:
			splineA = nil
			aIt++
			splineB = nil
			bIt++
		}

		if !stillClose {
			return d.detectInvasion(pa, ta, aIt, pb, tb, bIt, out)
		}
	}

	if out == nil || len(*out) == 0 {
		return time.Time{}, false, nil
	}
	return (*out)[0].Time, true, nil
}
