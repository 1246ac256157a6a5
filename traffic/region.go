package traffic

import (
	"time"

	"github.com/Sunshengjin/rmf-core/collision"
	"github.com/Sunshengjin/rmf-core/geometry"
)

// Region is a stationary spacetime region: a shape held at a fixed pose,
// optionally bounded in time. A nil bound leaves that side open.
type Region struct {
	Shape          *geometry.FinalShape
	Pose           collision.Pose
	LowerTimeBound *time.Time
	UpperTimeBound *time.Time
}

// DetectRegion tests a trajectory against a stationary spacetime region,
// returning every conflict in discovery order. The trajectory's vicinity is
// tested against each convex piece of the region shape by continuous
// collision. A nil result means the trajectory never enters the region.
//
// Fails with InvalidTrajectoryError when the trajectory has fewer than two
// waypoints.
func DetectRegion(profile Profile, trajectory *Trajectory, region Region) ([]Conflict, error) {
	return defaultDetector.DetectRegion(profile, trajectory, region)
}

// DetectRegion tests a trajectory against a stationary spacetime region.
// See the package-level DetectRegion.
func (d *Detector) DetectRegion(profile Profile, trajectory *Trajectory, region Region) ([]Conflict, error) {
	if trajectory.Size() < 2 {
		return nil, InvalidTrajectoryError{Waypoints: trajectory.Size()}
	}

	vicinity := profile.normalized().Vicinity
	if vicinity == nil || region.Shape == nil {
		return nil, nil
	}

	trajectoryStart := trajectory.StartTime()
	trajectoryFinish := trajectory.FinishTime()

	startTime := trajectoryStart
	if region.LowerTimeBound != nil && region.LowerTimeBound.After(startTime) {
		startTime = *region.LowerTimeBound
	}
	finishTime := trajectoryFinish
	if region.UpperTimeBound != nil && region.UpperTimeBound.Before(finishTime) {
		finishTime = *region.UpperTimeBound
	}

	if finishTime.Before(startTime) {
		// The region's time window and the trajectory never coexist.
		return nil, nil
	}

	beginIt := 1
	if trajectoryStart.Before(startTime) {
		beginIt = trajectory.FindSegment(startTime)
	}
	endIt := trajectory.Size()
	if finishTime.Before(trajectoryFinish) {
		endIt = trajectory.FindSegment(finishTime) + 1
	}

	motionRegion := collision.StaticMotion{Pose: region.Pose}

	var conflicts []Conflict
	for it := beginIt; it < endIt; it++ {
		spline := trajectory.Segment(it)

		splineStart := maxTime(spline.StartTime(), startTime)
		splineFinish := minTime(spline.FinishTime(), finishTime)

		motion := spline.Motion(splineStart, splineFinish)

		for _, piece := range region.Shape.Collisions() {
			tau, hit := collision.Collide(
				vicinity.Collision(), motion,
				piece, motionRegion,
				d.cfg.Narrowphase,
			)
			if hit {
				conflicts = append(conflicts, Conflict{
					SegmentA: it,
					SegmentB: it,
					Time:     computeTime(tau, splineStart, splineFinish),
				})
			}
		}
	}

	return conflicts, nil
}
