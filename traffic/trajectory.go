// Package traffic implements the trajectory conflict-detection core of the
// coordination system: cubic-spline evaluation, derivative-based broadphase
// pruning, continuous narrowphase collision, distance-differential approach
// analysis, and the top-level conflict engine.
package traffic

import (
	"fmt"
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Waypoint is a timed state along a trajectory. Position and Velocity hold
// (x, y, yaw) and the corresponding first derivatives.
type Waypoint struct {
	Time     time.Time
	Position mgl64.Vec3
	Velocity mgl64.Vec3
}

// Trajectory is a strictly time-ordered sequence of waypoints; the zero
// value is an empty trajectory.
// Adjacent waypoint pairs define cubic spline segments. A trajectory needs
// at least two waypoints before it can be checked for conflicts.
type Trajectory struct {
	waypoints []Waypoint
}

// NewTrajectory builds a trajectory from waypoints, which may be given in
// any order. Duplicate waypoint times are rejected.
func NewTrajectory(waypoints ...Waypoint) (*Trajectory, error) {
	t := &Trajectory{}
	for _, wp := range waypoints {
		if err := t.Insert(wp); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Insert adds a waypoint, keeping the sequence ordered by time.
func (t *Trajectory) Insert(wp Waypoint) error {
	i := sort.Search(len(t.waypoints), func(i int) bool {
		return !t.waypoints[i].Time.Before(wp.Time)
	})
	if i < len(t.waypoints) && t.waypoints[i].Time.Equal(wp.Time) {
		return fmt.Errorf("traffic: waypoint at %v already exists", wp.Time)
	}
	t.waypoints = append(t.waypoints, Waypoint{})
	copy(t.waypoints[i+1:], t.waypoints[i:])
	t.waypoints[i] = wp
	return nil
}

// Size returns the number of waypoints.
func (t *Trajectory) Size() int { return len(t.waypoints) }

// Waypoint returns the i-th waypoint in time order.
func (t *Trajectory) Waypoint(i int) Waypoint { return t.waypoints[i] }

// StartTime returns the time of the first waypoint. The trajectory must be
// non-empty.
func (t *Trajectory) StartTime() time.Time { return t.waypoints[0].Time }

// FinishTime returns the time of the last waypoint. The trajectory must be
// non-empty.
func (t *Trajectory) FinishTime() time.Time {
	return t.waypoints[len(t.waypoints)-1].Time
}

// FindSegment returns the segment containing the given time, identified by
// the index of its right-hand waypoint. Times at or before the start map to
// the first segment; times past the finish map to the last.
func (t *Trajectory) FindSegment(at time.Time) int {
	i := sort.Search(len(t.waypoints), func(i int) bool {
		return !t.waypoints[i].Time.Before(at)
	})
	if i < 1 {
		i = 1
	}
	if i > len(t.waypoints)-1 {
		i = len(t.waypoints) - 1
	}
	return i
}

// Segment builds the spline of the segment whose right-hand waypoint has
// index i (1 <= i < Size).
func (t *Trajectory) Segment(i int) Spline {
	return NewSpline(t.waypoints[i-1], t.waypoints[i])
}
