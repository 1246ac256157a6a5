package traffic

import (
	"fmt"
	"time"
)

// InvalidTrajectoryError reports an attempt to check conflicts with a
// trajectory that has too few waypoints. Trajectories need at least two.
type InvalidTrajectoryError struct {
	Waypoints int
}

func (e InvalidTrajectoryError) Error() string {
	return fmt.Sprintf(
		"traffic: cannot check conflicts with a trajectory of %d waypoints; at least 2 are required",
		e.Waypoints)
}

// MissingShapeError reports a trajectory whose profile has no shape at a
// time where one is required.
type MissingShapeError struct {
	Time time.Time
}

func (e MissingShapeError) Error() string {
	return fmt.Sprintf("traffic: no shape specified for the profile at %v", e.Time)
}
