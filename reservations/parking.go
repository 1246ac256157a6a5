package reservations

import (
	"fmt"
	"time"
)

// ParkingScheduler restricts a Scheduler to parking spots: every candidate
// waypoint of a reservation request must be flagged as one.
type ParkingScheduler struct {
	scheduler *Scheduler
}

// NewParkingScheduler wraps an existing scheduler. The wrapper shares the
// scheduler's state, so parking and non-parking reservations contend for
// the same timelines.
func NewParkingScheduler(scheduler *Scheduler) *ParkingScheduler {
	return &ParkingScheduler{scheduler: scheduler}
}

// Reserve behaves like Scheduler.Reserve, but fails when any candidate is
// not a parking spot.
func (p *ParkingScheduler) Reserve(start time.Time, waypoints []Waypoint, duration *time.Duration) (Reservation, bool, error) {
	for _, wp := range waypoints {
		if !wp.Parking {
			return Reservation{}, false, fmt.Errorf(
				"reservations: waypoint %q is not a parking spot", wp.Name)
		}
	}
	res, ok := p.scheduler.Reserve(start, waypoints, duration)
	return res, ok, nil
}

// Cancel releases a reservation through the underlying scheduler.
func (p *ParkingScheduler) Cancel(id uint64) error {
	return p.scheduler.Cancel(id)
}
