// Package reservations implements the waypoint reservation scheduler: it
// grants exclusive time-windowed holds over a pool of resources, with
// admission decided per resource by interval overlap against the existing
// schedule.
package reservations

import (
	"fmt"
	"time"

	"github.com/google/btree"
)

// Waypoint is a reservable resource.
type Waypoint struct {
	Index   uint64
	Name    string
	Parking bool
}

// Reservation is an exclusive hold of one waypoint over the half-open
// interval [Start, Start+Duration). A nil duration holds the waypoint
// indefinitely. Reservations are immutable once issued; they are released
// by cancelling their id on the scheduler that issued them.
type Reservation struct {
	id       uint64
	waypoint Waypoint
	start    time.Time
	duration *time.Duration
}

// ID returns the scheduler-unique id of the reservation.
func (r Reservation) ID() uint64 { return r.id }

// Waypoint returns the resource the reservation holds.
func (r Reservation) Waypoint() Waypoint { return r.waypoint }

// Start returns the beginning of the hold.
func (r Reservation) Start() time.Time { return r.start }

// Duration returns the length of the hold and whether it is finite.
func (r Reservation) Duration() (time.Duration, bool) {
	if r.duration == nil {
		return 0, false
	}
	return *r.duration, true
}

// End returns the end of the hold and whether it is finite.
func (r Reservation) End() (time.Time, bool) {
	if r.duration == nil {
		return time.Time{}, false
	}
	return r.start.Add(*r.duration), true
}

// UnknownReservationError reports a cancellation for an id the scheduler
// does not hold.
type UnknownReservationError struct {
	ID uint64
}

func (e UnknownReservationError) Error() string {
	return fmt.Sprintf("reservations: no reservation with id %d", e.ID)
}

// slot is one reservation on a waypoint's timeline, ordered by start time.
type slot struct {
	start time.Time
	res   Reservation
}

func slotLess(a, b slot) bool { return a.start.Before(b.start) }

// Scheduler allocates reservations over waypoints. It is not safe for
// concurrent use; callers sharing an instance across goroutines must
// serialize access externally.
type Scheduler struct {
	nextID   uint64
	schedule map[uint64]*btree.BTreeG[slot]
	byID     map[uint64]Reservation
}

// NewScheduler returns an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{
		nextID:   1,
		schedule: make(map[uint64]*btree.BTreeG[slot]),
		byID:     make(map[uint64]Reservation),
	}
}

// Reserve tries each candidate waypoint in preference order and returns a
// reservation on the first whose timeline admits the interval starting at
// start. A nil duration requests an indefinite hold. ok=false means every
// candidate conflicts with an existing reservation.
func (s *Scheduler) Reserve(start time.Time, waypoints []Waypoint, duration *time.Duration) (Reservation, bool) {
	for _, wp := range waypoints {
		if s.isFree(wp, start, duration) {
			return s.commit(wp, start, duration), true
		}
	}
	return Reservation{}, false
}

// Cancel releases the reservation with the given id. It fails with
// UnknownReservationError when the id is not held.
func (s *Scheduler) Cancel(id uint64) error {
	res, ok := s.byID[id]
	if !ok {
		return UnknownReservationError{ID: id}
	}

	timeline := s.schedule[res.waypoint.Index]
	timeline.Delete(slot{start: res.start})
	delete(s.byID, id)
	return nil
}

// Len returns the number of live reservations.
func (s *Scheduler) Len() int { return len(s.byID) }

// isFree decides admission on one waypoint. The requested interval
// [start, end) conflicts with an existing reservation [s', e') iff the
// intervals overlap; touching endpoints are allowed. An indefinite hold
// has no end and therefore conflicts with everything at or after its
// start.
func (s *Scheduler) isFree(wp Waypoint, start time.Time, duration *time.Duration) bool {
	timeline, ok := s.schedule[wp.Index]
	if !ok || timeline.Len() == 0 {
		return true
	}

	probe := slot{start: start}

	// The predecessor (latest reservation starting at or before the
	// request) must have ended by the requested start.
	blocked := false
	timeline.DescendLessOrEqual(probe, func(item slot) bool {
		end, finite := item.res.End()
		if !finite || end.After(start) {
			blocked = true
		}
		return false
	})
	if blocked {
		return false
	}

	// The successor (earliest reservation starting strictly after the
	// request) must not begin before the requested interval ends. An
	// indefinite request admits no successor at all.
	timeline.AscendGreaterOrEqual(probe, func(item slot) bool {
		if item.start.Equal(start) {
			// Same start was already handled as the predecessor.
			return true
		}
		if duration == nil || item.start.Before(start.Add(*duration)) {
			blocked = true
		}
		return false
	})
	return !blocked
}

func (s *Scheduler) commit(wp Waypoint, start time.Time, duration *time.Duration) Reservation {
	var d *time.Duration
	if duration != nil {
		copied := *duration
		d = &copied
	}

	res := Reservation{
		id:       s.nextID,
		waypoint: wp,
		start:    start,
		duration: d,
	}
	s.nextID++

	timeline, ok := s.schedule[wp.Index]
	if !ok {
		timeline = btree.NewG[slot](2, slotLess)
		s.schedule[wp.Index] = timeline
	}
	timeline.ReplaceOrInsert(slot{start: start, res: res})
	s.byID[res.id] = res

	return res
}
