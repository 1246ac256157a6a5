package reservations

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	wp0 = Waypoint{Index: 0, Name: "wp0", Parking: true}
	wp1 = Waypoint{Index: 1, Name: "wp1"}
)

func hours(h int) *time.Duration {
	d := time.Duration(h) * time.Hour
	return &d
}

func TestReserveEmptySchedule(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	t.Run("indefinite hold", func(t *testing.T) {
		s := NewScheduler()
		res, ok := s.Reserve(now, []Waypoint{wp0, wp1}, nil)
		require.True(t, ok)
		assert.Equal(t, wp0, res.Waypoint())
		_, finite := res.End()
		assert.False(t, finite)
	})

	t.Run("finite hold", func(t *testing.T) {
		s := NewScheduler()
		res, ok := s.Reserve(now, []Waypoint{wp0, wp1}, hours(1))
		require.True(t, ok)
		assert.Equal(t, wp0, res.Waypoint())
		end, finite := res.End()
		require.True(t, finite)
		assert.Equal(t, now.Add(time.Hour), end)
	})
}

func TestReserveAgainstIndefiniteHold(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	at := now.Add(10 * time.Hour)

	newSystem := func(t *testing.T) *Scheduler {
		s := NewScheduler()
		_, ok := s.Reserve(at, []Waypoint{wp0}, nil)
		require.True(t, ok)
		return s
	}

	t.Run("no indefinite hold before it", func(t *testing.T) {
		s := newSystem(t)
		_, ok := s.Reserve(at.Add(-5*time.Hour), []Waypoint{wp0}, nil)
		assert.False(t, ok)
	})

	t.Run("no finite hold after it", func(t *testing.T) {
		s := newSystem(t)
		_, ok := s.Reserve(at.Add(5*time.Hour), []Waypoint{wp0}, hours(2))
		assert.False(t, ok)
	})

	t.Run("finite hold before it that does not reach it", func(t *testing.T) {
		s := newSystem(t)
		_, ok := s.Reserve(at.Add(-5*time.Hour), []Waypoint{wp0}, hours(2))
		assert.True(t, ok)
	})

	t.Run("no finite hold before it that crosses its start", func(t *testing.T) {
		s := newSystem(t)
		_, ok := s.Reserve(at.Add(-5*time.Hour), []Waypoint{wp0}, hours(7))
		assert.False(t, ok)
	})
}

func TestReserveAgainstFiniteHold(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	at := now.Add(10 * time.Hour)

	newSystem := func(t *testing.T) *Scheduler {
		s := NewScheduler()
		_, ok := s.Reserve(at, []Waypoint{wp0}, hours(2))
		require.True(t, ok)
		return s
	}

	t.Run("indefinite hold exactly at its end", func(t *testing.T) {
		s := newSystem(t)
		_, ok := s.Reserve(at.Add(2*time.Hour), []Waypoint{wp0}, nil)
		assert.True(t, ok, "touching endpoints are allowed")
	})

	t.Run("no indefinite hold before it", func(t *testing.T) {
		s := newSystem(t)
		_, ok := s.Reserve(at.Add(-2*time.Hour), []Waypoint{wp0}, nil)
		assert.False(t, ok)
	})

	t.Run("no overlapping hold before it", func(t *testing.T) {
		s := newSystem(t)
		_, ok := s.Reserve(at.Add(-2*time.Hour), []Waypoint{wp0}, hours(3))
		assert.False(t, ok)
	})

	t.Run("no enclosing hold", func(t *testing.T) {
		s := newSystem(t)
		_, ok := s.Reserve(at.Add(-2*time.Hour), []Waypoint{wp0}, hours(7))
		assert.False(t, ok)
	})

	t.Run("no identical hold", func(t *testing.T) {
		s := newSystem(t)
		_, ok := s.Reserve(at, []Waypoint{wp0}, hours(2))
		assert.False(t, ok)
	})

	t.Run("touching hold before it", func(t *testing.T) {
		s := newSystem(t)
		_, ok := s.Reserve(at.Add(-2*time.Hour), []Waypoint{wp0}, hours(2))
		assert.True(t, ok)
	})
}

func TestReserveFallsBackAcrossWaypoints(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	at := now.Add(10 * time.Hour)
	candidates := []Waypoint{wp0, wp1}

	s := NewScheduler()
	first, ok := s.Reserve(at, candidates, hours(2))
	require.True(t, ok)
	assert.Equal(t, wp0, first.Waypoint(), "waypoints are taken in preference order")

	second, ok := s.Reserve(at, candidates, hours(2))
	require.True(t, ok)
	assert.Equal(t, wp1, second.Waypoint(), "second identical request falls back to wp1")

	_, ok = s.Reserve(at, candidates, hours(2))
	assert.False(t, ok, "third identical request has no waypoint left")
}

func TestReservationIDsMonotone(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	s := NewScheduler()

	var last uint64
	for i := 0; i < 10; i++ {
		res, ok := s.Reserve(now.Add(time.Duration(i)*time.Hour), []Waypoint{wp0}, hours(1))
		require.True(t, ok)
		assert.Greater(t, res.ID(), last)
		last = res.ID()
	}
}

func TestCancelRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	s := NewScheduler()

	res, ok := s.Reserve(now, []Waypoint{wp0}, hours(2))
	require.True(t, ok)

	_, ok = s.Reserve(now, []Waypoint{wp0}, hours(2))
	require.False(t, ok, "slot is taken before cancellation")

	require.NoError(t, s.Cancel(res.ID()))
	assert.Equal(t, 0, s.Len())

	again, ok := s.Reserve(now, []Waypoint{wp0}, hours(2))
	require.True(t, ok, "identical request succeeds after cancellation")
	assert.Greater(t, again.ID(), res.ID())
}

func TestCancelUnknown(t *testing.T) {
	s := NewScheduler()
	err := s.Cancel(42)
	require.Error(t, err)

	var unknown UnknownReservationError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, uint64(42), unknown.ID)
}

func TestNoOverlappingReservationsProperty(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s := NewScheduler()

	// Issue a batch of overlapping requests; track what was accepted.
	type window struct{ start, end time.Time }
	var accepted []window
	for i := 0; i < 24; i++ {
		start := now.Add(time.Duration(i) * time.Hour)
		if res, ok := s.Reserve(start, []Waypoint{wp0}, hours(3)); ok {
			end, _ := res.End()
			accepted = append(accepted, window{res.Start(), end})
		}
	}
	require.NotEmpty(t, accepted)

	for i := range accepted {
		for j := i + 1; j < len(accepted); j++ {
			a, b := accepted[i], accepted[j]
			overlap := a.start.Before(b.end) && b.start.Before(a.end)
			assert.False(t, overlap, "windows %v and %v overlap", a, b)
		}
	}
}

func TestParkingSchedulerRejectsNonParking(t *testing.T) {
	s := NewScheduler()
	p := NewParkingScheduler(s)
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	_, _, err := p.Reserve(now, []Waypoint{wp0, wp1}, hours(1))
	require.Error(t, err, "wp1 is not a parking spot")

	res, ok, err := p.Reserve(now, []Waypoint{wp0}, hours(1))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, wp0, res.Waypoint())

	require.NoError(t, p.Cancel(res.ID()))
}
