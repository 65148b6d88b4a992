package scheduler

import (
	"sync"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/agenda-api-go/pkg/models"
)

func date(t *testing.T, s string) civil.Date {
	t.Helper()
	d, err := civil.ParseDate(s)
	require.NoError(t, err)
	return d
}

func clock(t *testing.T, s string) int {
	t.Helper()
	m, err := models.ParseClock(s)
	require.NoError(t, err)
	return m
}

func rng(t *testing.T, start, end string) models.TimeRange {
	t.Helper()
	return models.TimeRange{Start: clock(t, start), End: clock(t, end)}
}

// weekdays opens Monday to Saturday with the given ranges; Sunday is closed.
func weekdays(ranges ...models.TimeRange) models.WeekSchedule {
	week := models.WeekSchedule{}
	for _, d := range []models.Weekday{models.Monday, models.Tuesday, models.Wednesday, models.Thursday, models.Friday, models.Saturday} {
		week[d] = models.DaySchedule{IsOpen: true, Ranges: ranges}
	}
	week[models.Sunday] = models.DaySchedule{}
	return week
}

func booking(t *testing.T, id, resource, day, start string, duration int) models.Booking {
	t.Helper()
	return models.Booking{
		ID:              id,
		Name:            "Booking " + id,
		ResourceID:      resource,
		Date:            date(t, day),
		StartMinute:     clock(t, start),
		DurationMinutes: duration,
	}
}

func candidate(t *testing.T, resource, day, start string, duration int) models.Candidate {
	t.Helper()
	return models.Candidate{
		ResourceID:      resource,
		Date:            date(t, day),
		StartMinute:     clock(t, start),
		DurationMinutes: duration,
	}
}

type countingRecorder struct {
	mu       sync.Mutex
	outcomes map[models.Outcome]int
}

func (r *countingRecorder) Observe(outcome models.Outcome, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outcomes == nil {
		r.outcomes = map[models.Outcome]int{}
	}
	r.outcomes[outcome]++
}
