package scheduler

import (
	"github.com/arnavshah/agenda-api-go/pkg/models"
)

// Suggestion is one alternative for a conflicting candidate. At most one of
// StartMinute and Duration is set.
type Suggestion struct {
	StartMinute *int
	Duration    *int
	Feasible    bool
}

// RoundUp rounds minute up to the next multiple of step.
func RoundUp(minute, step int) int {
	if rem := minute % step; rem != 0 {
		return minute + step - rem
	}
	return minute
}

// ShiftStart is the first granularity-aligned start after every conflict.
func ShiftStart(conflicts []models.ConflictingBooking, granularity int) int {
	lastEnd := conflicts[0].EndMinute
	for _, c := range conflicts[1:] {
		if c.EndMinute > lastEnd {
			lastEnd = c.EndMinute
		}
	}
	return RoundUp(lastEnd, granularity)
}

// ShrinkDuration is the longest granularity-aligned duration that keeps the
// candidate's start and ends before the first conflict. ok is false when not
// even one step fits.
func ShrinkDuration(c models.Candidate, conflicts []models.ConflictingBooking, granularity int) (int, bool) {
	firstStart := conflicts[0].StartMinute
	for _, cf := range conflicts[1:] {
		if cf.StartMinute < firstStart {
			firstStart = cf.StartMinute
		}
	}
	maxDuration := firstStart - c.StartMinute
	if maxDuration <= 0 {
		return 0, false
	}
	maxDuration = maxDuration / granularity * granularity
	return maxDuration, maxDuration >= granularity
}

// Suggest proposes a shifted start after the last conflict, or a shorter
// duration when the shift would run past closing. It only checks the day's
// closing time; blocks and later bookings are the caller's concern.
func Suggest(c models.Candidate, conflicts []models.ConflictingBooking, hours EffectiveHours, granularity int) Suggestion {
	if len(conflicts) == 0 || granularity <= 0 {
		return Suggestion{}
	}

	start := ShiftStart(conflicts, granularity)
	if hours.Open && start+c.DurationMinutes <= hours.CloseMinute() {
		return Suggestion{StartMinute: &start, Feasible: true}
	}
	return shrink(c, conflicts, granularity)
}

func shrink(c models.Candidate, conflicts []models.ConflictingBooking, granularity int) Suggestion {
	if d, ok := ShrinkDuration(c, conflicts, granularity); ok {
		return Suggestion{Duration: &d, Feasible: true}
	}
	return Suggestion{}
}
