package scheduler

import (
	"cloud.google.com/go/civil"

	"github.com/arnavshah/agenda-api-go/pkg/models"
)

// EffectiveHours is the resolved opening state of a clinic on one date.
type EffectiveHours struct {
	Open        bool
	Ranges      []models.TimeRange
	ExceptionID string // set when an exception decided the day
}

// OpenMinute is the start of the day's envelope.
func (h EffectiveHours) OpenMinute() int {
	if !h.Open {
		return 0
	}
	return h.Ranges[0].Start
}

// CloseMinute is the end of the day's envelope.
func (h EffectiveHours) CloseMinute() int {
	if !h.Open {
		return 0
	}
	return h.Ranges[len(h.Ranges)-1].End
}

// Fits reports whether [start, end) lies inside a single open range. Spanning
// two ranges across a gap does not fit.
func (h EffectiveHours) Fits(start, end int) bool {
	if !h.Open {
		return false
	}
	for _, r := range h.Ranges {
		if r.Contains(start, end) {
			return true
		}
	}
	return false
}

// ResolveHours returns the opening hours in force on date. The first exception
// in the list whose date span contains date wins; later overlapping exceptions
// are ignored. An exception that does not mention the weekday leaves the base
// schedule in place.
func ResolveHours(date civil.Date, week models.WeekSchedule, exceptions []models.ScheduleException) EffectiveHours {
	weekday := models.WeekdayOf(date)
	base := week[weekday]
	hours := EffectiveHours{Open: base.IsOpen, Ranges: base.Ranges}

	for _, ex := range exceptions {
		if !ex.Covers(date) {
			continue
		}
		hours.ExceptionID = ex.ID
		if day, ok := ex.Days[weekday]; ok {
			switch {
			case !day.Active:
				hours.Open, hours.Ranges = false, nil
			case len(day.Ranges) > 0:
				hours.Open, hours.Ranges = true, day.Ranges
			default:
				// open, hours inherited from the base day
				hours.Open, hours.Ranges = true, base.Ranges
			}
		}
		break
	}

	if !hours.Open || len(hours.Ranges) == 0 {
		hours.Open, hours.Ranges = false, nil
		return hours
	}
	hours.Ranges = models.SortRanges(hours.Ranges)
	return hours
}
