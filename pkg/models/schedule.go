package models

import (
	"encoding/json"
	"fmt"
	"sort"

	"cloud.google.com/go/civil"
)

// TimeRange is a half-open [Start, End) span of minutes since midnight.
type TimeRange struct {
	Start int
	End   int
}

// Validate enforces Start < End within the day. End may be 1440 ("24:00").
func (r TimeRange) Validate() error {
	if r.Start < 0 || r.Start >= MinutesPerDay || r.End <= r.Start || r.End > MinutesPerDay {
		return fmt.Errorf("%w: range %s-%s", ErrInvalidSchedule, FormatClock(r.Start), FormatClock(r.End))
	}
	return nil
}

// Contains reports whether [start, end) lies fully inside the range.
func (r TimeRange) Contains(start, end int) bool {
	return start >= r.Start && end <= r.End
}

func (r TimeRange) String() string {
	return FormatClock(r.Start) + "-" + FormatClock(r.End)
}

func (r TimeRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}{FormatClock(r.Start), FormatClock(r.End)})
}

func (r *TimeRange) UnmarshalJSON(data []byte) error {
	var raw struct {
		Start clockValue `json:"start"`
		End   clockValue `json:"end"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Start, r.End = int(raw.Start), int(raw.End)
	return nil
}

// SortRanges returns a sorted copy of ranges.
func SortRanges(ranges []TimeRange) []TimeRange {
	out := append([]TimeRange(nil), ranges...)
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func validateRanges(ranges []TimeRange) error {
	sorted := SortRanges(ranges)
	for i, r := range sorted {
		if err := r.Validate(); err != nil {
			return err
		}
		if i > 0 && r.Start < sorted[i-1].End {
			return fmt.Errorf("%w: ranges %s and %s overlap", ErrInvalidSchedule, sorted[i-1], r)
		}
	}
	return nil
}

// DaySchedule is the opening state of one weekday.
type DaySchedule struct {
	IsOpen bool        `json:"is_open"`
	Ranges []TimeRange `json:"ranges"`
}

// Validate checks the day invariants: valid, non-overlapping ranges and no
// ranges on a closed day.
func (d DaySchedule) Validate() error {
	if !d.IsOpen && len(d.Ranges) > 0 {
		return fmt.Errorf("%w: closed day carries %d ranges", ErrInvalidSchedule, len(d.Ranges))
	}
	return validateRanges(d.Ranges)
}

// WeekSchedule is the clinic's base weekly hours. A missing weekday is closed.
type WeekSchedule map[Weekday]DaySchedule

// Validate checks every day of the week.
func (w WeekSchedule) Validate() error {
	for day, sched := range w {
		if !day.Valid() {
			return fmt.Errorf("%w: unknown weekday %d", ErrInvalidSchedule, int(day))
		}
		if err := sched.Validate(); err != nil {
			return fmt.Errorf("%s: %w", day, err)
		}
	}
	return nil
}

// ExceptionDay replaces a weekday's hours while an exception is in force.
// Active with no ranges means open with the base hours.
type ExceptionDay struct {
	Active bool        `json:"active"`
	Ranges []TimeRange `json:"ranges"`
}

// ScheduleException is a clinic-wide, date-bounded replacement of the weekly
// hours. Weekdays absent from Days keep the base schedule.
type ScheduleException struct {
	ID        string                   `json:"id"`
	Name      string                   `json:"name,omitempty"`
	DateStart civil.Date               `json:"date_start"`
	DateEnd   civil.Date               `json:"date_end"`
	Days      map[Weekday]ExceptionDay `json:"days"`
}

// Covers reports whether date falls in [DateStart, DateEnd].
func (e ScheduleException) Covers(date civil.Date) bool {
	return !date.Before(e.DateStart) && !date.After(e.DateEnd)
}

// Validate checks the exception invariants.
func (e ScheduleException) Validate() error {
	if !e.DateStart.IsValid() || !e.DateEnd.IsValid() {
		return fmt.Errorf("%w: exception %q has an invalid date", ErrInvalidSchedule, e.ID)
	}
	if e.DateEnd.Before(e.DateStart) {
		return fmt.Errorf("%w: exception %q ends %s before it starts %s", ErrInvalidSchedule, e.ID, e.DateEnd, e.DateStart)
	}
	for day, ex := range e.Days {
		if !day.Valid() {
			return fmt.Errorf("%w: exception %q: unknown weekday %d", ErrInvalidSchedule, e.ID, int(day))
		}
		if !ex.Active && len(ex.Ranges) > 0 {
			return fmt.Errorf("%w: exception %q: inactive %s carries ranges", ErrInvalidSchedule, e.ID, day)
		}
		if err := validateRanges(ex.Ranges); err != nil {
			return fmt.Errorf("exception %q %s: %w", e.ID, day, err)
		}
	}
	return nil
}

// ClinicSchedule is the snapshot a schedule provider hands to the validator.
type ClinicSchedule struct {
	ClinicID           string              `json:"clinic_id"`
	Week               WeekSchedule        `json:"week"`
	Exceptions         []ScheduleException `json:"exceptions"`
	GranularityMinutes int                 `json:"granularity_minutes"`
}
