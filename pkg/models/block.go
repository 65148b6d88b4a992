package models

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// OneOffSpan is the date window of a non-recurring block. A nil DateEnd is a
// single-day block on DateStart.
type OneOffSpan struct {
	DateStart civil.Date  `json:"date_start"`
	DateEnd   *civil.Date `json:"date_end,omitempty"`
}

// LastDate returns the inclusive last day of the span.
func (s OneOffSpan) LastDate() civil.Date {
	if s.DateEnd == nil {
		return s.DateStart
	}
	return *s.DateEnd
}

// Recurrence repeats a block on the given weekdays from DateStart until
// RecurrenceEndDate, both inclusive.
type Recurrence struct {
	DateStart         civil.Date `json:"date_start"`
	RecurrenceEndDate civil.Date `json:"recurrence_end_date"`
	DaysOfWeek        []Weekday  `json:"days_of_week"`
}

// OnWeekday reports whether the recurrence repeats on day.
func (r Recurrence) OnWeekday(day Weekday) bool {
	for _, d := range r.DaysOfWeek {
		if d == day {
			return true
		}
	}
	return false
}

// ScheduleBlock closes one or more resources for a time window. Exactly one of
// OneOff and Recurring is set; use NewOneOffBlock, NewRecurringBlock or
// BlockSpec.Build to get a checked value.
type ScheduleBlock struct {
	ID          string      `json:"id"`
	ResourceIDs []string    `json:"resource_ids"`
	StartTime   int         `json:"start_minute"`
	EndTime     int         `json:"end_minute"`
	Description string      `json:"description,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	OneOff      *OneOffSpan `json:"one_off,omitempty"`
	Recurring   *Recurrence `json:"recurring,omitempty"`
}

// NewOneOffBlock builds a single-day or date-range block.
func NewOneOffBlock(id string, resourceIDs []string, span OneOffSpan, startTime, endTime int) (ScheduleBlock, error) {
	b := ScheduleBlock{ID: id, ResourceIDs: resourceIDs, StartTime: startTime, EndTime: endTime, OneOff: &span}
	return b, b.Validate()
}

// NewRecurringBlock builds a weekly recurring block.
func NewRecurringBlock(id string, resourceIDs []string, rec Recurrence, startTime, endTime int) (ScheduleBlock, error) {
	b := ScheduleBlock{ID: id, ResourceIDs: resourceIDs, StartTime: startTime, EndTime: endTime, Recurring: &rec}
	return b, b.Validate()
}

// HasResource reports whether the block applies to resourceID.
func (b ScheduleBlock) HasResource(resourceID string) bool {
	for _, id := range b.ResourceIDs {
		if id == resourceID {
			return true
		}
	}
	return false
}

// Validate enforces the variant-specific invariants.
func (b ScheduleBlock) Validate() error {
	if len(b.ResourceIDs) == 0 {
		return fmt.Errorf("%w: block %q has no resources", ErrInvalidBlock, b.ID)
	}
	if b.StartTime < 0 || b.StartTime >= MinutesPerDay || b.EndTime > MinutesPerDay || b.EndTime <= b.StartTime {
		return fmt.Errorf("%w: block %q window %s-%s", ErrInvalidBlock, b.ID, FormatClock(b.StartTime), FormatClock(b.EndTime))
	}

	switch {
	case b.OneOff != nil && b.Recurring != nil:
		return fmt.Errorf("%w: block %q is both one-off and recurring", ErrInvalidBlock, b.ID)
	case b.OneOff != nil:
		if !b.OneOff.DateStart.IsValid() {
			return fmt.Errorf("%w: block %q has an invalid start date", ErrInvalidBlock, b.ID)
		}
		if b.OneOff.DateEnd != nil && b.OneOff.DateEnd.Before(b.OneOff.DateStart) {
			return fmt.Errorf("%w: block %q ends before it starts", ErrInvalidBlock, b.ID)
		}
	case b.Recurring != nil:
		r := b.Recurring
		if !r.DateStart.IsValid() || !r.RecurrenceEndDate.IsValid() {
			return fmt.Errorf("%w: recurring block %q needs a start and a recurrence end date", ErrInvalidBlock, b.ID)
		}
		if r.RecurrenceEndDate.Before(r.DateStart) {
			return fmt.Errorf("%w: recurring block %q ends before it starts", ErrInvalidBlock, b.ID)
		}
		if len(r.DaysOfWeek) == 0 {
			return fmt.Errorf("%w: recurring block %q has no days of week", ErrInvalidBlock, b.ID)
		}
		for _, d := range r.DaysOfWeek {
			if !d.Valid() {
				return fmt.Errorf("%w: recurring block %q: unknown weekday %d", ErrInvalidBlock, b.ID, int(d))
			}
		}
	default:
		return fmt.Errorf("%w: block %q is neither one-off nor recurring", ErrInvalidBlock, b.ID)
	}
	return nil
}

// BlockSpec is the flat form a block arrives in from the clinic back office:
// one record with nullable fields and an is_recurring flag.
type BlockSpec struct {
	ID                string      `json:"id"`
	ResourceIDs       []string    `json:"resource_ids"`
	DateStart         civil.Date  `json:"date_start"`
	DateEnd           *civil.Date `json:"date_end,omitempty"`
	StartTime         string      `json:"start_time"`
	EndTime           string      `json:"end_time"`
	IsRecurring       bool        `json:"is_recurring"`
	DaysOfWeek        []Weekday   `json:"days_of_week,omitempty"`
	RecurrenceEndDate *civil.Date `json:"recurrence_end_date,omitempty"`
	Description       string      `json:"description,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
}

// Build converts the flat form into the tagged variant, rejecting
// combinations the variant cannot represent.
func (s BlockSpec) Build() (ScheduleBlock, error) {
	start, err := ParseClock(s.StartTime)
	if err != nil {
		return ScheduleBlock{}, fmt.Errorf("%w: block %q: %v", ErrInvalidBlock, s.ID, err)
	}
	end, err := ParseClock(s.EndTime)
	if err != nil {
		return ScheduleBlock{}, fmt.Errorf("%w: block %q: %v", ErrInvalidBlock, s.ID, err)
	}

	var b ScheduleBlock
	if s.IsRecurring {
		if s.DateEnd != nil {
			return ScheduleBlock{}, fmt.Errorf("%w: recurring block %q must not set date_end", ErrInvalidBlock, s.ID)
		}
		if s.RecurrenceEndDate == nil {
			return ScheduleBlock{}, fmt.Errorf("%w: recurring block %q needs recurrence_end_date", ErrInvalidBlock, s.ID)
		}
		b, err = NewRecurringBlock(s.ID, s.ResourceIDs, Recurrence{
			DateStart:         s.DateStart,
			RecurrenceEndDate: *s.RecurrenceEndDate,
			DaysOfWeek:        s.DaysOfWeek,
		}, start, end)
	} else {
		b, err = NewOneOffBlock(s.ID, s.ResourceIDs, OneOffSpan{DateStart: s.DateStart, DateEnd: s.DateEnd}, start, end)
	}
	if err != nil {
		return ScheduleBlock{}, err
	}
	b.Description = s.Description
	b.CreatedAt = s.CreatedAt
	return b, nil
}

// Spec flattens the block back into its back-office form.
func (b ScheduleBlock) Spec() BlockSpec {
	s := BlockSpec{
		ID:          b.ID,
		ResourceIDs: b.ResourceIDs,
		StartTime:   FormatClock(b.StartTime),
		EndTime:     FormatClock(b.EndTime),
		Description: b.Description,
		CreatedAt:   b.CreatedAt,
	}
	if b.Recurring != nil {
		end := b.Recurring.RecurrenceEndDate
		s.IsRecurring = true
		s.DateStart = b.Recurring.DateStart
		s.DaysOfWeek = b.Recurring.DaysOfWeek
		s.RecurrenceEndDate = &end
	} else if b.OneOff != nil {
		s.DateStart = b.OneOff.DateStart
		s.DateEnd = b.OneOff.DateEnd
	}
	return s
}
