package models

import (
	"fmt"

	"cloud.google.com/go/civil"
)

// DefaultGranularity is the slot step used when a context leaves it unset.
const DefaultGranularity = 15

// Booking is an existing appointment on a resource. The validator never
// mutates it.
type Booking struct {
	ID              string     `json:"id"`
	Name            string     `json:"name,omitempty"`
	ResourceID      string     `json:"resource_id"`
	Date            civil.Date `json:"date"`
	StartMinute     int        `json:"start_minute"`
	DurationMinutes int        `json:"duration_minutes"`
}

// EndMinute is the exclusive end of the booking.
func (b Booking) EndMinute() int {
	return b.StartMinute + b.DurationMinutes
}

// Validate rejects bookings that cannot be placed on a day at all.
func (b Booking) Validate() error {
	if b.StartMinute < 0 || b.StartMinute >= MinutesPerDay || b.DurationMinutes <= 0 {
		return fmt.Errorf("%w: booking %q at minute %d for %d minutes", ErrInvalidBooking, b.ID, b.StartMinute, b.DurationMinutes)
	}
	return nil
}

// Candidate is the proposed placement under evaluation.
type Candidate struct {
	ResourceID      string     `json:"resource_id" binding:"required"`
	Date            civil.Date `json:"date"`
	StartMinute     int        `json:"start_minute"`
	DurationMinutes int        `json:"duration_minutes"`
}

// EndMinute is the exclusive end of the candidate.
func (c Candidate) EndMinute() int {
	return c.StartMinute + c.DurationMinutes
}

// Validate checks the candidate is a well-formed interval inside one day.
func (c Candidate) Validate() error {
	switch {
	case c.ResourceID == "":
		return fmt.Errorf("%w: resource id is required", ErrInvalidCandidate)
	case !c.Date.IsValid():
		return fmt.Errorf("%w: invalid date %s", ErrInvalidCandidate, c.Date)
	case c.StartMinute < 0 || c.StartMinute >= MinutesPerDay:
		return fmt.Errorf("%w: start minute %d outside the day", ErrInvalidCandidate, c.StartMinute)
	case c.DurationMinutes <= 0:
		return fmt.Errorf("%w: duration %d must be positive", ErrInvalidCandidate, c.DurationMinutes)
	case c.EndMinute() > MinutesPerDay:
		return fmt.Errorf("%w: interval %s+%dm runs past midnight", ErrInvalidCandidate, FormatClock(c.StartMinute), c.DurationMinutes)
	}
	return nil
}

// CandidateFor places an existing booking at a new date and start.
func CandidateFor(b Booking, date civil.Date, startMinute, duration int) Candidate {
	return Candidate{ResourceID: b.ResourceID, Date: date, StartMinute: startMinute, DurationMinutes: duration}
}

// ValidationContext carries the snapshots and options for one validation.
type ValidationContext struct {
	Bookings           []Booking           `json:"bookings"`
	WeekSchedule       WeekSchedule        `json:"week_schedule"`
	Exceptions         []ScheduleException `json:"exceptions"`
	ScheduleBlocks     []ScheduleBlock     `json:"schedule_blocks"`
	GranularityMinutes int                 `json:"granularity_minutes"`
	AllowAdjustments   bool                `json:"allow_adjustments"`
	ExcludeBookingID   string              `json:"exclude_booking_id,omitempty"`
}

// Granularity returns the effective slot step.
func (vc ValidationContext) Granularity() int {
	if vc.GranularityMinutes == 0 {
		return DefaultGranularity
	}
	return vc.GranularityMinutes
}

// Validate checks every snapshot in the context.
func (vc ValidationContext) Validate() error {
	if g := vc.GranularityMinutes; g < 0 || g > MinutesPerDay {
		return fmt.Errorf("%w: %d minutes", ErrInvalidGranularity, g)
	}
	if err := vc.WeekSchedule.Validate(); err != nil {
		return err
	}
	for _, e := range vc.Exceptions {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	for _, b := range vc.ScheduleBlocks {
		if err := b.Validate(); err != nil {
			return err
		}
	}
	for _, b := range vc.Bookings {
		if err := b.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Reason is the machine-readable cause of a rejection.
type Reason string

const (
	ReasonOutsideHours         Reason = "OUTSIDE_HOURS"
	ReasonBlocked              Reason = "BLOCKED"
	ReasonConflict             Reason = "CONFLICT"
	ReasonConflictNoSuggestion Reason = "CONFLICT_NO_SUGGESTION"
)

// Outcome names the terminal state a validation ended in.
type Outcome string

const (
	OutcomeAccepted               Outcome = "accepted"
	OutcomeRejectedOutsideHours   Outcome = "rejected-outside-hours"
	OutcomeRejectedBlocked        Outcome = "rejected-blocked"
	OutcomeRejectedWithSuggestion Outcome = "rejected-with-suggestion"
	OutcomeRejectedNoSuggestion   Outcome = "rejected-no-suggestion"
)

// ConflictingBooking is an existing booking overlapping the candidate.
type ConflictingBooking struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

// BlockRef identifies the block that rejected a candidate.
type BlockRef struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	Recurring   bool   `json:"recurring"`
}

// ValidationResult is the answer for one candidate. Business rejections are
// always reported here, never as errors.
type ValidationResult struct {
	IsValid              bool                 `json:"is_valid"`
	CanProceed           bool                 `json:"can_proceed"`
	Conflicts            []ConflictingBooking `json:"conflicts"`
	SuggestedStartMinute *int                 `json:"suggested_start_minute,omitempty"`
	SuggestedStartTime   string               `json:"suggested_start_time,omitempty"`
	SuggestedDuration    *int                 `json:"suggested_duration,omitempty"`
	Reason               Reason               `json:"reason,omitempty"`
	Outcome              Outcome              `json:"outcome"`
	BlockedBy            *BlockRef            `json:"blocked_by,omitempty"`
	OriginalStartMinute  int                  `json:"original_start_minute"`
	OriginalDuration     int                  `json:"original_duration"`
}

// NudgeDirection moves a booking one granularity step earlier or later.
type NudgeDirection string

const (
	NudgeUp   NudgeDirection = "up"
	NudgeDown NudgeDirection = "down"
)
