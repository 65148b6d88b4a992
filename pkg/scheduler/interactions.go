package scheduler

import (
	"fmt"

	"cloud.google.com/go/civil"

	"github.com/arnavshah/agenda-api-go/pkg/models"
)

// ValidateMove checks an existing booking dropped at a new date and start.
// The booking never conflicts with itself.
func (v *Validator) ValidateMove(b models.Booking, date civil.Date, startMinute int, vc models.ValidationContext) (models.ValidationResult, error) {
	vc.ExcludeBookingID = b.ID
	return v.Validate(models.CandidateFor(b, date, startMinute, b.DurationMinutes), vc)
}

// ValidateResize checks an existing booking stretched to newDuration.
// Adjustments are always allowed so a rejected resize still gets a suggestion.
func (v *Validator) ValidateResize(b models.Booking, newDuration int, vc models.ValidationContext) (models.ValidationResult, error) {
	vc.ExcludeBookingID = b.ID
	vc.AllowAdjustments = true
	return v.Validate(models.CandidateFor(b, b.Date, b.StartMinute, newDuration), vc)
}

// ValidateNudge moves a booking one granularity step earlier or later. Nudges
// never receive suggestions. A step off either end of the day is reported as
// outside hours rather than as malformed input.
func (v *Validator) ValidateNudge(b models.Booking, dir models.NudgeDirection, vc models.ValidationContext) (models.ValidationResult, error) {
	g := vc.Granularity()
	start := b.StartMinute
	switch dir {
	case models.NudgeUp:
		start -= g
	case models.NudgeDown:
		start += g
	default:
		return models.ValidationResult{}, fmt.Errorf("%w: unknown nudge direction %q", models.ErrInvalidCandidate, dir)
	}

	vc.ExcludeBookingID = b.ID
	vc.AllowAdjustments = false
	c := models.CandidateFor(b, b.Date, start, b.DurationMinutes)
	if start < 0 || c.EndMinute() > models.MinutesPerDay {
		if err := vc.Validate(); err != nil {
			return models.ValidationResult{}, err
		}
		return v.finish(c, models.ValidationResult{
			Conflicts:           []models.ConflictingBooking{},
			Reason:              models.ReasonOutsideHours,
			Outcome:             models.OutcomeRejectedOutsideHours,
			OriginalStartMinute: start,
			OriginalDuration:    b.DurationMinutes,
		}), nil
	}
	return v.Validate(c, vc)
}
