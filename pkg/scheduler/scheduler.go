package scheduler

import (
	"go.uber.org/zap"

	"github.com/arnavshah/agenda-api-go/pkg/models"
)

// Recorder receives one observation per finished validation.
type Recorder interface {
	Observe(outcome models.Outcome, conflicts int)
}

// Validator is the single entry point every caller goes through, whatever UI
// interaction produced the candidate. It holds no per-call state and is safe
// for concurrent use.
type Validator struct {
	logger   *zap.Logger
	recorder Recorder
}

// NewValidator creates a validator. Both arguments may be nil.
func NewValidator(logger *zap.Logger, recorder Recorder) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{logger: logger, recorder: recorder}
}

// Validate decides whether the candidate may be placed. Malformed input yields
// an error; every business rejection comes back in the result.
func (v *Validator) Validate(c models.Candidate, vc models.ValidationContext) (models.ValidationResult, error) {
	if err := c.Validate(); err != nil {
		v.logger.Warn("rejected malformed candidate", zap.Error(err))
		return models.ValidationResult{}, err
	}
	if err := vc.Validate(); err != nil {
		v.logger.Warn("rejected malformed validation context", zap.Error(err))
		return models.ValidationResult{}, err
	}
	return v.finish(c, v.evaluate(c, vc)), nil
}

func (v *Validator) finish(c models.Candidate, res models.ValidationResult) models.ValidationResult {
	if v.recorder != nil {
		v.recorder.Observe(res.Outcome, len(res.Conflicts))
	}
	v.logger.Debug("slot validated",
		zap.String("resource_id", c.ResourceID),
		zap.String("date", c.Date.String()),
		zap.String("start", models.FormatClock(c.StartMinute)),
		zap.Int("duration", c.DurationMinutes),
		zap.String("outcome", string(res.Outcome)),
		zap.Int("conflicts", len(res.Conflicts)),
	)
	return res
}

// evaluate assumes c and vc have been checked.
func (v *Validator) evaluate(c models.Candidate, vc models.ValidationContext) models.ValidationResult {
	res := models.ValidationResult{
		Conflicts:           []models.ConflictingBooking{},
		OriginalStartMinute: c.StartMinute,
		OriginalDuration:    c.DurationMinutes,
	}

	hours := ResolveHours(c.Date, vc.WeekSchedule, vc.Exceptions)
	if !hours.Fits(c.StartMinute, c.EndMinute()) {
		res.Reason = models.ReasonOutsideHours
		res.Outcome = models.OutcomeRejectedOutsideHours
		return res
	}

	if block := MatchBlock(c.ResourceID, c.Date, c.StartMinute, vc.ScheduleBlocks); block != nil {
		res.Reason = models.ReasonBlocked
		res.Outcome = models.OutcomeRejectedBlocked
		res.BlockedBy = &models.BlockRef{ID: block.ID, Description: block.Description, Recurring: block.Recurring != nil}
		return res
	}

	conflicts := FindConflicts(c, vc.Bookings, vc.ExcludeBookingID)
	if len(conflicts) == 0 {
		res.IsValid = true
		res.CanProceed = true
		res.Outcome = models.OutcomeAccepted
		return res
	}
	res.Conflicts = conflicts

	if !vc.AllowAdjustments {
		res.Reason = models.ReasonConflict
		res.Outcome = models.OutcomeRejectedNoSuggestion
		return res
	}

	s := v.suggest(c, conflicts, hours, vc)
	if !s.Feasible {
		res.Reason = models.ReasonConflictNoSuggestion
		res.Outcome = models.OutcomeRejectedNoSuggestion
		return res
	}
	res.CanProceed = true
	res.Reason = models.ReasonConflict
	res.Outcome = models.OutcomeRejectedWithSuggestion
	res.SuggestedStartMinute = s.StartMinute
	res.SuggestedDuration = s.Duration
	if s.StartMinute != nil {
		res.SuggestedStartTime = models.FormatClock(*s.StartMinute)
	}
	return res
}

// suggest re-validates every shifted start so that applying it cannot land on
// another booking, a block or a gap in the opening hours. Bookings hit by the
// shifted slot join the conflict set and the shift is recomputed; the start
// only moves forward, so the loop ends by closing time at the latest.
func (v *Validator) suggest(c models.Candidate, conflicts []models.ConflictingBooking, hours EffectiveHours, vc models.ValidationContext) Suggestion {
	g := vc.Granularity()
	known := append([]models.ConflictingBooking(nil), conflicts...)

	for {
		s := Suggest(c, known, hours, g)
		if s.StartMinute == nil {
			return s
		}

		moved := c
		moved.StartMinute = *s.StartMinute
		if !hours.Fits(moved.StartMinute, moved.EndMinute()) ||
			MatchBlock(moved.ResourceID, moved.Date, moved.StartMinute, vc.ScheduleBlocks) != nil {
			return shrink(c, conflicts, g)
		}

		next := FindConflicts(moved, vc.Bookings, vc.ExcludeBookingID)
		if len(next) == 0 {
			return s
		}
		known = append(known, next...)
	}
}
