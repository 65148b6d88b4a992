package models

import "errors"

// Contract violations. These are programming errors on the caller's side and
// are never reported as a ValidationResult.
var (
	ErrInvalidCandidate   = errors.New("invalid candidate")
	ErrInvalidSchedule    = errors.New("invalid schedule")
	ErrInvalidBlock       = errors.New("invalid schedule block")
	ErrInvalidBooking     = errors.New("invalid booking")
	ErrInvalidGranularity = errors.New("invalid granularity")
)
