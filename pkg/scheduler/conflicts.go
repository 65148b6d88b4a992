package scheduler

import (
	"sort"

	"github.com/arnavshah/agenda-api-go/pkg/models"
)

// Overlap checks if two half-open minute ranges overlap. Back-to-back ranges
// do not.
func Overlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// FindConflicts returns the bookings on the candidate's resource and date that
// overlap it, ordered by start minute.
func FindConflicts(c models.Candidate, bookings []models.Booking, excludeBookingID string) []models.ConflictingBooking {
	conflicts := []models.ConflictingBooking{}
	for _, b := range bookings {
		if excludeBookingID != "" && b.ID == excludeBookingID {
			continue
		}
		if b.ResourceID != c.ResourceID || b.Date != c.Date {
			continue
		}
		if !Overlap(c.StartMinute, c.EndMinute(), b.StartMinute, b.EndMinute()) {
			continue
		}
		conflicts = append(conflicts, toConflict(b))
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		if conflicts[i].StartMinute != conflicts[j].StartMinute {
			return conflicts[i].StartMinute < conflicts[j].StartMinute
		}
		return conflicts[i].ID < conflicts[j].ID
	})
	return conflicts
}

func toConflict(b models.Booking) models.ConflictingBooking {
	name := b.Name
	if name == "" {
		name = "Unnamed appointment"
	}
	return models.ConflictingBooking{
		ID:          b.ID,
		Name:        name,
		StartMinute: b.StartMinute,
		EndMinute:   b.EndMinute(),
		StartTime:   models.FormatClock(b.StartMinute),
		EndTime:     models.FormatClock(b.EndMinute()),
	}
}
