package scheduler

import (
	"cloud.google.com/go/civil"

	"github.com/arnavshah/agenda-api-go/pkg/models"
)

// BlockApplies reports whether block closes resourceID at minute on date.
// Recurring blocks are evaluated as a predicate, never expanded into dates.
func BlockApplies(block models.ScheduleBlock, resourceID string, date civil.Date, minute int) bool {
	if minute < block.StartTime || minute >= block.EndTime || !block.HasResource(resourceID) {
		return false
	}

	switch {
	case block.Recurring != nil:
		r := block.Recurring
		return !date.Before(r.DateStart) &&
			!date.After(r.RecurrenceEndDate) &&
			r.OnWeekday(models.WeekdayOf(date))
	case block.OneOff != nil:
		return !date.Before(block.OneOff.DateStart) && !date.After(block.OneOff.LastDate())
	}
	return false
}

// MatchBlock returns the first block in list order that closes the resource at
// that moment, or nil.
func MatchBlock(resourceID string, date civil.Date, minute int, blocks []models.ScheduleBlock) *models.ScheduleBlock {
	for i := range blocks {
		if BlockApplies(blocks[i], resourceID, date, minute) {
			return &blocks[i]
		}
	}
	return nil
}
