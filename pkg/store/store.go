// Package store loads the snapshots the validator reads: bookings, clinic
// hours with their exceptions, and resource blocks.
package store

import (
	"context"
	"errors"

	"cloud.google.com/go/civil"
	"golang.org/x/sync/errgroup"

	"github.com/arnavshah/agenda-api-go/pkg/models"
)

// ErrNotFound is returned when a clinic or booking does not exist.
var ErrNotFound = errors.New("not found")

// BookingProvider lists existing appointments.
type BookingProvider interface {
	BookingsFor(ctx context.Context, clinicID, resourceID string, date civil.Date) ([]models.Booking, error)
	Booking(ctx context.Context, clinicID, bookingID string) (models.Booking, error)
}

// ScheduleProvider returns a clinic's weekly hours, exceptions and granularity.
type ScheduleProvider interface {
	ClinicSchedule(ctx context.Context, clinicID string) (models.ClinicSchedule, error)
}

// BlockProvider lists the blocks that can affect a resource on a date.
type BlockProvider interface {
	BlocksFor(ctx context.Context, clinicID, resourceID string, date civil.Date) ([]models.ScheduleBlock, error)
}

// Providers groups the three snapshot sources.
type Providers struct {
	Bookings  BookingProvider
	Schedules ScheduleProvider
	Blocks    BlockProvider

	// DefaultGranularity applies when a clinic has none stored.
	DefaultGranularity int
}

// Snapshot loads everything needed to validate a placement of resourceID on
// date. The three reads run concurrently; any failure cancels the others.
func (p Providers) Snapshot(ctx context.Context, clinicID, resourceID string, date civil.Date) (models.ValidationContext, error) {
	var (
		bookings []models.Booking
		schedule models.ClinicSchedule
		blocks   []models.ScheduleBlock
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bookings, err = p.Bookings.BookingsFor(gctx, clinicID, resourceID, date)
		return err
	})
	g.Go(func() error {
		var err error
		schedule, err = p.Schedules.ClinicSchedule(gctx, clinicID)
		return err
	})
	g.Go(func() error {
		var err error
		blocks, err = p.Blocks.BlocksFor(gctx, clinicID, resourceID, date)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.ValidationContext{}, err
	}

	granularity := schedule.GranularityMinutes
	if granularity == 0 {
		granularity = p.DefaultGranularity
	}
	return models.ValidationContext{
		Bookings:           bookings,
		WeekSchedule:       schedule.Week,
		Exceptions:         schedule.Exceptions,
		ScheduleBlocks:     blocks,
		GranularityMinutes: granularity,
	}, nil
}
