package store

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/arnavshah/agenda-api-go/pkg/database"
	"github.com/arnavshah/agenda-api-go/pkg/models"
)

// GormStore reads snapshots from the clinic tables.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) BookingsFor(ctx context.Context, clinicID, resourceID string, date civil.Date) ([]models.Booking, error) {
	var rows []database.Booking
	err := s.DB.WithContext(ctx).
		Where("clinic_id = ? AND resource_id = ? AND date = ?", clinicID, resourceID, date.String()).
		Order("start_minute, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}

	out := make([]models.Booking, 0, len(rows))
	for _, r := range rows {
		b, err := bookingFromRow(r)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *GormStore) Booking(ctx context.Context, clinicID, bookingID string) (models.Booking, error) {
	var row database.Booking
	err := s.DB.WithContext(ctx).Where("clinic_id = ? AND id = ?", clinicID, bookingID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Booking{}, fmt.Errorf("booking %q: %w", bookingID, ErrNotFound)
	}
	if err != nil {
		return models.Booking{}, fmt.Errorf("load booking: %w", err)
	}
	return bookingFromRow(row)
}

func (s *GormStore) ClinicSchedule(ctx context.Context, clinicID string) (models.ClinicSchedule, error) {
	db := s.DB.WithContext(ctx)

	var row database.ClinicSchedule
	err := db.Where("clinic_id = ?", clinicID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ClinicSchedule{}, fmt.Errorf("clinic %q: %w", clinicID, ErrNotFound)
	}
	if err != nil {
		return models.ClinicSchedule{}, fmt.Errorf("load schedule: %w", err)
	}

	// Order matters: the first covering exception wins.
	var exRows []database.ScheduleException
	if err := db.Where("clinic_id = ?", clinicID).Order("date_start, id").Find(&exRows).Error; err != nil {
		return models.ClinicSchedule{}, fmt.Errorf("load exceptions: %w", err)
	}

	sched := models.ClinicSchedule{
		ClinicID:           row.ClinicID,
		Week:               row.Week,
		Exceptions:         make([]models.ScheduleException, 0, len(exRows)),
		GranularityMinutes: row.GranularityMinutes,
	}
	for _, r := range exRows {
		ex, err := exceptionFromRow(r)
		if err != nil {
			return models.ClinicSchedule{}, err
		}
		sched.Exceptions = append(sched.Exceptions, ex)
	}
	return sched, nil
}

// BlocksFor returns the blocks whose date window contains date, in creation
// order. The weekday and minute checks are left to the validator.
func (s *GormStore) BlocksFor(ctx context.Context, clinicID, resourceID string, date civil.Date) ([]models.ScheduleBlock, error) {
	blocks, err := s.ListBlocks(ctx, clinicID, date, date)
	if err != nil {
		return nil, err
	}
	out := blocks[:0]
	for _, b := range blocks {
		// resource_ids is a JSON column, filter here rather than per dialect.
		if b.HasResource(resourceID) {
			out = append(out, b)
		}
	}
	return out, nil
}

// ListBlocks returns every block of the clinic whose date window overlaps
// [from, to], in creation order.
func (s *GormStore) ListBlocks(ctx context.Context, clinicID string, from, to civil.Date) ([]models.ScheduleBlock, error) {
	var rows []database.ScheduleBlock
	err := s.DB.WithContext(ctx).
		Where("clinic_id = ? AND date_start <= ?", clinicID, to.String()).
		Where("((is_recurring = ? AND recurrence_end_date >= ?) OR (is_recurring = ? AND COALESCE(date_end, date_start) >= ?))",
			true, from.String(), false, from.String()).
		Order("created_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load blocks: %w", err)
	}

	out := make([]models.ScheduleBlock, 0, len(rows))
	for _, r := range rows {
		b, err := blockFromRow(r)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// ListExceptions returns the clinic's exceptions overlapping [from, to] in
// the order ClinicSchedule resolves them.
func (s *GormStore) ListExceptions(ctx context.Context, clinicID string, from, to civil.Date) ([]models.ScheduleException, error) {
	var rows []database.ScheduleException
	err := s.DB.WithContext(ctx).
		Where("clinic_id = ? AND date_start <= ? AND date_end >= ?", clinicID, to.String(), from.String()).
		Order("date_start, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load exceptions: %w", err)
	}

	out := make([]models.ScheduleException, 0, len(rows))
	for _, r := range rows {
		ex, err := exceptionFromRow(r)
		if err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	return out, nil
}

// SaveBooking inserts or replaces a booking.
func (s *GormStore) SaveBooking(ctx context.Context, clinicID string, b models.Booking) error {
	if err := b.Validate(); err != nil {
		return err
	}
	row := database.Booking{
		ID:              b.ID,
		ClinicID:        clinicID,
		ResourceID:      b.ResourceID,
		Date:            b.Date.String(),
		Name:            b.Name,
		StartMinute:     b.StartMinute,
		DurationMinutes: b.DurationMinutes,
	}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

// SaveSchedule replaces a clinic's weekly hours and granularity. Exceptions
// are stored separately with SaveException.
func (s *GormStore) SaveSchedule(ctx context.Context, sched models.ClinicSchedule) error {
	if err := sched.Week.Validate(); err != nil {
		return err
	}
	if sched.GranularityMinutes < 0 {
		return fmt.Errorf("%w: %d", models.ErrInvalidGranularity, sched.GranularityMinutes)
	}
	row := database.ClinicSchedule{
		ClinicID:           sched.ClinicID,
		Week:               sched.Week,
		GranularityMinutes: sched.GranularityMinutes,
	}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

func (s *GormStore) SaveException(ctx context.Context, clinicID string, ex models.ScheduleException) error {
	if err := ex.Validate(); err != nil {
		return err
	}
	row := database.ScheduleException{
		ID:        ex.ID,
		ClinicID:  clinicID,
		Name:      ex.Name,
		DateStart: ex.DateStart.String(),
		DateEnd:   ex.DateEnd.String(),
		Days:      ex.Days,
	}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

func (s *GormStore) SaveBlock(ctx context.Context, clinicID string, b models.ScheduleBlock) error {
	if err := b.Validate(); err != nil {
		return err
	}
	spec := b.Spec()
	row := database.ScheduleBlock{
		ID:                spec.ID,
		ClinicID:          clinicID,
		ResourceIDs:       spec.ResourceIDs,
		DateStart:         spec.DateStart.String(),
		DateEnd:           dateString(spec.DateEnd),
		StartTime:         spec.StartTime,
		EndTime:           spec.EndTime,
		IsRecurring:       spec.IsRecurring,
		DaysOfWeek:        spec.DaysOfWeek,
		RecurrenceEndDate: dateString(spec.RecurrenceEndDate),
		Description:       spec.Description,
		CreatedAt:         spec.CreatedAt,
	}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

func (s *GormStore) DeleteBooking(ctx context.Context, clinicID, bookingID string) error {
	return s.deleteRow(ctx, &database.Booking{}, "booking", clinicID, bookingID)
}

func (s *GormStore) DeleteBlock(ctx context.Context, clinicID, blockID string) error {
	return s.deleteRow(ctx, &database.ScheduleBlock{}, "block", clinicID, blockID)
}

// DeleteException removes an exception. Callers caching ClinicSchedule must
// invalidate the clinic afterwards.
func (s *GormStore) DeleteException(ctx context.Context, clinicID, exceptionID string) error {
	return s.deleteRow(ctx, &database.ScheduleException{}, "exception", clinicID, exceptionID)
}

func (s *GormStore) deleteRow(ctx context.Context, model interface{}, kind, clinicID, id string) error {
	res := s.DB.WithContext(ctx).Where("clinic_id = ? AND id = ?", clinicID, id).Delete(model)
	if res.Error != nil {
		return fmt.Errorf("delete %s: %w", kind, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
	}
	return nil
}

func bookingFromRow(r database.Booking) (models.Booking, error) {
	d, err := civil.ParseDate(r.Date)
	if err != nil {
		return models.Booking{}, fmt.Errorf("%w: booking %q date %q", models.ErrInvalidBooking, r.ID, r.Date)
	}
	return models.Booking{
		ID:              r.ID,
		Name:            r.Name,
		ResourceID:      r.ResourceID,
		Date:            d,
		StartMinute:     r.StartMinute,
		DurationMinutes: r.DurationMinutes,
	}, nil
}

func exceptionFromRow(r database.ScheduleException) (models.ScheduleException, error) {
	start, err := civil.ParseDate(r.DateStart)
	if err != nil {
		return models.ScheduleException{}, fmt.Errorf("%w: exception %q date_start %q", models.ErrInvalidSchedule, r.ID, r.DateStart)
	}
	end, err := civil.ParseDate(r.DateEnd)
	if err != nil {
		return models.ScheduleException{}, fmt.Errorf("%w: exception %q date_end %q", models.ErrInvalidSchedule, r.ID, r.DateEnd)
	}
	return models.ScheduleException{
		ID:        r.ID,
		Name:      r.Name,
		DateStart: start,
		DateEnd:   end,
		Days:      r.Days,
	}, nil
}

func blockFromRow(r database.ScheduleBlock) (models.ScheduleBlock, error) {
	start, err := civil.ParseDate(r.DateStart)
	if err != nil {
		return models.ScheduleBlock{}, fmt.Errorf("%w: block %q date_start %q", models.ErrInvalidBlock, r.ID, r.DateStart)
	}
	spec := models.BlockSpec{
		ID:          r.ID,
		ResourceIDs: r.ResourceIDs,
		DateStart:   start,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		IsRecurring: r.IsRecurring,
		DaysOfWeek:  r.DaysOfWeek,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
	}
	if spec.DateEnd, err = parseOptionalDate(r.DateEnd); err != nil {
		return models.ScheduleBlock{}, fmt.Errorf("%w: block %q: %v", models.ErrInvalidBlock, r.ID, err)
	}
	if spec.RecurrenceEndDate, err = parseOptionalDate(r.RecurrenceEndDate); err != nil {
		return models.ScheduleBlock{}, fmt.Errorf("%w: block %q: %v", models.ErrInvalidBlock, r.ID, err)
	}
	return spec.Build()
}

func parseOptionalDate(s *string) (*civil.Date, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := civil.ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func dateString(d *civil.Date) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
