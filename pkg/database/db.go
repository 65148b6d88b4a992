package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/arnavshah/agenda-api-go/pkg/models"
)

// APIKey represents the api_keys table
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"-"`
	KeyPreview string     `json:"key_preview"`
	Name       string     `gorm:"not null" json:"name"`
	RateLimit  int        `gorm:"default:10000" json:"rate_limit"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
	// Revoked keys stay soft-deleted so a still-valid signature cannot recreate them.
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// APIUsage represents the api_usage table
type APIUsage struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	KeyID            uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date             string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount     int    `gorm:"default:0" json:"request_count"`
	TotalValidations int    `gorm:"default:0" json:"total_validations"`
	TotalConflicts   int    `gorm:"default:0" json:"total_conflicts"`
}

// MasterUser represents the master_users table
type MasterUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Booking is the read side of the bookings table owned by the clinic app.
type Booking struct {
	ID              string `gorm:"primaryKey"`
	ClinicID        string `gorm:"index:idx_booking_slot;not null"`
	ResourceID      string `gorm:"index:idx_booking_slot;not null"`
	Date            string `gorm:"index:idx_booking_slot;not null"` // YYYY-MM-DD
	Name            string
	StartMinute     int
	DurationMinutes int
}

// ClinicSchedule stores a clinic's weekly hours.
type ClinicSchedule struct {
	ClinicID           string              `gorm:"primaryKey"`
	Week               models.WeekSchedule `gorm:"serializer:json"`
	GranularityMinutes int
	UpdatedAt          time.Time
}

// ScheduleException stores a date-bounded replacement of a clinic's hours.
type ScheduleException struct {
	ID        string `gorm:"primaryKey"`
	ClinicID  string `gorm:"index;not null"`
	Name      string
	DateStart string                                 `gorm:"not null"`
	DateEnd   string                                 `gorm:"not null"`
	Days      map[models.Weekday]models.ExceptionDay `gorm:"serializer:json"`
}

// ScheduleBlock stores a resource block in the flat back-office shape.
type ScheduleBlock struct {
	ID                string   `gorm:"primaryKey"`
	ClinicID          string   `gorm:"index;not null"`
	ResourceIDs       []string `gorm:"serializer:json"`
	DateStart         string   `gorm:"not null"`
	DateEnd           *string
	StartTime         string `gorm:"not null"` // HH:MM
	EndTime           string `gorm:"not null"`
	IsRecurring       bool
	DaysOfWeek        []models.Weekday `gorm:"serializer:json"`
	RecurrenceEndDate *string
	Description       string
	CreatedAt         time.Time
}

// Open connects to postgres when dsn is set and to a sqlite file otherwise.
func Open(dsn, sqlitePath string) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	if dsn != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	} else {
		db, err = gorm.Open(sqlite.Open(sqlitePath), &gorm.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return db, nil
}

// InitDB opens the database and migrates the schema
func InitDB(dsn, sqlitePath string) (*gorm.DB, error) {
	db, err := Open(dsn, sqlitePath)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table the service reads or writes.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&APIKey{}, &APIUsage{}, &MasterUser{},
		&Booking{}, &ClinicSchedule{}, &ScheduleException{}, &ScheduleBlock{},
	)
}
