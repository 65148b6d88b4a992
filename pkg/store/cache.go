package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/arnavshah/agenda-api-go/pkg/models"
)

const scheduleKeyPrefix = "agenda:schedule:"

// CachedSchedules is a read-through redis cache in front of a
// ScheduleProvider. Redis failures fall back to the provider.
type CachedSchedules struct {
	next   ScheduleProvider
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedSchedules(next ScheduleProvider, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedSchedules {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSchedules{next: next, client: client, ttl: ttl, logger: logger}
}

func scheduleKey(clinicID string) string {
	return scheduleKeyPrefix + clinicID
}

func (c *CachedSchedules) ClinicSchedule(ctx context.Context, clinicID string) (models.ClinicSchedule, error) {
	raw, err := c.client.Get(ctx, scheduleKey(clinicID)).Bytes()
	switch {
	case err == nil:
		var sched models.ClinicSchedule
		if jerr := json.Unmarshal(raw, &sched); jerr == nil {
			return sched, nil
		}
		c.logger.Warn("discarding unreadable cached schedule", zap.String("clinic_id", clinicID))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("schedule cache read failed", zap.String("clinic_id", clinicID), zap.Error(err))
	}

	sched, err := c.next.ClinicSchedule(ctx, clinicID)
	if err != nil {
		return models.ClinicSchedule{}, err
	}

	data, err := json.Marshal(sched)
	if err != nil {
		return sched, nil
	}
	if err := c.client.Set(ctx, scheduleKey(clinicID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("schedule cache write failed", zap.String("clinic_id", clinicID), zap.Error(err))
	}
	return sched, nil
}

// Invalidate drops the cached schedule after hours or exceptions change.
func (c *CachedSchedules) Invalidate(ctx context.Context, clinicID string) error {
	return c.client.Del(ctx, scheduleKey(clinicID)).Err()
}
