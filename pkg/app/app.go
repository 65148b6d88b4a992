// Package app wires configuration, storage and transport into a ready
// Handler for the server and serverless entrypoints.
package app

import (
	"context"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/arnavshah/agenda-api-go/pkg/auth"
	"github.com/arnavshah/agenda-api-go/pkg/config"
	"github.com/arnavshah/agenda-api-go/pkg/database"
	"github.com/arnavshah/agenda-api-go/pkg/handlers"
	"github.com/arnavshah/agenda-api-go/pkg/metrics"
	"github.com/arnavshah/agenda-api-go/pkg/scheduler"
	"github.com/arnavshah/agenda-api-go/pkg/store"
)

// BuildRedisClient returns a client when REDIS_ADDR is set and answers a
// ping, nil otherwise.
func BuildRedisClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) *redis.Client {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available, schedule cache disabled", zap.Error(err))
		_ = client.Close()
		return nil
	}
	return client
}

// New opens the database, seeds the admin user and assembles the handler.
// The returned func releases the redis connection.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (*handlers.Handler, func(), error) {
	db, err := database.InitDB(cfg.DatabaseURL, cfg.DataPath)
	if err != nil {
		return nil, nil, err
	}
	if err := auth.EnsureAdminExists(db, cfg.AdminUsername, cfg.AdminPassword, logger); err != nil {
		logger.Warn("could not ensure admin user", zap.Error(err))
	}

	gormStore := store.NewGormStore(db)
	providers := store.Providers{
		Bookings:           gormStore,
		Schedules:          gormStore,
		Blocks:             gormStore,
		DefaultGranularity: cfg.DefaultGranularity,
	}

	h := &handlers.Handler{
		DB:        db,
		Config:    cfg,
		Auth:      auth.New(cfg.JWTSecret, cfg.APIMasterSecret),
		Validator: scheduler.NewValidator(logger, metrics.NewValidationMetrics(reg)),
		Store:     gormStore,
		Logger:    logger,
	}

	cleanup := func() {}
	if client := BuildRedisClient(ctx, cfg, logger); client != nil {
		cached := store.NewCachedSchedules(gormStore, client, cfg.ScheduleCacheTTL, logger)
		providers.Schedules = cached
		h.Cache = cached
		cleanup = func() { _ = client.Close() }
		logger.Info("schedule cache enabled", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.ScheduleCacheTTL))
	}
	h.Snapshots = providers

	return h, cleanup, nil
}
