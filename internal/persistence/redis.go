package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Fluffaro/desk-cartel/internal/config"
)

const deadlineWarnedPrefix = "deadline:warned:"

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration. An empty
// address means redis is not configured; callers fall back to in-process
// alternatives in that case.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if cfg.Addr == "" {
		logger.Warn("REDIS_ADDR not provided; skipping redis connection")
		return &Redis{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// MarkDeadlineWarned records that a deadline warning was emitted for the
// ticket. It reports true only on the first call within the warning window;
// the key expires with the window so a ticket reassigned and restarted later
// can warn again. Backs the one-notification-per-ticket-per-window policy.
func (r *Redis) MarkDeadlineWarned(ctx context.Context, ticketID string, ttl time.Duration) (bool, error) {
	if r == nil || r.Client == nil {
		return false, errors.New("redis client not configured")
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return r.Client.SetNX(ctx, deadlineWarnedPrefix+ticketID, time.Now().UTC().Format(time.RFC3339), ttl).Result()
}
