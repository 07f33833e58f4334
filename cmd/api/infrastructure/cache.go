package infrastructure

import (
	"context"

	"go.uber.org/zap"

	"user-pref-service/internal/config"
	redisclient "user-pref-service/pkg/redis"
)

// NewRedisClient connects the shared Redis client used by the cache, the
// connection store and the rate limiter.
func NewRedisClient(ctx context.Context, cfg *config.Config, l *zap.Logger) (*redisclient.Client, error) {
	return redisclient.NewClient(ctx, redisclient.Config{
		Host:        cfg.Redis.Host,
		Port:        cfg.Redis.Port,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		MaxRetries:  cfg.Redis.MaxRetries,
		PoolSize:    cfg.Redis.PoolSize,
		MinIdleConn: cfg.Redis.MinIdleConn,
	}, l)
}
