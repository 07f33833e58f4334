package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-pref-service/cmd/api/infrastructure"
	"user-pref-service/internal/adapter/cache"
	"user-pref-service/internal/adapter/db/postgres"
	"user-pref-service/internal/adapter/gin/handler"
	"user-pref-service/internal/adapter/gin/middleware"
	"user-pref-service/internal/adapter/gin/router"
	"user-pref-service/internal/adapter/queue"
	"user-pref-service/internal/adapter/realtime"
	"user-pref-service/internal/adapter/repository/cached"
	"user-pref-service/internal/adapter/scheduler"
	"user-pref-service/internal/auth"
	"user-pref-service/internal/config"
	"user-pref-service/internal/usecase/preference"
	"user-pref-service/internal/usecase/session"
	"user-pref-service/internal/usecase/user"
	"user-pref-service/internal/validation"
	"user-pref-service/pkg/jwt"
	redisclient "user-pref-service/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	DB           *gorm.DB
	RedisClient  *redisclient.Client
	UserUC       user.Usecase
	PreferenceUC preference.Usecase
	SessionUC    session.Usecase
	Hub          *realtime.Hub
	Consumer     *queue.Consumer
	Scheduler    *scheduler.Scheduler
	Router       *gin.Engine

	closePublisher func() error
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (_ *Container, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c := &Container{Config: cfg, Logger: l}
	defer func() {
		// release whatever was opened before the failure
		if err != nil {
			_ = c.Close()
		}
	}()

	c.DB, err = infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	c.RedisClient, err = infrastructure.NewRedisClient(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	pub, closePublisher, err := infrastructure.NewEventPublisher(cfg, l)
	if err != nil {
		return nil, err
	}
	c.closePublisher = closePublisher

	v := validation.New()

	// Repositories
	userCache := cache.NewRedisUserCache(c.RedisClient.Client, time.Duration(cfg.Redis.CacheTTL)*time.Second, l)
	userRepo := cached.NewUserRepository(postgres.NewUserRepoPG(c.DB, l), userCache, l)
	prefRepo := postgres.NewPreferenceRepoPG(c.DB, l)

	// Use cases
	tokens, err := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token manager: %w", err)
	}
	userUC := user.New(userRepo, prefRepo, pub, v, l)
	c.UserUC = userUC
	c.PreferenceUC = preference.New(prefRepo, userRepo, pub, v, l)
	c.SessionUC = session.New(userRepo, tokens, v, l)

	// Realtime fan-out
	conns := cache.NewRedisConnectionStore(c.RedisClient.Client, time.Duration(cfg.WebSocket.ConnectionTTLHours)*time.Hour, l)
	c.Hub = realtime.NewHub(conns, realtime.Config{
		WriteTimeout:   time.Duration(cfg.WebSocket.WriteTimeoutSecond) * time.Second,
		PingInterval:   time.Duration(cfg.WebSocket.PingIntervalSecond) * time.Second,
		SendBuffer:     cfg.WebSocket.SendBufferSize,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	}, l)

	c.Consumer, err = infrastructure.NewQueueConsumer(cfg, queue.NewHandler(v, c.Hub, l), l)
	if err != nil {
		return nil, err
	}

	if cfg.Scheduler.Enabled {
		c.Scheduler, err = scheduler.New(scheduler.Config{
			PurgeSchedule: cfg.Scheduler.PurgeSchedule,
			Retention:     time.Duration(cfg.Scheduler.RetentionDays) * 24 * time.Hour,
		}, userUC, l)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize scheduler: %w", err)
		}
	}

	// HTTP
	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = middleware.NewRateLimiter(c.RedisClient.Client, middleware.RateLimiterConfig{
			Enabled:           cfg.RateLimit.Enabled,
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstCapacity:     cfg.RateLimit.BurstCapacity,
		}, l)
	}

	checks := map[string]handler.Checker{
		"database": handler.CheckFunc(infrastructure.PingDatabase(c.DB)),
		"redis":    c.RedisClient,
	}

	c.Router = router.SetupRouter(
		router.Config{
			Environment:      cfg.App.Environment,
			ExposeErrorStack: cfg.App.ExposeErrorStack,
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
		},
		router.Handlers{
			User:       handler.NewUserHandler(c.UserUC, v, l),
			Preference: handler.NewPreferenceHandler(c.PreferenceUC, v, l),
			Session:    handler.NewSessionHandler(c.SessionUC, v),
			System:     handler.NewSystemHandler(cfg.Logger.ServiceName, checks, l),
			Realtime:   handler.NewRealtimeHandler(c.Hub, conns, l),
		},
		auth.NewJWTVerifier(tokens),
		rateLimiter,
		l,
	)

	return c, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.Consumer != nil {
		if err := c.Consumer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close consumer: %w", err))
		}
	}

	if c.Hub != nil {
		c.Hub.Close()
	}

	if c.closePublisher != nil {
		if err := c.closePublisher(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close publisher: %w", err))
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
