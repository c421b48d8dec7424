package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/travel-snapshot/travel-api/internal/auth"
	"github.com/travel-snapshot/travel-api/internal/config"
)

// Manager holds all middleware instances
type Manager struct {
	Auth        *AuthMiddleware
	Idempotency *IdempotencyMiddleware // nil when Redis is not configured
	ErrorLogger *ErrorLoggerMiddleware
	RedisClient redis.UniversalClient
	Config      *config.Config
	Logger      *logrus.Logger
}

// NewManager creates the middleware set. Redis is optional; without it the
// Idempotency-Key header is ignored.
func NewManager(cfg *config.Config, gateway *auth.Gateway, logger *logrus.Logger) (*Manager, error) {
	var redisClient redis.UniversalClient
	if cfg.Redis.Enabled() {
		client, err := NewRedisUniversalClient(&cfg.Redis, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis client: %w", err)
		}
		redisClient = client
	} else {
		logger.Info("Redis not configured, idempotency keys disabled")
	}

	return newManager(cfg, gateway, redisClient, logger), nil
}

// NewManagerWithRedis builds the middleware set around an existing client.
func NewManagerWithRedis(cfg *config.Config, gateway *auth.Gateway, redisClient redis.UniversalClient, logger *logrus.Logger) *Manager {
	return newManager(cfg, gateway, redisClient, logger)
}

func newManager(cfg *config.Config, gateway *auth.Gateway, redisClient redis.UniversalClient, logger *logrus.Logger) *Manager {
	m := &Manager{
		Auth:        NewAuthMiddleware(gateway, logger),
		ErrorLogger: NewErrorLoggerMiddleware(logger),
		RedisClient: redisClient,
		Config:      cfg,
		Logger:      logger,
	}
	if redisClient != nil {
		m.Idempotency = NewIdempotencyMiddleware(redisClient, cfg.Redis.IdempotencyTTL, logger)
	}
	return m
}

// IdempotencyHandler returns the idempotency middleware, or a pass-through
// when Redis is disabled.
func (m *Manager) IdempotencyHandler() fiber.Handler {
	if m.Idempotency == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return m.Idempotency.Handle()
}

// Close closes all middleware resources
func (m *Manager) Close() error {
	if m.RedisClient != nil {
		return m.RedisClient.Close()
	}
	return nil
}
