package middleware

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/travel-snapshot/travel-api/internal/config"
)

// NewRedisUniversalClient connects to the idempotency store. The universal
// client serves both a standalone node and a cluster configuration endpoint.
func NewRedisUniversalClient(cfg *config.RedisConfig, logger *logrus.Logger) (redis.UniversalClient, error) {
	var tlsConfig *tls.Config
	if cfg.TLSEnabled {
		tlsConfig = &tls.Config{
			ServerName: extractHostname(cfg.Address),
			MinVersion: tls.VersionTLS12,
		}
		logger.WithField("address", cfg.Address).Info("Redis TLS encryption enabled")
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        []string{cfg.Address},
		Password:     cfg.Password,
		DB:           cfg.Database,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		PoolTimeout:  cfg.PoolTimeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DialTimeout:  5 * time.Second,

		ConnMaxIdleTime: 10 * time.Minute,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,

		TLSConfig: tlsConfig,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"address": cfg.Address,
		"db":      cfg.Database,
	}).Info("Connected to Redis")

	return client, nil
}

// RedisHealthCheck returns a probe used by the readiness endpoint.
func RedisHealthCheck(redisClient redis.UniversalClient, logger *logrus.Logger) func(context.Context) error {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Error("Redis health check failed")
			return fmt.Errorf("redis unavailable: %w", err)
		}

		return nil
	}
}

// extractHostname extracts hostname from address (host:port -> host)
func extractHostname(address string) string {
	if idx := strings.LastIndex(address, ":"); idx != -1 {
		return address[:idx]
	}
	return address
}
