package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/travel-snapshot/travel-api/internal/metrics"
	apperrors "github.com/travel-snapshot/travel-api/pkg/errors"
)

const (
	HeaderIdempotencyKey    = "Idempotency-Key"
	HeaderIdempotencyCached = "X-Idempotency-Cached"

	redisOpTimeout = 2 * time.Second
)

// IdempotencyMiddleware replays the first successful response for a repeated
// Idempotency-Key. The header is optional; requests without it pass through.
type IdempotencyMiddleware struct {
	redisClient redis.UniversalClient
	logger      *logrus.Logger
	ttl         time.Duration
}

type IdempotencyRecord struct {
	Fingerprint string            `json:"fingerprint"`
	StatusCode  int               `json:"status_code"`
	Headers     map[string]string `json:"headers"`
	Body        string            `json:"body"`
	CreatedAt   time.Time         `json:"created_at"`
}

func NewIdempotencyMiddleware(redisClient redis.UniversalClient, ttl time.Duration, logger *logrus.Logger) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &IdempotencyMiddleware{
		redisClient: redisClient,
		logger:      logger,
		ttl:         ttl,
	}
}

// recordKey scopes keys by caller so two users never share a record.
// Anonymous requests use the bare key.
func recordKey(c *fiber.Ctx, idempotencyKey string) string {
	if userID, ok := GetUserID(c); ok {
		return fmt.Sprintf("idempotency:%d:%s", userID, idempotencyKey)
	}
	return "idempotency:" + idempotencyKey
}

// Handle must run after Authenticate on protected routes so the fingerprint
// carries the user id.
func (i *IdempotencyMiddleware) Handle() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if isIdempotentMethod(c.Method()) {
			return c.Next()
		}

		idempotencyKey := strings.TrimSpace(c.Get(HeaderIdempotencyKey))
		if idempotencyKey == "" {
			return c.Next()
		}
		if _, err := uuid.Parse(idempotencyKey); err != nil {
			return apperrors.New(apperrors.CodeValidation, "Idempotency-Key must be a valid UUID")
		}

		fingerprint := i.generateFingerprint(c)
		redisKey := recordKey(c, idempotencyKey)

		ctx, cancel := context.WithTimeout(c.UserContext(), redisOpTimeout)
		existing, err := i.getIdempotencyRecord(ctx, redisKey)
		cancel()
		if err != nil && !errors.Is(err, redis.Nil) {
			// Redis trouble must not block the write itself
			i.logger.WithError(err).Error("Failed to get idempotency record")
		}

		if existing != nil {
			if existing.Fingerprint != fingerprint {
				metrics.RecordIdempotencyHit("conflict")
				return apperrors.New(apperrors.CodeIdempotencyConflict,
					"Request differs from original request with same Idempotency-Key")
			}
			metrics.RecordIdempotencyHit("replay")
			return i.returnCachedResponse(c, existing)
		}

		if err := c.Next(); err != nil {
			return err
		}

		statusCode := c.Response().StatusCode()
		if statusCode < fiber.StatusOK || statusCode >= fiber.StatusMultipleChoices {
			return nil
		}

		record := IdempotencyRecord{
			Fingerprint: fingerprint,
			StatusCode:  statusCode,
			Headers:     make(map[string]string),
			Body:        string(c.Response().Body()),
			CreatedAt:   time.Now().UTC(),
		}
		c.Response().Header.VisitAll(func(key, value []byte) {
			if shouldCacheHeader(string(key)) {
				record.Headers[string(key)] = string(value)
			}
		})

		ctx, cancel = context.WithTimeout(context.Background(), redisOpTimeout)
		defer cancel()
		if err := i.storeIdempotencyRecord(ctx, redisKey, &record); err != nil {
			i.logger.WithError(err).WithField("idempotency_key", idempotencyKey).Error("Failed to store idempotency record")
		} else {
			metrics.RecordIdempotencyHit("stored")
			i.logger.WithFields(logrus.Fields{
				"idempotency_key": idempotencyKey,
				"status_code":     statusCode,
			}).Debug("Stored idempotency record")
		}

		return nil
	}
}

// generateFingerprint hashes method, path, query, body and caller.
func (i *IdempotencyMiddleware) generateFingerprint(c *fiber.Ctx) string {
	h := sha256.New()

	h.Write([]byte(c.Method()))
	h.Write([]byte(":"))
	h.Write([]byte(c.Path()))
	h.Write([]byte(":"))
	h.Write(c.Request().URI().QueryString())
	h.Write([]byte(":"))
	h.Write(c.Body())
	h.Write([]byte(":"))
	if userID, ok := GetUserID(c); ok {
		h.Write([]byte(strconv.FormatUint(uint64(userID), 10)))
	}

	return hex.EncodeToString(h.Sum(nil))
}

func (i *IdempotencyMiddleware) getIdempotencyRecord(ctx context.Context, key string) (*IdempotencyRecord, error) {
	data, err := i.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var record IdempotencyRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal idempotency record: %w", err)
	}

	return &record, nil
}

// storeIdempotencyRecord keeps the first writer's record if two requests race.
func (i *IdempotencyMiddleware) storeIdempotencyRecord(ctx context.Context, key string, record *IdempotencyRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal idempotency record: %w", err)
	}

	return i.redisClient.SetNX(ctx, key, data, i.ttl).Err()
}

func (i *IdempotencyMiddleware) returnCachedResponse(c *fiber.Ctx, record *IdempotencyRecord) error {
	for key, value := range record.Headers {
		c.Set(key, value)
	}
	c.Set(HeaderIdempotencyCached, "true")

	return c.Status(record.StatusCode).SendString(record.Body)
}

func shouldCacheHeader(header string) bool {
	switch strings.ToLower(header) {
	case "content-type", "location":
		return true
	}
	return false
}

// isIdempotentMethod checks if the HTTP method is naturally idempotent
func isIdempotentMethod(method string) bool {
	switch method {
	case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions, fiber.MethodPut, fiber.MethodDelete:
		return true
	}
	return false
}
