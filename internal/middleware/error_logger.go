package middleware

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/travel-snapshot/travel-api/internal/logging"
)

const (
	maxLoggedBody = 500
	redacted      = "[REDACTED]"
)

// sensitiveFields never reach the logs in clear text.
var sensitiveFields = map[string]struct{}{
	"password":     {},
	"access_token": {},
}

type ErrorLoggerMiddleware struct {
	logger *logrus.Logger
}

func NewErrorLoggerMiddleware(logger *logrus.Logger) *ErrorLoggerMiddleware {
	return &ErrorLoggerMiddleware{
		logger: logger,
	}
}

// Handle logs 4xx and 5xx responses with detailed context. A handler error is
// rendered here through the app error handler so the logged status is final.
func (e *ErrorLoggerMiddleware) Handle() fiber.Handler {
	return func(c *fiber.Ctx) error {
		startTime := time.Now()

		err := c.Next()
		if err != nil {
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		statusCode := c.Response().StatusCode()
		if statusCode < fiber.StatusBadRequest {
			return nil
		}

		latencyMs := float64(time.Since(startTime).Microseconds()) / 1000
		logFields := logrus.Fields{
			"ip":            c.IP(),
			"user_agent":    c.Get(fiber.HeaderUserAgent),
			"response_size": len(c.Response().Body()),
		}

		if userID, ok := GetUserID(c); ok {
			logFields["user_id"] = userID
		}
		if key := c.Get(HeaderIdempotencyKey); key != "" {
			logFields["idempotency_key"] = key
		}
		if query := c.Request().URI().QueryString(); len(query) > 0 {
			logFields["query"] = string(query)
		}

		switch c.Method() {
		case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch:
			if body := redactBody(c.Body()); body != "" {
				logFields["request_body"] = body
			}
		}
		if body := truncate(string(c.Response().Body())); body != "" {
			logFields["response_body"] = body
		}

		entry := logging.WithRequest(logging.WithRequestID(e.logger, requestID(c)),
			c.Method(), c.Path(), statusCode, latencyMs).WithFields(logFields)
		if statusCode >= fiber.StatusInternalServerError {
			if err != nil {
				entry = entry.WithError(err)
			}
			entry.Error("Server error response")
		} else {
			entry.Warn("Client error response")
		}

		return nil
	}
}

// redactBody masks sensitive top-level JSON fields. Bodies that are not JSON
// objects are dropped rather than risk logging a credential.
func redactBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return "(non-JSON body omitted)"
	}
	for key := range fields {
		if _, ok := sensitiveFields[key]; ok {
			fields[key] = redacted
		}
	}

	out, err := json.Marshal(fields)
	if err != nil {
		return ""
	}
	return truncate(string(out))
}

func truncate(s string) string {
	if len(s) > maxLoggedBody {
		return s[:maxLoggedBody] + "...(truncated)"
	}
	return s
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok && id != "" {
		return id
	}
	return c.Get(fiber.HeaderXRequestID)
}
