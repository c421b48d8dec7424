// Package upstream wraps the third-party HTTP APIs: image search, country
// metadata and weather. Every call has a timeout, one bounded retry on
// transport errors and 5xx responses, and a per-upstream circuit breaker.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/travel-snapshot/travel-api/internal/config"
	"github.com/travel-snapshot/travel-api/internal/metrics"
)

var (
	// ErrNotFound means the upstream answered but has no matching entity.
	ErrNotFound = errors.New("upstream: not found")
	// ErrUnavailable covers transport failures, timeouts, non-2xx answers and
	// an open circuit.
	ErrUnavailable = errors.New("upstream: unavailable")
)

const tracerName = "travel-api/upstream"

// BreakerReporter is implemented by clients guarded by a circuit breaker.
type BreakerReporter interface {
	Breaker() *CircuitBreaker
}

// caller is the shared plumbing behind each upstream client.
type caller struct {
	name    string
	http    *resty.Client
	breaker *CircuitBreaker
	logger  *logrus.Logger
	tracer  trace.Tracer
}

func newCaller(name, baseURL string, cfg *config.UpstreamConfig, logger *logrus.Logger) caller {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(cfg.RetryWait).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "travel-api").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r != nil && r.StatusCode() >= http.StatusInternalServerError
		})

	return caller{
		name:    name,
		http:    client,
		breaker: NewCircuitBreaker(name, cfg.BreakerMaxFailures, cfg.BreakerResetTimeout, logger),
		logger:  logger,
		tracer:  otel.Tracer(tracerName),
	}
}

// Breaker exposes the client's circuit breaker for health reporting.
func (c *caller) Breaker() *CircuitBreaker {
	return c.breaker
}

// get performs a GET and decodes a 2xx JSON body into result. A 404 maps to
// ErrNotFound, everything else that is not 2xx to ErrUnavailable.
func (c *caller) get(ctx context.Context, path string, prepare func(*resty.Request), result interface{}) error {
	ctx, span := c.tracer.Start(ctx, c.name+" GET "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("upstream.name", c.name)),
	)
	defer span.End()

	start := time.Now()
	statusCode := 0

	err := c.breaker.Execute(func() error {
		req := c.http.R().
			SetContext(ctx).
			SetResult(result).
			ForceContentType("application/json")
		if prepare != nil {
			prepare(req)
		}

		resp, err := req.Get(path)
		if resp != nil {
			statusCode = resp.StatusCode()
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrUnavailable, c.name, err)
		}

		switch {
		case resp.IsSuccess():
			return nil
		case resp.StatusCode() == http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrNotFound, c.name)
		default:
			return fmt.Errorf("%w: %s returned %d", ErrUnavailable, c.name, resp.StatusCode())
		}
	}, func(err error) bool {
		return !errors.Is(err, ErrNotFound)
	})

	duration := time.Since(start)
	metrics.RecordUpstreamCall(c.name, http.MethodGet, statusCode, duration)
	span.SetAttributes(attribute.Int("http.status_code", statusCode))

	if errors.Is(err, ErrCircuitOpen) {
		err = fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upstream unavailable")
		c.logger.WithError(err).WithFields(logrus.Fields{
			"upstream":    c.name,
			"path":        path,
			"status_code": statusCode,
			"duration_ms": duration.Milliseconds(),
		}).Warn("Upstream call failed")
	}

	return err
}
