package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/travel-snapshot/travel-api/internal/config"
	"github.com/travel-snapshot/travel-api/internal/logging"
)

const serviceName = "travel-api"

// InitTracing installs the global tracer provider with an OTLP HTTP exporter.
// When tracing is disabled the returned shutdown is a no-op and the default
// no-op provider stays in place.
func InitTracing(cfg *config.Config, logger *logrus.Logger) (func(context.Context) error, error) {
	obs := cfg.Observability
	if !obs.TracingEnabled {
		logger.Info("Tracing is disabled")
		return func(context.Context) error { return nil }, nil
	}

	ctx := context.Background()

	endpoint := strings.TrimPrefix(obs.OTLPEndpoint, "http://")
	insecure := endpoint != obs.OTLPEndpoint
	endpoint = strings.TrimPrefix(endpoint, "https://")

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
	if insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", logging.Version()),
			attribute.String("deployment.environment", cfg.Server.Environment),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(5*time.Second),
			sdktrace.WithMaxExportBatchSize(512),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(obs.SampleRate))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.WithFields(logrus.Fields{
		"otlp_endpoint": endpoint,
		"sample_rate":   obs.SampleRate,
	}).Info("OpenTelemetry tracing initialized")

	return tp.Shutdown, nil
}
