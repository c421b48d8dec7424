package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/swagger"
	"github.com/sirupsen/logrus"

	"github.com/travel-snapshot/travel-api/internal/auth"
	"github.com/travel-snapshot/travel-api/internal/catalog"
	"github.com/travel-snapshot/travel-api/internal/config"
	"github.com/travel-snapshot/travel-api/internal/favorites"
	"github.com/travel-snapshot/travel-api/internal/logging"
	"github.com/travel-snapshot/travel-api/internal/metrics"
	"github.com/travel-snapshot/travel-api/internal/middleware"
	"github.com/travel-snapshot/travel-api/internal/store"
	"github.com/travel-snapshot/travel-api/internal/upstream"
	apperrors "github.com/travel-snapshot/travel-api/pkg/errors"
)

const serviceName = "travel-api"

// Dependencies are the services the handlers are built from.
type Dependencies struct {
	Store     *store.Store
	Gateway   *auth.Gateway
	Catalog   *catalog.Service
	Favorites *favorites.Service
	Images    upstream.ImageSearcher
	Countries upstream.CountryLookup
	Weather   upstream.WeatherProvider
}

// Setup configures all API routes
func Setup(app *fiber.App, cfg *config.Config, logger *logrus.Logger, middlewareManager *middleware.Manager, deps *Dependencies) {
	authHandler := NewAuthHandler(deps.Gateway, logger)
	attractionHandler := NewAttractionHandler(deps.Catalog, logger)
	favoriteHandler := NewFavoriteHandler(deps.Favorites, logger)
	exploreHandler := NewExploreHandler(deps.Images, deps.Countries, deps.Weather, logger)

	// Metrics wrap the error logger so they see the rendered status
	app.Use(metrics.HTTPMetricsMiddleware())
	app.Use(middlewareManager.ErrorLogger.Handle())

	if cfg.Server.EnablePprof {
		logger.Warn("Profiling endpoints enabled at /debug/pprof")
		app.Use(pprof.New())
	}

	app.Get("/", rootHandler)
	app.Get("/healthz", healthCheck)
	app.Get("/readyz", readinessCheck(deps.Store, middlewareManager, breakersOf(deps.Images, deps.Countries, deps.Weather)))
	app.Get("/version", versionHandler)
	app.Get(cfg.Observability.MetricsPath, metrics.PrometheusHandler())
	app.Get("/swagger/*", swagger.HandlerDefault)

	requireAuth := middlewareManager.Auth.Authenticate()
	idempotency := middlewareManager.IdempotencyHandler()

	authRoutes := app.Group("/auth")
	authRoutes.Post("/register", idempotency, authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Get("/me", requireAuth, authHandler.Me)
	authRoutes.Post("/me", requireAuth, authHandler.Me)
	authRoutes.Get("/token/validate", authHandler.ValidateToken)

	attractionRoutes := app.Group("/attractions")
	attractionRoutes.Post("/", idempotency, attractionHandler.Add)
	attractionRoutes.Get("/:country", attractionHandler.ListByCountry)
	attractionRoutes.Delete("/:id", attractionHandler.Delete)

	favoriteRoutes := app.Group("/favorites", requireAuth)
	favoriteRoutes.Get("/", favoriteHandler.List)
	favoriteRoutes.Post("/", idempotency, favoriteHandler.Add)
	favoriteRoutes.Post("/:attraction_id", idempotency, favoriteHandler.Add)
	favoriteRoutes.Delete("/:attraction_id", favoriteHandler.Remove)

	app.Get("/images/:query", exploreHandler.Images)
	app.Get("/location/:country", exploreHandler.Location)
	app.Get("/weather", exploreHandler.Weather)

	app.Use(notFoundHandler)
}

// rootHandler confirms the service is up
// @Summary Service banner
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{} "Banner"
// @Router / [get]
func rootHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Backend is running"})
}

// healthCheck returns the health status of the service
// @Summary Health check
// @Description Check if the service is healthy
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{} "Healthy"
// @Router /healthz [get]
func healthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   serviceName,
	})
}

// readinessCheck checks if the service is ready to accept traffic
// @Summary Readiness check
// @Description Check database and, when configured, Redis connectivity. Open
// @Description upstream circuits mark the service degraded but still ready.
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{} "Ready"
// @Failure 503 {object} map[string]interface{} "Not ready"
// @Router /readyz [get]
func readinessCheck(db *store.Store, middlewareManager *middleware.Manager, breakers []*upstream.CircuitBreaker) fiber.Handler {
	var redisCheck func(context.Context) error
	if middlewareManager.RedisClient != nil {
		redisCheck = middleware.RedisHealthCheck(middlewareManager.RedisClient, middlewareManager.Logger)
	}

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			middlewareManager.Logger.WithError(err).Error("Database health check failed")
			return notReady(c, "database unavailable")
		}

		if redisCheck != nil {
			if err := redisCheck(ctx); err != nil {
				return notReady(c, "redis unavailable")
			}
		}

		upstreams := fiber.Map{}
		degraded := false
		for _, cb := range breakers {
			upstreams[cb.Name()] = cb.GetStats()
			if cb.GetState() == upstream.StateOpen {
				degraded = true
			}
		}

		return c.JSON(fiber.Map{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
			"degraded":  degraded,
			"upstreams": upstreams,
		})
	}
}

// breakersOf collects the circuit breakers of the clients that have one.
func breakersOf(clients ...interface{}) []*upstream.CircuitBreaker {
	var out []*upstream.CircuitBreaker
	for _, client := range clients {
		if r, ok := client.(upstream.BreakerReporter); ok {
			out = append(out, r.Breaker())
		}
	}
	return out
}

func notReady(c *fiber.Ctx, reason string) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"status":    "not ready",
		"reason":    reason,
		"timestamp": time.Now().UTC(),
	})
}

// versionHandler returns version information
// @Summary Version information
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{} "Version info"
// @Router /version [get]
func versionHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": serviceName,
		"version": logging.Version(),
	})
}

func notFoundHandler(c *fiber.Ctx) error {
	return apperrors.New(apperrors.CodeNotFound, "The requested resource was not found")
}
