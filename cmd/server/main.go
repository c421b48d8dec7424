package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"

	_ "github.com/travel-snapshot/travel-api/docs" // Swagger docs
	"github.com/travel-snapshot/travel-api/internal/auth"
	"github.com/travel-snapshot/travel-api/internal/catalog"
	"github.com/travel-snapshot/travel-api/internal/config"
	"github.com/travel-snapshot/travel-api/internal/favorites"
	"github.com/travel-snapshot/travel-api/internal/logging"
	"github.com/travel-snapshot/travel-api/internal/metrics"
	"github.com/travel-snapshot/travel-api/internal/middleware"
	"github.com/travel-snapshot/travel-api/internal/routes"
	"github.com/travel-snapshot/travel-api/internal/store"
	"github.com/travel-snapshot/travel-api/internal/upstream"
)

// @title Travel Snapshot API
// @version 1.0
// @description Travel information backend: accounts, attraction catalog, favorites and destination lookups

// @host localhost:8000
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg)

	if err := metrics.Init(); err != nil {
		logger.WithError(err).Fatal("Failed to initialize metrics")
	}

	tracingShutdown, err := middleware.InitTracing(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to setup tracing")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracingShutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Failed to shutdown tracing")
		}
	}()

	db, err := store.Open(&cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.WithError(err).Error("Failed to close database")
		}
	}()

	credentials, err := auth.NewCredentialStore(db, cfg.Password.BcryptCost)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize credential store")
	}
	tokens, err := auth.NewTokenService(&cfg.JWT)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize token service")
	}
	gateway := auth.NewGateway(credentials, tokens, logger)

	images := upstream.NewImageClient(&cfg.Unsplash, &cfg.Upstream, logger)
	countries := upstream.NewCountryClient(&cfg.Countries, &cfg.Upstream, logger)
	weather := upstream.NewWeatherClient(&cfg.Weather, &cfg.Upstream, logger)

	middlewareManager, err := middleware.NewManager(cfg, gateway, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize middleware manager")
	}
	defer func() {
		if err := middlewareManager.Close(); err != nil {
			logger.WithError(err).Error("Failed to close middleware resources")
		}
	}()

	app := fiber.New(fiber.Config{
		AppName:      "Travel Snapshot API",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorHandler: routes.ErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Requested-With,Idempotency-Key",
		AllowCredentials: cfg.CORS.AllowOrigins != "*",
		MaxAge:           86400,
	}))
	app.Use(otelfiber.Middleware())

	routes.Setup(app, cfg, logger, middlewareManager, &routes.Dependencies{
		Store:     db,
		Gateway:   gateway,
		Catalog:   catalog.NewService(db, images, logger),
		Favorites: favorites.NewService(db, logger),
		Images:    images,
		Countries: countries,
		Weather:   weather,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("Gracefully shutting down...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.WithError(err).Error("Server shutdown failed")
		}
	}()

	logger.WithFields(logrus.Fields{
		"port":        cfg.Server.Port,
		"environment": cfg.Server.Environment,
		"version":     logging.Version(),
	}).Info("Starting Travel Snapshot API server")
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
