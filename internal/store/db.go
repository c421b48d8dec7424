// Package store holds the gorm-backed persistence for users, attractions and
// favorites. Uniqueness and referential integrity are enforced by the schema;
// constraint violations surface as ErrDuplicate and ErrForeignKey.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/travel-snapshot/travel-api/internal/config"
	"github.com/travel-snapshot/travel-api/internal/models"
)

// Store is the entry point to all repositories. A Store obtained from
// Transaction is bound to that transaction.
type Store struct {
	db *gorm.DB
}

// New wraps an already opened gorm handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects to the configured database, applies pool settings and runs
// the schema migration.
func Open(cfg *config.DatabaseConfig, logger *logrus.Logger) (*Store, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	logLevel := gormlogger.Warn
	if cfg.LogQueries {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(logger, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// sqlite serialises writers; a single connection also keeps
		// in-memory databases and the foreign_keys pragma alive.
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"driver": cfg.Driver,
	}).Info("Database connected and migrated")

	return New(db), nil
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.Open(cfg.URL), nil
	case "sqlite":
		return sqlite.Open(sqliteDSN(cfg.URL)), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}
}

// sqliteDSN accepts both "sqlite:///path.db" style URLs and bare paths.
func sqliteDSN(url string) string {
	dsn := strings.TrimPrefix(url, "sqlite://")
	if strings.HasPrefix(dsn, "/") && strings.HasPrefix(url, "sqlite:///") {
		dsn = strings.TrimPrefix(dsn, "/")
	}
	if !strings.Contains(dsn, "_foreign_keys") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_foreign_keys=on"
	}
	return dsn
}

// Migrate creates or updates the tables, unique indexes and foreign keys.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}); err != nil {
		return fmt.Errorf("migrate users: %w", err)
	}
	if err := db.AutoMigrate(&models.Attraction{}); err != nil {
		return fmt.Errorf("migrate attractions: %w", err)
	}
	if err := db.AutoMigrate(&models.Favorite{}); err != nil {
		return fmt.Errorf("migrate favorites: %w", err)
	}
	return nil
}

// Transaction runs fn inside a database transaction. Any error returned by fn
// rolls the transaction back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
