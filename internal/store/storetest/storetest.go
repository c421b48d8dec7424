// Package storetest opens throwaway in-memory stores for tests.
package storetest

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/travel-snapshot/travel-api/internal/config"
	"github.com/travel-snapshot/travel-api/internal/store"
)

// New returns a migrated in-memory sqlite store closed at test cleanup.
func New(tb testing.TB) *store.Store {
	tb.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	s, err := store.Open(&config.DatabaseConfig{
		Driver: "sqlite",
		URL:    ":memory:",
	}, logger)
	if err != nil {
		tb.Fatalf("open test store: %v", err)
	}
	tb.Cleanup(func() { _ = s.Close() })

	return s
}
