package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/kbukum/storefront/database"
	"github.com/kbukum/storefront/logger"
)

// NewDB opens a fresh in-memory SQLite database, migrates models into it
// and closes it when the test ends. Each call gets its own database.
func NewDB(t testing.TB, models ...interface{}) *database.DB {
	t.Helper()

	cfg := database.Config{
		Enabled:      true,
		Driver:       database.DriverSQLite,
		DSN:          "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=1",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		MaxRetries:   1,
		LogLevel:     "silent",
	}
	db, err := database.New(context.Background(), cfg, logger.NewNop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}
	return db
}
