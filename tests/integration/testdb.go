// Package integration runs the barcode and label services against a real
// PostgreSQL started with testcontainers.
package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	mpg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/barcodeprint/backend/migrations"
)

// TestDB is a migrated database in its own container
type TestDB struct {
	DB  *gorm.DB
	DSN string
	t   *testing.T
}

// NewTestDB starts postgres, applies the embedded migrations and registers
// cleanup of both the connection and the container.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("barcode_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	level := logger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		level = logger.Info
	}
	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(level)})
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(5)
	t.Cleanup(func() { _ = sqlDB.Close() })

	source, err := iofs.New(migrations.FS, ".")
	require.NoError(t, err)
	driver, err := mpg.WithInstance(sqlDB, &mpg.Config{})
	require.NoError(t, err)
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	require.NoError(t, err)
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "Failed to run migrations")
	}

	return &TestDB{DB: db, DSN: dsn, t: t}
}

// CountRows returns the number of rows in table
func (tdb *TestDB) CountRows(table string) int64 {
	tdb.t.Helper()

	var n int64
	require.NoError(tdb.t, tdb.DB.Table(table).Count(&n).Error, "Failed to count %s", table)
	return n
}
