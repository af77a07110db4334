package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/barcodeprint/backend/internal/infrastructure/config"
	"github.com/barcodeprint/backend/internal/infrastructure/persistence/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database owns the gorm handle for the barcode and print job tables
type Database struct {
	DB *gorm.DB
}

// NewDatabase opens a silent connection, mainly for tests and tools
func NewDatabase(cfg *config.DatabaseConfig) (*Database, error) {
	return NewDatabaseWithCustomLogger(cfg, logger.Default.LogMode(logger.Silent))
}

// NewDatabaseWithCustomLogger opens the configured driver, sizes the pool
// and verifies the connection. A sqlite database is migrated in place since
// cmd/migrate only targets postgres.
func NewDatabaseWithCustomLogger(cfg *config.DatabaseConfig, gormLogger logger.Interface) (*Database, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "postgres":
		dialector = postgres.Open(cfg.DSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            cfg.Driver != "sqlite",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	d := &Database{DB: db}
	pool, err := d.pool()
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	pool.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := pool.Ping(); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if cfg.Driver == "sqlite" {
		if err := d.AutoMigrate(); err != nil {
			_ = pool.Close()
			return nil, err
		}
	}
	return d, nil
}

func (d *Database) pool() (*sql.DB, error) {
	pool, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return pool, nil
}

// AutoMigrate brings the tables in line with the persistence models
func (d *Database) AutoMigrate() error {
	if err := d.DB.AutoMigrate(&models.BarcodeModel{}, &models.PrintJobModel{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	pool, err := d.pool()
	if err != nil {
		return err
	}
	return pool.Close()
}

func (d *Database) Ping(ctx context.Context) error {
	pool, err := d.pool()
	if err != nil {
		return err
	}
	return pool.PingContext(ctx)
}

// Stats reports the connection pool counters
func (d *Database) Stats() (sql.DBStats, error) {
	pool, err := d.pool()
	if err != nil {
		return sql.DBStats{}, err
	}
	return pool.Stats(), nil
}
