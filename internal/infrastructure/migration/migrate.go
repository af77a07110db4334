package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// Migrator runs the barcode schema migrations against postgres
type Migrator struct {
	m   *migrate.Migrate
	log *zap.Logger
}

// Status is the schema version recorded in schema_migrations
type Status struct {
	Version uint
	Dirty   bool
}

// New reads migrations from a directory on disk
func New(db *sql.DB, dir string, logger *zap.Logger) (*Migrator, error) {
	src, err := (&file.File{}).Open("file://" + dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations directory %s: %w", dir, err)
	}
	return open(db, "file", src, logger)
}

// NewFromFS reads migrations from fsys, normally the embedded migrations.FS
func NewFromFS(db *sql.DB, fsys fs.FS, logger *zap.Logger) (*Migrator, error) {
	src, err := iofs.New(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	return open(db, "iofs", src, logger)
}

func open(db *sql.DB, sourceName string, src source.Driver, logger *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}
	m, err := migrate.NewWithInstance(sourceName, src, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{m: m, log: logger.Named("migrate")}, nil
}

// apply treats "nothing to do" as success and logs the resulting version
func (mg *Migrator) apply(op string, fn func() error) error {
	mg.log.Info("migration started", zap.String("op", op))
	err := fn()
	if errors.Is(err, migrate.ErrNoChange) {
		mg.log.Info("schema already up to date", zap.String("op", op))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", op, err)
	}
	st, err := mg.Status()
	if err != nil {
		return err
	}
	mg.log.Info("migration finished", zap.String("op", op), zap.Uint("version", st.Version), zap.Bool("dirty", st.Dirty))
	return nil
}

func (mg *Migrator) Up() error { return mg.apply("up", mg.m.Up) }

func (mg *Migrator) Down() error { return mg.apply("down", mg.m.Down) }

// Steps applies n migrations forward, or rolls back -n
func (mg *Migrator) Steps(n int) error {
	return mg.apply(fmt.Sprintf("steps %d", n), func() error { return mg.m.Steps(n) })
}

func (mg *Migrator) GoTo(version uint) error {
	return mg.apply(fmt.Sprintf("goto %d", version), func() error { return mg.m.Migrate(version) })
}

// Status reports version 0 for a database with nothing applied
func (mg *Migrator) Status() (Status, error) {
	version, dirty, err := mg.m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return Status{}, nil
	case err != nil:
		return Status{}, fmt.Errorf("failed to get migration version: %w", err)
	}
	return Status{Version: version, Dirty: dirty}, nil
}

// Force records version without running anything, clearing a dirty flag
func (mg *Migrator) Force(version int) error {
	mg.log.Warn("forcing schema version", zap.Int("version", version))
	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Drop removes every table, including schema_migrations
func (mg *Migrator) Drop() error {
	mg.log.Warn("dropping all tables")
	if err := mg.m.Drop(); err != nil {
		return fmt.Errorf("failed to drop database: %w", err)
	}
	return nil
}

func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}
