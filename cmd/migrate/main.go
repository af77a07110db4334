// Command migrate manages the database schema.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/barcodeprint/backend/internal/infrastructure/config"
	"github.com/barcodeprint/backend/internal/infrastructure/logger"
	"github.com/barcodeprint/backend/internal/infrastructure/migration"
	"github.com/barcodeprint/backend/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsDir = "migrations"

var errUsage = errors.New("invalid usage")

func main() {
	var (
		migrationsPath string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", "", "Read migrations from this directory instead of the embedded set")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	if err := run(flag.Args(), migrationsPath, log); err != nil {
		if errors.Is(err, errUsage) {
			printUsage()
		}
		log.Error("Migration command failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(args []string, migrationsPath string, log *zap.Logger) error {
	if len(args) == 0 {
		return errUsage
	}
	command := args[0]

	// create and list work on the source tree and need no database
	switch command {
	case "create":
		if len(args) < 2 {
			return fmt.Errorf("%w: migrate create <name> [description]", errUsage)
		}
		description := ""
		if len(args) > 2 {
			description = args[2]
		}
		mf, err := migration.CreateMigration(dirOrDefault(migrationsPath), args[1], description)
		if err != nil {
			return err
		}
		log.Info("Migration created",
			zap.Uint("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		return nil

	case "list":
		list, err := migration.ListMigrations(dirOrDefault(migrationsPath))
		if err != nil {
			return err
		}
		for _, m := range list {
			fmt.Printf("  %06d  %s\n", m.Version, m.Name)
		}
		log.Info("Available migrations", zap.Int("count", len(list)))
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	var m *migration.Migrator
	if migrationsPath != "" {
		m, err = migration.New(db, migrationsPath, log)
	} else {
		m, err = migration.NewFromFS(db, migrations.FS, log)
	}
	if err != nil {
		return err
	}
	defer m.Close()

	switch command {
	case "up":
		return m.Up()

	case "down":
		return m.Down()

	case "step":
		if len(args) < 2 {
			return fmt.Errorf("%w: migrate step <n>", errUsage)
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid step count %q", args[1])
		}
		return m.Steps(n)

	case "goto":
		if len(args) < 2 {
			return fmt.Errorf("%w: migrate goto <version>", errUsage)
		}
		version, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version %q", args[1])
		}
		return m.GoTo(uint(version))

	case "version":
		status, err := m.Status()
		if err != nil {
			return err
		}
		if status.Version == 0 {
			log.Info("No migrations applied")
			return nil
		}
		log.Info("Current migration version",
			zap.Uint("version", status.Version),
			zap.Bool("dirty", status.Dirty),
		)
		return nil

	case "force":
		if len(args) < 2 {
			return fmt.Errorf("%w: migrate force <version>", errUsage)
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[1])
		}
		return m.Force(version)

	case "drop":
		if !slices.Contains(args[1:], "-confirm") && !slices.Contains(args[1:], "--confirm") {
			return errors.New("drop cancelled; run 'migrate drop -confirm' to confirm")
		}
		return m.Drop()

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func dirOrDefault(path string) string {
	if path == "" {
		return defaultMigrationsDir
	}
	return path
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Barcode service database migrations

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (negative rolls back)
  goto <version>        Migrate to a specific version
  version               Show the current version
  force <version>       Set the version without migrating (clears dirty state)
  drop -confirm         Drop every table
  create <name> [desc]  Create the next up/down migration pair
  list                  List migrations in the migrations directory

Flags:
  -path string          Migrations directory (default: embedded migrations)
  -log-level string     Log level (default: info)

The database connection comes from config.toml and BARCODE_DATABASE_* variables.`)
}
