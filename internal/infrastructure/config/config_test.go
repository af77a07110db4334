package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks the variables these tests touch; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"BARCODE_APP_NAME", "BARCODE_APP_ENV", "BARCODE_APP_PORT",
		"BARCODE_DATABASE_DRIVER", "BARCODE_DATABASE_HOST", "BARCODE_DATABASE_PORT",
		"BARCODE_DATABASE_PASSWORD", "BARCODE_DATABASE_SSLMODE",
		"BARCODE_DATABASE_MAX_OPEN_CONNS", "BARCODE_DATABASE_MAX_IDLE_CONNS",
		"BARCODE_PRINTING_RENDERER", "BARCODE_PRINTING_GRID_ROW_HEIGHT",
		"BARCODE_PRINTING_MAX_CONCURRENT_JOBS",
		"BARCODE_STORAGE_DRIVER", "BARCODE_STORAGE_BUCKET",
		"BARCODE_IDEMPOTENCY_BACKEND",
		"BARCODE_SWAGGER_ENABLED", "BARCODE_SWAGGER_ALLOWED_IPS",
		"BARCODE_HTTP_CORS_ALLOW_ORIGINS", "BARCODE_TELEMETRY_SAMPLING_RATIO",
		"BARCODE_TELEMETRY_PROFILING_ENABLED", "BARCODE_TELEMETRY_PROFILING_SERVER_ADDRESS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "barcode-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "barcodes", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)

		assert.Equal(t, "chromedp", cfg.Printing.Renderer)
		assert.Equal(t, 10.0, cfg.Printing.GridMargin)
		assert.Equal(t, 40.0, cfg.Printing.GridRowHeight)
		assert.Equal(t, 1.0, cfg.Printing.LabelMargin)
		assert.Equal(t, 1, cfg.Printing.MaxConcurrentJobs)
		assert.Equal(t, 7*24*time.Hour, cfg.Printing.OutputRetention)

		assert.Equal(t, "fs", cfg.Storage.Driver)
		assert.Equal(t, "/files", cfg.Storage.URLPrefix)
		assert.Equal(t, 15*time.Minute, cfg.Storage.PresignExpiration)

		assert.Equal(t, "memory", cfg.Idempotency.Backend)
		assert.Equal(t, 24*time.Hour, cfg.Idempotency.TTL)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
	})

	t.Run("loads values from environment variables with BARCODE prefix", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BARCODE_APP_NAME", "labels")
		t.Setenv("BARCODE_APP_PORT", "9000")
		t.Setenv("BARCODE_DATABASE_HOST", "db.local")
		t.Setenv("BARCODE_DATABASE_PORT", "5433")
		t.Setenv("BARCODE_PRINTING_RENDERER", "wkhtmltopdf")
		t.Setenv("BARCODE_PRINTING_GRID_ROW_HEIGHT", "80")
		t.Setenv("BARCODE_PRINTING_MAX_CONCURRENT_JOBS", "2")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "labels", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "db.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "wkhtmltopdf", cfg.Printing.Renderer)
		assert.Equal(t, 80.0, cfg.Printing.GridRowHeight)
		assert.Equal(t, 2, cfg.Printing.MaxConcurrentJobs)
	})

	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "max idle conns cannot exceed max open conns",
			env:     map[string]string{"BARCODE_DATABASE_MAX_OPEN_CONNS": "10", "BARCODE_DATABASE_MAX_IDLE_CONNS": "20"},
			wantErr: "cannot exceed",
		},
		{
			name:    "max idle conns cannot be negative",
			env:     map[string]string{"BARCODE_DATABASE_MAX_IDLE_CONNS": "-1"},
			wantErr: "max_idle_conns cannot be negative",
		},
		{
			name:    "unknown database driver",
			env:     map[string]string{"BARCODE_DATABASE_DRIVER": "mysql"},
			wantErr: "database.driver",
		},
		{
			name:    "unknown renderer",
			env:     map[string]string{"BARCODE_PRINTING_RENDERER": "prince"},
			wantErr: "printing.renderer",
		},
		{
			name:    "s3 storage requires bucket",
			env:     map[string]string{"BARCODE_STORAGE_DRIVER": "s3"},
			wantErr: "storage.bucket is required",
		},
		{
			name:    "unknown storage driver",
			env:     map[string]string{"BARCODE_STORAGE_DRIVER": "gcs"},
			wantErr: "storage.driver",
		},
		{
			name:    "unknown idempotency backend",
			env:     map[string]string{"BARCODE_IDEMPOTENCY_BACKEND": "memcached"},
			wantErr: "idempotency.backend",
		},
		{
			name:    "sampling ratio out of range",
			env:     map[string]string{"BARCODE_TELEMETRY_SAMPLING_RATIO": "1.5"},
			wantErr: "sampling_ratio",
		},
		{
			name:    "profiling requires server address",
			env:     map[string]string{"BARCODE_TELEMETRY_PROFILING_ENABLED": "true"},
			wantErr: "profiling_server_address",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("config file sits between defaults and env", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
[app]
name = "from-file"
port = "7000"

[printing]
grid_row_height = 55.5
render_timeout = "5s"
`), 0o600))
		t.Chdir(dir)
		t.Setenv("BARCODE_APP_PORT", "7100")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "from-file", cfg.App.Name)
		assert.Equal(t, "7100", cfg.App.Port)
		assert.Equal(t, 55.5, cfg.Printing.GridRowHeight)
		assert.Equal(t, 5*time.Second, cfg.Printing.RenderTimeout)
		assert.Equal(t, "chromedp", cfg.Printing.Renderer)
	})

	t.Run("malformed config file", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[app\nname ="), 0o600))
		t.Chdir(dir)

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config file")
	})

	t.Run("list settings split on commas", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BARCODE_HTTP_CORS_ALLOW_ORIGINS", "https://a.example,https://b.example")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSAllowOrigins)
	})

	t.Run("sqlite driver accepted", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BARCODE_DATABASE_DRIVER", "sqlite")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "barcodes.db", cfg.Database.SQLitePath)
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BARCODE_APP_ENV", "production")
		t.Setenv("BARCODE_DATABASE_PASSWORD", "secure-password")
		t.Setenv("BARCODE_DATABASE_SSLMODE", "require")
		t.Setenv("BARCODE_SWAGGER_ENABLED", "false")
	}

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})

	t.Run("requires database.password in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("BARCODE_DATABASE_PASSWORD", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("BARCODE_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("sqlite skips postgres checks", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("BARCODE_DATABASE_DRIVER", "sqlite")
		t.Setenv("BARCODE_DATABASE_PASSWORD", "")

		_, err := Load()
		require.NoError(t, err)
	})

	t.Run("rejects wildcard CORS origin in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("BARCODE_HTTP_CORS_ALLOW_ORIGINS", "*")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cors_allow_origins")
	})

	t.Run("fails if swagger enabled without IP restriction in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("BARCODE_SWAGGER_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "swagger endpoint must be disabled or have IP restriction")
	})

	t.Run("passes with swagger restricted by IP in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("BARCODE_SWAGGER_ENABLED", "true")
		t.Setenv("BARCODE_SWAGGER_ALLOWED_IPS", "10.0.0.1")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Swagger.Enabled)
		assert.Equal(t, []string{"10.0.0.1"}, cfg.Swagger.AllowedIPs)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", cfg.Addr())
}
