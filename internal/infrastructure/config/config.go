// Package config loads service settings from config.toml and BARCODE_
// environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full service configuration
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Log         LogConfig         `mapstructure:"log"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Printing    PrintingConfig    `mapstructure:"printing"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Idempotency IdempotencyConfig `mapstructure:"idempotency"`
	Swagger     SwaggerConfig     `mapstructure:"swagger"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr or a file path
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"` // postgres, sqlite
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
}

// DSN is the postgres URL with user and password escaped
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

type HTTPConfig struct {
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"` // 0 disables
	MaxHeaderBytes    int           `mapstructure:"max_header_bytes"`
	MaxBodySize       int64         `mapstructure:"max_body_size"`
	RateLimitEnabled  bool          `mapstructure:"rate_limit_enabled"`
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`
	// An empty origin list allows no cross-origin requests
	CORSAllowOrigins []string `mapstructure:"cors_allow_origins"`
	CORSAllowMethods []string `mapstructure:"cors_allow_methods"`
	CORSAllowHeaders []string `mapstructure:"cors_allow_headers"`
	TrustedProxies   []string `mapstructure:"trusted_proxies"`
}

// PrintingConfig covers rendering and page geometry. Lengths are mm.
type PrintingConfig struct {
	Renderer          string        `mapstructure:"renderer"` // chromedp, wkhtmltopdf
	ChromePath        string        `mapstructure:"chrome_path"`
	RemoteURL         string        `mapstructure:"remote_url"`
	WkhtmltopdfPath   string        `mapstructure:"wkhtmltopdf_path"`
	RenderTimeout     time.Duration `mapstructure:"render_timeout"`
	GridMargin        float64       `mapstructure:"grid_margin"`
	GridRowHeight     float64       `mapstructure:"grid_row_height"`
	LabelMargin       float64       `mapstructure:"label_margin"`
	MaxConcurrentJobs int           `mapstructure:"max_concurrent_jobs"`
	OutputRetention   time.Duration `mapstructure:"output_retention"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

type StorageConfig struct {
	Driver            string        `mapstructure:"driver"`    // fs, s3
	BasePath          string        `mapstructure:"base_path"` // fs only
	URLPrefix         string        `mapstructure:"url_prefix"`
	Endpoint          string        `mapstructure:"endpoint"`
	Region            string        `mapstructure:"region"`
	Bucket            string        `mapstructure:"bucket"`
	AccessKey         string        `mapstructure:"access_key"`
	SecretKey         string        `mapstructure:"secret_key"`
	UseSSL            bool          `mapstructure:"use_ssl"`
	UsePathStyle      bool          `mapstructure:"use_path_style"`
	PresignExpiration time.Duration `mapstructure:"presign_expiration"`
}

type IdempotencyConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Backend string        `mapstructure:"backend"` // memory, redis
	TTL     time.Duration `mapstructure:"ttl"`
}

type SwaggerConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	AllowedIPs []string `mapstructure:"allowed_ips"` // empty allows everyone
}

type TelemetryConfig struct {
	Enabled                bool          `mapstructure:"enabled"`
	CollectorEndpoint      string        `mapstructure:"collector_endpoint"` // OTLP gRPC
	SamplingRatio          float64       `mapstructure:"sampling_ratio"`
	ServiceName            string        `mapstructure:"service_name"`
	Insecure               bool          `mapstructure:"insecure"`
	MetricsEnabled         bool          `mapstructure:"metrics_enabled"`
	MetricsInterval        time.Duration `mapstructure:"metrics_interval"`
	LogsEnabled            bool          `mapstructure:"logs_enabled"`
	DBTraceEnabled         bool          `mapstructure:"db_trace_enabled"`
	DBLogFullSQL           bool          `mapstructure:"db_log_full_sql"`
	DBSlowQueryThresh      time.Duration `mapstructure:"db_slow_query_threshold"`
	ProfilingEnabled       bool          `mapstructure:"profiling_enabled"`
	ProfilingServerAddress string        `mapstructure:"profiling_server_address"`
	SpanProfilesEnabled    bool          `mapstructure:"span_profiles_enabled"`
}

// defaults lists every key. Viper only maps environment variables onto keys
// it already knows, so settings without a real default are listed as zero.
var defaults = map[string]any{
	"app.name": "barcode-backend",
	"app.env":  "development",
	"app.port": "8080",

	"database.driver":             "postgres",
	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "barcodes",
	"database.sslmode":            "disable",
	"database.sqlite_path":        "barcodes.db",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,

	"redis.host":     "localhost",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout":        15 * time.Second,
	"http.write_timeout":       120 * time.Second, // large exports render slowly
	"http.idle_timeout":        60 * time.Second,
	"http.request_timeout":     90 * time.Second,
	"http.max_header_bytes":    1 << 20,
	"http.max_body_size":       int64(1 << 20),
	"http.rate_limit_enabled":  false,
	"http.rate_limit_requests": 100,
	"http.rate_limit_window":   time.Minute,
	"http.cors_allow_origins":  []string{},
	"http.cors_allow_methods":  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
	"http.cors_allow_headers":  []string{"Content-Type", "X-Request-ID", "Idempotency-Key"},
	"http.trusted_proxies":     []string{},

	"printing.renderer":            "chromedp",
	"printing.chrome_path":         "",
	"printing.remote_url":          "",
	"printing.wkhtmltopdf_path":    "",
	"printing.render_timeout":      60 * time.Second,
	"printing.grid_margin":         10.0,
	"printing.grid_row_height":     40.0,
	"printing.label_margin":        1.0,
	"printing.max_concurrent_jobs": 1,
	"printing.output_retention":    7 * 24 * time.Hour,
	"printing.cleanup_interval":    time.Hour,

	"storage.driver":             "fs",
	"storage.base_path":          "./data/labels",
	"storage.url_prefix":         "/files",
	"storage.endpoint":           "",
	"storage.region":             "us-east-1",
	"storage.bucket":             "",
	"storage.access_key":         "",
	"storage.secret_key":         "",
	"storage.use_ssl":            true,
	"storage.use_path_style":     false,
	"storage.presign_expiration": 15 * time.Minute,

	"idempotency.enabled": true,
	"idempotency.backend": "memory",
	"idempotency.ttl":     24 * time.Hour,

	"swagger.enabled":     true,
	"swagger.allowed_ips": []string{},

	"telemetry.enabled":                  false,
	"telemetry.collector_endpoint":       "localhost:4317",
	"telemetry.sampling_ratio":           1.0,
	"telemetry.service_name":             "barcode-backend",
	"telemetry.insecure":                 false,
	"telemetry.metrics_enabled":          false,
	"telemetry.metrics_interval":         time.Minute,
	"telemetry.logs_enabled":             false,
	"telemetry.db_trace_enabled":         false,
	"telemetry.db_log_full_sql":          false,
	"telemetry.db_slow_query_threshold":  200 * time.Millisecond,
	"telemetry.profiling_enabled":        false,
	"telemetry.profiling_server_address": "",
	"telemetry.span_profiles_enabled":    false,
}

// Load reads configuration. Environment variables such as
// BARCODE_DATABASE_PASSWORD win over config.toml, which wins over defaults.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("BARCODE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func oneOf(key, value string, allowed ...string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("%s must be one of %s, got %q", key, strings.Join(allowed, ", "), value)
}

func (c *Config) validate() error {
	if err := errors.Join(
		oneOf("database.driver", c.Database.Driver, "postgres", "sqlite"),
		oneOf("printing.renderer", c.Printing.Renderer, "chromedp", "wkhtmltopdf"),
		oneOf("storage.driver", c.Storage.Driver, "fs", "s3"),
		oneOf("idempotency.backend", c.Idempotency.Backend, "memory", "redis"),
	); err != nil {
		return err
	}

	db := c.Database
	switch {
	case db.MaxOpenConns <= 0:
		return errors.New("database.max_open_conns must be positive")
	case db.MaxIdleConns < 0:
		return errors.New("database.max_idle_conns cannot be negative")
	case db.MaxIdleConns > db.MaxOpenConns:
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			db.MaxIdleConns, db.MaxOpenConns)
	}

	p := c.Printing
	switch {
	case p.GridMargin < 0 || p.LabelMargin < 0:
		return errors.New("printing margins cannot be negative")
	case p.GridRowHeight <= 0:
		return errors.New("printing.grid_row_height must be positive")
	case p.MaxConcurrentJobs < 0:
		return errors.New("printing.max_concurrent_jobs cannot be negative")
	}

	if c.Storage.Driver == "s3" && c.Storage.Bucket == "" {
		return errors.New("storage.bucket is required when storage.driver is s3")
	}

	t := c.Telemetry
	if t.SamplingRatio < 0 || t.SamplingRatio > 1 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %g", t.SamplingRatio)
	}
	if t.ProfilingEnabled && t.ProfilingServerAddress == "" {
		return errors.New("telemetry.profiling_server_address is required when profiling is enabled")
	}

	if c.App.Env == "production" {
		return c.validateProduction()
	}
	return nil
}

func (c *Config) validateProduction() error {
	if c.Database.Driver == "postgres" {
		if c.Database.Password == "" {
			return errors.New("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return errors.New("database.sslmode cannot be 'disable' in production")
		}
	}
	if slices.Contains(c.HTTP.CORSAllowOrigins, "*") {
		return errors.New("http.cors_allow_origins cannot be '*' in production")
	}
	if c.Swagger.Enabled && len(c.Swagger.AllowedIPs) == 0 {
		return errors.New("swagger endpoint must be disabled or have IP restriction in production")
	}
	if c.Telemetry.DBLogFullSQL {
		return errors.New("telemetry.db_log_full_sql must be false in production")
	}
	return nil
}
