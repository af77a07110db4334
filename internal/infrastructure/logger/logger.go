package logger

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects level, encoding and destination of the root logger
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json or console
	Output     string // stdout, stderr or a file path
	TimeFormat string
}

const defaultTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// New builds the root logger. A nil cfg gives info-level JSON on stdout.
func New(cfg *Config) (*zap.Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	sink, err := openSink(cfg.Output)
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(encoder(cfg.Format, cmp.Or(cfg.TimeFormat, defaultTimeFormat)), sink, ParseLevel(cfg.Level))
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// ParseLevel maps a level name to zapcore.Level. Unknown names mean info.
func ParseLevel(level string) zapcore.Level {
	name := strings.ToLower(level)
	if name == "warning" {
		name = "warn"
	}
	l, err := zapcore.ParseLevel(name)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}

func encoder(format, timeLayout string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
	ec.EncodeDuration = zapcore.MillisDurationEncoder
	if format == "console" {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(ec)
	}
	return zapcore.NewJSONEncoder(ec)
}

func openSink(output string) (zapcore.WriteSyncer, error) {
	switch strings.ToLower(output) {
	case "", "stdout":
		return zapcore.Lock(os.Stdout), nil
	case "stderr":
		return zapcore.Lock(os.Stderr), nil
	}
	f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", output, err)
	}
	return zapcore.AddSync(f), nil
}

// Sync flushes the logger. Terminals and pipes reject fsync, which is not
// reported.
func Sync(logger *zap.Logger) error {
	err := logger.Sync()
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EBADF) {
		return nil
	}
	return err
}
