package telemetry

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// ProfilerConfig points continuous profiling at a Pyroscope server
type ProfilerConfig struct {
	Enabled         bool
	ServerAddress   string // e.g. http://pyroscope:4040
	ApplicationName string
}

var profileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseSpace,
	pyroscope.ProfileGoroutines,
}

// Profiler streams profiles to Pyroscope. A disabled Profiler does nothing.
type Profiler struct {
	p    *pyroscope.Profiler
	stop sync.Once
}

func NewProfiler(cfg ProfilerConfig, logger *zap.Logger) (*Profiler, error) {
	if !cfg.Enabled {
		return &Profiler{}, nil
	}
	if cfg.ServerAddress == "" {
		return nil, errors.New("profiler server address is required when profiling is enabled")
	}
	if cfg.ApplicationName == "" {
		return nil, errors.New("profiler application name is required when profiling is enabled")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	tags := map[string]string{}
	if host, err := os.Hostname(); err == nil {
		tags["hostname"] = host
	}
	p, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ApplicationName,
		ServerAddress:   cfg.ServerAddress,
		Logger:          logger.Named("pyroscope").Sugar(),
		Tags:            tags,
		ProfileTypes:    profileTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("start profiler: %w", err)
	}
	logger.Info("profiling enabled", zap.String("server_address", cfg.ServerAddress))
	return &Profiler{p: p}, nil
}

func (p *Profiler) IsEnabled() bool {
	return p.p != nil
}

// Stop flushes the last profiles. Later calls do nothing.
func (p *Profiler) Stop() (err error) {
	p.stop.Do(func() {
		if p.p != nil {
			err = p.p.Stop()
		}
	})
	return err
}
