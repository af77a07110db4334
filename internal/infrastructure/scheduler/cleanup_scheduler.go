package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// OutputCleaner removes stored print outputs older than retention and
// reports how many jobs it removed
type OutputCleaner interface {
	CleanupOutputs(ctx context.Context, retention time.Duration) (int, error)
}

// CleanupSchedulerConfig holds configuration for the output cleanup scheduler
type CleanupSchedulerConfig struct {
	// Enabled determines if the scheduler is active
	Enabled bool

	// Interval between cleanup runs
	Interval time.Duration

	// Retention is how long stored outputs are kept
	Retention time.Duration

	// RunTimeout bounds a single cleanup run
	RunTimeout time.Duration

	// RunOnStart triggers one run right after Start
	RunOnStart bool
}

// DefaultCleanupSchedulerConfig returns default configuration
func DefaultCleanupSchedulerConfig() CleanupSchedulerConfig {
	return CleanupSchedulerConfig{
		Enabled:    true,
		Interval:   time.Hour,
		Retention:  7 * 24 * time.Hour,
		RunTimeout: 5 * time.Minute,
		RunOnStart: true,
	}
}

// Validate checks the configuration
func (c CleanupSchedulerConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if c.Retention <= 0 {
		return fmt.Errorf("%w: retention must be positive", ErrInvalidConfig)
	}
	return nil
}

// CleanupScheduler periodically removes expired export and print outputs
type CleanupScheduler struct {
	cleaner OutputCleaner
	logger  *zap.Logger
	config  CleanupSchedulerConfig

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	runs      int
	lastError error
}

// NewCleanupScheduler creates a new output cleanup scheduler
func NewCleanupScheduler(cleaner OutputCleaner, logger *zap.Logger, config CleanupSchedulerConfig) (*CleanupScheduler, error) {
	if cleaner == nil {
		return nil, ErrNoCleaner
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CleanupScheduler{
		cleaner: cleaner,
		logger:  logger,
		config:  config,
	}, nil
}

// Start starts the scheduler loop
func (s *CleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Output cleanup scheduler is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Output cleanup scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("retention", s.config.Retention),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *CleanupScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Output cleanup scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Output cleanup scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the loop is active
func (s *CleanupScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// Runs returns how many cleanup runs have finished
func (s *CleanupScheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

// LastError returns the error of the most recent run, if any
func (s *CleanupScheduler) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

func (s *CleanupScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.RunOnce(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Output cleanup loop stopping")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single cleanup run
func (s *CleanupScheduler) RunOnce(ctx context.Context) {
	if s.config.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.RunTimeout)
		defer cancel()
	}

	start := time.Now()
	removed, err := s.cleaner.CleanupOutputs(ctx, s.config.Retention)

	s.mu.Lock()
	s.runs++
	s.lastError = err
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Output cleanup failed",
			zap.Int("removed", removed),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return
	}
	s.logger.Debug("Output cleanup finished",
		zap.Int("removed", removed),
		zap.Duration("duration", time.Since(start)),
	)
}
