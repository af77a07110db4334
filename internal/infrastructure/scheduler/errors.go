package scheduler

import "errors"

var (
	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrNoCleaner is returned when a cleanup scheduler has nothing to run
	ErrNoCleaner = errors.New("cleanup scheduler requires a cleaner")
)
