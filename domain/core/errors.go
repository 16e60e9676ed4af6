package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// ErrInsufficientData means the input series is too short for the
	// requested embedding parameters.
	ErrInsufficientData = errors.New("insufficient data for analysis")

	// ErrEmptyDistribution means fewer than two embedded points exist, so
	// there are no pairwise distances to take a quantile over.
	ErrEmptyDistribution = errors.New("empty pairwise distance distribution")

	// ErrEmptyInput means a degenerate (zero-length) embedded space reached
	// matrix construction.
	ErrEmptyInput = errors.New("empty embedded space")

	// Parameter validation errors
	ErrInvalidDimension = errors.New("embedding dimension must be >= 1")
	ErrInvalidDelay     = errors.New("embedding delay must be >= 1")
	ErrInvalidQuantile  = errors.New("threshold quantile must be in [0,1]")
	ErrInvalidThreshold = errors.New("recurrence threshold must be >= 0")
)

// Error constructors with context

func NewInsufficientDataError(required, actual int) error {
	return fmt.Errorf("%w: need at least %d samples, got %d", ErrInsufficientData, required, actual)
}

func NewEmptyDistributionError(points int) error {
	return fmt.Errorf("%w: %d embedded points, need at least 2", ErrEmptyDistribution, points)
}

// Error checking helpers

func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}

func IsEmptyDistribution(err error) bool {
	return errors.Is(err, ErrEmptyDistribution)
}

func IsParameterError(err error) bool {
	return errors.Is(err, ErrInvalidDimension) ||
		errors.Is(err, ErrInvalidDelay) ||
		errors.Is(err, ErrInvalidQuantile) ||
		errors.Is(err, ErrInvalidThreshold)
}
