package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrDatasetNotFound = fmt.Errorf("%w: dataset", ErrNotFound)
	ErrNoActiveDataset = fmt.Errorf("%w: no active dataset", ErrNotFound)

	// Analytics errors
	ErrUnsupportedChartKind = errors.New("unsupported chart kind")
	ErrInsufficientColumns  = errors.New("insufficient columns for operation")
	ErrColumnNotFound       = errors.New("column not found")
	ErrEmptyDataset         = errors.New("dataset has no data")

	// Dataset lifecycle errors
	ErrDatasetNotReady = errors.New("dataset is not ready")
	ErrParseFailed     = errors.New("failed to parse uploaded file")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewChartKindError(kind string) error {
	return fmt.Errorf("%w: %q", ErrUnsupportedChartKind, kind)
}

func NewColumnCountError(operation string, need int) error {
	return fmt.Errorf("%w: %s needs at least %d numeric columns", ErrInsufficientColumns, operation, need)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsAnalyticsError(err error) bool {
	return errors.Is(err, ErrUnsupportedChartKind) ||
		errors.Is(err, ErrInsufficientColumns) ||
		errors.Is(err, ErrColumnNotFound) ||
		errors.Is(err, ErrEmptyDataset)
}
