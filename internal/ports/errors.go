package ports

import (
	"errors"
	"fmt"
)

// Common infrastructure errors that can occur while loading heat data.
var (
	// ErrStoreUnavailable indicates that the backing store could not be reached.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrRateLimited indicates that a store request was rejected or
	// abandoned by a rate limiter.
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrConfigNotFound indicates that required configuration is missing.
	ErrConfigNotFound = errors.New("configuration not found")
)

// StoreError represents an error from a HeatStore operation.
// It includes the heat and operation that failed.
type StoreError struct {
	// HeatID is the heat the failed query was issued for.
	HeatID int

	// Operation is the name of the store operation that failed.
	Operation string

	// Err is the underlying error that occurred.
	Err error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: operation=%s, heat_id=%d, err=%v", e.Operation, e.HeatID, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error { return e.Err }

// IsRetryable returns true if the error is temporary and the operation
// can be retried.
func (e *StoreError) IsRetryable() bool {
	return errors.Is(e.Err, ErrStoreUnavailable) ||
		errors.Is(e.Err, ErrRateLimited) ||
		errors.Is(e.Err, ErrTimeout)
}

// NewStoreError creates a new StoreError with the given details.
func NewStoreError(heatID int, operation string, err error) *StoreError {
	return &StoreError{
		HeatID:    heatID,
		Operation: operation,
		Err:       err,
	}
}

// ConfigError represents an error from configuration operations.
type ConfigError struct {
	// ConfigKey is the configuration key that was involved in the failed
	// operation.
	ConfigKey string

	// Err is the underlying error that caused the configuration operation
	// to fail.
	Err error
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: key=%s, err=%v", e.ConfigKey, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a new ConfigError with the given details.
func NewConfigError(key string, err error) *ConfigError {
	return &ConfigError{
		ConfigKey: key,
		Err:       err,
	}
}
