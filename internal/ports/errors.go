package ports

import (
	"errors"
	"fmt"
)

// Common infrastructure errors that can occur during external service
// interactions.
var (
	// ErrNotImplemented indicates that an external adapter has no working
	// implementation yet.
	ErrNotImplemented = errors.New("not implemented")

	// ErrRateLimited indicates that a call was throttled before it started.
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrServiceUnavailable indicates that the external service is unavailable.
	ErrServiceUnavailable = errors.New("service unavailable")
)

// AdapterError represents an error from an external service adapter such as
// an uploader or renderer.
type AdapterError struct {
	// Service names the external service, e.g. "youtube".
	Service string

	// Operation is the name of the operation that failed.
	Operation string

	// Err is the underlying error that occurred.
	Err error
}

// Error implements the error interface for AdapterError.
func (e *AdapterError) Error() string {
	return fmt.Sprintf("adapter error: service=%s, operation=%s, err=%v", e.Service, e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *AdapterError) Unwrap() error { return e.Err }

// NewAdapterError creates a new AdapterError with the given details.
func NewAdapterError(service, operation string, err error) *AdapterError {
	return &AdapterError{
		Service:   service,
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
