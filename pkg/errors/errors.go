// Package errors provides a structured error system for cachebox with error codes, categories, and context.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents a structured error code for cachebox operations.
type ErrorCode string

// Error code constants organized by category.
const (
	// Configuration Errors
	ErrCodeInvalidConfig    ErrorCode = "INVALID_CONFIG"
	ErrCodeConfigLoad       ErrorCode = "CONFIG_LOAD"
	ErrCodeConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Capacity / Resource Errors
	ErrCodeCapacityExceeded ErrorCode = "CAPACITY_EXCEEDED"
	ErrCodeOutOfMemory      ErrorCode = "OUT_OF_MEMORY"
	ErrCodePoolExhausted    ErrorCode = "POOL_EXHAUSTED"

	// Strategy Errors
	ErrCodeInvalidStrategy ErrorCode = "INVALID_STRATEGY"

	// State Errors
	ErrCodeStoreDestroyed ErrorCode = "STORE_DESTROYED"
	ErrCodeAlreadyStarted ErrorCode = "ALREADY_STARTED"
	ErrCodeInvalidState   ErrorCode = "INVALID_STATE"

	// Internal Errors
	ErrCodeInternalError  ErrorCode = "INTERNAL_ERROR"
	ErrCodePanicRecovered ErrorCode = "PANIC_RECOVERED"
)

// ErrorCategory represents the general category of an error.
type ErrorCategory string

const (
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryResource      ErrorCategory = "resource"
	CategoryStrategy      ErrorCategory = "strategy"
	CategoryState         ErrorCategory = "state"
	CategoryInternal      ErrorCategory = "internal"
)

// CacheError represents a structured error with context and metadata.
type CacheError struct {
	Code     ErrorCode              `json:"code"`
	Category ErrorCategory          `json:"category"`
	Message  string                 `json:"message"`
	Details  map[string]interface{} `json:"details,omitempty"`

	Cause     error     `json:"-"` // Not serialized to avoid circular refs
	Timestamp time.Time `json:"timestamp"`

	Component string `json:"component,omitempty"`
	Operation string `json:"operation,omitempty"`

	Retryable bool `json:"retryable"`
}

// Error implements the error interface.
func (e *CacheError) Error() string {
	if e.Component != "" {
		if e.Operation != "" {
			return fmt.Sprintf("[%s:%s] %s: %s", e.Component, e.Operation, e.Code, e.Message)
		}
		return fmt.Sprintf("[%s] %s: %s", e.Component, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error wrapping compatibility.
func (e *CacheError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error (for errors.Is compatibility).
func (e *CacheError) Is(target error) bool {
	if cacheErr, ok := target.(*CacheError); ok {
		return e.Code == cacheErr.Code
	}
	return false
}

// NewError creates a new cachebox error with default values.
func NewError(code ErrorCode, message string) *CacheError {
	return &CacheError{
		Code:      code,
		Category:  GetCategory(code),
		Message:   message,
		Timestamp: time.Now(),
		Details:   make(map[string]interface{}),
		Retryable: IsRetryableByDefault(code),
	}
}

// NewErrorf creates a new cachebox error with a formatted message.
func NewErrorf(code ErrorCode, format string, args ...interface{}) *CacheError {
	return NewError(code, fmt.Sprintf(format, args...))
}

// WrapError wraps an existing error with cachebox error context.
func WrapError(cause error, code ErrorCode, message string) *CacheError {
	err := NewError(code, message)
	err.Cause = cause
	return err
}

// WithComponent sets the component that produced the error.
func (e *CacheError) WithComponent(component string) *CacheError {
	e.Component = component
	return e
}

// WithOperation sets the operation during which the error occurred.
func (e *CacheError) WithOperation(operation string) *CacheError {
	e.Operation = operation
	return e
}

// WithDetail attaches a key/value detail to the error.
func (e *CacheError) WithDetail(key string, value interface{}) *CacheError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// GetCategory determines the category based on the error code.
func GetCategory(code ErrorCode) ErrorCategory {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "INVALID_CONFIG") || strings.HasPrefix(codeStr, "CONFIG_"):
		return CategoryConfiguration
	case strings.HasPrefix(codeStr, "CAPACITY_") || strings.HasPrefix(codeStr, "OUT_OF_") ||
		strings.HasPrefix(codeStr, "POOL_"):
		return CategoryResource
	case strings.HasPrefix(codeStr, "INVALID_STRATEGY"):
		return CategoryStrategy
	case strings.HasPrefix(codeStr, "STORE_") || strings.HasPrefix(codeStr, "ALREADY_") ||
		strings.HasPrefix(codeStr, "INVALID_STATE"):
		return CategoryState
	default:
		return CategoryInternal
	}
}

// IsRetryableByDefault determines if an error is retryable by default.
// The engine itself never retries; this is a hint for callers.
func IsRetryableByDefault(code ErrorCode) bool {
	switch code {
	case ErrCodeOutOfMemory, ErrCodeCapacityExceeded:
		return true
	default:
		return false
	}
}

// GetCode extracts the error code from an error, if it is a CacheError.
func GetCode(err error) (ErrorCode, bool) {
	if cacheErr, ok := err.(*CacheError); ok {
		return cacheErr.Code, true
	}
	return "", false
}

// HasCode reports whether err is a CacheError with the given code.
func HasCode(err error, code ErrorCode) bool {
	got, ok := GetCode(err)
	return ok && got == code
}

// NewCapacityExceeded creates a capacity-exceeded error for a set that could
// not make room within the eviction-ratio cap.
func NewCapacityExceeded(key string, needed, available int64) *CacheError {
	return NewErrorf(ErrCodeCapacityExceeded,
		"cannot store %q: need %d bytes, %d available after maximum eviction pass", key, needed, available).
		WithDetail("key", key).
		WithDetail("needed_bytes", needed).
		WithDetail("available_bytes", available)
}

// NewInvalidStrategy creates an error for an unknown eviction strategy name.
func NewInvalidStrategy(name string, known []string) *CacheError {
	return NewErrorf(ErrCodeInvalidStrategy,
		"unknown eviction strategy %q (known: %s)", name, strings.Join(known, ", ")).
		WithDetail("strategy", name)
}
