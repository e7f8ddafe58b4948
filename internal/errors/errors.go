// Package errors provides a lightweight structured error type
// (FontSweepError) for category-based classification and retry
// semantics at the CLI and transport boundaries.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a fontsweep error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Host document access errors
	CategoryDocument ErrorCategory = "document"
	CategoryScope    ErrorCategory = "scope"

	// Engine operation errors
	CategoryFontLoad ErrorCategory = "fontload"
	CategoryReplace  ErrorCategory = "replace"
	CategoryStyle    ErrorCategory = "style"

	// Runtime and infrastructure errors
	CategoryTransport ErrorCategory = "transport"
	CategoryInternal  ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// FontSweepError is a structured error with category, retryability, and context
type FontSweepError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for FontSweepError
type ContextFields map[string]any

// Error implements the error interface
func (e *FontSweepError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *FontSweepError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *FontSweepError) WithContext(key string, value any) *FontSweepError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new FontSweepError
func New(category ErrorCategory, severity ErrorSeverity, message string) *FontSweepError {
	return &FontSweepError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new FontSweepError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *FontSweepError {
	return &FontSweepError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if fse, ok := err.(*FontSweepError); ok {
		return fse.Category == category
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if fse, ok := err.(*FontSweepError); ok {
		return fse.Retryable
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal otherwise
func GetCategory(err error) ErrorCategory {
	if fse, ok := err.(*FontSweepError); ok {
		return fse.Category
	}
	return CategoryInternal
}
