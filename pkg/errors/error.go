// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid parameters, windows and configuration values
//   - Data-shape errors (200-299): Missing or ambiguous reference rows, degenerate candles,
//     malformed price rows. These form the "invalid input" kind.
//   - Feature errors (300-399): Feature registry and calculation errors
//   - Storage errors (400-499): Table file read/write and schema errors
//   - Unsupported configuration (500-599): Pivot types, formats, intervals and providers
//     this module does not implement
//   - Market data errors (700-799): Market data fetching and parsing errors
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidPeriod, "window must be positive")
//
//	// Create a formatted error
//	err := errors.Newf(errors.ErrCodeMissingReferenceRow, "no rows for ticker %s", ticker)
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "failed to fetch daily prices", cause)
//
//	// Check error code or kind
//	if errors.HasCode(err, errors.ErrCodeZeroCandleRange) { ... }
//	if errors.IsInvalidInput(err) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error if it's an *Error type.
// The outermost *Error in the chain wins.
// Returns ErrCodeUnknown if the error is not an *Error type.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode checks if any *Error in the chain carries the given ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}

		if e.Code == code {
			return true
		}

		err = e.Cause
	}

	return false
}

// IsInvalidInput reports whether err carries a data-shape code anywhere in its chain.
func IsInvalidInput(err error) bool {
	return hasKind(err, ErrorCode.IsInvalidInput)
}

// IsUnsupported reports whether err carries an unsupported-configuration code anywhere in its chain.
func IsUnsupported(err error) bool {
	return hasKind(err, ErrorCode.IsUnsupported)
}

func hasKind(err error, match func(ErrorCode) bool) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}

		if match(e.Code) {
			return true
		}

		err = e.Cause
	}

	return false
}
