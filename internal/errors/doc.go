// Package apperrors defines structured application error types for the
// monitor: configuration errors, per-process probe failures and process
// registry failures, each carrying its underlying cause.
//
// Error Wrapping Guidelines:
// This package follows Go's error wrapping conventions using fmt.Errorf with %w.
// All error types that carry a cause implement Unwrap() to support errors.Is()
// and errors.As().
package apperrors
