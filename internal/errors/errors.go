package apperrors

import (
	"context"
	"errors"
	"fmt"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorRegistry = 3   // Indicates the process registry could not be read.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// ErrInvalidPID is returned by probe sources for pids that can never exist.
var ErrInvalidPID = errors.New("invalid pid")

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// ProbeStage names the step of a process measurement that failed.
type ProbeStage string

// Probe stages, in the order a probe runs them.
const (
	StageStat    ProbeStage = "stat"
	StageCmdline ProbeStage = "cmdline"
	StageStatus  ProbeStage = "status"
	StageCPU     ProbeStage = "cpu"
	StageCores   ProbeStage = "cores"
	StageDelta   ProbeStage = "delta"
	StageWait    ProbeStage = "wait"
)

// ProbeError describes why a single process could not be measured. It never
// crosses the result queue: probes log it and emit an inactive sample instead.
type ProbeError struct {
	// PID is the process that was being measured.
	PID int
	// Stage is the measurement step that failed.
	Stage ProbeStage
	// Err is the underlying cause.
	Err error
}

// Error returns a message naming the pid and the failing stage.
func (e ProbeError) Error() string {
	return fmt.Sprintf("probe pid %d: %s: %v", e.PID, e.Stage, e.Err)
}

// Unwrap returns the underlying cause.
func (e ProbeError) Unwrap() error { return e.Err }

// NewProbeError builds a ProbeError.
func NewProbeError(pid int, stage ProbeStage, err error) error {
	return ProbeError{PID: pid, Stage: stage, Err: err}
}

// EnumerationError signals that the process registry itself could not be
// listed. The scheduler logs it and retries after a short backoff.
type EnumerationError struct {
	// Root is the registry location that was read.
	Root string
	// Err is the underlying cause.
	Err error
}

// Error returns a message naming the registry root.
func (e EnumerationError) Error() string {
	return fmt.Sprintf("enumerate processes in %s: %v", e.Root, e.Err)
}

// Unwrap returns the underlying cause.
func (e EnumerationError) Unwrap() error { return e.Err }

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCodeFor maps a terminal error to a process exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var cfgErr ConfigError
	var enumErr EnumerationError
	switch {
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &cfgErr):
		return ExitErrorConfig
	case errors.As(err, &enumErr):
		return ExitErrorRegistry
	default:
		return ExitErrorGeneric
	}
}
