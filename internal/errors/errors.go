package errors

import (
	"fmt"
	"time"
)

// Error types for the cyclo analysis pipeline
type ErrorType string

const (
	// Per-file errors (recoverable: skip the file, continue the run)
	ErrorTypeBadExtension     ErrorType = "bad_extension"
	ErrorTypeStatsUnavailable ErrorType = "stats_unavailable"
	ErrorTypeFileRead         ErrorType = "file_read"

	// Run-level errors (fatal: the run cannot produce meaningful output)
	ErrorTypeConsistency ErrorType = "consistency"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BadExtensionError indicates a file passed the coarse filename filter but
// its extension maps to no known language profile. It should never happen in
// a consistent build since both filters share one extension set, but it is
// handled per-file just in case.
type BadExtensionError struct {
	Type       ErrorType
	Path       string
	Extension  string
	Suggestion string // closest known extension, empty if nothing is close
	Timestamp  time.Time
}

// NewBadExtensionError creates a new bad-extension error
func NewBadExtensionError(path, ext string) *BadExtensionError {
	return &BadExtensionError{
		Type:      ErrorTypeBadExtension,
		Path:      path,
		Extension: ext,
		Timestamp: time.Now(),
	}
}

// WithSuggestion attaches a nearest-extension suggestion to the error
func (e *BadExtensionError) WithSuggestion(ext string) *BadExtensionError {
	e.Suggestion = ext
	return e
}

// Error implements the error interface
func (e *BadExtensionError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("file %s has unsupported extension %q (did you mean %q?)", e.Path, e.Extension, e.Suggestion)
	}
	return fmt.Sprintf("file %s has unsupported extension %q", e.Path, e.Extension)
}

// StatsUnavailableError indicates the line-statistics service produced no
// code-line count for a classified file. Treated exactly like a bad
// extension: the file is skipped and the run continues.
type StatsUnavailableError struct {
	Type       ErrorType
	Path       string
	Language   string
	Underlying error
	Timestamp  time.Time
}

// NewStatsUnavailableError creates a new stats-unavailable error
func NewStatsUnavailableError(path, language string, err error) *StatsUnavailableError {
	return &StatsUnavailableError{
		Type:       ErrorTypeStatsUnavailable,
		Path:       path,
		Language:   language,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *StatsUnavailableError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("no line statistics for %s (language %s): %v", e.Path, e.Language, e.Underlying)
	}
	return fmt.Sprintf("no line statistics for %s (language %s)", e.Path, e.Language)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *StatsUnavailableError) Unwrap() error {
	return e.Underlying
}

// FileReadError indicates a file could not be opened or read during
// scanning. The pipeline treats this as per-file recoverable.
type FileReadError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileReadError creates a new file read error
func NewFileReadError(op, path string, err error) *FileReadError {
	return &FileReadError{
		Type:       ErrorTypeFileRead,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *FileReadError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileReadError) Unwrap() error {
	return e.Underlying
}

// ConsistencyError indicates the result arrays violated an internal
// invariant: mismatched lengths or an empty node set. This is a builder
// defect or an empty analysis, never a user input problem, and it aborts
// the run without partial output.
type ConsistencyError struct {
	Type      ErrorType
	Detail    string
	Timestamp time.Time
}

// NewConsistencyError creates a new consistency violation
func NewConsistencyError(format string, args ...interface{}) *ConsistencyError {
	return &ConsistencyError{
		Type:      ErrorTypeConsistency,
		Detail:    fmt.Sprintf(format, args...),
		Timestamp: time.Now(),
	}
}

// Error implements the error interface
func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("result consistency violation: %s", e.Detail)
}

// ConfigError represents a configuration error
type ConfigError struct {
	Type       ErrorType
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Type:       ErrorTypeConfig,
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// IsRecoverable reports whether an analysis error is per-file recoverable.
// Recoverable errors skip the file; everything else aborts the run.
func IsRecoverable(err error) bool {
	switch err.(type) {
	case *BadExtensionError, *StatsUnavailableError, *FileReadError:
		return true
	}
	return false
}
