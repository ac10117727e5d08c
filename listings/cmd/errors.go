package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/arthur-debert/listings/formats"
	"github.com/arthur-debert/listings/types"
)

// CLIError represents a user-friendly CLI error with context and suggestions
type CLIError struct {
	Operation   string   // The operation that failed (e.g., "add", "delete", "load backup")
	Cause       string   // The underlying cause (e.g., "property not found")
	Details     string   // Additional technical details
	Suggestions []string // Helpful suggestions for the user
	Underlying  error    // Original error for debugging
}

// Error implements the error interface
func (e *CLIError) Error() string {
	var msg strings.Builder

	if e.Operation != "" {
		msg.WriteString(fmt.Sprintf("Failed to %s", e.Operation))
	} else {
		msg.WriteString("Operation failed")
	}
	if e.Cause != "" {
		msg.WriteString(fmt.Sprintf(": %s", e.Cause))
	}
	if e.Details != "" {
		msg.WriteString(fmt.Sprintf(" (%s)", e.Details))
	}

	if len(e.Suggestions) > 0 {
		msg.WriteString("\n\nSuggestions:")
		for i, suggestion := range e.Suggestions {
			msg.WriteString(fmt.Sprintf("\n  %d. %s", i+1, suggestion))
		}
	}

	return msg.String()
}

// Unwrap returns the underlying error for error chain compatibility
func (e *CLIError) Unwrap() error {
	return e.Underlying
}

// NewValidationError creates an error for a flag or argument that cannot be parsed
func NewValidationError(operation, field, value string, suggestions ...string) *CLIError {
	return &CLIError{
		Operation:   operation,
		Cause:       fmt.Sprintf("invalid %s: %q", field, value),
		Suggestions: suggestions,
		Underlying:  types.ErrInvalidValue,
	}
}

// NewConfigError creates an error for configuration issues
func NewConfigError(operation string, underlying error, suggestions ...string) *CLIError {
	return &CLIError{
		Operation:   operation,
		Cause:       "configuration error",
		Details:     underlying.Error(),
		Suggestions: append(suggestions, CommonSuggestions.CheckConfig),
		Underlying:  underlying,
	}
}

// NewFormatError creates an error for an unknown --format value
func NewFormatError(name string) *CLIError {
	return &CLIError{
		Operation: "render output",
		Cause:     fmt.Sprintf("unknown output format %q", name),
		Suggestions: []string{
			fmt.Sprintf("Available formats: %s", strings.Join(formats.List(), ", ")),
		},
		Underlying: types.ErrInvalidValue,
	}
}

// WrapError wraps a store error with CLI-friendly context. The cause and
// the default suggestions are picked from the error kind.
func WrapError(operation string, err error, suggestions ...string) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		if cliErr.Operation == "" {
			cliErr.Operation = operation
		}
		return cliErr
	}

	cause, hints := describe(err)
	return &CLIError{
		Operation:   operation,
		Cause:       cause,
		Details:     err.Error(),
		Suggestions: append(suggestions, hints...),
		Underlying:  err,
	}
}

func describe(err error) (string, []string) {
	switch {
	case errors.Is(err, errNoTerminal):
		return "confirmation required but stdin is not a terminal", []string{"Pass --yes to approve the action"}
	case errors.Is(err, types.ErrCancelled):
		return "cancelled by operator", []string{CommonSuggestions.UseYes}
	case errors.Is(err, types.ErrNotFound):
		return "property not found", []string{CommonSuggestions.CheckRef}
	case errors.Is(err, types.ErrDuplicateReference):
		return "reference number already in use", []string{CommonSuggestions.CheckRef}
	case errors.Is(err, types.ErrCapacityExceeded):
		return "the store is full", []string{"Delete properties or save a backup and start over"}
	case errors.Is(err, types.ErrSoldLocked):
		return "sold properties cannot be edited", nil
	case errors.Is(err, types.ErrCorruptData):
		return "file contents are corrupt", []string{"Restore the file from a backup or archive"}
	case errors.Is(err, types.ErrFileUnavailable):
		return "file cannot be accessed", []string{CommonSuggestions.CheckPerms, CommonSuggestions.CheckDataDir}
	case errors.Is(err, types.ErrInvalidValue):
		return "invalid data provided", []string{CommonSuggestions.RunHelp}
	}
	return "store operation failed", nil
}

// Common error messages and suggestions
var (
	CommonSuggestions = struct {
		CheckRef     string
		CheckDataDir string
		CheckConfig  string
		CheckPerms   string
		RunHelp      string
		UseYes       string
	}{
		CheckRef:     "Verify the reference number (try 'list' command first)",
		CheckDataDir: "Verify --data-dir points to a writable directory",
		CheckConfig:  "Check your configuration file or LISTINGS_* environment variables",
		CheckPerms:   "Check file permissions and directory access",
		RunHelp:      "Run command with --help for usage information",
		UseYes:       "Answer 'y' at the prompt or pass --yes",
	}
)
