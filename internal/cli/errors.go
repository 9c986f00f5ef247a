// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types and exit codes for the CLI commands.
//
// Handlers always return errors and never exit. Run reports them once and
// main maps them to an exit code with GetExitCode.

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/carepath/carepath-tui/internal/api"
	"github.com/carepath/carepath-tui/internal/config"
	"github.com/carepath/carepath-tui/internal/storage"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitNetworkError indicates a service could not be reached or answered
	// with an error status
	ExitNetworkError = 5
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 7
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError is a malformed command line.
type UsageError struct {
	Message string
	Hint    string
}

func (e *UsageError) Error() string {
	return e.Message
}

// ValidationError represents a validation failure for user input.
type ValidationError struct {
	Field   string
	Value   string
	Reason  string
	Example string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// NotFoundError represents a resource not found error.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string
	Action  string
	Reason  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ErrMissingArgument creates an error for missing required arguments.
func ErrMissingArgument(argName, usage string) error {
	return &UsageError{
		Message: fmt.Sprintf("missing argument: %s", argName),
		Hint:    "Usage: " + usage,
	}
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// GetExitCode determines the exit code for an error returned by Run.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	var validationErr *ValidationError
	if errors.As(err, &usageErr) || errors.As(err, &validationErr) {
		return ExitUsageError
	}

	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) || errors.Is(err, storage.ErrNotFound) {
		return ExitNotFoundError
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ExitTimeoutError
	}

	var netErr *api.NetworkError
	if errors.As(err, &netErr) {
		if netErr.IsNotFound() {
			return ExitNotFoundError
		}
		return ExitNetworkError
	}

	var cfgErrs config.ValidateErrors
	if errors.As(err, &cfgErrs) {
		return ExitConfigError
	}

	return ExitGeneralError
}

// =============================================================================
// ERROR DISPLAY
// =============================================================================

// DisplayError reports err on env. In JSON mode the error becomes the
// command's JSON response on stdout; otherwise it goes to stderr.
func DisplayError(env *Env, command string, err error, jsonMode bool) {
	if err == nil {
		return
	}

	if jsonMode {
		_ = NewJSONErrorResponse(command, err).Write(env.Out)
		return
	}

	fmt.Fprintf(env.Err, "%s %s\n", ErrorStyle.Render("[ERROR]"), describe(err))

	var usageErr *UsageError
	if errors.As(err, &usageErr) && usageErr.Hint != "" {
		fmt.Fprintln(env.Err, DimStyle.Render(usageErr.Hint))
	}
}

// describe includes the server's detail for API failures.
func describe(err error) string {
	if api.IsNetworkError(err) {
		return api.Describe(err)
	}
	return err.Error()
}
