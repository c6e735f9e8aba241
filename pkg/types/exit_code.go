// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"
)

// Exit codes reported by the runner itself. They mirror the conventions of
// env(1) and container runners so callers can tell a runner failure from a
// target that merely exited non-zero.
const (
	// ExitSuccess is reported when the target exits cleanly.
	ExitSuccess ExitCode = 0
	// ExitFailure is reported for runner failures with no dedicated code.
	ExitFailure ExitCode = 1
	// ExitUsage is reported for invalid flags or configuration.
	ExitUsage ExitCode = 2
	// ExitResolutionFailed is reported when a declared dependency cannot be resolved.
	ExitResolutionFailed ExitCode = 125
	// ExitNotExecutable is reported when the target exists but cannot be executed.
	ExitNotExecutable ExitCode = 126
	// ExitNotFound is reported when the target executable cannot be found.
	ExitNotFound ExitCode = 127
	// ExitSignalBase is added to the signal number of a signal-terminated target.
	ExitSignalBase ExitCode = 128
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode represents a process exit status code.
	// Exit codes are in the range 0-255 on POSIX systems.
	// The zero value (0) means success.
	ExitCode int

	// InvalidExitCodeError is returned when an ExitCode is outside the
	// valid range (0-255).
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

// Error implements the error interface.
func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode so callers can use errors.Is for programmatic detection.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Validate returns an error if the ExitCode is outside the valid range (0-255).
func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess returns true if the exit code indicates successful execution.
func (c ExitCode) IsSuccess() bool { return c == ExitSuccess }

// IsRunnerFailure returns true if the code is one the runner reserves for its
// own failures (125-127). A target may still exit with these codes itself.
func (c ExitCode) IsRunnerFailure() bool {
	return c == ExitResolutionFailed || c == ExitNotExecutable || c == ExitNotFound
}

// String returns the decimal string representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }

// FromSignal returns the shell-convention exit code (128+n) for a process
// terminated by signal number n.
func FromSignal(signum int) ExitCode {
	return ExitSignalBase + ExitCode(signum)
}
