// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"

	"github.com/enggenv/envrun/pkg/types"
)

const (
	// SpawnNotFound means the target does not exist on the prepared PATH or
	// at the given path.
	SpawnNotFound SpawnReason = iota + 1
	// SpawnNotExecutable means the target exists but cannot be executed.
	SpawnNotExecutable
)

// ErrSpawn is the sentinel error wrapped by SpawnError.
var ErrSpawn = errors.New("failed to start target")

type (
	// SpawnReason classifies why a target could not be started.
	SpawnReason int

	// SpawnError is returned when the target process could not be started.
	// No child process exists when it is returned.
	SpawnError struct {
		Target string
		Reason SpawnReason
		Err    error
	}
)

// Error implements the error interface.
func (e *SpawnError) Error() string {
	switch e.Reason {
	case SpawnNotFound:
		return fmt.Sprintf("target %q not found: %v", e.Target, e.Err)
	case SpawnNotExecutable:
		return fmt.Sprintf("target %q is not executable: %v", e.Target, e.Err)
	default:
		return fmt.Sprintf("%s %q: %v", ErrSpawn, e.Target, e.Err)
	}
}

// Unwrap returns ErrSpawn and the underlying cause.
func (e *SpawnError) Unwrap() []error { return []error{ErrSpawn, e.Err} }

// ExitCode returns the shell convention for the failure: 127 when the
// target was not found, 126 otherwise.
func (e *SpawnError) ExitCode() types.ExitCode {
	if e.Reason == SpawnNotFound {
		return types.ExitNotFound
	}
	return types.ExitNotExecutable
}
