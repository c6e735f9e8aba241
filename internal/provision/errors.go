// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDependencyResolution is the sentinel error wrapped by ResolutionError.
var ErrDependencyResolution = errors.New("dependency resolution failed")

type (
	// MissingDependency describes one dependency that could not be resolved.
	MissingDependency struct {
		// ID is the identifier as declared.
		ID string
		// Err explains why it could not be resolved.
		Err error
	}

	// ResolutionError reports every dependency of a set that could not be
	// resolved. It is returned instead of a partial environment.
	ResolutionError struct {
		Missing []MissingDependency
	}
)

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	ids := make([]string, 0, len(e.Missing))
	for _, m := range e.Missing {
		ids = append(ids, m.ID)
	}
	return fmt.Sprintf("%s: %s", ErrDependencyResolution, strings.Join(ids, ", "))
}

// Unwrap returns ErrDependencyResolution for errors.Is() compatibility.
func (e *ResolutionError) Unwrap() error { return ErrDependencyResolution }

// Details lists each missing dependency with its reason, one per line.
func (e *ResolutionError) Details() string {
	var b strings.Builder
	for i, m := range e.Missing {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "  • %s - %v", m.ID, m.Err)
	}
	return b.String()
}
