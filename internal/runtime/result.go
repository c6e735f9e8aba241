// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"os"
	"time"

	"github.com/enggenv/envrun/pkg/types"
)

// Result is the outcome of a target that ran to completion.
type Result struct {
	// ExitCode is the target's exit status, or 128+n when signal n
	// terminated it.
	ExitCode types.ExitCode
	// Signal is the signal that terminated the target, nil on a normal exit.
	Signal os.Signal
	// Duration is the wall time between start and exit.
	Duration time.Duration
}

// NewExitCodeResult creates a Result for a target that exited normally.
func NewExitCodeResult(code types.ExitCode) *Result {
	return &Result{ExitCode: code}
}

// NewSignalResult creates a Result for a target terminated by sig.
func NewSignalResult(sig os.Signal, signum int) *Result {
	return &Result{ExitCode: types.FromSignal(signum), Signal: sig}
}

// Signaled reports whether a signal terminated the target.
func (r *Result) Signaled() bool { return r.Signal != nil }
