// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/enggenv/envrun/internal/issue"
	"github.com/enggenv/envrun/internal/provision"
	"github.com/enggenv/envrun/internal/runtime"
	"github.com/enggenv/envrun/pkg/types"
)

// ServiceError carries the exit code and issue catalog entry for an error
// the CLI layer already classified. Always create via newServiceError.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// Code is the process exit code.
	Code types.ExitCode
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
func newServiceError(err error, issueID issue.Id, code types.ExitCode) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{Err: err, IssueID: issueID, Code: code}
}

// usageError reports a configuration or invocation mistake (exit 2).
func usageError(err error) *ServiceError {
	return newServiceError(err, 0, types.ExitUsage)
}

// configError reports a configuration that could not be loaded (exit 2).
func configError(err error) *ServiceError {
	return newServiceError(err, issue.ConfigLoadFailedId, types.ExitUsage)
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// classifyError maps a command error to the process exit code and the issue
// catalog entry explaining it.
func classifyError(err error) (types.ExitCode, issue.Id) {
	var (
		svcErr   *ServiceError
		exitErr  *ExitError
		spawnErr *runtime.SpawnError
	)
	switch {
	case err == nil:
		return types.ExitSuccess, 0
	case errors.As(err, &svcErr):
		return svcErr.Code, svcErr.IssueID
	case errors.Is(err, provision.ErrDependencyResolution):
		return types.ExitResolutionFailed, issue.DependenciesNotSatisfiedId
	case errors.As(err, &spawnErr):
		switch {
		case spawnErr.Reason == runtime.SpawnNotFound:
			return spawnErr.ExitCode(), issue.TargetNotFoundId
		case errors.Is(err, fs.ErrPermission):
			return spawnErr.ExitCode(), issue.PermissionDeniedId
		default:
			return spawnErr.ExitCode(), issue.TargetStartFailedId
		}
	case errors.As(err, &exitErr):
		return exitErr.Code, 0
	default:
		return types.ExitFailure, 0
	}
}

// renderError writes err and its catalog entry to w. Target exit codes
// (an ExitError without a cause) are reported by the exit status alone.
func renderError(w io.Writer, err error, verbose bool) {
	var exitErr *ExitError
	if err == nil || (errors.As(err, &exitErr) && exitErr.Err == nil) {
		return
	}

	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))
	var resErr *provision.ResolutionError
	if errors.As(err, &resErr) {
		fmt.Fprintln(w, resErr.Details())
	}

	_, issueID := classifyError(err)
	if issueID == 0 {
		return
	}
	if entry := issue.Get(issueID); entry != nil {
		rendered, renderErr := entry.Render(catalogStyle(w))
		if renderErr != nil {
			return
		}
		fmt.Fprint(w, rendered)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// catalogStyle picks the Glamour style: colors only on a terminal.
func catalogStyle(w io.Writer) string {
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return "dark"
	}
	return "notty"
}
