// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
)

// pythonFindSpec reports the origin of the module named by argv[1] and exits
// 1 when it cannot be imported. The module name is passed as an argument and
// never spliced into the program text.
const pythonFindSpec = `import importlib.util, sys
try:
    spec = importlib.util.find_spec(sys.argv[1])
except (ImportError, ValueError):
    spec = None
if spec is None:
    sys.exit(1)
print(spec.origin or "")
`

var (
	// ErrModuleNotFound is returned when a python module cannot be imported.
	ErrModuleNotFound = errors.New("module not importable")
	// ErrUnknownKind is returned for dependencies no resolver handles.
	ErrUnknownKind = errors.New("unknown dependency kind")
)

type (
	// Resolver resolves the dependencies of one Kind.
	Resolver interface {
		// Kind is the dependency kind this resolver handles.
		Kind() Kind
		// Fingerprint identifies the resolver configuration. It is part of
		// the environment key so that, for example, changing the python
		// interpreter invalidates cached python resolutions.
		Fingerprint() string
		// Resolve locates dep in scope and returns its location.
		Resolve(ctx context.Context, dep Dependency, scope Scope) (string, error)
		// Valid reports whether a previously resolved location still holds.
		Valid(location string) bool
	}

	// ToolResolver finds executables on the scope's search path.
	ToolResolver struct{}

	// PythonModuleResolver checks that a module is importable by an
	// interpreter found on the scope's search path.
	PythonModuleResolver struct {
		// Interpreter is the interpreter command, "python3" when empty.
		Interpreter string
	}
)

// DefaultResolvers returns the tool and python resolvers.
func DefaultResolvers(pythonInterpreter string) []Resolver {
	return []Resolver{ToolResolver{}, &PythonModuleResolver{Interpreter: pythonInterpreter}}
}

// Kind returns KindTool.
func (ToolResolver) Kind() Kind { return KindTool }

// Fingerprint returns a constant; tool lookup depends only on PATH.
func (ToolResolver) Fingerprint() string { return "path" }

// Resolve returns the absolute path of the executable named by dep.
func (ToolResolver) Resolve(ctx context.Context, dep Dependency, scope Scope) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := scope.LookPath(dep.Name)
	if err != nil {
		return "", fmt.Errorf("not found on PATH: %w", err)
	}
	return path, nil
}

// Valid reports whether location is still an executable regular file.
func (ToolResolver) Valid(location string) bool {
	return isExecutable(location)
}

// Kind returns KindPython.
func (r *PythonModuleResolver) Kind() Kind { return KindPython }

// Fingerprint returns the configured interpreter.
func (r *PythonModuleResolver) Fingerprint() string { return "interpreter=" + r.interpreter() }

// Resolve runs the interpreter to locate dep.Name and returns the module
// origin. Built-in modules have an empty origin.
func (r *PythonModuleResolver) Resolve(ctx context.Context, dep Dependency, scope Scope) (string, error) {
	interp, err := scope.LookPath(r.interpreter())
	if err != nil {
		return "", fmt.Errorf("python interpreter %q not found: %w", r.interpreter(), err)
	}

	cmd := exec.CommandContext(ctx, interp, "-c", pythonFindSpec, dep.Name)
	cmd.Env = scope.Environ()
	cmd.Dir = scope.Dir()
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && stderr.Len() == 0 {
			return "", ErrModuleNotFound
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w: %s", interp, err, lastLine(msg))
		}
		return "", fmt.Errorf("%s: %w", interp, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Valid reports whether the module origin still exists. Origins that are
// not file paths ("built-in", "frozen", namespace packages) stay valid.
func (r *PythonModuleResolver) Valid(location string) bool {
	if location == "" || !filepath.IsAbs(location) {
		return true
	}
	_, err := os.Stat(location)
	return err == nil
}

func (r *PythonModuleResolver) interpreter() string {
	if r.Interpreter == "" {
		return "python3"
	}
	return r.Interpreter
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if goruntime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
