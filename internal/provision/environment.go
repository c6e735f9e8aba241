// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"os"
	"path/filepath"
	goruntime "runtime"
	"slices"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
)

type (
	// Scope is a search path plus the environment it belongs to. Resolvers
	// look dependencies up in a Scope, and a prepared Environment exposes one
	// for finding the target.
	Scope struct {
		dir         string
		searchPaths []string
		inherited   []string
		pathDirs    []string
		base        []string
	}

	// Resolution records where a dependency was found.
	Resolution struct {
		Dependency Dependency
		// ID is the identifier as first declared.
		ID string
		// Location is the resolved executable path, or the module origin
		// for python dependencies.
		Location string
		// Cached reports whether the location came from the on-disk cache.
		Cached bool
	}

	// Environment is a prepared, read-only execution environment in which
	// every dependency of a set resolved.
	Environment struct {
		Scope
		key         string
		resolutions []Resolution
	}
)

// newScope builds a scope from an inherited environment. searchPaths are
// placed ahead of the inherited PATH; duplicates keep their first position.
func newScope(dir string, environ, searchPaths []string) Scope {
	base := make([]string, 0, len(environ))
	var inherited string
	for _, kv := range environ {
		name, value, _ := strings.Cut(kv, "=")
		if isPathVar(name) {
			inherited = value
			continue
		}
		base = append(base, kv)
	}
	s := Scope{
		dir:         dir,
		searchPaths: slices.Clone(searchPaths),
		inherited:   filepath.SplitList(inherited),
		base:        base,
	}
	s.pathDirs = dedup(slices.Concat(s.searchPaths, s.inherited))
	return s
}

// withToolDirs returns a copy of s whose search path holds the configured
// search paths, then toolDirs, then the inherited PATH.
func (s Scope) withToolDirs(toolDirs []string) Scope {
	s.pathDirs = dedup(slices.Concat(s.searchPaths, toolDirs, s.inherited))
	s.base = slices.Clone(s.base)
	return s
}

// Dir returns the directory relative lookups are resolved against.
func (s Scope) Dir() string {
	return s.dir
}

// PathDirs returns a copy of the search path entries in order.
func (s Scope) PathDirs() []string {
	return slices.Clone(s.pathDirs)
}

// PATH returns the search path joined with the OS list separator.
func (s Scope) PATH() string {
	return strings.Join(s.pathDirs, string(os.PathListSeparator))
}

// Environ returns the environment for a child process: the inherited
// variables unchanged, with PATH set to this scope's search path.
func (s Scope) Environ() []string {
	env := make([]string, 0, len(s.base)+1)
	env = append(env, s.base...)
	return append(env, "PATH="+s.PATH())
}

// LookPath finds an executable in the scope. Names with a path separator
// are resolved against Dir; bare names are searched on the scope's PATH,
// never on the calling process's own PATH.
func (s Scope) LookPath(file string) (string, error) {
	return interp.LookPathDir(s.dir, expand.ListEnviron(s.Environ()...), file)
}

// Key identifies the dependency set and base environment the Environment
// was prepared from. Equal keys mean equivalent environments.
func (e *Environment) Key() string {
	return e.key
}

// Resolutions returns a copy of the resolved dependencies in declaration order.
func (e *Environment) Resolutions() []Resolution {
	return slices.Clone(e.resolutions)
}

// Lookup returns the resolution for a dependency identifier.
func (e *Environment) Lookup(id string) (Resolution, bool) {
	dep, err := ParseDependency(id)
	if err != nil {
		return Resolution{}, false
	}
	for _, r := range e.resolutions {
		if r.Dependency == dep {
			return r, true
		}
	}
	return Resolution{}, false
}

// Equal reports whether two environments hold the same resolutions for
// the same key. Whether a location came from the cache is ignored.
func (e *Environment) Equal(other *Environment) bool {
	if e == nil || other == nil {
		return e == other
	}
	if e.key != other.key || e.PATH() != other.PATH() || len(e.resolutions) != len(other.resolutions) {
		return false
	}
	for i := range e.resolutions {
		a, b := e.resolutions[i], other.resolutions[i]
		if a.Dependency != b.Dependency || a.Location != b.Location {
			return false
		}
	}
	return true
}

func isPathVar(name string) bool {
	if goruntime.GOOS == "windows" {
		return strings.EqualFold(name, "PATH")
	}
	return name == "PATH"
}

// dedup drops empty entries and later duplicates, keeping order.
func dedup(dirs []string) []string {
	seen := make(map[string]bool, len(dirs))
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}
