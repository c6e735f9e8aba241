// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

const (
	// KindTool is an executable found on the search path. It is the default kind.
	KindTool Kind = "tool"
	// KindPython is a module importable by the configured Python interpreter.
	KindPython Kind = "python"
)

// ErrInvalidDependency is the sentinel error wrapped by InvalidDependencyError.
var ErrInvalidDependency = errors.New("invalid dependency")

var (
	// dependencyNamePattern bounds names to characters that are safe as a
	// single argv element and as a path component.
	dependencyNamePattern = regexp.MustCompile(`^[A-Za-z0-9._+\-/]+$`)
	kindPattern           = regexp.MustCompile(`^[a-z]+$`)
)

type (
	// Kind selects the resolver responsible for a dependency.
	Kind string

	// Dependency is a parsed dependency identifier.
	Dependency struct {
		Kind Kind
		Name string
	}

	// InvalidDependencyError is returned for identifiers that cannot name a dependency.
	InvalidDependencyError struct {
		ID     string
		Reason string
	}

	// DependencySet is an ordered, immutable list of dependency identifiers.
	// Duplicates are allowed; they resolve once.
	DependencySet struct {
		ids []string
	}
)

// Error implements the error interface.
func (e *InvalidDependencyError) Error() string {
	return fmt.Sprintf("invalid dependency %q: %s", e.ID, e.Reason)
}

// Unwrap returns ErrInvalidDependency for errors.Is() compatibility.
func (e *InvalidDependencyError) Unwrap() error { return ErrInvalidDependency }

// ParseDependency parses "[kind:]name". Kinds are lower-case words; the
// name must match [A-Za-z0-9._+-/]+.
func ParseDependency(id string) (Dependency, error) {
	kind, name := KindTool, id
	if k, rest, found := strings.Cut(id, ":"); found {
		if !kindPattern.MatchString(k) {
			return Dependency{}, &InvalidDependencyError{ID: id, Reason: "kind must be a lower-case word"}
		}
		kind, name = Kind(k), rest
	}
	if name == "" {
		return Dependency{}, &InvalidDependencyError{ID: id, Reason: "name is empty"}
	}
	if !dependencyNamePattern.MatchString(name) {
		return Dependency{}, &InvalidDependencyError{ID: id, Reason: "name contains characters outside [A-Za-z0-9._+-/]"}
	}
	return Dependency{Kind: kind, Name: name}, nil
}

// String returns the canonical identifier: tools without a prefix, other
// kinds as "kind:name".
func (d Dependency) String() string {
	if d.Kind == KindTool {
		return d.Name
	}
	return string(d.Kind) + ":" + d.Name
}

// NewDependencySet returns a set holding a copy of ids in order.
func NewDependencySet(ids ...string) DependencySet {
	return DependencySet{ids: slices.Clone(ids)}
}

// IDs returns a copy of the identifiers as declared, duplicates included.
func (s DependencySet) IDs() []string {
	return slices.Clone(s.ids)
}

// Len returns the number of declared identifiers.
func (s DependencySet) Len() int {
	return len(s.ids)
}

// Unique returns the identifiers with later duplicates removed, keeping
// first-declaration order. "tool:git" and "git" are the same dependency.
func (s DependencySet) Unique() []string {
	seen := make(map[string]bool, len(s.ids))
	out := make([]string, 0, len(s.ids))
	for _, id := range s.ids {
		canon := id
		if dep, err := ParseDependency(id); err == nil {
			canon = dep.String()
		}
		if seen[canon] {
			continue
		}
		seen[canon] = true
		out = append(out, id)
	}
	return out
}

// With returns a new set with ids appended.
func (s DependencySet) With(ids ...string) DependencySet {
	return DependencySet{ids: append(slices.Clone(s.ids), ids...)}
}
