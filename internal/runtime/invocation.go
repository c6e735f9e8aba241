// SPDX-License-Identifier: MPL-2.0

package runtime

import "slices"

// Invocation is a request to run a target. It is immutable; accessors
// return copies.
type Invocation struct {
	target string
	fixed  []string
	args   []string
}

// NewInvocation returns an invocation of target with fixed leading
// arguments (from configuration) followed by the caller's args. Both
// slices are copied, and the arguments are never split, trimmed or
// interpreted.
func NewInvocation(target string, fixed, args []string) Invocation {
	return Invocation{target: target, fixed: slices.Clone(fixed), args: slices.Clone(args)}
}

// Target returns the target executable as given: a name looked up on the
// prepared PATH, or a path.
func (i Invocation) Target() string { return i.target }

// FixedArgs returns the configured leading arguments.
func (i Invocation) FixedArgs() []string { return slices.Clone(i.fixed) }

// Args returns the caller's arguments.
func (i Invocation) Args() []string { return slices.Clone(i.args) }

// Argv returns the arguments passed to the target, without argv[0].
func (i Invocation) Argv() []string {
	return slices.Concat(i.fixed, i.args)
}
