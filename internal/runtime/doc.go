// SPDX-License-Identifier: MPL-2.0

// Package runtime runs a target executable inside a prepared environment.
//
// A Runner takes an Invocation (the target, its fixed leading arguments and
// the caller's arguments, kept verbatim) and a provision.Environment, spawns
// the target with the environment's PATH and the runner's own standard
// streams, waits for it and reports its exit status as a Result.
//
// Exit status follows shell conventions: the target's own code, 128+n when
// signal n terminated it, and 127/126 (reported through SpawnError) when the
// target cannot be found or executed.
//
// While the target runs, signals listed as forwarded are relayed to it and
// signals listed as intercepted are swallowed, so the runner never exits
// before its child does.
package runtime
