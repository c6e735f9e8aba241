// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Besides the Must* wrappers for environment and filesystem operations,
// WriteExecutable and WriteFakePython create stand-in programs so that
// dependency resolution can be exercised against a controlled PATH.
package testutil
