// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. The catalog maps runner failure kinds to Markdown help
// pages rendered with Glamour when the CLI reports an error.
package issue
