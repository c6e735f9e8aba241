// SPDX-License-Identifier: MPL-2.0

// Package types holds small value types shared across envrun packages.
package types
