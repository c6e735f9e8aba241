// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates CUE documents against an embedded schema and turns
// CUE errors into messages that name the offending field.
//
//	//go:embed config_schema.cue
//	var schema []byte
//
//	values, err := cueutil.DecodeMap(schema, data, "#Config", "envrun.cue")
//	if err != nil {
//	    return err // "envrun.cue: signals.grace_period: conflicting values ..."
//	}
package cueutil
