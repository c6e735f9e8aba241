// SPDX-License-Identifier: MPL-2.0

// Package config loads the runner configuration using Viper with CUE as the
// file format.
//
// A configuration declares the dependencies a target needs, the target
// itself, extra search paths, signal handling and the resolution cache. It is
// read from the file passed with --config, else ./envrun.cue, else
// config.cue in the user config directory (e.g. ~/.config/envrun), and is
// validated against the embedded #Config schema (config_schema.cue).
//
// A loaded Config is a plain value: callers pass it to constructors instead
// of reading package state.
package config
