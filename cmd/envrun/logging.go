// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/enggenv/envrun/internal/config"
)

// newLogger returns the runner logger. Every line carries the run id so that
// interleaved output of concurrent runs can be told apart.
func newLogger(w io.Writer, level config.LogLevel, verbose bool) *log.Logger {
	lvl, err := log.ParseLevel(string(level))
	if err != nil {
		lvl = log.WarnLevel
	}
	if verbose {
		lvl = log.DebugLevel
	}
	logger := log.NewWithOptions(w, log.Options{
		Prefix: config.AppName,
		Level:  lvl,
	})
	return logger.With("run", uuid.NewString())
}
