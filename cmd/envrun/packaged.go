// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/enggenv/envrun/internal/config"
	"github.com/enggenv/envrun/internal/issue"
	"github.com/enggenv/envrun/internal/runtime"
	"github.com/enggenv/envrun/pkg/types"
)

// Stdio holds the standard streams of a packaged command.
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// RunPackaged runs the target declared in the embedded CUE configuration
// source with args forwarded verbatim and returns the exit code. There is
// no flag parsing: "--help" and friends go to the target.
func RunPackaged(ctx context.Context, name string, source []byte, args []string, stdio Stdio) int {
	app := NewApp(Dependencies{Stdin: stdio.In, Stdout: stdio.Out, Stderr: stdio.Err})
	return int(app.runPackaged(ctx, name, source, args))
}

func (a *App) runPackaged(ctx context.Context, name string, source []byte, args []string) types.ExitCode {
	wd, err := os.Getwd()
	if err != nil {
		return a.exitCode(issue.WrapWithOperation(err, "start "+name), false)
	}
	cfg, err := config.LoadBytes(source, name+" (embedded)", wd)
	if err != nil {
		return a.exitCode(configError(err), false)
	}
	if cfg.Target.Executable == "" {
		return a.exitCode(usageError(errors.New(name+": embedded configuration declares no target")), false)
	}

	s, err := a.newSession(cfg, nil, false)
	if err != nil {
		return a.exitCode(err, false)
	}
	err = s.execute(ctx, runtime.NewInvocation(cfg.Target.Executable, cfg.Target.Args, args))
	return a.exitCode(err, false)
}
