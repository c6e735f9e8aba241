// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/enggenv/envrun/internal/config"
	"github.com/enggenv/envrun/internal/provision"
	"github.com/enggenv/envrun/internal/runtime"
	"github.com/enggenv/envrun/pkg/types"
)

type (
	// App wires CLI services and shared dependencies. Cobra handlers and the
	// packaged entry point both go through it.
	App struct {
		Config config.Provider
		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// session is one configured run: the runner, its logger and the
	// dependencies to prepare.
	session struct {
		cfg    *config.Config
		deps   provision.DependencySet
		runner *runtime.Runner
		logger *log.Logger
	}
)

// NewApp creates an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config: deps.Config,
		stdin:  deps.Stdin,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.stdin == nil {
		app.stdin = os.Stdin
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// loadConfig loads the configuration for a CLI command.
func (a *App) loadConfig(ctx context.Context, path string) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: path})
	if err != nil {
		return nil, configError(err)
	}
	return cfg, nil
}

// newSession builds a runner from cfg. extraDeps are appended to the
// configured dependencies.
func (a *App) newSession(cfg *config.Config, extraDeps []string, verbose bool) (*session, error) {
	logger := newLogger(a.stderr, cfg.Log.Level, verbose)

	forward, err := runtime.ParseSignals(cfg.Signals.Forward)
	if err != nil {
		return nil, usageError(err)
	}
	intercept, err := runtime.ParseSignals(cfg.Signals.Intercept)
	if err != nil {
		return nil, usageError(err)
	}

	var cache *provision.Cache
	if cfg.Cache.Enabled {
		dir, dirErr := cfg.ResolvedCacheDir()
		if dirErr != nil {
			logger.Warn("resolution cache disabled", "error", dirErr)
		} else {
			cache = provision.NewCache(dir)
		}
	}

	prov := provision.NewPathProvisioner(provision.Options{
		SearchPaths:       cfg.ResolvedSearchPaths(),
		WorkDir:           cfg.BaseDir,
		PythonInterpreter: cfg.Python.Interpreter,
		Cache:             cache,
		Logger:            logger,
	})
	runner := runtime.New(runtime.Options{
		Provisioner: prov,
		Stdin:       a.stdin,
		Stdout:      a.stdout,
		Stderr:      a.stderr,
		WorkDir:     cfg.ResolvedWorkDir(),
		Forward:     forward,
		Intercept:   intercept,
		GracePeriod: cfg.Signals.GracePeriod,
		Logger:      logger,
	})

	return &session{
		cfg:    cfg,
		deps:   provision.NewDependencySet(slices.Concat(cfg.Dependencies, extraDeps)...),
		runner: runner,
		logger: logger,
	}, nil
}

// execute prepares the session's dependencies and runs inv. A non-zero
// target exit becomes an ExitError without a cause.
func (s *session) execute(ctx context.Context, inv runtime.Invocation) error {
	s.logger.Debug("run requested", "target", inv.Target(), "dependencies", s.deps.IDs(), "config", s.cfg.Source)
	res, err := s.runner.Execute(ctx, s.deps, inv)
	if err != nil {
		return err
	}
	if res.ExitCode.IsRunnerFailure() {
		s.logger.Warn("target exited with a code envrun also uses for its own failures", "code", res.ExitCode)
	}
	if !res.ExitCode.IsSuccess() {
		return &ExitError{Code: res.ExitCode}
	}
	return nil
}

// exitCode renders err to stderr and returns the process exit code for it.
func (a *App) exitCode(err error, verbose bool) types.ExitCode {
	code, _ := classifyError(err)
	renderError(a.stderr, err, verbose)
	return code
}
