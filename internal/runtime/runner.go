// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/enggenv/envrun/internal/provision"
	"github.com/enggenv/envrun/pkg/types"
)

// DefaultGracePeriod is the delay between terminating and killing the
// child of a cancelled run when Options.GracePeriod is zero.
const DefaultGracePeriod = 10 * time.Second

type (
	// Options configures a Runner.
	Options struct {
		// Provisioner prepares environments for Execute and Prepare.
		Provisioner provision.Provisioner
		// Stdin, Stdout and Stderr are handed to the child unchanged.
		// Nil means the runner's own streams.
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
		// WorkDir is the child's working directory. Empty inherits.
		WorkDir string
		// Forward lists signals relayed to the child while it runs.
		Forward []os.Signal
		// Intercept lists signals swallowed while the child runs.
		Intercept []os.Signal
		// GracePeriod bounds how long a cancelled child may take to exit
		// after the termination signal.
		GracePeriod time.Duration
		// Logger receives run diagnostics. Nil discards them.
		Logger *log.Logger
	}

	// Runner prepares environments and runs targets in them, one child at
	// a time.
	Runner struct {
		provisioner provision.Provisioner
		stdin       io.Reader
		stdout      io.Writer
		stderr      io.Writer
		workDir     string
		forward     []os.Signal
		intercept   []os.Signal
		grace       time.Duration
		logger      *log.Logger
	}
)

// New returns a Runner for opts.
func New(opts Options) *Runner {
	r := &Runner{
		provisioner: opts.Provisioner,
		stdin:       opts.Stdin,
		stdout:      opts.Stdout,
		stderr:      opts.Stderr,
		workDir:     opts.WorkDir,
		forward:     slices.Clone(opts.Forward),
		intercept:   slices.Clone(opts.Intercept),
		grace:       opts.GracePeriod,
		logger:      opts.Logger,
	}
	if r.stdin == nil {
		r.stdin = os.Stdin
	}
	if r.stdout == nil {
		r.stdout = os.Stdout
	}
	if r.stderr == nil {
		r.stderr = os.Stderr
	}
	if r.grace <= 0 {
		r.grace = DefaultGracePeriod
	}
	if r.logger == nil {
		r.logger = log.New(io.Discard)
	}
	if r.provisioner == nil {
		r.provisioner = provision.NewPathProvisioner(provision.Options{Logger: r.logger})
	}
	return r
}

// Prepare resolves deps into an environment. See provision.Provisioner.
func (r *Runner) Prepare(ctx context.Context, deps provision.DependencySet) (*provision.Environment, error) {
	return r.provisioner.Prepare(ctx, deps)
}

// Execute prepares deps and runs inv in the result. When preparation fails
// no process is started.
func (r *Runner) Execute(ctx context.Context, deps provision.DependencySet, inv Invocation) (*Result, error) {
	env, err := r.Prepare(ctx, deps)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, env, inv)
}

// Run starts the target of inv in env and waits for it to exit. A target
// that exits non-zero is not an error: its status is in the Result. A
// *SpawnError is returned when the target could not be started.
//
// Cancelling ctx sends the child a termination signal and kills it after
// the grace period; Run still waits for it and reports how it ended.
func (r *Runner) Run(ctx context.Context, env *provision.Environment, inv Invocation) (*Result, error) {
	if env == nil {
		return nil, errors.New("run: nil environment")
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run %s: %w", inv.Target(), err)
	}

	path, err := r.resolveTarget(env, inv.Target())
	if err != nil {
		return nil, err
	}

	argv := inv.Argv()
	cmd := exec.CommandContext(ctx, path, argv...)
	cmd.Args[0] = inv.Target()
	cmd.Env = env.Environ()
	cmd.Dir = r.workDir
	cmd.Stdin = r.stdin
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr
	cmd.Cancel = func() error {
		r.logger.Debug("run cancelled, terminating target", "pid", cmd.Process.Pid, "grace", r.grace)
		return cmd.Process.Signal(terminateSignal)
	}
	cmd.WaitDelay = r.grace

	// Catch signals before the child exists so none slips through between
	// Start and the relay loop.
	sigs := make(chan os.Signal, 8)
	if watched := slices.Concat(r.forward, r.intercept); len(watched) > 0 {
		signal.Notify(sigs, watched...)
	}
	defer signal.Stop(sigs)

	r.logger.Debug("starting target", "path", path, "argv", argv, "dir", cmd.Dir)
	start := time.Now()
	if err := cmd.Start(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("run %s: %w", inv.Target(), ctxErr)
		}
		return nil, spawnError(inv.Target(), err)
	}

	done := make(chan struct{})
	relayed := make(chan struct{})
	go func() {
		defer close(relayed)
		r.relay(cmd.Process, sigs, done)
	}()

	waitErr := cmd.Wait()
	close(done)
	<-relayed

	result, err := r.result(cmd.ProcessState, waitErr)
	if err != nil {
		return nil, err
	}
	result.Duration = time.Since(start)
	r.logger.Info("target exited", "code", result.ExitCode, "signal", result.Signal, "duration", result.Duration)
	return result, nil
}

// relay forwards or swallows signals until done is closed.
func (r *Runner) relay(proc *os.Process, sigs <-chan os.Signal, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case sig := <-sigs:
			if !slices.Contains(r.forward, sig) {
				r.logger.Debug("signal intercepted", "signal", sig)
				continue
			}
			r.logger.Debug("forwarding signal", "signal", sig, "pid", proc.Pid)
			if err := proc.Signal(sig); err != nil && !errors.Is(err, os.ErrProcessDone) {
				r.logger.Warn("failed to forward signal", "signal", sig, "error", err)
			}
		}
	}
}

// result converts the child's final state into a Result.
func (r *Runner) result(state *os.ProcessState, waitErr error) (*Result, error) {
	if state == nil {
		return nil, fmt.Errorf("wait for target: %w", waitErr)
	}
	if waitErr != nil && !isExitError(waitErr) && !errors.Is(waitErr, exec.ErrWaitDelay) {
		r.logger.Debug("wait returned an error after exit", "error", waitErr)
	}
	if sig, signum, ok := exitSignal(state); ok {
		return NewSignalResult(sig, signum), nil
	}
	code := types.ExitCode(state.ExitCode())
	if err := code.Validate(); err != nil {
		r.logger.Warn("target reported an out-of-range exit code", "code", state.ExitCode())
		return NewExitCodeResult(types.ExitFailure), nil
	}
	return NewExitCodeResult(code), nil
}

// resolveTarget finds the target in env. Names containing a path separator
// are taken relative to the child's working directory; bare names are
// searched on the prepared PATH.
func (r *Runner) resolveTarget(env *provision.Environment, target string) (string, error) {
	if target == "" {
		return "", &SpawnError{Target: target, Reason: SpawnNotFound, Err: errors.New("no target executable configured")}
	}
	if !strings.ContainsAny(target, `/\`) {
		path, err := env.LookPath(target)
		if err != nil {
			return "", &SpawnError{Target: target, Reason: SpawnNotFound, Err: err}
		}
		return path, nil
	}

	path := filepath.FromSlash(target)
	if !filepath.IsAbs(path) {
		base := r.workDir
		if base == "" {
			base = env.Dir()
		}
		path = filepath.Join(base, path)
	}
	info, err := os.Stat(path)
	switch {
	case err != nil && errors.Is(err, fs.ErrNotExist):
		return "", &SpawnError{Target: target, Reason: SpawnNotFound, Err: err}
	case err != nil:
		return "", &SpawnError{Target: target, Reason: SpawnNotExecutable, Err: err}
	case info.IsDir():
		return "", &SpawnError{Target: target, Reason: SpawnNotExecutable, Err: errors.New("is a directory")}
	}
	return path, nil
}

// spawnError classifies a failed Start.
func spawnError(target string, err error) *SpawnError {
	if errors.Is(err, fs.ErrNotExist) {
		return &SpawnError{Target: target, Reason: SpawnNotFound, Err: err}
	}
	return &SpawnError{Target: target, Reason: SpawnNotExecutable, Err: err}
}

func isExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}
