// SPDX-License-Identifier: MPL-2.0

//go:build unix

package runtime

import (
	"os"
	"syscall"
	"testing"
	"time"
)

// Not parallel: the test signals its own process.
func TestRunForwardsAndInterceptsSignals(t *testing.T) {
	self := syscall.Getpid()
	stdout := &readyWriter{ready: func() {
		go func() {
			// Without the runner's handler SIGUSR2 would kill the test binary.
			_ = syscall.Kill(self, syscall.SIGUSR2)
			time.Sleep(50 * time.Millisecond)
			_ = syscall.Kill(self, syscall.SIGHUP)
		}()
	}}

	r := New(Options{
		Stdout:    stdout,
		Forward:   []os.Signal{syscall.SIGHUP},
		Intercept: []os.Signal{syscall.SIGUSR2},
	})
	res, err := r.Run(t.Context(), prepare(t, "trap"), NewInvocation(testBinary(t), nil, nil))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	// The helper exits 40+1 when it receives SIGHUP.
	if res.ExitCode != 41 {
		t.Errorf("exit code = %d, want 41", res.ExitCode)
	}
}
