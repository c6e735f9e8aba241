// SPDX-License-Identifier: MPL-2.0

//go:build unix

package runtime

import (
	"os"
	"syscall"
)

var signalTable = map[string]os.Signal{
	"SIGHUP":   syscall.SIGHUP,
	"SIGINT":   syscall.SIGINT,
	"SIGQUIT":  syscall.SIGQUIT,
	"SIGTERM":  syscall.SIGTERM,
	"SIGUSR1":  syscall.SIGUSR1,
	"SIGUSR2":  syscall.SIGUSR2,
	"SIGWINCH": syscall.SIGWINCH,
	"SIGCONT":  syscall.SIGCONT,
	"SIGTSTP":  syscall.SIGTSTP,
	"SIGALRM":  syscall.SIGALRM,
}

// terminateSignal asks a cancelled child to exit before it is killed.
var terminateSignal os.Signal = syscall.SIGTERM

// exitSignal reports the signal that terminated a process, if any.
func exitSignal(state *os.ProcessState) (os.Signal, int, bool) {
	ws, ok := state.Sys().(syscall.WaitStatus)
	if !ok || !ws.Signaled() {
		return nil, 0, false
	}
	return ws.Signal(), int(ws.Signal()), true
}
