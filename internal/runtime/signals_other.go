// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package runtime

import (
	"os"
	"syscall"
)

// Only the console signals Go can deliver on Windows are known. Relaying
// anything but os.Kill to a child fails there, which the runner logs.
var signalTable = map[string]os.Signal{
	"SIGHUP":  syscall.SIGHUP,
	"SIGINT":  os.Interrupt,
	"SIGQUIT": syscall.SIGQUIT,
	"SIGTERM": syscall.SIGTERM,
}

// Windows cannot ask a process to terminate, so cancellation kills it.
var terminateSignal = os.Kill

// exitSignal always reports false: Windows exit codes carry no signal.
func exitSignal(*os.ProcessState) (os.Signal, int, bool) {
	return nil, 0, false
}
