// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"testing"
	"time"
)

// helperEnv selects what the test binary does when it is started as a
// target instead of as a test run.
const helperEnv = "ENVRUN_TEST_HELPER"

func TestMain(m *testing.M) {
	if mode := os.Getenv(helperEnv); mode != "" {
		os.Exit(runHelper(mode, os.Args))
	}
	os.Exit(m.Run())
}

func runHelper(mode string, argv []string) int {
	switch mode {
	case "echo":
		// argv[0] first, so tests can check what the target was told its name is.
		if err := json.NewEncoder(os.Stdout).Encode(argv); err != nil {
			return 3
		}
		return 0
	case "exit":
		n, err := strconv.Atoi(argv[1])
		if err != nil {
			return 3
		}
		return n
	case "path":
		fmt.Println(os.Getenv("PATH"))
		return 0
	case "stdin":
		var line string
		fmt.Scanln(&line)
		fmt.Println("got " + line)
		return 0
	case "trap":
		// Exit 40+signal number on SIGTERM or SIGHUP.
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGTERM, syscall.SIGHUP)
		fmt.Println("ready")
		sig := <-sigs
		if s, ok := sig.(syscall.Signal); ok {
			return 40 + int(s)
		}
		return 40
	case "selfkill":
		p, _ := os.FindProcess(os.Getpid())
		_ = p.Signal(os.Kill)
		time.Sleep(time.Minute)
		return 3
	default:
		return 3
	}
}
