// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// SkipOnWindows skips tests that rely on POSIX shell scripts.
func SkipOnWindows(t testing.TB) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

// WriteExecutable writes a /bin/sh script named name into dir with the
// executable bit set and returns its path.
func WriteExecutable(t testing.TB, dir, name, body string) string {
	t.Helper()
	MustMkdirAll(t, dir, 0o755)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("failed to write executable %s: %v", path, err)
	}
	return path
}

// WriteFakePython writes an interpreter stand-in named name into dir. It
// accepts "-c PROGRAM MODULE", prints "/modules/MODULE.py" and exits 0 for
// modules listed in importable, and exits 1 for anything else. Every
// invocation appends the module name to dir/name.log.
func WriteFakePython(t testing.TB, dir, name string, importable ...string) string {
	t.Helper()
	body := `echo "$3" >> "$0.log"
case "$3" in
`
	for _, m := range importable {
		body += "\t" + shellQuote(m) + ") echo \"/modules/$3.py\"; exit 0 ;;\n"
	}
	body += "esac\nexit 1"
	return WriteExecutable(t, dir, name, body)
}

// Invocations returns how many times a WriteFakePython interpreter ran.
func Invocations(t testing.TB, interpreter string) int {
	t.Helper()
	data, err := os.ReadFile(interpreter + ".log")
	if os.IsNotExist(err) {
		return 0
	}
	if err != nil {
		t.Fatalf("failed to read invocation log: %v", err)
	}
	n := 0
	for _, b := range data {
		if b == '\n' {
			n++
		}
	}
	return n
}

func shellQuote(s string) string {
	out := "'"
	for _, r := range s {
		if r == '\'' {
			out += `'\''`
			continue
		}
		out += string(r)
	}
	return out + "'"
}
