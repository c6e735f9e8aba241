// SPDX-License-Identifier: MPL-2.0

// Command enggdev runs the air-quality collector script with the Python
// environment it needs. Every argument is passed to the script unchanged.
package main

import (
	"context"
	_ "embed"
	"os"

	cmd "github.com/enggenv/envrun/cmd/envrun"
)

//go:embed enggdev.cue
var source []byte

func main() {
	os.Exit(cmd.RunPackaged(context.Background(), "enggdev", source, os.Args[1:], cmd.Stdio{
		In:  os.Stdin,
		Out: os.Stdout,
		Err: os.Stderr,
	}))
}
