// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the envrun CLI and the packaged pass-through entry point.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/enggenv/envrun/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlags are the persistent flags shared by every subcommand.
type rootFlags struct {
	verbose bool
	config  string
}

// NewRootCommand builds the envrun command tree for app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "envrun",
		Short: "Run a program with its declared dependencies on PATH",
		Long: TitleStyle.Render("envrun") + SubtitleStyle.Render(" - run a program with its declared dependencies on PATH") + `

envrun checks that the tools and Python modules a program needs are
available, puts them on PATH, and runs the program with every argument
forwarded unchanged. The program's exit code becomes envrun's exit code.

Dependencies and the target are declared in 'envrun.cue'.

` + SubtitleStyle.Render("Examples:") + `
  envrun run -- --city Lisbon     Run the configured target with arguments
  envrun exec --dep jq -- jq .    Run an ad-hoc command after checking jq
  envrun check                    Show where each dependency resolves
  envrun config init              Write a starter envrun.cue
  envrun cache clear              Forget cached dependency locations`,
		SilenceUsage: true,
	}
	root.SetIn(app.stdin)
	root.SetOut(app.stdout)
	root.SetErr(app.stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&flags.config, "config", "", "config file (default is ./envrun.cue, then the user config dir)")

	root.AddCommand(newRunCommand(app, flags))
	root.AddCommand(newExecCommand(app, flags))
	root.AddCommand(newCheckCommand(app, flags))
	root.AddCommand(newConfigCommand(app, flags))
	root.AddCommand(newCacheCommand(app, flags))
	return root
}

// Run executes the CLI with args and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) types.ExitCode {
	root := NewRootCommand(a)
	root.SetArgs(args)

	var failure error
	err := fang.Execute(
		ctx,
		root,
		fang.WithVersion(getVersionString()),
		fang.WithErrorHandler(func(io.Writer, fang.Styles, error) {}),
	)
	if err != nil {
		failure = err
	}
	verbose, _ := root.PersistentFlags().GetBool("verbose")
	return a.exitCode(failure, verbose)
}

// Execute runs the CLI on the process arguments and exits.
// This is called by main.main().
func Execute() {
	os.Exit(int(NewApp(Dependencies{}).Run(context.Background(), os.Args[1:])))
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version != "dev" {
		return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev (built from source)"
}
