// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/enggenv/envrun/internal/runtime"
)

// newRunCommand creates `envrun run`, which runs the configured target.
func newRunCommand(app *App, flags *rootFlags) *cobra.Command {
	var deps []string
	cmd := &cobra.Command{
		Use:   "run [flags] [-- ARGS...]",
		Short: "Run the configured target with its dependencies",
		Long: `Prepare the configured dependencies and run the configured target.

Arguments after the first non-flag argument, or after '--', are forwarded to
the target exactly as given. envrun exits with the target's exit code.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context(), flags.config)
			if err != nil {
				return err
			}
			if cfg.Target.Executable == "" {
				return usageError(errors.New("no target configured: set target.executable or use 'envrun exec'"))
			}
			s, err := app.newSession(cfg, deps, flags.verbose)
			if err != nil {
				return err
			}
			return s.execute(cmd.Context(), runtime.NewInvocation(cfg.Target.Executable, cfg.Target.Args, args))
		},
	}
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringArrayVar(&deps, "dep", nil, "additional dependency (repeatable)")
	return cmd
}

// newExecCommand creates `envrun exec`, which runs an ad-hoc target.
func newExecCommand(app *App, flags *rootFlags) *cobra.Command {
	var deps []string
	cmd := &cobra.Command{
		Use:   "exec [flags] [--] TARGET [ARGS...]",
		Short: "Run an ad-hoc command with the configured dependencies",
		Long: `Prepare the configured dependencies plus any --dep and run TARGET.

The configured target is ignored; its fixed arguments are not added.`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				return usageError(errors.New("exec requires a target"))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context(), flags.config)
			if err != nil {
				return err
			}
			s, err := app.newSession(cfg, deps, flags.verbose)
			if err != nil {
				return err
			}
			return s.execute(cmd.Context(), runtime.NewInvocation(args[0], nil, args[1:]))
		},
	}
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringArrayVar(&deps, "dep", nil, "additional dependency (repeatable)")
	return cmd
}

// newCheckCommand creates `envrun check`, which prepares without running.
func newCheckCommand(app *App, flags *rootFlags) *cobra.Command {
	var (
		deps   []string
		output string
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Resolve the dependencies and show where each one was found",
		Long: `Resolve the dependencies and show where each one was found.

--output yaml or --output json prints a machine-readable report holding
every resolution, the prepared PATH and the environment key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseReportFormat(output)
			if err != nil {
				return usageError(err)
			}
			cfg, err := app.loadConfig(cmd.Context(), flags.config)
			if err != nil {
				return err
			}
			s, err := app.newSession(cfg, deps, flags.verbose)
			if err != nil {
				return err
			}
			env, err := s.runner.Prepare(cmd.Context(), s.deps)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), format, env, flags.verbose)
		},
	}
	cmd.Flags().StringArrayVar(&deps, "dep", nil, "additional dependency (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, yaml or json")
	return cmd
}
