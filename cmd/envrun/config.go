// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/enggenv/envrun/internal/config"
)

// newConfigCommand creates the `envrun config` command tree.
func newConfigCommand(app *App, flags *rootFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage envrun configuration",
		Long: `Manage envrun configuration.

Configuration is read from, in order:
  - the file given with --config
  - ./envrun.cue
  - config.cue in the user config directory (e.g. ~/.config/envrun/config.cue)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig(cmd.Context(), flags.config)
			if err != nil {
				return err
			}
			content, err := config.GenerateCUE(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			source := SubtitleStyle.Render("(using defaults)")
			if cfg.Source != "" {
				source = cfg.Source
			}
			fmt.Fprintf(out, "%s %s\n\n", CmdStyle.Render("// Config file:"), source)
			fmt.Fprint(out, content)
			return nil
		},
	})

	var (
		force  bool
		global bool
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		Long: `Write a configuration file holding the defaults.

By default ./envrun.cue is written; --global writes config.cue in the user
config directory instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.LocalConfigFileName
			if global {
				dir, err := config.EnsureConfigDir()
				if err != nil {
					return err
				}
				path = filepath.Join(dir, config.ConfigFileName)
			}
			if err := config.WriteFile(config.DefaultConfig(), path, force); err != nil {
				return usageError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Created configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	initCmd.Flags().BoolVar(&global, "global", false, "write the user-level configuration")
	cfgCmd.AddCommand(initCmd)

	return cfgCmd
}
