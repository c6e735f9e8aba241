// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/enggenv/envrun/internal/provision"
)

// newCacheCommand creates the `envrun cache` command tree.
func newCacheCommand(app *App, flags *rootFlags) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the resolution cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the resolution cache file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cache, err := app.cache(cmd, flags)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cache.Path())
			return nil
		},
	})

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached resolution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cache, err := app.cache(cmd, flags)
			if err != nil {
				return err
			}
			if err := cache.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Cleared %s\n", SuccessStyle.Render("✓"), cache.Path())
			return nil
		},
	})

	return cacheCmd
}

// cache opens the configured resolution cache, whether or not it is enabled.
func (a *App) cache(cmd *cobra.Command, flags *rootFlags) (*provision.Cache, error) {
	cfg, err := a.loadConfig(cmd.Context(), flags.config)
	if err != nil {
		return nil, err
	}
	dir, err := cfg.ResolvedCacheDir()
	if err != nil {
		return nil, err
	}
	return provision.NewCache(dir), nil
}
