package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/citrine/internal/config"
	"github.com/alexisbeaulieu97/citrine/internal/loader"
)

func newValidateCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a suite file without running it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateConfigPath(path); err != nil {
				return err
			}

			cfg, err := config.ParseConfig(path)
			if err != nil {
				return err
			}
			// Loading builds every action, which also catches malformed conditions.
			loaded, err := loader.Load(cfg)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Suite %s is valid: %d tests, %d endpoints\n",
				loaded.Suite.Name, len(loaded.Suite.Tests), len(loaded.Endpoints.Names()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "config", "c", "", "Path to suite file")
	cmd.MarkFlagRequired("config") //nolint:errcheck

	return cmd
}
