package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	verbose bool
	noColor bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "citrine",
		Short:         "Citrine runs message-driven integration test suites",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging and print every action trace")
	cmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable coloured output")

	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}
