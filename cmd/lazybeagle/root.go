package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var configFlag string
	var outputFlag string

	ctx := newCommandContext(stdout, stderr, &configFlag, &outputFlag)

	rootCmd := &cobra.Command{
		Use:           "lazybeagle",
		Short:         "LazyBeagle dashboard configuration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if outputFlag != "text" && outputFlag != "json" {
				return fmt.Errorf("unknown output format: %q (expected text or json)", outputFlag)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Settings file path (default: auto-discover)")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "text", "Output format: text or json")

	rootCmd.AddCommand(
		newShowCommand(ctx),
		newSetCommand(ctx),
		newExportCommand(ctx),
		newImportCommand(ctx),
		newResetCommand(ctx),
		newReloadCommand(ctx),
		newClearCommand(ctx),
		newStatusCommand(ctx),
		newValidateCommand(ctx),
		newKeyCommand(ctx),
		newServicesCommand(ctx),
		newLinksCommand(ctx),
		newSearchCommand(ctx),
		newToggleCommand(ctx),
		newPingCommand(ctx),
		newBackgroundCommand(ctx),
		newInitCommand(),
		newVersionCommand(ctx),
	)

	return rootCmd
}
