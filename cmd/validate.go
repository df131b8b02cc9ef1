package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"harness/internal/cli"
	"harness/internal/config"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Load and validate a service configuration file without starting anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if _, err := config.BuildServiceDefinitions(cfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s is valid: %d service(s) defined", args[0], len(cfg.Services))))
			return nil
		},
	}
}
