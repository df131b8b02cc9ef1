package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"harness/internal/cli"
)

func newVersionCmd() *cobra.Command {
	flags := &cli.CommandFlags{}
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version and check daemon reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "harness version %s\n", rootCmd.Version)

			if err := cli.CheckServerRunning(flags.Host, flags.Port); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "daemon: not reachable at %s:%d\n", flags.Host, flags.Port)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "daemon: reachable at %s:%d\n", flags.Host, flags.Port)
			return nil
		},
	}
	cli.RegisterConnectionFlags(cmd, flags)
	return cmd
}
