package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"harness/internal/cli"
)

func newStopCmd() *cobra.Command {
	var (
		force   bool
		timeout int
	)
	flags := &cli.CommandFlags{}
	cmd := &cobra.Command{
		Use:   "stop <service>...",
		Short: "Stop one or more running services",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClientHandle(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer c.Close()

			for _, name := range args {
				if err := c.StopService(cmd.Context(), name, force, timeout); err != nil {
					return fmt.Errorf("stop %s: %w", name, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("stopped %s", name)))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Stop even if a running service still depends on it")
	cmd.Flags().IntVar(&timeout, "timeout", 10, "Seconds to wait for a graceful shutdown before force-killing")
	cli.RegisterConnectionFlags(cmd, flags)
	return cmd
}
