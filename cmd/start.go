package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"harness/internal/cli"
)

func newStartCmd() *cobra.Command {
	flags := &cli.CommandFlags{}
	cmd := &cobra.Command{
		Use:   "start <service>...",
		Short: "Start one or more already-registered services",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClientHandle(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer c.Close()

			for _, name := range args {
				if err := c.StartService(cmd.Context(), name, json.RawMessage(nil)); err != nil {
					return fmt.Errorf("start %s: %w", name, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("started %s", name)))
			}
			return nil
		},
	}
	cli.RegisterConnectionFlags(cmd, flags)
	return cmd
}
