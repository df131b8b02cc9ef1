package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"harness/internal/executor"
)

func newCheckCmd() *cobra.Command {
	var timeoutSeconds int
	cmd := &cobra.Command{
		Use:   "check -- <command> [args...]",
		Short: "Run a command locally and report its exit status, without registering it as a service",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(timeoutSeconds)*time.Second)
			defer cancel()

			result, err := executor.Execute(ctx, executor.NewLocalLauncher(), "check", executor.Command{
				Path: args[0],
				Args: args[1:],
			})
			if err != nil {
				return fmt.Errorf("check: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), result.Output)
			if !result.Success() {
				return fmt.Errorf("command exited unsuccessfully")
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&timeoutSeconds, "timeout", 30, "Seconds to wait for the command to exit")
	return cmd
}
