package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"harness/internal/cli"
	"harness/internal/registry"
)

func newStatusCmd() *cobra.Command {
	var health bool
	flags := &cli.CommandFlags{}
	cmd := &cobra.Command{
		Use:   "status [service]",
		Short: "Show the current state of one service, or every registered service",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClientHandle(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer c.Close()

			if health {
				results, err := c.RunHealthChecks(cmd.Context())
				if err != nil {
					return err
				}
				return printHealth(cmd, results, flags.OutputFormat, flags.NoHeaders)
			}

			if len(args) == 1 {
				entry, err := c.GetServiceStatus(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printServices(cmd, map[string]registry.ServiceEntry{args[0]: entry}, flags.OutputFormat, flags.NoHeaders)
			}

			entries, err := c.ListServices(cmd.Context())
			if err != nil {
				return err
			}
			return printServices(cmd, entries, flags.OutputFormat, flags.NoHeaders)
		},
	}
	cmd.Flags().BoolVar(&health, "health", false, "Run health checks instead of reporting registry state")
	cli.RegisterCommonFlags(cmd, flags)
	return cmd
}

func printServices(cmd *cobra.Command, entries map[string]registry.ServiceEntry, format string, noHeaders bool) error {
	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	cli.RenderServiceTable(cmd.OutOrStdout(), entries, noHeaders)
	return nil
}

func printHealth(cmd *cobra.Command, results map[string]registry.HealthStatus, format string, noHeaders bool) error {
	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	cli.RenderHealthTable(cmd.OutOrStdout(), results, noHeaders)
	return nil
}

func newDaemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Inspect or control the running daemon itself",
	}
	cmd.AddCommand(newDaemonStatusCmd())
	cmd.AddCommand(newDaemonShutdownCmd())
	return cmd
}

func newDaemonStatusCmd() *cobra.Command {
	flags := &cli.CommandFlags{}
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check whether the daemon is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.CheckServerRunning(flags.Host, flags.Port); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("daemon reachable at %s:%d", flags.Host, flags.Port)))
			return nil
		},
	}
	cli.RegisterConnectionFlags(cmd, flags)
	return cmd
}

func newDaemonShutdownCmd() *cobra.Command {
	flags := &cli.CommandFlags{}
	cmd := &cobra.Command{
		Use:   "shutdown",
		Short: "Ask the daemon to terminate",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClientHandle(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer c.Close()
			if err := c.Shutdown(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("shutdown requested"))
			return nil
		},
	}
	cli.RegisterConnectionFlags(cmd, flags)
	return cmd
}
