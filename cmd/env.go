package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"harness/internal/cli"
)

func newEnvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Inspect or update the daemon-held environment variable map used for \"${NAME}\" references",
	}
	cmd.AddCommand(newEnvGetCmd())
	cmd.AddCommand(newEnvSetCmd())
	return cmd
}

func newEnvGetCmd() *cobra.Command {
	flags := &cli.CommandFlags{}
	cmd := &cobra.Command{
		Use:   "get [NAME...]",
		Short: "Print daemon-held environment variables, or every variable when no names are given",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClientHandle(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer c.Close()

			vars, err := c.GetEnvironmentVariables(cmd.Context(), args)
			if err != nil {
				return err
			}
			if flags.OutputFormat == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(vars)
			}
			cli.RenderEnvTable(cmd.OutOrStdout(), vars, flags.NoHeaders)
			return nil
		},
	}
	cli.RegisterCommonFlags(cmd, flags)
	return cmd
}

func newEnvSetCmd() *cobra.Command {
	flags := &cli.CommandFlags{}
	cmd := &cobra.Command{
		Use:   "set NAME=VALUE...",
		Short: "Merge NAME=VALUE pairs into the daemon-held environment variable map",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vars := make(map[string]string, len(args))
			for _, arg := range args {
				name, value, ok := splitAssignment(arg)
				if !ok {
					return fmt.Errorf("invalid NAME=VALUE pair: %q", arg)
				}
				vars[name] = value
			}

			c, err := newClientHandle(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.SetEnvironmentVariables(cmd.Context(), vars); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("set %d variable(s)", len(vars))))
			return nil
		},
	}
	cli.RegisterConnectionFlags(cmd, flags)
	return cmd
}

func splitAssignment(s string) (name, value string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}
