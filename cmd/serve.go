package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"harness/internal/app"
)

func newServeCmd() *cobra.Command {
	var (
		dataDir         string
		persistent      bool
		listenHost      string
		listenPort      int
		monitoringAddr  string
		regenerateCerts bool
		debug           bool
	)

	cmd := &cobra.Command{
		Use:   "serve <config-file>",
		Short: "Start the daemon: load the configuration, start auto-start services, and listen for clients",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.NewConfig(args[0])
			cfg.Debug = debug
			cfg.Persistent = persistent
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			if listenHost != "" {
				cfg.ListenHost = listenHost
			}
			if listenPort != 0 {
				cfg.ListenPort = listenPort
			}
			if monitoringAddr != "" {
				cfg.MonitoringAddr = monitoringAddr
			}
			cfg.RegenerateCerts = regenerateCerts

			application, err := app.NewApplication(cfg)
			if err != nil {
				return fmt.Errorf("bootstrap: %w", err)
			}
			return application.Run(context.Background())
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Directory for TLS certificates and persistent state (default: OS config dir)")
	cmd.Flags().BoolVar(&persistent, "persistent", false, "Use a BadgerDB-backed registry that survives restarts")
	cmd.Flags().StringVar(&listenHost, "listen-host", "", "Host for the daemon's WebSocket listener")
	cmd.Flags().IntVar(&listenPort, "listen-port", 0, "Port for the daemon's WebSocket listener")
	cmd.Flags().StringVar(&monitoringAddr, "monitoring-addr", "", "Address for the plaintext /healthz and /metrics listener")
	cmd.Flags().BoolVar(&regenerateCerts, "regenerate-certs", false, "Force regeneration of the self-signed TLS certificate")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug-level logging")

	return cmd
}
