package app

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"harness/pkg/logging"
)

// Run starts every auto-start service, then the daemon's TLS WebSocket
// listener and its plaintext monitoring listener, and blocks until ctx is
// canceled or a SIGINT/SIGTERM arrives. The auto-start step runs first, on
// its own; the two listeners then run concurrently via errgroup: if either
// exits (listener error, signal, cancellation), Run tears the other down
// and returns.
func (a *Application) Run(ctx context.Context) error {
	log := logging.WithComponent("app")

	if err := a.services.StartAutoStart(ctx); err != nil {
		return fmt.Errorf("start auto-start services: %w", err)
	}
	log.Info().Msg("services started")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := net.JoinHostPort(a.config.ListenHost, portString(a.config.ListenPort))
		log.Info().Str("addr", addr).Msg("daemon listening")
		return a.services.Daemon.ServeTLS(gctx, addr, a.config.RegenerateCerts)
	})
	g.Go(func() error {
		log.Info().Str("addr", a.config.MonitoringAddr).Msg("monitoring listener started")
		return a.services.Daemon.ServeMonitoring(gctx, a.config.MonitoringAddr)
	})

	err := g.Wait()
	log.Info().Msg("shutting down")
	return err
}

func portString(port int) string {
	return fmt.Sprintf("%d", port)
}
