package daemon

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"harness/internal/config"
	"harness/internal/harnesserr"
	"harness/internal/orchestrator"
	"harness/internal/registry"
	"harness/internal/runtime"
	"harness/internal/services"
	"harness/internal/task"
	"harness/pkg/logging"
)

var connectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "harness_daemon_connected_clients",
	Help: "Number of currently connected WebSocket clients.",
})

func init() {
	prometheus.MustRegister(connectedClients)
}

// Server is the daemon's WebSocket listener plus its plaintext monitoring
// mux. Construct with New, then run the listeners with ServeTLS and ServeMonitoring.
type Server struct {
	orch    *orchestrator.Orchestrator
	reg     *registry.Registry
	lookup  *services.RegistryLookup
	runner  *task.Runner
	certs   CertProvider
	spawner runtime.Spawner

	upgrader websocket.Upgrader

	shutdown chan struct{}
}

// New returns a Server wired to the given orchestrator, registry, resolver
// lookup, and task runner, with certificates managed by certs. lookup's
// environment map backs SetEnvironmentVariables/GetEnvironmentVariables —
// the same map the orchestrator's resolver consults for "${NAME}"
// references, so a variable set over the wire protocol is visible to
// dependency resolution without a second round trip.
func New(orch *orchestrator.Orchestrator, reg *registry.Registry, lookup *services.RegistryLookup, runner *task.Runner, certs CertProvider) *Server {
	return &Server{
		orch:     orch,
		reg:      reg,
		lookup:   lookup,
		runner:   runner,
		certs:    certs,
		spawner:  runtime.NewGoroutineSpawner(),
		upgrader: websocket.Upgrader{ReadBufferSize: 4096, WriteBufferSize: 4096},
		shutdown: make(chan struct{}),
	}
}

// ServeTLS accepts WebSocket connections on addr until ctx is canceled or
// a Shutdown request is dispatched.
func (s *Server) ServeTLS(ctx context.Context, addr string, regenerateCerts bool) error {
	cert, err := s.certs.EnsureCertificate(regenerateCerts)
	if err != nil {
		return fmt.Errorf("ensure tls certificate: %w", err)
	}

	listener, err := tls.Listen("tcp", addr, &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{cert},
	})
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleUpgrade)
	httpServer := &http.Server{Handler: mux}

	errCh := make(chan error, 1)
	s.spawner.Go(ctx, func(context.Context) { errCh <- httpServer.Serve(listener) })

	select {
	case <-ctx.Done():
	case <-s.shutdown:
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// ServeMonitoring serves the plaintext /healthz and /metrics endpoints,
// which intentionally sit outside the TLS+tagged-protocol surface so a
// liveness probe doesn't need a client certificate.
func (s *Server) ServeMonitoring(ctx context.Context, addr string) error {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: r}
	errCh := make(chan error, 1)
	s.spawner.Go(ctx, func(context.Context) { errCh <- srv.ListenAndServe() })

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Handler returns the WebSocket upgrade endpoint as a plain http.Handler,
// so tests and alternate transports (e.g. a shared httptest.Server) can
// mount it without going through ServeTLS's own listener setup.
func (s *Server) Handler() http.HandlerFunc {
	return s.handleUpgrade
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.WithComponent("daemon").Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	connectedClients.Inc()
	defer connectedClients.Dec()

	c := newConnection(s, conn)
	c.serve(r.Context())
}

// dispatch handles one decoded request and returns the response frame to
// send back. Local, per-request errors never propagate past this
// function — they become an Error{message} frame so the connection and
// the daemon both stay up.
func (s *Server) dispatch(ctx context.Context, c *connection, req any) any {
	switch r := req.(type) {
	case *StartServiceRequest:
		return s.handleStartService(ctx, r)
	case *StopServiceRequest:
		return s.handleStopService(ctx, r)
	case *GetServiceStatusRequest:
		return s.handleGetServiceStatus(ctx, r)
	case *ListServicesRequest:
		return s.handleListServices(ctx)
	case *RunHealthChecksRequest:
		return healthCheckResultsResponse(s.orch.CheckHealth(ctx))
	case *SetEnvironmentVariablesRequest:
		return s.handleSetEnvironmentVariables(r)
	case *GetEnvironmentVariablesRequest:
		return s.handleGetEnvironmentVariables(r)
	case *SubscribeRequest:
		if err := c.applySubscriptionDelta(ctx, r.Events, nil); err != nil {
			return errorResponse(err)
		}
		return successResponse()
	case *UnsubscribeRequest:
		if err := c.applySubscriptionDelta(ctx, nil, r.Events); err != nil {
			return errorResponse(err)
		}
		return successResponse()
	case *DeployPackageRequest:
		return s.handleDeployPackage(ctx, c, r)
	case *ServiceActionRequest:
		if err := s.orch.Action(ctx, r.Name, r.Action); err != nil {
			return errorResponse(err)
		}
		return successResponse()
	case *ShutdownRequest:
		logging.Audit("daemon-shutdown", c.id, "granted", nil)
		close(s.shutdown)
		return successResponse()
	default:
		return errorResponse(harnesserr.NewProtocolError("unhandled request"))
	}
}

func (s *Server) handleStartService(ctx context.Context, r *StartServiceRequest) any {
	if r.Config != nil {
		normalized, err := config.Normalize(config.HarnessConfig{
			Networks: map[string]config.NetworkConfig{"default": {Type: "local"}},
			Services: map[string]config.ServiceConfig{r.Name: *r.Config},
		})
		if err != nil {
			return errorResponse(err)
		}
		defs, err := config.BuildServiceDefinitions(normalized)
		if err != nil {
			return errorResponse(err)
		}
		if err := s.orch.Register(ctx, defs[0]); err != nil {
			return errorResponse(err)
		}
	}
	if err := s.orch.Start(ctx, []string{r.Name}); err != nil {
		return errorResponse(err)
	}
	return successResponse()
}

func (s *Server) handleStopService(ctx context.Context, r *StopServiceRequest) any {
	timeout := time.Duration(r.TimeoutSeconds) * time.Second
	if err := s.orch.Stop(ctx, []string{r.Name}, r.Force, timeout); err != nil {
		return errorResponse(err)
	}
	return successResponse()
}

func (s *Server) handleGetServiceStatus(ctx context.Context, r *GetServiceStatusRequest) any {
	entry, err := s.reg.Get(ctx, r.Name)
	if err != nil {
		return errorResponse(err)
	}
	return serviceStatusResponse(entry)
}

func (s *Server) handleListServices(ctx context.Context) any {
	entries, err := s.reg.List(ctx)
	if err != nil {
		return errorResponse(err)
	}
	byName := make(map[string]registry.ServiceEntry, len(entries))
	for _, e := range entries {
		byName[e.Name] = e
	}
	return serviceListResponse(byName)
}

// handleSetEnvironmentVariables merges r.Variables into the daemon-held
// environment map, leaving previously set names the caller didn't mention
// untouched.
func (s *Server) handleSetEnvironmentVariables(r *SetEnvironmentVariablesRequest) any {
	merged := s.lookup.Env()
	for k, v := range r.Variables {
		merged[k] = v
	}
	s.lookup.SetEnv(merged)
	return successResponse()
}

func (s *Server) handleGetEnvironmentVariables(r *GetEnvironmentVariablesRequest) any {
	all := s.lookup.Env()
	if len(r.Names) == 0 {
		return environmentVariablesResponse(all)
	}
	out := make(map[string]string, len(r.Names))
	for _, name := range r.Names {
		if v, ok := all[name]; ok {
			out[name] = v
		}
	}
	return environmentVariablesResponse(out)
}

func (s *Server) handleDeployPackage(ctx context.Context, c *connection, r *DeployPackageRequest) any {
	events, err := s.runner.Run(ctx, r.Name, r.TaskType, r.Input)
	if err != nil {
		return errorResponse(err)
	}
	s.spawner.Go(ctx, func(context.Context) {
		for evt := range events {
			c.send(taskEventFrameFromRaw(r.Name, evt))
		}
	})
	return successResponse()
}

func taskEventFrameFromRaw(name string, payload json.RawMessage) any {
	return taskEventFrame(name, payload, time.Now())
}
