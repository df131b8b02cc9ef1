package orchestrator

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"harness/internal/registry"
)

// probeBreakers holds one circuit breaker per probed service so a service
// whose health endpoint is persistently down stops being hammered on every
// scheduling tick; the breaker opens independently of the orchestrator's
// own start/stop state machine. byService is read and lazily populated from
// concurrent Orchestrator.Start calls, so access is serialized through mu.
type probeBreakers struct {
	mu        sync.Mutex
	byService map[string]*gobreaker.CircuitBreaker[registry.HealthStatus]
}

func newProbeBreakers() *probeBreakers {
	return &probeBreakers{byService: make(map[string]*gobreaker.CircuitBreaker[registry.HealthStatus])}
}

func (p *probeBreakers) forService(name string) *gobreaker.CircuitBreaker[registry.HealthStatus] {
	p.mu.Lock()
	defer p.mu.Unlock()

	if cb, ok := p.byService[name]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker[registry.HealthStatus](gobreaker.Settings{
		Name:        "healthcheck:" + name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	p.byService[name] = cb
	return cb
}

// runProbe evaluates check once through the service's circuit breaker and
// returns the resulting HealthStatus. An unhealthy result is also returned
// as an error, so the breaker counts it as a failure; once three
// consecutive failures open the breaker, runProbe returns the breaker's
// error with a zero (unhealthy) status and does not probe until the
// breaker's 30s timeout has passed.
func (p *probeBreakers) runProbe(ctx context.Context, serviceName string, check registry.HealthCheck) (registry.HealthStatus, error) {
	cb := p.forService(serviceName)
	return cb.Execute(func() (registry.HealthStatus, error) {
		status := evaluateProbe(ctx, check)
		if !status.Healthy {
			return status, fmt.Errorf("probe unhealthy: %s", status.Reason)
		}
		return status, nil
	})
}

func evaluateProbe(ctx context.Context, check registry.HealthCheck) registry.HealthStatus {
	timeout := check.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	switch check.Kind {
	case registry.ProbeCommand:
		return evaluateCommandProbe(probeCtx, check)
	case registry.ProbeHTTP:
		return evaluateHTTPProbe(probeCtx, check)
	case registry.ProbeTCP:
		return evaluateTCPProbe(probeCtx, check)
	default:
		return registry.HealthStatus{Unknown: true, Reason: "unknown probe kind"}
	}
}

func evaluateCommandProbe(ctx context.Context, check registry.HealthCheck) registry.HealthStatus {
	cmd := exec.CommandContext(ctx, "sh", "-c", check.Command)
	err := cmd.Run()
	exitCode := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	} else if err != nil {
		return registry.HealthStatus{Healthy: false, Reason: err.Error()}
	}
	if exitCode == check.ExpectedExit {
		return registry.HealthStatus{Healthy: true}
	}
	return registry.HealthStatus{
		Healthy: false,
		Reason:  fmt.Sprintf("exit code %d, expected %d", exitCode, check.ExpectedExit),
	}
}

func evaluateHTTPProbe(ctx context.Context, check registry.HealthCheck) registry.HealthStatus {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, check.URL, nil)
	if err != nil {
		return registry.HealthStatus{Healthy: false, Reason: err.Error()}
	}
	client := &http.Client{Timeout: check.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return registry.HealthStatus{Healthy: false, Reason: err.Error()}
	}
	defer resp.Body.Close()

	expected := check.ExpectedStatus
	if expected == 0 {
		expected = http.StatusOK
	}
	if resp.StatusCode == expected {
		return registry.HealthStatus{Healthy: true}
	}
	return registry.HealthStatus{
		Healthy: false,
		Reason:  fmt.Sprintf("HTTP %d, expected %d", resp.StatusCode, expected),
	}
}

func evaluateTCPProbe(ctx context.Context, check registry.HealthCheck) registry.HealthStatus {
	addr := fmt.Sprintf("%s:%d", check.TCPHost, check.TCPPort)
	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return registry.HealthStatus{Healthy: false, Reason: err.Error()}
	}
	conn.Close()
	return registry.HealthStatus{Healthy: true}
}
