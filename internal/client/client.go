package client

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"harness/internal/daemon"
	"harness/internal/harnesserr"
	"harness/internal/registry"
)

// Config describes how to reach a daemon.
type Config struct {
	Host               string
	Port               int
	InsecureSkipVerify bool
	DialTimeout        time.Duration
}

func (c Config) dialTimeout() time.Duration {
	if c.DialTimeout > 0 {
		return c.DialTimeout
	}
	return 10 * time.Second
}

// Client is one TLS WebSocket connection to a daemon. Commands are
// expected to be issued one at a time — call blocks until the matching
// response frame arrives, forwarding any Event/TaskEvent frames received
// in the meantime onto Events rather than treating them as the response.
type Client struct {
	conn   *websocket.Conn
	Events chan json.RawMessage

	responses chan json.RawMessage
	closed    chan struct{}
	closeErr  error
}

// Dial opens a TLS WebSocket connection to the daemon described by cfg.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	u := url.URL{Scheme: "wss", Host: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Path: "/ws"}

	dialer := websocket.Dialer{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify},
		HandshakeTimeout: cfg.dialTimeout(),
	}

	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial daemon at %s: %w", u.String(), err)
	}

	c := &Client{
		conn:      conn,
		Events:    make(chan json.RawMessage, 64),
		responses: make(chan json.RawMessage, 1),
		closed:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Close closes the underlying connection and stops the read loop.
func (c *Client) Close() error {
	return c.conn.Close()
}

// readLoop demultiplexes inbound frames: Event and TaskEvent frames go to
// Events, everything else is treated as the response to whatever Call is
// currently waiting.
func (c *Client) readLoop() {
	defer close(c.Events)
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.closeErr = err
			close(c.closed)
			return
		}

		var tag struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &tag); err != nil {
			continue
		}

		if tag.Type == daemon.RespEvent || tag.Type == daemon.RespTaskEvent {
			select {
			case c.Events <- raw:
			default:
			}
			continue
		}
		c.responses <- raw
	}
}

// call sends req and waits for the next non-event frame, decoding it into
// out (if non-nil).
func (c *Client) call(ctx context.Context, req any, out any) error {
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("send request: %w", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.closed:
		return fmt.Errorf("daemon connection closed: %w", c.closeErr)
	case raw := <-c.responses:
		return decodeInto(raw, out)
	}
}

func decodeInto(raw json.RawMessage, out any) error {
	var tag struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &tag); err != nil {
		return harnesserr.NewProtocolError(fmt.Sprintf("malformed response: %v", err))
	}
	if tag.Type == daemon.RespError {
		return fmt.Errorf("daemon: %s", tag.Message)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// StartService asks the daemon to start name, registering it from cfg
// first when cfg is non-nil.
func (c *Client) StartService(ctx context.Context, name string, cfg json.RawMessage) error {
	req := struct {
		Type   string          `json:"type"`
		Name   string          `json:"name"`
		Config json.RawMessage `json:"config,omitempty"`
	}{Type: daemon.ReqStartService, Name: name, Config: cfg}
	return c.call(ctx, req, nil)
}

// StopService asks the daemon to stop name.
func (c *Client) StopService(ctx context.Context, name string, force bool, timeoutSeconds int) error {
	req := struct {
		Type           string `json:"type"`
		Name           string `json:"name"`
		Force          bool   `json:"force,omitempty"`
		TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
	}{Type: daemon.ReqStopService, Name: name, Force: force, TimeoutSeconds: timeoutSeconds}
	return c.call(ctx, req, nil)
}

// GetServiceStatus fetches the current registry entry for name.
func (c *Client) GetServiceStatus(ctx context.Context, name string) (registry.ServiceEntry, error) {
	req := struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}{Type: daemon.ReqGetServiceStatus, Name: name}

	var resp struct {
		Status registry.ServiceEntry `json:"status"`
	}
	if err := c.call(ctx, req, &resp); err != nil {
		return registry.ServiceEntry{}, err
	}
	return resp.Status, nil
}

// ListServices fetches every registered service's current entry.
func (c *Client) ListServices(ctx context.Context) (map[string]registry.ServiceEntry, error) {
	req := struct {
		Type string `json:"type"`
	}{Type: daemon.ReqListServices}

	var resp struct {
		Services map[string]registry.ServiceEntry `json:"services"`
	}
	if err := c.call(ctx, req, &resp); err != nil {
		return nil, err
	}
	return resp.Services, nil
}

// RunHealthChecks asks the daemon to probe every service with a configured
// health check once, returning each service's current health.
func (c *Client) RunHealthChecks(ctx context.Context) (map[string]registry.HealthStatus, error) {
	req := struct {
		Type string `json:"type"`
	}{Type: daemon.ReqRunHealthChecks}

	var resp struct {
		Results map[string]registry.HealthStatus `json:"results"`
	}
	if err := c.call(ctx, req, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// SetEnvironmentVariables merges vars into the daemon-held environment map.
func (c *Client) SetEnvironmentVariables(ctx context.Context, vars map[string]string) error {
	req := struct {
		Type      string            `json:"type"`
		Variables map[string]string `json:"variables"`
	}{Type: daemon.ReqSetEnvironmentVariables, Variables: vars}
	return c.call(ctx, req, nil)
}

// GetEnvironmentVariables fetches names from the daemon-held environment
// map, or every variable when names is empty.
func (c *Client) GetEnvironmentVariables(ctx context.Context, names []string) (map[string]string, error) {
	req := struct {
		Type  string   `json:"type"`
		Names []string `json:"names,omitempty"`
	}{Type: daemon.ReqGetEnvironmentVariables, Names: names}

	var resp struct {
		Variables map[string]string `json:"variables"`
	}
	if err := c.call(ctx, req, &resp); err != nil {
		return nil, err
	}
	return resp.Variables, nil
}

// Subscribe installs an event filter on this connection; matching events
// subsequently arrive on Events.
func (c *Client) Subscribe(ctx context.Context, events []registry.EventType) error {
	req := struct {
		Type   string                `json:"type"`
		Events []registry.EventType `json:"events"`
	}{Type: daemon.ReqSubscribe, Events: events}
	return c.call(ctx, req, nil)
}

// Unsubscribe removes event types from this connection's filter.
func (c *Client) Unsubscribe(ctx context.Context, events []registry.EventType) error {
	req := struct {
		Type   string                `json:"type"`
		Events []registry.EventType `json:"events"`
	}{Type: daemon.ReqUnsubscribe, Events: events}
	return c.call(ctx, req, nil)
}

// DeployPackage dispatches a one-shot task; its progress events arrive on
// Events tagged "TaskEvent" rather than as part of this call's response.
func (c *Client) DeployPackage(ctx context.Context, name, taskType string, input json.RawMessage) error {
	req := struct {
		Type     string          `json:"type"`
		Name     string          `json:"name"`
		TaskType string          `json:"task_type"`
		Input    json.RawMessage `json:"input"`
	}{Type: daemon.ReqDeployPackage, Name: name, TaskType: taskType, Input: input}
	return c.call(ctx, req, nil)
}

// ServiceAction invokes a named action (e.g. "reload") on a running
// service, bypassing the normal Start/Stop lifecycle.
func (c *Client) ServiceAction(ctx context.Context, name, action string) error {
	req := struct {
		Type   string `json:"type"`
		Name   string `json:"name"`
		Action string `json:"action"`
	}{Type: daemon.ReqServiceAction, Name: name, Action: action}
	return c.call(ctx, req, nil)
}

// Shutdown asks the daemon to terminate.
func (c *Client) Shutdown(ctx context.Context) error {
	req := struct {
		Type string `json:"type"`
	}{Type: daemon.ReqShutdown}
	return c.call(ctx, req, nil)
}
