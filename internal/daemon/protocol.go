package daemon

import (
	"encoding/json"
	"fmt"
	"time"

	"harness/internal/config"
	"harness/internal/harnesserr"
	"harness/internal/registry"
)

// Request type tags. Upper camel-case to match the tagged-variant naming a
// client sends over the wire.
const (
	ReqStartService              = "StartService"
	ReqStopService                = "StopService"
	ReqGetServiceStatus           = "GetServiceStatus"
	ReqListServices               = "ListServices"
	ReqRunHealthChecks            = "RunHealthChecks"
	ReqSetEnvironmentVariables    = "SetEnvironmentVariables"
	ReqGetEnvironmentVariables    = "GetEnvironmentVariables"
	ReqSubscribe                  = "Subscribe"
	ReqUnsubscribe                = "Unsubscribe"
	ReqDeployPackage              = "DeployPackage"
	ReqServiceAction              = "ServiceAction"
	ReqShutdown                   = "Shutdown"
)

// Response/frame type tags.
const (
	RespSuccess             = "Success"
	RespError               = "Error"
	RespServiceStatus       = "ServiceStatus"
	RespServiceList         = "ServiceList"
	RespHealthCheckResults  = "HealthCheckResults"
	RespEnvironmentVariables = "EnvironmentVariables"
	RespEvent               = "Event"
	RespTaskEvent           = "TaskEvent"
)

// envelope is decoded first from every inbound frame to learn which
// concrete request type the rest of the payload holds.
type envelope struct {
	Type string `json:"type"`
}

// StartServiceRequest starts name. If Config is present the service is
// registered (or re-registered) from it before starting, so a client can
// both declare and start a service in one round trip; if absent, name must
// already be known to the orchestrator from the loaded configuration file.
type StartServiceRequest struct {
	Type   string                `json:"type"`
	Name   string                `json:"name"`
	Config *config.ServiceConfig `json:"config,omitempty"`
}

// StopServiceRequest stops name, optionally bypassing the
// still-has-a-running-dependent safety check and overriding the
// configured stop timeout.
type StopServiceRequest struct {
	Type          string `json:"type"`
	Name          string `json:"name"`
	Force         bool   `json:"force,omitempty"`
	TimeoutSeconds int   `json:"timeout_seconds,omitempty"`
}

type GetServiceStatusRequest struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type ListServicesRequest struct {
	Type string `json:"type"`
}

type RunHealthChecksRequest struct {
	Type string `json:"type"`
}

type SetEnvironmentVariablesRequest struct {
	Type      string            `json:"type"`
	Variables map[string]string `json:"variables"`
}

type GetEnvironmentVariablesRequest struct {
	Type  string   `json:"type"`
	Names []string `json:"names,omitempty"`
}

type SubscribeRequest struct {
	Type   string                `json:"type"`
	Events []registry.EventType `json:"events"`
}

type UnsubscribeRequest struct {
	Type   string                `json:"type"`
	Events []registry.EventType `json:"events"`
}

// DeployPackageRequest dispatches a one-shot task through internal/task's
// Runner, identified by name and the registered task type.
type DeployPackageRequest struct {
	Type       string          `json:"type"`
	Name       string          `json:"name"`
	TaskType   string          `json:"task_type"`
	Input      json.RawMessage `json:"input"`
}

// ServiceActionRequest invokes an arbitrary named action on a service
// through its executor.ProcessHandle (e.g. "reload").
type ServiceActionRequest struct {
	Type   string `json:"type"`
	Name   string `json:"name"`
	Action string `json:"action"`
}

type ShutdownRequest struct {
	Type string `json:"type"`
}

// decodeRequest inspects the envelope's type tag and unmarshals raw into
// the matching concrete request struct.
func decodeRequest(raw []byte) (any, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, harnesserr.NewProtocolError(fmt.Sprintf("malformed frame: %v", err))
	}

	var target any
	switch env.Type {
	case ReqStartService:
		target = &StartServiceRequest{}
	case ReqStopService:
		target = &StopServiceRequest{}
	case ReqGetServiceStatus:
		target = &GetServiceStatusRequest{}
	case ReqListServices:
		target = &ListServicesRequest{}
	case ReqRunHealthChecks:
		target = &RunHealthChecksRequest{}
	case ReqSetEnvironmentVariables:
		target = &SetEnvironmentVariablesRequest{}
	case ReqGetEnvironmentVariables:
		target = &GetEnvironmentVariablesRequest{}
	case ReqSubscribe:
		target = &SubscribeRequest{}
	case ReqUnsubscribe:
		target = &UnsubscribeRequest{}
	case ReqDeployPackage:
		target = &DeployPackageRequest{}
	case ReqServiceAction:
		target = &ServiceActionRequest{}
	case ReqShutdown:
		target = &ShutdownRequest{}
	default:
		return nil, harnesserr.NewProtocolError(fmt.Sprintf("unknown request type %q", env.Type))
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return nil, harnesserr.NewProtocolError(fmt.Sprintf("malformed %s frame: %v", env.Type, err))
	}
	return target, nil
}

func successResponse() any {
	return struct {
		Type string `json:"type"`
	}{Type: RespSuccess}
}

func errorResponse(err error) any {
	return struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}{Type: RespError, Message: err.Error()}
}

func serviceStatusResponse(entry registry.ServiceEntry) any {
	return struct {
		Type   string               `json:"type"`
		Status registry.ServiceEntry `json:"status"`
	}{Type: RespServiceStatus, Status: entry}
}

func serviceListResponse(services map[string]registry.ServiceEntry) any {
	return struct {
		Type     string                          `json:"type"`
		Services map[string]registry.ServiceEntry `json:"services"`
	}{Type: RespServiceList, Services: services}
}

func healthCheckResultsResponse(results map[string]registry.HealthStatus) any {
	return struct {
		Type    string                            `json:"type"`
		Results map[string]registry.HealthStatus `json:"results"`
	}{Type: RespHealthCheckResults, Results: results}
}

func environmentVariablesResponse(vars map[string]string) any {
	return struct {
		Type      string            `json:"type"`
		Variables map[string]string `json:"variables"`
	}{Type: RespEnvironmentVariables, Variables: vars}
}

// eventFrame wraps a registry.Event as an out-of-band push, distinct from
// request/response traffic on the same connection.
func eventFrame(evt registry.Event) any {
	return struct {
		Type  string        `json:"type"`
		Event registry.Event `json:"event"`
	}{Type: RespEvent, Event: evt}
}

// taskEventFrame wraps one event emitted by a running task, tagged with
// the task's name so a client juggling multiple in-flight tasks can
// demultiplex.
func taskEventFrame(name string, payload json.RawMessage, at time.Time) any {
	return struct {
		Type      string          `json:"type"`
		Name      string          `json:"name"`
		Payload   json.RawMessage `json:"payload"`
		Timestamp time.Time       `json:"timestamp"`
	}{Type: RespTaskEvent, Name: name, Payload: payload, Timestamp: at}
}
