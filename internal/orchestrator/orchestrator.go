package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"harness/internal/dependency"
	"harness/internal/executor"
	"harness/internal/harnesserr"
	"harness/internal/registry"
	"harness/internal/resolver"
	"harness/internal/services"
	"harness/internal/template"
	"harness/pkg/logging"
)

// Orchestrator is the single point of coordination between configured
// service definitions, the dependency graph, the launcher stack, and the
// registry that records observed state.
type Orchestrator struct {
	reg    *registry.Registry
	graph  *dependency.Graph
	lookup *services.RegistryLookup
	auth   services.AuthProvider
	probes *probeBreakers
	tmpl   *template.Engine

	mu            sync.Mutex
	defs          map[string]ServiceDefinition
	handles       map[string]executor.ProcessHandle
	attachHandles map[string]executor.AttachedHandle
}

// New returns an Orchestrator driving reg and resolving references through
// lookup (normally backed by reg itself, via services.NewRegistryLookup).
func New(reg *registry.Registry, lookup *services.RegistryLookup, auth services.AuthProvider) *Orchestrator {
	return &Orchestrator{
		reg:           reg,
		graph:         dependency.New(),
		lookup:        lookup,
		auth:          auth,
		probes:        newProbeBreakers(),
		tmpl:          template.New(),
		defs:          make(map[string]ServiceDefinition),
		handles:       make(map[string]executor.ProcessHandle),
		attachHandles: make(map[string]executor.AttachedHandle),
	}
}

// Register adds a service definition to the orchestrator. Explicit
// Dependencies are combined with the service-refs observed in the target's
// command/args/env fields (a purely syntactic scan — no live values are
// needed to discover which services a reference mentions), so a
// "${postgres.ip}" in an env value creates a graph edge even when the
// configuration's dependencies list omits it. A cycle, explicit or
// implicit, is rejected as a configuration error and never reaches the
// runtime start/stop algorithms.
func (o *Orchestrator) Register(ctx context.Context, def ServiceDefinition) error {
	implicit := collectServiceRefs(def)
	deps := unionDeps(def.Dependencies, implicit)

	nodeDeps := make([]dependency.NodeID, len(deps))
	for i, d := range deps {
		nodeDeps[i] = dependency.NodeID(d)
	}

	if err := o.graph.AddNode(dependency.Node{ID: dependency.NodeID(def.Name), DependsOn: nodeDeps}); err != nil {
		return harnesserr.NewConfigError(fmt.Sprintf("service %q: %s", def.Name, err))
	}

	o.mu.Lock()
	o.defs[def.Name] = def
	o.mu.Unlock()

	return o.reg.Put(ctx, registry.ServiceEntry{
		Name:         def.Name,
		State:        registry.StateRegistered,
		Dependencies: deps,
	})
}

func collectServiceRefs(def ServiceDefinition) []string {
	seen := make(map[string]struct{})
	var add = func(s string) {
		refs, err := resolver.ParseAll(s)
		if err != nil {
			return
		}
		for _, r := range refs {
			if r.Kind == resolver.KindService {
				seen[r.ServiceName] = struct{}{}
			}
		}
	}

	add(def.Target.Command.Path)
	for _, a := range def.Target.Command.Args {
		add(a)
	}
	for _, v := range def.Target.Command.Env {
		add(v)
	}
	for _, v := range def.Env {
		add(v)
	}

	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	return out
}

func unionDeps(explicit, implicit []string) []string {
	seen := make(map[string]struct{}, len(explicit)+len(implicit))
	var out []string
	for _, d := range explicit {
		if _, ok := seen[d]; !ok {
			seen[d] = struct{}{}
			out = append(out, d)
		}
	}
	for _, d := range implicit {
		if _, ok := seen[d]; !ok {
			seen[d] = struct{}{}
			out = append(out, d)
		}
	}
	return out
}

// Start computes the transitive closure of names over dependencies,
// topologically sorts it, and starts each service in order — skipping any
// already Running. A failure aborts the remainder; already-started
// services are left Running (no automatic rollback).
func (o *Orchestrator) Start(ctx context.Context, names []string) error {
	closure, err := o.transitiveClosure(names)
	if err != nil {
		return err
	}

	order, err := o.graph.TopoSort()
	if err != nil {
		return harnesserr.NewConfigError(err.Error())
	}

	for _, id := range filterTo(order, closure) {
		if err := o.startOne(ctx, string(id)); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) startOne(ctx context.Context, name string) error {
	entry, err := o.reg.Get(ctx, name)
	if err != nil {
		return harnesserr.NewConfigError(fmt.Sprintf("service %q is not registered", name))
	}
	if entry.State == registry.StateRunning {
		return nil
	}

	o.mu.Lock()
	def, ok := o.defs[name]
	o.mu.Unlock()
	if !ok {
		return harnesserr.NewConfigError(fmt.Sprintf("service %q has no definition", name))
	}

	if def.Target.Kind == services.KindAttach {
		return o.attachOne(ctx, name, def, entry)
	}

	entry.State = registry.StateStarting
	if err := o.reg.Put(ctx, entry); err != nil {
		return err
	}

	cmd, err := o.resolveCommand(def)
	if err != nil {
		entry.State = registry.StateFailed
		_ = o.reg.Put(ctx, entry)
		return err
	}

	launcher, err := services.BuildLauncher(def.Target, o.auth)
	if err != nil {
		entry.State = registry.StateFailed
		_ = o.reg.Put(ctx, entry)
		return err
	}

	events, handle, err := launcher.Launch(ctx, name, cmd)
	if err != nil {
		entry.State = registry.StateFailed
		_ = o.reg.Put(ctx, entry)
		return harnesserr.NewSpawnError(err.Error())
	}

	o.mu.Lock()
	o.handles[name] = handle
	o.mu.Unlock()

	started := make(chan struct{})
	go o.consumeEvents(name, events, started)

	if err := o.waitReady(ctx, name, def, started); err != nil {
		entry.State = registry.StateFailed
		_ = o.reg.Put(ctx, entry)
		return err
	}

	entry.State = registry.StateRunning
	if len(def.Outputs) > 0 {
		outputs, err := o.renderOutputs(def, cmd.Env, entry)
		if err != nil {
			logging.WithService(name).Warn().Err(err).Msg("output rendering failed")
		} else {
			entry.Outputs = outputs
		}
	}
	return o.reg.Put(ctx, entry)
}

// attachOne binds to a service harness did not spawn itself, via the
// Attacher services.BuildAttacher resolves from def.Target, and reconciles
// the registry's recorded state from whatever the attacher's StatusCmd
// reports. A status
// the attacher cannot classify (a command error, or output matching none
// of the known phrases) is recorded as Unknown rather than guessed at —
// Unknown is the legitimate result of reconciling against a source
// outside harness's control, not a transient error.
func (o *Orchestrator) attachOne(ctx context.Context, name string, def ServiceDefinition, entry registry.ServiceEntry) error {
	attacher, err := services.BuildAttacher(def.Target)
	if err != nil {
		entry.State = registry.StateFailed
		_ = o.reg.Put(ctx, entry)
		return harnesserr.NewConfigError(err.Error())
	}

	events, handle, err := attacher.Attach(ctx, name, executor.DefaultAttachConfig())
	if err != nil {
		entry.State = registry.StateFailed
		_ = o.reg.Put(ctx, entry)
		return harnesserr.NewSpawnError(err.Error())
	}
	go drainAttachEvents(events)

	o.mu.Lock()
	o.attachHandles[name] = handle
	o.mu.Unlock()

	entry.State = reconcileAttachedState(ctx, handle)
	return o.reg.Put(ctx, entry)
}

// reconcileAttachedState queries handle's status and maps it onto the
// registry's ServiceState vocabulary.
func reconcileAttachedState(ctx context.Context, handle executor.AttachedHandle) registry.ServiceState {
	status, err := handle.Status(ctx)
	if err != nil {
		return registry.StateUnknown
	}
	switch status {
	case executor.AttachedRunning:
		return registry.StateRunning
	case executor.AttachedStopped:
		return registry.StateStopped
	case executor.AttachedFailed:
		return registry.StateFailed
	default:
		return registry.StateUnknown
	}
}

func drainAttachEvents(events <-chan executor.ProcessEvent) {
	for range events {
	}
}

// renderOutputs evaluates def.Outputs as Go templates against a context
// built from the service's resolved env and observed network placement.
// Unlike resolveCommand's "${...}" scan, this runs after the service is
// already Running, so IP/host/port/endpoints are real values rather than
// references.
func (o *Orchestrator) renderOutputs(def ServiceDefinition, env map[string]string, entry registry.ServiceEntry) (map[string]string, error) {
	placement := map[string]interface{}{
		"host": entry.NetworkInfo.Hostname,
	}
	if len(entry.NetworkInfo.IPs) > 0 {
		placement["ip"] = entry.NetworkInfo.IPs[0]
	}
	if len(entry.NetworkInfo.Ports) > 0 {
		placement["port"] = entry.NetworkInfo.Ports[0]
	}

	tmplCtx := template.MergeContexts(placement, map[string]interface{}{
		"name":      def.Name,
		"env":       stringMapToAny(env),
		"endpoints": stringMapToAny(entry.Endpoints),
	})

	out := make(map[string]string, len(def.Outputs))
	for key, tpl := range def.Outputs {
		rendered, err := o.tmpl.RenderGoTemplate(tpl, tmplCtx)
		if err != nil {
			return nil, fmt.Errorf("output %q: %w", key, err)
		}
		out[key] = fmt.Sprintf("%v", rendered)
	}
	return out, nil
}

func stringMapToAny(m map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// consumeEvents drains a launched process's event stream for its entire
// lifetime, closing started on the first Started event and reconciling the
// registry state when the process exits — Stopped if the orchestrator was
// already transitioning it to Stopping, Failed (a crash) otherwise.
func (o *Orchestrator) consumeEvents(name string, events <-chan executor.ProcessEvent, started chan struct{}) {
	startedClosed := false
	log := logging.WithService(name)

	for evt := range events {
		switch evt.Type {
		case executor.EventStarted:
			if !startedClosed {
				close(started)
				startedClosed = true
			}
		case executor.EventExited:
			entry, err := o.reg.Get(context.Background(), name)
			if err != nil {
				continue
			}
			if entry.State == registry.StateStopping {
				entry.State = registry.StateStopped
			} else {
				entry.State = registry.StateFailed
				log.Warn().Int("exit_code", intOrZero(evt.ExitCode)).Msg("service exited unexpectedly")
			}
			_ = o.reg.Put(context.Background(), entry)
		}
	}

	if !startedClosed {
		close(started)
	}
}

func intOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// waitReady blocks until the service is considered ready: either the first
// Started event (no health check configured) or the first Healthy probe
// result, within the service's startup timeout.
func (o *Orchestrator) waitReady(ctx context.Context, name string, def ServiceDefinition, started <-chan struct{}) error {
	deadline := time.NewTimer(def.startupTimeout())
	defer deadline.Stop()

	if def.HealthCheck == nil {
		select {
		case <-started:
			return nil
		case <-deadline.C:
			return harnesserr.NewTimeoutError(fmt.Sprintf("waiting for %q to start", name))
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	select {
	case <-started:
	case <-deadline.C:
		return harnesserr.NewTimeoutError(fmt.Sprintf("waiting for %q to start", name))
	case <-ctx.Done():
		return ctx.Err()
	}

	interval := def.HealthCheck.Interval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, _ := o.probes.runProbe(ctx, name, *def.HealthCheck)
		if status.Healthy {
			return nil
		}
		select {
		case <-ticker.C:
		case <-deadline.C:
			return harnesserr.NewHealthCheckError(string(def.HealthCheck.Kind), "not healthy within startup timeout")
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (o *Orchestrator) resolveCommand(def ServiceDefinition) (executor.Command, error) {
	resolveStr := func(s string) (string, error) {
		result, err := resolver.Resolve(s, resolver.ModeStrict, o.lookup)
		if err != nil {
			return "", err
		}
		return result.Value, nil
	}

	path, err := resolveStr(def.Target.Command.Path)
	if err != nil {
		return executor.Command{}, err
	}

	args := make([]string, len(def.Target.Command.Args))
	for i, a := range def.Target.Command.Args {
		v, err := resolveStr(a)
		if err != nil {
			return executor.Command{}, err
		}
		args[i] = v
	}

	env := make(map[string]string, len(def.Target.Command.Env)+len(def.Env))
	for k, v := range def.Target.Command.Env {
		env[k] = v
	}
	for k, v := range def.Env {
		env[k] = v
	}
	for k, v := range env {
		resolved, err := resolveStr(v)
		if err != nil {
			return executor.Command{}, err
		}
		env[k] = resolved
	}

	workDir, err := resolveStr(def.Target.Command.WorkingDir)
	if err != nil {
		return executor.Command{}, err
	}

	return executor.Command{Path: path, Args: args, Env: env, WorkingDir: workDir}, nil
}

// transitiveClosure expands names over their registered dependency edges.
func (o *Orchestrator) transitiveClosure(names []string) (map[dependency.NodeID]struct{}, error) {
	closure := make(map[dependency.NodeID]struct{})
	var visit func(id dependency.NodeID) error
	visit = func(id dependency.NodeID) error {
		if _, ok := closure[id]; ok {
			return nil
		}
		if _, ok := o.graph.Get(id); !ok {
			return harnesserr.NewConfigError(fmt.Sprintf("service %q is not registered", id))
		}
		closure[id] = struct{}{}
		for _, dep := range o.graph.Dependencies(id) {
			if err := visit(dep); err != nil {
				return err
			}
		}
		return nil
	}
	for _, n := range names {
		if err := visit(dependency.NodeID(n)); err != nil {
			return nil, err
		}
	}
	return closure, nil
}

func filterTo(order []dependency.NodeID, closure map[dependency.NodeID]struct{}) []dependency.NodeID {
	var out []dependency.NodeID
	for _, id := range order {
		if _, ok := closure[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Stop stops the currently-Running subset of the transitive closure of
// names, in reverse dependency order, so a service is stopped only after
// everything depending on it. Unless force is set, stopping a service that
// still has a Running dependent is refused with a config error. Each stop
// sends terminate and escalates to kill after timeout (or the service's own
// configured stop timeout when timeout is zero).
func (o *Orchestrator) Stop(ctx context.Context, names []string, force bool, timeout time.Duration) error {
	closure, err := o.transitiveClosure(names)
	if err != nil {
		return err
	}

	order, err := o.graph.TopoSort()
	if err != nil {
		return harnesserr.NewConfigError(err.Error())
	}

	running := make(map[dependency.NodeID]struct{})
	for id := range closure {
		entry, err := o.reg.Get(ctx, string(id))
		if err == nil && entry.State == registry.StateRunning {
			running[id] = struct{}{}
		}
	}

	ordered := filterTo(order, running)
	for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
		ordered[i], ordered[j] = ordered[j], ordered[i]
	}

	for _, id := range ordered {
		if !force {
			for _, dependent := range o.graph.Dependents(id) {
				if dep, err := o.reg.Get(ctx, string(dependent)); err == nil && dep.State == registry.StateRunning {
					return harnesserr.NewConfigError(fmt.Sprintf("service %q still has a running dependent %q", id, dependent))
				}
			}
		}
		if err := o.stopOne(ctx, string(id), timeout); err != nil {
			return err
		}
		delete(running, id)
	}
	return nil
}

// disconnectOne stops a service reached through an Attacher, via its own
// StopCmd, then disconnects the event stream — it never terminates or
// kills a process directly, since harness never spawned one.
func (o *Orchestrator) disconnectOne(ctx context.Context, name string, handle executor.AttachedHandle, entry registry.ServiceEntry) error {
	if err := handle.Stop(ctx); err != nil {
		entry.State = registry.StateFailed
		_ = o.reg.Put(ctx, entry)
		return harnesserr.NewSignalError(0, err.Error())
	}
	_ = handle.Disconnect(ctx)

	o.mu.Lock()
	delete(o.attachHandles, name)
	o.mu.Unlock()

	entry.State = registry.StateStopped
	return o.reg.Put(ctx, entry)
}

func (o *Orchestrator) stopOne(ctx context.Context, name string, timeout time.Duration) error {
	entry, err := o.reg.Get(ctx, name)
	if err != nil {
		return err
	}

	o.mu.Lock()
	attachHandle, attached := o.attachHandles[name]
	handle, ok := o.handles[name]
	def := o.defs[name]
	o.mu.Unlock()

	if attached {
		return o.disconnectOne(ctx, name, attachHandle, entry)
	}

	if !ok {
		entry.State = registry.StateStopped
		return o.reg.Put(ctx, entry)
	}

	effectiveTimeout := timeout
	if effectiveTimeout <= 0 {
		effectiveTimeout = def.stopTimeout()
	}

	entry.State = registry.StateStopping
	if err := o.reg.Put(ctx, entry); err != nil {
		return err
	}

	if err := handle.Terminate(ctx); err != nil {
		entry.State = registry.StateFailed
		_ = o.reg.Put(ctx, entry)
		return harnesserr.NewSignalError(0, err.Error())
	}

	waitCtx, cancel := context.WithTimeout(ctx, effectiveTimeout)
	defer cancel()
	waited := make(chan struct{})
	go func() {
		_, _ = handle.Wait(context.Background())
		close(waited)
	}()
	select {
	case <-waited:
	case <-waitCtx.Done():
		if killErr := handle.Kill(ctx); killErr != nil {
			entry.State = registry.StateFailed
			_ = o.reg.Put(ctx, entry)
			return harnesserr.NewSignalError(9, killErr.Error())
		}
		<-waited
	}

	entry.State = registry.StateStopped
	o.mu.Lock()
	delete(o.handles, name)
	o.mu.Unlock()
	return o.reg.Put(ctx, entry)
}

// Action name constants accepted by Action.
const (
	ActionReload    = "reload"
	ActionInterrupt = "interrupt"
	ActionTerminate = "terminate"
	ActionKill      = "kill"
)

// Action invokes a named control operation on a running service's process
// handle directly, bypassing the lifecycle state machine. It exists for
// operations ("reload config", "send SIGINT") that don't change the
// service's recorded state the way Start/Stop do.
func (o *Orchestrator) Action(ctx context.Context, name, action string) error {
	o.mu.Lock()
	attachHandle, attached := o.attachHandles[name]
	handle, ok := o.handles[name]
	o.mu.Unlock()

	if attached {
		switch action {
		case ActionReload:
			return attachHandle.Reload(ctx)
		case ActionTerminate:
			return attachHandle.Stop(ctx)
		default:
			return harnesserr.NewConfigError(fmt.Sprintf("action %q is not supported on attached service %q", action, name))
		}
	}

	if !ok {
		return harnesserr.NewNotFoundError("service", name)
	}

	switch action {
	case ActionReload:
		return handle.Reload(ctx)
	case ActionInterrupt:
		return handle.Interrupt(ctx)
	case ActionTerminate:
		return handle.Terminate(ctx)
	case ActionKill:
		return handle.Kill(ctx)
	default:
		return harnesserr.NewConfigError(fmt.Sprintf("unknown service action %q", action))
	}
}

// CheckHealth runs every registered service's configured health probe
// once, on demand, and returns each service's resulting status keyed by
// name. Services with no health check configured are reported healthy
// (there is nothing to fail). This does not touch lifecycle state — it is
// a read-only diagnostic, independent of the Starting→Running probe loop
// waitReady runs during Start.
func (o *Orchestrator) CheckHealth(ctx context.Context) map[string]registry.HealthStatus {
	o.mu.Lock()
	defs := make(map[string]ServiceDefinition, len(o.defs))
	for name, def := range o.defs {
		defs[name] = def
	}
	o.mu.Unlock()

	results := make(map[string]registry.HealthStatus, len(defs))
	for name, def := range defs {
		if def.HealthCheck == nil {
			results[name] = registry.HealthStatus{Healthy: true}
			continue
		}
		status, _ := o.probes.runProbe(ctx, name, *def.HealthCheck)
		results[name] = status
	}
	return results
}
