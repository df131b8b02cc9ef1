package services

import (
	"context"
	"sync"

	"harness/internal/registry"
	"harness/internal/resolver"
)

// RegistryLookup adapts a *registry.Registry and a daemon-held environment
// map into the resolver.Lookup interface, so configuration resolution
// reads live state rather than a snapshot.
type RegistryLookup struct {
	Registry *registry.Registry

	mu  sync.RWMutex
	env map[string]string
}

// NewRegistryLookup returns a RegistryLookup backed by reg, with an empty
// environment map.
func NewRegistryLookup(reg *registry.Registry) *RegistryLookup {
	return &RegistryLookup{Registry: reg, env: make(map[string]string)}
}

// SetEnv replaces the daemon-held environment map wholesale, as driven by
// the SetEnvironmentVariables request.
func (l *RegistryLookup) SetEnv(env map[string]string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.env = env
}

// Env returns a copy of the current daemon-held environment map.
func (l *RegistryLookup) Env() map[string]string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]string, len(l.env))
	for k, v := range l.env {
		out[k] = v
	}
	return out
}

func (l *RegistryLookup) LookupEnv(name string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.env[name]
	return v, ok
}

func (l *RegistryLookup) LookupService(name string) (resolver.ServiceInfo, bool) {
	entry, err := l.Registry.Get(context.Background(), name)
	if err != nil {
		return resolver.ServiceInfo{}, false
	}

	var ip, host string
	if len(entry.NetworkInfo.IPs) > 0 {
		ip = entry.NetworkInfo.IPs[0]
	}
	host = entry.NetworkInfo.Hostname

	var port int
	if len(entry.NetworkInfo.Ports) > 0 {
		port = entry.NetworkInfo.Ports[0]
	}

	return resolver.ServiceInfo{
		IP:        ip,
		Port:      port,
		Host:      host,
		Endpoints: entry.Endpoints,
		Env:       entry.Metadata,
	}, true
}
