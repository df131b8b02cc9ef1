package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harness/internal/registry"
)

func TestRegistryLookupServiceFoundAndMissing(t *testing.T) {
	ctx := context.Background()
	reg := registry.New(registry.NewMemoryBackend())
	require.NoError(t, reg.Init(ctx))
	require.NoError(t, reg.Put(ctx, registry.ServiceEntry{
		Name:        "postgres",
		NetworkInfo: registry.NetworkInfo{IPs: []string{"10.0.0.1"}, Ports: []int{5432}, Hostname: "postgres.local"},
		Endpoints:   map[string]string{"admin": "10.0.0.1:5433"},
	}))

	lookup := NewRegistryLookup(reg)

	info, ok := lookup.LookupService("postgres")
	require.True(t, ok)
	assert.Equal(t, "10.0.0.1", info.IP)
	assert.Equal(t, 5432, info.Port)
	assert.Equal(t, "postgres.local", info.Host)
	assert.Equal(t, "10.0.0.1:5433", info.Endpoints["admin"])

	_, ok = lookup.LookupService("ghost")
	assert.False(t, ok)
}

func TestRegistryLookupEnv(t *testing.T) {
	ctx := context.Background()
	reg := registry.New(registry.NewMemoryBackend())
	require.NoError(t, reg.Init(ctx))

	lookup := NewRegistryLookup(reg)
	_, ok := lookup.LookupEnv("API_HOST")
	assert.False(t, ok)

	lookup.SetEnv(map[string]string{"API_HOST": "1.2.3.4"})
	v, ok := lookup.LookupEnv("API_HOST")
	require.True(t, ok)
	assert.Equal(t, "1.2.3.4", v)
}
