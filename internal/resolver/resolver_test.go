package resolver

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harness/internal/harnesserr"
)

type fakeLookup struct {
	services map[string]ServiceInfo
	env      map[string]string
}

func (f fakeLookup) LookupService(name string) (ServiceInfo, bool) {
	info, ok := f.services[name]
	return info, ok
}

func (f fakeLookup) LookupEnv(name string) (string, bool) {
	v, ok := f.env[name]
	return v, ok
}

func TestResolveServiceRefSubstitutesIPAndPort(t *testing.T) {
	lookup := fakeLookup{services: map[string]ServiceInfo{
		"postgres": {IP: "10.0.0.1", Port: 5432},
	}}

	src := "postgresql://u@${postgres.ip}:${postgres.port}/db"
	result, err := Resolve(src, ModeStrict, lookup)
	require.NoError(t, err)
	assert.Equal(t, "postgresql://u@10.0.0.1:5432/db", result.Value)
	assert.Equal(t, []ObservedRef{
		{Service: "postgres", Property: "ip"},
		{Service: "postgres", Property: "port"},
	}, result.Observed)
}

func TestResolveUnknownPropertyFailsWithOffsetOfProperty(t *testing.T) {
	lookup := fakeLookup{services: map[string]ServiceInfo{
		"postgres": {IP: "10.0.0.1", Port: 5432},
	}}

	src := "postgresql://u@${postgres.unknown_prop}/db"
	_, err := Resolve(src, ModeStrict, lookup)
	require.Error(t, err)

	var cfgErr *harnesserr.ConfigError
	require.True(t, errors.As(err, &cfgErr))

	wantOffset := strings.Index(src, ".unknown_prop")
	assert.Equal(t, wantOffset, cfgErr.Offset)
}

func TestResolveEnvDefault(t *testing.T) {
	withoutEnv := fakeLookup{env: map[string]string{}}
	result, err := Resolve("${API_HOST:-0.0.0.0}", ModeStrict, withoutEnv)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", result.Value)

	withEnv := fakeLookup{env: map[string]string{"API_HOST": "1.2.3.4"}}
	result, err = Resolve("${API_HOST:-0.0.0.0}", ModeStrict, withEnv)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3.4", result.Value)
}

func TestResolveStrictModeFailsOnUnsetEnvWithoutDefault(t *testing.T) {
	_, err := Resolve("${API_HOST}", ModeStrict, fakeLookup{env: map[string]string{}})
	require.Error(t, err)
	var cfgErr *harnesserr.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestResolveLaxModeSubstitutesEmptyForUnsetEnv(t *testing.T) {
	result, err := Resolve("${API_HOST}", ModeLax, fakeLookup{env: map[string]string{}})
	require.NoError(t, err)
	assert.Equal(t, "", result.Value)
}

func TestResolveUnknownServiceIsConfigError(t *testing.T) {
	_, err := Resolve("${ghost.ip}", ModeStrict, fakeLookup{})
	require.Error(t, err)
	var cfgErr *harnesserr.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestResolveEndpointAndEnvProperties(t *testing.T) {
	lookup := fakeLookup{services: map[string]ServiceInfo{
		"api": {
			Endpoints: map[string]string{"admin": "localhost:9000"},
			Env:       map[string]string{"MODE": "production"},
		},
	}}
	result, err := Resolve("${api.endpoint[admin]} ${api.env[MODE]}", ModeStrict, lookup)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000 production", result.Value)
}

func TestResolveIsNonRecursive(t *testing.T) {
	lookup := fakeLookup{services: map[string]ServiceInfo{
		"a": {Endpoints: map[string]string{"x": "${b.ip}"}},
	}}
	result, err := Resolve("${a.endpoint[x]}", ModeStrict, lookup)
	require.NoError(t, err)
	assert.Equal(t, "${b.ip}", result.Value)
}

func TestParseAllDiscriminatesByCase(t *testing.T) {
	refs, err := ParseAll("${api.ip} ${DEBUG}")
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, KindService, refs[0].Kind)
	assert.Equal(t, KindEnv, refs[1].Kind)
}

func TestResolveNoReferencesReturnsSourceUnchanged(t *testing.T) {
	result, err := Resolve("no references here", ModeStrict, fakeLookup{})
	require.NoError(t, err)
	assert.Equal(t, "no references here", result.Value)
	assert.Empty(t, result.Observed)
}
