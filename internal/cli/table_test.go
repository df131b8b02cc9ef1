package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"harness/internal/registry"
)

func TestRenderServiceTableSortsByName(t *testing.T) {
	var buf bytes.Buffer
	entries := map[string]registry.ServiceEntry{
		"web": {Name: "web", State: registry.StateRunning, Location: registry.Location{Kind: registry.LocationLocal}},
		"db":  {Name: "db", State: registry.StateStopped, Location: registry.Location{Kind: registry.LocationLocal}, Dependencies: []string{"web"}},
	}
	RenderServiceTable(&buf, entries, false)
	out := buf.String()

	dbIdx := bytes.Index([]byte(out), []byte("db"))
	webIdx := bytes.Index([]byte(out), []byte("web"))
	assert.True(t, dbIdx < webIdx, "expected db to sort before web:\n%s", out)
	assert.Contains(t, out, "NAME")
}

func TestRenderHealthTableMarksUnknown(t *testing.T) {
	var buf bytes.Buffer
	RenderHealthTable(&buf, map[string]registry.HealthStatus{
		"web": {Healthy: false, Unknown: true},
	}, false)
	assert.Contains(t, buf.String(), "unknown")
}

func TestRenderEnvTableNoHeaders(t *testing.T) {
	var buf bytes.Buffer
	RenderEnvTable(&buf, map[string]string{"DB_HOST": "10.0.0.5"}, true)
	out := buf.String()
	assert.NotContains(t, out, "NAME")
	assert.Contains(t, out, "DB_HOST")
}

func TestRenderEnvTableTruncatesLongValues(t *testing.T) {
	var buf bytes.Buffer
	long := ""
	for i := 0; i < 100; i++ {
		long += "x"
	}
	RenderEnvTable(&buf, map[string]string{"BLOB": long}, true)
	assert.Contains(t, buf.String(), "...")
}

func TestRenderHealthTableTruncatesLongReason(t *testing.T) {
	var buf bytes.Buffer
	long := ""
	for i := 0; i < 100; i++ {
		long += "y"
	}
	RenderHealthTable(&buf, map[string]registry.HealthStatus{"web": {Healthy: false, Reason: long}}, true)
	assert.Contains(t, buf.String(), "...")
}
