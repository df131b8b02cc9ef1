package cli

import (
	"io"
	"sort"
	"strings"

	"harness/internal/registry"
	pkgstrings "harness/pkg/strings"
)

// RenderServiceTable writes entries as a kubectl-style plain table, sorted
// by name for stable output across invocations.
func RenderServiceTable(w io.Writer, entries map[string]registry.ServiceEntry, noHeaders bool) {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := NewPlainTableWriter(w)
	tw.SetNoHeaders(noHeaders)
	tw.SetHeaders([]string{"name", "state", "location", "dependencies"})
	for _, name := range names {
		e := entries[name]
		tw.AppendRow([]string{e.Name, string(e.State), string(e.Location.Kind), strings.Join(e.Dependencies, ",")})
	}
	tw.Render()
}

// RenderHealthTable writes a map of service name to health status.
func RenderHealthTable(w io.Writer, results map[string]registry.HealthStatus, noHeaders bool) {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := NewPlainTableWriter(w)
	tw.SetNoHeaders(noHeaders)
	tw.SetHeaders([]string{"name", "healthy", "reason"})
	for _, name := range names {
		h := results[name]
		healthy := "true"
		if h.Unknown {
			healthy = "unknown"
		} else if !h.Healthy {
			healthy = "false"
		}
		tw.AppendRow([]string{name, healthy, pkgstrings.TruncateDescription(h.Reason, pkgstrings.DefaultDescriptionMaxLen)})
	}
	tw.Render()
}

// RenderEnvTable writes a map of environment variable names to values.
func RenderEnvTable(w io.Writer, vars map[string]string, noHeaders bool) {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := NewPlainTableWriter(w)
	tw.SetNoHeaders(noHeaders)
	tw.SetHeaders([]string{"name", "value"})
	for _, name := range names {
		tw.AppendRow([]string{name, pkgstrings.TruncateDescription(vars[name], pkgstrings.DefaultDescriptionMaxLen)})
	}
	tw.Render()
}
