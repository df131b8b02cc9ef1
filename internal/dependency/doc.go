// Package dependency implements the service dependency graph: a directed
// graph of NodeIDs with cycle detection and a deterministic topological
// sort, used by the orchestrator to compute start/stop order.
package dependency
