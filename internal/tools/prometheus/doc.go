// Package prometheus provides MCP tools for interacting with Prometheus
// servers.
//
// This package implements the following MCP tools:
//
// Query Tools:
//   - execute_query: Execute PromQL instant queries
//   - execute_range_query: Execute PromQL range queries with time bounds
//
// Discovery Tools:
//   - list_metrics: List all available metrics
//   - get_metric_metadata: Get metadata for specific metrics
//   - get_targets: Get information about scrape targets
//   - list_labels: List all available label names
//   - get_label_values: Get the values for a specific label
//   - find_series: Find series by label selectors
//
// Service Tools:
//   - health_check: Report service health and configuration presence
//
// Discovery tools accept an optional "limit" parameter for server-side
// pagination. It may arrive as a JSON number or a numeric string and is
// validated by ValidateLimit before use.
//
// Authentication Support:
//   - Basic authentication via username/password
//   - Bearer token authentication (takes precedence over basic auth)
//   - Multi-tenant organization ID headers
//
// Every upstream failure is classified into an ErrorKind (timeout,
// unreachable, auth, HTTP status, protocol) and converted into a
// failure-shaped tool result at the handler boundary; no error escapes to
// the MCP transport.
//
// Example tool usage:
//
//	execute_query: {"query": "up", "time": "2023-01-01T00:00:00Z"}
//	execute_range_query: {"query": "rate(http_requests_total[5m])", "start": "2023-01-01T00:00:00Z", "end": "2023-01-01T01:00:00Z", "step": "1m"}
//	list_metrics: {"limit": 100}
//	get_label_values: {"label_name": "job"}
//	find_series: {"match": ["up", "process_start_time_seconds"], "limit": 10}
package prometheus
