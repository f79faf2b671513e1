package prometheus

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/promops/prometheus-mcp-server/internal/server"
	"github.com/promops/prometheus-mcp-server/internal/version"
)

// HealthConfiguration reports which configuration inputs are present. Only
// booleans are exposed, never the configured values themselves.
type HealthConfiguration struct {
	PrometheusURLConfigured  bool `json:"prometheus_url_configured"`
	AuthenticationConfigured bool `json:"authentication_configured"`
	OrgIDConfigured          bool `json:"org_id_configured"`
}

// HealthStatus is the health_check tool payload.
type HealthStatus struct {
	Status          string              `json:"status"`
	Service         string              `json:"service"`
	Version         string              `json:"version"`
	Timestamp       string              `json:"timestamp"`
	Transport       string              `json:"transport"`
	Configuration   HealthConfiguration `json:"configuration"`
	Checks          map[string]string   `json:"checks"`
	PrometheusURL   string              `json:"prometheus_url,omitempty"`
	PrometheusError string              `json:"prometheus_error,omitempty"`
	Error           string              `json:"error,omitempty"`
}

// checkHealth synthesizes the service health status. When a Prometheus URL
// is configured a lightweight connectivity probe runs; probe failures
// degrade the status instead of failing the call. Without a URL the status
// is unhealthy and no network call is attempted.
func checkHealth(ctx context.Context, client *Client, sc *server.ServerContext) *HealthStatus {
	config := sc.Config()

	health := &HealthStatus{
		Status:    "healthy",
		Service:   version.ServiceName,
		Version:   version.Version(),
		Timestamp: utcTimestamp(),
		Transport: config.MCP.Transport.String(),
		Configuration: HealthConfiguration{
			PrometheusURLConfigured:  config.Prometheus.URL != "",
			AuthenticationConfigured: config.Prometheus.Username != "" || config.Prometheus.Token != "",
			OrgIDConfigured:          config.Prometheus.OrgID != "",
		},
		Checks: map[string]string{
			"server":     "healthy",
			"prometheus": "unknown",
		},
	}

	if config.Prometheus.URL == "" {
		health.Status = "unhealthy"
		health.Error = "PROMETHEUS_URL not configured"
		health.Checks["prometheus"] = "not_configured"
		return health
	}

	if err := client.Probe(ctx); err != nil {
		health.Status = "degraded"
		health.PrometheusError = err.Error()
		health.Checks["prometheus"] = "unhealthy"
		return health
	}

	health.PrometheusURL = config.Prometheus.URL
	health.Checks["prometheus"] = "healthy"
	return health
}

// handleHealthCheck handles the health_check tool. Connectivity problems are
// reported in the status field; the tool call itself never fails.
func handleHealthCheck(ctx context.Context, request mcp.CallToolRequest, client *Client, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	health := checkHealth(ctx, client, sc)

	sc.Logger().Info("Health check completed", "status", health.Status)

	return textResult(
		fmt.Sprintf("Service: %s\nStatus: %s\nVersion: %s\nTimestamp: %s",
			health.Service, health.Status, health.Version, health.Timestamp),
		fmt.Sprintf("Prometheus URL configured: %t\nAuthentication configured: %t\nOrg ID configured: %t",
			health.Configuration.PrometheusURLConfigured,
			health.Configuration.AuthenticationConfigured,
			health.Configuration.OrgIDConfigured),
		jsonBlock("Health", health),
	), nil
}
