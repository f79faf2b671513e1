package prometheus

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/promops/prometheus-mcp-server/internal/server"
)

func TestHealthCheckUnconfigured(t *testing.T) {
	sc := newTestServerContext(t, server.Config{})
	client := NewClient(sc.PrometheusConfig(), sc.Logger())

	health := checkHealth(context.Background(), client, sc)

	require.Equal(t, "unhealthy", health.Status)
	require.Equal(t, "PROMETHEUS_URL not configured", health.Error)
	require.Equal(t, "not_configured", health.Checks["prometheus"])
	require.Equal(t, "healthy", health.Checks["server"])
	require.False(t, health.Configuration.PrometheusURLConfigured)
	require.Empty(t, health.PrometheusURL)
}

func TestHealthCheckHealthy(t *testing.T) {
	srv, captured := mockPrometheus(t, http.StatusOK,
		`{"status": "success", "data": {"resultType": "vector", "result": [{"metric": {"__name__": "up"}, "value": [1617898448.214, "1"]}]}}`)
	sc := newTestServerContext(t, server.Config{
		Prometheus: server.PrometheusConfig{
			URL:   srv.URL,
			Token: "secret-token",
			OrgID: "tenant-a",
		},
	})
	client := NewClient(sc.PrometheusConfig(), sc.Logger())

	health := checkHealth(context.Background(), client, sc)

	require.Equal(t, "healthy", health.Status)
	require.Equal(t, "healthy", health.Checks["prometheus"])
	require.Equal(t, srv.URL, health.PrometheusURL)
	require.Empty(t, health.Error)
	require.True(t, health.Configuration.PrometheusURLConfigured)
	require.True(t, health.Configuration.AuthenticationConfigured)
	require.True(t, health.Configuration.OrgIDConfigured)

	// The probe runs an instant query against the upstream.
	require.Len(t, *captured, 1)
	require.Equal(t, "/api/v1/query", (*captured)[0].path)
	require.Equal(t, "up", (*captured)[0].query.Get("query"))
}

func TestHealthCheckDegraded(t *testing.T) {
	srv, _ := mockPrometheus(t, http.StatusInternalServerError, `upstream exploded`)
	sc := newTestServerContext(t, server.Config{
		Prometheus: server.PrometheusConfig{URL: srv.URL},
	})
	client := NewClient(sc.PrometheusConfig(), sc.Logger())

	health := checkHealth(context.Background(), client, sc)

	require.Equal(t, "degraded", health.Status)
	require.Equal(t, "unhealthy", health.Checks["prometheus"])
	require.NotEmpty(t, health.PrometheusError)
	require.Empty(t, health.PrometheusURL)
}

func TestHandleHealthCheckNeverFails(t *testing.T) {
	sc := newTestServerContext(t, server.Config{})
	client := NewClient(sc.PrometheusConfig(), sc.Logger())

	result, err := handleHealthCheck(context.Background(),
		callRequest("health_check", nil), client, sc)
	require.NoError(t, err)
	require.False(t, result.IsError)

	require.Contains(t, resultText(t, result, 0), "Status: unhealthy")
	require.Contains(t, resultText(t, result, 1), "Prometheus URL configured: false")
	require.Contains(t, resultText(t, result, 2), `"not_configured"`)
}

func TestHandleHealthCheckOmitsSecrets(t *testing.T) {
	srv, _ := mockPrometheus(t, http.StatusOK,
		`{"status": "success", "data": {"resultType": "vector", "result": []}}`)
	sc := newTestServerContext(t, server.Config{
		Prometheus: server.PrometheusConfig{
			URL:      srv.URL,
			Username: "admin",
			Password: "hunter2",
			Token:    "very-secret-token",
		},
	})
	client := NewClient(sc.PrometheusConfig(), sc.Logger())

	result, err := handleHealthCheck(context.Background(),
		callRequest("health_check", nil), client, sc)
	require.NoError(t, err)
	require.False(t, result.IsError)

	for i := range result.Content {
		text := resultText(t, result, i)
		require.NotContains(t, text, "hunter2")
		require.NotContains(t, text, "very-secret-token")
	}
	require.Contains(t, resultText(t, result, 1), "Authentication configured: true")
}
