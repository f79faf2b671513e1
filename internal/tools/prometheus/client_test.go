package prometheus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/promops/prometheus-mcp-server/internal/server"
)

// testLogger implements server.Logger for testing
type testLogger struct{}

func (l *testLogger) Debug(msg string, args ...interface{}) {}
func (l *testLogger) Info(msg string, args ...interface{})  {}
func (l *testLogger) Warn(msg string, args ...interface{})  {}
func (l *testLogger) Error(msg string, args ...interface{}) {}

// capturedRequest records what the mock Prometheus server received.
type capturedRequest struct {
	path   string
	query  url.Values
	header http.Header
}

func mockPrometheus(t *testing.T, status int, body string) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var captured []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = append(captured, capturedRequest{
			path:   r.URL.Path,
			query:  r.URL.Query(),
			header: r.Header.Clone(),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func newTestClient(t *testing.T, config server.PrometheusConfig) *Client {
	t.Helper()
	return NewClient(config, &testLogger{})
}

func intPtr(n int) *int { return &n }

func TestRequestEmptyURLFailsBeforeNetwork(t *testing.T) {
	client := newTestClient(t, server.PrometheusConfig{})

	_, err := client.request(context.Background(), endpointQuery, nil)
	require.Error(t, err)

	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, ErrConfiguration, kind)
	require.Contains(t, err.Error(), "PROMETHEUS_URL")
}

func TestRequestSuccessReturnsDataField(t *testing.T) {
	srv, _ := mockPrometheus(t, http.StatusOK,
		`{"status": "success", "data": ["up", "go_goroutines"]}`)
	client := newTestClient(t, server.PrometheusConfig{URL: srv.URL})

	metrics, err := client.ListMetrics(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, []string{"up", "go_goroutines"}, metrics)
}

func TestRequestTrimsTrailingSlash(t *testing.T) {
	srv, captured := mockPrometheus(t, http.StatusOK,
		`{"status": "success", "data": []}`)
	client := newTestClient(t, server.PrometheusConfig{URL: srv.URL + "/"})

	_, err := client.ListMetrics(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, *captured, 1)
	require.Equal(t, "/api/v1/label/__name__/values", (*captured)[0].path)
}

func TestRequestNilParamsSendsNoQueryString(t *testing.T) {
	srv, captured := mockPrometheus(t, http.StatusOK,
		`{"status": "success", "data": []}`)
	client := newTestClient(t, server.PrometheusConfig{URL: srv.URL})

	_, err := client.ListMetrics(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, (*captured)[0].query)

	_, err = client.ListMetrics(context.Background(), intPtr(2))
	require.NoError(t, err)
	require.Equal(t, "2", (*captured)[1].query.Get("limit"))
}

func TestRequestUserAgent(t *testing.T) {
	srv, captured := mockPrometheus(t, http.StatusOK,
		`{"status": "success", "data": []}`)
	client := newTestClient(t, server.PrometheusConfig{URL: srv.URL})

	_, err := client.ListLabels(context.Background(), nil)
	require.NoError(t, err)
	require.Contains(t, (*captured)[0].header.Get("User-Agent"), "prometheus-mcp-server/")
}

func TestAuthenticationPrecedence(t *testing.T) {
	testCases := []struct {
		name       string
		config     server.PrometheusConfig
		wantAuth   string
		wantBasic  bool
		wantBearer bool
	}{
		{
			name:   "no credentials",
			config: server.PrometheusConfig{},
		},
		{
			name:       "bearer token only",
			config:     server.PrometheusConfig{Token: "secret-token"},
			wantBearer: true,
		},
		{
			name:      "basic auth only",
			config:    server.PrometheusConfig{Username: "admin", Password: "pass"},
			wantBasic: true,
		},
		{
			name: "token wins over basic auth",
			config: server.PrometheusConfig{
				Username: "admin",
				Password: "pass",
				Token:    "secret-token",
			},
			wantBearer: true,
		},
		{
			name:   "username without password is ignored",
			config: server.PrometheusConfig{Username: "admin"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv, captured := mockPrometheus(t, http.StatusOK,
				`{"status": "success", "data": []}`)
			config := tc.config
			config.URL = srv.URL

			client := newTestClient(t, config)
			_, err := client.ListMetrics(context.Background(), nil)
			require.NoError(t, err)

			auth := (*captured)[0].header.Get("Authorization")
			switch {
			case tc.wantBearer:
				require.Equal(t, "Bearer secret-token", auth)
			case tc.wantBasic:
				require.Contains(t, auth, "Basic ")
			default:
				require.Empty(t, auth)
			}
		})
	}
}

func TestOrgIDHeader(t *testing.T) {
	srv, captured := mockPrometheus(t, http.StatusOK,
		`{"status": "success", "data": []}`)
	client := newTestClient(t, server.PrometheusConfig{
		URL:   srv.URL,
		Token: "secret-token",
		OrgID: "tenant-a",
	})

	_, err := client.ListMetrics(context.Background(), nil)
	require.NoError(t, err)

	header := (*captured)[0].header
	require.Equal(t, "tenant-a", header.Get("X-Scope-OrgID"))
	require.Equal(t, "Bearer secret-token", header.Get("Authorization"))
}

func TestRequestEnvelopeError(t *testing.T) {
	srv, _ := mockPrometheus(t, http.StatusOK,
		`{"status": "error", "error": "bad query"}`)
	client := newTestClient(t, server.PrometheusConfig{URL: srv.URL})

	_, err := client.Query(context.Background(), "up{", "")
	require.Error(t, err)

	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, ErrUpstreamProtocol, kind)
	require.Contains(t, err.Error(), "bad query")
}

func TestRequestEnvelopeErrorWithoutMessage(t *testing.T) {
	srv, _ := mockPrometheus(t, http.StatusOK, `{"status": "error"}`)
	client := newTestClient(t, server.PrometheusConfig{URL: srv.URL})

	_, err := client.Query(context.Background(), "up", "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Unknown error")
}

func TestRequestHTTPStatusClassification(t *testing.T) {
	testCases := []struct {
		status   int
		kind     ErrorKind
		contains string
	}{
		{http.StatusUnauthorized, ErrUpstreamAuth, "authentication failed"},
		{http.StatusForbidden, ErrUpstreamAuth, "access forbidden"},
		{http.StatusInternalServerError, ErrUpstreamHTTP, "HTTP 500 error"},
		{http.StatusBadGateway, ErrUpstreamHTTP, "HTTP 502 error"},
	}

	for _, tc := range testCases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			srv, _ := mockPrometheus(t, tc.status, `{}`)
			client := newTestClient(t, server.PrometheusConfig{URL: srv.URL})

			_, err := client.Targets(context.Background())
			require.Error(t, err)

			kind, ok := KindOf(err)
			require.True(t, ok)
			require.Equal(t, tc.kind, kind)
			require.Contains(t, err.Error(), tc.contains)
		})
	}
}

func TestRequestInvalidJSON(t *testing.T) {
	srv, _ := mockPrometheus(t, http.StatusOK, `{not json`)
	client := newTestClient(t, server.PrometheusConfig{URL: srv.URL})

	_, err := client.Targets(context.Background())
	require.Error(t, err)

	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, ErrUpstreamProtocol, kind)
	require.Contains(t, err.Error(), "invalid JSON response")
}

func TestRequestConnectionRefused(t *testing.T) {
	srv, _ := mockPrometheus(t, http.StatusOK, `{}`)
	u := srv.URL
	srv.Close()

	client := newTestClient(t, server.PrometheusConfig{URL: u})

	_, err := client.Targets(context.Background())
	require.Error(t, err)

	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, ErrUpstreamUnreachable, kind)
	require.Contains(t, err.Error(), "cannot connect to Prometheus server")
}

func TestRequestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	client := newTestClient(t, server.PrometheusConfig{URL: srv.URL})
	client.timeout = 50 * time.Millisecond

	_, err := client.Targets(context.Background())
	require.Error(t, err)

	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, ErrUpstreamTimeout, kind)
	require.Contains(t, err.Error(), "not responding")
}

func TestQueryParams(t *testing.T) {
	srv, captured := mockPrometheus(t, http.StatusOK,
		`{"status": "success", "data": {"resultType": "vector", "result": []}}`)
	client := newTestClient(t, server.PrometheusConfig{URL: srv.URL})

	_, err := client.Query(context.Background(), "up", "")
	require.NoError(t, err)
	require.Equal(t, "/api/v1/query", (*captured)[0].path)
	require.Equal(t, "up", (*captured)[0].query.Get("query"))
	require.False(t, (*captured)[0].query.Has("time"))

	_, err = client.Query(context.Background(), "up", "2023-01-01T00:00:00Z")
	require.NoError(t, err)
	require.Equal(t, "2023-01-01T00:00:00Z", (*captured)[1].query.Get("time"))
}

func TestRangeQueryParams(t *testing.T) {
	srv, captured := mockPrometheus(t, http.StatusOK,
		`{"status": "success", "data": {"resultType": "matrix", "result": []}}`)
	client := newTestClient(t, server.PrometheusConfig{URL: srv.URL})

	result, err := client.RangeQuery(context.Background(), "up",
		"2023-01-01T00:00:00Z", "2023-01-01T01:00:00Z", "15s")
	require.NoError(t, err)
	require.Equal(t, "matrix", result.ResultType)

	query := (*captured)[0].query
	require.Equal(t, "/api/v1/query_range", (*captured)[0].path)
	require.Equal(t, "up", query.Get("query"))
	require.Equal(t, "2023-01-01T00:00:00Z", query.Get("start"))
	require.Equal(t, "2023-01-01T01:00:00Z", query.Get("end"))
	require.Equal(t, "15s", query.Get("step"))
}

func TestSeriesParams(t *testing.T) {
	srv, captured := mockPrometheus(t, http.StatusOK,
		`{"status": "success", "data": [{"__name__": "up", "job": "prometheus"}]}`)
	client := newTestClient(t, server.PrometheusConfig{URL: srv.URL})

	series, err := client.Series(context.Background(), []string{"up"}, nil, "", "")
	require.NoError(t, err)
	require.Len(t, series, 1)
	require.Equal(t, "up", series[0]["__name__"])

	query := (*captured)[0].query
	require.Equal(t, "/api/v1/series", (*captured)[0].path)
	require.Equal(t, []string{"up"}, query["match[]"])
	require.False(t, query.Has("limit"))
	require.False(t, query.Has("start"))
	require.False(t, query.Has("end"))

	_, err = client.Series(context.Background(),
		[]string{"up", "process_start_time_seconds"}, intPtr(1),
		"2023-01-01T00:00:00Z", "2023-01-01T01:00:00Z")
	require.NoError(t, err)

	query = (*captured)[1].query
	require.Equal(t, []string{"up", "process_start_time_seconds"}, query["match[]"])
	require.Equal(t, "1", query.Get("limit"))
	require.Equal(t, "2023-01-01T00:00:00Z", query.Get("start"))
	require.Equal(t, "2023-01-01T01:00:00Z", query.Get("end"))
}

func TestLabelValuesEndpointPath(t *testing.T) {
	srv, captured := mockPrometheus(t, http.StatusOK,
		`{"status": "success", "data": ["prometheus", "node-exporter"]}`)
	client := newTestClient(t, server.PrometheusConfig{URL: srv.URL})

	values, err := client.LabelValues(context.Background(), "job", nil)
	require.NoError(t, err)
	require.Equal(t, []string{"prometheus", "node-exporter"}, values)
	require.Equal(t, "/api/v1/label/job/values", (*captured)[0].path)
	require.Empty(t, (*captured)[0].query)

	_, err = client.LabelValues(context.Background(), "job", intPtr(1))
	require.NoError(t, err)
	require.Equal(t, "1", (*captured)[1].query.Get("limit"))
}

func TestMetricMetadata(t *testing.T) {
	srv, captured := mockPrometheus(t, http.StatusOK,
		`{"status": "success", "data": {"metadata": [{"metric": "up", "type": "gauge", "help": "Up indicates if the scrape was successful", "unit": ""}]}}`)
	client := newTestClient(t, server.PrometheusConfig{URL: srv.URL})

	metadata, err := client.MetricMetadata(context.Background(), "up", nil)
	require.NoError(t, err)
	require.Len(t, metadata, 1)
	require.Equal(t, "up", metadata[0]["metric"])
	require.Equal(t, "gauge", metadata[0]["type"])

	query := (*captured)[0].query
	require.Equal(t, "/api/v1/metadata", (*captured)[0].path)
	require.Equal(t, "up", query.Get("metric"))
	require.False(t, query.Has("limit"))
}

func TestQueryResultCount(t *testing.T) {
	vector := &QueryResult{
		ResultType: "vector",
		Result: []interface{}{
			map[string]interface{}{"metric": map[string]interface{}{"__name__": "up"}},
			map[string]interface{}{"metric": map[string]interface{}{"__name__": "up"}},
		},
	}
	require.Equal(t, 2, vector.Count())

	scalar := &QueryResult{
		ResultType: "scalar",
		Result:     []interface{}{1617898448.214, "1"},
	}
	require.Equal(t, 2, scalar.Count())

	str := &QueryResult{ResultType: "string", Result: "1"}
	require.Equal(t, 1, str.Count())
}
