package prometheus

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/api"

	"github.com/promops/prometheus-mcp-server/internal/server"
	"github.com/promops/prometheus-mcp-server/internal/version"
)

// apiPrefix is the fixed Prometheus HTTP API base path.
const apiPrefix = "/api/v1/"

// requestTimeout bounds every upstream request. A single attempt is made per
// call; there are no retries.
const requestTimeout = 30 * time.Second

// Endpoints of the Prometheus HTTP API used by the tools.
const (
	endpointQuery      = "query"
	endpointQueryRange = "query_range"
	endpointLabels     = "labels"
	endpointSeries     = "series"
	endpointMetadata   = "metadata"
	endpointTargets    = "targets"
)

// labelValuesEndpoint returns the label values endpoint for a label name.
// Listing metrics is the special case of the reserved __name__ label.
func labelValuesEndpoint(label string) string {
	return "label/" + label + "/values"
}

// userAgentRoundTripper stamps the service User-Agent on every request
type userAgentRoundTripper struct {
	agent string
	rt    http.RoundTripper
}

func (u *userAgentRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", u.agent)
	return u.rt.RoundTrip(req)
}

// orgIDRoundTripper adds the tenant-scope header to requests for
// multi-tenant setups
type orgIDRoundTripper struct {
	orgID string
	rt    http.RoundTripper
}

func (o *orgIDRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if o.orgID != "" {
		req.Header.Set("X-Scope-OrgID", o.orgID)
	}
	return o.rt.RoundTrip(req)
}

// basicAuthRoundTripper adds basic authentication to requests
type basicAuthRoundTripper struct {
	username string
	password string
	rt       http.RoundTripper
}

func (b *basicAuthRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(b.username, b.password)
	return b.rt.RoundTrip(req)
}

// bearerTokenRoundTripper adds bearer token authentication to requests
type bearerTokenRoundTripper struct {
	token string
	rt    http.RoundTripper
}

func (b *bearerTokenRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+b.token)
	return b.rt.RoundTrip(req)
}

// Client translates tool calls into authenticated requests against the
// Prometheus HTTP API and normalizes every failure into a classified Error.
type Client struct {
	api     api.Client
	config  server.PrometheusConfig
	logger  server.Logger
	timeout time.Duration
}

// NewClient creates a new Prometheus client. An empty URL is not an error
// here: the client is still returned, and every request fails fast with a
// configuration error instead.
func NewClient(config server.PrometheusConfig, logger server.Logger) *Client {
	c := &Client{
		config:  config,
		logger:  logger,
		timeout: requestTimeout,
	}

	if config.URL == "" {
		logger.Warn("Prometheus URL not configured, tool calls will fail until PROMETHEUS_URL is set")
		return c
	}

	roundTripper := http.RoundTripper(&userAgentRoundTripper{
		agent: version.UserAgent(),
		rt:    http.DefaultTransport,
	})

	// Authentication layer. Bearer token takes precedence; basic auth is
	// never attached when a token is configured.
	if config.Token != "" {
		roundTripper = &bearerTokenRoundTripper{
			token: config.Token,
			rt:    roundTripper,
		}
		logger.Debug("Using bearer token authentication")
	} else if config.Username != "" && config.Password != "" {
		roundTripper = &basicAuthRoundTripper{
			username: config.Username,
			password: config.Password,
			rt:       roundTripper,
		}
		logger.Debug("Using basic authentication", "username", config.Username)
	} else {
		logger.Debug("No authentication configured")
	}

	// Tenant header layer applies regardless of auth mode.
	if config.OrgID != "" {
		roundTripper = &orgIDRoundTripper{
			orgID: config.OrgID,
			rt:    roundTripper,
		}
		logger.Debug("Using organization ID", "orgID", config.OrgID)
	}

	promClient, err := api.NewClient(api.Config{
		Address:      config.URL,
		RoundTripper: roundTripper,
	})
	if err != nil {
		logger.Error("Failed to create Prometheus client", "error", err, "url", config.URL)
		return c
	}

	c.api = promClient
	return c
}

// apiEnvelope is the Prometheus HTTP API response envelope.
type apiEnvelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

// request performs one authenticated GET against the given API endpoint and
// returns the data field of the response envelope. A nil params sends no
// query string at all, which is distinct from sending explicit values.
func (c *Client) request(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	if c.api == nil {
		c.logger.Error("Prometheus configuration missing", "endpoint", endpoint)
		return nil, newError(ErrConfiguration, nil,
			"Prometheus configuration is missing: set the PROMETHEUS_URL environment variable")
	}

	u := c.api.URL(apiPrefix+endpoint, nil)
	if params != nil {
		u.RawQuery = params.Encode()
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, newError(ErrConfiguration, err, "invalid Prometheus request URL %q: %v", u.String(), err)
	}

	c.logger.Debug("Making Prometheus API request", "endpoint", endpoint, "url", u.String())

	resp, body, err := c.api.Do(ctx, req)
	if err != nil {
		return nil, c.classifyTransportError(endpoint, u.String(), err)
	}

	if resp.StatusCode >= 400 {
		return nil, c.classifyStatusError(endpoint, u.String(), resp.StatusCode)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		c.logger.Error("Failed to parse Prometheus response as JSON", "endpoint", endpoint, "url", u.String(), "error", err)
		return nil, newError(ErrUpstreamProtocol, err, "invalid JSON response from Prometheus: %v", err)
	}

	if envelope.Status != "success" {
		errMsg := envelope.Error
		if errMsg == "" {
			errMsg = "Unknown error"
		}
		c.logger.Error("Prometheus API returned error", "endpoint", endpoint, "error", errMsg, "status", envelope.Status)
		return nil, newError(ErrUpstreamProtocol, nil, "Prometheus API error: %s", errMsg)
	}

	c.logger.Debug("Prometheus API request successful", "endpoint", endpoint, "result_type", peekResultType(envelope.Data))
	return envelope.Data, nil
}

func (c *Client) classifyTransportError(endpoint, url string, err error) *Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		c.logger.Error("Request timed out", "endpoint", endpoint, "url", url, "timeout", c.timeout.String())
		return newError(ErrUpstreamTimeout, err,
			"Prometheus server at %s is not responding (timeout after %s)", c.config.URL, c.timeout)
	}

	c.logger.Error("Connection failed", "endpoint", endpoint, "url", url, "error", err)
	return newError(ErrUpstreamUnreachable, err, "cannot connect to Prometheus server at %s", c.config.URL)
}

func (c *Client) classifyStatusError(endpoint, url string, statusCode int) *Error {
	c.logger.Error("HTTP error", "endpoint", endpoint, "url", url, "status_code", statusCode)

	switch statusCode {
	case http.StatusUnauthorized:
		return newError(ErrUpstreamAuth, nil, "authentication failed: check your Prometheus credentials")
	case http.StatusForbidden:
		return newError(ErrUpstreamAuth, nil, "access forbidden: check your Prometheus permissions")
	default:
		return newError(ErrUpstreamHTTP, nil, "HTTP %d error from Prometheus server", statusCode)
	}
}

// peekResultType extracts the resultType of an object-shaped data field for
// debug logging. List-shaped payloads report "list".
func peekResultType(data json.RawMessage) string {
	var obj struct {
		ResultType string `json:"resultType"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && obj.ResultType != "" {
		return obj.ResultType
	}
	return "list"
}

// limitParams returns the query parameters for an optional limit. A nil
// limit yields nil so that no params object is sent at all, keeping "no
// limit" distinct from "limit=0".
func limitParams(limit *int) url.Values {
	if limit == nil {
		return nil
	}
	return url.Values{"limit": []string{strconv.Itoa(*limit)}}
}

// QueryResult represents the result of an instant or range query
type QueryResult struct {
	ResultType string      `json:"resultType"`
	Result     interface{} `json:"result"`
}

// Count returns the number of entries in the result: the list length for
// vector and matrix results, otherwise 1 (scalar and string results).
func (r *QueryResult) Count() int {
	if list, ok := r.Result.([]interface{}); ok {
		return len(list)
	}
	return 1
}

// Query executes an instant PromQL query. The time parameter is passed
// through verbatim when non-empty.
func (c *Client) Query(ctx context.Context, query, timeParam string) (*QueryResult, error) {
	params := url.Values{"query": []string{query}}
	if timeParam != "" {
		params.Set("time", timeParam)
	}

	data, err := c.request(ctx, endpointQuery, params)
	if err != nil {
		return nil, err
	}

	var result QueryResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, newError(ErrUpstreamProtocol, err, "invalid JSON response from Prometheus: %v", err)
	}
	return &result, nil
}

// RangeQuery executes a range PromQL query. All four parameters are passed
// through verbatim.
func (c *Client) RangeQuery(ctx context.Context, query, start, end, step string) (*QueryResult, error) {
	params := url.Values{
		"query": []string{query},
		"start": []string{start},
		"end":   []string{end},
		"step":  []string{step},
	}

	data, err := c.request(ctx, endpointQueryRange, params)
	if err != nil {
		return nil, err
	}

	var result QueryResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, newError(ErrUpstreamProtocol, err, "invalid JSON response from Prometheus: %v", err)
	}
	return &result, nil
}

// ListMetrics lists all available metric names, optionally limited
// server-side.
func (c *Client) ListMetrics(ctx context.Context, limit *int) ([]string, error) {
	data, err := c.request(ctx, labelValuesEndpoint("__name__"), limitParams(limit))
	if err != nil {
		return nil, err
	}

	var metrics []string
	if err := json.Unmarshal(data, &metrics); err != nil {
		return nil, newError(ErrUpstreamProtocol, err, "invalid JSON response from Prometheus: %v", err)
	}
	return metrics, nil
}

// MetricMetadata gets the metadata entries for a specific metric.
func (c *Client) MetricMetadata(ctx context.Context, metric string, limit *int) ([]map[string]interface{}, error) {
	params := url.Values{"metric": []string{metric}}
	if limit != nil {
		params.Set("limit", strconv.Itoa(*limit))
	}

	data, err := c.request(ctx, endpointMetadata, params)
	if err != nil {
		return nil, err
	}

	var result struct {
		Metadata []map[string]interface{} `json:"metadata"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, newError(ErrUpstreamProtocol, err, "invalid JSON response from Prometheus: %v", err)
	}
	return result.Metadata, nil
}

// TargetsResult represents the result of the targets API
type TargetsResult struct {
	ActiveTargets  []interface{} `json:"activeTargets"`
	DroppedTargets []interface{} `json:"droppedTargets"`
}

// Targets gets information about all scrape targets.
func (c *Client) Targets(ctx context.Context) (*TargetsResult, error) {
	data, err := c.request(ctx, endpointTargets, nil)
	if err != nil {
		return nil, err
	}

	var result TargetsResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, newError(ErrUpstreamProtocol, err, "invalid JSON response from Prometheus: %v", err)
	}
	return &result, nil
}

// ListLabels lists all available label names, optionally limited
// server-side.
func (c *Client) ListLabels(ctx context.Context, limit *int) ([]string, error) {
	data, err := c.request(ctx, endpointLabels, limitParams(limit))
	if err != nil {
		return nil, err
	}

	var labels []string
	if err := json.Unmarshal(data, &labels); err != nil {
		return nil, newError(ErrUpstreamProtocol, err, "invalid JSON response from Prometheus: %v", err)
	}
	return labels, nil
}

// LabelValues gets the values for a specific label name.
func (c *Client) LabelValues(ctx context.Context, label string, limit *int) ([]string, error) {
	data, err := c.request(ctx, labelValuesEndpoint(label), limitParams(limit))
	if err != nil {
		return nil, err
	}

	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, newError(ErrUpstreamProtocol, err, "invalid JSON response from Prometheus: %v", err)
	}
	return values, nil
}

// Series finds series matching the given label selectors. The selectors are
// sent as a repeated match[] parameter; start, end, and limit are added only
// when provided.
func (c *Client) Series(ctx context.Context, matches []string, limit *int, start, end string) ([]map[string]string, error) {
	params := url.Values{"match[]": matches}
	if limit != nil {
		params.Set("limit", strconv.Itoa(*limit))
	}
	if start != "" {
		params.Set("start", start)
	}
	if end != "" {
		params.Set("end", end)
	}

	data, err := c.request(ctx, endpointSeries, params)
	if err != nil {
		return nil, err
	}

	var series []map[string]string
	if err := json.Unmarshal(data, &series); err != nil {
		return nil, newError(ErrUpstreamProtocol, err, "invalid JSON response from Prometheus: %v", err)
	}
	return series, nil
}

// Probe performs the lightweight connectivity check used by health_check: an
// instant query for "up" at the current time.
func (c *Client) Probe(ctx context.Context) error {
	params := url.Values{
		"query": []string{"up"},
		"time":  []string{strconv.FormatInt(time.Now().Unix(), 10)},
	}
	_, err := c.request(ctx, endpointQuery, params)
	return err
}
