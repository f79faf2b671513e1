package prometheus

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/promops/prometheus-mcp-server/internal/server"
)

// toolHandler is the signature shared by every tool handler in this package.
type toolHandler func(ctx context.Context, request mcp.CallToolRequest, client *Client, sc *server.ServerContext) (*mcp.CallToolResult, error)

// RegisterPrometheusTools registers Prometheus-related tools with the MCP
// server. The tool set is closed: the MCP dispatcher rejects any name
// outside it, identifying the unrecognized tool.
func RegisterPrometheusTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	client := NewClient(sc.PrometheusConfig(), sc.Logger())
	s.AddTools(prometheusTools(client, sc)...)
	return nil
}

// prometheusTools returns the complete tool set with input schemas and
// handlers bound to the given client and server context.
func prometheusTools(client *Client, sc *server.ServerContext) []mcpserver.ServerTool {
	bind := func(handler toolHandler) mcpserver.ToolHandlerFunc {
		return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handler(ctx, request, client, sc)
		}
	}

	return []mcpserver.ServerTool{
		{
			Tool: mcp.NewTool("health_check",
				mcp.WithDescription("Health check endpoint for container monitoring and status verification"),
			),
			Handler: bind(handleHealthCheck),
		},
		{
			Tool: mcp.NewTool("execute_query",
				mcp.WithDescription("Execute a PromQL instant query against Prometheus"),
				mcp.WithString("query",
					mcp.Required(),
					mcp.Description("PromQL query string"),
				),
				mcp.WithString("time",
					mcp.Description("Optional RFC3339 or Unix timestamp (default: current time)"),
				),
			),
			Handler: bind(handleExecuteQuery),
		},
		{
			Tool: mcp.NewTool("execute_range_query",
				mcp.WithDescription("Execute a PromQL range query with start time, end time, and step interval"),
				mcp.WithString("query",
					mcp.Required(),
					mcp.Description("PromQL query string"),
				),
				mcp.WithString("start",
					mcp.Required(),
					mcp.Description("Start time as RFC3339 or Unix timestamp"),
				),
				mcp.WithString("end",
					mcp.Required(),
					mcp.Description("End time as RFC3339 or Unix timestamp"),
				),
				mcp.WithString("step",
					mcp.Required(),
					mcp.Description("Query resolution step width (e.g., '15s', '1m', '1h')"),
				),
			),
			Handler: bind(handleExecuteRangeQuery),
		},
		{
			Tool: mcp.NewTool("list_metrics",
				mcp.WithDescription("List all available metrics in Prometheus"),
				mcp.WithNumber("limit",
					mcp.Description("Optional maximum number of metrics to return"),
				),
			),
			Handler: bind(handleListMetrics),
		},
		{
			Tool: mcp.NewTool("get_metric_metadata",
				mcp.WithDescription("Get metadata for a specific metric"),
				mcp.WithString("metric",
					mcp.Required(),
					mcp.Description("The name of the metric to retrieve metadata for"),
				),
				mcp.WithNumber("limit",
					mcp.Description("Optional maximum number of metadata entries to return"),
				),
			),
			Handler: bind(handleGetMetricMetadata),
		},
		{
			Tool: mcp.NewTool("get_targets",
				mcp.WithDescription("Get information about all scrape targets"),
			),
			Handler: bind(handleGetTargets),
		},
		{
			Tool: mcp.NewTool("list_labels",
				mcp.WithDescription("List all available label names in Prometheus"),
				mcp.WithNumber("limit",
					mcp.Description("Optional maximum number of labels to return"),
				),
			),
			Handler: bind(handleListLabels),
		},
		{
			Tool: mcp.NewTool("get_label_values",
				mcp.WithDescription("Get all values for a specific label"),
				mcp.WithString("label_name",
					mcp.Required(),
					mcp.Description("The name of the label to retrieve values for"),
				),
				mcp.WithNumber("limit",
					mcp.Description("Optional maximum number of values to return"),
				),
			),
			Handler: bind(handleGetLabelValues),
		},
		{
			Tool: mcp.NewTool("find_series",
				mcp.WithDescription("Find time series matching the given label selectors"),
				mcp.WithArray("match",
					mcp.Required(),
					mcp.Description("Series selector strings (e.g. 'up{job=\"prometheus\"}')"),
					mcp.Items(map[string]interface{}{"type": "string"}),
				),
				mcp.WithNumber("limit",
					mcp.Description("Optional maximum number of series to return"),
				),
				mcp.WithString("start",
					mcp.Description("Optional start time as RFC3339 or Unix timestamp"),
				),
				mcp.WithString("end",
					mcp.Description("Optional end time as RFC3339 or Unix timestamp"),
				),
			),
			Handler: bind(handleFindSeries),
		},
	}
}
