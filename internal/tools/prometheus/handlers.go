package prometheus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/promops/prometheus-mcp-server/internal/server"
)

// toolArguments extracts the loosely typed argument map from a tool call.
func toolArguments(request mcp.CallToolRequest) map[string]interface{} {
	if request.Params.Arguments != nil {
		if argsMap, ok := request.Params.Arguments.(map[string]interface{}); ok {
			return argsMap
		}
	}
	return map[string]interface{}{}
}

func requiredString(args map[string]interface{}, name string) (string, error) {
	v, ok := args[name].(string)
	if !ok || v == "" {
		return "", newError(ErrInvalidParameter, nil, "%s parameter is required and must be a string", name)
	}
	return v, nil
}

func optionalString(args map[string]interface{}, name string) string {
	v, _ := args[name].(string)
	return v
}

func requiredStringList(args map[string]interface{}, name string) ([]string, error) {
	raw, ok := args[name].([]interface{})
	if !ok || len(raw) == 0 {
		return nil, newError(ErrInvalidParameter, nil,
			"%s parameter is required and must be a non-empty list of strings", name)
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, newError(ErrInvalidParameter, nil,
				"%s parameter must contain only strings, got %v", name, item)
		}
		out = append(out, s)
	}
	return out, nil
}

// textResult builds a successful tool result from one text block per
// argument.
func textResult(blocks ...string) *mcp.CallToolResult {
	content := make([]mcp.Content, 0, len(blocks))
	for _, b := range blocks {
		content = append(content, mcp.TextContent{Type: "text", Text: b})
	}
	return &mcp.CallToolResult{Content: content}
}

// jsonBlock renders a labeled, indented JSON payload for a result block.
func jsonBlock(label string, v interface{}) string {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%s: %+v", label, v)
	}
	return fmt.Sprintf("%s: %s", label, payload)
}

func utcTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// handleExecuteQuery handles the execute_query tool
func handleExecuteQuery(ctx context.Context, request mcp.CallToolRequest, client *Client, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := toolArguments(request)

	query, err := requiredString(args, "query")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}
	timeParam := optionalString(args, "time")

	sc.Logger().Debug("Executing instant query", "query", query, "time", timeParam)

	result, err := client.Query(ctx, query, timeParam)
	if err != nil {
		sc.Logger().Error("Query execution failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Query execution failed: %v", err)), nil
	}

	sc.Logger().Info("Instant query completed",
		"query", query, "result_type", result.ResultType, "result_count", result.Count())

	return textResult(
		fmt.Sprintf("Query: %s\nResult Type: %s\nResults Count: %d\nTimestamp: %s",
			query, result.ResultType, result.Count(), utcTimestamp()),
		jsonBlock("Results", result.Result),
	), nil
}

// handleExecuteRangeQuery handles the execute_range_query tool
func handleExecuteRangeQuery(ctx context.Context, request mcp.CallToolRequest, client *Client, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := toolArguments(request)

	query, err := requiredString(args, "query")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}
	start, err := requiredString(args, "start")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}
	end, err := requiredString(args, "end")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}
	step, err := requiredString(args, "step")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}

	sc.Logger().Debug("Executing range query", "query", query, "start", start, "end", end, "step", step)

	result, err := client.RangeQuery(ctx, query, start, end, step)
	if err != nil {
		sc.Logger().Error("Range query execution failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Range query execution failed: %v", err)), nil
	}

	sc.Logger().Info("Range query completed",
		"query", query, "result_type", result.ResultType, "result_count", result.Count())

	return textResult(
		fmt.Sprintf("Query: %s\nStart: %s\nEnd: %s\nStep: %s\nResult Type: %s\nResults Count: %d\nTimestamp: %s",
			query, start, end, step, result.ResultType, result.Count(), utcTimestamp()),
		jsonBlock("Results", result.Result),
	), nil
}

// handleListMetrics handles the list_metrics tool
func handleListMetrics(ctx context.Context, request mcp.CallToolRequest, client *Client, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := toolArguments(request)

	limit, err := ValidateLimit(args["limit"])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}

	sc.Logger().Debug("Listing available metrics", "limit", args["limit"])

	metrics, err := client.ListMetrics(ctx, limit)
	if err != nil {
		sc.Logger().Error("List metrics failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list metrics: %v", err)), nil
	}

	sc.Logger().Info("Metrics list retrieved", "metric_count", len(metrics))

	return textResult(
		fmt.Sprintf("Total metrics available: %d\nTimestamp: %s", len(metrics), utcTimestamp()),
		jsonBlock("Metrics", metrics),
	), nil
}

// handleGetMetricMetadata handles the get_metric_metadata tool
func handleGetMetricMetadata(ctx context.Context, request mcp.CallToolRequest, client *Client, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := toolArguments(request)

	metric, err := requiredString(args, "metric")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}
	limit, err := ValidateLimit(args["limit"])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}

	sc.Logger().Debug("Retrieving metric metadata", "metric", metric)

	metadata, err := client.MetricMetadata(ctx, metric, limit)
	if err != nil {
		sc.Logger().Error("Get metric metadata failed", "error", err, "metric", metric)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get metric metadata: %v", err)), nil
	}

	sc.Logger().Info("Metric metadata retrieved", "metric", metric, "metadata_count", len(metadata))

	return textResult(
		fmt.Sprintf("Metric: %s\nMetadata entries: %d\nTimestamp: %s", metric, len(metadata), utcTimestamp()),
		jsonBlock("Metadata", metadata),
	), nil
}

// handleGetTargets handles the get_targets tool
func handleGetTargets(ctx context.Context, request mcp.CallToolRequest, client *Client, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	sc.Logger().Debug("Retrieving scrape targets information")

	targets, err := client.Targets(ctx)
	if err != nil {
		sc.Logger().Error("Get targets failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get targets: %v", err)), nil
	}

	activeCount := len(targets.ActiveTargets)
	droppedCount := len(targets.DroppedTargets)

	sc.Logger().Info("Scrape targets retrieved",
		"active_targets", activeCount, "dropped_targets", droppedCount)

	return textResult(
		fmt.Sprintf("Active targets: %d\nDropped targets: %d\nTotal targets: %d\nTimestamp: %s",
			activeCount, droppedCount, activeCount+droppedCount, utcTimestamp()),
		jsonBlock("Active targets", targets.ActiveTargets),
		jsonBlock("Dropped targets", targets.DroppedTargets),
	), nil
}

// handleListLabels handles the list_labels tool
func handleListLabels(ctx context.Context, request mcp.CallToolRequest, client *Client, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := toolArguments(request)

	limit, err := ValidateLimit(args["limit"])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}

	sc.Logger().Debug("Listing label names", "limit", args["limit"])

	labels, err := client.ListLabels(ctx, limit)
	if err != nil {
		sc.Logger().Error("List labels failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list labels: %v", err)), nil
	}

	sc.Logger().Info("Label names retrieved", "label_count", len(labels))

	return textResult(
		fmt.Sprintf("Total labels available: %d\nTimestamp: %s", len(labels), utcTimestamp()),
		jsonBlock("Labels", labels),
	), nil
}

// handleGetLabelValues handles the get_label_values tool
func handleGetLabelValues(ctx context.Context, request mcp.CallToolRequest, client *Client, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := toolArguments(request)

	labelName, err := requiredString(args, "label_name")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}
	limit, err := ValidateLimit(args["limit"])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}

	sc.Logger().Debug("Retrieving label values", "label", labelName, "limit", args["limit"])

	values, err := client.LabelValues(ctx, labelName, limit)
	if err != nil {
		sc.Logger().Error("Get label values failed", "error", err, "label", labelName)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get label values: %v", err)), nil
	}

	sc.Logger().Info("Label values retrieved", "label", labelName, "value_count", len(values))

	return textResult(
		fmt.Sprintf("Label: %s\nValues count: %d\nTimestamp: %s", labelName, len(values), utcTimestamp()),
		jsonBlock("Values", values),
	), nil
}

// handleFindSeries handles the find_series tool
func handleFindSeries(ctx context.Context, request mcp.CallToolRequest, client *Client, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := toolArguments(request)

	matches, err := requiredStringList(args, "match")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}
	limit, err := ValidateLimit(args["limit"])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}
	start := optionalString(args, "start")
	end := optionalString(args, "end")

	sc.Logger().Debug("Finding series", "match", matches, "limit", args["limit"], "start", start, "end", end)

	series, err := client.Series(ctx, matches, limit, start, end)
	if err != nil {
		sc.Logger().Error("Find series failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to find series: %v", err)), nil
	}

	sc.Logger().Info("Series retrieved", "series_count", len(series))

	return textResult(
		fmt.Sprintf("Series found: %d\nTimestamp: %s", len(series), utcTimestamp()),
		jsonBlock("Series", series),
	), nil
}
