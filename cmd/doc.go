// Package cmd provides the command-line interface for the Prometheus MCP
// server.
//
// This package implements the Cobra CLI framework to provide commands for:
// - Starting the MCP server with various transport options (stdio, http, sse)
// - Printing version and build information
//
// The main entry point is the serve command which loads and validates the
// environment configuration, starts the MCP server, and registers all
// Prometheus-related tools for querying metrics, discovering metadata,
// labels, and series, and retrieving target information.
//
// Environment Variables:
//   - PROMETHEUS_URL: Prometheus server URL (tool calls fail without it)
//   - PROMETHEUS_USERNAME: Optional basic auth username
//   - PROMETHEUS_PASSWORD: Optional basic auth password
//   - PROMETHEUS_TOKEN: Optional bearer token for authentication
//   - ORG_ID: Optional organization ID for multi-tenant setups
//   - PROMETHEUS_MCP_SERVER_TRANSPORT: stdio, http, or sse (default: stdio)
//   - PROMETHEUS_MCP_BIND_HOST: bind host for http/sse (default: 127.0.0.1)
//   - PROMETHEUS_MCP_BIND_PORT: bind port for http/sse (default: 8080)
//
// Example usage:
//
//	prometheus-mcp-server serve
//	PROMETHEUS_MCP_SERVER_TRANSPORT=sse prometheus-mcp-server serve --debug
package cmd
