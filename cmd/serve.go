package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/promops/prometheus-mcp-server/internal/server"
	"github.com/promops/prometheus-mcp-server/internal/tools/prometheus"
	"github.com/promops/prometheus-mcp-server/internal/version"
)

// shutdownTimeout bounds the graceful drain of the http and sse transports.
const shutdownTimeout = 30 * time.Second

// simpleLogger provides basic logging for the server
type simpleLogger struct {
	debug bool
}

func (l *simpleLogger) Debug(msg string, args ...interface{}) {
	if l.debug {
		log.Printf("[DEBUG] %s %v", msg, args)
	}
}

func (l *simpleLogger) Info(msg string, args ...interface{}) {
	log.Printf("[INFO] %s %v", msg, args)
}

func (l *simpleLogger) Warn(msg string, args ...interface{}) {
	log.Printf("[WARN] %s %v", msg, args)
}

func (l *simpleLogger) Error(msg string, args ...interface{}) {
	log.Printf("[ERROR] %s %v", msg, args)
}

// newServeCmd creates the Cobra command for starting the MCP server.
func newServeCmd() *cobra.Command {
	var (
		debugMode bool

		sseEndpoint     string
		messageEndpoint string
		httpEndpoint    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Prometheus MCP server",
		Long: `Start the MCP server to provide tools for interacting with Prometheus
metrics via the Model Context Protocol.

Supported transport types (PROMETHEUS_MCP_SERVER_TRANSPORT):
  - stdio: Standard input/output (default)
  - http:  Streamable HTTP transport
  - sse:   Server-Sent Events over HTTP

Environment Variables:
  PROMETHEUS_URL                  - Prometheus server URL (tool calls fail without it)
  PROMETHEUS_USERNAME             - Optional: Basic auth username
  PROMETHEUS_PASSWORD             - Optional: Basic auth password
  PROMETHEUS_TOKEN                - Optional: Bearer token (takes precedence over basic auth)
  ORG_ID                          - Optional: Organization ID for multi-tenant setups
  PROMETHEUS_MCP_SERVER_TRANSPORT - Transport type: stdio, http, or sse (default: stdio)
  PROMETHEUS_MCP_BIND_HOST        - Bind host for http/sse transports (default: 127.0.0.1)
  PROMETHEUS_MCP_BIND_PORT        - Bind port for http/sse transports (default: 8080)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(debugMode, sseEndpoint, messageEndpoint, httpEndpoint)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging (default: false)")

	// Transport endpoint paths; the transport itself comes from the environment
	cmd.Flags().StringVar(&sseEndpoint, "sse-endpoint", "/sse", "SSE endpoint path (for sse transport)")
	cmd.Flags().StringVar(&messageEndpoint, "message-endpoint", "/message", "Message endpoint path (for sse transport)")
	cmd.Flags().StringVar(&httpEndpoint, "http-endpoint", "/mcp", "HTTP endpoint path (for http transport)")

	return cmd
}

// runServe contains the main server logic with support for multiple transports
func runServe(debugMode bool, sseEndpoint, messageEndpoint, httpEndpoint string) error {
	logger := &simpleLogger{debug: debugMode}

	// Configuration is read from the environment exactly once, here. A bad
	// transport or bind port is fatal; a missing Prometheus URL is not.
	config, err := server.LoadConfig()
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		return err
	}

	// Setup graceful shutdown - listen for both SIGINT and SIGTERM
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	serverContext, err := server.NewServerContext(shutdownCtx,
		server.WithConfig(config),
		server.WithDebugMode(debugMode),
		server.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			log.Printf("Error during server context shutdown: %v", err)
		}
	}()

	logConfiguration(logger, config)

	mcpSrv := mcpserver.NewMCPServer(version.ServiceName, version.Version(),
		mcpserver.WithToolCapabilities(true),
	)

	if err := prometheus.RegisterPrometheusTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register Prometheus tools: %w", err)
	}

	logger.Info("Starting Prometheus MCP server", "transport", config.MCP.Transport)

	switch config.MCP.Transport {
	case server.TransportStdio:
		return runStdioServer(mcpSrv)
	case server.TransportSSE:
		return runSSEServer(mcpSrv, config.MCP.Addr(), sseEndpoint, messageEndpoint, shutdownCtx, logger)
	case server.TransportHTTP:
		return runStreamableHTTPServer(mcpSrv, config.MCP.Addr(), httpEndpoint, shutdownCtx, logger)
	default:
		// Unreachable: LoadConfig validates the transport eagerly.
		return fmt.Errorf("unsupported transport type: %s", config.MCP.Transport)
	}
}

func logConfiguration(logger *simpleLogger, config server.Config) {
	authMethod := "none"
	if config.Prometheus.Token != "" {
		authMethod = "bearer_token"
	} else if config.Prometheus.Username != "" && config.Prometheus.Password != "" {
		authMethod = "basic_auth"
	}

	if config.Prometheus.URL == "" {
		logger.Warn("PROMETHEUS_URL is not set",
			"suggestion", "set it to your Prometheus server URL, e.g. http://your-prometheus-server:9090")
	}

	logger.Info("Prometheus configuration validated",
		"server_url", config.Prometheus.URL,
		"authentication", authMethod,
		"org_id", config.Prometheus.OrgID)
}

// runStdioServer runs the server with STDIO transport
func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	if err := <-serverDone; err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}

	fmt.Println("Server gracefully stopped")
	return nil
}

// runSSEServer runs the server with SSE transport
func runSSEServer(mcpSrv *mcpserver.MCPServer, addr, sseEndpoint, messageEndpoint string, ctx context.Context, logger *simpleLogger) error {
	sseServer := mcpserver.NewSSEServer(mcpSrv,
		mcpserver.WithSSEEndpoint(sseEndpoint),
		mcpserver.WithMessageEndpoint(messageEndpoint),
	)

	logger.Info("SSE server starting", "addr", addr, "sse_endpoint", sseEndpoint, "message_endpoint", messageEndpoint)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := sseServer.Start(addr); err != nil {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received, stopping SSE server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := sseServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down SSE server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("SSE server stopped with error: %w", err)
		}
	}

	logger.Info("SSE server gracefully stopped")
	return nil
}

// runStreamableHTTPServer runs the server with Streamable HTTP transport
func runStreamableHTTPServer(mcpSrv *mcpserver.MCPServer, addr, endpoint string, ctx context.Context, logger *simpleLogger) error {
	httpServer := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath(endpoint),
	)

	logger.Info("HTTP server starting", "addr", addr, "endpoint", endpoint)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(addr); err != nil {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}
