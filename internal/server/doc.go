// Package server provides the core server infrastructure for the MCP
// Prometheus server.
//
// This package contains:
// - Config: environment-driven configuration, validated eagerly at startup
// - ServerContext: shared resource management with functional options
// - Logger interface: structured logging abstraction
//
// Configuration is read from the environment exactly once via LoadConfig and
// injected into ServerContext; it is immutable for the lifetime of the
// process. A malformed transport or bind port fails startup, while a missing
// Prometheus URL only fails individual tool calls.
//
// Example usage:
//
//	cfg, err := server.LoadConfig()
//	serverContext, err := server.NewServerContext(ctx,
//	    server.WithConfig(cfg),
//	    server.WithLogger(logger),
//	)
package server
