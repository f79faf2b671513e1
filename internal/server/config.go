package server

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// TransportType enumerates the supported MCP server transports.
type TransportType string

const (
	TransportStdio TransportType = "stdio"
	TransportHTTP  TransportType = "http"
	TransportSSE   TransportType = "sse"
)

// TransportTypes returns all valid transport values.
func TransportTypes() []TransportType {
	return []TransportType{TransportStdio, TransportHTTP, TransportSSE}
}

// Valid reports whether t is one of the supported transports.
func (t TransportType) Valid() bool {
	switch t {
	case TransportStdio, TransportHTTP, TransportSSE:
		return true
	}
	return false
}

func (t TransportType) String() string {
	return string(t)
}

// PrometheusConfig holds the Prometheus server connection settings.
type PrometheusConfig struct {
	URL      string
	Username string
	Password string
	Token    string
	OrgID    string
}

// MCPServerConfig holds the MCP transport settings.
type MCPServerConfig struct {
	Transport TransportType
	BindHost  string
	BindPort  int
}

// Addr returns the host:port bind address for the http and sse transports.
func (c MCPServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.BindHost, c.BindPort)
}

// Config is the complete server configuration. It is constructed once at
// startup via LoadConfig and treated as immutable afterwards; no component
// reads environment state after that point.
type Config struct {
	Prometheus PrometheusConfig
	MCP        MCPServerConfig
}

// Environment variables consumed by LoadConfig.
const (
	EnvPrometheusURL      = "PROMETHEUS_URL"
	EnvPrometheusUsername = "PROMETHEUS_USERNAME"
	EnvPrometheusPassword = "PROMETHEUS_PASSWORD"
	EnvPrometheusToken    = "PROMETHEUS_TOKEN"
	EnvOrgID              = "ORG_ID"
	EnvServerTransport    = "PROMETHEUS_MCP_SERVER_TRANSPORT"
	EnvBindHost           = "PROMETHEUS_MCP_BIND_HOST"
	EnvBindPort           = "PROMETHEUS_MCP_BIND_PORT"
)

const (
	defaultTransport = TransportStdio
	defaultBindHost  = "127.0.0.1"
	defaultBindPort  = 8080
)

// LoadConfig reads the configuration from the environment and validates it
// eagerly. A malformed transport or bind port is a fatal error. A missing
// PROMETHEUS_URL is not: the server still starts, and Prometheus-dependent
// tool calls fail per-call with a descriptive message.
func LoadConfig() (Config, error) {
	cfg := Config{
		Prometheus: PrometheusConfig{
			URL:      os.Getenv(EnvPrometheusURL),
			Username: os.Getenv(EnvPrometheusUsername),
			Password: os.Getenv(EnvPrometheusPassword),
			Token:    os.Getenv(EnvPrometheusToken),
			OrgID:    os.Getenv(EnvOrgID),
		},
		MCP: MCPServerConfig{
			Transport: defaultTransport,
			BindHost:  defaultBindHost,
			BindPort:  defaultBindPort,
		},
	}

	if v := os.Getenv(EnvServerTransport); v != "" {
		cfg.MCP.Transport = TransportType(strings.ToLower(strings.TrimSpace(v)))
	}
	if !cfg.MCP.Transport.Valid() {
		return Config{}, fmt.Errorf("invalid %s %q: must be one of %v",
			EnvServerTransport, cfg.MCP.Transport, TransportTypes())
	}

	if v := os.Getenv(EnvBindHost); v != "" {
		cfg.MCP.BindHost = v
	}
	if v := os.Getenv(EnvBindPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s %q: must be an integer", EnvBindPort, v)
		}
		cfg.MCP.BindPort = port
	}

	return cfg, nil
}
