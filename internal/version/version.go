// Package version exposes build information for the server.
//
// The underlying values come from github.com/prometheus/common/version and
// are injected at build time via -ldflags. When built without ldflags the
// version falls back to "dev" so that health checks and the User-Agent
// header never report an empty version.
package version

import (
	"fmt"

	"github.com/prometheus/common/version"
)

// ServiceName is the canonical name reported by the version command, the
// health_check tool, and the outbound User-Agent header.
const ServiceName = "prometheus-mcp-server"

// Version returns the build version, or "dev" when none was injected.
func Version() string {
	if version.Version == "" {
		return "dev"
	}
	return version.Version
}

// UserAgent returns the User-Agent value sent on every Prometheus request.
func UserAgent() string {
	return fmt.Sprintf("%s/%s", ServiceName, Version())
}

// Print returns a multi-line human-readable version string.
func Print() string {
	return version.Print(ServiceName)
}
