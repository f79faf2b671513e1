package main

import (
	"github.com/promops/prometheus-mcp-server/cmd"
	"github.com/promops/prometheus-mcp-server/internal/version"
)

func main() {
	cmd.SetVersion(version.Version())
	cmd.Execute()
}
