package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promops/prometheus-mcp-server/internal/version"
)

// newVersionCmd creates a new version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Long:  `Print the version and build information of prometheus-mcp-server`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.Print())
		},
	}
}
