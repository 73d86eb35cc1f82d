package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set at build time via -ldflags "-X qaforge/internal/cli.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("qaforge version %s (commit %s, built %s)\n",
			Version, GitCommit, BuildDate)
	},
}
