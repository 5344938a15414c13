package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version and BuildTime are set at build time via ldflags.
var (
	Version   = "0.1.0"
	BuildTime = "dev"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "covmap version %s (build: %s)\n", Version, BuildTime)
		},
	}
}
