package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gleyba/uber-poet/display"
	"github.com/gleyba/uber-poet/version"
)

// VersionCmd represents the version command
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show uberpoet version information",
	Long:  `Display version, build time, commit hash, and platform information for the uberpoet binary.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()

		if display.ShouldOutputJSON(cmd) {
			return display.WriteJSON(cmd.OutOrStdout(), info)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, info.String())
		fmt.Fprintf(out, "Platform: %s\n", info.Platform)
		fmt.Fprintf(out, "Go: %s\n", info.GoVersion)
		return nil
	},
}
