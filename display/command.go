// Package display renders command results as JSON or pterm tables.
package display

import (
	"github.com/spf13/cobra"
)

// ShouldOutputJSON reports whether a command should print JSON, honouring a
// local --json flag before the root persistent one.
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}

	if f := cmd.Flags().Lookup("json"); f != nil && f.Changed {
		v, _ := cmd.Flags().GetBool("json")
		return v
	}

	v, _ := cmd.Root().PersistentFlags().GetBool("json")
	return v
}
