package commands

import (
	"github.com/spf13/cobra"

	"github.com/gleyba/uber-poet/logger"
	"github.com/gleyba/uber-poet/moduletree"
)

// GraphCmd prints the module graph without generating anything
var GraphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the module dependency graph as an edge list",
	Long: `Print one "module dependency" line per edge of the graph that ios or
java would generate with the same flags, then exit.

Examples:
  uberpoet graph --gen_type layered --module_count 12 --app_layer_count 3
  uberpoet graph --gen_type dot --dot_file_path https://example.com/deps.dot --dot_root_node_name App`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, graphFlags)
		if err != nil {
			return err
		}

		_, nodes, err := buildGraph(cmd.Context(), cfg, logger.Logger)
		if err != nil {
			return err
		}
		return moduletree.WriteEdges(cmd.OutOrStdout(), nodes)
	},
}

func init() {
	addGraphFlags(GraphCmd)
}
