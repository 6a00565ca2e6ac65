package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gleyba/uber-poet/cmd/uberpoet/commands"
	"github.com/gleyba/uber-poet/errors"
	"github.com/gleyba/uber-poet/logger"
)

var rootCmd = &cobra.Command{
	Use:   "uberpoet",
	Short: "uberpoet - mock application generator for build system benchmarks",
	Long: `uberpoet generates large mock applications made of many modules, to
measure how build systems and toolchains scale with project shape.

Available commands:
  ios      - Generate a Swift/Objective-C project for Bazel or Buck
  java     - Generate a Java project for Bazel
  graph    - Print the module graph as an edge list
  config   - Inspect and initialise configuration
  history  - Browse previously generated projects
  version  - Show version information

Examples:
  uberpoet ios -o /tmp/mock_app --gen_type layered
  uberpoet java -o /tmp/mock_java --java_lines_of_code 200000
  uberpoet history ls`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("log-json")
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json", false, "Print command results as JSON")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	rootCmd.PersistentFlags().String("config", "", "Config file merged over the default cascade")

	rootCmd.AddCommand(commands.IOSCmd)
	rootCmd.AddCommand(commands.JavaCmd)
	rootCmd.AddCommand(commands.GraphCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.HistoryCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		verbosity, _ := rootCmd.PersistentFlags().GetCount("verbose")
		commands.PrintError(os.Stderr, err, verbosity >= 2)
		logger.Logger.Sync()
		os.Exit(1)
	}
	logger.Logger.Sync()
}
