package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/gleyba/uber-poet/catalog"
	"github.com/gleyba/uber-poet/config"
	"github.com/gleyba/uber-poet/db"
	"github.com/gleyba/uber-poet/display"
	"github.com/gleyba/uber-poet/logger"
)

// HistoryCmd browses the catalog of previous runs
var HistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse previously generated projects",
	Long: `Browse the catalog of previously generated mock projects.

Every successful ios or java run is recorded unless catalog.enabled is
false or --catalog=false is passed.

Examples:
  uberpoet history ls              # Most recent runs
  uberpoet history ls --limit 5
  uberpoet history show 3f2a9c     # One run and its modules (id prefix is enough)`,
}

var historyListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List recorded runs, newest first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return withStore(cmd, func(store *catalog.Store) error {
			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if display.ShouldOutputJSON(cmd) {
				return display.WriteJSON(cmd.OutOrStdout(), runs)
			}
			return printRuns(cmd.OutOrStdout(), runs)
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run and its modules",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(store *catalog.Store) error {
			run, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if display.ShouldOutputJSON(cmd) {
				return display.WriteJSON(cmd.OutOrStdout(), run)
			}
			return printRun(cmd.OutOrStdout(), run)
		})
	},
}

func init() {
	historyListCmd.Flags().Int("limit", catalog.DefaultListLimit, "Number of runs to show")

	HistoryCmd.AddCommand(historyListCmd)
	HistoryCmd.AddCommand(historyShowCmd)
}

func withStore(cmd *cobra.Command, fn func(*catalog.Store) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	conn, err := db.OpenWithMigrations(config.ExpandHome(cfg.Catalog.Path), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(catalog.NewStore(conn, logger.Logger))
}

func printRuns(w io.Writer, runs []catalog.Run) error {
	if len(runs) == 0 {
		pterm.Info.WithWriter(w).Println("No runs recorded yet")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.ID[:min(8, len(r.ID))],
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Command,
			r.GenType,
			strconv.Itoa(r.ModuleCount),
			strconv.Itoa(r.FileCount),
			strconv.Itoa(r.TotalLOC),
			r.OutputDir,
		})
	}
	return display.Table(w, []string{"ID", "STARTED", "COMMAND", "GRAPH", "MODULES", "FILES", "LINES", "OUTPUT"}, rows)
}

func printRun(w io.Writer, run *catalog.Run) error {
	pterm.DefaultSection.WithWriter(w).Printf("Run %s", run.ID)
	err := display.KeyValues(w, [][2]string{
		{"Command", run.Command},
		{"Graph", run.GenType},
		{"Output", run.OutputDir},
		{"Started", run.StartedAt.Local().Format("2006-01-02 15:04:05")},
		{"Duration", run.Duration().String()},
		{"Modules", strconv.Itoa(run.ModuleCount)},
		{"Files", strconv.Itoa(run.FileCount)},
		{"Lines", strconv.Itoa(run.TotalLOC)},
	})
	if err != nil {
		return err
	}
	if len(run.Modules) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	rows := make([][]string, 0, len(run.Modules))
	for _, m := range run.Modules {
		rows = append(rows, []string{m.Name, m.Language, strconv.Itoa(m.FileCount), strconv.Itoa(m.LOC)})
	}
	return display.Table(w, []string{"MODULE", "LANGUAGE", "FILES", "LOC"}, rows)
}
