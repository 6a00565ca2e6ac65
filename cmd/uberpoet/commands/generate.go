package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gleyba/uber-poet/catalog"
	"github.com/gleyba/uber-poet/config"
	"github.com/gleyba/uber-poet/db"
	"github.com/gleyba/uber-poet/display"
	"github.com/gleyba/uber-poet/errors"
	"github.com/gleyba/uber-poet/loc"
	"github.com/gleyba/uber-poet/logger"
	"github.com/gleyba/uber-poet/moduletree"
	"github.com/gleyba/uber-poet/progress"
	"github.com/gleyba/uber-poet/projectgen"
	"github.com/gleyba/uber-poet/source"
)

// IOSCmd generates a Swift/Objective-C project
var IOSCmd = &cobra.Command{
	Use:   "ios",
	Short: "Generate a mock iOS project (Swift and Objective-C)",
	Long: `Generate a mock iOS application made of many library modules.

Lines of code are split between Swift and Objective-C by
--swift_lines_of_code and --objc_lines_of_code. Build files are
written for Bazel or Buck (--project_generator_type).

Examples:
  uberpoet ios -o /tmp/mock_app --gen_type layered --module_count 120
  uberpoet ios -o /tmp/mock_app --objc_lines_of_code 500000 --project_generator_type buck
  uberpoet ios -o /tmp/mock_app --gen_type dot --dot_file_path deps.dot --dot_root_node_name App`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd, projectgen.KindIOS, iosFlags)
	},
}

// JavaCmd generates a Java project
var JavaCmd = &cobra.Command{
	Use:   "java",
	Short: "Generate a mock Java project built with Bazel",
	Long: `Generate a mock Java application made of many library modules.

Examples:
  uberpoet java -o /tmp/mock_java --java_lines_of_code 200000
  uberpoet java -o /tmp/mock_java --gen_type bs_layered --java_package org.acme`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd, projectgen.KindJava, javaFlags)
	},
}

func init() {
	addGenerationFlags(IOSCmd)
	ios := config.Default().IOS
	IOSCmd.Flags().String("project_generator_type", ios.ProjectGeneratorType, "Build system of the generated project: bazel or buck")
	IOSCmd.Flags().Int("swift_lines_of_code", ios.SwiftLinesOfCode, "Swift lines of code to generate")
	IOSCmd.Flags().Int("objc_lines_of_code", ios.ObjCLinesOfCode, "Objective-C lines of code to generate")
	IOSCmd.Flags().Bool("use_wmo", ios.UseWMO, "Enable whole module optimization in Swift targets")
	IOSCmd.Flags().String("blaze_module_path", ios.BlazeModulePath, "Workspace directory holding the modules, used in target labels")

	addGenerationFlags(JavaCmd)
	java := config.Default().Java
	JavaCmd.Flags().Int("java_lines_of_code", java.LinesOfCode, "Java lines of code to generate")
	JavaCmd.Flags().String("java_package", java.Package, "Root Java package of the generated modules")
}

// summary is what ios and java print when done
type summary struct {
	RunID          string  `json:"run_id"`
	OutputDir      string  `json:"output_dir"`
	GenType        string  `json:"gen_type"`
	Modules        int     `json:"modules"`
	Files          int     `json:"files"`
	Lines          int     `json:"lines"`
	Seconds        float64 `json:"time_to_generate"`
	ExampleCommand string  `json:"example_command"`
}

func runGenerate(cmd *cobra.Command, kind projectgen.Kind, kindFlags map[string]string) error {
	cfg, err := loadConfig(cmd, graphFlags, generationFlags, kindFlags)
	if err != nil {
		return err
	}

	runID := uuid.New().String()
	ctx := logger.WithRunID(cmd.Context(), runID)
	l := logger.LoggerFromContext(ctx)

	app, nodes, err := buildGraph(ctx, cfg, l)
	if err != nil {
		return err
	}
	if cfg.Generation.PrintDependencyGraph {
		return moduletree.WriteEdges(cmd.OutOrStdout(), nodes)
	}

	if cfg.Generation.OutputDirectory == "" {
		return errors.WithHint(
			errors.NewConfigError("no output directory"),
			"pass --output_directory or set generation.output_directory")
	}

	opts := projectgen.FromConfig(cfg, kind)
	opts.OutputDir, err = filepath.Abs(config.ExpandHome(cfg.Generation.OutputDirectory))
	if err != nil {
		return errors.WrapConfig(err, "invalid output directory")
	}

	if cfg.Generation.LOCFilePath != "" {
		f, err := source.Resolve(ctx, cfg.Generation.LOCFilePath, l)
		if err != nil {
			return err
		}
		defer f.Cleanup()

		overrides, err := loc.ReadOverrides(f.LocalPath)
		if err != nil {
			return err
		}
		opts.Overrides = overrides
		opts.LOCFilePath = f.LocalPath
	}

	if err := projectgen.PrepareOutputDir(opts.OutputDir, l); err != nil {
		return err
	}

	counter := loc.NewCounter(cfg.LOC.ClocBinary, loc.NewMeasurementCache(), l)
	gen, err := projectgen.New(opts, counter, l, progressSinks(cmd.OutOrStdout(), cfg, l)...)
	if err != nil {
		return err
	}

	started := time.Now()
	res, err := gen.Generate(ctx, app, nodes)
	if err != nil {
		return err
	}

	info := projectgen.NewProjectInfo(opts)
	info.TimeToGenerate = res.Duration.Seconds()
	if err := info.Write(opts.OutputDir); err != nil {
		return err
	}

	if cfg.Catalog.Enabled {
		run := newCatalogRun(runID, cmd.Name(), cfg.Generation.GenType, res, started)
		if err := recordRun(ctx, config.ExpandHome(cfg.Catalog.Path), run, l); err != nil {
			// History is best effort, the project is already written
			l.Warnw("Failed to record run in catalog", logger.FieldError, err)
		}
	}

	s := summary{
		RunID:          runID,
		OutputDir:      res.OutputDir,
		GenType:        cfg.Generation.GenType,
		Modules:        len(res.Index),
		Files:          res.Files,
		Lines:          res.Lines,
		Seconds:        res.Duration.Seconds(),
		ExampleCommand: res.ExampleCommand,
	}
	if display.ShouldOutputJSON(cmd) {
		return display.WriteJSON(cmd.OutOrStdout(), s)
	}
	return printSummary(cmd.OutOrStdout(), s)
}

// buildGraph reads the dot graph or generates a synthetic one
func buildGraph(ctx context.Context, cfg *config.Config, l *zap.SugaredLogger) (*moduletree.ModuleNode, []*moduletree.ModuleNode, error) {
	g := cfg.Generation
	if g.GenType == config.GenTypeDot {
		f, err := source.Resolve(ctx, g.DotFilePath, l)
		if err != nil {
			return nil, nil, err
		}
		defer f.Cleanup()
		return moduletree.NewDotReader(l).ReadFile(f.LocalPath, g.DotRootNodeName)
	}

	gen, err := moduletree.ParseGenType(g.GenType)
	if err != nil {
		return nil, nil, err
	}
	return moduletree.Build(gen, moduletree.Params{
		ModuleCount:      g.ModuleCount,
		BigModuleCount:   g.BigModuleCount,
		SmallModuleCount: g.SmallModuleCount,
		LayerCount:       g.AppLayerCount,
	})
}

func progressSinks(out io.Writer, cfg *config.Config, l *zap.SugaredLogger) []progress.Sink {
	switch {
	case cfg.Progress.JSON:
		return []progress.Sink{progress.NewJSONSink(out, l)}
	case logger.JSONOutput:
		return []progress.Sink{progress.NewLogSink(l)}
	default:
		return []progress.Sink{progress.NewCLISink()}
	}
}

func newCatalogRun(runID, command, genType string, res *projectgen.Result, started time.Time) *catalog.Run {
	run := &catalog.Run{
		ID:         runID,
		Command:    command,
		GenType:    genType,
		OutputDir:  res.OutputDir,
		TotalLOC:   res.Lines,
		FileCount:  res.Files,
		StartedAt:  started,
		FinishedAt: started.Add(res.Duration),
	}
	for name, e := range res.Index {
		run.Modules = append(run.Modules, catalog.Module{
			Name:      name,
			Language:  e.Language.String(),
			FileCount: e.FileCount,
			LOC:       e.LOC,
		})
	}
	sort.Slice(run.Modules, func(i, j int) bool { return run.Modules[i].Name < run.Modules[j].Name })
	return run
}

func recordRun(ctx context.Context, path string, run *catalog.Run, l *zap.SugaredLogger) error {
	conn, err := db.OpenWithMigrations(path, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	return catalog.NewStore(conn, l).Record(ctx, run)
}

func printSummary(w io.Writer, s summary) error {
	pterm.DefaultSection.WithWriter(w).Println("Mock project generated")
	err := display.KeyValues(w, [][2]string{
		{"Output", s.OutputDir},
		{"Graph", s.GenType},
		{"Modules", strconv.Itoa(s.Modules)},
		{"Files", strconv.Itoa(s.Files)},
		{"Lines", strconv.Itoa(s.Lines)},
		{"Time", fmt.Sprintf("%.2fs", s.Seconds)},
		{"Run", s.RunID},
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "\nBuild it with:\n  %s\n", s.ExampleCommand)
	return err
}
