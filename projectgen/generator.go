// Package projectgen turns a module graph into a buildable mock project:
// it budgets lines of code, schedules module generation, writes sources and
// build files, and records the manifests of the run.
package projectgen

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/gleyba/uber-poet/config"
	"github.com/gleyba/uber-poet/errors"
	"github.com/gleyba/uber-poet/filegen"
	"github.com/gleyba/uber-poet/imports"
	"github.com/gleyba/uber-poet/loc"
	"github.com/gleyba/uber-poet/logger"
	"github.com/gleyba/uber-poet/moduletree"
	"github.com/gleyba/uber-poet/progress"
	"github.com/gleyba/uber-poet/scheduler"
)

// Options describes one project generation
type Options struct {
	Kind      Kind
	Flavor    string // bazel or buck, iOS only
	OutputDir string
	GenType   string

	Targets     []loc.Target
	Overrides   loc.Overrides // replaces proportional budgeting when set
	LOCFilePath string        // copied into the project when set

	Workers           int
	InnerPerClass     int
	ExternalPerClass  int
	ClassesPerFile    int
	FunctionsPerClass int
	JavaPackage       string
	UseWMO            bool
	ModulePath        string // workspace directory holding the modules, for target labels
	Seed              int64

	ProgressInterval time.Duration
}

// FromConfig builds options for kind from loaded configuration
func FromConfig(cfg *config.Config, kind Kind) Options {
	opts := Options{
		Kind:              kind,
		Flavor:            cfg.IOS.ProjectGeneratorType,
		OutputDir:         cfg.Generation.OutputDirectory,
		GenType:           cfg.Generation.GenType,
		LOCFilePath:       cfg.Generation.LOCFilePath,
		Workers:           cfg.Generation.Concurrency,
		InnerPerClass:     cfg.Imports.InnerPerClass,
		ExternalPerClass:  cfg.Imports.ExternalPerClass,
		ClassesPerFile:    cfg.Generation.ClassesPerFile,
		FunctionsPerClass: cfg.Generation.FunctionsPerClass,
		JavaPackage:       cfg.Java.Package,
		UseWMO:            cfg.IOS.UseWMO,
		ModulePath:        cfg.IOS.BlazeModulePath,
		Seed:              cfg.Generation.Seed,
		ProgressInterval:  time.Duration(cfg.Progress.IntervalMS) * time.Millisecond,
	}
	if kind == KindJava {
		opts.Flavor = config.ProjectGeneratorBazel
		opts.Targets = []loc.Target{{Language: filegen.Java, LOC: cfg.Java.LinesOfCode}}
	} else {
		opts.Targets = []loc.Target{
			{Language: filegen.Swift, LOC: cfg.IOS.SwiftLinesOfCode},
			{Language: filegen.ObjC, LOC: cfg.IOS.ObjCLinesOfCode},
		}
	}
	return opts
}

// Result summarizes a finished generation
type Result struct {
	OutputDir      string
	Index          ModuleIndex
	Plan           *loc.Plan
	Files          int
	Lines          int
	Duration       time.Duration
	ExampleCommand string
}

// Generator writes one project. Not reusable across runs.
type Generator struct {
	opts      Options
	layout    *layout
	registry  filegen.Registry
	ids       *filegen.IDGenerator
	allocator *loc.Allocator
	scheduler *scheduler.Scheduler
	sinks     []progress.Sink
	logger    *zap.SugaredLogger
}

// New creates a generator. Sample files are measured with counter.
func New(opts Options, counter *loc.Counter, l *zap.SugaredLogger, sinks ...progress.Sink) (*Generator, error) {
	lay, err := newLayout(opts.Kind, opts.Flavor, opts.JavaPackage)
	if err != nil {
		return nil, err
	}

	ids := filegen.NewIDGenerator(opts.Seed)
	emitterOpts := filegen.Options{
		ClassesPerFile:    opts.ClassesPerFile,
		FunctionsPerClass: opts.FunctionsPerClass,
		JavaPackage:       opts.JavaPackage,
		IDs:               ids,
	}

	var registry filegen.Registry
	if opts.Kind == KindJava {
		registry = filegen.NewRegistry(filegen.NewJavaEmitter(emitterOpts))
	} else {
		registry = filegen.NewRegistry(filegen.NewSwiftEmitter(emitterOpts), filegen.NewObjCEmitter(emitterOpts))
	}

	return &Generator{
		opts:      opts,
		layout:    lay,
		registry:  registry,
		ids:       ids,
		allocator: loc.NewAllocator(counter, l),
		scheduler: scheduler.New(opts.Workers, l),
		sinks:     sinks,
		logger:    l.Named("projectgen"),
	}, nil
}

// ExampleCommand is the command that builds the generated project
func (g *Generator) ExampleCommand() string {
	return g.layout.exampleCommand(g.opts.OutputDir)
}

// Generate writes every library module, then the app module and manifests
func (g *Generator) Generate(ctx context.Context, app *moduletree.ModuleNode, nodes []*moduletree.ModuleNode) (*Result, error) {
	start := time.Now()
	libs := moduletree.Libraries(nodes)

	g.logger.Infow("starting project generation",
		"kind", string(g.opts.Kind),
		"generator", g.opts.Flavor,
		logger.FieldGenType, g.opts.GenType,
		"modules", len(nodes),
		logger.FieldPath, g.opts.OutputDir)
	g.logger.Infow("example command", "command", g.ExampleCommand())

	if err := os.MkdirAll(g.opts.OutputDir, config.DefaultDirPermissions); err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", g.opts.OutputDir)
	}
	if err := g.measureSamples(ctx); err != nil {
		return nil, err
	}
	plan, err := g.allocator.Plan(libs, g.opts.Targets, g.opts.Overrides)
	if err != nil {
		return nil, err
	}

	for _, n := range libs {
		a, _ := plan.Get(n.Name)
		err := imports.CheckInnerSpace(n.Name, a.FileCount, g.opts.ClassesPerFile, g.opts.FunctionsPerClass, g.opts.InnerPerClass)
		if err != nil {
			return nil, err
		}
	}

	totals := plan.LanguageTotals(libs)
	if g.opts.Overrides == nil {
		totals = make(map[filegen.Language]int, len(g.opts.Targets))
		for _, t := range g.opts.Targets {
			totals[t.Language] = t.LOC
		}
	}
	reporter := progress.NewReporter(totals, g.opts.ProgressInterval, g.sinks...)

	// Specs are drawn in graph order so a seeded run names everything the
	// same way regardless of scheduling
	specs := make(map[string][]*filegen.FileSpec, len(libs))
	for _, n := range libs {
		a, _ := plan.Get(n.Name)
		specs[n.Name] = filegen.NewFileSpecs(a.FileCount, g.opts.ClassesPerFile, g.opts.FunctionsPerClass, g.ids)
	}

	results, err := g.scheduler.Run(ctx, nodes, func(ctx context.Context, node *moduletree.ModuleNode, deps []*filegen.ModuleResult) (*filegen.ModuleResult, error) {
		a, _ := plan.Get(node.Name)
		return g.generateModule(node, a, specs[node.Name], deps, reporter)
	})
	if err != nil {
		return nil, err
	}

	if err := g.generateApp(app, results); err != nil {
		return nil, err
	}
	reporter.Flush()

	index := NewModuleIndex(libs, results)
	if err := index.Write(g.opts.OutputDir); err != nil {
		return nil, err
	}

	res := &Result{
		OutputDir:      g.opts.OutputDir,
		Index:          index,
		Plan:           plan,
		Duration:       time.Since(start),
		ExampleCommand: g.ExampleCommand(),
	}
	for _, r := range results {
		res.Files += r.FileCount()
		res.Lines += r.LineCount()
	}

	g.logger.Infow("project generation complete",
		"modules", len(results),
		logger.FieldFileCount, res.Files,
		logger.FieldLOC, res.Lines,
		logger.FieldDurationMS, res.Duration.Milliseconds())
	return res, nil
}

// measureSamples sizes one dummy-wired file per language the run can emit
func (g *Generator) measureSamples(ctx context.Context) error {
	for _, lang := range g.layout.languages {
		emitter, err := g.registry.Get(lang)
		if err != nil {
			return err
		}
		dummy := imports.NewDummy(imports.Scope{Module: "sample", Language: lang},
			g.opts.InnerPerClass, g.opts.ExternalPerClass, uint64(g.opts.Seed))
		sample, err := emitter.Sample(imports.ForEmitter(dummy))
		if err != nil {
			return errors.Wrapf(err, "failed to render %s sample", lang)
		}
		if _, err := g.allocator.Measure(ctx, sample); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) generateModule(node *moduletree.ModuleNode, a loc.Assignment, specs []*filegen.FileSpec,
	deps []*filegen.ModuleResult, reporter *progress.Reporter) (*filegen.ModuleResult, error) {
	emitter, err := g.registry.Get(a.Language)
	if err != nil {
		return nil, err
	}

	srcDir := filepath.Join(g.opts.OutputDir, filepath.FromSlash(g.layout.srcDir(node.Name)))
	if err := os.MkdirAll(srcDir, config.DefaultDirPermissions); err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", srcDir)
	}

	build, err := renderTemplate(g.layout.libTemplate, buildData{
		Name:     node.Name,
		Language: a.Language.String(),
		Deps:     labels(g.opts.ModulePath, node.DepNames()),
		WMO:      g.opts.UseWMO,
	})
	if err != nil {
		return nil, err
	}
	if err := writeFile(filepath.Join(g.opts.OutputDir, node.Name, g.layout.buildFileName), build); err != nil {
		return nil, err
	}

	selector := imports.New(imports.Scope{Module: node.Name, Language: a.Language},
		specs, deps, g.opts.InnerPerClass, g.opts.ExternalPerClass)
	result := filegen.NewModuleResult(node.Name, a.Language, a.LOC())

	for f, err := range emitter.Generate(filegen.GenerateRequest{
		Module:   node,
		Specs:    specs,
		Deps:     deps,
		Selector: imports.ForEmitter(selector),
	}) {
		if err != nil {
			return nil, err
		}
		if err := writeFile(filepath.Join(srcDir, f.Filename), f.Text); err != nil {
			return nil, err
		}
		reporter.Report(f.Language, f.TextLineCount)
		f.Release()
		result.Add(f)
	}
	return result, nil
}

func (g *Generator) generateApp(app *moduletree.ModuleNode, results map[string]*filegen.ModuleResult) error {
	if len(app.Deps) == 0 {
		return errors.WithHint(
			errors.NewConfigError("app module %s has no dependencies to call", app.Name),
			"pick a dot_root_node_name with at least one dependency")
	}
	entry, ok := results[app.Deps[0].Name]
	if !ok {
		return errors.NewConfigError("app dependency %s was not generated", app.Deps[0].Name)
	}

	emitter, err := g.registry.Get(g.layout.mainLanguage)
	if err != nil {
		return err
	}
	main, err := emitter.GenMain(entry)
	if err != nil {
		return errors.WrapEmitter(err, app.Name)
	}
	mainPath := filepath.Join(g.opts.OutputDir, filepath.FromSlash(g.layout.mainPath(emitter.MainFileName())))
	if err := os.MkdirAll(filepath.Dir(mainPath), config.DefaultDirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create %s", filepath.Dir(mainPath))
	}
	if err := writeFile(mainPath, main); err != nil {
		return err
	}

	build, err := renderTemplate(g.layout.appTemplate, buildData{
		Name:    app.Name,
		Deps:    labels(g.opts.ModulePath, app.DepNames()),
		WMO:     g.opts.UseWMO,
		Package: g.opts.JavaPackage,
	})
	if err != nil {
		return err
	}
	if err := writeFile(filepath.Join(g.opts.OutputDir, AppDir, g.layout.buildFileName), build); err != nil {
		return err
	}

	for tmpl, target := range g.layout.resources {
		text, err := renderTemplate(tmpl, buildData{Package: g.opts.JavaPackage})
		if err != nil {
			return err
		}
		if err := writeFile(filepath.Join(g.opts.OutputDir, filepath.FromSlash(target)), text); err != nil {
			return err
		}
	}

	if g.opts.LOCFilePath != "" {
		dest := filepath.Join(g.opts.OutputDir, filepath.Base(g.opts.LOCFilePath))
		if err := copyFile(g.opts.LOCFilePath, dest); err != nil {
			return err
		}
	}

	g.logger.Debugw("generated app module", logger.FieldModule, app.Name, "entry", entry.Name)
	return nil
}
