package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gleyba/uber-poet/config"
	"github.com/gleyba/uber-poet/errors"
)

// graphFlags maps the flags shared by ios, java and graph to their config
// keys. Flag names follow the settings they set.
var graphFlags = map[string]string{
	"gen_type":           "generation.gen_type",
	"module_count":       "generation.module_count",
	"big_module_count":   "generation.big_module_count",
	"small_module_count": "generation.small_module_count",
	"app_layer_count":    "generation.app_layer_count",
	"dot_file_path":      "generation.dot_file_path",
	"dot_root_node_name": "generation.dot_root_node_name",
}

var generationFlags = map[string]string{
	"output_directory":       "generation.output_directory",
	"concurrency":            "generation.concurrency",
	"loc_json_file_path":     "generation.loc_json_file_path",
	"seed":                   "generation.seed",
	"classes_per_file":       "generation.classes_per_file",
	"functions_per_class":    "generation.functions_per_class",
	"print_dependency_graph": "generation.print_dependency_graph",
	"inner_per_class":        "imports.inner_per_class",
	"external_per_class":     "imports.external_per_class",
	"progress_json":          "progress.json",
	"catalog":                "catalog.enabled",
	"cloc_binary":            "loc.cloc_binary",
}

var iosFlags = map[string]string{
	"project_generator_type": "ios.project_generator_type",
	"swift_lines_of_code":    "ios.swift_lines_of_code",
	"objc_lines_of_code":     "ios.objc_lines_of_code",
	"use_wmo":                "ios.use_wmo",
	"blaze_module_path":      "ios.blaze_module_path",
}

var javaFlags = map[string]string{
	"java_lines_of_code": "java.java_lines_of_code",
	"java_package":       "java.java_package",
}

// addGraphFlags registers the flags describing the module graph
func addGraphFlags(cmd *cobra.Command) {
	d := config.Default().Generation
	f := cmd.Flags()
	f.String("gen_type", d.GenType, "Graph shape: flat, bs_flat, layered, bs_layered, dot")
	f.Int("module_count", d.ModuleCount, "Number of modules for flat and layered graphs")
	f.Int("big_module_count", d.BigModuleCount, "Number of big modules for bs_flat and bs_layered graphs")
	f.Int("small_module_count", d.SmallModuleCount, "Number of small modules for bs_flat and bs_layered graphs")
	f.Int("app_layer_count", d.AppLayerCount, "Number of layers for layered graphs")
	f.String("dot_file_path", "", "DOT edge list to read the graph from (path or URL)")
	f.String("dot_root_node_name", "", "Name of the app node in the DOT graph")
}

// addGenerationFlags registers the flags shared by ios and java
func addGenerationFlags(cmd *cobra.Command) {
	addGraphFlags(cmd)

	defaults := config.Default()
	d := defaults.Generation
	f := cmd.Flags()
	f.StringP("output_directory", "o", "", "Directory the mock project is written to (deleted first)")
	f.Int("concurrency", d.Concurrency, "Modules generated in parallel (0 = CPU count)")
	f.String("loc_json_file_path", "", "Per-module LOC file (JSON, TOML or YAML; path or URL), dot graphs only")
	f.Int64("seed", d.Seed, "Seed for identifiers and import selection (0 = time-seeded)")
	f.Int("classes_per_file", d.ClassesPerFile, "Classes in each generated file")
	f.Int("functions_per_class", d.FunctionsPerClass, "Functions in each generated class")
	f.Bool("print_dependency_graph", false, "Print the module graph edges and exit")
	f.Int("inner_per_class", defaults.Imports.InnerPerClass, "Calls into other classes of the same module, per class")
	f.Int("external_per_class", defaults.Imports.ExternalPerClass, "Calls into dependency modules, per class")
	f.Bool("progress_json", defaults.Progress.JSON, "Emit progress summaries as JSON lines on stdout")
	f.Bool("catalog", defaults.Catalog.Enabled, "Record the run in the history catalog")
	f.String("cloc_binary", defaults.LOC.ClocBinary, "cloc executable used to measure samples (empty disables)")
}

// loadConfig builds the effective configuration for cmd: defaults, config
// file cascade, --config, environment, then the flags in keys that were set.
func loadConfig(cmd *cobra.Command, keys ...map[string]string) (*config.Config, error) {
	v, err := loadViper(cmd)
	if err != nil {
		return nil, err
	}

	for _, k := range keys {
		if err := config.BindFlags(v, cmd.Flags(), k); err != nil {
			return nil, errors.WrapConfig(err, "failed to bind flags")
		}
	}

	cfg, err := config.LoadWithViper(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadViper returns the shared viper with the --config file merged in
func loadViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := config.GetViper()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := config.MergeFile(v, path); err != nil {
			return nil, err
		}
	}
	return v, nil
}
