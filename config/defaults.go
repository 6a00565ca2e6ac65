package config

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Graph and file shape
	v.SetDefault("generation.output_directory", "")
	v.SetDefault("generation.gen_type", GenTypeFlat)
	v.SetDefault("generation.concurrency", 0)
	v.SetDefault("generation.module_count", 100)
	v.SetDefault("generation.big_module_count", 3)
	v.SetDefault("generation.small_module_count", 50)
	v.SetDefault("generation.app_layer_count", 10)
	v.SetDefault("generation.dot_file_path", "")
	v.SetDefault("generation.dot_root_node_name", "")
	v.SetDefault("generation.loc_json_file_path", "")
	v.SetDefault("generation.seed", 0)
	v.SetDefault("generation.classes_per_file", 3)
	v.SetDefault("generation.functions_per_class", 3)
	v.SetDefault("generation.print_dependency_graph", false)

	// Cross references per generated class
	v.SetDefault("imports.inner_per_class", 4)
	v.SetDefault("imports.external_per_class", 16)

	// iOS
	v.SetDefault("ios.project_generator_type", ProjectGeneratorBazel)
	v.SetDefault("ios.swift_lines_of_code", 1500000)
	v.SetDefault("ios.objc_lines_of_code", 0)
	v.SetDefault("ios.use_wmo", false)
	v.SetDefault("ios.blaze_module_path", "")

	// Java
	v.SetDefault("java.java_lines_of_code", 1500000)
	v.SetDefault("java.java_package", "com.example")

	// Progress summaries at most every 500ms
	v.SetDefault("progress.interval_ms", 500)
	v.SetDefault("progress.json", false)

	// Run history
	v.SetDefault("catalog.enabled", true)
	v.SetDefault("catalog.path", "~/.uberpoet/catalog.db")

	v.SetDefault("loc.cloc_binary", "cloc")
}

// Default returns the configuration produced by defaults alone
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	if err != nil {
		// Defaults always decode
		panic(err)
	}
	return cfg
}
