// Package config loads uberpoet settings from defaults, TOML files,
// UBERPOET_* environment variables and CLI flags, in that order of precedence.
package config

// Config represents the complete uberpoet configuration
type Config struct {
	Generation GenerationConfig `mapstructure:"generation"`
	Imports    ImportsConfig    `mapstructure:"imports"`
	IOS        IOSConfig        `mapstructure:"ios"`
	Java       JavaConfig       `mapstructure:"java"`
	Progress   ProgressConfig   `mapstructure:"progress"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	LOC        LOCConfig        `mapstructure:"loc"`
}

// GenerationConfig describes the module graph and the shape of generated files
type GenerationConfig struct {
	OutputDirectory string `mapstructure:"output_directory"`
	GenType         string `mapstructure:"gen_type"`    // flat, bs_flat, layered, bs_layered, dot
	Concurrency     int    `mapstructure:"concurrency"` // 0 = host CPU count

	ModuleCount      int `mapstructure:"module_count"`
	BigModuleCount   int `mapstructure:"big_module_count"`
	SmallModuleCount int `mapstructure:"small_module_count"`
	AppLayerCount    int `mapstructure:"app_layer_count"`

	DotFilePath     string `mapstructure:"dot_file_path"`      // local path or go-getter URL
	DotRootNodeName string `mapstructure:"dot_root_node_name"` // required with dot_file_path
	LOCFilePath     string `mapstructure:"loc_json_file_path"` // per-module LOC override, dot graphs only

	Seed              int64 `mapstructure:"seed"` // 0 = time-seeded identifiers
	ClassesPerFile    int   `mapstructure:"classes_per_file"`
	FunctionsPerClass int   `mapstructure:"functions_per_class"`

	PrintDependencyGraph bool `mapstructure:"print_dependency_graph"`
}

// ImportsConfig bounds how many cross-class references each generated class makes
type ImportsConfig struct {
	InnerPerClass    int `mapstructure:"inner_per_class"`
	ExternalPerClass int `mapstructure:"external_per_class"`
}

// IOSConfig configures Swift/Objective-C project generation
type IOSConfig struct {
	ProjectGeneratorType string `mapstructure:"project_generator_type"` // bazel or buck
	SwiftLinesOfCode     int    `mapstructure:"swift_lines_of_code"`
	ObjCLinesOfCode      int    `mapstructure:"objc_lines_of_code"`
	UseWMO               bool   `mapstructure:"use_wmo"`
	BlazeModulePath      string `mapstructure:"blaze_module_path"`
}

// JavaConfig configures Java project generation
type JavaConfig struct {
	LinesOfCode int    `mapstructure:"java_lines_of_code"`
	Package     string `mapstructure:"java_package"`
}

// ProgressConfig configures the generated-lines progress reporter
type ProgressConfig struct {
	IntervalMS int  `mapstructure:"interval_ms"`
	JSON       bool `mapstructure:"json"` // emit progress summaries as JSON lines
}

// CatalogConfig configures the SQLite run history
type CatalogConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"` // "~/" is expanded
}

// LOCConfig configures line counting of sample files
type LOCConfig struct {
	ClocBinary string `mapstructure:"cloc_binary"` // empty disables cloc, multipliers are used
}

// Generator types accepted by generation.gen_type
const (
	GenTypeFlat              = "flat"
	GenTypeFlatBigSmall      = "bs_flat"
	GenTypeLayered           = "layered"
	GenTypeLayeredBigSmall   = "bs_layered"
	GenTypeDot               = "dot"
	ProjectGeneratorBazel    = "bazel"
	ProjectGeneratorBuck     = "buck"
	DefaultConfigFileName    = "uberpoet.toml"
	DefaultDirPermissions    = 0750
	DefaultConfigPermissions = 0644
)

// GenTypes lists every accepted gen_type value
var GenTypes = []string{GenTypeFlat, GenTypeFlatBigSmall, GenTypeLayered, GenTypeLayeredBigSmall, GenTypeDot}
