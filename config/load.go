package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/gleyba/uber-poet/errors"
)

const envPrefix = "UBERPOET"

var globalConfig *Config
var viperInstance *viper.Viper

// Load reads the uberpoet configuration using Viper
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	cfg, err := LoadWithViper(initViper())
	if err != nil {
		return nil, err
	}

	globalConfig = cfg
	return globalConfig, nil
}

// GetViper returns the shared Viper instance. Commands bind their flags to it
// before calling LoadWithViper.
func GetViper() *viper.Viper {
	return initViper()
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.WrapConfig(err, "failed to unmarshal config")
	}
	return &config, nil
}

// LoadFromFile loads configuration from a specific file path on top of defaults
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.WrapConfig(err, "failed to read config file "+configPath)
	}

	return LoadWithViper(v)
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viperInstance = nil
	ConfigSources = map[string]SourceInfo{}
	changedFlags = map[string]bool{}
}

func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
	mergeConfigFiles(v, SearchPaths())

	viperInstance = v
	return v
}

// ConfigSource represents where a configuration value came from
type ConfigSource string

const (
	SourceDefault     ConfigSource = "default"
	SourceSystem      ConfigSource = "system"      // /etc/uberpoet/uberpoet.toml
	SourceUser        ConfigSource = "user"        // ~/.uberpoet/uberpoet.toml
	SourceProject     ConfigSource = "project"     // nearest uberpoet.toml upwards from cwd
	SourceFile        ConfigSource = "file"        // --config
	SourceEnvironment ConfigSource = "environment" // UBERPOET_* env vars
	SourceFlag        ConfigSource = "flag"
)

// SourceInfo tracks where a configuration value originated
type SourceInfo struct {
	Source ConfigSource
	Path   string // file path or environment variable name
}

// ConfigSources records, per dotted key, the file that last set it
var ConfigSources = map[string]SourceInfo{}

// SearchPath is one candidate config file in the cascade
type SearchPath struct {
	Source ConfigSource
	Path   string
}

// SearchPaths returns the config file cascade, lowest precedence first
func SearchPaths() []SearchPath {
	paths := []SearchPath{
		{Source: SourceSystem, Path: filepath.Join("/etc", "uberpoet", DefaultConfigFileName)},
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, SearchPath{Source: SourceUser, Path: filepath.Join(home, ".uberpoet", DefaultConfigFileName)})
	}
	if project := findProjectConfig(); project != "" {
		paths = append(paths, SearchPath{Source: SourceProject, Path: project})
	}
	return paths
}

// findProjectConfig searches for uberpoet.toml by walking up the directory tree
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		candidate := filepath.Join(dir, DefaultConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// mergeConfigFiles merges existing files in order, recording which file set
// each key. Unreadable files are skipped.
func mergeConfigFiles(v *viper.Viper, paths []SearchPath) {
	for _, p := range paths {
		if _, err := os.Stat(p.Path); err != nil {
			continue
		}

		fileViper := viper.New()
		fileViper.SetConfigFile(p.Path)
		fileViper.SetConfigType("toml")
		if err := fileViper.ReadInConfig(); err != nil {
			continue
		}

		// Merged as the config layer so env vars and flags still win
		if err := v.MergeConfigMap(fileViper.AllSettings()); err != nil {
			continue
		}
		for _, key := range fileViper.AllKeys() {
			ConfigSources[key] = SourceInfo{Source: p.Source, Path: p.Path}
		}
	}
}

// MergeFile merges an explicitly chosen config file over the cascade. Unlike
// cascade files, a missing or malformed file is an error.
func MergeFile(v *viper.Viper, path string) error {
	path = ExpandHome(path)
	if _, err := os.Stat(path); err != nil {
		return errors.WrapConfig(err, "config file not found")
	}

	fileViper := viper.New()
	fileViper.SetConfigFile(path)
	fileViper.SetConfigType("toml")
	if err := fileViper.ReadInConfig(); err != nil {
		return errors.WrapConfig(err, "failed to read config file "+path)
	}
	if err := v.MergeConfigMap(fileViper.AllSettings()); err != nil {
		return errors.WrapConfig(err, "failed to merge config file "+path)
	}
	for _, key := range fileViper.AllKeys() {
		ConfigSources[key] = SourceInfo{Source: SourceFile, Path: path}
	}
	return nil
}

// SettingInfo contains metadata about a configuration setting
type SettingInfo struct {
	Key        string       `json:"key"`
	Value      interface{}  `json:"value"`
	Source     ConfigSource `json:"source"`
	SourcePath string       `json:"source_path,omitempty"`
}

// Introspect lists every effective setting of v with the place it came from.
// Keys changed through bound flags report SourceFlag.
func Introspect(v *viper.Viper) []SettingInfo {
	keys := v.AllKeys()
	sort.Strings(keys)

	settings := make([]SettingInfo, 0, len(keys))
	for _, key := range keys {
		info := SourceInfo{Source: SourceDefault, Path: "built-in default"}
		if si, ok := ConfigSources[key]; ok {
			info = si
		}

		envKey := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if _, ok := os.LookupEnv(envKey); ok {
			info = SourceInfo{Source: SourceEnvironment, Path: envKey}
		}
		if flagChanged(key) {
			info = SourceInfo{Source: SourceFlag, Path: "--" + key[strings.LastIndex(key, ".")+1:]}
		}

		settings = append(settings, SettingInfo{
			Key:        key,
			Value:      v.Get(key),
			Source:     info.Source,
			SourcePath: info.Path,
		})
	}
	return settings
}
