package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/gleyba/uber-poet/errors"
)

// Output formats accepted by Render
const (
	FormatTOML = "toml"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Render serializes the effective settings of v
func Render(v *viper.Viper, format string) ([]byte, error) {
	settings := v.AllSettings()

	switch format {
	case FormatTOML, "":
		return toml.Marshal(settings)
	case FormatJSON:
		return json.MarshalIndent(settings, "", "  ")
	case FormatYAML:
		return yaml.Marshal(settings)
	default:
		return nil, errors.NewConfigError("unknown config format %q (toml, json, yaml)", format)
	}
}

// WriteDefaults writes a TOML file holding every default setting. An existing
// file is rotated into .back1..back3 first; without force it is left alone.
func WriteDefaults(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.WithHint(
			errors.NewConfigError("config file %s already exists", configPath),
			"pass --force to overwrite (a backup is kept)")
	}

	if err := os.MkdirAll(filepath.Dir(configPath), DefaultDirPermissions); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	if err := createBackup(configPath); err != nil {
		return errors.Wrap(err, "failed to create backup")
	}

	v := viper.New()
	SetDefaults(v)
	data, err := Render(v, FormatTOML)
	if err != nil {
		return errors.Wrap(err, "failed to marshal defaults")
	}

	if err := os.WriteFile(configPath, data, DefaultConfigPermissions); err != nil {
		return errors.Wrapf(err, "failed to write %s", configPath)
	}
	return nil
}

// createBackup rotates backups (.back1, .back2, .back3) before overwriting
func createBackup(configPath string) error {
	content, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}

	back1, back2, back3 := configPath+".back1", configPath+".back2", configPath+".back3"

	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to delete old backup %s", back3)
	}
	if _, err := os.Stat(back2); err == nil {
		if err := os.Rename(back2, back3); err != nil {
			return errors.Wrap(err, "failed to rotate .back2 to .back3")
		}
	}
	if _, err := os.Stat(back1); err == nil {
		if err := os.Rename(back1, back2); err != nil {
			return errors.Wrap(err, "failed to rotate .back1 to .back2")
		}
	}

	if err := os.WriteFile(back1, content, DefaultConfigPermissions); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}
	return nil
}

// ExpandHome replaces a leading "~/" with the user's home directory
func ExpandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
