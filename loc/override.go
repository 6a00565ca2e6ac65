package loc

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/gleyba/uber-poet/errors"
	"github.com/gleyba/uber-poet/filegen"
)

// Override pins one module's LOC budget and language
type Override struct {
	LOC      int
	Language filegen.Language
}

// Overrides maps module names to their pinned budgets
type Overrides map[string]Override

// ReadOverrides loads a LOC override file. The format follows the file
// extension: .toml, .yaml/.yml, anything else is read as JSON.
func ReadOverrides(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithHint(
			errors.WrapConfig(err, "failed to read LOC file"),
			"check generation.loc_json_file_path")
	}

	var raw map[string]struct {
		LOC      int    `json:"loc" toml:"loc" yaml:"loc"`
		Language string `json:"language" toml:"language" yaml:"language"`
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		_, err = toml.Decode(string(data), &raw)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, errors.WrapConfig(err, "failed to parse LOC file "+path)
	}

	out := make(Overrides, len(raw))
	for name, entry := range raw {
		lang, err := filegen.ParseLanguage(entry.Language)
		if err != nil {
			return nil, errors.Wrapf(err, "module %s in %s", name, path)
		}
		if entry.LOC <= 0 {
			return nil, errors.NewConfigError("module %s in %s: loc must be positive, got %d", name, path, entry.LOC)
		}
		out[name] = Override{LOC: entry.LOC, Language: lang}
	}
	return out, nil
}

// Lookup returns the override for module
func (o Overrides) Lookup(module string) (Override, error) {
	entry, ok := o[module]
	if !ok {
		return Override{}, errors.WithHint(
			errors.NewConfigError("module %s has no entry in the LOC file", module),
			"the LOC file must list every library module of the graph")
	}
	return entry, nil
}
