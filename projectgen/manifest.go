package projectgen

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/gleyba/uber-poet/config"
	"github.com/gleyba/uber-poet/errors"
	"github.com/gleyba/uber-poet/filegen"
	"github.com/gleyba/uber-poet/moduletree"
)

// Manifest file names written at the output root
const (
	ModuleIndexFile = "module_index.json"
	ProjectInfoFile = "project_info.json"
)

// IndexEntry is one module of module_index.json
type IndexEntry struct {
	FileCount int `json:"file_count"`
	LOC       int `json:"loc"`
	// Language is kept in memory for the run catalog only
	Language filegen.Language `json:"-"`
}

// ModuleIndex maps module names to what was generated for them
type ModuleIndex map[string]IndexEntry

// NewModuleIndex indexes the generated library modules
func NewModuleIndex(libs []*moduletree.ModuleNode, results map[string]*filegen.ModuleResult) ModuleIndex {
	index := make(ModuleIndex, len(libs))
	for _, n := range libs {
		r, ok := results[n.Name]
		if !ok {
			continue
		}
		index[n.Name] = IndexEntry{FileCount: r.FileCount(), LOC: r.LOC, Language: r.Language}
	}
	return index
}

// Write stores the index as module_index.json under dir
func (m ModuleIndex) Write(dir string) error {
	return writeJSON(filepath.Join(dir, ModuleIndexFile), m)
}

// ReadModuleIndex loads module_index.json from dir
func ReadModuleIndex(dir string) (ModuleIndex, error) {
	data, err := os.ReadFile(filepath.Join(dir, ModuleIndexFile))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read module index")
	}
	var m ModuleIndex
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "failed to parse module index")
	}
	return m, nil
}

// ProjectInfo is the content of project_info.json
type ProjectInfo struct {
	GeneratorType  string                 `json:"generator_type,omitempty"`
	GraphConfig    string                 `json:"graph_config"`
	Options        map[string]interface{} `json:"options"`
	TimeToGenerate float64                `json:"time_to_generate"` // seconds
}

// NewProjectInfo describes a run of opts
func NewProjectInfo(opts Options) ProjectInfo {
	info := ProjectInfo{GraphConfig: opts.GenType, Options: map[string]interface{}{}}
	for _, t := range opts.Targets {
		switch t.Language {
		case filegen.Swift:
			info.Options["swift_lines_of_code"] = t.LOC
		case filegen.ObjC:
			info.Options["objc_lines_of_code"] = t.LOC
		case filegen.Java:
			info.Options["java_lines_of_code"] = t.LOC
		}
	}
	if opts.Kind == KindIOS {
		info.GeneratorType = opts.Flavor
		info.Options["use_wmo"] = opts.UseWMO
	}
	return info
}

// Write stores the info as project_info.json under dir
func (p ProjectInfo) Write(dir string) error {
	return writeJSON(filepath.Join(dir, ProjectInfoFile), p)
}

// PrepareOutputDir removes a previous project at dir and recreates it
func PrepareOutputDir(dir string, l *zap.SugaredLogger) error {
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		l.Warnw("Deleting old mock app directory", "path", dir)
		if err := os.RemoveAll(dir); err != nil {
			return errors.Wrapf(err, "failed to delete %s", dir)
		}
	}
	if err := os.MkdirAll(dir, config.DefaultDirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create %s", dir)
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s", filepath.Base(path))
	}
	return writeFile(path, string(data)+"\n")
}

func writeFile(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", src)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrapf(err, "failed to copy %s", src)
	}
	return out.Close()
}
