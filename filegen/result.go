package filegen

import (
	"path/filepath"
	"strings"
)

// FileResult is one emitted source file
type FileResult struct {
	Filename      string
	Language      Language
	Text          string
	TextLineCount int
	Spec          *FileSpec // nil for companion files such as ObjC headers
}

// NewFileResult creates a result and counts its lines
func NewFileResult(filename string, lang Language, text string, spec *FileSpec) *FileResult {
	return &FileResult{
		Filename:      filename,
		Language:      lang,
		Text:          text,
		TextLineCount: strings.Count(text, "\n"),
		Spec:          spec,
	}
}

// Basename is the filename without its extension
func (f *FileResult) Basename() string {
	return strings.TrimSuffix(f.Filename, filepath.Ext(f.Filename))
}

// Release drops the text once it has been written to storage
func (f *FileResult) Release() {
	f.Text = ""
}

// FirstClassAndFunc returns the keys of the first function of the first class
func (f *FileResult) FirstClassAndFunc() (classKey, funcKey int, ok bool) {
	if f.Spec == nil || len(f.Spec.Classes) == 0 || len(f.Spec.Classes[0].FuncKeys) == 0 {
		return 0, 0, false
	}
	c := f.Spec.Classes[0]
	return c.Key, c.FuncKeys[0], true
}

// ModuleResult is the published output of one generated module
type ModuleResult struct {
	Name     string
	Files    map[string]*FileResult
	Order    []string // filenames in generation order
	LOC      int      // assigned budget
	Language Language
}

// NewModuleResult creates an empty result
func NewModuleResult(name string, lang Language, loc int) *ModuleResult {
	return &ModuleResult{
		Name:     name,
		Files:    make(map[string]*FileResult),
		LOC:      loc,
		Language: lang,
	}
}

// Add records a generated file
func (m *ModuleResult) Add(f *FileResult) {
	if _, exists := m.Files[f.Filename]; !exists {
		m.Order = append(m.Order, f.Filename)
	}
	m.Files[f.Filename] = f
}

// FirstFile returns the first generated file that carries a spec
func (m *ModuleResult) FirstFile() *FileResult {
	for _, name := range m.Order {
		if f := m.Files[name]; f.Spec != nil {
			return f
		}
	}
	return nil
}

// FileSpecs returns the specs of the module's files in file index order
func (m *ModuleResult) FileSpecs() []*FileSpec {
	specs := make([]*FileSpec, 0, len(m.Order))
	for _, name := range m.Order {
		if f := m.Files[name]; f.Spec != nil {
			specs = append(specs, f.Spec)
		}
	}
	return specs
}

// FileCount is the number of files written for the module
func (m *ModuleResult) FileCount() int {
	return len(m.Files)
}

// LineCount sums the emitted lines of all files
func (m *ModuleResult) LineCount() int {
	total := 0
	for _, f := range m.Files {
		total += f.TextLineCount
	}
	return total
}
