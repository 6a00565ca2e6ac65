package filegen

import (
	"bytes"
	"embed"
	"fmt"
	"iter"
	"text/template"

	"github.com/gleyba/uber-poet/errors"
	"github.com/gleyba/uber-poet/moduletree"
)

// Header starts every generated file
const Header = `// This code was @generated by Uber Poet, a mock application generator.
// Check it out at https://github.com/gleyba/uber-poet
`

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Options shapes every file an emitter produces
type Options struct {
	ClassesPerFile    int
	FunctionsPerClass int
	JavaPackage       string
	IDs               *IDGenerator
}

// GenerateRequest is everything an emitter needs to produce one module
type GenerateRequest struct {
	Module   *moduletree.ModuleNode
	Specs    []*FileSpec     // one per file, drawn before generation
	Deps     []*ModuleResult // published results of Module.Deps, in order
	Selector ImportSelector
}

// Emitter renders source files for one language
type Emitter interface {
	Language() Language
	// Sample renders one representative file, used to measure file size
	Sample(sel ImportSelector) (*FileResult, error)
	// Generate lazily renders the module's files. The sequence is one-shot
	// and stops at the first error.
	Generate(req GenerateRequest) iter.Seq2[*FileResult, error]
	// GenMain renders the app entry point calling into entry
	GenMain(entry *ModuleResult) (string, error)
	// MainFileName is the file GenMain's output is stored in
	MainFileName() string
}

// Registry selects the emitter for a module's language
type Registry map[Language]Emitter

// NewRegistry indexes emitters by their language
func NewRegistry(emitters ...Emitter) Registry {
	r := make(Registry, len(emitters))
	for _, e := range emitters {
		r[e.Language()] = e
	}
	return r
}

// Get returns the emitter for lang
func (r Registry) Get(lang Language) (Emitter, error) {
	e, ok := r[lang]
	if !ok {
		return nil, errors.NewConfigError("no emitter registered for %s", lang)
	}
	return e, nil
}

// classData is the template view of one class
type classData struct {
	Key      int
	FuncKeys []int
	Calls    []string
}

func render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.Wrapf(err, "failed to render %s", name)
	}
	return buf.String(), nil
}

// classCalls selects imports for every class of spec and renders them with call
func classCalls(spec *FileSpec, sel ImportSelector, call func(Ref) (string, error)) ([]classData, error) {
	classes := make([]classData, len(spec.Classes))
	for i, c := range spec.Classes {
		inner, err := sel.Inner(spec.FileIdx, i)
		if err != nil {
			return nil, err
		}
		external, err := sel.External()
		if err != nil {
			return nil, err
		}

		calls := make([]string, 0, len(inner)+len(external))
		for _, ref := range append(inner, external...) {
			text, err := call(ref)
			if err != nil {
				return nil, err
			}
			calls = append(calls, text)
		}
		classes[i] = classData{Key: c.Key, FuncKeys: c.FuncKeys, Calls: calls}
	}
	return classes, nil
}

func fileName(idx int, ext string) string {
	return fmt.Sprintf("File%d%s", idx, ext)
}

func depNames(deps []*ModuleResult) []string {
	names := make([]string, len(deps))
	for i, d := range deps {
		names[i] = d.Name
	}
	return names
}

// generateEach adapts a per-spec render function into a lazy sequence.
// Uncategorized failures are marked as emitter errors; the caller names the
// module.
func generateEach(req GenerateRequest, renderSpec func(*FileSpec) ([]*FileResult, error)) iter.Seq2[*FileResult, error] {
	return func(yield func(*FileResult, error) bool) {
		for _, spec := range req.Specs {
			files, err := renderSpec(spec)
			if err != nil {
				if errors.Category(err) == nil {
					err = errors.Mark(err, errors.ErrEmitter)
				}
				yield(nil, err)
				return
			}
			for _, f := range files {
				if !yield(f, nil) {
					return
				}
			}
		}
	}
}

func unsupportedCall(from Language, ref Ref) error {
	return errors.Mark(
		errors.Newf("%s code cannot call %s module %s", from, ref.Language, ref.Module),
		errors.ErrEmitter)
}
