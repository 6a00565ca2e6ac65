package filegen

import (
	"fmt"
	"iter"

	"github.com/gleyba/uber-poet/errors"
)

// SwiftEmitter renders Swift modules. Classes are @objc so Objective-C
// modules can call them.
type SwiftEmitter struct {
	opts Options
}

// NewSwiftEmitter creates a Swift emitter
func NewSwiftEmitter(opts Options) *SwiftEmitter {
	return &SwiftEmitter{opts: opts}
}

func (e *SwiftEmitter) Language() Language { return Swift }

func (e *SwiftEmitter) MainFileName() string { return "AppDelegate.swift" }

func (e *SwiftEmitter) Sample(sel ImportSelector) (*FileResult, error) {
	spec := NewFileSpec(0, e.opts.ClassesPerFile, e.opts.FunctionsPerClass, e.opts.IDs)
	return e.file(spec, nil, sel)
}

func (e *SwiftEmitter) Generate(req GenerateRequest) iter.Seq2[*FileResult, error] {
	imports := depNames(req.Deps)
	return generateEach(req, func(spec *FileSpec) ([]*FileResult, error) {
		f, err := e.file(spec, imports, req.Selector)
		if err != nil {
			return nil, err
		}
		return []*FileResult{f}, nil
	})
}

func (e *SwiftEmitter) file(spec *FileSpec, imports []string, sel ImportSelector) (*FileResult, error) {
	classes, err := classCalls(spec, sel, swiftCall)
	if err != nil {
		return nil, err
	}
	text, err := render("swift_file.tmpl", map[string]interface{}{
		"Header":  Header,
		"Imports": imports,
		"Funcs":   spec.Funcs,
		"Classes": classes,
	})
	if err != nil {
		return nil, err
	}
	return NewFileResult(fileName(spec.FileIdx, ".swift"), Swift, text, spec), nil
}

func (e *SwiftEmitter) GenMain(entry *ModuleResult) (string, error) {
	first := entry.FirstFile()
	if first == nil {
		return "", errors.NewConfigError("module %s has no files to call from the app", entry.Name)
	}
	classKey, funcKey, ok := first.FirstClassAndFunc()
	if !ok {
		return "", errors.NewConfigError("module %s has no classes to call from the app", entry.Name)
	}

	call, err := swiftCall(Ref{Module: entry.Name, Language: entry.Language, ClassKey: classKey, FuncKey: funcKey})
	if err != nil {
		return "", err
	}
	return render("swift_main.tmpl", map[string]interface{}{
		"Header": Header,
		"Module": entry.Name,
		"Call":   call,
	})
}

func swiftCall(ref Ref) (string, error) {
	switch ref.Language {
	case Swift:
		return fmt.Sprintf("MyClass%d().complexCrap%d(arg: 4, stuff: 2)", ref.ClassKey, ref.FuncKey), nil
	case ObjC:
		return fmt.Sprintf(`MyClass_%d().complexCrap%d(4, stuff: "2")`, ref.ClassKey, ref.FuncKey), nil
	default:
		return "", unsupportedCall(Swift, ref)
	}
}
