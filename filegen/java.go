package filegen

import (
	"fmt"
	"iter"

	"github.com/gleyba/uber-poet/errors"
)

// JavaEmitter renders Java modules. Each module is the package
// <JavaPackage>.<module>; calls use fully qualified names.
type JavaEmitter struct {
	opts Options
}

// NewJavaEmitter creates a Java emitter
func NewJavaEmitter(opts Options) *JavaEmitter {
	return &JavaEmitter{opts: opts}
}

func (e *JavaEmitter) Language() Language { return Java }

func (e *JavaEmitter) MainFileName() string { return "Main.java" }

func (e *JavaEmitter) Sample(sel ImportSelector) (*FileResult, error) {
	spec := NewFileSpec(0, e.opts.ClassesPerFile, e.opts.FunctionsPerClass, e.opts.IDs)
	return e.file("sample", spec, sel)
}

func (e *JavaEmitter) Generate(req GenerateRequest) iter.Seq2[*FileResult, error] {
	return generateEach(req, func(spec *FileSpec) ([]*FileResult, error) {
		f, err := e.file(req.Module.Name, spec, req.Selector)
		if err != nil {
			return nil, err
		}
		return []*FileResult{f}, nil
	})
}

// Package returns the Java package of a module
func (e *JavaEmitter) Package(module string) string {
	return e.opts.JavaPackage + "." + module
}

func (e *JavaEmitter) file(module string, spec *FileSpec, sel ImportSelector) (*FileResult, error) {
	classes, err := classCalls(spec, sel, e.call)
	if err != nil {
		return nil, err
	}
	name := fileName(spec.FileIdx, "")
	text, err := render("java_file.tmpl", map[string]interface{}{
		"Header":    Header,
		"Package":   e.Package(module),
		"ClassName": name,
		"Funcs":     spec.Funcs,
		"Classes":   classes,
	})
	if err != nil {
		return nil, err
	}
	return NewFileResult(name+".java", Java, text, spec), nil
}

func (e *JavaEmitter) call(ref Ref) (string, error) {
	if ref.Language != Java {
		return "", unsupportedCall(Java, ref)
	}
	return fmt.Sprintf("%s.File%d.MyClass%d.complexCrap%d(4, 2);",
		e.Package(ref.Module), ref.FileIdx, ref.ClassKey, ref.FuncKey), nil
}

func (e *JavaEmitter) GenMain(entry *ModuleResult) (string, error) {
	first := entry.FirstFile()
	if first == nil {
		return "", errors.NewConfigError("module %s has no files to call from the app", entry.Name)
	}
	classKey, funcKey, ok := first.FirstClassAndFunc()
	if !ok {
		return "", errors.NewConfigError("module %s has no classes to call from the app", entry.Name)
	}

	return render("java_main.tmpl", map[string]interface{}{
		"Header":  Header,
		"Package": e.opts.JavaPackage,
		"Import":  e.Package(entry.Name) + "." + first.Basename(),
		"Call":    fmt.Sprintf("%s.MyClass%d.complexCrap%d(4, 2)", first.Basename(), classKey, funcKey),
	})
}
