package filegen

import (
	"fmt"
	"iter"

	"github.com/gleyba/uber-poet/errors"
)

// ObjCEmitter renders Objective-C modules as .m/.h pairs. Only the .m
// result carries the file spec.
type ObjCEmitter struct {
	opts Options
}

// NewObjCEmitter creates an Objective-C emitter
func NewObjCEmitter(opts Options) *ObjCEmitter {
	return &ObjCEmitter{opts: opts}
}

func (e *ObjCEmitter) Language() Language { return ObjC }

func (e *ObjCEmitter) MainFileName() string { return "main.m" }

func (e *ObjCEmitter) Sample(sel ImportSelector) (*FileResult, error) {
	spec := NewFileSpec(0, e.opts.ClassesPerFile, e.opts.FunctionsPerClass, e.opts.IDs)
	files, err := e.files(spec, nil, sel)
	if err != nil {
		return nil, err
	}
	return files[0], nil
}

func (e *ObjCEmitter) Generate(req GenerateRequest) iter.Seq2[*FileResult, error] {
	imports := depNames(req.Deps)
	return generateEach(req, func(spec *FileSpec) ([]*FileResult, error) {
		return e.files(spec, imports, req.Selector)
	})
}

func (e *ObjCEmitter) files(spec *FileSpec, imports []string, sel ImportSelector) ([]*FileResult, error) {
	classes, err := classCalls(spec, sel, objcCall)
	if err != nil {
		return nil, err
	}

	headerName := fileName(spec.FileIdx, ".h")
	source, err := render("objc_source.tmpl", map[string]interface{}{
		"Header":     Header,
		"HeaderName": headerName,
		"Imports":    imports,
		"Classes":    classes,
	})
	if err != nil {
		return nil, err
	}
	header, err := render("objc_header.tmpl", map[string]interface{}{
		"Header":  Header,
		"Classes": classes,
	})
	if err != nil {
		return nil, err
	}

	return []*FileResult{
		NewFileResult(fileName(spec.FileIdx, ".m"), ObjC, source, spec),
		NewFileResult(headerName, ObjC, header, nil),
	}, nil
}

// GenMain is not supported: iOS apps always start from Swift
func (e *ObjCEmitter) GenMain(entry *ModuleResult) (string, error) {
	return "", errors.NewConfigError("Objective-C app entry points are not supported (module %s)", entry.Name)
}

func objcCall(ref Ref) (string, error) {
	switch ref.Language {
	case Swift:
		return fmt.Sprintf(`[[[MyClass%d alloc] init] complexStuff%dWithArg:@"4"];`, ref.ClassKey, ref.FuncKey), nil
	case ObjC:
		return fmt.Sprintf(`[[[MyClass_%d alloc] init] complexCrap%d:4 stuff:@"2"];`, ref.ClassKey, ref.FuncKey), nil
	default:
		return "", unsupportedCall(ObjC, ref)
	}
}
