package imports

import (
	"github.com/gleyba/uber-poet/filegen"
)

// InnerImports accumulates selected functions as file -> class -> functions.
// Adding a function twice is a no-op.
type InnerImports struct {
	files map[int]map[int]map[int]struct{}
	refs  []filegen.Ref
	Count int
}

// NewInnerImports creates an empty accumulator
func NewInnerImports() *InnerImports {
	return &InnerImports{files: make(map[int]map[int]map[int]struct{})}
}

// Add records ref and reports whether it was new
func (r *InnerImports) Add(ref filegen.Ref) bool {
	classes, ok := r.files[ref.FileIdx]
	if !ok {
		classes = make(map[int]map[int]struct{})
		r.files[ref.FileIdx] = classes
	}
	funcs, ok := classes[ref.ClassIdx]
	if !ok {
		funcs = make(map[int]struct{})
		classes[ref.ClassIdx] = funcs
	}
	if _, dup := funcs[ref.FuncIdx]; dup {
		return false
	}
	funcs[ref.FuncIdx] = struct{}{}
	r.refs = append(r.refs, ref)
	r.Count++
	return true
}

// Contains reports whether the function at the given indexes was selected
func (r *InnerImports) Contains(file, class, fn int) bool {
	_, ok := r.files[file][class][fn]
	return ok
}

// Refs returns the selected functions in selection order
func (r *InnerImports) Refs() []filegen.Ref {
	return r.refs
}

// ExternalImports accumulates selected functions per dependency module
type ExternalImports struct {
	modules map[string]*InnerImports
	refs    []filegen.Ref
	Count   int
}

// NewExternalImports creates an empty accumulator
func NewExternalImports() *ExternalImports {
	return &ExternalImports{modules: make(map[string]*InnerImports)}
}

// Add records ref under its module and reports whether it was new
func (r *ExternalImports) Add(ref filegen.Ref) bool {
	inner, ok := r.modules[ref.Module]
	if !ok {
		inner = NewInnerImports()
		r.modules[ref.Module] = inner
	}
	if !inner.Add(ref) {
		return false
	}
	r.refs = append(r.refs, ref)
	r.Count++
	return true
}

// Module returns the selection made inside one module, or nil
func (r *ExternalImports) Module(name string) *InnerImports {
	return r.modules[name]
}

// Refs returns the selected functions in selection order
func (r *ExternalImports) Refs() []filegen.Ref {
	return r.refs
}
