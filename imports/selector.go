// Package imports decides which class functions each generated class calls.
//
// The real selector walks two deterministic cursors with a fixed stride: one
// over the module's own classes and one over its dependencies. Equal file
// specs and parameters always give equal selections, so generated corpora
// are reproducible. The dummy selector returns random references and only
// feeds sample files used for size measurement.
package imports

import (
	"github.com/gleyba/uber-poet/errors"
	"github.com/gleyba/uber-poet/filegen"
)

// Selector picks imports for one module
type Selector interface {
	GetInnerImports(caller ClassKey) (*InnerImports, error)
	GetExternalImports() (*ExternalImports, error)
}

// Scope identifies the module being generated
type Scope struct {
	Module   string
	Language filegen.Language
}

// Impl is the deterministic selector. Not safe for concurrent use; each
// module task owns its own.
type Impl struct {
	scope Scope

	inner      *cursor
	innerCount int
	innerStep  int

	external      *externalCursor
	externalCount int
	externalStep  int
}

// New builds a selector over the module's own file specs and its published
// dependencies. Requests are capped at half of the inner space and a third
// of the external space.
func New(scope Scope, specs []*filegen.FileSpec, deps []*filegen.ModuleResult, innerPerClass, externalPerClass int) *Impl {
	s := &Impl{
		scope:    scope,
		inner:    newCursor(specs),
		external: newExternalCursor(deps),
	}
	s.innerCount, s.innerStep = capAndStep(innerPerClass, s.inner.total, 2)
	s.externalCount, s.externalStep = capAndStep(externalPerClass, s.external.total, 3)
	return s
}

// capAndStep limits requested to total/divisor and spreads picks evenly
func capAndStep(requested, total, divisor int) (count, step int) {
	count = min(requested, total/divisor)
	if count <= 0 {
		return 0, 1
	}
	return count, max(1, total/count-1)
}

// CheckInnerSpace reports the configuration error GetInnerImports would
// return for a module of fileCount files, each holding classesPerFile classes
// of funcsPerClass functions. It lets callers reject a plan before any module
// is generated.
func CheckInnerSpace(module string, fileCount, classesPerFile, funcsPerClass, innerPerClass int) error {
	total := fileCount * classesPerFile * funcsPerClass
	count, _ := capAndStep(innerPerClass, total, 2)
	if count == 0 {
		return nil
	}
	return innerShortage(module, count, total-funcsPerClass)
}

func innerShortage(module string, requested, available int) error {
	if available >= requested {
		return nil
	}
	return errors.WithHint(
		errors.NewConfigError("%d inner imports requested in %s but only %d functions lie outside the calling class",
			requested, module, available),
		"lower imports.inner_per_class or raise classes_per_file")
}

// InnerCount is the effective number of inner imports per class
func (s *Impl) InnerCount() int { return s.innerCount }

// ExternalCount is the effective number of external imports per class
func (s *Impl) ExternalCount() int { return s.externalCount }

// GetInnerImports selects InnerCount functions of the module's other classes.
// The cursor persists between calls. If a full orbit of the stride adds
// nothing, the cursor is nudged by one so every function is eventually
// reachable.
func (s *Impl) GetInnerImports(caller ClassKey) (*InnerImports, error) {
	result := NewInnerImports()
	if s.innerCount == 0 {
		return result, nil
	}

	if err := innerShortage(s.scope.Module, s.innerCount, s.inner.total-s.classFuncs(caller)); err != nil {
		return nil, err
	}

	stalled := 0
	for result.Count < s.innerCount {
		if stalled >= s.inner.total {
			s.inner.advance(1, true)
			stalled = 0
		}
		s.inner.advance(s.innerStep, true)
		if s.inner.key.File == caller.File && s.inner.key.Class == caller.Class {
			stalled++
			continue
		}
		if result.Add(s.inner.current(s.scope.Module, s.scope.Language)) {
			stalled = 0
		} else {
			stalled++
		}
	}
	return result, nil
}

// GetExternalImports selects ExternalCount functions across dependencies
func (s *Impl) GetExternalImports() (*ExternalImports, error) {
	result := NewExternalImports()
	if s.externalCount == 0 {
		return result, nil
	}

	stalled := 0
	for result.Count < s.externalCount {
		if stalled >= s.external.total {
			s.external.advance(1)
			stalled = 0
		}
		s.external.advance(s.externalStep)
		if result.Add(s.external.current()) {
			stalled = 0
		} else {
			stalled++
		}
	}
	return result, nil
}

// classFuncs counts the functions of the caller's class, located by file index
func (s *Impl) classFuncs(caller ClassKey) int {
	for i, spec := range s.inner.specs {
		if i == caller.File && caller.Class < len(spec.Classes) {
			return len(spec.Classes[caller.Class].FuncKeys)
		}
	}
	return 0
}

// ForEmitter adapts a Selector to the interface emitters consume
func ForEmitter(s Selector) filegen.ImportSelector {
	return emitterSelector{s}
}

type emitterSelector struct {
	Selector
}

func (e emitterSelector) Inner(fileIdx, classIdx int) ([]filegen.Ref, error) {
	r, err := e.GetInnerImports(ClassKey{File: fileIdx, Class: classIdx})
	if err != nil {
		return nil, err
	}
	return r.Refs(), nil
}

func (e emitterSelector) External() ([]filegen.Ref, error) {
	r, err := e.GetExternalImports()
	if err != nil {
		return nil, err
	}
	return r.Refs(), nil
}
