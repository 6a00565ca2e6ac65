package imports

import (
	"github.com/gleyba/uber-poet/filegen"
)

// Key is a position in a scope: the func-th function of the class-th class
// of the file-th file.
type Key struct {
	File  int
	Class int
	Func  int
}

// ClassKey identifies a calling class within its module
type ClassKey struct {
	File  int
	Class int
}

// cursor walks the virtual concatenation of every class function of a list
// of file specs. It starts on the first function.
type cursor struct {
	specs []*filegen.FileSpec
	key   Key
	total int
}

func newCursor(specs []*filegen.FileSpec) *cursor {
	total := 0
	for _, s := range specs {
		total += s.ImportsCount()
	}
	return &cursor{specs: specs, total: total}
}

// advance moves step functions forward, carrying across class and file
// boundaries. Stepping off the last function lands on the first function of
// the next scope. With wrap the cursor restarts at the first function of
// this scope and keeps going, and advance returns 0. Without wrap the cursor
// rewinds to the start and returns how many steps reached past the end,
// where 1 means exactly the first function of the next scope.
func (c *cursor) advance(step int, wrap bool) int {
	if c.total == 0 {
		return step
	}
	for step > 0 {
		room := c.funcCount() - 1 - c.key.Func
		if step <= room {
			c.key.Func += step
			return 0
		}
		step -= room + 1
		if c.nextClass() {
			continue
		}
		c.key = Key{}
		if !wrap {
			return step + 1
		}
	}
	// Landed on the start of a class that may be empty; settle on a function
	for c.funcCount() == 0 {
		if !c.nextClass() {
			c.key = Key{}
		}
	}
	return 0
}

// nextClass moves to the first function of the following class, skipping
// files without classes. It reports false at the end of the scope.
func (c *cursor) nextClass() bool {
	c.key.Func = 0
	c.key.Class++
	for c.key.Class >= len(c.specs[c.key.File].Classes) {
		c.key.File++
		c.key.Class = 0
		if c.key.File >= len(c.specs) {
			return false
		}
	}
	return true
}

func (c *cursor) funcCount() int {
	classes := c.specs[c.key.File].Classes
	if c.key.Class >= len(classes) {
		return 0
	}
	return len(classes[c.key.Class].FuncKeys)
}

// current resolves the cursor into a reference
func (c *cursor) current(module string, lang filegen.Language) filegen.Ref {
	spec := c.specs[c.key.File]
	class := spec.Classes[c.key.Class]
	return filegen.Ref{
		Module:   module,
		Language: lang,
		FileIdx:  spec.FileIdx,
		ClassIdx: c.key.Class,
		FuncIdx:  c.key.Func,
		ClassKey: class.Key,
		FuncKey:  class.FuncKeys[c.key.Func],
	}
}

// externalCursor walks every dependency module in turn. When one module is
// exhausted the remaining steps carry into the next, cycling back to the first.
type externalCursor struct {
	modules []*filegen.ModuleResult
	cursors []*cursor
	idx     int
	total   int
}

func newExternalCursor(deps []*filegen.ModuleResult) *externalCursor {
	ec := &externalCursor{}
	for _, d := range deps {
		c := newCursor(d.FileSpecs())
		if c.total == 0 {
			continue
		}
		ec.modules = append(ec.modules, d)
		ec.cursors = append(ec.cursors, c)
		ec.total += c.total
	}
	return ec
}

func (e *externalCursor) advance(step int) {
	for {
		over := e.cursors[e.idx].advance(step, false)
		if over == 0 {
			return
		}
		// Crossing into the next module lands on its first function
		e.idx = (e.idx + 1) % len(e.cursors)
		step = over - 1
	}
}

func (e *externalCursor) current() filegen.Ref {
	m := e.modules[e.idx]
	return e.cursors[e.idx].current(m.Name, m.Language)
}
