// Package testing holds fixtures shared by package tests.
package testing

import (
	"fmt"

	"github.com/gleyba/uber-poet/filegen"
)

// ModuleResult builds a published module of files×classes×funcs identifiers
// with empty file texts, as an already generated dependency would look.
func ModuleResult(ids *filegen.IDGenerator, name string, lang filegen.Language, files, classes, funcs int) *filegen.ModuleResult {
	m := filegen.NewModuleResult(name, lang, 100)
	for _, s := range filegen.NewFileSpecs(files, classes, funcs, ids) {
		m.Add(filegen.NewFileResult(fmt.Sprintf("File%d%s", s.FileIdx, lang.Extension()), lang, "", s))
	}
	return m
}
