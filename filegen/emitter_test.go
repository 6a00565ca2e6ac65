package filegen

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gleyba/uber-poet/errors"
	"github.com/gleyba/uber-poet/moduletree"
)

// fixedSelector returns the same references for every class
type fixedSelector struct {
	inner    []Ref
	external []Ref
	err      error
	callers  [][2]int
}

func (s *fixedSelector) Inner(fileIdx, classIdx int) ([]Ref, error) {
	s.callers = append(s.callers, [2]int{fileIdx, classIdx})
	return s.inner, s.err
}

func (s *fixedSelector) External() ([]Ref, error) {
	return s.external, s.err
}

func testOptions() Options {
	return Options{ClassesPerFile: 2, FunctionsPerClass: 2, JavaPackage: "com.example", IDs: NewIDGenerator(11)}
}

func collect(t *testing.T, e Emitter, req GenerateRequest) []*FileResult {
	t.Helper()
	var files []*FileResult
	for f, err := range e.Generate(req) {
		require.NoError(t, err)
		files = append(files, f)
	}
	return files
}

func TestSwiftEmitter(t *testing.T) {
	opts := testOptions()
	e := NewSwiftEmitter(opts)
	dep := NewModuleResult("MockLib0", ObjC, 100)

	sel := &fixedSelector{
		inner:    []Ref{{Module: "MockLib1", Language: Swift, ClassKey: 11, FuncKey: 12}},
		external: []Ref{{Module: "MockLib0", Language: ObjC, ClassKey: 21, FuncKey: 22}},
	}
	specs := NewFileSpecs(2, opts.ClassesPerFile, opts.FunctionsPerClass, opts.IDs)
	files := collect(t, e, GenerateRequest{
		Module:   moduletree.NewLibrary("MockLib1", 1),
		Specs:    specs,
		Deps:     []*ModuleResult{dep},
		Selector: sel,
	})

	require.Len(t, files, 2)
	f := files[0]
	assert.Equal(t, "File0.swift", f.Filename)
	assert.Equal(t, Swift, f.Language)
	assert.Same(t, specs[0], f.Spec)
	assert.Equal(t, strings.Count(f.Text, "\n"), f.TextLineCount)

	assert.True(t, strings.HasPrefix(f.Text, Header))
	assert.Contains(t, f.Text, "import MockLib0\n")
	assert.Contains(t, f.Text, "_ = MyClass11().complexCrap12(arg: 4, stuff: 2)")
	assert.Contains(t, f.Text, `_ = MyClass_21().complexCrap22(4, stuff: "2")`)
	for _, c := range specs[0].Classes {
		assert.Contains(t, f.Text, "public class MyClass"+itoa(c.Key)+": NSObject")
		for _, fn := range c.FuncKeys {
			assert.Contains(t, f.Text, "public func complexStuff"+itoa(fn)+"(arg: String)")
		}
	}
	for _, fn := range specs[0].Funcs {
		assert.Contains(t, f.Text, "public func complexCrap"+itoa(fn)+"<T>")
	}

	// Every class asked for its own imports
	assert.Equal(t, [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}, sel.callers)
}

func TestGenerateIsLazy(t *testing.T) {
	opts := testOptions()
	e := NewSwiftEmitter(opts)
	sel := &fixedSelector{}

	req := GenerateRequest{
		Module:   moduletree.NewLibrary("MockLib0", 1),
		Specs:    NewFileSpecs(5, 1, 1, opts.IDs),
		Selector: sel,
	}
	for range e.Generate(req) {
		break
	}
	assert.Len(t, sel.callers, 1)
}

func TestGeneratePassesSelectorErrors(t *testing.T) {
	opts := testOptions()
	e := NewSwiftEmitter(opts)
	sel := &fixedSelector{err: errors.NewConfigError("space too small")}

	var gotErr error
	count := 0
	for f, err := range e.Generate(GenerateRequest{
		Module:   moduletree.NewLibrary("MockLib4", 1),
		Specs:    NewFileSpecs(3, 1, 1, opts.IDs),
		Selector: sel,
	}) {
		count++
		assert.Nil(t, f)
		gotErr = err
	}

	assert.Equal(t, 1, count)
	require.Error(t, gotErr)
	assert.True(t, errors.IsConfigError(gotErr))
	assert.False(t, errors.IsEmitterError(gotErr), "categorized errors keep their category")
	assert.NotContains(t, gotErr.Error(), "MockLib4", "the scheduler names the module")
}

func TestGenerateMarksUncategorizedErrors(t *testing.T) {
	opts := testOptions()
	e := NewJavaEmitter(opts)
	sel := &fixedSelector{err: errors.New("selector exploded")}

	var gotErr error
	for _, err := range e.Generate(GenerateRequest{
		Module:   moduletree.NewLibrary("MockLib5", 1),
		Specs:    NewFileSpecs(2, 1, 1, opts.IDs),
		Selector: sel,
	}) {
		gotErr = err
	}

	require.Error(t, gotErr)
	assert.True(t, errors.IsEmitterError(gotErr))
	assert.Equal(t, "selector exploded", gotErr.Error())
}

func TestSwiftGenMain(t *testing.T) {
	opts := testOptions()
	e := NewSwiftEmitter(opts)

	entry := NewModuleResult("MockLib0", Swift, 100)
	spec := NewFileSpec(0, 1, 1, opts.IDs)
	entry.Add(NewFileResult("File0.swift", Swift, "", spec))

	text, err := e.GenMain(entry)
	require.NoError(t, err)
	assert.Contains(t, text, "import MockLib0")
	assert.Contains(t, text, "print(\"\\(MyClass"+itoa(spec.Classes[0].Key)+"().complexCrap"+itoa(spec.Classes[0].FuncKeys[0]))
	assert.Equal(t, "AppDelegate.swift", e.MainFileName())

	_, err = e.GenMain(NewModuleResult("Empty", Swift, 0))
	assert.True(t, errors.IsConfigError(err))
}

func TestObjCEmitter(t *testing.T) {
	opts := testOptions()
	e := NewObjCEmitter(opts)
	sel := &fixedSelector{
		inner:    []Ref{{Module: "MockLib2", Language: ObjC, ClassKey: 31, FuncKey: 32}},
		external: []Ref{{Module: "MockLib0", Language: Swift, ClassKey: 41, FuncKey: 42}},
	}

	specs := NewFileSpecs(1, opts.ClassesPerFile, opts.FunctionsPerClass, opts.IDs)
	files := collect(t, e, GenerateRequest{
		Module:   moduletree.NewLibrary("MockLib2", 1),
		Specs:    specs,
		Deps:     []*ModuleResult{NewModuleResult("MockLib0", Swift, 1)},
		Selector: sel,
	})

	require.Len(t, files, 2)
	source, header := files[0], files[1]
	assert.Equal(t, "File0.m", source.Filename)
	assert.Equal(t, "File0.h", header.Filename)
	assert.Same(t, specs[0], source.Spec)
	assert.Nil(t, header.Spec)

	assert.Contains(t, source.Text, `#import "File0.h"`)
	assert.Contains(t, source.Text, "@import MockLib0;")
	assert.Contains(t, source.Text, `[[[MyClass_31 alloc] init] complexCrap32:4 stuff:@"2"];`)
	assert.Contains(t, source.Text, `[[[MyClass41 alloc] init] complexStuff42WithArg:@"4"];`)
	for _, c := range specs[0].Classes {
		assert.Contains(t, header.Text, "@interface MyClass_"+itoa(c.Key)+" : NSObject")
		assert.Contains(t, source.Text, "@implementation MyClass_"+itoa(c.Key))
	}

	_, err := e.GenMain(NewModuleResult("MockLib2", ObjC, 1))
	assert.Error(t, err)
}

func TestObjCCannotCallJava(t *testing.T) {
	opts := testOptions()
	e := NewObjCEmitter(opts)
	sel := &fixedSelector{external: []Ref{{Module: "Lib", Language: Java}}}

	_, err := e.Sample(sel)
	require.Error(t, err)
	assert.True(t, errors.IsEmitterError(err))
}

func TestJavaEmitter(t *testing.T) {
	opts := testOptions()
	e := NewJavaEmitter(opts)
	sel := &fixedSelector{
		external: []Ref{{Module: "MockLib0", Language: Java, FileIdx: 3, ClassKey: 51, FuncKey: 52}},
	}

	specs := NewFileSpecs(2, opts.ClassesPerFile, opts.FunctionsPerClass, opts.IDs)
	files := collect(t, e, GenerateRequest{
		Module:   moduletree.NewLibrary("MockLib1", 1),
		Specs:    specs,
		Selector: sel,
	})

	require.Len(t, files, 2)
	f := files[1]
	assert.Equal(t, "File1.java", f.Filename)
	assert.Contains(t, f.Text, "package com.example.MockLib1;")
	assert.Contains(t, f.Text, "public class File1 {")
	assert.Contains(t, f.Text, "com.example.MockLib0.File3.MyClass51.complexCrap52(4, 2);")

	entry := NewModuleResult("MockLib1", Java, 1)
	for _, file := range files {
		entry.Add(file)
	}
	main, err := e.GenMain(entry)
	require.NoError(t, err)
	assert.Contains(t, main, "package com.example;")
	assert.Contains(t, main, "import com.example.MockLib1.File0;")
	assert.Contains(t, main, "System.out.println(File0.MyClass"+itoa(specs[0].Classes[0].Key))

	_, err = e.Sample(&fixedSelector{inner: []Ref{{Language: Swift}}})
	assert.True(t, errors.IsEmitterError(err))
}

func TestSampleUsesConfiguredShape(t *testing.T) {
	opts := testOptions()
	for _, e := range []Emitter{NewSwiftEmitter(opts), NewObjCEmitter(opts), NewJavaEmitter(opts)} {
		f, err := e.Sample(&fixedSelector{})
		require.NoError(t, err, e.Language().String())
		require.NotNil(t, f.Spec)
		assert.Len(t, f.Spec.Classes, opts.ClassesPerFile)
		assert.Equal(t, e.Language(), f.Language)
		assert.Positive(t, f.TextLineCount)
	}
}

func TestRegistry(t *testing.T) {
	opts := testOptions()
	r := NewRegistry(NewSwiftEmitter(opts), NewObjCEmitter(opts))

	e, err := r.Get(ObjC)
	require.NoError(t, err)
	assert.Equal(t, ObjC, e.Language())

	_, err = r.Get(Java)
	assert.True(t, errors.IsConfigError(err))
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
