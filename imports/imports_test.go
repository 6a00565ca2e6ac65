package imports

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gleyba/uber-poet/errors"
	"github.com/gleyba/uber-poet/filegen"
	uptest "github.com/gleyba/uber-poet/internal/testing"
)

func specs(ids *filegen.IDGenerator, files, classes, funcs int) []*filegen.FileSpec {
	return filegen.NewFileSpecs(files, classes, funcs, ids)
}

func module(ids *filegen.IDGenerator, name string, files, classes, funcs int) *filegen.ModuleResult {
	return uptest.ModuleResult(ids, name, filegen.Swift, files, classes, funcs)
}

// linear maps a cursor key to its index in a uniform scope
func linear(k Key, classes, funcs int) int {
	return k.File*classes*funcs + k.Class*funcs + k.Func
}

func TestCursorAdvanceWrap(t *testing.T) {
	c := newCursor(specs(filegen.NewIDGenerator(1), 2, 2, 3))
	require.Equal(t, 12, c.total)

	assert.Equal(t, 0, c.advance(4, true))
	assert.Equal(t, Key{0, 1, 1}, c.key)

	assert.Equal(t, 0, c.advance(7, true))
	assert.Equal(t, Key{1, 1, 2}, c.key)

	assert.Equal(t, 0, c.advance(1, true))
	assert.Equal(t, Key{0, 0, 0}, c.key)

	assert.Equal(t, 0, c.advance(13, true))
	assert.Equal(t, Key{0, 0, 1}, c.key)

	// Many orbits land where modular arithmetic says
	assert.Equal(t, 0, c.advance(12*5+3, true))
	assert.Equal(t, 4, linear(c.key, 2, 3))
}

func TestCursorAdvanceStopsAtEnd(t *testing.T) {
	c := newCursor(specs(filegen.NewIDGenerator(1), 2, 2, 3))

	assert.Equal(t, 0, c.advance(9, false))
	assert.Equal(t, 9, linear(c.key, 2, 3))

	// 9 + 5 = 14: two functions remain, then 3 steps spill into the next scope
	assert.Equal(t, 3, c.advance(5, false))
	assert.Equal(t, Key{}, c.key)

	assert.Equal(t, 0, c.advance(11, false))
	assert.Equal(t, 1, c.advance(1, false))
}

func TestCursorCurrent(t *testing.T) {
	s := specs(filegen.NewIDGenerator(1), 2, 2, 3)
	c := newCursor(s)
	c.advance(10, true)

	ref := c.current("MockLib0", filegen.ObjC)
	assert.Equal(t, "MockLib0", ref.Module)
	assert.Equal(t, filegen.ObjC, ref.Language)
	assert.Equal(t, 1, ref.FileIdx)
	assert.Equal(t, 1, ref.ClassIdx)
	assert.Equal(t, 1, ref.FuncIdx)
	assert.Equal(t, s[1].Classes[1].Key, ref.ClassKey)
	assert.Equal(t, s[1].Classes[1].FuncKeys[1], ref.FuncKey)
}

func TestExternalCursorCarriesAcrossModules(t *testing.T) {
	ids := filegen.NewIDGenerator(1)
	ec := newExternalCursor([]*filegen.ModuleResult{
		module(ids, "A", 1, 1, 3),
		filegen.NewModuleResult("Empty", filegen.Swift, 0),
		module(ids, "B", 1, 1, 3),
	})
	require.Equal(t, 6, ec.total)
	require.Len(t, ec.modules, 2)

	ec.advance(4)
	ref := ec.current()
	assert.Equal(t, "B", ref.Module)
	assert.Equal(t, 1, ref.FuncIdx)

	// 4 + 3 = 7 wraps around to A's second function
	ec.advance(3)
	ref = ec.current()
	assert.Equal(t, "A", ref.Module)
	assert.Equal(t, 1, ref.FuncIdx)

	// Exactly the first function of the next module
	ec.advance(2)
	ref = ec.current()
	assert.Equal(t, "B", ref.Module)
	assert.Equal(t, 0, ref.FuncIdx)
}

func TestInnerImports(t *testing.T) {
	// 8 files x 3 classes x 3 functions, 4 imports per class
	s := New(Scope{Module: "MockLib1", Language: filegen.Swift},
		specs(filegen.NewIDGenerator(5), 8, 3, 3), nil, 4, 16)
	require.Equal(t, 4, s.InnerCount())

	for file := 0; file < 8; file++ {
		for class := 0; class < 3; class++ {
			result, err := s.GetInnerImports(ClassKey{File: file, Class: class})
			require.NoError(t, err)
			assert.Equal(t, 4, result.Count)
			assert.Len(t, result.Refs(), 4)
			for _, ref := range result.Refs() {
				assert.False(t, ref.FileIdx == file && ref.ClassIdx == class,
					"class (%d, %d) imports itself", file, class)
				assert.Equal(t, "MockLib1", ref.Module)
			}
		}
	}
}

func TestExternalImports(t *testing.T) {
	// 10 modules x 10 files x 3 x 3, 16 imports per class
	ids := filegen.NewIDGenerator(6)
	var deps []*filegen.ModuleResult
	for i := 0; i < 10; i++ {
		deps = append(deps, module(ids, fmt.Sprintf("MockLib%d", i), 10, 3, 3))
	}

	s := New(Scope{Module: "MockLib10", Language: filegen.Swift}, specs(ids, 2, 3, 3), deps, 4, 16)
	require.Equal(t, 16, s.ExternalCount())

	for i := 0; i < 20; i++ {
		result, err := s.GetExternalImports()
		require.NoError(t, err)
		assert.Equal(t, 16, result.Count)

		seen := map[string]bool{}
		for _, ref := range result.Refs() {
			key := ref.String()
			assert.False(t, seen[key], "duplicate import %s", key)
			seen[key] = true
			assert.NotEqual(t, "MockLib10", ref.Module)
		}
	}
}

func TestSelectionIsDeterministic(t *testing.T) {
	ids := filegen.NewIDGenerator(8)
	inner := specs(ids, 6, 3, 3)
	deps := []*filegen.ModuleResult{module(ids, "A", 4, 3, 3), module(ids, "B", 5, 2, 4)}

	run := func() []filegen.Ref {
		s := New(Scope{Module: "M", Language: filegen.Swift}, inner, deps, 4, 7)
		var out []filegen.Ref
		for file := 0; file < 6; file++ {
			for class := 0; class < 3; class++ {
				in, err := s.GetInnerImports(ClassKey{File: file, Class: class})
				require.NoError(t, err)
				ext, err := s.GetExternalImports()
				require.NoError(t, err)
				out = append(out, in.Refs()...)
				out = append(out, ext.Refs()...)
			}
		}
		return out
	}

	first := run()
	assert.Len(t, first, 18*(4+7))
	assert.Equal(t, first, run())
}

func TestRequestsAreCapped(t *testing.T) {
	ids := filegen.NewIDGenerator(9)
	// Inner space of 4 caps at 2, external space of 9 caps at 3
	s := New(Scope{Module: "M"}, specs(ids, 1, 2, 2), []*filegen.ModuleResult{module(ids, "D", 1, 3, 3)}, 10, 10)
	assert.Equal(t, 2, s.InnerCount())
	assert.Equal(t, 3, s.ExternalCount())

	result, err := s.GetInnerImports(ClassKey{File: 0, Class: 0})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	assert.True(t, result.Contains(0, 1, 0))
	assert.True(t, result.Contains(0, 1, 1))

	ext, err := s.GetExternalImports()
	require.NoError(t, err)
	assert.Equal(t, 3, ext.Count)
	assert.Equal(t, 3, ext.Module("D").Count)
}

func TestInnerImportsFailFast(t *testing.T) {
	// One class: nothing outside the caller's own class
	s := New(Scope{Module: "Tiny"}, specs(filegen.NewIDGenerator(2), 1, 1, 4), nil, 2, 0)
	require.Equal(t, 2, s.InnerCount())

	_, err := s.GetInnerImports(ClassKey{File: 0, Class: 0})
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
	assert.Contains(t, err.Error(), "Tiny")
}

func TestCheckInnerSpace(t *testing.T) {
	tests := []struct {
		name                  string
		files, classes, funcs int
		innerPerClass         int
		wantErr               bool
	}{
		{"one file of one class", 1, 1, 3, 4, true},
		{"two files of one class", 2, 1, 3, 4, false},
		{"one file of three classes", 1, 3, 3, 4, false},
		{"no inner imports requested", 1, 1, 3, 0, false},
		{"space too small to cap above zero", 1, 1, 1, 4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckInnerSpace("MockLib0", tt.files, tt.classes, tt.funcs, tt.innerPerClass)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsConfigError(err))
			assert.Contains(t, err.Error(), "MockLib0")
		})
	}
}

func TestCheckInnerSpaceMatchesSelector(t *testing.T) {
	// Whatever CheckInnerSpace accepts, the selector can serve for every class
	for files := 1; files <= 3; files++ {
		for classes := 1; classes <= 3; classes++ {
			ids := filegen.NewIDGenerator(int64(files*10 + classes))
			s := New(Scope{Module: "M"}, specs(ids, files, classes, 3), nil, 4, 0)
			if CheckInnerSpace("M", files, classes, 3, 4) != nil {
				continue
			}
			for f := 0; f < files; f++ {
				for c := 0; c < classes; c++ {
					_, err := s.GetInnerImports(ClassKey{File: f, Class: c})
					require.NoError(t, err, "files=%d classes=%d caller=(%d, %d)", files, classes, f, c)
				}
			}
		}
	}
}

func TestInnerImportsEscapeShortOrbit(t *testing.T) {
	// 12 functions with stride 3 visit only positions 3, 6, 9, 0: two of
	// them belong to class 0. The third import needs the cursor nudged.
	s := New(Scope{Module: "M"}, specs(filegen.NewIDGenerator(3), 1, 2, 6), nil, 3, 0)
	require.Equal(t, 3, s.InnerCount())
	require.Equal(t, 3, s.innerStep)

	result, err := s.GetInnerImports(ClassKey{File: 0, Class: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Count)
	for _, ref := range result.Refs() {
		assert.Equal(t, 0, ref.ClassIdx)
	}
}

func TestNoImportsRequested(t *testing.T) {
	s := New(Scope{Module: "M"}, specs(filegen.NewIDGenerator(4), 2, 2, 2), nil, 0, 16)

	in, err := s.GetInnerImports(ClassKey{})
	require.NoError(t, err)
	assert.Zero(t, in.Count)

	// No dependencies means no external space
	ext, err := s.GetExternalImports()
	require.NoError(t, err)
	assert.Zero(t, ext.Count)
}

func TestAddIsIdempotent(t *testing.T) {
	in := NewInnerImports()
	ref := filegen.Ref{Module: "A", FileIdx: 1, ClassIdx: 2, FuncIdx: 3}
	assert.True(t, in.Add(ref))
	assert.False(t, in.Add(ref))
	assert.Equal(t, 1, in.Count)
	assert.True(t, in.Contains(1, 2, 3))
	assert.False(t, in.Contains(1, 2, 4))

	ext := NewExternalImports()
	assert.True(t, ext.Add(ref))
	assert.False(t, ext.Add(ref))
	other := ref
	other.Module = "B"
	assert.True(t, ext.Add(other))
	assert.Equal(t, 2, ext.Count)
	assert.Nil(t, ext.Module("C"))
}

func TestDummy(t *testing.T) {
	d := NewDummy(Scope{Module: "Sample", Language: filegen.Java}, 4, 16, 1)

	for class := 0; class < 3; class++ {
		in, err := d.GetInnerImports(ClassKey{File: 0, Class: class})
		require.NoError(t, err)
		assert.Equal(t, 4, in.Count)
		for _, ref := range in.Refs() {
			assert.False(t, ref.FileIdx == 0 && ref.ClassIdx == class)
			assert.Less(t, ref.FileIdx, dummyFiles)
			assert.Equal(t, filegen.Java, ref.Language)
		}
	}

	ext, err := d.GetExternalImports()
	require.NoError(t, err)
	assert.Equal(t, 16, ext.Count)
	for _, ref := range ext.Refs() {
		assert.Regexp(t, `^test\d+$`, ref.Module)
	}
}

func TestForEmitter(t *testing.T) {
	ids := filegen.NewIDGenerator(12)
	s := New(Scope{Module: "M", Language: filegen.Swift}, specs(ids, 3, 3, 3), []*filegen.ModuleResult{module(ids, "D", 3, 3, 3)}, 4, 5)
	sel := ForEmitter(s)

	inner, err := sel.Inner(1, 2)
	require.NoError(t, err)
	assert.Len(t, inner, 4)

	external, err := sel.External()
	require.NoError(t, err)
	assert.Len(t, external, 5)

	failing := ForEmitter(New(Scope{Module: "T"}, specs(ids, 1, 1, 4), nil, 2, 0))
	_, err = failing.Inner(0, 0)
	assert.True(t, errors.IsConfigError(err))
}
