package filegen

import "fmt"

// ClassSpec names one generated class and its functions
type ClassSpec struct {
	Key      int
	FuncKeys []int
}

// FileSpec is the identifier space of one generated file: free functions
// plus classes. It is what import selection walks over.
type FileSpec struct {
	FileIdx int
	Funcs   []int
	Classes []ClassSpec
}

// NewFileSpec draws identifiers for a file with classCount classes of
// funcCount functions, plus funcCount free functions
func NewFileSpec(fileIdx, classCount, funcCount int, ids *IDGenerator) *FileSpec {
	spec := &FileSpec{
		FileIdx: fileIdx,
		Funcs:   make([]int, funcCount),
		Classes: make([]ClassSpec, classCount),
	}
	for i := range spec.Funcs {
		spec.Funcs[i] = ids.Next()
	}
	for c := range spec.Classes {
		keys := make([]int, funcCount)
		for f := range keys {
			keys[f] = ids.Next()
		}
		spec.Classes[c] = ClassSpec{Key: ids.Next(), FuncKeys: keys}
	}
	return spec
}

// NewFileSpecs builds count file specs numbered 0..count-1
func NewFileSpecs(count, classCount, funcCount int, ids *IDGenerator) []*FileSpec {
	specs := make([]*FileSpec, count)
	for i := range specs {
		specs[i] = NewFileSpec(i, classCount, funcCount, ids)
	}
	return specs
}

// ImportsCount is the number of addressable class functions in the file
func (s *FileSpec) ImportsCount() int {
	n := 0
	for _, c := range s.Classes {
		n += len(c.FuncKeys)
	}
	return n
}

// Ref addresses one class function, possibly in another module. Indexes
// locate it inside the module, keys are the identifiers used in names.
type Ref struct {
	Module   string
	Language Language
	FileIdx  int
	ClassIdx int
	FuncIdx  int
	ClassKey int
	FuncKey  int
}

func (r Ref) String() string {
	return fmt.Sprintf("%s/%d/%d/%d", r.Module, r.FileIdx, r.ClassIdx, r.FuncIdx)
}

// ImportSelector picks the class functions a generated class calls
type ImportSelector interface {
	// Inner returns functions of other classes in the same module. The class
	// at (fileIdx, classIdx) is never included.
	Inner(fileIdx, classIdx int) ([]Ref, error)
	// External returns functions of dependency modules
	External() ([]Ref, error)
}
