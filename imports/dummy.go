package imports

import (
	"fmt"
	"math/rand/v2"

	"github.com/gleyba/uber-poet/filegen"
)

// Bounds of the dummy address space: 32 files of 10 classes of 10
// functions, across 32 fake modules
const (
	dummyFiles   = 32
	dummyClasses = 10
	dummyFuncs   = 10
	dummyModules = 32
)

// Dummy returns random references without looking at real modules. Its
// output only appears in sample files used for LOC measurement.
type Dummy struct {
	scope         Scope
	rng           *rand.Rand
	innerCount    int
	externalCount int
}

// NewDummy creates a dummy selector. Requests are capped at half the
// dummy space.
func NewDummy(scope Scope, innerPerClass, externalPerClass int, seed uint64) *Dummy {
	space := dummyFiles * dummyClasses * dummyFuncs
	return &Dummy{
		scope:         scope,
		rng:           rand.New(rand.NewPCG(seed, seed+1)),
		innerCount:    max(0, min(innerPerClass, space/2)),
		externalCount: max(0, min(externalPerClass, space/2)),
	}
}

func (d *Dummy) randomRef(module string) filegen.Ref {
	file, class, fn := d.rng.IntN(dummyFiles), d.rng.IntN(dummyClasses), d.rng.IntN(dummyFuncs)
	return filegen.Ref{
		Module:   module,
		Language: d.scope.Language,
		FileIdx:  file,
		ClassIdx: class,
		FuncIdx:  fn,
		ClassKey: file*dummyClasses + class,
		FuncKey:  (file*dummyClasses+class)*dummyFuncs + fn,
	}
}

func (d *Dummy) GetInnerImports(caller ClassKey) (*InnerImports, error) {
	result := NewInnerImports()
	for result.Count < d.innerCount {
		ref := d.randomRef(d.scope.Module)
		if ref.FileIdx == caller.File && ref.ClassIdx == caller.Class {
			continue
		}
		result.Add(ref)
	}
	return result, nil
}

func (d *Dummy) GetExternalImports() (*ExternalImports, error) {
	result := NewExternalImports()
	for result.Count < d.externalCount {
		result.Add(d.randomRef(fmt.Sprintf("test%d", d.rng.IntN(dummyModules))))
	}
	return result, nil
}
