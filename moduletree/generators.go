package moduletree

import (
	"fmt"

	"github.com/gleyba/uber-poet/errors"
)

// AppName is the name of the application node of synthetic graphs
const AppName = "App"

// Weights of the big/small shapes
const (
	BigModuleCodeUnits   = 20
	SmallModuleCodeUnits = 1
)

// Params carries the counts the synthetic shapes need
type Params struct {
	ModuleCount      int
	BigModuleCount   int
	SmallModuleCount int
	LayerCount       int
}

// Build generates a synthetic graph. Dot graphs come from DotReader instead.
func Build(gen GenType, p Params) (*ModuleNode, []*ModuleNode, error) {
	switch gen {
	case Flat:
		return GenFlat(p.ModuleCount)
	case FlatBigSmall:
		return GenFlatBigSmall(p.BigModuleCount, p.SmallModuleCount)
	case Layered:
		if p.LayerCount <= 0 {
			return nil, nil, errors.NewConfigError("app_layer_count must be positive, got %d", p.LayerCount)
		}
		perLayer := p.ModuleCount / p.LayerCount
		if perLayer <= 0 {
			return nil, nil, errors.WithHint(
				errors.NewConfigError("module_count %d is smaller than app_layer_count %d", p.ModuleCount, p.LayerCount),
				"every layer needs at least one module")
		}
		return GenLayered(p.LayerCount, perLayer)
	case LayeredBigSmall:
		return GenLayeredBigSmall(p.BigModuleCount, p.SmallModuleCount)
	case Dot:
		return nil, nil, errors.NewConfigError("dot graphs are read from a file, not generated")
	default:
		return nil, nil, errors.NewConfigError("unknown graph type %q", gen)
	}
}

// GenFlat creates count independent libraries under one app node
func GenFlat(count int) (*ModuleNode, []*ModuleNode, error) {
	if count <= 0 {
		return nil, nil, errors.NewConfigError("module_count must be positive, got %d", count)
	}

	libs := make([]*ModuleNode, count)
	for i := range libs {
		libs[i] = NewLibrary(fmt.Sprintf("MockLib%d", i), 1)
	}

	app := NewApp(AppName, libs...)
	return app, append(libs, app), nil
}

// GenFlatBigSmall creates independent big and small libraries under one app node
func GenFlatBigSmall(bigCount, smallCount int) (*ModuleNode, []*ModuleNode, error) {
	big, small, err := genBigSmall(bigCount, smallCount)
	if err != nil {
		return nil, nil, err
	}

	libs := append(big, small...)
	app := NewApp(AppName, libs...)
	return app, append(libs, app), nil
}

// GenLayered creates layerCount layers of perLayer libraries. Each layer
// depends on every module of the layer below; the app depends on the top layer.
func GenLayered(layerCount, perLayer int) (*ModuleNode, []*ModuleNode, error) {
	if layerCount <= 0 {
		return nil, nil, errors.NewConfigError("app_layer_count must be positive, got %d", layerCount)
	}
	if perLayer <= 0 {
		return nil, nil, errors.NewConfigError("modules per layer must be positive, got %d", perLayer)
	}

	var all []*ModuleNode
	var prev []*ModuleNode
	for layer := 0; layer < layerCount; layer++ {
		current := make([]*ModuleNode, perLayer)
		for i := range current {
			// Each module gets its own copy so dep slices never alias
			current[i] = NewLibrary(fmt.Sprintf("MockLib%d_%d", layer, i), 1, append([]*ModuleNode(nil), prev...)...)
		}
		all = append(all, current...)
		prev = current
	}

	app := NewApp(AppName, prev...)
	return app, append(all, app), nil
}

// GenLayeredBigSmall puts the big libraries at the bottom; every small library
// depends on all big ones and the app depends on the small ones.
func GenLayeredBigSmall(bigCount, smallCount int) (*ModuleNode, []*ModuleNode, error) {
	big, small, err := genBigSmall(bigCount, smallCount)
	if err != nil {
		return nil, nil, err
	}

	for _, s := range small {
		s.Deps = append([]*ModuleNode(nil), big...)
	}

	app := NewApp(AppName, small...)
	libs := append(big, small...)
	return app, append(libs, app), nil
}

func genBigSmall(bigCount, smallCount int) ([]*ModuleNode, []*ModuleNode, error) {
	if bigCount <= 0 {
		return nil, nil, errors.NewConfigError("big_module_count must be positive, got %d", bigCount)
	}
	if smallCount <= 0 {
		return nil, nil, errors.NewConfigError("small_module_count must be positive, got %d", smallCount)
	}

	big := make([]*ModuleNode, bigCount)
	for i := range big {
		big[i] = NewLibrary(fmt.Sprintf("MockLibBig%d", i), BigModuleCodeUnits)
	}
	small := make([]*ModuleNode, smallCount)
	for i := range small {
		small[i] = NewLibrary(fmt.Sprintf("MockLibSmall%d", i), SmallModuleCodeUnits)
	}
	return big, small, nil
}
