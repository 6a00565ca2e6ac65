package moduletree

import (
	"sort"
	"strings"

	"github.com/gleyba/uber-poet/errors"
)

// TopoSort orders nodes so every node follows all of its dependencies. Among
// nodes that are ready at the same time the input order wins, so equal inputs
// give equal orders. Every dependency must itself be in nodes. A cycle is an
// errors.ErrCycle naming the nodes that could not be ordered.
func TopoSort(nodes []*ModuleNode) ([]*ModuleNode, error) {
	index := make(map[*ModuleNode]int, len(nodes))
	names := make(map[string]*ModuleNode, len(nodes))
	for i, n := range nodes {
		if other, ok := names[n.Name]; ok && other != n {
			return nil, errors.NewConfigError("duplicate module name %s", n.Name)
		}
		names[n.Name] = n
		index[n] = i
	}

	pending := make([]int, len(nodes))
	dependents := make([][]int, len(nodes))
	for i, n := range nodes {
		seen := make(map[*ModuleNode]bool, len(n.Deps))
		for _, d := range n.Deps {
			j, ok := index[d]
			if !ok {
				return nil, errors.NewConfigError("module %s depends on %s which is not in the graph", n.Name, d.Name)
			}
			if seen[d] {
				continue
			}
			seen[d] = true
			pending[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	// ready holds input indexes; kept sorted so the smallest index goes first
	var ready []int
	for i := range nodes {
		if pending[i] == 0 {
			ready = append(ready, i)
		}
	}

	ordered := make([]*ModuleNode, 0, len(nodes))
	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]
		ordered = append(ordered, nodes[i])

		for _, dep := range dependents[i] {
			pending[dep]--
			if pending[dep] == 0 {
				pos := sort.SearchInts(ready, dep)
				ready = append(ready, 0)
				copy(ready[pos+1:], ready[pos:])
				ready[pos] = dep
			}
		}
	}

	if len(ordered) != len(nodes) {
		var stuck []string
		for i, n := range nodes {
			if pending[i] > 0 {
				stuck = append(stuck, n.Name)
			}
		}
		return nil, errors.WithHint(
			errors.NewCycleError("dependency graph is not acyclic, unresolved modules: %s", strings.Join(stuck, ", ")),
			"remove the cycle from the supplied graph")
	}

	return ordered, nil
}
