package moduletree

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/gleyba/uber-poet/errors"
)

var (
	// "a" -> "b"; with optional quotes and trailing attributes
	dotEdge = regexp.MustCompile(`^\s*"?([^"\s\[;]+)"?\s*->\s*"?([^"\s\[;]+)"?`)
	// "a"; or "a" [label=...]
	dotNode = regexp.MustCompile(`^\s*"?([^"\s\[;{}=]+)"?\s*(\[.*\])?\s*;?\s*$`)
)

var dotKeywords = map[string]bool{"digraph": true, "graph": true, "node": true, "edge": true, "subgraph": true}

// DotReader builds a module graph from a DOT edge list such as the output of
// `buck query "deps(target)" --dot`.
type DotReader struct {
	logger *zap.SugaredLogger
}

// NewDotReader creates a reader that logs dropped nodes to logger
func NewDotReader(logger *zap.SugaredLogger) *DotReader {
	return &DotReader{logger: logger.Named("dotreader")}
}

// ReadFile parses the DOT file at path
func (r *DotReader) ReadFile(path, rootName string) (*ModuleNode, []*ModuleNode, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.WrapConfig(err, "failed to open dot file")
	}
	defer f.Close()
	return r.Read(f, rootName)
}

// Read parses a DOT edge list. Target labels are reduced to their short name
// ("//Modules/Foo:Foo" becomes "Foo"). Only nodes reachable from rootName are
// kept; the root becomes the app node. The returned list is topologically
// sorted with the app last.
func (r *DotReader) Read(in io.Reader, rootName string) (*ModuleNode, []*ModuleNode, error) {
	var order []string
	deps := map[string][]string{}
	seen := map[string]bool{}

	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			order = append(order, name)
		}
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == "}" || strings.HasPrefix(line, "#") {
			continue
		}

		if m := dotEdge.FindStringSubmatch(line); m != nil {
			from, to := ShortName(m[1]), ShortName(m[2])
			add(from)
			add(to)
			if !slices.Contains(deps[from], to) {
				deps[from] = append(deps[from], to)
			}
			continue
		}

		if first := strings.Fields(line)[0]; dotKeywords[strings.Trim(first, `"{`)] {
			continue
		}
		if m := dotNode.FindStringSubmatch(line); m != nil {
			add(ShortName(m[1]))
			continue
		}
		r.logger.Debugw("skipping unrecognized dot line", "line", lineNo, "text", line)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, errors.WrapConfig(err, "failed to read dot input")
	}

	rootName = ShortName(rootName)
	if !seen[rootName] {
		return nil, nil, errors.WithHint(
			errors.NewConfigError("root node %s not found in dot graph", rootName),
			"--dot_root_node_name must match a node of the graph")
	}

	reachable := map[string]bool{}
	stack := []string{rootName}
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reachable[name] {
			continue
		}
		reachable[name] = true
		stack = append(stack, deps[name]...)
	}

	nodes := map[string]*ModuleNode{}
	var kept []*ModuleNode
	for _, name := range order {
		if !reachable[name] {
			r.logger.Infow("dropping module unreachable from root", "module", name, "root", rootName)
			continue
		}
		n := NewLibrary(name, 1)
		if name == rootName {
			n.NodeType = App
		}
		nodes[name] = n
		kept = append(kept, n)
	}
	for _, n := range kept {
		for _, d := range deps[n.Name] {
			n.Deps = append(n.Deps, nodes[d])
		}
	}

	ordered, err := TopoSort(kept)
	if err != nil {
		return nil, nil, err
	}
	return nodes[rootName], ordered, nil
}

// ShortName reduces a build target label to its module name
func ShortName(label string) string {
	label = strings.Trim(label, `"`)
	if i := strings.LastIndex(label, ":"); i >= 0 {
		return label[i+1:]
	}
	if i := strings.LastIndex(label, "/"); i >= 0 {
		return label[i+1:]
	}
	return label
}
