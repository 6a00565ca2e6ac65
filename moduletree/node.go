// Package moduletree builds the module dependency graph of a generated
// project: synthetic flat, layered and big/small shapes, or a graph read from
// a DOT edge list. Every builder returns the app node and all nodes in
// dependency order.
package moduletree

import (
	"fmt"
	"io"
	"strings"
)

// NodeType distinguishes the single application node from library modules
type NodeType int

const (
	Library NodeType = iota
	App
)

func (t NodeType) String() string {
	if t == App {
		return "APP"
	}
	return "LIBRARY"
}

// ModuleNode is one module of the generated project. Nodes are immutable once
// a builder returns them.
type ModuleNode struct {
	Name      string
	Deps      []*ModuleNode
	NodeType  NodeType
	CodeUnits int // sizing weight relative to other modules
}

// NewLibrary creates a library node with the given weight
func NewLibrary(name string, codeUnits int, deps ...*ModuleNode) *ModuleNode {
	return &ModuleNode{Name: name, Deps: deps, NodeType: Library, CodeUnits: codeUnits}
}

// NewApp creates the application node
func NewApp(name string, deps ...*ModuleNode) *ModuleNode {
	return &ModuleNode{Name: name, Deps: deps, NodeType: App, CodeUnits: 1}
}

func (n *ModuleNode) String() string {
	names := make([]string, len(n.Deps))
	for i, d := range n.Deps {
		names[i] = d.Name
	}
	return fmt.Sprintf("%s(%s) -> [%s]", n.Name, n.NodeType, strings.Join(names, ", "))
}

// DepNames returns the names of the direct dependencies, in order
func (n *ModuleNode) DepNames() []string {
	names := make([]string, len(n.Deps))
	for i, d := range n.Deps {
		names[i] = d.Name
	}
	return names
}

// Edge is a single "module depends on dep" relation
type Edge struct {
	From string
	To   string
}

// Edges lists every dependency edge of nodes, in node order then dep order
func Edges(nodes []*ModuleNode) []Edge {
	var edges []Edge
	for _, n := range nodes {
		for _, d := range n.Deps {
			edges = append(edges, Edge{From: n.Name, To: d.Name})
		}
	}
	return edges
}

// WriteEdges prints one "module dep" line per edge
func WriteEdges(w io.Writer, nodes []*ModuleNode) error {
	for _, e := range Edges(nodes) {
		if _, err := fmt.Fprintf(w, "%s %s\n", e.From, e.To); err != nil {
			return err
		}
	}
	return nil
}

// Libraries filters out the app node, keeping order
func Libraries(nodes []*ModuleNode) []*ModuleNode {
	libs := make([]*ModuleNode, 0, len(nodes))
	for _, n := range nodes {
		if n.NodeType == Library {
			libs = append(libs, n)
		}
	}
	return libs
}

// TotalCodeUnits sums the weights of nodes
func TotalCodeUnits(nodes []*ModuleNode) int {
	total := 0
	for _, n := range nodes {
		total += n.CodeUnits
	}
	return total
}
