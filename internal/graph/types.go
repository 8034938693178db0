// Package graph defines flow graphs and compiles them into execution plans.
//
// A flow is a directed graph of blocks. Compilation validates the graph
// against the block catalog, rejects cycles, and emits a topologically
// ordered step list with per-step direct dependencies. Compilation is pure:
// it never mutates its input and holds no state across calls.
package graph

// Position is optional canvas placement metadata carried by UI builders.
// It plays no role in compilation.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node is one block instance in a flow graph.
type Node struct {
	ID       string         `json:"id" yaml:"id"`
	BlockID  string         `json:"blockId" yaml:"blockId"`
	Data     map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
	Position *Position      `json:"position,omitempty" yaml:"position,omitempty"`
}

// Edge is a directed dependency from one node to another.
type Edge struct {
	ID           string `json:"id" yaml:"id"`
	Source       string `json:"source" yaml:"source"`
	Target       string `json:"target" yaml:"target"`
	SourceHandle string `json:"sourceHandle,omitempty" yaml:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty" yaml:"targetHandle,omitempty"`
}

// Metadata names and versions a flow document.
type Metadata struct {
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string `json:"version,omitempty" yaml:"version,omitempty"`
}

// Graph is a caller-supplied flow definition. It is validated and discarded
// after compilation; persistence belongs to the caller.
type Graph struct {
	Nodes    []Node    `json:"nodes" yaml:"nodes"`
	Edges    []Edge    `json:"edges" yaml:"edges"`
	Metadata *Metadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Step is one compiled, order-stable unit of work. DependsOn lists the
// step's direct predecessors only, never the transitive closure.
type Step struct {
	NodeID    string         `json:"nodeId"`
	BlockID   string         `json:"blockId"`
	Inputs    map[string]any `json:"inputs"`
	DependsOn []string       `json:"dependsOn"`
}

// Plan is an ordered step list. The order is a valid topological order of
// the source graph. A Plan is immutable once produced; context resolution
// returns a new Plan value.
type Plan struct {
	Steps []Step `json:"steps"`
}
