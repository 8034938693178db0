package graph

import (
	"fmt"

	"github.com/flaek-labs/flaek-go/internal/catalog"
)

// Graph validation error codes (E200-E209).
const (
	ErrEmptyGraph    = "E200" // graph has no nodes
	ErrUnknownBlock  = "E201" // node references a block absent from the catalog
	ErrDanglingEdge  = "E202" // edge references a node id not in the graph
	ErrCycleDetected = "E203" // graph contains at least one cycle
)

// CompileError reports a structurally invalid graph. It is surfaced verbatim
// to the caller and never retried.
type CompileError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	NodeID  string `json:"node_id,omitempty"`
	EdgeID  string `json:"edge_id,omitempty"`
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Validate checks the graph's structural invariants against the catalog.
// It does not detect cycles; Compile is the authoritative gate for those.
func Validate(g *Graph, cat *catalog.Catalog) error {
	if len(g.Nodes) == 0 {
		return &CompileError{Code: ErrEmptyGraph, Message: "flow must have at least one node"}
	}

	nodeIDs := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if cat.Get(n.BlockID) == nil {
			return &CompileError{
				Code:    ErrUnknownBlock,
				Message: fmt.Sprintf("unknown block: %s", n.BlockID),
				NodeID:  n.ID,
			}
		}
		nodeIDs[n.ID] = true
	}

	for _, e := range g.Edges {
		if !nodeIDs[e.Source] {
			return &CompileError{
				Code:    ErrDanglingEdge,
				Message: fmt.Sprintf("edge references unknown source node: %s", e.Source),
				EdgeID:  e.ID,
			}
		}
		if !nodeIDs[e.Target] {
			return &CompileError{
				Code:    ErrDanglingEdge,
				Message: fmt.Sprintf("edge references unknown target node: %s", e.Target),
				EdgeID:  e.ID,
			}
		}
	}

	return nil
}

// Compile validates the graph and produces an execution plan via Kahn's
// algorithm. The returned step order is a valid topological order; each
// step's DependsOn holds its direct edge-source predecessors, deduplicated.
// A cyclic graph fails with ErrCycleDetected and no partial plan.
func Compile(g *Graph, cat *catalog.Catalog) (*Plan, error) {
	if err := Validate(g, cat); err != nil {
		return nil, err
	}

	order, err := topoSort(g)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*Node, len(g.Nodes))
	for i := range g.Nodes {
		byID[g.Nodes[i].ID] = &g.Nodes[i]
	}

	steps := make([]Step, 0, len(order))
	for _, nodeID := range order {
		node := byID[nodeID]
		inputs := make(map[string]any, len(node.Data))
		for k, v := range node.Data {
			inputs[k] = v
		}
		steps = append(steps, Step{
			NodeID:    nodeID,
			BlockID:   node.BlockID,
			Inputs:    inputs,
			DependsOn: directPredecessors(g, nodeID),
		})
	}

	return &Plan{Steps: steps}, nil
}

// topoSort runs Kahn's algorithm over the graph. Duplicate edges between the
// same node pair each count toward in-degree; they represent distinct input
// bindings and are preserved rather than collapsed.
func topoSort(g *Graph) ([]string, error) {
	adjacency := make(map[string][]string, len(g.Nodes))
	inDegree := make(map[string]int, len(g.Nodes))
	for _, n := range g.Nodes {
		adjacency[n.ID] = nil
		inDegree[n.ID] = 0
	}
	for _, e := range g.Edges {
		adjacency[e.Source] = append(adjacency[e.Source], e.Target)
		inDegree[e.Target]++
	}

	// Seed with zero in-degree nodes in declaration order for determinism.
	var queue []string
	for _, n := range g.Nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	result := make([]string, 0, len(g.Nodes))
	for len(queue) > 0 {
		nodeID := queue[0]
		queue = queue[1:]
		result = append(result, nodeID)
		for _, next := range adjacency[nodeID] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(result) != len(g.Nodes) {
		return nil, &CompileError{Code: ErrCycleDetected, Message: "flow contains cycles"}
	}
	return result, nil
}

// directPredecessors returns the deduplicated sources of edges targeting
// nodeID, in edge declaration order.
func directPredecessors(g *Graph, nodeID string) []string {
	seen := make(map[string]bool)
	deps := []string{}
	for _, e := range g.Edges {
		if e.Target != nodeID || seen[e.Source] {
			continue
		}
		seen[e.Source] = true
		deps = append(deps, e.Source)
	}
	return deps
}
