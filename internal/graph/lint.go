package graph

import (
	"fmt"

	"github.com/flaek-labs/flaek-go/internal/catalog"
)

// Lint issue codes (L100-L109).
const (
	LintRequiredInputMissing = "L100" // required input has neither an edge nor an inline value
	LintValueOutOfRange      = "L101" // inline numeric value outside declared min/max
	LintUnconnectedNode      = "L102" // node has no incident edges
)

// Issue is one lint finding attached to a node.
type Issue struct {
	Code    string `json:"code"`
	NodeID  string `json:"node_id"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Report holds the outcome of a lint pass. Lint is advisory: errors here do
// not by themselves prevent compilation, which remains the authoritative
// gate.
type Report struct {
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// OK reports whether the lint pass produced no errors.
func (r *Report) OK() bool { return len(r.Errors) == 0 }

// Lint inspects a graph for user-facing problems ahead of compilation.
// Unknown blocks are skipped here; Validate reports them authoritatively.
func Lint(g *Graph, cat *catalog.Catalog) *Report {
	report := &Report{Errors: []Issue{}, Warnings: []Issue{}}

	incoming := make(map[string]int)
	incident := make(map[string]int)
	for _, e := range g.Edges {
		incoming[e.Target]++
		incident[e.Target]++
		incident[e.Source]++
	}

	for _, n := range g.Nodes {
		block := cat.Get(n.BlockID)
		if block == nil {
			continue
		}

		for _, input := range block.Inputs {
			value, hasValue := n.Data[input.Name]
			if input.Required && !hasValue && incoming[n.ID] == 0 {
				report.Errors = append(report.Errors, Issue{
					Code:    LintRequiredInputMissing,
					NodeID:  n.ID,
					Field:   input.Name,
					Message: fmt.Sprintf("required input %q has no value and no incoming edge", input.Name),
				})
				continue
			}
			if hasValue && input.Type == catalog.InputNumber {
				report.Warnings = append(report.Warnings, lintNumericRange(n.ID, input, value)...)
			}
		}

		if incident[n.ID] == 0 && len(g.Nodes) > 1 {
			report.Warnings = append(report.Warnings, Issue{
				Code:    LintUnconnectedNode,
				NodeID:  n.ID,
				Message: fmt.Sprintf("node %q is not connected to the rest of the flow", n.ID),
			})
		}
	}

	return report
}

func lintNumericRange(nodeID string, input catalog.Input, value any) []Issue {
	num, ok := asFloat(value)
	if !ok {
		return nil
	}
	var issues []Issue
	if input.Min != nil && num < *input.Min {
		issues = append(issues, Issue{
			Code:    LintValueOutOfRange,
			NodeID:  nodeID,
			Field:   input.Name,
			Message: fmt.Sprintf("%s is %v, below the minimum %v", input.Name, num, *input.Min),
		})
	}
	if input.Max != nil && num > *input.Max {
		issues = append(issues, Issue{
			Code:    LintValueOutOfRange,
			NodeID:  nodeID,
			Field:   input.Name,
			Message: fmt.Sprintf("%s is %v, above the maximum %v", input.Name, num, *input.Max),
		})
	}
	return issues
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
