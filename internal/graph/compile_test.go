package graph

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flaek-labs/flaek-go/internal/catalog"
)

// =============================================================================
// Validation Tests
// =============================================================================

func TestValidateEmptyGraph(t *testing.T) {
	err := Validate(&Graph{}, catalog.Default())
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrEmptyGraph, ce.Code)
}

func TestValidateUnknownBlock(t *testing.T) {
	g := &Graph{Nodes: []Node{{ID: "a", BlockID: "unknown_block"}}}

	err := Validate(g, catalog.Default())
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrUnknownBlock, ce.Code)
	assert.Equal(t, "a", ce.NodeID)
	assert.Contains(t, ce.Message, "unknown_block")
}

func TestValidateDanglingEdge(t *testing.T) {
	g := &Graph{
		Nodes: []Node{{ID: "a", BlockID: "mb_create_permission"}},
		Edges: []Edge{{ID: "e1", Source: "a", Target: "x"}},
	}

	err := Validate(g, catalog.Default())
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrDanglingEdge, ce.Code)
	assert.Equal(t, "e1", ce.EdgeID)
	assert.Contains(t, ce.Message, "x")
}

func TestValidateDanglingEdgeSource(t *testing.T) {
	g := &Graph{
		Nodes: []Node{{ID: "a", BlockID: "mb_create_permission"}},
		Edges: []Edge{{ID: "e1", Source: "ghost", Target: "a"}},
	}

	err := Validate(g, catalog.Default())
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrDanglingEdge, ce.Code)
}

// =============================================================================
// Compilation Tests
// =============================================================================

func TestCompileLinearFlow(t *testing.T) {
	g := &Graph{
		Nodes: []Node{
			{ID: "a", BlockID: "mb_create_permission"},
			{ID: "b", BlockID: "mb_delegate_permission"},
		},
		Edges: []Edge{{ID: "e1", Source: "a", Target: "b"}},
	}

	plan, err := Compile(g, catalog.Default())
	require.NoError(t, err)
	require.Len(t, plan.Steps, 2)

	assert.Equal(t, "a", plan.Steps[0].NodeID)
	assert.Empty(t, plan.Steps[0].DependsOn)
	assert.Equal(t, "b", plan.Steps[1].NodeID)
	assert.Equal(t, []string{"a"}, plan.Steps[1].DependsOn)
}

func TestCompileDiamondOrder(t *testing.T) {
	g := diamondGraph()

	plan, err := Compile(g, catalog.Default())
	require.NoError(t, err)
	require.Len(t, plan.Steps, 4)

	position := make(map[string]int, 4)
	for i, s := range plan.Steps {
		position[s.NodeID] = i
	}

	// Every step appears after all of its direct predecessors.
	for _, s := range plan.Steps {
		for _, dep := range s.DependsOn {
			assert.Less(t, position[dep], position[s.NodeID],
				"step %s must come after dependency %s", s.NodeID, dep)
		}
	}
	assert.ElementsMatch(t, []string{"b", "c"}, plan.Steps[3].DependsOn)
}

func TestCompileCycleFails(t *testing.T) {
	g := &Graph{
		Nodes: []Node{
			{ID: "a", BlockID: "mb_create_permission"},
			{ID: "b", BlockID: "mb_delegate_permission"},
		},
		Edges: []Edge{
			{ID: "e1", Source: "a", Target: "b"},
			{ID: "e2", Source: "b", Target: "a"},
		},
	}

	plan, err := Compile(g, catalog.Default())
	assert.Nil(t, plan, "no partial plan on cycle")

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrCycleDetected, ce.Code)
}

func TestCompileSelfLoopFails(t *testing.T) {
	g := &Graph{
		Nodes: []Node{{ID: "a", BlockID: "mb_create_permission"}},
		Edges: []Edge{{ID: "e1", Source: "a", Target: "a"}},
	}

	_, err := Compile(g, catalog.Default())
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrCycleDetected, ce.Code)
}

func TestCompileDuplicateEdgesDedupedInDependsOn(t *testing.T) {
	g := &Graph{
		Nodes: []Node{
			{ID: "a", BlockID: "mb_create_permission"},
			{ID: "b", BlockID: "mb_delegate_permission"},
		},
		Edges: []Edge{
			{ID: "e1", Source: "a", Target: "b"},
			{ID: "e2", Source: "a", Target: "b"},
		},
	}

	plan, err := Compile(g, catalog.Default())
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, plan.Steps[1].DependsOn)
}

func TestCompileDoesNotMutateInput(t *testing.T) {
	g := &Graph{
		Nodes: []Node{{
			ID:      "a",
			BlockID: "mb_topup_escrow",
			Data:    map[string]any{"amount": float64(10)},
		}},
	}

	plan, err := Compile(g, catalog.Default())
	require.NoError(t, err)

	plan.Steps[0].Inputs["amount"] = float64(99)
	assert.Equal(t, float64(10), g.Nodes[0].Data["amount"])
}

// =============================================================================
// Golden Plan Snapshots
// =============================================================================

func TestCompileGoldenLinear(t *testing.T) {
	g := &Graph{
		Nodes: []Node{
			{ID: "a", BlockID: "mb_create_permission", Data: map[string]any{
				"permissioned_account": "$wallet",
				"payer":                "$wallet",
			}},
			{ID: "b", BlockID: "mb_delegate_permission", Data: map[string]any{
				"payer":                "$wallet",
				"authority":            "$wallet",
				"permissioned_account": "$wallet",
			}},
		},
		Edges: []Edge{{ID: "e1", Source: "a", Target: "b"}},
	}

	assertPlanGolden(t, "linear_flow", g)
}

func TestCompileGoldenDiamond(t *testing.T) {
	assertPlanGolden(t, "diamond_flow", diamondGraph())
}

func assertPlanGolden(t *testing.T, name string, g *Graph) {
	t.Helper()

	plan, err := Compile(g, catalog.Default())
	require.NoError(t, err)

	data, err := json.MarshalIndent(plan, "", "  ")
	require.NoError(t, err)

	gold := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	gold.Assert(t, name, data)
}

func diamondGraph() *Graph {
	return &Graph{
		Nodes: []Node{
			{ID: "a", BlockID: "mb_create_permission"},
			{ID: "b", BlockID: "mb_update_permission"},
			{ID: "c", BlockID: "mb_commit_permission"},
			{ID: "d", BlockID: "mb_close_permission"},
		},
		Edges: []Edge{
			{ID: "e1", Source: "a", Target: "b"},
			{ID: "e2", Source: "a", Target: "c"},
			{ID: "e3", Source: "b", Target: "d"},
			{ID: "e4", Source: "c", Target: "d"},
		},
	}
}
