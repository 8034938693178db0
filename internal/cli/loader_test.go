package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validFlowYAML = `name: escrow demo
version: "1"
nodes:
  - id: a
    blockId: mb_topup_escrow
    data:
      escrow: 7S3P4HxJpyyigGzodYwHtCxZyUQe9JiBMHyRWXArAaKv
      escrow_authority: $wallet
      payer: $wallet
      amount: 10
  - id: b
    blockId: mb_magic_commit
    data:
      payer: $wallet
      accounts:
        - $wallet
edges:
  - id: e1
    source: a
    target: b
`

// writeFlow writes a flow document to a temp file and returns its path.
func writeFlow(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFlowValid(t *testing.T) {
	path := writeFlow(t, validFlowYAML)

	flow, err := LoadFlow(path)
	require.NoError(t, err)

	require.Len(t, flow.Nodes, 2)
	assert.Equal(t, "a", flow.Nodes[0].ID)
	assert.Equal(t, "mb_topup_escrow", flow.Nodes[0].BlockID)
	assert.Equal(t, "$wallet", flow.Nodes[0].Data["payer"])
	require.Len(t, flow.Edges, 1)
	assert.Equal(t, "a", flow.Edges[0].Source)
	require.NotNil(t, flow.Metadata)
	assert.Equal(t, "escrow demo", flow.Metadata.Name)
	assert.Equal(t, "1", flow.Metadata.Version)
}

func TestLoadFlowFileNotFound(t *testing.T) {
	_, err := LoadFlow("/nonexistent/flow.yaml")

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
}

func TestLoadFlowMalformedYAML(t *testing.T) {
	path := writeFlow(t, "nodes: [\n  - broken")

	_, err := LoadFlow(path)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeParseFailed, loadErr.Code)
}

func TestLoadFlowSchemaViolation(t *testing.T) {
	// Node without a blockId fails schema validation before compilation.
	path := writeFlow(t, `nodes:
  - id: a
    data:
      amount: 10
`)

	_, err := LoadFlow(path)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeSchemaFailed, loadErr.Code)
}

func TestLoadFlowEdgeMissingTarget(t *testing.T) {
	path := writeFlow(t, `nodes:
  - id: a
    blockId: mb_magic_commit
edges:
  - id: e1
    source: a
`)

	_, err := LoadFlow(path)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeSchemaFailed, loadErr.Code)
}

func TestLoadFlowNoMetadata(t *testing.T) {
	path := writeFlow(t, `nodes:
  - id: a
    blockId: mb_magic_commit
    data:
      payer: $wallet
      accounts: [$wallet]
`)

	flow, err := LoadFlow(path)
	require.NoError(t, err)
	assert.Nil(t, flow.Metadata)
}
