package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flaek-labs/flaek-go/internal/catalog"
)

func TestBlocksListsCatalog(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewBlocksCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "mb_topup_escrow")
	assert.Contains(t, output, "flaek_create_state")
	assert.Contains(t, output, "block(s)")
}

func TestBlocksFilterByCategory(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewBlocksCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--category", "magic"})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "mb_magic_commit")
	assert.NotContains(t, output, "flaek_create_state")
}

func TestBlocksSearch(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewBlocksCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--search", "escrow"})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "mb_topup_escrow")
	assert.Contains(t, output, "mb_close_escrow")
}

func TestBlocksNoMatch(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewBlocksCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--search", "nonexistent-block-query"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No blocks matched.")
}

func TestBlocksJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewBlocksCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp struct {
		Status string               `json:"status"`
		Data   []catalog.Definition `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Len(t, resp.Data, len(catalog.Default().All()))
}
