package tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterHealthTool(t *testing.T) {
	s := newTestMCPServer()
	RegisterHealthTool(s, "test-version")

	tool, ok := listTools(t, s)["health"]
	require.True(t, ok, "health tool not found in tools/list response")
	assert.Equal(t, "Returns server health status and version", tool.Description)
}

func TestHealthTool_Execute(t *testing.T) {
	s := newTestMCPServer()
	RegisterHealthTool(s, "1.2.3")

	resp := callTool(t, s, "health", nil)
	require.Len(t, resp.Result.Content, 1)
	assert.Equal(t, "text", resp.Result.Content[0].Type)

	var health healthResult
	require.NoError(t, json.Unmarshal([]byte(resp.Result.Content[0].Text), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "1.2.3", health.Version)
}

func TestHealthTool_VersionWithSpecialChars(t *testing.T) {
	s := newTestMCPServer()
	version := `1.0.0-beta"test`
	RegisterHealthTool(s, version)

	resp := callTool(t, s, "health", nil)
	require.Len(t, resp.Result.Content, 1)

	var health healthResult
	require.NoError(t, json.Unmarshal([]byte(resp.Result.Content[0].Text), &health))
	assert.Equal(t, version, health.Version)
}
