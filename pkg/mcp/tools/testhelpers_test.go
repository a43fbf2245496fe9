package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"
)

type toolCallResponse struct {
	Result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type listedTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// callTool sends a tools/call request through the server and decodes the response.
func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) toolCallResponse {
	t.Helper()

	payload, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params":  map[string]any{"name": name, "arguments": args},
	})
	require.NoError(t, err)

	raw, err := json.Marshal(s.HandleMessage(context.Background(), payload))
	require.NoError(t, err)

	var resp toolCallResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	return resp
}

// listTools returns the tools registered on s keyed by name.
func listTools(t *testing.T, s *server.MCPServer) map[string]listedTool {
	t.Helper()

	result := s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","method":"tools/list","id":1}`))
	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var response struct {
		Result struct {
			Tools []listedTool `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(raw, &response))

	tools := make(map[string]listedTool, len(response.Result.Tools))
	for _, tool := range response.Result.Tools {
		tools[tool.Name] = tool
	}
	return tools
}

func newTestMCPServer() *server.MCPServer {
	return server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))
}
