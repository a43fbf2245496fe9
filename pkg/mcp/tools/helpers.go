package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// trimString removes leading and trailing whitespace from a tool parameter.
func trimString(s string) string {
	return strings.TrimSpace(s)
}

// jsonResult marshals v into a text tool result. what names the payload in
// the error message.
func jsonResult(v any, what string) (*mcp.CallToolResult, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", what, err)
	}
	return mcp.NewToolResultText(string(out)), nil
}
