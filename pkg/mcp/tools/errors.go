package tools

import (
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/agentforge-io/agent-builder/pkg/apperrors"
)

// ErrorResponse represents a structured error in tool results.
// Returned as tool output so the client sees actionable details instead of
// a protocol-level failure.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// NewErrorResult creates a tool result containing a structured error.
// Use this for recoverable errors the caller can fix (bad parameters,
// unknown agent type). System failures should still return Go errors.
func NewErrorResult(code, message string) *mcp.CallToolResult {
	return NewErrorResultWithDetails(code, message, nil)
}

// NewErrorResultWithDetails creates an error result with additional context.
func NewErrorResultWithDetails(code, message string, details any) *mcp.CallToolResult {
	resp := ErrorResponse{
		Error:   true,
		Code:    code,
		Message: message,
		Details: details,
	}
	jsonBytes, _ := json.Marshal(resp)
	result := mcp.NewToolResultText(string(jsonBytes))
	result.IsError = true
	return result
}

// IsInputError reports whether err was caused by caller input rather than
// a server failure. Input errors are returned as error results.
func IsInputError(err error) bool {
	return errors.Is(err, apperrors.ErrInvalidInput) ||
		errors.Is(err, apperrors.ErrUnknownAgentType) ||
		errors.Is(err, apperrors.ErrNotFound)
}

// errorCode maps an input error to the code reported to the client.
func errorCode(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrUnknownAgentType):
		return "unknown_agent_type"
	case errors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	default:
		return "invalid_input"
	}
}
