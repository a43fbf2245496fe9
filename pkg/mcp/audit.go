package mcp

import (
	"context"
	"sync"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/agentforge-io/agent-builder/pkg/auth"
)

// ToolCallLogger records every tool call with its caller and duration.
type ToolCallLogger struct {
	logger *zap.Logger

	// startTimes tracks when tool calls begin, keyed by request ID.
	startTimes sync.Map
}

// NewToolCallLogger creates a ToolCallLogger.
func NewToolCallLogger(logger *zap.Logger) *ToolCallLogger {
	return &ToolCallLogger{logger: logger.Named("mcp-audit")}
}

// Hooks returns mcp-go Hooks configured to capture tool call events.
func (a *ToolCallLogger) Hooks() *server.Hooks {
	hooks := &server.Hooks{}
	hooks.AddBeforeCallTool(a.beforeCallTool)
	hooks.AddAfterCallTool(a.afterCallTool)
	hooks.AddOnError(a.onError)
	return hooks
}

func (a *ToolCallLogger) beforeCallTool(_ context.Context, id any, _ *mcplib.CallToolRequest) {
	a.startTimes.Store(id, time.Now())
}

func (a *ToolCallLogger) afterCallTool(ctx context.Context, id any, req *mcplib.CallToolRequest, result *mcplib.CallToolResult) {
	isError := result != nil && result.IsError
	a.logger.Info("MCP tool call",
		zap.String("tool", req.Params.Name),
		zap.String("caller", caller(ctx)),
		zap.Bool("is_error", isError),
		zap.Duration("duration", a.elapsed(id)),
	)
}

func (a *ToolCallLogger) onError(ctx context.Context, id any, method mcplib.MCPMethod, message any, err error) {
	if method != mcplib.MethodToolsCall {
		return
	}
	req, ok := message.(*mcplib.CallToolRequest)
	if !ok {
		return
	}
	a.logger.Warn("MCP tool call failed",
		zap.String("tool", req.Params.Name),
		zap.String("caller", caller(ctx)),
		zap.Duration("duration", a.elapsed(id)),
		zap.Error(err),
	)
}

func (a *ToolCallLogger) elapsed(id any) time.Duration {
	if v, ok := a.startTimes.LoadAndDelete(id); ok {
		return time.Since(v.(time.Time))
	}
	return 0
}

func caller(ctx context.Context) string {
	if claims, ok := auth.GetClaims(ctx); ok {
		return claims.Subject
	}
	return ""
}
