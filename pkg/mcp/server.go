// Package mcp exposes read-only plan and template tools over the Model
// Context Protocol so assistants can explore what a user could build.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const serverInstructions = "Tools for the agent builder. " +
	"Use list_plans to see which agent types each subscription plan includes, " +
	"and preview_workflow_template to render the n8n workflow a given agent type produces."

// Server wraps the mcp-go MCPServer.
type Server struct {
	mcp    *server.MCPServer
	logger *zap.Logger
}

// NewServer creates a new MCP server instance. hooks may be nil.
func NewServer(name, version string, hooks *server.Hooks, logger *zap.Logger) *Server {
	opts := []server.ServerOption{
		server.WithToolCapabilities(true),
		server.WithInstructions(serverInstructions),
	}
	if hooks != nil {
		opts = append(opts, server.WithHooks(hooks))
	}

	return &Server{
		mcp:    server.NewMCPServer(name, version, opts...),
		logger: logger,
	}
}

// MCP returns the underlying MCPServer for tool registration.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// NewStreamableHTTPServer creates an HTTP transport server wrapping this MCP server.
// The HTTP mux handles routing to /mcp, so no endpoint path is configured here.
func (s *Server) NewStreamableHTTPServer() *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(
		s.mcp,
		server.WithStateLess(true),
	)
}

// RegisterTool is a convenience wrapper for registering a tool.
func (s *Server) RegisterTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	s.mcp.AddTool(tool, handler)
}
