package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/agentforge-io/agent-builder/pkg/plans"
)

type listPlansResult struct {
	Plans []plans.Plan `json:"plans"`
}

// RegisterPlanTools adds list_plans, which reports every subscription plan
// with the agent types and usage cap it grants.
func RegisterPlanTools(s *server.MCPServer) {
	tool := mcp.NewTool(
		"list_plans",
		mcp.WithDescription(
			"Lists the subscription plans in ascending order with the agent types each one may create "+
				"and its monthly usage cap (0 means unlimited).",
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(listPlansResult{Plans: plans.All()}, "plans")
	})
}
