package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/agentforge-io/agent-builder/pkg/models"
	"github.com/agentforge-io/agent-builder/pkg/templates"
)

// TemplatePreviewer renders a workflow template without storing it.
type TemplatePreviewer interface {
	Preview(ctx context.Context, agentType, name, description string) (*templates.Generated, error)
}

// TemplateToolDeps contains dependencies for the template tools.
type TemplateToolDeps struct {
	Previewer TemplatePreviewer
	Logger    *zap.Logger
}

// RegisterTemplateTools adds preview_workflow_template.
func RegisterTemplateTools(s *server.MCPServer, deps *TemplateToolDeps) {
	types := make([]string, 0, len(models.ValidAgentTypes))
	for _, t := range models.ValidAgentTypes {
		types = append(types, string(t))
	}

	tool := mcp.NewTool(
		"preview_workflow_template",
		mcp.WithDescription(
			"Renders the n8n workflow document an agent type produces, without storing it or "+
				"counting against any plan. Types other than chat currently render an empty graph.",
		),
		mcp.WithString(
			"type",
			mcp.Required(),
			mcp.Description("Agent type: "+strings.Join(types, ", ")),
			mcp.Enum(types...),
		),
		mcp.WithString(
			"name",
			mcp.Description("Optional display name. Defaults to the template's name."),
		),
		mcp.WithString(
			"description",
			mcp.Description("Optional description. Defaults to the template's description."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		agentType, err := req.RequireString("type")
		if err != nil {
			return NewErrorResult("invalid_input", "type parameter is required"), nil
		}
		agentType = trimString(agentType)
		name := trimString(req.GetString("name", ""))
		description := trimString(req.GetString("description", ""))

		generated, err := deps.Previewer.Preview(ctx, agentType, name, description)
		if err != nil {
			if IsInputError(err) {
				deps.Logger.Debug("Template preview rejected",
					zap.String("type", agentType),
					zap.Error(err))
				return NewErrorResultWithDetails(errorCode(err), err.Error(),
					map[string]any{"valid_types": types}), nil
			}
			return nil, fmt.Errorf("failed to render template: %w", err)
		}

		return jsonResult(generated, "template")
	})
}
