package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agentforge-io/agent-builder/pkg/audit"
	"github.com/agentforge-io/agent-builder/pkg/config"
	"github.com/agentforge-io/agent-builder/pkg/llm"
	"github.com/agentforge-io/agent-builder/pkg/models"
	"github.com/agentforge-io/agent-builder/pkg/repositories"
	"github.com/agentforge-io/agent-builder/pkg/templates"
)

// Where a generated document came from.
const (
	SourceLLM      = "llm"
	SourceFallback = "fallback"
)

// WorkflowSystemPrompt instructs the model to answer with a bare n8n workflow document.
const WorkflowSystemPrompt = `You design n8n automation workflows.
Respond with a single JSON object and nothing else. The object must have:
- "nodes": an array of n8n nodes, each with "id", "name", "type", "typeVersion", "position" and "parameters"
- "connections": an object keyed by source node name, each value {"main": [[{"node": "<target name>", "type": "main", "index": 0}]]}
The first node must be an "n8n-nodes-base.webhook" node. Every connection must reference existing node names.
Never include credentials or API keys; reference them as {{ $env.NAME }}.`

// GenerateWorkflowRequest asks a model to design a workflow from wizard input.
type GenerateWorkflowRequest struct {
	UserID uuid.UUID
	Config models.AgentConfig
}

// GenerateWorkflowResult is the stored workflow and where its document came from.
type GenerateWorkflowResult struct {
	Workflow *models.Workflow
	Source   string // SourceLLM or SourceFallback
}

// AIWorkflowService builds workflows by prompting a model, falling back to a
// minimal template whenever the model is unavailable or its output unusable.
type AIWorkflowService interface {
	Generate(ctx context.Context, req GenerateWorkflowRequest) (*GenerateWorkflowResult, error)
}

type aiWorkflowService struct {
	*workflowRecorder
	entitlement EntitlementService
	generator   *templates.Generator
	client      llm.LLMClient // nil when no provider is configured
	breaker     *llm.CircuitBreaker
	llmConfig   *config.LLMConfig
}

// NewAIWorkflowService creates the AI generation service. client may be nil.
func NewAIWorkflowService(
	workflowRepo repositories.WorkflowRepository,
	profileRepo repositories.ProfileRepository,
	usageLogRepo repositories.UsageLogRepository,
	entitlement EntitlementService,
	generator *templates.Generator,
	client llm.LLMClient,
	breaker *llm.CircuitBreaker,
	llmConfig *config.LLMConfig,
	n8n *config.N8NConfig,
	auditor *audit.SecurityAuditor,
	logger *zap.Logger,
) AIWorkflowService {
	if breaker == nil {
		breaker = llm.NewCircuitBreaker(llm.DefaultCircuitBreakerConfig())
	}
	return &aiWorkflowService{
		workflowRecorder: &workflowRecorder{
			workflowRepo: workflowRepo,
			profileRepo:  profileRepo,
			usageLogRepo: usageLogRepo,
			n8n:          n8n,
			auditor:      auditor,
			logger:       logger.Named("ai-workflows"),
		},
		entitlement: entitlement,
		generator:   generator,
		client:      client,
		breaker:     breaker,
		llmConfig:   llmConfig,
	}
}

var _ AIWorkflowService = (*aiWorkflowService)(nil)

func (s *aiWorkflowService) Generate(ctx context.Context, req GenerateWorkflowRequest) (*GenerateWorkflowResult, error) {
	agentConfig := req.Config
	agentType, err := parseAgentType(string(agentConfig.Type))
	if err != nil {
		return nil, err
	}
	agentConfig.Type = agentType

	if err := s.cleanDisplay(ctx, req.UserID,
		displayField{"name", &agentConfig.Name, MaxNameLength},
		displayField{"description", &agentConfig.Description, MaxDescriptionLength},
		displayField{"system_prompt", &agentConfig.SystemPrompt, MaxDescriptionLength},
	); err != nil {
		return nil, err
	}

	if _, err := s.entitlement.Check(ctx, req.UserID, agentType); err != nil {
		return nil, err
	}

	name, description := agentConfig.Name, agentConfig.Description
	if d, ok := templates.Defaults(agentType); ok {
		if name == "" {
			name = d.Name
		}
		if description == "" {
			description = d.Description
		}
	}

	w := s.newWorkflow(req.UserID, agentType, name, description, nil)
	doc, source := s.design(ctx, agentConfig, w.ID.String())
	w.Document = doc

	if err := s.persist(ctx, w); err != nil {
		return nil, err
	}

	s.recordUsage(ctx, req.UserID, models.UsageActionWorkflowGenerate+":"+source)

	s.logger.Info("Workflow generated",
		zap.String("workflow_id", w.ID.String()),
		zap.String("user_id", req.UserID.String()),
		zap.String("type", string(agentType)),
		zap.String("source", source))

	return &GenerateWorkflowResult{Workflow: w, Source: source}, nil
}

// design asks the model for a document. It never fails: every problem
// results in the fallback document.
func (s *aiWorkflowService) design(ctx context.Context, agentConfig models.AgentConfig, webhookPath string) (*models.WorkflowDocument, string) {
	if s.client == nil {
		return s.generator.Fallback(webhookPath), SourceFallback
	}

	prompt, err := BuildWorkflowPrompt(agentConfig, webhookPath)
	if err != nil {
		s.logger.Error("Failed to build workflow prompt", zap.Error(err))
		return s.generator.Fallback(webhookPath), SourceFallback
	}

	callCtx := ctx
	if s.llmConfig != nil && s.llmConfig.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, time.Duration(s.llmConfig.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	result, err := s.breaker.Generate(callCtx, s.client, prompt, WorkflowSystemPrompt, s.temperature())
	if err != nil {
		if errors.Is(err, llm.ErrCircuitOpen) {
			s.logger.Warn("LLM circuit open, using fallback workflow")
		} else {
			s.logger.Error("LLM workflow generation failed, using fallback",
				zap.String("error_type", string(llm.GetErrorType(err))),
				zap.String("model", s.client.GetModel()),
				zap.Error(err))
		}
		return s.generator.Fallback(webhookPath), SourceFallback
	}

	decoded := s.generator.DecodeModelOutput(result.Content, webhookPath)
	if decoded.Fallback {
		s.logger.Warn("LLM output was not a usable workflow, using fallback",
			zap.String("reason", decoded.Reason),
			zap.Int("completion_tokens", result.CompletionTokens))
		return decoded.Document, SourceFallback
	}
	return decoded.Document, SourceLLM
}

func (s *aiWorkflowService) temperature() float64 {
	if s.llmConfig == nil {
		return 0.2
	}
	return s.llmConfig.Temperature
}

// BuildWorkflowPrompt renders the agent configuration for the model.
// webhookPath is the path the webhook node must listen on.
func BuildWorkflowPrompt(agentConfig models.AgentConfig, webhookPath string) (string, error) {
	configJSON, err := json.MarshalIndent(agentConfig, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal agent config: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Design an n8n workflow for a %s agent.\n", agentConfig.Type)
	fmt.Fprintf(&b, "The webhook node path must be %q.\n", webhookPath)
	if agentConfig.Model != "" {
		fmt.Fprintf(&b, "Call the model %q for completions.\n", agentConfig.Model)
	}
	if len(agentConfig.Tools) > 0 {
		fmt.Fprintf(&b, "The agent may call these tools: %s.\n", strings.Join(agentConfig.Tools, ", "))
	}
	if len(agentConfig.KnowledgeSources) > 0 {
		fmt.Fprintf(&b, "Ground answers in these knowledge sources: %s.\n", strings.Join(agentConfig.KnowledgeSources, ", "))
	}
	b.WriteString("\nAgent configuration:\n")
	b.Write(configJSON)
	return b.String(), nil
}
