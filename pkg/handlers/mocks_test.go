package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agentforge-io/agent-builder/pkg/apperrors"
	"github.com/agentforge-io/agent-builder/pkg/models"
	"github.com/agentforge-io/agent-builder/pkg/services"
	"github.com/agentforge-io/agent-builder/pkg/templates"
)

// mockWorkflowService is a mock implementation of services.WorkflowService.
type mockWorkflowService struct {
	workflows []*models.Workflow
	err       error

	createCalls  int
	lastCreate   services.CreateWorkflowRequest
	lastUserID   uuid.UUID
	lastStatus   string
	deletedID    uuid.UUID
	generator    *templates.Generator
	previewCalls int
}

var _ services.WorkflowService = (*mockWorkflowService)(nil)

func (m *mockWorkflowService) Create(ctx context.Context, req services.CreateWorkflowRequest) (*models.Workflow, error) {
	m.createCalls++
	m.lastCreate = req
	if m.err != nil {
		return nil, m.err
	}
	agentType, _ := models.ParseAgentType(req.Type)
	return &models.Workflow{
		ID:         uuid.New(),
		UserID:     req.UserID,
		Name:       req.Name,
		Type:       agentType,
		Status:     models.WorkflowStatusInactive,
		WebhookURL: "https://n8n.example.com/webhook/abc",
		Document:   &models.WorkflowDocument{Nodes: []models.WorkflowNode{}},
		CreatedAt:  time.Now(),
	}, nil
}

func (m *mockWorkflowService) List(ctx context.Context, userID uuid.UUID) ([]*models.Workflow, error) {
	m.lastUserID = userID
	return m.workflows, m.err
}

func (m *mockWorkflowService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Workflow, error) {
	m.lastUserID = userID
	if m.err != nil {
		return nil, m.err
	}
	for _, wf := range m.workflows {
		if wf.ID == id && wf.UserID == userID {
			return wf, nil
		}
	}
	return nil, fmt.Errorf("workflow %s: %w", id, apperrors.ErrNotFound)
}

func (m *mockWorkflowService) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status string) (*models.Workflow, error) {
	m.lastStatus = status
	if m.err != nil {
		return nil, m.err
	}
	parsed, ok := models.ParseWorkflowStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidStatus, status)
	}
	return &models.Workflow{ID: id, UserID: userID, Status: parsed}, nil
}

func (m *mockWorkflowService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	m.deletedID = id
	return m.err
}

func (m *mockWorkflowService) Preview(ctx context.Context, agentType, name, description string) (*templates.Generated, error) {
	m.previewCalls++
	parsed, ok := models.ParseAgentType(agentType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownAgentType, agentType)
	}
	gen := m.generator
	if gen == nil {
		gen = templates.NewGenerator("")
	}
	return gen.Generate(parsed, name, description)
}

// mockAIWorkflowService is a mock implementation of services.AIWorkflowService.
type mockAIWorkflowService struct {
	source  string
	err     error
	calls   int
	lastReq services.GenerateWorkflowRequest
}

var _ services.AIWorkflowService = (*mockAIWorkflowService)(nil)

func (m *mockAIWorkflowService) Generate(ctx context.Context, req services.GenerateWorkflowRequest) (*services.GenerateWorkflowResult, error) {
	m.calls++
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &services.GenerateWorkflowResult{
		Workflow: &models.Workflow{
			ID:     uuid.New(),
			UserID: req.UserID,
			Name:   req.Config.Name,
			Type:   req.Config.Type,
			Status: models.WorkflowStatusInactive,
		},
		Source: m.source,
	}, nil
}

// mockUsageService is a mock implementation of services.UsageService.
type mockUsageService struct {
	summary *services.UsageSummary
	err     error
}

var _ services.UsageService = (*mockUsageService)(nil)

func (m *mockUsageService) Summary(ctx context.Context, userID uuid.UUID) (*services.UsageSummary, error) {
	return m.summary, m.err
}

// mockBillingService is a mock implementation of services.BillingService.
type mockBillingService struct {
	result        *services.BillingResult
	err           error
	lastBody      []byte
	lastSignature string
}

var _ services.BillingService = (*mockBillingService)(nil)

func (m *mockBillingService) HandleWebhook(ctx context.Context, body []byte, signature string) (*services.BillingResult, error) {
	m.lastBody = body
	m.lastSignature = signature
	return m.result, m.err
}
