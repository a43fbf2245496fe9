package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agentforge-io/agent-builder/pkg/apperrors"
	"github.com/agentforge-io/agent-builder/pkg/audit"
	"github.com/agentforge-io/agent-builder/pkg/config"
	"github.com/agentforge-io/agent-builder/pkg/models"
	"github.com/agentforge-io/agent-builder/pkg/repositories"
	"github.com/agentforge-io/agent-builder/pkg/templates"
)

// CreateWorkflowRequest is a request to build a workflow from a template.
// Type is validated by the service so unknown values are rejected before
// any lookup.
type CreateWorkflowRequest struct {
	UserID      uuid.UUID
	Type        string
	Name        string
	Description string
}

// WorkflowService defines the interface for workflow operations.
type WorkflowService interface {
	// Create gates, generates and stores a workflow, returning it with its document.
	Create(ctx context.Context, req CreateWorkflowRequest) (*models.Workflow, error)
	List(ctx context.Context, userID uuid.UUID) ([]*models.Workflow, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.Workflow, error)
	UpdateStatus(ctx context.Context, userID, id uuid.UUID, status string) (*models.Workflow, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// Preview renders a template without gating or storing it.
	Preview(ctx context.Context, agentType, name, description string) (*templates.Generated, error)
}

type workflowService struct {
	*workflowRecorder
	entitlement EntitlementService
	generator   *templates.Generator
}

// NewWorkflowService creates a new workflow service with dependencies.
func NewWorkflowService(
	workflowRepo repositories.WorkflowRepository,
	profileRepo repositories.ProfileRepository,
	usageLogRepo repositories.UsageLogRepository,
	entitlement EntitlementService,
	generator *templates.Generator,
	n8n *config.N8NConfig,
	auditor *audit.SecurityAuditor,
	logger *zap.Logger,
) WorkflowService {
	named := logger.Named("workflows")
	return &workflowService{
		workflowRecorder: &workflowRecorder{
			workflowRepo: workflowRepo,
			profileRepo:  profileRepo,
			usageLogRepo: usageLogRepo,
			n8n:          n8n,
			auditor:      auditor,
			logger:       named,
		},
		entitlement: entitlement,
		generator:   generator,
	}
}

var _ WorkflowService = (*workflowService)(nil)

func (s *workflowService) Create(ctx context.Context, req CreateWorkflowRequest) (*models.Workflow, error) {
	agentType, err := parseAgentType(req.Type)
	if err != nil {
		return nil, err
	}
	name, description := req.Name, req.Description
	if err := s.cleanDisplay(ctx, req.UserID,
		displayField{"name", &name, MaxNameLength},
		displayField{"description", &description, MaxDescriptionLength},
	); err != nil {
		return nil, err
	}

	if _, err := s.entitlement.Check(ctx, req.UserID, agentType); err != nil {
		return nil, err
	}

	generated, err := s.generator.Generate(agentType, name, description)
	if err != nil {
		return nil, err
	}

	w := s.newWorkflow(req.UserID, agentType, generated.Name, generated.Description, generated.Document)
	if err := s.persist(ctx, w); err != nil {
		return nil, err
	}

	s.recordUsage(ctx, req.UserID, models.UsageActionWorkflowCreate+":"+string(agentType))

	s.logger.Info("Workflow created",
		zap.String("workflow_id", w.ID.String()),
		zap.String("user_id", req.UserID.String()),
		zap.String("type", string(agentType)))

	return w, nil
}

func (s *workflowService) List(ctx context.Context, userID uuid.UUID) ([]*models.Workflow, error) {
	workflows, err := s.workflowRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	return workflows, nil
}

func (s *workflowService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Workflow, error) {
	return s.workflowRepo.GetByID(ctx, userID, id)
}

func (s *workflowService) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status string) (*models.Workflow, error) {
	parsed, ok := models.ParseWorkflowStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidStatus, status)
	}
	return s.workflowRepo.UpdateStatus(ctx, userID, id, parsed)
}

func (s *workflowService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.workflowRepo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.appendLog(ctx, userID, models.UsageActionWorkflowDelete)
	return nil
}

func (s *workflowService) Preview(ctx context.Context, agentType, name, description string) (*templates.Generated, error) {
	parsed, err := parseAgentType(agentType)
	if err != nil {
		return nil, err
	}
	if err := s.cleanDisplay(ctx, uuid.Nil,
		displayField{"name", &name, MaxNameLength},
		displayField{"description", &description, MaxDescriptionLength},
	); err != nil {
		return nil, err
	}
	return s.generator.Generate(parsed, name, description)
}
