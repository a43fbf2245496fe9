package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agentforge-io/agent-builder/pkg/apperrors"
	"github.com/agentforge-io/agent-builder/pkg/audit"
	"github.com/agentforge-io/agent-builder/pkg/config"
	"github.com/agentforge-io/agent-builder/pkg/models"
	"github.com/agentforge-io/agent-builder/pkg/repositories"
	"github.com/agentforge-io/agent-builder/pkg/validation"
)

// Display field limits, in characters.
const (
	MaxNameLength        = 120
	MaxDescriptionLength = 1000
)

// workflowRecorder persists generated workflows and accounts for them.
// Shared by the template and AI creation paths.
type workflowRecorder struct {
	workflowRepo repositories.WorkflowRepository
	profileRepo  repositories.ProfileRepository
	usageLogRepo repositories.UsageLogRepository
	n8n          *config.N8NConfig
	auditor      *audit.SecurityAuditor
	logger       *zap.Logger
}

// newWorkflow returns an inactive workflow with a fresh id and its webhook URL.
func (r *workflowRecorder) newWorkflow(userID uuid.UUID, agentType models.AgentType, name, description string, doc *models.WorkflowDocument) *models.Workflow {
	id := uuid.New()
	return &models.Workflow{
		ID:          id,
		UserID:      userID,
		Name:        name,
		Description: description,
		Type:        agentType,
		Status:      models.WorkflowStatusInactive,
		WebhookURL:  r.n8n.WebhookURL(id.String()),
		Document:    doc,
	}
}

func (r *workflowRecorder) persist(ctx context.Context, w *models.Workflow) error {
	if err := r.workflowRepo.Create(ctx, w); err != nil {
		return fmt.Errorf("failed to store workflow: %w", err)
	}
	return nil
}

// recordUsage increments the quota counter and appends an audit entry.
// The workflow row already exists, so failures are logged, not returned.
func (r *workflowRecorder) recordUsage(ctx context.Context, userID uuid.UUID, action string) {
	if _, err := r.profileRepo.IncrementUsage(ctx, userID); err != nil {
		r.logger.Error("Failed to increment usage count",
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}
	r.appendLog(ctx, userID, action)
}

func (r *workflowRecorder) appendLog(ctx context.Context, userID uuid.UUID, action string) {
	if _, err := r.usageLogRepo.Append(ctx, userID, action); err != nil {
		r.logger.Error("Failed to append usage log",
			zap.String("user_id", userID.String()),
			zap.String("action", action),
			zap.Error(err))
	}
}

// displayField is a user-supplied display value and its length cap.
type displayField struct {
	name   string
	value  *string
	maxLen int
}

// cleanDisplay trims, length-checks and screens display fields in place.
// Script injection is rejected; SQL-like text is only audited because
// every query is parameterized. Every flagged field is audited, not just
// the first.
func (r *workflowRecorder) cleanDisplay(ctx context.Context, userID uuid.UUID, fields ...displayField) error {
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		value := strings.TrimSpace(*f.value)
		if utf8.RuneCountInString(value) > f.maxLen {
			return fmt.Errorf("%w: %s exceeds %d characters", apperrors.ErrInvalidInput, f.name, f.maxLen)
		}
		*f.value = value
		values[f.name] = value
	}

	var rejected error
	for _, result := range validation.CheckFields(values) {
		r.auditor.LogInjectionAttempt(ctx, userID.String(), audit.InjectionDetails{
			FieldName:   result.FieldName,
			FieldValue:  values[result.FieldName],
			Kind:        result.Kind,
			Fingerprint: result.Fingerprint,
		})
		if result.Kind == validation.KindXSS && rejected == nil {
			rejected = fmt.Errorf("%w: %s contains markup that is not allowed", apperrors.ErrInvalidInput, result.FieldName)
		}
	}
	return rejected
}

// parseAgentType validates a raw agent type string.
func parseAgentType(raw string) (models.AgentType, error) {
	agentType, ok := models.ParseAgentType(strings.TrimSpace(raw))
	if !ok {
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownAgentType, raw)
	}
	return agentType, nil
}
