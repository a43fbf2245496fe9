package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agentforge-io/agent-builder/pkg/models"
	"github.com/agentforge-io/agent-builder/pkg/plans"
	"github.com/agentforge-io/agent-builder/pkg/repositories"
)

// recentUsageLimit is how many log entries a summary carries.
const recentUsageLimit = 10

// UsageSummary is a user's quota position and recent activity.
type UsageSummary struct {
	Role          models.Role        `json:"role"`
	UsageCount    int                `json:"usage_count"`
	MaxUsage      int                `json:"max_usage"`
	Remaining     int                `json:"remaining"` // -1 means unlimited
	AllowedTypes  []models.AgentType `json:"allowed_types"`
	WorkflowCount int                `json:"workflow_count"`
	Last30Days    int                `json:"last_30_days"`
	Recent        []*models.UsageLog `json:"recent"`
}

// UsageService reports plan usage.
type UsageService interface {
	Summary(ctx context.Context, userID uuid.UUID) (*UsageSummary, error)
}

type usageService struct {
	profileRepo  repositories.ProfileRepository
	workflowRepo repositories.WorkflowRepository
	usageLogRepo repositories.UsageLogRepository
	now          func() time.Time
	logger       *zap.Logger
}

// NewUsageService creates a usage service.
func NewUsageService(
	profileRepo repositories.ProfileRepository,
	workflowRepo repositories.WorkflowRepository,
	usageLogRepo repositories.UsageLogRepository,
	logger *zap.Logger,
) UsageService {
	return &usageService{
		profileRepo:  profileRepo,
		workflowRepo: workflowRepo,
		usageLogRepo: usageLogRepo,
		now:          time.Now,
		logger:       logger.Named("usage"),
	}
}

var _ UsageService = (*usageService)(nil)

func (s *usageService) Summary(ctx context.Context, userID uuid.UUID) (*UsageSummary, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &UsageSummary{
		Role:         profile.Role,
		UsageCount:   profile.UsageCount,
		MaxUsage:     profile.MaxUsage,
		Remaining:    -1,
		AllowedTypes: []models.AgentType{},
	}
	if profile.MaxUsage > 0 {
		summary.Remaining = max(profile.MaxUsage-profile.UsageCount, 0)
	}
	if plan, ok := plans.Lookup(profile.Role); ok {
		summary.AllowedTypes = plan.AllowedTypes
	}

	if summary.WorkflowCount, err = s.workflowRepo.CountByOwner(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to count workflows: %w", err)
	}
	since := s.now().AddDate(0, 0, -30)
	if summary.Last30Days, err = s.usageLogRepo.CountByUserSince(ctx, userID, since); err != nil {
		return nil, fmt.Errorf("failed to count recent usage: %w", err)
	}
	if summary.Recent, err = s.usageLogRepo.ListByUser(ctx, userID, recentUsageLimit); err != nil {
		return nil, fmt.Errorf("failed to list recent usage: %w", err)
	}

	return summary, nil
}
