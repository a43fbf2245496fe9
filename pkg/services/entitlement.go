package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agentforge-io/agent-builder/pkg/apperrors"
	"github.com/agentforge-io/agent-builder/pkg/audit"
	"github.com/agentforge-io/agent-builder/pkg/models"
	"github.com/agentforge-io/agent-builder/pkg/plans"
	"github.com/agentforge-io/agent-builder/pkg/repositories"
)

// EntitlementService decides whether a user may create a given agent type.
type EntitlementService interface {
	// Check returns the user's profile when their plan allows agentType and
	// their quota is not exhausted. It never mutates state.
	Check(ctx context.Context, userID uuid.UUID, agentType models.AgentType) (*models.Profile, error)
}

type entitlementService struct {
	profileRepo repositories.ProfileRepository
	auditor     *audit.SecurityAuditor
	logger      *zap.Logger
}

// NewEntitlementService creates the entitlement gate.
func NewEntitlementService(
	profileRepo repositories.ProfileRepository,
	auditor *audit.SecurityAuditor,
	logger *zap.Logger,
) EntitlementService {
	return &entitlementService{
		profileRepo: profileRepo,
		auditor:     auditor,
		logger:      logger.Named("entitlement"),
	}
}

var _ EntitlementService = (*entitlementService)(nil)

func (s *entitlementService) Check(ctx context.Context, userID uuid.UUID, agentType models.AgentType) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, ok := plans.Lookup(profile.Role); !ok {
		s.logger.Warn("Profile has unknown role, denying",
			zap.String("user_id", userID.String()),
			zap.String("role", string(profile.Role)))
		s.auditor.LogEntitlementDenied(ctx, userID.String(), string(profile.Role), string(agentType))
		return nil, apperrors.ErrPlanUpgradeRequired
	}

	if !plans.Allows(profile.Role, agentType) {
		s.auditor.LogEntitlementDenied(ctx, userID.String(), string(profile.Role), string(agentType))
		return nil, fmt.Errorf("%w: %s plan does not include %s", apperrors.ErrPlanUpgradeRequired, profile.Role, agentType)
	}

	if profile.QuotaExhausted() {
		return nil, fmt.Errorf("%w: %d of %d used", apperrors.ErrUsageLimitReached, profile.UsageCount, profile.MaxUsage)
	}

	return profile, nil
}
