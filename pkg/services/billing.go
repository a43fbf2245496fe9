package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agentforge-io/agent-builder/pkg/apperrors"
	"github.com/agentforge-io/agent-builder/pkg/audit"
	"github.com/agentforge-io/agent-builder/pkg/config"
	"github.com/agentforge-io/agent-builder/pkg/models"
	"github.com/agentforge-io/agent-builder/pkg/plans"
	"github.com/agentforge-io/agent-builder/pkg/repositories"
)

// Payment events the billing webhook acts on.
const (
	BillingEventChargeSuccess        = "charge.success"
	BillingEventSubscriptionCreate   = "subscription.create"
	BillingEventSubscriptionDisable  = "subscription.disable"
	BillingEventSubscriptionNotRenew = "subscription.not_renew"
)

// BillingEvent is the subset of a payment gateway webhook payload we read.
type BillingEvent struct {
	Event string `json:"event"`
	Data  struct {
		Plan struct {
			PlanCode string `json:"plan_code"`
		} `json:"plan"`
		Metadata struct {
			UserID string `json:"user_id"`
		} `json:"metadata"`
	} `json:"data"`
}

// BillingResult reports what a webhook delivery changed.
type BillingResult struct {
	Event   string      `json:"event"`
	UserID  *uuid.UUID  `json:"user_id,omitempty"`
	Role    models.Role `json:"role,omitempty"`
	Applied bool        `json:"applied"`
}

// BillingService applies payment gateway events to user plans.
type BillingService interface {
	// HandleWebhook verifies signature over body and applies the event.
	HandleWebhook(ctx context.Context, body []byte, signature string) (*BillingResult, error)
}

type billingService struct {
	profileRepo  repositories.ProfileRepository
	usageLogRepo repositories.UsageLogRepository
	config       *config.BillingConfig
	auditor      *audit.SecurityAuditor
	logger       *zap.Logger
}

// NewBillingService creates a billing service.
func NewBillingService(
	profileRepo repositories.ProfileRepository,
	usageLogRepo repositories.UsageLogRepository,
	cfg *config.BillingConfig,
	auditor *audit.SecurityAuditor,
	logger *zap.Logger,
) BillingService {
	return &billingService{
		profileRepo:  profileRepo,
		usageLogRepo: usageLogRepo,
		config:       cfg,
		auditor:      auditor,
		logger:       logger.Named("billing"),
	}
}

var _ BillingService = (*billingService)(nil)

// SignPayload returns the hex HMAC-SHA512 of body under secret.
func SignPayload(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature is the HMAC of body under secret.
// An empty secret never verifies.
func VerifySignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

func (s *billingService) HandleWebhook(ctx context.Context, body []byte, signature string) (*BillingResult, error) {
	if s.config.SecretKey == "" {
		s.logger.Error("Billing webhook received but no secret key is configured")
	}
	if !VerifySignature(s.config.SecretKey, body, signature) {
		s.auditor.LogSignatureFailure(ctx, peekEvent(body))
		return nil, apperrors.ErrInvalidSignature
	}

	var event BillingEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("%w: malformed webhook payload", apperrors.ErrInvalidInput)
	}
	result := &BillingResult{Event: event.Event}

	var role models.Role
	switch event.Event {
	case BillingEventChargeSuccess, BillingEventSubscriptionCreate:
		mapped, ok := s.config.PlanCodes[event.Data.Plan.PlanCode]
		if !ok {
			s.logger.Warn("Billing event for unmapped plan code, ignoring",
				zap.String("event", event.Event),
				zap.String("plan_code", event.Data.Plan.PlanCode))
			return result, nil
		}
		role = models.Role(mapped)
	case BillingEventSubscriptionDisable, BillingEventSubscriptionNotRenew:
		role = models.RoleFree
	default:
		s.logger.Debug("Ignoring billing event", zap.String("event", event.Event))
		return result, nil
	}

	userID, err := uuid.Parse(event.Data.Metadata.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: data.metadata.user_id must be a uuid", apperrors.ErrInvalidInput)
	}

	if err := s.applyRole(ctx, userID, role); err != nil {
		return nil, err
	}

	if _, err := s.usageLogRepo.Append(ctx, userID, models.UsageActionBillingPrefix+event.Event); err != nil {
		s.logger.Error("Failed to append billing usage log",
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}

	s.logger.Info("Applied billing event",
		zap.String("event", event.Event),
		zap.String("user_id", userID.String()),
		zap.String("role", string(role)))

	result.UserID = &userID
	result.Role = role
	result.Applied = true
	return result, nil
}

// applyRole sets role and the plan's default quota, creating the profile
// when payment arrives before the user has one.
func (s *billingService) applyRole(ctx context.Context, userID uuid.UUID, role models.Role) error {
	plan, ok := plans.Lookup(role)
	if !ok {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidRole, role)
	}

	_, err := s.profileRepo.UpdateRole(ctx, userID, plan.Role, plan.MaxUsage)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("failed to update plan: %w", err)
	}

	created, err := s.profileRepo.Create(ctx, &models.Profile{ID: userID, Role: plan.Role, MaxUsage: plan.MaxUsage})
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	// Lost a race with another creator; apply the role to their row.
	if created.Role != plan.Role || created.MaxUsage != plan.MaxUsage {
		if _, err := s.profileRepo.UpdateRole(ctx, userID, plan.Role, plan.MaxUsage); err != nil {
			return fmt.Errorf("failed to update plan: %w", err)
		}
	}
	return nil
}

// peekEvent extracts the event name for audit logs from an unverified body.
func peekEvent(body []byte) string {
	var e struct {
		Event string `json:"event"`
	}
	_ = json.Unmarshal(body, &e)
	return e.Event
}
