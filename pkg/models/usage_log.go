package models

import (
	"time"

	"github.com/google/uuid"
)

// UsageLog is an append-only audit entry for a user action.
type UsageLog struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

// Usage log actions written by the service layer.
const (
	UsageActionWorkflowCreate   = "workflow.create"
	UsageActionWorkflowGenerate = "workflow.generate"
	UsageActionWorkflowDelete   = "workflow.delete"
	UsageActionBillingPrefix    = "billing."
)
