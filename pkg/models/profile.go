package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is a subscription tier.
type Role string

const (
	RoleFree       Role = "free"
	RolePro        Role = "pro"
	RoleBusiness   Role = "business"
	RoleEnterprise Role = "enterprise"
)

// Profile is a user's billing and quota state.
type Profile struct {
	ID         uuid.UUID `json:"id"`
	Role       Role      `json:"role"`
	UsageCount int       `json:"usage_count"`
	MaxUsage   int       `json:"max_usage"` // 0 means unlimited
	CreatedAt  time.Time `json:"created_at"`
}

// QuotaExhausted reports whether the profile has used its whole quota.
func (p *Profile) QuotaExhausted() bool {
	return p.MaxUsage > 0 && p.UsageCount >= p.MaxUsage
}
