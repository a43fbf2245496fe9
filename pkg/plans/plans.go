// Package plans holds the subscription plan table: which agent types each
// role may build and the default usage quota that comes with it.
package plans

import (
	"github.com/agentforge-io/agent-builder/pkg/models"
)

// Plan describes what a subscription tier is entitled to.
type Plan struct {
	Role         models.Role        `json:"role"`
	DisplayName  string             `json:"display_name"`
	AllowedTypes []models.AgentType `json:"allowed_types"`
	MaxUsage     int                `json:"max_usage"` // 0 means unlimited
}

// table is ordered from lowest to highest tier.
var table = []Plan{
	{
		Role:         models.RoleFree,
		DisplayName:  "Free",
		AllowedTypes: []models.AgentType{models.AgentTypeChat},
		MaxUsage:     50,
	},
	{
		Role:         models.RolePro,
		DisplayName:  "Pro",
		AllowedTypes: []models.AgentType{models.AgentTypeChat, models.AgentTypeRAG},
		MaxUsage:     1000,
	},
	{
		Role:         models.RoleBusiness,
		DisplayName:  "Business",
		AllowedTypes: []models.AgentType{models.AgentTypeChat, models.AgentTypeRAG, models.AgentTypeTools},
		MaxUsage:     10000,
	},
	{
		Role:         models.RoleEnterprise,
		DisplayName:  "Enterprise",
		AllowedTypes: []models.AgentType{models.AgentTypeChat, models.AgentTypeRAG, models.AgentTypeTools, models.AgentTypeSupervisor},
		MaxUsage:     0,
	},
}

// All returns a copy of every plan, lowest tier first.
func All() []Plan {
	out := make([]Plan, len(table))
	for i, p := range table {
		p.AllowedTypes = append([]models.AgentType(nil), p.AllowedTypes...)
		out[i] = p
	}
	return out
}

// Roles returns all roles, lowest tier first.
func Roles() []models.Role {
	roles := make([]models.Role, len(table))
	for i, p := range table {
		roles[i] = p.Role
	}
	return roles
}

// Lookup returns the plan for role.
func Lookup(role models.Role) (Plan, bool) {
	for _, p := range table {
		if p.Role == role {
			p.AllowedTypes = append([]models.AgentType(nil), p.AllowedTypes...)
			return p, true
		}
	}
	return Plan{}, false
}

// IsValidRole checks if the given role has a plan.
func IsValidRole(role string) bool {
	_, ok := Lookup(models.Role(role))
	return ok
}

// Allows reports whether role may build agentType. Unknown roles are denied.
func Allows(role models.Role, agentType models.AgentType) bool {
	plan, ok := Lookup(role)
	if !ok {
		return false
	}
	for _, t := range plan.AllowedTypes {
		if t == agentType {
			return true
		}
	}
	return false
}
