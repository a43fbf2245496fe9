package tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentforge-io/agent-builder/pkg/models"
)

func TestRegisterPlanTools(t *testing.T) {
	s := newTestMCPServer()
	RegisterPlanTools(s)

	_, ok := listTools(t, s)["list_plans"]
	assert.True(t, ok, "list_plans not registered")
}

func TestListPlans_ReturnsEntitlementTable(t *testing.T) {
	s := newTestMCPServer()
	RegisterPlanTools(s)

	resp := callTool(t, s, "list_plans", nil)
	require.Nil(t, resp.Error)
	require.False(t, resp.Result.IsError)
	require.Len(t, resp.Result.Content, 1)

	var result listPlansResult
	require.NoError(t, json.Unmarshal([]byte(resp.Result.Content[0].Text), &result))
	require.Len(t, result.Plans, 4)

	byRole := make(map[models.Role][]models.AgentType)
	for _, p := range result.Plans {
		byRole[p.Role] = p.AllowedTypes
	}
	assert.Equal(t, []models.AgentType{models.AgentTypeChat}, byRole[models.RoleFree])
	assert.Contains(t, byRole[models.RolePro], models.AgentTypeRAG)
	assert.NotContains(t, byRole[models.RoleBusiness], models.AgentTypeSupervisor)
	assert.Contains(t, byRole[models.RoleEnterprise], models.AgentTypeSupervisor)
}
