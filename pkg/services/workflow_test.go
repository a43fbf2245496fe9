package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/agentforge-io/agent-builder/pkg/apperrors"
	"github.com/agentforge-io/agent-builder/pkg/audit"
	"github.com/agentforge-io/agent-builder/pkg/config"
	"github.com/agentforge-io/agent-builder/pkg/models"
	"github.com/agentforge-io/agent-builder/pkg/templates"
)

type workflowFixture struct {
	svc       WorkflowService
	workflows *memWorkflowRepository
	profiles  *memProfileRepository
	logs      *memUsageLogRepository
	userID    uuid.UUID
}

func newWorkflowFixture(t *testing.T, role models.Role, maxUsage int) *workflowFixture {
	t.Helper()
	userID := uuid.New()
	f := &workflowFixture{
		workflows: newMemWorkflowRepository(),
		profiles:  newMemProfileRepository(&models.Profile{ID: userID, Role: role, MaxUsage: maxUsage}),
		logs:      &memUsageLogRepository{},
		userID:    userID,
	}
	logger := zap.NewNop()
	f.svc = NewWorkflowService(
		f.workflows, f.profiles, f.logs,
		NewEntitlementService(f.profiles, nil, logger),
		templates.NewGenerator("test-instance"),
		&config.N8NConfig{BaseURL: "https://n8n.example.com"},
		nil,
		logger,
	)
	return f
}

func TestWorkflowService_CreateChat(t *testing.T) {
	f := newWorkflowFixture(t, models.RoleFree, 50)

	w, err := f.svc.Create(context.Background(), CreateWorkflowRequest{UserID: f.userID, Type: "chat"})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, w.ID)
	assert.Equal(t, f.userID, w.UserID)
	assert.Equal(t, models.WorkflowStatusInactive, w.Status)
	assert.Equal(t, "https://n8n.example.com/webhook/"+w.ID.String(), w.WebhookURL)
	assert.Equal(t, 0, w.ExecutionCount)
	assert.Equal(t, "Chat Agent", w.Name)
	require.NotNil(t, w.Document)
	assert.Len(t, w.Document.Nodes, 6)
	assert.Equal(t, "test-instance", w.Document.Meta.InstanceID)

	assert.Equal(t, 1, f.profiles.profile(f.userID).UsageCount)
	assert.Equal(t, []string{"workflow.create:chat"}, f.logs.actions())

	stored, err := f.workflows.GetByID(context.Background(), f.userID, w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.Name, stored.Name)
}

func TestWorkflowService_CreateUsesOverrides(t *testing.T) {
	f := newWorkflowFixture(t, models.RoleFree, 50)

	w, err := f.svc.Create(context.Background(), CreateWorkflowRequest{
		UserID: f.userID, Type: "chat", Name: "  Support Bot ", Description: "Answers tickets",
	})
	require.NoError(t, err)
	assert.Equal(t, "Support Bot", w.Name)
	assert.Equal(t, "Answers tickets", w.Description)
}

func TestWorkflowService_CreatePlaceholderTypes(t *testing.T) {
	f := newWorkflowFixture(t, models.RoleEnterprise, 0)

	w, err := f.svc.Create(context.Background(), CreateWorkflowRequest{UserID: f.userID, Type: "supervisor"})
	require.NoError(t, err)
	require.NotNil(t, w.Document)
	assert.Empty(t, w.Document.Nodes)
	assert.NotNil(t, w.Document.Nodes)
	assert.Empty(t, w.Document.Connections)
	assert.NotNil(t, w.Document.Connections)
}

func TestWorkflowService_CreateRejections(t *testing.T) {
	tests := []struct {
		name    string
		role    models.Role
		req     func(userID uuid.UUID) CreateWorkflowRequest
		wantErr error
	}{
		{
			name:    "unknown type",
			role:    models.RoleEnterprise,
			req:     func(id uuid.UUID) CreateWorkflowRequest { return CreateWorkflowRequest{UserID: id, Type: "voice"} },
			wantErr: apperrors.ErrUnknownAgentType,
		},
		{
			name:    "plan does not include type",
			role:    models.RoleFree,
			req:     func(id uuid.UUID) CreateWorkflowRequest { return CreateWorkflowRequest{UserID: id, Type: "rag"} },
			wantErr: apperrors.ErrPlanUpgradeRequired,
		},
		{
			name: "unknown user",
			role: models.RoleFree,
			req: func(uuid.UUID) CreateWorkflowRequest {
				return CreateWorkflowRequest{UserID: uuid.New(), Type: "chat"}
			},
			wantErr: apperrors.ErrNotFound,
		},
		{
			name: "name too long",
			role: models.RoleFree,
			req: func(id uuid.UUID) CreateWorkflowRequest {
				return CreateWorkflowRequest{UserID: id, Type: "chat", Name: strings.Repeat("a", MaxNameLength+1)}
			},
			wantErr: apperrors.ErrInvalidInput,
		},
		{
			name: "script in description",
			role: models.RoleFree,
			req: func(id uuid.UUID) CreateWorkflowRequest {
				return CreateWorkflowRequest{UserID: id, Type: "chat", Description: "<script>alert(1)</script>"}
			},
			wantErr: apperrors.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWorkflowFixture(t, tt.role, 0)

			_, err := f.svc.Create(context.Background(), tt.req(f.userID))
			assert.ErrorIs(t, err, tt.wantErr)

			count, _ := f.workflows.CountByOwner(context.Background(), f.userID)
			assert.Zero(t, count, "nothing is stored on rejection")
			assert.Empty(t, f.logs.actions())
		})
	}
}

func TestWorkflowService_UnknownTypeRejectedBeforeLookup(t *testing.T) {
	f := newWorkflowFixture(t, models.RoleFree, 50)
	f.profiles.getErr = errors.New("must not be called")

	_, err := f.svc.Create(context.Background(), CreateWorkflowRequest{UserID: f.userID, Type: "bogus"})
	assert.ErrorIs(t, err, apperrors.ErrUnknownAgentType)
}

func TestWorkflowService_StoreFailure(t *testing.T) {
	f := newWorkflowFixture(t, models.RoleFree, 50)
	f.workflows.createErr = errors.New("disk full")

	_, err := f.svc.Create(context.Background(), CreateWorkflowRequest{UserID: f.userID, Type: "chat"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 0, f.profiles.profile(f.userID).UsageCount)
}

func TestWorkflowService_UsageFailuresDoNotFailCreate(t *testing.T) {
	f := newWorkflowFixture(t, models.RoleFree, 50)
	f.profiles.incrementErr = errors.New("timeout")
	f.logs.appendErr = errors.New("timeout")

	w, err := f.svc.Create(context.Background(), CreateWorkflowRequest{UserID: f.userID, Type: "chat"})
	require.NoError(t, err)
	assert.NotNil(t, w)
}

func TestWorkflowService_TwoCreatesProduceTwoRows(t *testing.T) {
	f := newWorkflowFixture(t, models.RoleFree, 50)
	req := CreateWorkflowRequest{UserID: f.userID, Type: "chat"}

	a, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)
	b, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	list, err := f.svc.List(context.Background(), f.userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
}

func TestWorkflowService_ListEmpty(t *testing.T) {
	f := newWorkflowFixture(t, models.RoleFree, 50)

	list, err := f.svc.List(context.Background(), f.userID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestWorkflowService_UpdateStatus(t *testing.T) {
	f := newWorkflowFixture(t, models.RoleFree, 50)
	w, err := f.svc.Create(context.Background(), CreateWorkflowRequest{UserID: f.userID, Type: "chat"})
	require.NoError(t, err)

	updated, err := f.svc.UpdateStatus(context.Background(), f.userID, w.ID, "active")
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusActive, updated.Status)

	_, err = f.svc.UpdateStatus(context.Background(), f.userID, w.ID, "paused")
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)

	_, err = f.svc.UpdateStatus(context.Background(), uuid.New(), w.ID, "active")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestWorkflowService_Delete(t *testing.T) {
	f := newWorkflowFixture(t, models.RoleFree, 50)
	w, err := f.svc.Create(context.Background(), CreateWorkflowRequest{UserID: f.userID, Type: "chat"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), f.userID, w.ID))
	_, err = f.svc.Get(context.Background(), f.userID, w.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, []string{"workflow.create:chat", "workflow.delete"}, f.logs.actions())

	assert.ErrorIs(t, f.svc.Delete(context.Background(), f.userID, w.ID), apperrors.ErrNotFound)
}

func TestWorkflowService_Preview(t *testing.T) {
	f := newWorkflowFixture(t, models.RoleFree, 50)

	generated, err := f.svc.Preview(context.Background(), "rag", "Docs Bot", "")
	require.NoError(t, err)
	assert.Equal(t, "Docs Bot", generated.Name)
	assert.Empty(t, generated.Document.Nodes)

	_, err = f.svc.Preview(context.Background(), "nope", "", "")
	assert.ErrorIs(t, err, apperrors.ErrUnknownAgentType)

	assert.Empty(t, f.logs.actions(), "preview is not accounted")
}

func TestWorkflowService_AuditsEveryFlaggedField(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	f := newWorkflowFixture(t, models.RoleFree, 50)
	f.svc = NewWorkflowService(
		f.workflows, f.profiles, f.logs,
		NewEntitlementService(f.profiles, nil, zap.NewNop()),
		templates.NewGenerator("test-instance"),
		&config.N8NConfig{BaseURL: "https://n8n.example.com"},
		audit.NewSecurityAuditor(zap.New(core)),
		zap.NewNop(),
	)

	_, err := f.svc.Create(context.Background(), CreateWorkflowRequest{
		UserID:      f.userID,
		Type:        "chat",
		Name:        "<script>alert(1)</script>",
		Description: "1' OR '1'='1",
	})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "name contains markup")

	flagged := map[string]string{}
	for _, entry := range logs.All() {
		ctx := entry.ContextMap()
		name, _ := ctx["field_name"].(string)
		kind, _ := ctx["kind"].(string)
		flagged[name] = kind
	}
	assert.Equal(t, map[string]string{"description": "sqli", "name": "xss"}, flagged)
}

func TestWorkflowService_SQLLikeTextIsStored(t *testing.T) {
	f := newWorkflowFixture(t, models.RoleFree, 50)

	w, err := f.svc.Create(context.Background(), CreateWorkflowRequest{
		UserID:      f.userID,
		Type:        "chat",
		Description: "1' OR '1'='1",
	})
	require.NoError(t, err)
	assert.Equal(t, "1' OR '1'='1", w.Description)
}
