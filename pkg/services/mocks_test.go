package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentforge-io/agent-builder/pkg/apperrors"
	"github.com/agentforge-io/agent-builder/pkg/models"
	"github.com/agentforge-io/agent-builder/pkg/repositories"
)

// memWorkflowRepository is an in-memory WorkflowRepository.
type memWorkflowRepository struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]*models.Workflow
	createErr error
	seq       int
}

func newMemWorkflowRepository() *memWorkflowRepository {
	return &memWorkflowRepository{rows: make(map[uuid.UUID]*models.Workflow)}
}

var _ repositories.WorkflowRepository = (*memWorkflowRepository)(nil)

func (m *memWorkflowRepository) Create(ctx context.Context, w *models.Workflow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	m.seq++
	w.CreatedAt = time.Date(2026, 1, 1, 0, 0, m.seq, 0, time.UTC)
	stored := *w
	m.rows[w.ID] = &stored
	return nil
}

func (m *memWorkflowRepository) ListByOwner(ctx context.Context, userID uuid.UUID) ([]*models.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Workflow, 0)
	for _, w := range m.rows {
		if w.UserID == userID {
			summary := *w
			summary.Document = nil
			out = append(out, &summary)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memWorkflowRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.rows[id]
	if !ok || w.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	copied := *w
	return &copied, nil
}

func (m *memWorkflowRepository) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status models.WorkflowStatus) (*models.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.rows[id]
	if !ok || w.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	w.Status = status
	copied := *w
	return &copied, nil
}

func (m *memWorkflowRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.rows[id]
	if !ok || w.UserID != userID {
		return apperrors.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memWorkflowRepository) CountByOwner(ctx context.Context, userID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, w := range m.rows {
		if w.UserID == userID {
			n++
		}
	}
	return n, nil
}

// memProfileRepository is an in-memory ProfileRepository.
type memProfileRepository struct {
	mu           sync.Mutex
	rows         map[uuid.UUID]*models.Profile
	getErr       error
	incrementErr error
}

func newMemProfileRepository(profiles ...*models.Profile) *memProfileRepository {
	m := &memProfileRepository{rows: make(map[uuid.UUID]*models.Profile)}
	for _, p := range profiles {
		m.rows[p.ID] = p
	}
	return m
}

var _ repositories.ProfileRepository = (*memProfileRepository)(nil)

func (m *memProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.rows[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *memProfileRepository) Create(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.rows[p.ID]; ok {
		copied := *existing
		return &copied, nil
	}
	stored := *p
	m.rows[p.ID] = &stored
	copied := stored
	return &copied, nil
}

func (m *memProfileRepository) UpdateRole(ctx context.Context, id uuid.UUID, role models.Role, maxUsage int) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	p.Role = role
	p.MaxUsage = maxUsage
	copied := *p
	return &copied, nil
}

func (m *memProfileRepository) IncrementUsage(ctx context.Context, id uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.incrementErr != nil {
		return 0, m.incrementErr
	}
	p, ok := m.rows[id]
	if !ok {
		return 0, apperrors.ErrNotFound
	}
	p.UsageCount++
	return p.UsageCount, nil
}

func (m *memProfileRepository) profile(id uuid.UUID) models.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.rows[id]
}

// memUsageLogRepository is an in-memory UsageLogRepository.
type memUsageLogRepository struct {
	mu        sync.Mutex
	entries   []*models.UsageLog
	appendErr error
}

var _ repositories.UsageLogRepository = (*memUsageLogRepository)(nil)

func (m *memUsageLogRepository) Append(ctx context.Context, userID uuid.UUID, action string) (*models.UsageLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return nil, m.appendErr
	}
	entry := &models.UsageLog{ID: uuid.New(), UserID: userID, Action: action, CreatedAt: time.Now()}
	m.entries = append(m.entries, entry)
	return entry, nil
}

func (m *memUsageLogRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.UsageLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.UsageLog, 0)
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if m.entries[i].UserID == userID {
			out = append(out, m.entries[i])
		}
	}
	return out, nil
}

func (m *memUsageLogRepository) CountByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.UserID == userID && !e.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *memUsageLogRepository) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Action
	}
	return out
}

// mockEntitlementService returns a fixed result.
type mockEntitlementService struct {
	profile *models.Profile
	err     error
	calls   int
}

func (m *mockEntitlementService) Check(ctx context.Context, userID uuid.UUID, agentType models.AgentType) (*models.Profile, error) {
	m.calls++
	return m.profile, m.err
}
