package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agentforge-io/agent-builder/pkg/database"
	"github.com/agentforge-io/agent-builder/pkg/models"
)

// DefaultUsageLogLimit caps ListByUser when limit is not positive.
const DefaultUsageLogLimit = 20

// UsageLogRepository is the append-only audit trail of user actions.
type UsageLogRepository interface {
	Append(ctx context.Context, userID uuid.UUID, action string) (*models.UsageLog, error)

	// ListByUser returns the most recent entries first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.UsageLog, error)

	CountByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
}

type usageLogRepository struct {
	db database.Querier
}

// NewUsageLogRepository creates a usage log repository on db.
func NewUsageLogRepository(db database.Querier) UsageLogRepository {
	return &usageLogRepository{db: db}
}

var _ UsageLogRepository = (*usageLogRepository)(nil)

func (r *usageLogRepository) Append(ctx context.Context, userID uuid.UUID, action string) (*models.UsageLog, error) {
	entry := &models.UsageLog{ID: uuid.New(), UserID: userID, Action: action}

	query := `
		INSERT INTO usage_logs (id, user_id, action)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	if err := r.db.QueryRow(ctx, query, entry.ID, entry.UserID, entry.Action).Scan(&entry.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to append usage log: %w", err)
	}
	return entry, nil
}

func (r *usageLogRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.UsageLog, error) {
	if limit <= 0 {
		limit = DefaultUsageLogLimit
	}

	query := `
		SELECT id, user_id, action, created_at
		FROM usage_logs
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*models.UsageLog, 0)
	for rows.Next() {
		var l models.UsageLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Action, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan usage log: %w", err)
		}
		logs = append(logs, &l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating usage logs: %w", err)
	}

	return logs, nil
}

func (r *usageLogRepository) CountByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM usage_logs WHERE user_id = $1 AND created_at >= $2`,
		userID, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count usage logs: %w", err)
	}
	return count, nil
}
