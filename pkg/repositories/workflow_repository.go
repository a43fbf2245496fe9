package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/agentforge-io/agent-builder/pkg/apperrors"
	"github.com/agentforge-io/agent-builder/pkg/database"
	"github.com/agentforge-io/agent-builder/pkg/models"
)

// WorkflowRepository defines the interface for workflow record access.
// Every read and write is scoped to the owning user.
type WorkflowRepository interface {
	// Create inserts a workflow, assigning an id when w.ID is nil, and fills CreatedAt.
	Create(ctx context.Context, w *models.Workflow) error

	// ListByOwner returns the owner's workflows newest first, without documents.
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]*models.Workflow, error)

	// GetByID returns a workflow including its document.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Workflow, error)

	UpdateStatus(ctx context.Context, userID, id uuid.UUID, status models.WorkflowStatus) (*models.Workflow, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	CountByOwner(ctx context.Context, userID uuid.UUID) (int, error)
}

type workflowRepository struct {
	db database.Querier
}

// NewWorkflowRepository creates a workflow repository on db.
func NewWorkflowRepository(db database.Querier) WorkflowRepository {
	return &workflowRepository{db: db}
}

var _ WorkflowRepository = (*workflowRepository)(nil)

const workflowSummaryColumns = `id, user_id, name, description, type, status, webhook_url, execution_count, created_at`

func (r *workflowRepository) Create(ctx context.Context, w *models.Workflow) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}

	doc := w.Document
	if doc == nil {
		doc = &models.WorkflowDocument{}
	}
	doc.Normalize()
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow document: %w", err)
	}

	query := `
		INSERT INTO workflows (id, user_id, name, description, type, status, webhook_url, workflow_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING execution_count, created_at`

	err = r.db.QueryRow(ctx, query,
		w.ID, w.UserID, w.Name, w.Description, w.Type, w.Status, w.WebhookURL, docJSON,
	).Scan(&w.ExecutionCount, &w.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create workflow: %w", err)
	}

	return nil
}

func (r *workflowRepository) ListByOwner(ctx context.Context, userID uuid.UUID) ([]*models.Workflow, error) {
	query := `
		SELECT ` + workflowSummaryColumns + `
		FROM workflows
		WHERE user_id = $1
		ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	defer rows.Close()

	workflows := make([]*models.Workflow, 0)
	for rows.Next() {
		w, err := scanWorkflowSummary(rows)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	return workflows, nil
}

func (r *workflowRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Workflow, error) {
	query := `
		SELECT ` + workflowSummaryColumns + `, workflow_json
		FROM workflows
		WHERE id = $1 AND user_id = $2`

	w, err := scanWorkflowWithDocument(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}
	return w, nil
}

func (r *workflowRepository) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status models.WorkflowStatus) (*models.Workflow, error) {
	query := `
		UPDATE workflows
		SET status = $3, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + workflowSummaryColumns + `, workflow_json`

	w, err := scanWorkflowWithDocument(r.db.QueryRow(ctx, query, id, userID, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update workflow status: %w", err)
	}
	return w, nil
}

func (r *workflowRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM workflows WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *workflowRepository) CountByOwner(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM workflows WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count workflows: %w", err)
	}
	return count, nil
}

func scanWorkflowSummary(row pgx.Row) (*models.Workflow, error) {
	var w models.Workflow
	err := row.Scan(&w.ID, &w.UserID, &w.Name, &w.Description, &w.Type, &w.Status,
		&w.WebhookURL, &w.ExecutionCount, &w.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}
	return &w, nil
}

func scanWorkflowWithDocument(row pgx.Row) (*models.Workflow, error) {
	var w models.Workflow
	var docJSON []byte
	err := row.Scan(&w.ID, &w.UserID, &w.Name, &w.Description, &w.Type, &w.Status,
		&w.WebhookURL, &w.ExecutionCount, &w.CreatedAt, &docJSON)
	if err != nil {
		return nil, err
	}

	var doc models.WorkflowDocument
	if err := json.Unmarshal(docJSON, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow document: %w", err)
	}
	doc.Normalize()
	w.Document = &doc
	return &w, nil
}
