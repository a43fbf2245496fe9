package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/agentforge-io/agent-builder/pkg/apperrors"
	"github.com/agentforge-io/agent-builder/pkg/database"
	"github.com/agentforge-io/agent-builder/pkg/models"
)

// ProfileRepository defines the interface for profile access.
type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)

	// Create inserts a profile. Inserting an existing id is a no-op that
	// returns the stored row.
	Create(ctx context.Context, p *models.Profile) (*models.Profile, error)

	// UpdateRole sets the role and quota ceiling; usage_count is kept.
	UpdateRole(ctx context.Context, id uuid.UUID, role models.Role, maxUsage int) (*models.Profile, error)

	// IncrementUsage adds one to usage_count and returns the new value.
	IncrementUsage(ctx context.Context, id uuid.UUID) (int, error)
}

type profileRepository struct {
	db database.Querier
}

// NewProfileRepository creates a profile repository on db.
func NewProfileRepository(db database.Querier) ProfileRepository {
	return &profileRepository{db: db}
}

var _ ProfileRepository = (*profileRepository)(nil)

func (r *profileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	query := `
		SELECT id, role, usage_count, max_usage, created_at
		FROM profiles
		WHERE id = $1`

	p, err := scanProfile(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

func (r *profileRepository) Create(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	query := `
		WITH inserted AS (
			INSERT INTO profiles (id, role, usage_count, max_usage)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO NOTHING
			RETURNING id, role, usage_count, max_usage, created_at
		)
		SELECT id, role, usage_count, max_usage, created_at FROM inserted
		UNION ALL
		SELECT id, role, usage_count, max_usage, created_at FROM profiles WHERE id = $1
		LIMIT 1`

	created, err := scanProfile(r.db.QueryRow(ctx, query, p.ID, p.Role, p.UsageCount, p.MaxUsage))
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return created, nil
}

func (r *profileRepository) UpdateRole(ctx context.Context, id uuid.UUID, role models.Role, maxUsage int) (*models.Profile, error) {
	query := `
		UPDATE profiles
		SET role = $2, max_usage = $3, updated_at = now()
		WHERE id = $1
		RETURNING id, role, usage_count, max_usage, created_at`

	p, err := scanProfile(r.db.QueryRow(ctx, query, id, role, maxUsage))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update profile role: %w", err)
	}
	return p, nil
}

func (r *profileRepository) IncrementUsage(ctx context.Context, id uuid.UUID) (int, error) {
	query := `
		UPDATE profiles
		SET usage_count = usage_count + 1, updated_at = now()
		WHERE id = $1
		RETURNING usage_count`

	var count int
	if err := r.db.QueryRow(ctx, query, id).Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrNotFound
		}
		return 0, fmt.Errorf("failed to increment usage: %w", err)
	}
	return count, nil
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	if err := row.Scan(&p.ID, &p.Role, &p.UsageCount, &p.MaxUsage, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
