// Package testhelpers provides shared fixtures for agent-builder tests.
package testhelpers

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/agentforge-io/agent-builder/pkg/database"
	"github.com/agentforge-io/agent-builder/pkg/models"
)

// PostgresImage is the database image used by integration tests.
const PostgresImage = "postgres:16-alpine"

// TestDB holds a shared migrated database container and connection pool.
type TestDB struct {
	Container testcontainers.Container
	DB        *database.DB
	ConnStr   string
}

var (
	sharedTestDB     *TestDB
	sharedTestDBOnce sync.Once
	sharedTestDBErr  error
)

// GetTestDB returns a shared PostgreSQL container with migrations applied.
// The container is created once and reused across all tests in the run.
func GetTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedTestDBOnce.Do(func() {
		sharedTestDB, sharedTestDBErr = setupTestDB()
	})

	if sharedTestDBErr != nil {
		t.Fatalf("Failed to setup test database: %v", sharedTestDBErr)
	}

	return sharedTestDB
}

// MigrationsPath returns the absolute path of the repository's migrations directory.
func MigrationsPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}

func setupTestDB() (*TestDB, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        PostgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "agent_builder_test",
			"POSTGRES_USER":     "builder",
			"POSTGRES_PASSWORD": "test_password",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	connStr := fmt.Sprintf("postgres://builder:test_password@%s:%s/agent_builder_test?sslmode=disable",
		host, port.Port())

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            connStr,
		MaxConnections: 5,
	}, zap.NewNop())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	if err := database.RunMigrationsWithPool(db.Pool, MigrationsPath(), zap.NewNop()); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &TestDB{
		Container: container,
		DB:        db,
		ConnStr:   connStr,
	}, nil
}

// CreateProfile inserts a profile with a fresh id and removes it (and its
// cascaded workflows and usage logs) when the test ends.
func (tdb *TestDB) CreateProfile(t *testing.T, role models.Role, maxUsage int) *models.Profile {
	t.Helper()
	ctx := context.Background()

	p := &models.Profile{ID: uuid.New(), Role: role, MaxUsage: maxUsage}
	err := tdb.DB.Pool.QueryRow(ctx,
		`INSERT INTO profiles (id, role, max_usage) VALUES ($1, $2, $3) RETURNING created_at`,
		p.ID, p.Role, p.MaxUsage,
	).Scan(&p.CreatedAt)
	if err != nil {
		t.Fatalf("failed to create test profile: %v", err)
	}

	t.Cleanup(func() {
		_, _ = tdb.DB.Pool.Exec(context.Background(), `DELETE FROM profiles WHERE id = $1`, p.ID)
	})
	return p
}
