//go:build integration
// +build integration

package storetest_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"bookstore-api/internal/infrastructure/database"
	"bookstore-api/internal/infrastructure/storetest"
)

// setupTestDB starts a PostgreSQL container and applies the schema.
func setupTestDB(t *testing.T) *database.PostgresDB {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("bookstore_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db := database.NewPostgresDB(&database.DBConfig{
		DSN:        connStr,
		MaxConns:   20,
		MaxRetries: 5,
		RetryDelay: 200 * time.Millisecond,
	})
	require.NoError(t, db.Connect(ctx))
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Migrate(ctx)
	require.NoError(t, err)
	return db
}

func TestPostgresConformance(t *testing.T) {
	db := setupTestDB(t)

	storetest.RunConformance(t, func(t *testing.T) storetest.Stores {
		require.NoError(t, db.Truncate(context.Background()))
		return storetest.PostgresStores(db.Pool)
	})
}
