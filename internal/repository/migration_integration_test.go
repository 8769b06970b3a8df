//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eugeneokaka/journal/internal/testutil"
)

// ============================================================================
// Migration Integration Tests
// ============================================================================

func TestIntegrationMigrate_AppliesAllVersions(t *testing.T) {
	ctx, pool, dbURL := newMigrationTestEnv(t)

	if err := testutil.DropSchema(ctx, pool); err != nil {
		t.Fatalf("DropSchema failed: %v", err)
	}

	version, err := Migrate(ctx, dbURL)
	if err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if version != 2 {
		t.Errorf("version = %d, want 2", version)
	}

	for _, table := range []string{"users", "entries"} {
		exists, err := tableExists(ctx, pool, table)
		if err != nil {
			t.Fatalf("tableExists failed: %v", err)
		}
		if !exists {
			t.Errorf("Table %q should exist after migrations", table)
		}
	}

	// A second run is a no-op and reports the same version.
	version, err = Migrate(ctx, dbURL)
	if err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}
	if version != 2 {
		t.Errorf("version after rerun = %d, want 2", version)
	}
}

func TestIntegrationMigrate_EntriesTableSchema(t *testing.T) {
	ctx, pool, _ := newMigrationTestEnv(t)

	if err := testutil.ResetSchema(ctx, pool); err != nil {
		t.Fatalf("ResetSchema failed: %v", err)
	}

	expectedColumns := []string{
		"id",
		"title",
		"content",
		"owner_id",
		"created_at",
		"updated_at",
	}

	for _, col := range expectedColumns {
		t.Run(col, func(t *testing.T) {
			exists, err := columnExists(ctx, pool, "entries", col)
			if err != nil {
				t.Fatalf("columnExists failed: %v", err)
			}
			if !exists {
				t.Errorf("Column %q should exist in entries table", col)
			}
		})
	}
}

func TestIntegrationMigrate_Constraints(t *testing.T) {
	ctx, pool, _ := newMigrationTestEnv(t)

	if err := testutil.ResetSchema(ctx, pool); err != nil {
		t.Fatalf("ResetSchema failed: %v", err)
	}

	_, err := pool.Exec(ctx, `
		INSERT INTO users (id, external_id) VALUES ('u1', 'ext-1'), ('u2', 'ext-1')
	`)
	if err == nil {
		t.Error("Expected unique violation for duplicate external_id")
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO entries (id, title, content, owner_id, created_at, updated_at)
		VALUES ('e1', 'Title', 'body', 'missing-user', NOW(), NOW())
	`)
	if err == nil {
		t.Error("Expected foreign key violation for unknown owner")
	}

	if _, err := pool.Exec(ctx, `INSERT INTO users (id, external_id) VALUES ('u3', 'ext-3')`); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	_, err = pool.Exec(ctx, `
		INSERT INTO entries (id, title, content, owner_id, created_at, updated_at)
		VALUES ('e2', '', 'body', 'u3', NOW(), NOW())
	`)
	if err == nil {
		t.Error("Expected check constraint violation for empty title")
	}
}

// ============================================================================
// Helper Functions
// ============================================================================

func tableExists(ctx context.Context, pool *pgxpool.Pool, tableName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)
	`, tableName).Scan(&exists)
	return exists, err
}

func columnExists(ctx context.Context, pool *pgxpool.Pool, tableName, columnName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.columns
			WHERE table_schema = 'public'
			AND table_name = $1
			AND column_name = $2
		)
	`, tableName, columnName).Scan(&exists)
	return exists, err
}

// ============================================================================
// Test Environment Setup
// ============================================================================

func newMigrationTestEnv(t *testing.T) (context.Context, *pgxpool.Pool, string) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	unlock, err := testutil.AcquireDBLock(ctx, pool)
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	return ctx, pool, dbURL
}
