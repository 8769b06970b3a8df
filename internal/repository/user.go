package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/eugeneokaka/journal/internal/model"
)

// ErrUserNotFound is returned when no user maps to the external id.
var ErrUserNotFound = errors.New("user not found")

// UpsertUser inserts the user unless a row with the same external id exists,
// and returns the stored row either way.
//
// The conflict branch performs a no-op update so RETURNING yields the existing
// row; the whole operation is a single statement, so concurrent first logins
// for one identity resolve to one row through the unique constraint.
func (r *Repository) UpsertUser(ctx context.Context, user *model.User) (*model.User, error) {
	query := `
		INSERT INTO users (id, external_id, first_name, last_name, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (external_id) DO UPDATE SET external_id = EXCLUDED.external_id
		RETURNING id, external_id, first_name, last_name, created_at
	`

	var stored model.User
	err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.ExternalID,
		user.FirstName,
		user.LastName,
		user.CreatedAt,
	).Scan(
		&stored.ID,
		&stored.ExternalID,
		&stored.FirstName,
		&stored.LastName,
		&stored.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return &stored, nil
}

// GetUserByExternalID retrieves a user by identity provider subject.
func (r *Repository) GetUserByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	query := `
		SELECT id, external_id, first_name, last_name, created_at
		FROM users
		WHERE external_id = $1
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, externalID).Scan(
		&user.ID,
		&user.ExternalID,
		&user.FirstName,
		&user.LastName,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by external ID: %w", err)
	}

	return &user, nil
}
