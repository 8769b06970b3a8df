package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/eugeneokaka/journal/internal/model"
)

// ErrEntryNotFound is returned when an entry does not exist or belongs to
// another user. The two cases are deliberately indistinguishable.
var ErrEntryNotFound = errors.New("entry not found")

// EntryFilter scopes and narrows an entry listing.
type EntryFilter struct {
	OwnerID string
	// Limit caps the number of rows; zero or negative means unbounded.
	Limit int
	// TitleContains is a case-insensitive substring match on the title.
	TitleContains string
	// CreatedFrom is inclusive.
	CreatedFrom *time.Time
	// CreatedUntil is exclusive.
	CreatedUntil *time.Time
}

const entryColumns = `id, owner_id, title, content, created_at, updated_at`

// CreateEntry inserts a new entry into the database.
func (r *Repository) CreateEntry(ctx context.Context, entry *model.Entry) error {
	query := `
		INSERT INTO entries (id, owner_id, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.OwnerID,
		entry.Title,
		entry.Content,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create entry: %w", err)
	}

	return nil
}

// GetEntry retrieves an entry by ID, scoped to its owner.
func (r *Repository) GetEntry(ctx context.Context, ownerID, id string) (*model.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE id = $1 AND owner_id = $2
	`

	entry, err := scanEntry(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	return entry, nil
}

// UpdateEntry writes title, content and updated_at, scoped to the owner.
func (r *Repository) UpdateEntry(ctx context.Context, entry *model.Entry) error {
	query := `
		UPDATE entries
		SET title = $3, content = $4, updated_at = $5
		WHERE id = $1 AND owner_id = $2
	`

	result, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.OwnerID,
		entry.Title,
		entry.Content,
		entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrEntryNotFound
	}

	return nil
}

// ListEntries returns the owner's entries, newest first.
func (r *Repository) ListEntries(ctx context.Context, filter EntryFilter) ([]*model.Entry, error) {
	query, args := buildListEntriesQuery(filter)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*model.Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	return entries, nil
}

// buildListEntriesQuery renders the owner-scoped listing query for a filter.
func buildListEntriesQuery(filter EntryFilter) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT " + entryColumns + " FROM entries WHERE owner_id = $1")
	args := []any{filter.OwnerID}

	if filter.TitleContains != "" {
		args = append(args, escapeLike(filter.TitleContains))
		fmt.Fprintf(&b, ` AND title ILIKE '%%' || $%d || '%%' ESCAPE '\'`, len(args))
	}

	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		fmt.Fprintf(&b, " AND created_at >= $%d", len(args))
	}

	if filter.CreatedUntil != nil {
		args = append(args, *filter.CreatedUntil)
		fmt.Fprintf(&b, " AND created_at < $%d", len(args))
	}

	// id breaks ties between equal timestamps so paging is stable.
	b.WriteString(" ORDER BY created_at DESC, id DESC")

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}

	return b.String(), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// scanEntry scans a single row into an Entry model.
func scanEntry(row pgx.Row) (*model.Entry, error) {
	var entry model.Entry
	err := row.Scan(
		&entry.ID,
		&entry.OwnerID,
		&entry.Title,
		&entry.Content,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
