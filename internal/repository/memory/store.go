// Package memory is an in-process implementation of the repository methods
// used by the service layer. It mirrors the PostgreSQL semantics closely
// enough for unit tests: unique external ids, owner scoping, newest-first
// ordering with an id tie-break.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/eugeneokaka/journal/internal/model"
	"github.com/eugeneokaka/journal/internal/repository"
)

// Store holds users and entries in maps guarded by a mutex.
type Store struct {
	mu       sync.Mutex
	users    map[string]*model.User // keyed by external id
	entries  map[string]*model.Entry
	failWith error
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:   make(map[string]*model.User),
		entries: make(map[string]*model.Entry),
	}
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

// UpsertUser stores the user unless its external id is taken and returns the
// stored row.
func (s *Store) UpsertUser(_ context.Context, user *model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}

	if existing, ok := s.users[user.ExternalID]; ok {
		cp := *existing
		return &cp, nil
	}

	stored := *user
	s.users[user.ExternalID] = &stored
	cp := stored
	return &cp, nil
}

// GetUserByExternalID returns repository.ErrUserNotFound for unknown ids.
func (s *Store) GetUserByExternalID(_ context.Context, externalID string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}

	user, ok := s.users[externalID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

// UserCount returns the number of stored users.
func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// CreateEntry stores a copy of entry.
func (s *Store) CreateEntry(_ context.Context, entry *model.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}

	cp := *entry
	s.entries[entry.ID] = &cp
	return nil
}

// GetEntry returns the entry only when ownerID owns it.
func (s *Store) GetEntry(_ context.Context, ownerID, id string) (*model.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}

	entry, ok := s.entries[id]
	if !ok || !entry.IsOwnedBy(ownerID) {
		return nil, repository.ErrEntryNotFound
	}
	cp := *entry
	return &cp, nil
}

// UpdateEntry overwrites title, content and updated_at of an owned entry.
func (s *Store) UpdateEntry(_ context.Context, entry *model.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}

	stored, ok := s.entries[entry.ID]
	if !ok || !stored.IsOwnedBy(entry.OwnerID) {
		return repository.ErrEntryNotFound
	}
	stored.Title = entry.Title
	stored.Content = entry.Content
	stored.UpdatedAt = entry.UpdatedAt
	return nil
}

// ListEntries applies the filter the same way the SQL query does.
func (s *Store) ListEntries(_ context.Context, filter repository.EntryFilter) ([]*model.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}

	needle := strings.ToLower(filter.TitleContains)
	out := make([]*model.Entry, 0)
	for _, entry := range s.entries {
		if entry.OwnerID != filter.OwnerID {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(entry.Title), needle) {
			continue
		}
		if filter.CreatedFrom != nil && entry.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedUntil != nil && !entry.CreatedAt.Before(*filter.CreatedUntil) {
			continue
		}
		cp := *entry
		out = append(out, &cp)
	}

	slices.SortFunc(out, func(a, b *model.Entry) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}
