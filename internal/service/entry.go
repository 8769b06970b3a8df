package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/eugeneokaka/journal/internal/auth"
	"github.com/eugeneokaka/journal/internal/calendar"
	"github.com/eugeneokaka/journal/internal/metrics"
	"github.com/eugeneokaka/journal/internal/model"
	"github.com/eugeneokaka/journal/internal/repository"
)

// Entry errors.
var (
	ErrEntryNotFound  = errors.New("entry not found")
	ErrMissingTitle   = errors.New("title is required")
	ErrMissingContent = errors.New("content is required")
)

// EntryStore persists entries. Every read and write is scoped to an owner.
type EntryStore interface {
	CreateEntry(ctx context.Context, entry *model.Entry) error
	GetEntry(ctx context.Context, ownerID, id string) (*model.Entry, error)
	UpdateEntry(ctx context.Context, entry *model.Entry) error
	ListEntries(ctx context.Context, filter repository.EntryFilter) ([]*model.Entry, error)
}

// EntryService handles journal entry business logic.
type EntryService struct {
	store      EntryStore
	identities *IdentityService
	logger     *slog.Logger
	metrics    metrics.Recorder
	now        func() time.Time
	newID      func() string
}

// NewEntryService creates a new EntryService.
func NewEntryService(store EntryStore, identities *IdentityService, logger *slog.Logger, recorder metrics.Recorder) *EntryService {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &EntryService{
		store:      store,
		identities: identities,
		logger:     logger.With("component", "entries"),
		metrics:    recorder,
		now:        utcNow,
		newID:      func() string { return ulid.Make().String() },
	}
}

// CreateEntryInput defines input for creating an entry.
type CreateEntryInput struct {
	Title   string
	Content string
}

// Create stores a new entry for caller. A blank title becomes
// model.DefaultEntryTitle; content is required. The caller's local user is
// provisioned on the way in, so a missed sync does not block writing.
func (s *EntryService) Create(ctx context.Context, caller *auth.Identity, input CreateEntryInput) (*model.Entry, error) {
	if caller == nil || caller.ExternalID == "" {
		return nil, ErrUnauthenticated
	}
	if isBlank(input.Content) {
		return nil, ErrMissingContent
	}

	user, err := s.identities.EnsureUser(ctx, caller.ExternalID, model.Profile{
		FirstName: caller.FirstName,
		LastName:  caller.LastName,
	})
	if err != nil {
		return nil, err
	}

	title := input.Title
	if isBlank(title) {
		title = model.DefaultEntryTitle
	}

	now := s.now()
	entry := &model.Entry{
		ID:        s.newID(),
		OwnerID:   user.ID,
		Title:     title,
		Content:   input.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	s.metrics.IncEntryCreated()
	s.logger.Debug("entry created",
		slog.String("entry_id", entry.ID),
		slog.String("user", auth.Fingerprint(caller.ExternalID)),
	)

	return entry, nil
}

// Get returns one of the caller's entries. Entries owned by someone else are
// reported as ErrEntryNotFound.
func (s *EntryService) Get(ctx context.Context, caller *auth.Identity, id string) (*model.Entry, error) {
	return Authorize(ctx, s.identities, caller, func(ctx context.Context, user *model.User) (*model.Entry, error) {
		return s.getOwned(ctx, user.ID, id)
	})
}

// UpdateEntryInput defines input for replacing an entry's text.
type UpdateEntryInput struct {
	ID      string
	Title   string
	Content string
}

// Update replaces title and content of one of the caller's entries. Unlike
// Create, a blank title is rejected rather than defaulted.
func (s *EntryService) Update(ctx context.Context, caller *auth.Identity, input UpdateEntryInput) (*model.Entry, error) {
	if caller == nil || caller.ExternalID == "" {
		return nil, ErrUnauthenticated
	}
	if isBlank(input.Title) {
		return nil, ErrMissingTitle
	}
	if isBlank(input.Content) {
		return nil, ErrMissingContent
	}

	return Authorize(ctx, s.identities, caller, func(ctx context.Context, user *model.User) (*model.Entry, error) {
		entry, err := s.getOwned(ctx, user.ID, input.ID)
		if err != nil {
			return nil, err
		}

		entry.Title = input.Title
		entry.Content = input.Content
		entry.UpdatedAt = s.now()
		if !entry.UpdatedAt.After(entry.CreatedAt) {
			entry.UpdatedAt = entry.CreatedAt.Add(time.Microsecond)
		}

		if err := s.store.UpdateEntry(ctx, entry); err != nil {
			if errors.Is(err, repository.ErrEntryNotFound) {
				return nil, ErrEntryNotFound
			}
			return nil, fmt.Errorf("failed to update entry: %w", err)
		}

		s.metrics.IncEntryUpdated()
		return entry, nil
	})
}

// ListEntriesInput narrows a listing. Zero values disable each filter.
type ListEntriesInput struct {
	Limit int
	Query string
	// From is inclusive, Until exclusive.
	From  *time.Time
	Until *time.Time
}

// List returns the caller's entries, newest first. A caller that has never
// been provisioned simply has no entries.
func (s *EntryService) List(ctx context.Context, caller *auth.Identity, input ListEntriesInput) ([]*model.Entry, error) {
	entries, err := Authorize(ctx, s.identities, caller, func(ctx context.Context, user *model.User) ([]*model.Entry, error) {
		entries, err := s.store.ListEntries(ctx, repository.EntryFilter{
			OwnerID:       user.ID,
			Limit:         input.Limit,
			TitleContains: strings.TrimSpace(input.Query),
			CreatedFrom:   input.From,
			CreatedUntil:  input.Until,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list entries: %w", err)
		}
		return entries, nil
	})
	if errors.Is(err, ErrUserNotFound) {
		return []*model.Entry{}, nil
	}
	return entries, err
}

// WeekGroup is one week bucket with the entries created in it.
type WeekGroup struct {
	Week    calendar.Week
	Entries []*model.Entry
}

// Weeks groups the caller's entries of one month into week buckets. Every
// bucket is returned, including empty ones.
func (s *EntryService) Weeks(ctx context.Context, caller *auth.Identity, year int, month time.Month, loc *time.Location) ([]WeekGroup, error) {
	from, until := calendar.MonthRange(year, month, loc)

	entries, err := s.List(ctx, caller, ListEntriesInput{From: &from, Until: &until})
	if err != nil {
		return nil, err
	}

	weeks := calendar.WeeksOfMonth(year, month, loc)
	buckets := calendar.GroupByWeek(weeks, entries, func(e *model.Entry) time.Time { return e.CreatedAt })

	groups := make([]WeekGroup, len(weeks))
	for i, w := range weeks {
		groups[i] = WeekGroup{Week: w, Entries: buckets[i]}
	}
	return groups, nil
}

func (s *EntryService) getOwned(ctx context.Context, ownerID, id string) (*model.Entry, error) {
	entry, err := s.store.GetEntry(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return entry, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
