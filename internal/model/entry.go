package model

import "time"

// DefaultEntryTitle replaces a blank title when an entry is created.
const DefaultEntryTitle = "Untitled"

// Entry is a single journal record owned by exactly one user.
type Entry struct {
	ID        string
	OwnerID   string
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOwnedBy reports whether userID owns the entry.
func (e *Entry) IsOwnedBy(userID string) bool {
	return userID != "" && e.OwnerID == userID
}
