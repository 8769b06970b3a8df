// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/eugeneokaka/journal/internal/model"
	"github.com/eugeneokaka/journal/internal/service"
)

// dateLayout renders week boundaries as calendar days.
const dateLayout = "2006-01-02"

// Length caps, counted in characters. Keep the validate tags below and the
// maxLength values in docs/api/openapi.yaml in step with these.
const (
	MaxTitleLength   = 200
	MaxContentLength = 100000
)

// CreateEntryRequest represents the request body for creating an entry.
// A missing or blank title is stored as "Untitled".
type CreateEntryRequest struct {
	Title   string `json:"title" validate:"max=200"`
	Content string `json:"content" validate:"notblank,max=100000"`
}

// UpdateEntryRequest represents the request body for updating an entry.
// Both fields are required; there is no placeholder title on update.
type UpdateEntryRequest struct {
	Title   string `json:"title" validate:"notblank,max=200"`
	Content string `json:"content" validate:"notblank,max=100000"`
}

// EntryResponse represents an entry in API responses.
type EntryResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WeekGroupResponse is one week bucket of a month view.
type WeekGroupResponse struct {
	Label   string          `json:"label"`
	Start   string          `json:"start"`
	End     string          `json:"end"`
	Entries []EntryResponse `json:"entries"`
}

// ToEntryResponse converts an Entry model to EntryResponse DTO.
func ToEntryResponse(entry *model.Entry) EntryResponse {
	return EntryResponse{
		ID:        entry.ID,
		Title:     entry.Title,
		Content:   entry.Content,
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}
}

// ToEntryListResponse converts entries to a JSON array; never null.
func ToEntryListResponse(entries []*model.Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, ToEntryResponse(entry))
	}
	return out
}

// ToWeekGroupResponses converts service week groups to DTOs.
func ToWeekGroupResponses(groups []service.WeekGroup) []WeekGroupResponse {
	out := make([]WeekGroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, WeekGroupResponse{
			Label:   g.Week.Label,
			Start:   g.Week.Start.Format(dateLayout),
			End:     g.Week.End.Format(dateLayout),
			Entries: ToEntryListResponse(g.Entries),
		})
	}
	return out
}
