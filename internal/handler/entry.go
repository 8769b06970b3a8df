package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eugeneokaka/journal/internal/handler/dto"
	"github.com/eugeneokaka/journal/internal/service"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// EntryHandler handles HTTP requests for journal entries.
type EntryHandler struct {
	svc        *service.EntryService
	logger     *slog.Logger
	defaultLoc *time.Location
	now        func() time.Time
}

// NewEntryHandler creates a new EntryHandler. defaultLoc is used when a
// request names no tz; nil means UTC.
func NewEntryHandler(svc *service.EntryService, logger *slog.Logger, defaultLoc *time.Location) *EntryHandler {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return &EntryHandler{
		svc:        svc,
		logger:     logger,
		defaultLoc: defaultLoc,
		now:        time.Now,
	}
}

// Create handles POST /entry.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req dto.CreateEntryRequest
	if !decodeBody(w, r, &req, false) || !validateBody(w, req) {
		return
	}

	entry, err := h.svc.Create(r.Context(), caller, service.CreateEntryInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("entry_created",
		"entry_id", entry.ID,
		"untitled", strings.TrimSpace(req.Title) == "",
	)

	writeJSON(w, http.StatusOK, dto.ToEntryResponse(entry))
}

// Get handles GET /entries/{id}.
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	entry, err := h.svc.Get(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToEntryResponse(entry))
}

// Update handles PATCH /entries/{id}.
func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req dto.UpdateEntryRequest
	if !decodeBody(w, r, &req, false) || !validateBody(w, req) {
		return
	}

	entry, err := h.svc.Update(r.Context(), caller, service.UpdateEntryInput{
		ID:      chi.URLParam(r, "id"),
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("entry_updated", "entry_id", entry.ID)

	writeJSON(w, http.StatusOK, dto.ToEntryResponse(entry))
}

// List handles GET /entries.
//
// Query parameters: limit (positive integer, otherwise ignored), q (title
// substring), from and to (YYYY-MM-DD, both inclusive) and tz (IANA zone the
// dates are read in).
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()

	loc, err := h.location(query.Get("tz"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_TIMEZONE", "Unknown time zone")
		return
	}

	input := service.ListEntriesInput{
		Limit: parseLimit(query.Get("limit")),
		Query: query.Get("q"),
	}

	if from := query.Get("from"); from != "" {
		t, err := time.ParseInLocation(dateLayout, from, loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_DATE", "from must be YYYY-MM-DD")
			return
		}
		input.From = &t
	}
	if to := query.Get("to"); to != "" {
		t, err := time.ParseInLocation(dateLayout, to, loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_DATE", "to must be YYYY-MM-DD")
			return
		}
		// Inclusive through the end of that day.
		until := t.AddDate(0, 0, 1)
		input.Until = &until
	}

	entries, err := h.svc.List(r.Context(), caller, input)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToEntryListResponse(entries))
}

// Weeks handles GET /entries/weeks?month=YYYY-MM&tz=Area/City.
// The month defaults to the current one in tz.
func (h *EntryHandler) Weeks(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()

	loc, err := h.location(query.Get("tz"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_TIMEZONE", "Unknown time zone")
		return
	}

	month := h.now().In(loc)
	if m := query.Get("month"); m != "" {
		month, err = time.ParseInLocation(monthLayout, m, loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_MONTH", "month must be YYYY-MM")
			return
		}
	}

	groups, err := h.svc.Weeks(r.Context(), caller, month.Year(), month.Month(), loc)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToWeekGroupResponses(groups))
}

func (h *EntryHandler) location(name string) (*time.Location, error) {
	if name == "" {
		return h.defaultLoc, nil
	}
	return time.LoadLocation(name)
}

// parseLimit returns a positive limit, or 0 (unbounded) for anything else.
func parseLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
