package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/eugeneokaka/journal/internal/auth"
	"github.com/eugeneokaka/journal/internal/handler/dto"
	"github.com/eugeneokaka/journal/internal/middleware"
	"github.com/eugeneokaka/journal/internal/service"
)

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// writeServiceError maps service errors to HTTP responses. Unknown errors are
// logged with the request id and answered without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrEntryNotFound):
		writeError(w, http.StatusNotFound, "ENTRY_NOT_FOUND", "Entry not found")
	case errors.Is(err, service.ErrMissingTitle):
		writeError(w, http.StatusBadRequest, "MISSING_TITLE", "Title is required")
	case errors.Is(err, service.ErrMissingContent):
		writeError(w, http.StatusBadRequest, "MISSING_CONTENT", "Content is required")
	case errors.Is(err, service.ErrMissingExternalID):
		writeError(w, http.StatusBadRequest, "MISSING_EXTERNAL_ID", "Missing externalId")
	default:
		logger.Error("internal_error",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

// decodeBody reads a JSON body into dst and writes the 4xx response itself
// when it cannot. An empty body is allowed when allowEmpty is set.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
		return false
	}

	writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
	return false
}

// validateBody runs struct validation and writes a 400 with field details on
// failure.
func validateBody(w http.ResponseWriter, req any) bool {
	if err := dto.Validate(req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Code:    "VALIDATION_FAILED",
			Details: dto.ValidationDetails(err),
		})
		return false
	}
	return true
}

// requireCaller returns the session identity or writes a 401.
func requireCaller(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	caller := auth.IdentityFromContext(r.Context())
	if caller == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return nil, false
	}
	return caller, true
}
