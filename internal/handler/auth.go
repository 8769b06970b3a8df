package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/eugeneokaka/journal/internal/auth"
	"github.com/eugeneokaka/journal/internal/handler/dto"
	"github.com/eugeneokaka/journal/internal/middleware"
	"github.com/eugeneokaka/journal/internal/model"
	"github.com/eugeneokaka/journal/internal/service"
)

// AuthHandler handles the identity sync endpoint.
type AuthHandler struct {
	identities *service.IdentityService
	logger     *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(identities *service.IdentityService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		identities: identities,
		logger:     logger,
	}
}

// Sync handles POST /auth/sync. It provisions the local user for the external
// id in the body, or for the session subject when the body names none.
// Calling it again for the same id changes nothing.
func (h *AuthHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req dto.SyncRequest
	if !decodeBody(w, r, &req, true) {
		return
	}

	externalID := req.Subject()
	profile := model.Profile{FirstName: req.FirstName, LastName: req.LastName}

	if session := auth.IdentityFromContext(r.Context()); session != nil && externalID == "" {
		externalID = session.ExternalID
		if profile.FirstName == "" && profile.LastName == "" {
			profile = model.Profile{FirstName: session.FirstName, LastName: session.LastName}
		}
	}

	user, err := h.identities.Sync(r.Context(), externalID, profile)
	if err != nil {
		if errors.Is(err, service.ErrMissingExternalID) {
			writeError(w, http.StatusBadRequest, "MISSING_EXTERNAL_ID", "Missing externalId")
			return
		}
		h.logger.Error("user_sync_failed",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	h.logger.Info("user_synced",
		"user_id", user.ID,
		"user", auth.Fingerprint(user.ExternalID),
	)

	writeJSON(w, http.StatusOK, dto.SyncResponse{Success: true})
}
