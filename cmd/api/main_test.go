package main

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eugeneokaka/journal/internal/auth"
	"github.com/eugeneokaka/journal/internal/config"
	"github.com/eugeneokaka/journal/internal/handler"
	"github.com/eugeneokaka/journal/internal/metrics"
	"github.com/eugeneokaka/journal/internal/repository/memory"
	"github.com/eugeneokaka/journal/internal/service"
)

const routerSecret = "router-test-secret"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return newTestRouterWith(t, nil)
}

// newTestRouterWith lets a test adjust the config before the router is built.
func newTestRouterWith(t *testing.T, tweak func(*config.Config)) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	recorder := metrics.NewPrometheus()
	identities := service.NewIdentityService(store, nil, logger, recorder)
	entries := service.NewEntryService(store, identities, logger, recorder)

	verifier, err := auth.NewVerifier(routerSecret, "", "", 0)
	require.NoError(t, err)

	cfg := &config.Config{
		AppEnv:             "development",
		AuthSessionCookie:  "__session",
		MaxRequestBodySize: 1 << 20,
	}
	if tweak != nil {
		tweak(cfg)
	}

	return setupRouter(routes{
		root:    handler.New("test"),
		health:  handler.NewHealthHandler(nil, nil, logger),
		metrics: handler.NewMetricsHandler(recorder.Handler()),
		auth:    handler.NewAuthHandler(identities, logger),
		entries: handler.NewEntryHandler(entries, logger, time.UTC),
	}, verifier, nil, recorder, cfg, logger)
}

func TestRouter_Wiring(t *testing.T) {
	router := newTestRouter(t)

	token, err := auth.IssueToken(routerSecret, auth.Identity{ExternalID: "user_ada"}, auth.TokenOptions{TTL: time.Hour})
	require.NoError(t, err)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		token      string
		wantStatus int
	}{
		{"root", http.MethodGet, "/", "", "", http.StatusOK},
		{"liveness", http.MethodGet, "/healthz", "", "", http.StatusOK},
		{"readiness", http.MethodGet, "/readyz", "", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", "", http.StatusOK},
		{"entries need session", http.MethodGet, "/entries", "", "", http.StatusUnauthorized},
		{"entries with session", http.MethodGet, "/entries", "", token, http.StatusOK},
		{"weeks with session", http.MethodGet, "/entries/weeks?month=2025-10", "", token, http.StatusOK},
		{"create with session", http.MethodPost, "/entry", `{"title":"Day 1","content":"hi"}`, token, http.StatusOK},
		{"sync without session", http.MethodPost, "/auth/sync", `{"externalId":"user_bob"}`, "", http.StatusOK},
		{"unknown path", http.MethodGet, "/links", "", "", http.StatusNotFound},
		{"wrong method", http.MethodDelete, "/entry", "", token, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}
}

func TestRouter_SessionCookie(t *testing.T) {
	router := newTestRouter(t)

	token, err := auth.IssueToken(routerSecret, auth.Identity{ExternalID: "user_ada"}, auth.TokenOptions{TTL: time.Hour})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/entries", nil)
	req.AddCookie(&http.Cookie{Name: "__session", Value: token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_CORSCredentials(t *testing.T) {
	const webOrigin = "https://journal.example.com"

	token, err := auth.IssueToken(routerSecret, auth.Identity{ExternalID: "user_ada"}, auth.TokenOptions{TTL: time.Hour})
	require.NoError(t, err)

	t.Run("configured origin may send the session cookie", func(t *testing.T) {
		router := newTestRouterWith(t, func(cfg *config.Config) {
			cfg.CORSAllowedOrigins = webOrigin
		})

		preflight := httptest.NewRequest(http.MethodOptions, "/entries", nil)
		preflight.Header.Set("Origin", webOrigin)
		preflight.Header.Set("Access-Control-Request-Method", http.MethodGet)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, preflight)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, webOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

		req := httptest.NewRequest(http.MethodGet, "/entries", nil)
		req.Header.Set("Origin", webOrigin)
		req.AddCookie(&http.Cookie{Name: "__session", Value: token})
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, webOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("no configured origins means no credentials", func(t *testing.T) {
		router := newTestRouter(t)

		req := httptest.NewRequest(http.MethodGet, "/entries", nil)
		req.Header.Set("Origin", webOrigin)
		req.AddCookie(&http.Cookie{Name: "__session", Value: token})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	})
}

func TestRedactURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"postgres://journal:s3cret@db:5432/journal", "postgres://journal@db:5432/journal"},
		{"redis://:s3cret@cache:6379/0", "redis://redacted@cache:6379/0"},
		{"redis://cache:6379", "redis://cache:6379"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, redactURL(tt.in))
	}
}

func TestSanitizeError(t *testing.T) {
	dsn := "postgres://journal:s3cret@db:5432/journal"
	err := errors.New("cannot connect to " + dsn + " (password=s3cret)")

	got := sanitizeError(err, dsn)

	assert.NotContains(t, got, "s3cret")
	assert.Contains(t, got, "password=redacted")
	assert.Empty(t, sanitizeError(nil, dsn))
}
