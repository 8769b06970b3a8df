package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Hello(t *testing.T) {
	h := New("0.1.0")

	rec := httptest.NewRecorder()
	h.Hello(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var response map[string]string
	decodeJSON(t, rec, &response)
	assert.Equal(t, "journal", response["service"])
	assert.Equal(t, "0.1.0", response["version"])
}

func TestHandler_NotFound(t *testing.T) {
	h := New("0.1.0")

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nonexistent", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)

	var response map[string]string
	decodeJSON(t, rec, &response)
	assert.Equal(t, "resource not found", response["error"])
	assert.Equal(t, "NOT_FOUND", response["code"])
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := New("0.1.0")

	rec := httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	var response map[string]string
	decodeJSON(t, rec, &response)
	assert.Equal(t, "method not allowed", response["error"])
}

func TestMetricsHandler(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewMetricsHandler(nil).Metrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("delegates to exposition handler", func(t *testing.T) {
		exposition := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("journal_entries_created_total 1\n"))
		})
		rec := httptest.NewRecorder()
		NewMetricsHandler(exposition).Metrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "journal_entries_created_total 1\n", rec.Body.String())
	})
}
