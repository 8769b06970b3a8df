package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name       string
		incoming   string
		wantReused bool
	}{
		{"no header generates uuid", "", false},
		{"uuid is reused", "3f2a9c1e-7b4d-4e8a-9c0f-1a2b3c4d5e6f", true},
		{"ulid-style id is reused", "01JB2Z7Q8K3M4N5P6R7S8T9V0W", true},
		{"dotted and colon ids are reused", "web:checkout.42_a", true},
		{"newline injection is replaced", "abc\nlevel=ERROR msg=forged", false},
		{"spaces are replaced", "my request", false},
		{"overlong id is replaced", strings.Repeat("a", 129), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/entries", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			got := rec.Header().Get(RequestIDHeader)
			if got != seen {
				t.Errorf("header %q and context %q disagree", got, seen)
			}
			if tt.wantReused {
				if got != tt.incoming {
					t.Errorf("request id = %q, want %q", got, tt.incoming)
				}
				return
			}
			if _, err := uuid.Parse(got); err != nil {
				t.Errorf("request id = %q, want a fresh uuid", got)
			}
		})
	}
}

func TestRequestID_TraceID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		want     string
	}{
		{"absent", "", ""},
		{"valid is passed through", "trace-0af7651916cd43dd", "trace-0af7651916cd43dd"},
		{"invalid is dropped", "trace\r\nX-Evil: 1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetTraceID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/entries", nil)
			if tt.incoming != "" {
				req.Header.Set(TraceIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if seen != tt.want {
				t.Errorf("trace id = %q, want %q", seen, tt.want)
			}
			if got := rec.Header().Get(TraceIDHeader); got != tt.want {
				t.Errorf("%s header = %q, want %q", TraceIDHeader, got, tt.want)
			}
		})
	}
}

func TestRequestID_ForgedIDNeverLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := RequestID(Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	req := httptest.NewRequest(http.MethodGet, "/entries", nil)
	req.Header.Set(RequestIDHeader, "forged id with spaces")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if strings.Contains(buf.String(), "forged") {
		t.Errorf("client-supplied id reached the log: %s", buf.String())
	}
	if id := rec.Header().Get(RequestIDHeader); !strings.Contains(buf.String(), `"request_id":"`+id+`"`) {
		t.Errorf("log line should carry generated id %q: %s", id, buf.String())
	}
}
