package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	founderrors "git.home.luguber.info/inful/contractforge/internal/foundation/errors"
)

func newChain(buf *bytes.Buffer) func(http.Handler) http.Handler {
	logger := slog.New(slog.NewTextHandler(buf, nil))
	return Chain(logger, founderrors.NewHTTPErrorAdapter(logger))
}

func TestChainLogsRequests(t *testing.T) {
	var buf bytes.Buffer
	handler := newChain(&buf)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/download/abc", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rec.Code)
	}

	logged := buf.String()
	for _, want := range []string{"HTTP request", "method=GET", "path=/download/abc", "status=418"} {
		if !strings.Contains(logged, want) {
			t.Errorf("log output missing %q: %s", want, logged)
		}
	}
}

func TestChainRecoversPanics(t *testing.T) {
	var buf bytes.Buffer
	handler := newChain(&buf)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}

	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if payload["error"] != "internal server error" {
		t.Errorf("unexpected error payload: %v", payload)
	}
	if !strings.Contains(buf.String(), "HTTP handler panic") {
		t.Errorf("panic was not logged: %s", buf.String())
	}
}
