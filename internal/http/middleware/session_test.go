package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/wolfman30/salescoach-api/internal/session"
	"github.com/wolfman30/salescoach-api/pkg/logging"
)

func TestSessionIDUsesHeader(t *testing.T) {
	var seen string
	handler := SessionID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = session.IDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/chat/messages", nil)
	req.Header.Set(SessionHeader, "sess_1_abcdefghi")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != "sess_1_abcdefghi" {
		t.Fatalf("expected header session id in context, got %q", seen)
	}
	if got := rec.Header().Get(SessionHeader); got != "sess_1_abcdefghi" {
		t.Fatalf("expected session id echoed, got %q", got)
	}
}

func TestSessionIDGeneratesWhenMissing(t *testing.T) {
	var seen string
	now := func() time.Time { return time.UnixMilli(1700000000000) }
	handler := SessionID(now)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = session.IDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if !regexp.MustCompile(`^sess_1700000000000_[0-9a-z]{9}$`).MatchString(seen) {
		t.Fatalf("unexpected generated id %q", seen)
	}
	if rec.Header().Get(SessionHeader) != seen {
		t.Fatalf("expected generated id echoed")
	}
}

func TestRequestLoggerRecordsStatusAndSession(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter("info", &buf)
	handler := RequestLogger(logger)(SessionID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/roleplay/end", nil)
	req.Header.Set(SessionHeader, "sess_log")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON log line: %v", err)
	}
	if entry["status"] != float64(http.StatusTeapot) {
		t.Fatalf("expected status 418, got %v", entry["status"])
	}
	if entry["session_id"] != "sess_log" {
		t.Fatalf("expected session_id, got %v", entry["session_id"])
	}
	if entry["path"] != "/api/roleplay/end" {
		t.Fatalf("expected path, got %v", entry["path"])
	}
}
