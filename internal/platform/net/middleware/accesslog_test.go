package middleware_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"triagebot/internal/platform/net/middleware"

	"github.com/rs/zerolog"
)

func accessLine(t *testing.T, opt middleware.AccessLogOptions, h http.HandlerFunc, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	opt.Log = &l

	rec := httptest.NewRecorder()
	middleware.AccessLogZerolog(opt)(h).ServeHTTP(rec, req)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	return rec, line
}

func TestAccessLog_RecordsDelivery(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/github", nil)
	req.Header.Set("X-GitHub-Event", "issues")
	req.Header.Set("X-GitHub-Delivery", "d-1")

	rec, line := accessLine(t, middleware.AccessLogOptions{}, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = io.WriteString(w, "ok")
	}, req)

	if rec.Code != http.StatusAccepted || rec.Body.String() != "ok" {
		t.Fatalf("response %d %q", rec.Code, rec.Body.String())
	}
	want := map[string]any{
		"level":           "info",
		"method":          "POST",
		"path":            "/webhooks/github",
		"status":          float64(202),
		"bytes":           float64(2),
		"github_event":    "issues",
		"github_delivery": "d-1",
	}
	for k, v := range want {
		if line[k] != v {
			t.Errorf("%s = %v, want %v", k, line[k], v)
		}
	}
}

func TestAccessLog_ImplicitOK(t *testing.T) {
	_, line := accessLine(t, middleware.AccessLogOptions{}, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "x")
	}, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if line["status"] != float64(200) {
		t.Fatalf("status = %v", line["status"])
	}
	if _, ok := line["github_event"]; ok {
		t.Fatal("github_event logged without header")
	}
}

func TestAccessLog_WarnLevels(t *testing.T) {
	cases := []struct {
		name string
		opt  middleware.AccessLogOptions
		h    http.HandlerFunc
	}{
		{"server error", middleware.AccessLogOptions{}, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}},
		{"slow", middleware.AccessLogOptions{Slow: time.Nanosecond}, func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(50 * time.Microsecond)
			w.WriteHeader(http.StatusOK)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, line := accessLine(t, tc.opt, tc.h, httptest.NewRequest(http.MethodPost, "/webhooks/github", nil))
			if line["level"] != "warn" {
				t.Fatalf("level = %v", line["level"])
			}
		})
	}
}
