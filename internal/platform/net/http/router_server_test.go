package http_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"triagebot/internal/platform/config"
	phttp "triagebot/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

func chiMux() *chi.Mux { return chi.NewRouter() }

func TestNewServer_AddrFromEnv(t *testing.T) {
	t.Setenv("TRIAGEBOT_HTTP_ADDR", "127.0.0.1:9999")
	optCalled := false
	srv := phttp.NewServer(config.New(), func(*chi.Mux) { optCalled = true })
	if !optCalled {
		t.Fatalf("expected NewServer option to be called")
	}
	if srv.Addr() != "127.0.0.1:9999" {
		t.Fatalf("addr %q", srv.Addr())
	}
}

func TestNewServer_DefaultAddr(t *testing.T) {
	t.Setenv("TRIAGEBOT_HTTP_ADDR", "")
	if got := phttp.NewServer(config.New()).Addr(); got != ":8080" {
		t.Fatalf("addr %q", got)
	}
}

func TestRouter_GroupRouteAndUse(t *testing.T) {
	srv := phttp.NewServer(config.New())
	r := srv.Router()

	// middleware must be registered before routes
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-MW", "yes")
			next.ServeHTTP(w, req)
		})
	})
	r.Group(func(gr phttp.Router) {
		gr.Get("/group/ping", func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "pong") })
	})
	r.Route("/webhooks", func(sub phttp.Router) {
		sub.Post("/github", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusAccepted) })
	})
	r.Method(http.MethodHead, "/h", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	r.Handle("/raw", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "raw") }))

	cases := []struct {
		method, path string
		want         int
		body         string
	}{
		{"GET", "/group/ping", http.StatusOK, "pong"},
		{"POST", "/webhooks/github", http.StatusAccepted, ""},
		{"GET", "/webhooks/github", http.StatusMethodNotAllowed, ""},
		{"HEAD", "/h", http.StatusNoContent, ""},
		{"GET", "/raw", http.StatusOK, "raw"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		r.Mux().ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != tc.want {
			t.Fatalf("%s %s: code %d want %d", tc.method, tc.path, rec.Code, tc.want)
		}
		if tc.body != "" && rec.Body.String() != tc.body {
			t.Fatalf("%s %s: body %q", tc.method, tc.path, rec.Body.String())
		}
		if tc.want != http.StatusMethodNotAllowed && rec.Header().Get("X-MW") != "yes" {
			t.Fatalf("%s %s: middleware header missing", tc.method, tc.path)
		}
	}
}

func TestServer_ServeAndShutdown(t *testing.T) {
	srv := phttp.NewServer(config.New())
	srv.Router().Get("/ping", func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "pong") })

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- srv.Serve(context.Background(), ln) }()

	var resp *http.Response
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err = http.Get("http://" + ln.Addr().String() + "/ping")
		if err == nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if string(b) != "pong" {
		t.Fatalf("body %q", b)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("serve returned %v, want nil after shutdown", err)
	}
}
