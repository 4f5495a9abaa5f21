package module

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "triagebot/internal/platform/errors"
	phttp "triagebot/internal/platform/net/http"
	"triagebot/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
)

type Opener interface {
	Open(ctx context.Context) error
}

type opener struct{ calls *int }

func (o opener) Open(context.Context) error {
	*o.calls++
	return nil
}

// stub is a module that serves GET {path} with its name
type stub struct {
	name  string
	path  string
	ports any
}

func (s stub) Name() string   { return s.name }
func (s stub) Prefix() string { return "" }
func (s stub) Ports() any     { return s.ports }
func (s stub) MountRoutes(r phttp.Router) {
	if s.path == "" {
		return
	}
	r.Get(s.path, func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(s.name)) })
}

var _ Module = stub{}

func TestPortsOf(t *testing.T) {
	n := 0
	direct := opener{calls: &n}

	type bundle struct {
		Label  string
		Opener Opener
		hidden Opener
	}
	type hiddenOnly struct {
		hidden Opener
	}
	type nilField struct {
		Opener Opener
	}

	cases := []struct {
		name  string
		ports any
		want  bool
	}{
		{"nil ports", nil, false},
		{"direct", direct, true},
		{"struct field", bundle{Label: "x", Opener: direct}, true},
		{"pointer bundle", &bundle{Opener: direct}, true},
		{"nil pointer bundle", (*bundle)(nil), false},
		{"unexported field ignored", hiddenOnly{hidden: direct}, false},
		{"nil field skipped", nilField{}, false},
		{"scalar", 42, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := PortsOf[Opener](stub{name: "m", ports: tc.ports})
			if ok != tc.want {
				t.Fatalf("ok = %v, want %v", ok, tc.want)
			}
			if ok {
				_ = got.Open(context.Background())
			}
		})
	}
	if n != 3 {
		t.Fatalf("Open calls = %d, want 3", n)
	}

	if _, ok := PortsOf[Opener](nil); ok {
		t.Fatal("nil module should not yield ports")
	}
}

func TestMustPortsOf(t *testing.T) {
	n := 0
	m := stub{name: "triage", ports: struct{ Opener Opener }{opener{calls: &n}}}
	if err := MustPortsOf[Opener](m).Open(context.Background()); err != nil {
		t.Fatal(err)
	}

	defer func() {
		r := recover()
		msg, _ := r.(string)
		testkit.MustContain(t, msg, "module meta has no")
		testkit.MustContain(t, msg, "Opener")
	}()
	MustPortsOf[Opener](stub{name: "meta"})
}

func TestRegistry(t *testing.T) {
	n := 0
	reg := NewRegistry()
	if err := reg.Add(stub{name: "meta", path: "/healthz"}); err != nil {
		t.Fatal(err)
	}
	if err := reg.Add(stub{name: "triage", path: "/hook", ports: struct{ Opener Opener }{opener{calls: &n}}}); err != nil {
		t.Fatal(err)
	}

	if err := reg.Add(stub{name: "meta"}); !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("duplicate: want conflict, got %v", err)
	}
	if err := reg.Add(stub{}); !perr.IsCode(err, perr.ErrorCodeConfig) {
		t.Fatalf("unnamed: want config error, got %v", err)
	}
	if err := reg.Add(nil); !perr.IsCode(err, perr.ErrorCodeConfig) {
		t.Fatalf("nil: want config error, got %v", err)
	}

	if got := strings.Join(reg.Names(), ","); got != "meta,triage" {
		t.Fatalf("names = %s", got)
	}
	if _, ok := reg.Get("missing"); ok {
		t.Fatal("unexpected module")
	}

	if _, ok := PortsAs[Opener](reg, "triage"); !ok {
		t.Fatal("triage should expose an Opener")
	}
	if _, ok := PortsAs[Opener](reg, "meta"); ok {
		t.Fatal("meta has no ports")
	}
	if _, ok := PortsAs[Opener](reg, "nope"); ok {
		t.Fatal("unknown module")
	}

	r := phttp.AdaptChi(chi.NewRouter())
	reg.MountAll(r)
	for path, want := range map[string]string{"/healthz": "meta", "/hook": "triage"} {
		rec := httptest.NewRecorder()
		r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Body.String() != want {
			t.Fatalf("GET %s = %q, want %q", path, rec.Body.String(), want)
		}
	}
}
