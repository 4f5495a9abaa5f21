package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	perr "triagebot/internal/platform/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGitHub records calls and serves canned responses per "METHOD path"
type fakeGitHub struct {
	mu     sync.Mutex
	calls  []string
	bodies map[string]string
	routes map[string]func(w http.ResponseWriter, r *http.Request)
	t      *testing.T
}

func newFake(t *testing.T) *fakeGitHub {
	return &fakeGitHub{t: t, bodies: map[string]string{}, routes: map[string]func(http.ResponseWriter, *http.Request){}}
}

func (f *fakeGitHub) on(method, path string, status int, body string) {
	f.routes[method+" "+path] = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func (f *fakeGitHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	raw, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.bodies[key] = string(raw)
	f.mu.Unlock()

	assert.Equal(f.t, "Bearer tok", r.Header.Get("Authorization"))
	assert.Equal(f.t, "triagebot", r.Header.Get("User-Agent"))

	if h, ok := f.routes[key]; ok {
		h(w, r)
		return
	}
	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, `{"message":"Not Found"}`)
}

func (f *fakeGitHub) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newTestClient(t *testing.T, f *fakeGitHub) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	c, err := NewClient(Options{Token: "tok", Repository: "acme/widgets", BaseURL: srv.URL, RetryBase: time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestAddLabel_CreatesMissingLabelWithPaletteColor(t *testing.T) {
	f := newFake(t)
	f.on("POST", "/repos/acme/widgets/labels", http.StatusCreated, `{"name":"bug","color":"d73a4a"}`)
	f.on("POST", "/repos/acme/widgets/issues/7/labels", http.StatusOK, `[{"name":"bug"}]`)
	c := newTestClient(t, f)

	require.NoError(t, c.AddLabel(context.Background(), 7, "bug"))

	assert.Equal(t, []string{
		"GET /repos/acme/widgets/labels/bug",
		"POST /repos/acme/widgets/labels",
		"POST /repos/acme/widgets/issues/7/labels",
	}, f.recorded())

	var created map[string]any
	require.NoError(t, json.Unmarshal([]byte(f.bodies["POST /repos/acme/widgets/labels"]), &created))
	assert.Equal(t, "bug", created["name"])
	assert.Equal(t, "d73a4a", created["color"])
	assert.JSONEq(t, `["bug"]`, f.bodies["POST /repos/acme/widgets/issues/7/labels"])
}

func TestAddLabel_UnknownLabelGetsDefaultColor(t *testing.T) {
	f := newFake(t)
	f.on("POST", "/repos/acme/widgets/labels", http.StatusCreated, `{}`)
	f.on("POST", "/repos/acme/widgets/issues/1/labels", http.StatusOK, `[]`)
	c := newTestClient(t, f)

	require.NoError(t, c.AddLabel(context.Background(), 1, "performance"))

	var created map[string]any
	require.NoError(t, json.Unmarshal([]byte(f.bodies["POST /repos/acme/widgets/labels"]), &created))
	assert.Equal(t, DefaultLabelColor, created["color"])
}

func TestAddLabel_ExistingLabelSkipsCreate(t *testing.T) {
	f := newFake(t)
	f.on("GET", "/repos/acme/widgets/labels/needs-info", http.StatusOK, `{"name":"needs-info"}`)
	f.on("POST", "/repos/acme/widgets/issues/3/labels", http.StatusOK, `[]`)
	c := newTestClient(t, f)

	require.NoError(t, c.AddLabel(context.Background(), 3, "needs-info"))
	assert.Equal(t, []string{
		"GET /repos/acme/widgets/labels/needs-info",
		"POST /repos/acme/widgets/issues/3/labels",
	}, f.recorded())
}

func TestAddLabel_CreateRaceIsSuccess(t *testing.T) {
	for _, st := range []int{http.StatusConflict, http.StatusUnprocessableEntity} {
		t.Run(fmt.Sprint(st), func(t *testing.T) {
			f := newFake(t)
			f.on("POST", "/repos/acme/widgets/labels", st, `{"message":"Validation Failed","errors":[{"code":"already_exists"}]}`)
			f.on("POST", "/repos/acme/widgets/issues/9/labels", http.StatusOK, `[]`)
			c := newTestClient(t, f)

			require.NoError(t, c.AddLabel(context.Background(), 9, "question"))
			assert.Len(t, f.recorded(), 3)
		})
	}
}

func TestAddLabel_GetLabelFailureAborts(t *testing.T) {
	f := newFake(t)
	f.on("GET", "/repos/acme/widgets/labels/bug", http.StatusUnauthorized, `{"message":"Bad credentials"}`)
	c := newTestClient(t, f)

	err := c.AddLabel(context.Background(), 1, "bug")
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeUnauthorized))
	e, ok := perr.As(err)
	require.True(t, ok)
	assert.Equal(t, "github.get_label", e.Op())
	assert.Len(t, f.recorded(), 1)
}

func TestRemoveLabel(t *testing.T) {
	f := newFake(t)
	f.on("DELETE", "/repos/acme/widgets/issues/4/labels/bug", http.StatusOK, `[]`)
	f.on("DELETE", "/repos/acme/widgets/issues/4/labels/broken", http.StatusInternalServerError, `{"message":"boom"}`)
	c := newTestClient(t, f)
	ctx := context.Background()

	require.NoError(t, c.RemoveLabel(ctx, 4, "bug"))
	// unrouted path answers 404: already absent
	require.NoError(t, c.RemoveLabel(ctx, 4, "needs-info"))

	err := c.RemoveLabel(ctx, 4, "broken")
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeUnavailable))
}

func TestPostComment(t *testing.T) {
	f := newFake(t)
	f.on("POST", "/repos/acme/widgets/issues/5/comments", http.StatusCreated, `{"id":1}`)
	c := newTestClient(t, f)

	require.NoError(t, c.PostComment(context.Background(), 5, "hello **world**"))
	assert.JSONEq(t, `{"body":"hello **world**"}`, f.bodies["POST /repos/acme/widgets/issues/5/comments"])
}

func TestListLabels_Paginates(t *testing.T) {
	f := newFake(t)
	var srvURL string
	f.routes["GET /repos/acme/widgets/issues/2/labels"] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			_, _ = io.WriteString(w, `[{"name":"needs-info"}]`)
			return
		}
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		w.Header().Set("Link", fmt.Sprintf(`<%s/repos/acme/widgets/issues/2/labels?page=2&per_page=100>; rel="next"`, srvURL))
		_, _ = io.WriteString(w, `[{"name":"bug"},{"name":"needs-triage"}]`)
	}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	srvURL = srv.URL
	c, err := NewClient(Options{Token: "tok", Repository: "acme/widgets", BaseURL: srv.URL})
	require.NoError(t, err)
	defer c.Close()

	got, err := c.ListLabels(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"bug", "needs-triage", "needs-info"}, got)
}

func TestRepoConfig(t *testing.T) {
	f := newFake(t)
	content := base64.StdEncoding.EncodeToString([]byte("classification:\n  enabled: false\n"))
	f.on("GET", "/repos/acme/widgets/contents/.github/triagebot.yml", http.StatusOK,
		fmt.Sprintf(`{"type":"file","encoding":"base64","path":".github/triagebot.yml","content":%q}`, content))
	c := newTestClient(t, f)
	ctx := context.Background()

	data, found, err := c.RepoConfig(ctx, ".github/triagebot.yml")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "classification:\n  enabled: false\n", string(data))

	data, found, err = c.RepoConfig(ctx, ".github/missing.yml")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, data)
}

type flakyTransport struct {
	fails int
	calls atomic.Int32
	next  http.RoundTripper
}

func (f *flakyTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if int(f.calls.Add(1)) <= f.fails {
		return nil, errors.New("connection reset by peer")
	}
	return f.next.RoundTrip(r)
}

func TestTransportErrorsRetriedThenSurface(t *testing.T) {
	f := newFake(t)
	f.on("POST", "/repos/acme/widgets/issues/5/comments", http.StatusCreated, `{"id":1}`)
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	flaky := &flakyTransport{fails: 2, next: http.DefaultTransport}
	c, err := NewClient(Options{Token: "tok", Repository: "acme/widgets", BaseURL: srv.URL, RetryBase: time.Millisecond, Transport: flaky})
	require.NoError(t, err)
	require.NoError(t, c.PostComment(context.Background(), 5, "retry me"))
	assert.Equal(t, int32(3), flaky.calls.Load())
	assert.JSONEq(t, `{"body":"retry me"}`, f.bodies["POST /repos/acme/widgets/issues/5/comments"])

	dead := &flakyTransport{fails: 100, next: http.DefaultTransport}
	c, err = NewClient(Options{Token: "tok", Repository: "acme/widgets", BaseURL: srv.URL, RetryBase: time.Millisecond, MaxRetries: 2, Transport: dead})
	require.NoError(t, err)
	err = c.PostComment(context.Background(), 5, "never")
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeUnavailable))
	assert.Equal(t, int32(3), dead.calls.Load())
}

func TestNewClient_Validation(t *testing.T) {
	for _, repo := range []string{"", "acme", "acme/", "/widgets", "a/b/c"} {
		_, err := NewClient(Options{Token: "tok", Repository: repo})
		assert.True(t, perr.IsCode(err, perr.ErrorCodeConfig), "repo %q", repo)
	}
	_, err := NewClient(Options{Repository: "acme/widgets"})
	assert.True(t, perr.IsCode(err, perr.ErrorCodeConfig))

	c, err := NewClient(Options{Token: "tok", Repository: " acme/widgets "})
	require.NoError(t, err)
	assert.Equal(t, "acme", c.owner)
	assert.Equal(t, "widgets", c.repo)
}
