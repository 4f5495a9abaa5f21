package module

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"triagebot/internal/adapters/webhook"
	modkit "triagebot/internal/modkit"
	"triagebot/internal/platform/config"
	perr "triagebot/internal/platform/errors"
	phttp "triagebot/internal/platform/net/http"
	"triagebot/internal/services/triage/domain"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSessions struct{ opened int }

func (s *stubSessions) Open(context.Context, domain.Delivery, webhook.Kind) (domain.RunnerPort, func(), error) {
	s.opened++
	return stubRunner{}, func() {}, nil
}

type stubRunner struct{}

func (stubRunner) Dispatch(context.Context, webhook.Event) (domain.Result, error) {
	return domain.Result{Outcome: domain.OutcomeHandled}, nil
}

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"GITHUB_TOKEN", "TRIAGEBOT_APP_ID", "TRIAGEBOT_APP_PRIVATE_KEY",
		"TRIAGEBOT_APP_PRIVATE_KEY_PATH", "TRIAGEBOT_WEBHOOK_SECRET",
	} {
		t.Setenv(k, "")
	}
}

func TestNew_WithoutCredentialsFails(t *testing.T) {
	clearEnv(t)

	_, err := New(modkit.Deps{Cfg: config.New()})
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeConfig))
}

func TestNew_MountsWebhookRoute(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRIAGEBOT_WEBHOOK_SECRET", "s3cret")

	sessions := &stubSessions{}
	m, err := New(modkit.Deps{Cfg: config.New()}, modkit.WithPorts(Ports{Sessions: sessions}))
	require.NoError(t, err)
	assert.Equal(t, "triage", m.Name())

	ports, ok := m.Ports().(Ports)
	require.True(t, ok)
	assert.Same(t, sessions, ports.Sessions)

	r := phttp.AdaptChi(chi.NewRouter())
	m.MountRoutes(r)

	body := `{"action":"opened","issue":{"number":1,"title":"t","body":"b"}}`
	post := func(sig string) int {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/github", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-GitHub-Event", "issues")
		if sig != "" {
			req.Header.Set(webhook.SignatureHeader, sig)
		}
		rec := httptest.NewRecorder()
		r.Mux().ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, post(""))
	assert.Equal(t, 0, sessions.opened)
	assert.Equal(t, http.StatusOK, post(webhook.Sign([]byte("s3cret"), []byte(body))))
	assert.Equal(t, 1, sessions.opened)

	form := httptest.NewRequest(http.MethodPost, "/webhooks/github", strings.NewReader("payload=%7B%7D"))
	form.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	form.Header.Set(webhook.SignatureHeader, webhook.Sign([]byte("s3cret"), []byte("payload=%7B%7D")))
	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, form)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Equal(t, 1, sessions.opened)
}

func TestFromConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "tok")
	t.Setenv("TRIAGEBOT_FRESH_LABELS", "1")
	t.Setenv("TRIAGEBOT_APP_PRIVATE_KEY", `-----BEGIN KEY-----\nabc\n-----END KEY-----`)
	t.Setenv("OPENAI_MODEL", "gpt-test")

	o, err := FromConfig(config.New())
	require.NoError(t, err)
	assert.Equal(t, "tok", o.Token)
	assert.True(t, o.FreshLabels)
	assert.Equal(t, ".github/triagebot.yml", o.ConfigPath)
	assert.Equal(t, "gpt-test", o.OpenAIModel)
	assert.Equal(t, "-----BEGIN KEY-----\nabc\n-----END KEY-----", string(o.AppPrivateKey))
	assert.False(t, o.AppConfigured(), "no app id")
}

func TestFromConfig_UnreadableKeyPath(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRIAGEBOT_APP_PRIVATE_KEY_PATH", t.TempDir()+"/missing.pem")

	_, err := FromConfig(config.New())
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeConfig))
}
