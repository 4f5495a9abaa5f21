package module

import (
	"os"
	"strings"
	"time"

	"triagebot/internal/core/botconf"
	"triagebot/internal/platform/config"
	perr "triagebot/internal/platform/errors"
)

// Options controls how sessions authenticate and what they read
type Options struct {
	// WebhookSecret enables X-Hub-Signature-256 verification when set
	WebhookSecret string
	// ConfigPath is the repository file read per delivery
	ConfigPath string
	// Config pins the bot configuration and skips the repository read
	Config *botconf.Config

	FreshLabels bool
	DryRun      bool

	// GitHub client
	Token      string
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	RetryBase  time.Duration

	// GitHub App, used when Token is empty
	AppID          string
	AppPrivateKey  []byte
	InstallationID int64

	// classifier
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
}

// AppConfigured reports whether App credentials are present
func (o Options) AppConfigured() bool {
	return o.AppID != "" && len(o.AppPrivateKey) > 0
}

// FromConfig reads GITHUB_*, TRIAGEBOT_* and OPENAI_* values from env
func FromConfig(cfg config.Conf) (Options, error) {
	tc := cfg.Prefix("TRIAGEBOT_")
	o := Options{
		WebhookSecret:  tc.MayString("WEBHOOK_SECRET", ""),
		ConfigPath:     tc.MayString("CONFIG_PATH", botconf.DefaultPath),
		FreshLabels:    tc.MayBool("FRESH_LABELS", false),
		DryRun:         tc.MayBool("DRY_RUN", false),
		Token:          cfg.MayString("GITHUB_TOKEN", ""),
		BaseURL:        cfg.MayString("GITHUB_API_URL", ""),
		UserAgent:      tc.MayString("USER_AGENT", "triagebot"),
		Timeout:        tc.MayDuration("GITHUB_TIMEOUT", 15*time.Second),
		MaxRetries:     tc.MayInt("GITHUB_MAX_RETRIES", 3),
		RetryBase:      tc.MayDuration("GITHUB_RETRY_BASE", 500*time.Millisecond),
		AppID:          tc.MayString("APP_ID", ""),
		InstallationID: tc.MayInt64("APP_INSTALLATION_ID", 0),
		OpenAIKey:      cfg.MayString("OPENAI_API_KEY", ""),
		OpenAIBaseURL:  cfg.MayString("OPENAI_BASE_URL", ""),
		OpenAIModel:    cfg.MayString("OPENAI_MODEL", ""),
	}

	if pem := tc.MayString("APP_PRIVATE_KEY", ""); pem != "" {
		// env files often carry escaped newlines
		o.AppPrivateKey = []byte(strings.ReplaceAll(pem, `\n`, "\n"))
	} else if path := tc.MayString("APP_PRIVATE_KEY_PATH", ""); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Options{}, perr.WithField(perr.Wrapf(err, perr.ErrorCodeConfig, "read app private key"), "TRIAGEBOT_APP_PRIVATE_KEY_PATH")
		}
		o.AppPrivateKey = b
	}
	return o, nil
}
