package github

import (
	"context"
	"crypto/rsa"
	"net/http"
	"strings"
	"time"

	perr "triagebot/internal/platform/errors"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/go-github/v72/github"
)

// MaxJWTDuration is the longest app JWT lifetime GitHub accepts
const MaxJWTDuration = 10 * time.Minute

// AppOptions configures GitHub App authentication
type AppOptions struct {
	AppID         string
	PrivateKeyPEM []byte
	BaseURL       string
	Timeout       time.Duration
	Transport     http.RoundTripper
}

// App mints installation tokens for a GitHub App
type App struct {
	appID string
	key   *rsa.PrivateKey
	opts  AppOptions
	now   func() time.Time
}

// NewApp parses the private key (PKCS#1 or PKCS#8)
func NewApp(o AppOptions) (*App, error) {
	if strings.TrimSpace(o.AppID) == "" {
		return nil, perr.WithField(perr.Configf("app id cannot be empty"), "TRIAGEBOT_APP_ID")
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(o.PrivateKeyPEM)
	if err != nil {
		return nil, perr.WithField(perr.Wrapf(err, perr.ErrorCodeConfig, "parse app private key"), "TRIAGEBOT_APP_PRIVATE_KEY")
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return &App{appID: strings.TrimSpace(o.AppID), key: key, opts: o, now: time.Now}, nil
}

// JWT signs an RS256 app token. Issued-at is backdated a minute for clock drift
func (a *App) JWT(d time.Duration) (string, error) {
	if d <= 0 || d > MaxJWTDuration {
		return "", perr.InvalidArgf("jwt duration %v outside (0, %v]", d, MaxJWTDuration)
	}
	now := a.now()
	claims := jwt.RegisteredClaims{
		Issuer:    a.appID,
		IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
		ExpiresAt: jwt.NewNumericDate(now.Add(d)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(a.key)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "sign app jwt")
	}
	return signed, nil
}

// InstallationToken exchanges an app JWT for an installation access token
func (a *App) InstallationToken(ctx context.Context, installationID int64) (string, time.Time, error) {
	if installationID <= 0 {
		return "", time.Time{}, perr.WithField(perr.Configf("installation id must be positive"), "TRIAGEBOT_APP_INSTALLATION_ID")
	}
	signed, err := a.JWT(MaxJWTDuration - time.Minute)
	if err != nil {
		return "", time.Time{}, err
	}

	hc := &http.Client{Timeout: a.opts.Timeout, Transport: newRetryTransport(a.opts.Transport, defaultMaxRetry, defaultRetryBase)}
	defer hc.CloseIdleConnections()

	gh := github.NewClient(hc).WithAuthToken(signed)
	if err := setBaseURL(gh, a.opts.BaseURL); err != nil {
		return "", time.Time{}, err
	}

	tok, resp, err := gh.Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		code := perr.ErrorCodeUnavailable
		if st := status(resp); st != 0 {
			code = perr.CodeFromHTTPStatus(st)
		}
		return "", time.Time{}, perr.WithOp(perr.Wrapf(err, code, "github create installation token"), "github.installation_token")
	}
	return tok.GetToken(), tok.GetExpiresAt().Time, nil
}
