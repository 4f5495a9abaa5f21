package module

import (
	"context"
	"sync"
	"time"

	"triagebot/internal/adapters/github"
	"triagebot/internal/adapters/llm"
	"triagebot/internal/adapters/webhook"
	"triagebot/internal/core/botconf"
	"triagebot/internal/core/missing"
	perr "triagebot/internal/platform/errors"
	"triagebot/internal/platform/logger"
	"triagebot/internal/services/triage/domain"
	"triagebot/internal/services/triage/service"
)

// tokenSlack is how long before expiry a cached installation token is renewed
const tokenSlack = 5 * time.Minute

// Sessions opens one wired dispatcher per delivery. The detector and the
// installation token cache are shared; everything else is per session
type Sessions struct {
	opts     Options
	detector *missing.Detector
	app      *github.App
	log      *logger.Logger
	now      func() time.Time

	mu       sync.Mutex // guards installs, not the tokens inside
	installs map[int64]*installToken
}

// installToken is one installation's cached token. mu is held across a
// mint so concurrent deliveries for the same installation share it
type installToken struct {
	mu      sync.Mutex
	value   string
	expires time.Time
}

var _ domain.SessionPort = (*Sessions)(nil)

// NewSessions validates credentials up front. A nil detector uses the embedded alias table
func NewSessions(o Options, detector *missing.Detector) (*Sessions, error) {
	if detector == nil {
		detector = missing.New(nil)
	}
	s := &Sessions{
		opts:     o,
		detector: detector,
		log:      logger.Named("triage.session"),
		now:      time.Now,
		installs: map[int64]*installToken{},
	}
	if o.Token == "" {
		if !o.AppConfigured() {
			return nil, perr.WithField(perr.Configf("set GITHUB_TOKEN or TRIAGEBOT_APP_ID with a private key"), "GITHUB_TOKEN")
		}
		app, err := github.NewApp(github.AppOptions{
			AppID:         o.AppID,
			PrivateKeyPEM: o.AppPrivateKey,
			BaseURL:       o.BaseURL,
			Timeout:       o.Timeout,
		})
		if err != nil {
			return nil, err
		}
		s.app = app
	}
	return s, nil
}

// Open implements domain.SessionPort. A pinned configuration is checked
// before any API call; a repository configuration needs the client first
func (s *Sessions) Open(ctx context.Context, d domain.Delivery, kind webhook.Kind) (domain.RunnerPort, func(), error) {
	var (
		conf       botconf.Config
		classifier domain.Classifier
		err        error
	)
	if s.opts.Config != nil {
		conf = *s.opts.Config
		if classifier, err = s.classifier(conf, kind); err != nil {
			return nil, nil, err
		}
	}

	token, err := s.token(ctx, d)
	if err != nil {
		return nil, nil, err
	}
	client, err := github.NewClient(github.Options{
		Token:      token,
		Repository: d.Repository,
		BaseURL:    s.opts.BaseURL,
		UserAgent:  s.opts.UserAgent,
		Timeout:    s.opts.Timeout,
		MaxRetries: s.opts.MaxRetries,
		RetryBase:  s.opts.RetryBase,
	})
	if err != nil {
		return nil, nil, err
	}

	if s.opts.Config == nil {
		if conf, err = s.repoConfig(ctx, client); err != nil {
			client.Close()
			return nil, nil, err
		}
		if classifier, err = s.classifier(conf, kind); err != nil {
			client.Close()
			return nil, nil, err
		}
	}

	var tracker domain.Tracker = client
	if s.opts.DryRun {
		tracker = github.NewDryRun(client)
	}

	svc := service.New(service.Options{
		Tracker:    tracker,
		Detector:   s.detector.WithAliases(conf.Aliases),
		Classifier: classifier,
		Settings: domain.Settings{
			ClassificationEnabled: conf.ClassificationEnabled,
			Categories:            conf.Categories,
			RequiredFields:        conf.RequiredFields,
			FreshLabels:           s.opts.FreshLabels,
		},
	})
	return svc, client.Close, nil
}

// token returns the static token or an installation token for the delivery
func (s *Sessions) token(ctx context.Context, d domain.Delivery) (string, error) {
	if s.opts.Token != "" {
		return s.opts.Token, nil
	}
	id := d.InstallationID
	if id <= 0 {
		id = s.opts.InstallationID
	}

	in := s.installation(id)
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.value != "" && s.now().Add(tokenSlack).Before(in.expires) {
		return in.value, nil
	}
	tok, exp, err := s.app.InstallationToken(ctx, id)
	if err != nil {
		return "", err
	}
	in.value, in.expires = tok, exp
	s.log.Debug().Int64("installation", id).Time("expires", exp).Msg("installation token minted")
	return tok, nil
}

func (s *Sessions) installation(id int64) *installToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.installs[id]
	if !ok {
		in = &installToken{}
		s.installs[id] = in
	}
	return in
}

// repoConfig reads the repository file; absent means defaults
func (s *Sessions) repoConfig(ctx context.Context, client *github.Client) (botconf.Config, error) {
	data, found, err := client.RepoConfig(ctx, s.opts.ConfigPath)
	if err != nil {
		return botconf.Config{}, err
	}
	if !found {
		return botconf.Defaults(), nil
	}
	return botconf.Parse(data)
}

// classifier is required for issue events while classification is enabled;
// comment events only need it for /reclassify so a missing key disables it
func (s *Sessions) classifier(conf botconf.Config, kind webhook.Kind) (domain.Classifier, error) {
	if !conf.ClassificationEnabled {
		return nil, nil
	}
	if s.opts.OpenAIKey == "" {
		if kind == webhook.KindIssue {
			return nil, perr.WithField(perr.Configf("classification is enabled but no API key is set"), "OPENAI_API_KEY")
		}
		return nil, nil
	}
	c, err := llm.New(llm.Options{
		APIKey:  s.opts.OpenAIKey,
		BaseURL: s.opts.OpenAIBaseURL,
		Model:   s.opts.OpenAIModel,
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
