// Package github is the issue-tracker client: labels, comments and the
// repository config file over the GitHub REST API
package github

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	perr "triagebot/internal/platform/errors"
	"triagebot/internal/platform/logger"
	"triagebot/internal/services/triage/domain"

	"github.com/google/go-github/v72/github"
)

const (
	baseURLDefault   = "https://api.github.com/"
	defaultTimeout   = 15 * time.Second
	defaultUA        = "triagebot"
	defaultMaxRetry  = 3
	defaultRetryBase = 500 * time.Millisecond
	perPage          = 100
)

// Options configures the Client
type Options struct {
	Token      string
	Repository string // owner/name
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration

	// Retry config for transport failures
	MaxRetries int
	RetryBase  time.Duration

	// Transport is the innermost round tripper (tests)
	Transport http.RoundTripper
}

// Client is a go-github backed issue tracker bound to one repository
type Client struct {
	gh    *github.Client
	http  *http.Client
	owner string
	repo  string
	log   logger.Logger
}

var _ domain.Tracker = (*Client)(nil)

// NewClient creates a Client. The HTTP pool lives until Close
func NewClient(o Options) (*Client, error) {
	owner, name, err := SplitRepository(o.Repository)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(o.Token) == "" {
		return nil, perr.WithField(perr.Configf("github token is required"), "GITHUB_TOKEN")
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}

	hc := &http.Client{
		Timeout:   o.Timeout,
		Transport: newRetryTransport(o.Transport, o.MaxRetries, o.RetryBase),
	}
	gh := github.NewClient(hc).WithAuthToken(o.Token)
	gh.UserAgent = o.UserAgent
	if err := setBaseURL(gh, o.BaseURL); err != nil {
		return nil, err
	}

	return &Client{
		gh:    gh,
		http:  hc,
		owner: owner,
		repo:  name,
		log:   *logger.Named("github"),
	}, nil
}

// SplitRepository validates "owner/name"
func SplitRepository(full string) (owner, name string, err error) {
	parts := strings.Split(strings.TrimSpace(full), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", perr.WithField(perr.Configf("invalid repository %q (want owner/repo)", full), "GITHUB_REPOSITORY")
	}
	return parts[0], parts[1], nil
}

func setBaseURL(gh *github.Client, base string) error {
	if base == "" {
		base = baseURLDefault
	}
	u, err := url.Parse(strings.TrimRight(base, "/") + "/")
	if err != nil {
		return perr.WithField(perr.Wrapf(err, perr.ErrorCodeConfig, "invalid github api url"), "GITHUB_API_URL")
	}
	gh.BaseURL = u
	return nil
}

// Close releases idle connections
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// ListLabels returns the live label names of an issue across all pages
func (c *Client) ListLabels(ctx context.Context, number int) ([]string, error) {
	var out []string
	opt := &github.ListOptions{PerPage: perPage}
	for {
		labels, resp, err := c.gh.Issues.ListLabelsByIssue(ctx, c.owner, c.repo, number, opt)
		if err != nil {
			return nil, c.fail("list_labels", resp, err)
		}
		for _, l := range labels {
			out = append(out, l.GetName())
		}
		if resp == nil || resp.NextPage == 0 {
			return out, nil
		}
		opt.Page = resp.NextPage
	}
}

// AddLabel ensures the repository label exists then applies it to the issue
func (c *Client) AddLabel(ctx context.Context, number int, label string) error {
	if err := c.ensureLabel(ctx, label); err != nil {
		return err
	}
	_, resp, err := c.gh.Issues.AddLabelsToIssue(ctx, c.owner, c.repo, number, []string{label})
	if err != nil {
		return c.fail("add_label", resp, err)
	}
	return nil
}

func (c *Client) ensureLabel(ctx context.Context, name string) error {
	_, resp, err := c.gh.Issues.GetLabel(ctx, c.owner, c.repo, name)
	if err == nil {
		return nil
	}
	if status(resp) != http.StatusNotFound {
		return c.fail("get_label", resp, err)
	}

	_, resp, err = c.gh.Issues.CreateLabel(ctx, c.owner, c.repo, labelFor(name))
	if err != nil {
		switch status(resp) {
		case http.StatusConflict, http.StatusUnprocessableEntity:
			// created concurrently by another run
			c.log.Debug().Str("label", name).Msg("label already exists")
			return nil
		}
		return c.fail("create_label", resp, err)
	}
	c.log.Info().Str("label", name).Msg("created repository label")
	return nil
}

// RemoveLabel removes a label from an issue; an absent label is success
func (c *Client) RemoveLabel(ctx context.Context, number int, label string) error {
	resp, err := c.gh.Issues.RemoveLabelForIssue(ctx, c.owner, c.repo, number, label)
	if err != nil {
		if status(resp) == http.StatusNotFound {
			return nil
		}
		return c.fail("remove_label", resp, err)
	}
	return nil
}

// PostComment creates a new issue comment
func (c *Client) PostComment(ctx context.Context, number int, body string) error {
	_, resp, err := c.gh.Issues.CreateComment(ctx, c.owner, c.repo, number, &github.IssueComment{Body: github.Ptr(body)})
	if err != nil {
		return c.fail("post_comment", resp, err)
	}
	return nil
}

// RepoConfig reads a file from the default branch. found is false on 404
func (c *Client) RepoConfig(ctx context.Context, path string) (data []byte, found bool, err error) {
	file, _, resp, err := c.gh.Repositories.GetContents(ctx, c.owner, c.repo, path, nil)
	if err != nil {
		if status(resp) == http.StatusNotFound {
			return nil, false, nil
		}
		return nil, false, c.fail("repo_config", resp, err)
	}
	if file == nil {
		// path is a directory
		return nil, false, nil
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, false, perr.Wrapf(err, perr.ErrorCodeUpstream, "decode %s", path)
	}
	return []byte(content), true, nil
}

// fail maps a go-github failure to a project error carrying the operation
func (c *Client) fail(op string, resp *github.Response, err error) error {
	code := perr.ErrorCodeUnavailable
	if st := status(resp); st != 0 {
		code = perr.CodeFromHTTPStatus(st)
	}
	var rle *github.RateLimitError
	var arl *github.AbuseRateLimitError
	if errors.As(err, &rle) || errors.As(err, &arl) {
		code = perr.ErrorCodeTooManyRequests
	}
	return perr.WithOp(perr.Wrapf(err, code, "github %s", op), "github."+op)
}

func status(resp *github.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}
