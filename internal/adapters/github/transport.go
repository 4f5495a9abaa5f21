package github

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"triagebot/internal/platform/logger"
)

// retryTransport retries transport failures (dial, reset, timeout) with
// bounded exponential backoff. HTTP error statuses are returned untouched
type retryTransport struct {
	next       http.RoundTripper
	maxRetries int
	base       time.Duration
	max        time.Duration
	log        logger.Logger
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
}

func newRetryTransport(next http.RoundTripper, maxRetries int, base time.Duration) *retryTransport {
	if next == nil {
		next = http.DefaultTransport.(*http.Transport).Clone()
	}
	return &retryTransport{
		next:       next,
		maxRetries: maxRetries,
		base:       base,
		max:        30 * time.Second,
		log:        *logger.Named("github"),
		now:        time.Now,
		sleep:      sleepCtx,
	}
}

// RoundTrip implements http.RoundTripper
func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	attempts := 0
	for {
		try := req
		if attempts > 0 && req.Body != nil && req.Body != http.NoBody {
			if req.GetBody == nil {
				return nil, errors.New("github: cannot replay request body")
			}
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			try = req.Clone(ctx)
			try.Body = body
		}

		start := t.now()
		resp, err := t.next.RoundTrip(try)
		lat := t.now().Sub(start)

		if err != nil {
			if ctx.Err() != nil || attempts >= t.maxRetries {
				return nil, err
			}
			back := t.backoff(attempts)
			t.log.Warn().Err(err).Dur("retry_in", back).Int("attempt", attempts).
				Str("method", req.Method).Str("path", req.URL.Path).
				Msg("github transport error retrying")
			if serr := t.sleep(ctx, back); serr != nil {
				return nil, err
			}
			attempts++
			continue
		}

		rem, reset := parseRateHeaders(resp.Header)
		t.log.Debug().
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Int("rate_remaining", rem).
			Time("rate_reset", reset).
			Msg("github http response")
		return resp, nil
	}
}

// CloseIdleConnections forwards to the wrapped transport so http.Client can release the pool
func (t *retryTransport) CloseIdleConnections() {
	type idler interface{ CloseIdleConnections() }
	if c, ok := t.next.(idler); ok {
		c.CloseIdleConnections()
	}
}

func (t *retryTransport) backoff(attempt int) time.Duration {
	d := t.base << uint(attempt)
	if d <= 0 || d > t.max {
		return t.max
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRateHeaders(h http.Header) (remaining int, reset time.Time) {
	remaining = atoi(h.Get("X-RateLimit-Remaining"))
	if sec := atoi(h.Get("X-RateLimit-Reset")); sec > 0 {
		reset = time.Unix(int64(sec), 0).UTC()
	}
	return
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	i, _ := strconv.Atoi(s)
	return i
}
