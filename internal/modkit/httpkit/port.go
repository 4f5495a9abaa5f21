package httpkit

import (
	"net/http"

	perrs "triagebot/internal/platform/errors"
)

// HeaderFunc checks a request header value against the raw body
type HeaderFunc func(value string, body []byte) error

// HeaderPort implements middleware.VerifyPort by reading one header and delegating to a HeaderFunc
type HeaderPort struct {
	header string
	check  HeaderFunc
}

// NewHeaderPort builds a HeaderPort for header
func NewHeaderPort(header string, fn HeaderFunc) *HeaderPort {
	return &HeaderPort{header: header, check: fn}
}

// Verify passes the header value (possibly empty) and body to the check
// any failure is reported as unauthorized on the header field
func (p *HeaderPort) Verify(r *http.Request, body []byte) error {
	if p.check == nil {
		return perrs.WithField(perrs.Unauthorizedf("no verifier configured"), p.header)
	}
	if err := p.check(r.Header.Get(p.header), body); err != nil {
		if perrs.IsCode(err, perrs.ErrorCodeUnauthorized) {
			return perrs.WithField(err, p.header)
		}
		return perrs.WithField(perrs.Wrap(err, perrs.ErrorCodeUnauthorized, "request verification failed"), p.header)
	}
	return nil
}
