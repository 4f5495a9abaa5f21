package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	perr "triagebot/internal/platform/errors"
	pnet "triagebot/internal/platform/net"
)

// VerifyPort authenticates a request from its headers and raw body
type VerifyPort interface {
	Verify(r *http.Request, body []byte) error
}

// VerifyFunc adapts a function to VerifyPort
type VerifyFunc func(r *http.Request, body []byte) error

// Verify calls f
func (f VerifyFunc) Verify(r *http.Request, body []byte) error { return f(r, body) }

// Verify buffers the body, hands it to p and restores it for the next handler
// A nil port passes everything through
func Verify(p VerifyPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			reqID := pnet.RequestID(r.Context())
			body, err := io.ReadAll(r.Body)
			if err != nil {
				msg := "read request body"
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					msg = "request body too large"
				}
				status, env := pnet.Error(perr.Wrap(err, perr.ErrorCodeInvalidArgument, msg), reqID)
				write(w, status, env)
				return
			}
			_ = r.Body.Close()
			if err := p.Verify(r, body); err != nil {
				status, env := pnet.Error(err, reqID)
				write(w, status, env)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}
