package httpkit

import (
	"net/http"
	"time"

	phttp "triagebot/internal/platform/net/http"
	"triagebot/internal/platform/net/middleware"
)

// CommonStack returns the baseline middleware for the webhook server
func CommonStack(timeout time.Duration) []func(http.Handler) http.Handler {
	return middleware.Defaults(timeout)
}

// Verify wires the verify middleware to the platform JSON writer
func Verify(p middleware.VerifyPort) func(http.Handler) http.Handler {
	return middleware.Verify(p, phttp.JSON)
}

// JSONOnly rejects request bodies that are not application/json with 415
func JSONOnly() func(http.Handler) http.Handler {
	return middleware.AllowContentType("application/json")
}

// Heartbeat answers GET path with 200 before routing
func Heartbeat(path string) func(http.Handler) http.Handler {
	return middleware.Heartbeat(path)
}
