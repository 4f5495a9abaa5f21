// Package http provides meta endpoints
package http

import (
	"net/http"
	"time"

	"triagebot/internal/core/version"
	"triagebot/internal/modkit/httpkit"
)

// Deps are the handler dependencies
type Deps struct {
	StartedAt time.Time
	Now       func() time.Time
	// Modules lists the mounted modules, nil omits them
	Modules func() []string
}

type handlers struct {
	deps Deps
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	if d.Now == nil {
		d.Now = time.Now
	}
	h := &handlers{deps: d}

	httpkit.Get(r, "/healthz", h.health)
	httpkit.Get(r, "/version", h.version)
}

// HealthResponse is the health payload
type HealthResponse struct {
	OK      bool              `json:"ok"`
	Started string            `json:"started"`
	Uptime  int64             `json:"uptime"`
	Build   version.BuildInfo `json:"build"`
	Modules []string          `json:"modules,omitempty"`
}

func (h *handlers) health(_ *http.Request) (any, error) {
	res := HealthResponse{
		OK:      true,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(h.deps.Now().Sub(h.deps.StartedAt) / time.Second),
		Build:   version.Info(),
	}
	if h.deps.Modules != nil {
		res.Modules = h.deps.Modules()
	}
	return res, nil
}

func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}
