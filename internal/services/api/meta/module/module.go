// Package module mounts the health and version endpoints
package module

import (
	"time"

	modkit "triagebot/internal/modkit"
	"triagebot/internal/modkit/httpkit"

	metahttp "triagebot/internal/services/api/meta/http"
)

// Module serves /healthz and /version at the server root
type Module struct {
	built     modkit.Built
	modules   func() []string
	startedAt time.Time
}

// New builds the meta module. modules, when set, is reported by /healthz
func New(_ modkit.Deps, modules func() []string, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("meta")}, opts...)...)
	return &Module{built: b, modules: modules, startedAt: time.Now()}
}

func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, func(rr httpkit.Router) {
		metahttp.Register(rr, metahttp.Deps{StartedAt: m.startedAt, Modules: m.modules})
	})
}

func (m *Module) Name() string   { return m.built.Name }
func (m *Module) Prefix() string { return m.built.Prefix }

// Ports is nil; nothing depends on meta
func (m *Module) Ports() any { return nil }
