// Package module wires triage into the webhook server using modkit
package module

import (
	modkit "triagebot/internal/modkit"
	"triagebot/internal/modkit/httpkit"
	str "triagebot/internal/platform/strings"
	"triagebot/internal/services/triage/domain"
	thttp "triagebot/internal/services/triage/http"
)

// Module implements the triage webhook module
type Module struct {
	deps   modkit.Deps
	built  modkit.Built
	secret string
	ports  Ports
}

// Ports is the triage port set; Sessions may be injected with modkit.WithPorts
type Ports struct {
	Sessions domain.SessionPort
}

// New constructs the triage module. Without injected Sessions it reads
// Options from deps.Cfg and opens GitHub sessions itself
func New(deps modkit.Deps, opts ...modkit.Option) (modkit.Module, error) {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("triage"),
		modkit.WithPrefix("/webhooks"),
		modkit.WithMiddlewares(httpkit.JSONOnly()),
	}, opts...)...)

	o, err := FromConfig(deps.Cfg)
	if err != nil {
		return nil, err
	}

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}
	if injected.Sessions == nil {
		s, err := NewSessions(o, nil)
		if err != nil {
			return nil, err
		}
		injected.Sessions = s
	}

	if o.WebhookSecret == "" {
		deps.Logger("triage").Warn().Msg("TRIAGEBOT_WEBHOOK_SECRET unset, deliveries are not verified")
	}
	return &Module{deps: deps, built: b, secret: o.WebhookSecret, ports: injected}, nil
}

// MountRoutes mounts POST {prefix}/github
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, func(rr httpkit.Router) {
		thttp.Register(rr, thttp.Deps{Sessions: m.ports.Sessions, Secret: m.secret})
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.built.Name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return m.built.Prefix }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
