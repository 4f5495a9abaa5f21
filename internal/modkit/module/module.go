// Package module is the contract a modkit module implements and the registry
// the server composes them through
package module

import (
	phttp "triagebot/internal/platform/net/http"
)

// Module is one mountable unit of the webhook server. It lives apart from
// modkit so a module package can export its own Ports type without a cycle
type Module interface {
	Name() string
	Prefix() string
	MountRoutes(r phttp.Router)
	Ports() any
}
