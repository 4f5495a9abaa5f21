package modkit

import (
	"triagebot/internal/modkit/module"
)

// Module is the surface the server composes: routes, ports and a name
type Module = module.Module
