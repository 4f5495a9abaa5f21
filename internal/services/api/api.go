// Package api composes the webhook server from modules
package api

import (
	"time"

	"triagebot/internal/platform/config"
	"triagebot/internal/platform/logger"
	phttp "triagebot/internal/platform/net/http"

	"triagebot/internal/modkit"
	"triagebot/internal/modkit/httpkit"
	"triagebot/internal/modkit/module"

	metamod "triagebot/internal/services/api/meta/module"
	triagemod "triagebot/internal/services/triage/module"
)

// Options are the server options
type Options struct {
	Config config.Conf
	Logger *logger.Logger
	// Triage overrides the triage module's ports (tests)
	Triage *triagemod.Ports
}

// Mount registers every module and mounts them onto r behind the common
// middleware stack. The registry is returned for port lookups and logging
func Mount(r phttp.Router, opt Options) (*module.Registry, error) {
	deps := modkit.Deps{Log: opt.Logger, Cfg: opt.Config}
	reg := module.NewRegistry()

	var triageOpts []modkit.Option
	if opt.Triage != nil {
		triageOpts = append(triageOpts, modkit.WithPorts(*opt.Triage))
	}
	triage, err := triagemod.New(deps, triageOpts...)
	if err != nil {
		return nil, err
	}
	for _, m := range []module.Module{metamod.New(deps, reg.Names), triage} {
		if err := reg.Add(m); err != nil {
			return nil, err
		}
	}

	timeout := opt.Config.MayDuration("TRIAGEBOT_HTTP_TIMEOUT", 60*time.Second)
	r.Use(httpkit.Heartbeat("/ping"))
	r.Group(func(g httpkit.Router) {
		g.Use(httpkit.CommonStack(timeout)...)
		reg.MountAll(g)
	})
	return reg, nil
}
