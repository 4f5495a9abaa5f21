// Package http provides the GitHub webhook transport for triage
package http

import (
	"io"
	stdhttp "net/http"

	"triagebot/internal/adapters/webhook"
	"triagebot/internal/modkit/httpkit"
	perr "triagebot/internal/platform/errors"
	"triagebot/internal/platform/logger"
	pnet "triagebot/internal/platform/net"
	"triagebot/internal/services/triage/domain"

	"github.com/google/uuid"
)

const (
	headerEvent    = "X-GitHub-Event"
	headerDelivery = "X-GitHub-Delivery"
)

// Deps are the handler dependencies
type Deps struct {
	Sessions domain.SessionPort
	// Secret enables signature verification when non-empty
	Secret string
}

// Register mounts the webhook routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{sessions: d.Sessions, secret: []byte(d.Secret)}
	r.Group(func(g httpkit.Router) {
		g.Use(httpkit.Verify(httpkit.NewHeaderPort(webhook.SignatureHeader, h.verify)))
		httpkit.Post(g, "/github", h.github)
	})
}

type handlers struct {
	sessions domain.SessionPort
	secret   []byte
}

// DeliveryReply is the body returned for one delivery
type DeliveryReply struct {
	DeliveryID string `json:"delivery_id"`
	Event      string `json:"event"`
	domain.Result
}

func (h *handlers) verify(signature string, body []byte) error {
	return webhook.VerifySignature(h.secret, body, signature)
}

// github handles one delivery end to end: parse, open a session, dispatch
func (h *handlers) github(r *stdhttp.Request) (any, error) {
	event := r.Header.Get(headerEvent)
	id := r.Header.Get(headerDelivery)
	if id == "" {
		id = uuid.NewString()
	}
	ctx := pnet.WithRequest(r.Context(), pnet.RequestID(r.Context()), id)
	reply := DeliveryReply{DeliveryID: id, Event: event}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "read request body")
	}
	raw, err := webhook.Decode(body)
	if err != nil {
		return nil, err
	}

	ev, ok := webhook.Parse(event, raw)
	if !ok {
		reply.Result = domain.Skipped("no event")
		logger.C(ctx).Info().Str("event", event).Msg("delivery skipped")
		return reply, nil
	}

	d := domain.Delivery{
		ID:             id,
		Event:          event,
		Repository:     webhook.Repository(raw),
		InstallationID: webhook.InstallationID(raw),
	}
	ctx = logger.WithDelivery(ctx, id, d.Repository)

	runner, release, err := h.sessions.Open(ctx, d, ev.Kind())
	if err != nil {
		logger.C(ctx).Error().Err(err).Msg("open session failed")
		return nil, err
	}
	defer release()

	res, err := runner.Dispatch(ctx, ev)
	if err != nil {
		logger.C(ctx).Error().Err(err).Msg("dispatch failed")
		return nil, err
	}
	reply.Result = res
	return reply, nil
}
