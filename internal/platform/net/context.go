// Package net provides request scoped helpers shared by transports
package net

import (
	"context"

	"triagebot/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// WithRequest annotates ctx with the request id and the webhook delivery id
func WithRequest(ctx context.Context, reqID, deliveryID string) context.Context {
	if reqID != "" {
		// chi's key so chimw.GetReqID sees it too
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	return logger.WithDelivery(ctx, deliveryID, "")
}

// RequestID returns the request id on ctx if present
func RequestID(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// DeliveryID returns the webhook delivery id on ctx if present
func DeliveryID(ctx context.Context) string {
	return logger.DeliveryID(ctx)
}
