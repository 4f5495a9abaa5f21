package domain

import (
	"context"

	"triagebot/internal/adapters/webhook"
)

// Tracker is the issue-tracker surface the dispatcher writes through
type Tracker interface {
	ListLabels(ctx context.Context, number int) ([]string, error)
	AddLabel(ctx context.Context, number int, label string) error
	RemoveLabel(ctx context.Context, number int, label string) error
	PostComment(ctx context.Context, number int, body string) error
}

// Classifier picks a category; it never fails, degrading to Fallback
type Classifier interface {
	Classify(ctx context.Context, title, body string, categories []string) Classification
}

// Detector reports required fields missing from a body
type Detector interface {
	Detect(body string, required []string) []string
}

// RunnerPort dispatches one parsed event
type RunnerPort interface {
	Dispatch(ctx context.Context, ev webhook.Event) (Result, error)
}

// Delivery identifies where one event came from
type Delivery struct {
	ID             string
	Event          string
	Repository     string
	InstallationID int64
}

// SessionPort opens a runner scoped to one delivery; release must be called
// once the event is dispatched
type SessionPort interface {
	Open(ctx context.Context, d Delivery, kind webhook.Kind) (runner RunnerPort, release func(), err error)
}
