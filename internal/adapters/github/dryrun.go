package github

import (
	"context"

	"triagebot/internal/platform/logger"
	"triagebot/internal/services/triage/domain"
)

// LabelReader is the read half of the tracker
type LabelReader interface {
	ListLabels(ctx context.Context, number int) ([]string, error)
}

// DryRun logs intended writes instead of performing them. Reads go to
// Reader when set, otherwise return no labels
type DryRun struct {
	Reader LabelReader
	log    logger.Logger
}

var _ domain.Tracker = (*DryRun)(nil)

// NewDryRun wraps an optional reader
func NewDryRun(reader LabelReader) *DryRun {
	return &DryRun{Reader: reader, log: *logger.Named("github.dryrun")}
}

// ListLabels implements domain.Tracker
func (d *DryRun) ListLabels(ctx context.Context, number int) ([]string, error) {
	if d.Reader == nil {
		return []string{}, nil
	}
	return d.Reader.ListLabels(ctx, number)
}

// AddLabel implements domain.Tracker
func (d *DryRun) AddLabel(ctx context.Context, number int, label string) error {
	d.log.Info().Int("issue", number).Str("label", label).Msg("dry-run: would add label")
	return nil
}

// RemoveLabel implements domain.Tracker
func (d *DryRun) RemoveLabel(ctx context.Context, number int, label string) error {
	d.log.Info().Int("issue", number).Str("label", label).Msg("dry-run: would remove label")
	return nil
}

// PostComment implements domain.Tracker
func (d *DryRun) PostComment(ctx context.Context, number int, body string) error {
	d.log.Info().Int("issue", number).Int("bytes", len(body)).Str("body", body).Msg("dry-run: would post comment")
	return nil
}
