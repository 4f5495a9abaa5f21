// Package service contains the triage dispatcher: per-event label and
// comment decisions written through the tracker port
package service

import (
	"context"
	"strconv"

	"triagebot/internal/adapters/webhook"
	"triagebot/internal/core/slash"
	"triagebot/internal/platform/logger"
	pstrings "triagebot/internal/platform/strings"
	"triagebot/internal/services/triage/domain"
)

// Service is the public service port
type Service interface{ domain.RunnerPort }

// Options wires the dispatcher collaborators
type Options struct {
	// Tracker is required
	Tracker domain.Tracker
	// Detector is required
	Detector domain.Detector
	// Classifier is optional; nil disables classification and /reclassify
	Classifier domain.Classifier

	Settings domain.Settings
}

// Svc implements the service port
type Svc struct {
	tracker    domain.Tracker
	detector   domain.Detector
	classifier domain.Classifier
	settings   domain.Settings
}

var _ Service = (*Svc)(nil)

// New constructs the dispatcher
func New(opt Options) *Svc {
	if opt.Tracker == nil {
		panic("triage.Service requires a non nil Tracker")
	}
	if opt.Detector == nil {
		panic("triage.Service requires a non nil Detector")
	}
	return &Svc{
		tracker:    opt.Tracker,
		detector:   opt.Detector,
		classifier: opt.Classifier,
		settings:   opt.Settings,
	}
}

// classifies reports whether classification can run at all
func (s *Svc) classifies() bool {
	return s.settings.ClassificationEnabled && s.classifier != nil
}

// Dispatch routes one event to its branch. Tracker failures abort and are
// returned; every other condition yields a Result
func (s *Svc) Dispatch(ctx context.Context, ev webhook.Event) (domain.Result, error) {
	if ev == nil {
		return domain.Skipped("no event"), nil
	}
	ctx = logger.WithIssue(ctx, ev.Number())
	w := &writer{t: s.tracker, number: ev.Number(), res: domain.Result{Kind: ev.Kind(), Issue: ev.Number(), Outcome: domain.OutcomeHandled}}

	var err error
	switch e := ev.(type) {
	case *webhook.IssueEvent:
		w.res.Action = e.RawAction
		switch e.Action {
		case webhook.ActionOpened:
			err = s.opened(ctx, e, w)
		case webhook.ActionEdited:
			err = s.edited(ctx, e, w)
		default:
			w.skip("issue action " + strconv.Quote(e.RawAction) + " not handled")
		}
	case *webhook.CommentEvent:
		w.res.Action = e.Action
		if e.Action != webhook.ActionCreated {
			w.skip("comment action " + strconv.Quote(e.Action) + " not handled")
			break
		}
		err = s.comment(ctx, e, w)
	default:
		w.skip("unsupported event")
	}

	log := s.log(ctx)
	if err != nil {
		log.Error().Err(err).Strs("labels_added", w.res.LabelsAdded).Strs("labels_removed", w.res.LabelsRemoved).Msg("dispatch failed")
		return w.res, err
	}
	done := log.Info().Str("kind", string(w.res.Kind)).Str("action", w.res.Action).Str("outcome", string(w.res.Outcome))
	if w.res.Reason != "" {
		done = done.Str("reason", w.res.Reason)
	}
	done.Strs("labels_added", w.res.LabelsAdded).Strs("labels_removed", w.res.LabelsRemoved).Int("comments", w.res.Comments).Msg("dispatch done")
	return w.res, nil
}

func (s *Svc) opened(ctx context.Context, e *webhook.IssueEvent, w *writer) error {
	log := s.log(ctx)
	if s.classifies() {
		cls := s.classify(ctx, e.Title, e.Body)
		w.res.Classification = &cls
		if err := s.applyClassification(ctx, cls, w); err != nil {
			return err
		}
	} else {
		log.Info().Msg("classification disabled, skipping model call")
	}

	missing := s.detector.Detect(e.Body, s.settings.RequiredFields)
	w.res.Missing = missing
	if len(missing) == 0 {
		log.Info().Msg("all required fields present")
		return nil
	}
	log.Info().Strs("missing", missing).Msg("missing required fields")
	if err := w.add(ctx, domain.LabelNeedsInfo); err != nil {
		return err
	}
	return w.comment(ctx, MissingInfoComment(missing))
}

func (s *Svc) edited(ctx context.Context, e *webhook.IssueEvent, w *writer) error {
	labels, err := s.snapshot(ctx, e)
	if err != nil {
		return err
	}
	if !pstrings.In(labels, domain.LabelNeedsInfo) {
		w.skip("edited issue has no " + domain.LabelNeedsInfo + " label")
		return nil
	}

	missing := s.detector.Detect(e.Body, s.settings.RequiredFields)
	w.res.Missing = missing
	if len(missing) > 0 {
		s.log(ctx).Info().Strs("missing", missing).Msg("edited issue still missing fields")
		return nil
	}
	return w.remove(ctx, domain.LabelNeedsInfo)
}

func (s *Svc) comment(ctx context.Context, e *webhook.CommentEvent, w *writer) error {
	cmd := slash.Parse(e.CommentBody)
	log := s.log(ctx).With().Str("command", cmd.String()).Logger()

	switch cmd.Kind {
	case slash.Label:
		if !s.settings.IsCategory(cmd.Arg) {
			log.Info().Strs("valid", s.settings.Categories).Msg("unknown category in /label")
			w.skip("unknown category " + strconv.Quote(cmd.Arg))
			return nil
		}
		return s.replaceCategory(ctx, e, cmd.Arg, w)

	case slash.Reclassify:
		if !s.classifies() {
			w.skip("classification unavailable, /reclassify ignored")
			return nil
		}
		cls := s.classify(ctx, e.IssueTitle, e.IssueBody)
		w.res.Classification = &cls
		if cls.Confident() {
			return s.replaceCategory(ctx, e, cls.Category, w)
		}
		// existing labels stay; a maintainer decides
		return s.applyClassification(ctx, cls, w)

	default:
		w.skip("no recognized slash command")
		return nil
	}
}

// replaceCategory enforces at most one category label: removals first, then the add
func (s *Svc) replaceCategory(ctx context.Context, ev webhook.Event, category string, w *writer) error {
	labels, err := s.snapshot(ctx, ev)
	if err != nil {
		return err
	}
	for _, l := range ExclusiveRemovals(labels, s.settings.Categories, domain.LabelNeedsTriage) {
		if err := w.remove(ctx, l); err != nil {
			return err
		}
	}
	return w.add(ctx, category)
}

// applyClassification adds the category when confident, otherwise the
// fallback label plus the low-confidence notice
func (s *Svc) applyClassification(ctx context.Context, cls domain.Classification, w *writer) error {
	if cls.Confident() {
		return w.add(ctx, cls.Category)
	}
	s.log(ctx).Info().Float64("confidence", cls.Confidence).Float64("threshold", domain.ConfidenceThreshold).Msg("low confidence, applying fallback")
	if err := w.add(ctx, domain.LabelNeedsTriage); err != nil {
		return err
	}
	return w.comment(ctx, LowConfidenceComment(cls.Confidence))
}

// classify never fails; a category outside the configured set degrades to the fallback
func (s *Svc) classify(ctx context.Context, title, body string) domain.Classification {
	cls := s.classifier.Classify(ctx, title, body, s.settings.Categories)
	if !cls.IsFallback() && !s.settings.IsCategory(cls.Category) {
		s.log(ctx).Warn().Str("category", cls.Category).Msg("classifier returned unconfigured category")
		cls = domain.Fallback()
	}
	if cls.IsFallback() {
		cls.Confidence = 0
	}
	s.log(ctx).Info().Str("category", cls.Category).Float64("confidence", cls.Confidence).Msg("classification")
	return cls
}

// snapshot returns the delivery's label snapshot, or a live read when FreshLabels is set
func (s *Svc) snapshot(ctx context.Context, ev webhook.Event) ([]string, error) {
	if !s.settings.FreshLabels {
		return ev.Labels(), nil
	}
	return s.tracker.ListLabels(ctx, ev.Number())
}

func (s *Svc) log(ctx context.Context) *logger.Logger {
	l := logger.C(ctx).With().Str("component", "triage").Logger()
	return &l
}

// writer performs tracker writes and records them on the Result
type writer struct {
	t      domain.Tracker
	number int
	res    domain.Result
}

func (w *writer) add(ctx context.Context, label string) error {
	if err := w.t.AddLabel(ctx, w.number, label); err != nil {
		return err
	}
	w.res.LabelsAdded = append(w.res.LabelsAdded, label)
	return nil
}

func (w *writer) remove(ctx context.Context, label string) error {
	if err := w.t.RemoveLabel(ctx, w.number, label); err != nil {
		return err
	}
	w.res.LabelsRemoved = append(w.res.LabelsRemoved, label)
	return nil
}

func (w *writer) comment(ctx context.Context, body string) error {
	if err := w.t.PostComment(ctx, w.number, body); err != nil {
		return err
	}
	w.res.Comments++
	return nil
}

func (w *writer) skip(reason string) {
	w.res.Outcome = domain.OutcomeSkipped
	w.res.Reason = reason
}
