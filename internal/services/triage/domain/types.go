// Package domain holds triage types independent of transport or the tracker API
package domain

import "triagebot/internal/adapters/webhook"

// Reserved labels managed by the bot
const (
	// LabelNeedsTriage is the fallback category
	LabelNeedsTriage = "needs-triage"
	// LabelNeedsInfo marks an issue missing required fields
	LabelNeedsInfo = "needs-info"
)

// ConfidenceThreshold is the inclusive minimum confidence to apply a category directly
const ConfidenceThreshold = 0.7

// Classification is a category decision; the fallback always carries confidence 0
type Classification struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// Fallback is the classification used whenever no trusted category exists
func Fallback() Classification {
	return Classification{Category: LabelNeedsTriage, Confidence: 0}
}

// IsFallback reports whether c is the fallback category
func (c Classification) IsFallback() bool { return c.Category == LabelNeedsTriage }

// Confident reports whether c clears the threshold
func (c Classification) Confident() bool {
	return !c.IsFallback() && c.Confidence >= ConfidenceThreshold
}

// Settings is the per-invocation configuration the dispatcher reads
type Settings struct {
	ClassificationEnabled bool
	Categories            []string
	RequiredFields        []string
	// FreshLabels replaces the event snapshot with a live label read
	FreshLabels bool
}

// IsCategory reports whether name is a configured category
func (s Settings) IsCategory(name string) bool {
	for _, c := range s.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// Outcome summarizes what a dispatch did
type Outcome string

const (
	// OutcomeHandled means at least the decision logic ran for a handled branch
	OutcomeHandled Outcome = "handled"
	// OutcomeSkipped means the event was deliberately ignored
	OutcomeSkipped Outcome = "skipped"
)

// Result records the tracker writes of one dispatch
type Result struct {
	Kind           webhook.Kind    `json:"kind,omitempty"`
	Action         string          `json:"action,omitempty"`
	Issue          int             `json:"issue,omitempty"`
	Outcome        Outcome         `json:"outcome"`
	Reason         string          `json:"reason,omitempty"`
	Classification *Classification `json:"classification,omitempty"`
	Missing        []string        `json:"missing,omitempty"`
	LabelsAdded    []string        `json:"labels_added,omitempty"`
	LabelsRemoved  []string        `json:"labels_removed,omitempty"`
	Comments       int             `json:"comments"`
}

// Skipped builds a skip result with a reason
func Skipped(reason string) Result {
	return Result{Outcome: OutcomeSkipped, Reason: reason}
}
