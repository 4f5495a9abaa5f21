// Package webhook turns raw GitHub webhook payloads into typed events
package webhook

// Kind tags an Event variant
type Kind string

const (
	// KindIssue is an "issues" delivery
	KindIssue Kind = "issue"
	// KindComment is an "issue_comment" delivery
	KindComment Kind = "comment"
)

// GitHub event names carried in X-GitHub-Event / GITHUB_EVENT_NAME
const (
	EventIssues       = "issues"
	EventIssueComment = "issue_comment"
)

// IssueAction is the normalized action of an issue event
type IssueAction string

const (
	// ActionOpened is a newly opened issue
	ActionOpened IssueAction = "opened"
	// ActionEdited is an edit of title or body
	ActionEdited IssueAction = "edited"
	// ActionOther is any other issue action (labeled, closed, ...)
	ActionOther IssueAction = "other"
)

// ActionCreated is the only comment action the bot reacts to
const ActionCreated = "created"

// Event is either *IssueEvent or *CommentEvent
type Event interface {
	Kind() Kind
	Number() int
	Labels() []string
}

// IssueEvent is an issues delivery. Labels is the snapshot at delivery time
type IssueEvent struct {
	Action      IssueAction
	RawAction   string
	IssueNumber int
	Title       string
	Body        string
	LabelNames  []string
}

// Kind implements Event
func (e *IssueEvent) Kind() Kind { return KindIssue }

// Number implements Event
func (e *IssueEvent) Number() int { return e.IssueNumber }

// Labels implements Event
func (e *IssueEvent) Labels() []string { return e.LabelNames }

// CommentEvent is an issue_comment delivery
type CommentEvent struct {
	Action      string
	IssueNumber int
	IssueTitle  string
	IssueBody   string
	IssueLabels []string
	CommentBody string
}

// Kind implements Event
func (e *CommentEvent) Kind() Kind { return KindComment }

// Number implements Event
func (e *CommentEvent) Number() int { return e.IssueNumber }

// Labels implements Event
func (e *CommentEvent) Labels() []string { return e.IssueLabels }
