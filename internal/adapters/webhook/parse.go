package webhook

import (
	"bytes"
	"encoding/json"
	"math"

	perr "triagebot/internal/platform/errors"
)

// Decode reads a JSON object payload. Numbers are kept as json.Number
func Decode(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "decode event payload")
	}
	if m == nil {
		return nil, perr.JSONErrf("event payload is not a JSON object")
	}
	return m, nil
}

// Parse is the single entry point for typed events. It returns false when
// the event name is not handled or a mandatory object (issue, or comment
// for comment events) is absent
func Parse(eventName string, raw map[string]any) (Event, bool) {
	switch eventName {
	case EventIssues:
		return parseIssue(raw)
	case EventIssueComment:
		return parseComment(raw)
	default:
		return nil, false
	}
}

func parseIssue(raw map[string]any) (Event, bool) {
	issue, ok := object(raw, "issue")
	if !ok {
		return nil, false
	}
	n, ok := number(issue)
	if !ok {
		return nil, false
	}
	rawAction := str(raw, "action")
	action := ActionOther
	switch IssueAction(rawAction) {
	case ActionOpened, ActionEdited:
		action = IssueAction(rawAction)
	}
	return &IssueEvent{
		Action:      action,
		RawAction:   rawAction,
		IssueNumber: n,
		Title:       str(issue, "title"),
		Body:        str(issue, "body"),
		LabelNames:  labels(issue),
	}, true
}

func parseComment(raw map[string]any) (Event, bool) {
	issue, ok := object(raw, "issue")
	if !ok {
		return nil, false
	}
	comment, ok := object(raw, "comment")
	if !ok {
		return nil, false
	}
	n, ok := number(issue)
	if !ok {
		return nil, false
	}
	return &CommentEvent{
		Action:      str(raw, "action"),
		IssueNumber: n,
		IssueTitle:  str(issue, "title"),
		IssueBody:   str(issue, "body"),
		IssueLabels: labels(issue),
		CommentBody: str(comment, "body"),
	}, true
}

// Repository returns repository.full_name, or "" when absent
func Repository(raw map[string]any) string {
	repo, ok := object(raw, "repository")
	if !ok {
		return ""
	}
	return str(repo, "full_name")
}

// InstallationID returns installation.id for GitHub App deliveries, 0 when absent
func InstallationID(raw map[string]any) int64 {
	inst, ok := object(raw, "installation")
	if !ok {
		return 0
	}
	v, ok := toInt64(inst["id"])
	if !ok {
		return 0
	}
	return v
}

// object returns a non-empty nested object
func object(m map[string]any, key string) (map[string]any, bool) {
	v, ok := m[key].(map[string]any)
	if !ok || len(v) == 0 {
		return nil, false
	}
	return v, true
}

// str returns a string field; null, absent, and non-string values read as ""
func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func number(issue map[string]any) (int, bool) {
	v, ok := toInt64(issue["number"])
	if !ok || v <= 0 || v > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}

// labels collects labels[].name in payload order, skipping malformed entries
func labels(issue map[string]any) []string {
	list, _ := issue["labels"].([]any)
	out := make([]string, 0, len(list))
	for _, item := range list {
		switch l := item.(type) {
		case map[string]any:
			if name := str(l, "name"); name != "" {
				out = append(out, name)
			}
		case string:
			if l != "" {
				out = append(out, l)
			}
		}
	}
	return out
}
