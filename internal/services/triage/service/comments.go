package service

import (
	"fmt"
	"strings"

	pstrings "triagebot/internal/platform/strings"
	"triagebot/internal/services/triage/domain"
)

const lowConfidenceTemplate = "👋 Thanks for opening this issue!\n\n" +
	"TriageBot wasn't confident enough to automatically assign a category " +
	"(confidence: %s). A maintainer will review and label it shortly.\n\n" +
	"If you'd like to help speed things up, feel free to clarify the issue type in a comment.\n"

// LowConfidenceComment renders the fallback notice with confidence as a whole percent
func LowConfidenceComment(confidence float64) string {
	return fmt.Sprintf(lowConfidenceTemplate, fmt.Sprintf("%.0f%%", confidence*100))
}

// MissingInfoComment lists each missing field title-cased as a bold bullet
func MissingInfoComment(missing []string) string {
	var b strings.Builder
	b.WriteString("Thanks for opening this issue! To help us resolve it quickly, ")
	b.WriteString("could you please add the following information?\n\n")
	for i, f := range missing {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- **")
		b.WriteString(pstrings.Title(f))
		b.WriteString("**")
	}
	b.WriteString("\n\n_This message was posted automatically by TriageBot. ")
	b.WriteString("Once you've added the missing details, the `" + domain.LabelNeedsInfo + "` label will be removed._")
	return b.String()
}
