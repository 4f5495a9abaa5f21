package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLowConfidenceComment(t *testing.T) {
	want := "👋 Thanks for opening this issue!\n\n" +
		"TriageBot wasn't confident enough to automatically assign a category (confidence: 42%). " +
		"A maintainer will review and label it shortly.\n\n" +
		"If you'd like to help speed things up, feel free to clarify the issue type in a comment.\n"
	assert.Equal(t, want, LowConfidenceComment(0.42))
	assert.Contains(t, LowConfidenceComment(0), "(confidence: 0%)")
	assert.Contains(t, LowConfidenceComment(1), "(confidence: 100%)")
}

func TestMissingInfoComment(t *testing.T) {
	want := "Thanks for opening this issue! To help us resolve it quickly, could you please add the following information?\n\n" +
		"- **Reproduction Steps**\n- **Stack Trace**\n\n" +
		"_This message was posted automatically by TriageBot. Once you've added the missing details, the `needs-info` label will be removed._"
	assert.Equal(t, want, MissingInfoComment([]string{"reproduction steps", "stack trace"}))
}
