// Package slash finds bot commands in issue comments
package slash

import (
	"regexp"
	"strings"
)

// Kind names a recognized command
type Kind string

const (
	// None means the comment carries no command
	None Kind = ""
	// Label is "/label <category>"
	Label Kind = "label"
	// Reclassify is "/reclassify"
	Reclassify Kind = "reclassify"
)

// Command is a parsed slash command
type Command struct {
	Kind Kind
	Arg  string // lowercased argument for Label
}

// Commands match a whole line, case-insensitive, with optional horizontal
// whitespace around the command
var (
	labelRe      = regexp.MustCompile(`(?mi)^[ \t]*/label[ \t]+(\S+)[ \t\r]*$`)
	reclassifyRe = regexp.MustCompile(`(?mi)^[ \t]*/reclassify[ \t\r]*$`)
)

// Parse returns the first recognized command. /label is checked before /reclassify
func Parse(body string) Command {
	if m := labelRe.FindStringSubmatch(body); m != nil {
		return Command{Kind: Label, Arg: strings.ToLower(m[1])}
	}
	if reclassifyRe.MatchString(body) {
		return Command{Kind: Reclassify}
	}
	return Command{Kind: None}
}

// String renders the command as it would be typed
func (c Command) String() string {
	switch c.Kind {
	case Label:
		return "/label " + c.Arg
	case Reclassify:
		return "/reclassify"
	default:
		return ""
	}
}
