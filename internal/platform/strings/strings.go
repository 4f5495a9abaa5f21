// Package strings provides string and string-slice helpers shared by the bot
package strings

import (
	std "strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Truncate returns at most n runes of s
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Title upper-cases the first letter of every word, e.g. "expected behavior" -> "Expected Behavior"
// a fresh caser is built per call because cases.Caser is not safe for concurrent use
func Title(s string) string {
	return cases.Title(language.English).String(s)
}

// NormalizeList trims and lowercases entries, dropping blanks and duplicates while keeping order
func NormalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		v := std.ToLower(std.TrimSpace(s))
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// In reports whether s is an element of list (exact match)
func In(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// MustString returns s if it has non whitespace content otherwise panics
// name is used in the panic message so you can tell what was missing
func MustString(s string, name string) string {
	if std.TrimSpace(s) == "" {
		panic(name + " is required")
	}
	return s
}
