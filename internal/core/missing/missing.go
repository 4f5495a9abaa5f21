// Package missing reports which required issue fields are absent from a
// markdown body. A field only counts when it appears in a header line or a
// bold span; prose mentions are ignored
package missing

import (
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"triagebot/internal/core/fieldpack"
)

// MinBodyLength is the trimmed body length in characters below which every field is missing
const MinBodyLength = 50

// Detector matches required fields against a body. Safe for concurrent use
type Detector struct {
	pack *fieldpack.Pack

	mu    sync.RWMutex
	cache map[string]*regexp.Regexp // phrase -> compiled matcher
}

// New creates a Detector over pack; nil uses the embedded alias table
func New(pack *fieldpack.Pack) *Detector {
	if pack == nil {
		pack = fieldpack.MustLoad()
	}
	return &Detector{pack: pack, cache: make(map[string]*regexp.Regexp, 32)}
}

// WithAliases returns a detector whose alias table has overrides merged in
func (d *Detector) WithAliases(overrides map[string][]string) *Detector {
	if len(overrides) == 0 {
		return d
	}
	return New(d.pack.Merge(overrides))
}

// Detect returns the subset of required not structurally present in body,
// in the order given
func (d *Detector) Detect(body string, required []string) []string {
	if len(required) == 0 {
		return []string{}
	}
	if utf8.RuneCountInString(strings.TrimSpace(body)) < MinBodyLength {
		out := make([]string, len(required))
		copy(out, required)
		return out
	}

	lower := strings.ToLower(body)
	out := make([]string, 0, len(required))
	for _, field := range required {
		if !d.present(lower, field) {
			out = append(out, field)
		}
	}
	return out
}

func (d *Detector) present(lowerBody, field string) bool {
	for _, phrase := range d.pack.Phrases(field) {
		if d.matcher(phrase).MatchString(lowerBody) {
			return true
		}
	}
	return false
}

func (d *Detector) matcher(phrase string) *regexp.Regexp {
	d.mu.RLock()
	re, ok := d.cache[phrase]
	d.mu.RUnlock()
	if ok {
		return re
	}

	re = compile(phrase)
	d.mu.Lock()
	if prior, ok := d.cache[phrase]; ok {
		re = prior
	} else {
		d.cache[phrase] = re
	}
	d.mu.Unlock()
	return re
}

// compile builds the header-or-bold matcher for one lowercase phrase.
// header: 1-4 '#' at line start, horizontal space, then the phrase on the same line
// bold: **...phrase...** with no '*' inside the span
func compile(phrase string) *regexp.Regexp {
	q := regexp.QuoteMeta(phrase)
	return regexp.MustCompile(`(?m)(?:^#{1,4}[ \t]+[^\n]*` + q + `)|(?:\*\*[^*]*` + q + `[^*]*\*\*)`)
}
