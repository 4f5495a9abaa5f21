// Package fieldpack loads the embedded alias table that maps a required
// field name to the phrases that satisfy it
package fieldpack

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed aliases.yaml
var embedded []byte

type rawPack struct {
	Version int                 `yaml:"version"`
	Fields  map[string][]string `yaml:"fields"`
}

// Pack is an immutable field -> ordered phrases table
type Pack struct {
	Version int
	fields  map[string][]string
}

// Load parses the embedded alias table
func Load() (*Pack, error) {
	return Parse(embedded)
}

// MustLoad is Load for package init paths; the embedded table is known good
func MustLoad() *Pack {
	p, err := Load()
	if err != nil {
		panic(err)
	}
	return p
}

// Parse builds a pack from a yaml document
func Parse(data []byte) (*Pack, error) {
	var rp rawPack
	if err := yaml.Unmarshal(data, &rp); err != nil {
		return nil, fmt.Errorf("fieldpack: parse aliases: %w", err)
	}
	if rp.Version != 1 {
		return nil, fmt.Errorf("fieldpack: unsupported aliases version %d (want 1)", rp.Version)
	}
	p := &Pack{Version: rp.Version, fields: make(map[string][]string, len(rp.Fields))}
	for field, phrases := range rp.Fields {
		p.set(field, phrases)
	}
	return p, nil
}

func (p *Pack) set(field string, phrases []string) {
	key := normalize(field)
	if key == "" {
		return
	}
	seen := make(map[string]struct{}, len(phrases))
	out := make([]string, 0, len(phrases))
	for _, ph := range phrases {
		ph = normalize(ph)
		if ph == "" {
			continue
		}
		if _, dup := seen[ph]; dup {
			continue
		}
		seen[ph] = struct{}{}
		out = append(out, ph)
	}
	if len(out) == 0 {
		return
	}
	p.fields[key] = out
}

// Phrases returns the phrases for field in table order. A field without an
// entry resolves to its own lowercased name
func (p *Pack) Phrases(field string) []string {
	key := normalize(field)
	if ph, ok := p.fields[key]; ok {
		out := make([]string, len(ph))
		copy(out, ph)
		return out
	}
	if key == "" {
		return nil
	}
	return []string{key}
}

// Merge returns a new pack with overrides replacing whole entries.
// The receiver is left untouched
func (p *Pack) Merge(overrides map[string][]string) *Pack {
	out := &Pack{Version: p.Version, fields: make(map[string][]string, len(p.fields)+len(overrides))}
	for k, v := range p.fields {
		out.fields[k] = v
	}
	for k, v := range overrides {
		out.set(k, v)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
