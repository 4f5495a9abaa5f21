// Package botconf loads the per-repository bot configuration file
package botconf

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"

	perr "triagebot/internal/platform/errors"
	pstrings "triagebot/internal/platform/strings"
	"triagebot/internal/platform/validate"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config location relative to the repository root
const DefaultPath = ".github/triagebot.yml"

var (
	// DefaultCategories are used when the file omits classification.categories
	DefaultCategories = []string{"bug", "feature-request", "question", "documentation"}
	// DefaultRequiredFields are used when the file omits missing_info.required_fields
	DefaultRequiredFields = []string{"reproduction steps", "expected behavior", "actual behavior"}
)

// Config is the normalized repository configuration
type Config struct {
	ClassificationEnabled bool
	Categories            []string
	RequiredFields        []string
	Aliases               map[string][]string
}

// Defaults returns the configuration used when no file exists
func Defaults() Config {
	return Config{
		ClassificationEnabled: true,
		Categories:            append([]string(nil), DefaultCategories...),
		RequiredFields:        append([]string(nil), DefaultRequiredFields...),
	}
}

type fileClassification struct {
	Enabled    *bool    `yaml:"enabled"`
	Categories []string `yaml:"categories" validate:"omitnil,min=1,dive,nonblank"`
}

type fileMissingInfo struct {
	RequiredFields []string            `yaml:"required_fields" validate:"omitnil,dive,nonblank"`
	Aliases        map[string][]string `yaml:"aliases" validate:"omitempty,dive,keys,nonblank,endkeys,min=1,dive,nonblank"`
}

type file struct {
	Classification fileClassification `yaml:"classification"`
	MissingInfo    fileMissingInfo    `yaml:"missing_info"`
}

// Load reads path; a missing file yields Defaults
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return Config{}, perr.WithField(perr.Wrapf(err, perr.ErrorCodeConfig, "read config %s", path), "config_path")
	}
	return Parse(data)
}

// Parse decodes a yaml document. An empty document yields Defaults
func Parse(data []byte) (Config, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, perr.Wrapf(err, perr.ErrorCodeConfig, "parse config")
	}

	// an explicit empty list is an error, absent or null falls back to defaults
	if err := validate.Struct(f, perr.ErrorCodeConfig); err != nil {
		return Config{}, err
	}

	cfg := Defaults()
	if f.Classification.Enabled != nil {
		cfg.ClassificationEnabled = *f.Classification.Enabled
	}
	if f.Classification.Categories != nil {
		cfg.Categories = pstrings.NormalizeList(f.Classification.Categories)
	}
	if f.MissingInfo.RequiredFields != nil {
		cfg.RequiredFields = pstrings.NormalizeList(f.MissingInfo.RequiredFields)
	}
	if len(f.MissingInfo.Aliases) > 0 {
		cfg.Aliases = make(map[string][]string, len(f.MissingInfo.Aliases))
		for k, v := range f.MissingInfo.Aliases {
			cfg.Aliases[k] = pstrings.NormalizeList(v)
		}
	}
	return cfg, nil
}
