// Package normalize turns HTML pasted or imported from browsers, word
// processors and spreadsheets into the restricted block dialect of a
// structured rich-text editor.
//
// The individual transforms (Sanitize, Organize, StripPasteSliceWrappers,
// CleanTableWhitespace and friends) are pure functions over freshly parsed
// trees. Normalizer chains them according to a Config.
package normalize

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Mode selects how aggressively pasted markup is flattened.
type Mode string

const (
	// ModeKeep leaves element structure alone; only repairs are applied.
	ModeKeep Mode = "keep"
	// ModeClean flattens everything outside Config.PreserveTags.
	ModeClean Mode = "clean"
	// ModeText keeps paragraphs and line breaks only.
	ModeText Mode = "text"
)

// DefaultMaxInputBytes bounds documents accepted by DefaultConfig.
const DefaultMaxInputBytes = 10 << 20

// Config defines all configuration options for the normalizer.
type Config struct {
	// === Flattening ===

	// Mode selects keep, clean or text handling of pasted markup.
	Mode Mode `json:"mode" yaml:"mode" validate:"required,oneof=keep clean text"`

	// PreserveTags lists the elements that keep their box in clean mode.
	PreserveTags []string `json:"preserve_tags" yaml:"preserve_tags" validate:"dive,required"`

	// StripAttributes drops all attributes from preserved elements.
	StripAttributes bool `json:"strip_attributes" yaml:"strip_attributes"`

	// RemoveTags are unwrapped before flattening (Office o:p, font, ...).
	RemoveTags []string `json:"remove_tags" yaml:"remove_tags" validate:"dive,required"`

	// === Source handling ===

	// StripSliceWrappers removes data-pm-slice wrappers left by editor copies.
	StripSliceWrappers bool `json:"strip_slice_wrappers" yaml:"strip_slice_wrappers"`

	// DetectSpreadsheets routes spreadsheet exports around flattening so
	// their tables survive intact.
	DetectSpreadsheets bool `json:"detect_spreadsheets" yaml:"detect_spreadsheets"`

	// AssumeSpreadsheet treats every document as a spreadsheet export.
	AssumeSpreadsheet bool `json:"assume_spreadsheet" yaml:"assume_spreadsheet"`

	// NormalizeUnicode applies NFC normalization before parsing.
	NormalizeUnicode bool `json:"normalize_unicode" yaml:"normalize_unicode"`

	// === Post-processing ===

	// RemoveEmptyParagraphs drops paragraphs with no text and no image.
	RemoveEmptyParagraphs bool `json:"remove_empty_paragraphs" yaml:"remove_empty_paragraphs"`

	// UnwrapLeadingParagraph merges a leading paragraph into the caret's block.
	UnwrapLeadingParagraph bool `json:"unwrap_leading_paragraph" yaml:"unwrap_leading_paragraph"`

	// Scrub runs the bluemonday allow-list as the last step.
	Scrub bool `json:"scrub" yaml:"scrub"`

	// === Limits ===

	// MaxInputBytes rejects larger documents. Zero disables the limit.
	MaxInputBytes int64 `json:"max_input_bytes" yaml:"max_input_bytes" validate:"gte=0"`
}

// richTags are kept in clean mode on top of the structural blocks.
var richTags = []string{
	"p", "br", "hr", "img", "a", "input",
	"h1", "h2", "h3", "h4", "h5", "h6",
	"strong", "b", "em", "i", "u", "s", "del", "code", "sub", "sup", "mark",
}

// DefaultConfig returns the configuration used for ordinary browser pastes:
// structural blocks plus inline formatting survive, everything passes the
// scrub policy.
func DefaultConfig() *Config {
	return &Config{
		Mode:               ModeClean,
		PreserveTags:       append(append([]string{}, PreservedTags...), richTags...),
		RemoveTags:         []string{"o:p", "font"},
		StripSliceWrappers: true,
		DetectSpreadsheets: true,
		NormalizeUnicode:   true,
		Scrub:              true,
		MaxInputBytes:      DefaultMaxInputBytes,
	}
}

// PresetMinimal only repairs structure. Markup from trusted sources
// (the editor's own clipboard) passes through otherwise untouched.
func PresetMinimal() *Config {
	return &Config{
		Mode:               ModeKeep,
		StripSliceWrappers: true,
		DetectSpreadsheets: true,
		MaxInputBytes:      DefaultMaxInputBytes,
	}
}

// PresetStructural keeps only the preserved block structures and strips
// their attributes, as a paste into a plain block would.
func PresetStructural() *Config {
	cfg := DefaultConfig()
	cfg.PreserveTags = append([]string{}, PreservedTags...)
	cfg.StripAttributes = true
	return cfg
}

// PresetPlainText reduces a paste to paragraphs and line breaks.
func PresetPlainText() *Config {
	cfg := DefaultConfig()
	cfg.Mode = ModeText
	cfg.PreserveTags = []string{"p", "br"}
	cfg.StripAttributes = true
	cfg.DetectSpreadsheets = false
	cfg.RemoveEmptyParagraphs = true
	cfg.UnwrapLeadingParagraph = true
	return cfg
}

// PresetSpreadsheet treats every paste as a spreadsheet export.
func PresetSpreadsheet() *Config {
	cfg := DefaultConfig()
	cfg.AssumeSpreadsheet = true
	return cfg
}

// Presets returns the named presets in display order.
func Presets() []string {
	return []string{"default", "minimal", "structural", "plain-text", "spreadsheet"}
}

// PresetByName returns a copy of the named preset.
func PresetByName(name string) (*Config, error) {
	switch strings.ToLower(name) {
	case "", "default":
		return DefaultConfig(), nil
	case "minimal":
		return PresetMinimal(), nil
	case "structural":
		return PresetStructural(), nil
	case "plain-text", "text":
		return PresetPlainText(), nil
	case "spreadsheet":
		return PresetSpreadsheet(), nil
	default:
		return nil, fmt.Errorf("%w: unknown preset %q (available: %s)",
			ErrInvalidConfig, name, strings.Join(Presets(), ", "))
	}
}

// Merge merges another config into this one.
// Non-zero/non-empty values from other override this config.
// Tag lists are appended, not replaced.
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	merged := *c
	merged.PreserveTags = append([]string{}, c.PreserveTags...)
	merged.RemoveTags = append([]string{}, c.RemoveTags...)

	if other.Mode != "" {
		merged.Mode = other.Mode
	}
	merged.PreserveTags = appendMissing(merged.PreserveTags, other.PreserveTags...)
	merged.RemoveTags = appendMissing(merged.RemoveTags, other.RemoveTags...)

	if other.StripAttributes {
		merged.StripAttributes = true
	}
	if other.StripSliceWrappers {
		merged.StripSliceWrappers = true
	}
	if other.DetectSpreadsheets {
		merged.DetectSpreadsheets = true
	}
	if other.AssumeSpreadsheet {
		merged.AssumeSpreadsheet = true
	}
	if other.NormalizeUnicode {
		merged.NormalizeUnicode = true
	}
	if other.RemoveEmptyParagraphs {
		merged.RemoveEmptyParagraphs = true
	}
	if other.UnwrapLeadingParagraph {
		merged.UnwrapLeadingParagraph = true
	}
	if other.Scrub {
		merged.Scrub = true
	}
	if other.MaxInputBytes > 0 {
		merged.MaxInputBytes = other.MaxInputBytes
	}

	return &merged
}

func appendMissing(dst []string, items ...string) []string {
	seen := NewTagSet(dst...)
	for _, item := range items {
		if !seen.HasName(item) {
			dst = append(dst, item)
			seen[strings.ToLower(item)] = struct{}{}
		}
	}
	return dst
}

var validate = validator.New()

// Validate checks the configuration and reports every invalid field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s %s", e.Namespace(), formatValidationError(e)))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// formatValidationError creates a human-readable error message.
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", e.Param())
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}

// LoadConfig reads a YAML config file. Keys missing from the file keep
// their DefaultConfig values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML config data on top of DefaultConfig and validates it.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
