package output

import (
	"fmt"
	"strings"

	"github.com/jmylchreest/pastehtml/pkg/normalize"
)

// Report is the serializable outcome of normalizing one document.
type Report struct {
	Document string              `json:"document" yaml:"document"`
	Preset   string              `json:"preset,omitempty" yaml:"preset,omitempty"`
	Origin   normalize.Origin    `json:"origin,omitempty" yaml:"origin,omitempty"`
	Rule     string              `json:"sniff_rule,omitempty" yaml:"sniff_rule,omitempty"`
	Error    string              `json:"error,omitempty" yaml:"error,omitempty"`
	Warnings []normalize.Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Stats    *normalize.Stats    `json:"stats,omitempty" yaml:"stats,omitempty"`
	Content  string              `json:"content,omitempty" yaml:"content,omitempty"`
}

// NewReport summarizes a result. Content is only carried when
// includeContent is set.
func NewReport(document, preset string, res *normalize.Result, includeContent bool) *Report {
	r := &Report{Document: document, Preset: preset}
	if res == nil {
		return r
	}

	r.Warnings = res.Warnings
	r.Stats = res.Stats
	if res.Error != nil {
		r.Error = res.Error.Error()
	}
	if res.Stats != nil {
		r.Origin = res.Stats.Origin
		r.Rule = res.Stats.SniffRule
	}
	if includeContent {
		r.Content = res.Content
	}
	return r
}

// Failed reports whether the document was rejected.
func (r *Report) Failed() bool {
	return r.Error != ""
}

// String renders the report for terminals.
func (r *Report) String() string {
	var sb strings.Builder

	header := r.Document
	if r.Preset != "" {
		header += " [" + r.Preset + "]"
	}
	sb.WriteString("== " + header + "\n")

	if r.Failed() {
		sb.WriteString(fmt.Sprintf("Error: %s\n", r.Error))
	}
	if r.Stats != nil {
		sb.WriteString(r.Stats.String())
	}
	for _, w := range r.Warnings {
		sb.WriteString("Warning: " + w.String() + "\n")
	}
	return sb.String()
}
