package normalize

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Origin describes where a document came from, as far as the pipeline can tell.
type Origin string

const (
	OriginHTML        Origin = "html"
	OriginSpreadsheet Origin = "spreadsheet"
	OriginMarkdown    Origin = "markdown"
	OriginText        Origin = "text"
)

// Stats captures what the pipeline did to a document.
type Stats struct {
	// Size metrics
	InputBytes  int `json:"input_bytes" yaml:"input_bytes"`
	OutputBytes int `json:"output_bytes" yaml:"output_bytes"`

	// Detection
	Origin    Origin `json:"origin" yaml:"origin"`
	SniffRule string `json:"sniff_rule,omitempty" yaml:"sniff_rule,omitempty"`

	// Sanitizer
	TextNodesDropped    int `json:"text_nodes_dropped" yaml:"text_nodes_dropped"`
	WrappersFlattened   int `json:"wrappers_flattened" yaml:"wrappers_flattened"`
	AttributesStripped  int `json:"attributes_stripped" yaml:"attributes_stripped"`
	ParagraphsCoalesced int `json:"paragraphs_coalesced" yaml:"paragraphs_coalesced"`

	// Slice cleaner
	SliceWrappersRemoved int `json:"slice_wrappers_removed" yaml:"slice_wrappers_removed"`

	// Organizer
	ChecklistsConverted int `json:"checklists_converted" yaml:"checklists_converted"`
	TaskItemsMarked     int `json:"task_items_marked" yaml:"task_items_marked"`
	EmptyItemsFilled    int `json:"empty_items_filled" yaml:"empty_items_filled"`
	ImagesHoisted       int `json:"images_hoisted" yaml:"images_hoisted"`

	// Tables
	WhitespaceNodesRemoved int `json:"whitespace_nodes_removed" yaml:"whitespace_nodes_removed"`
	EmptyCellsFilled       int `json:"empty_cells_filled" yaml:"empty_cells_filled"`

	// Extras
	EmptyParagraphsRemoved int `json:"empty_paragraphs_removed" yaml:"empty_paragraphs_removed"`
	ElementsUnwrapped      int `json:"elements_unwrapped" yaml:"elements_unwrapped"`

	// Timing
	StepDurations map[string]time.Duration `json:"step_durations_ns" yaml:"step_durations_ns"`
	TotalDuration time.Duration            `json:"total_duration_ns" yaml:"total_duration_ns"`
}

// NewStats creates a new Stats instance with initialized maps.
func NewStats() *Stats {
	return &Stats{
		StepDurations: make(map[string]time.Duration),
	}
}

// ReductionPercent returns the percentage reduction in size.
func (s *Stats) ReductionPercent() float64 {
	if s.InputBytes == 0 {
		return 0
	}
	return float64(s.InputBytes-s.OutputBytes) / float64(s.InputBytes) * 100
}

// RecordStep records how long a pipeline step took.
func (s *Stats) RecordStep(step string, d time.Duration) {
	s.StepDurations[step] += d
}

// Steps returns the recorded step names in sorted order.
func (s *Stats) Steps() []string {
	steps := make([]string, 0, len(s.StepDurations))
	for step := range s.StepDurations {
		steps = append(steps, step)
	}
	sort.Strings(steps)
	return steps
}

// String returns a human-readable summary of the stats.
func (s *Stats) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Size: %s -> %s (%.1f%% reduction)\n",
		humanize.Bytes(uint64(s.InputBytes)), humanize.Bytes(uint64(s.OutputBytes)), s.ReductionPercent()))

	if s.Origin != "" {
		sb.WriteString(fmt.Sprintf("Origin: %s", s.Origin))
		if s.SniffRule != "" {
			sb.WriteString(fmt.Sprintf(" (rule: %s)", s.SniffRule))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Sanitize: %d wrappers flattened, %d text nodes dropped, %d attributes stripped, %d paragraphs coalesced\n",
		s.WrappersFlattened, s.TextNodesDropped, s.AttributesStripped, s.ParagraphsCoalesced))

	if s.SliceWrappersRemoved > 0 {
		sb.WriteString(fmt.Sprintf("Slice wrappers removed: %d\n", s.SliceWrappersRemoved))
	}

	if s.ChecklistsConverted > 0 {
		sb.WriteString(fmt.Sprintf("Checklists: %d converted, %d task items\n", s.ChecklistsConverted, s.TaskItemsMarked))
	}

	if s.EmptyItemsFilled > 0 || s.ImagesHoisted > 0 {
		sb.WriteString(fmt.Sprintf("Repairs: %d empty items filled, %d images hoisted\n", s.EmptyItemsFilled, s.ImagesHoisted))
	}

	if s.WhitespaceNodesRemoved > 0 || s.EmptyCellsFilled > 0 {
		sb.WriteString(fmt.Sprintf("Tables: %d whitespace nodes removed, %d empty cells filled\n",
			s.WhitespaceNodesRemoved, s.EmptyCellsFilled))
	}

	if s.EmptyParagraphsRemoved > 0 || s.ElementsUnwrapped > 0 {
		sb.WriteString(fmt.Sprintf("Extras: %d empty paragraphs removed, %d elements unwrapped\n",
			s.EmptyParagraphsRemoved, s.ElementsUnwrapped))
	}

	if len(s.StepDurations) > 0 {
		parts := make([]string, 0, len(s.StepDurations))
		for _, step := range s.Steps() {
			parts = append(parts, fmt.Sprintf("%s=%v", step, s.StepDurations[step].Round(time.Microsecond)))
		}
		sb.WriteString("Timing: " + strings.Join(parts, ", "))
		sb.WriteString(fmt.Sprintf(", total=%v\n", s.TotalDuration.Round(time.Microsecond)))
	}

	return sb.String()
}

// Warning represents a non-fatal issue encountered while normalizing.
type Warning struct {
	Phase   string `json:"phase" yaml:"phase"`
	Message string `json:"message" yaml:"message"`
	Context string `json:"context,omitempty" yaml:"context,omitempty"`
}

// String returns a formatted warning message.
func (w Warning) String() string {
	if w.Context != "" {
		return fmt.Sprintf("[%s] %s (context: %s)", w.Phase, w.Message, w.Context)
	}
	return fmt.Sprintf("[%s] %s", w.Phase, w.Message)
}

// Result contains the output of a normalization run.
type Result struct {
	// Document is the name of the input, when it had one.
	Document string `json:"document,omitempty" yaml:"document,omitempty"`

	// Content is the normalized markup. Failed steps leave the previous
	// step's output in place.
	Content string `json:"content" yaml:"content"`

	Stats *Stats `json:"stats" yaml:"stats"`

	Warnings []Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	// Error is set when the document was rejected outright.
	Error error `json:"-" yaml:"-"`
}

// AddWarning adds a warning to the result.
func (r *Result) AddWarning(phase, message, context string) {
	r.Warnings = append(r.Warnings, Warning{
		Phase:   phase,
		Message: message,
		Context: context,
	})
}

// HasWarnings returns true if there are any warnings.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}
