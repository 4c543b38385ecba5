package normalize

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"golang.org/x/net/html"

	"github.com/jmylchreest/pastehtml/pkg/source"
)

func mustNew(t *testing.T, cfg *Config, opts ...Option) *Normalizer {
	t.Helper()
	n, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return n
}

func TestNew(t *testing.T) {
	t.Run("nil config uses default", func(t *testing.T) {
		n := mustNew(t, nil)
		if n.Config().Mode != ModeClean {
			t.Errorf("expected default mode, got %q", n.Config().Mode)
		}
		if n.Stats() != nil {
			t.Error("expected no stats before the first run")
		}
	})

	t.Run("invalid config is rejected", func(t *testing.T) {
		_, err := New(&Config{Mode: "loud"})
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestName(t *testing.T) {
	if got := mustNew(t, nil).Name(); got != "pastehtml" {
		t.Errorf("expected name 'pastehtml', got '%s'", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		doc        source.Document
		config     *Config
		contains   []string
		excludes   []string
		wantOrigin Origin
	}{
		{
			name: "word paste inside editor slice",
			doc: source.Document{
				Content: `<div data-pm-slice="1 1 []"><p class="MsoNormal"><span style="color:red">Hello<o:p></o:p></span></p></div>`,
			},
			contains:   []string{"<p>Hello</p>"},
			excludes:   []string{"span", "data-pm-slice", "o:p", "MsoNormal"},
			wantOrigin: OriginHTML,
		},
		{
			name: "script and handlers are scrubbed",
			doc: source.Document{
				Content: `<p onclick="steal()">Hi <a href="javascript:alert(1)">x</a><script>alert(1)</script></p>`,
				MIME:    "text/html",
			},
			contains:   []string{"Hi"},
			excludes:   []string{"onclick", "javascript:", "<script", "alert"},
			wantOrigin: OriginHTML,
		},
		{
			name: "spreadsheet export keeps its table",
			doc: source.Document{
				Content: "<html xmlns:x=\"urn:schemas-microsoft-com:office:excel\"><body><table>\n<tr><td>1</td><td></td></tr>\n</table></body></html>",
			},
			contains:   []string{"<td>1</td>", "<td><p></p></td>"},
			wantOrigin: OriginSpreadsheet,
		},
		{
			name: "markdown task list",
			doc: source.Document{
				Content: "- [x] done\n- [ ] todo\n",
				MIME:    "markdown",
			},
			contains:   []string{`data-type="taskList"`, `data-checked="true"`, `data-checked="false"`, "done", "todo"},
			excludes:   []string{"task-list"},
			wantOrigin: OriginMarkdown,
		},
		{
			name: "plain text preset",
			doc: source.Document{
				Content: "Hello\nworld",
				MIME:    "text/plain",
			},
			config:     PresetPlainText(),
			contains:   []string{"Hello", "world", "<br"},
			excludes:   []string{"<p>"},
			wantOrigin: OriginText,
		},
		{
			name: "minimal preset keeps inline styling",
			doc: source.Document{
				Content: `<p><span style="color:red">x</span></p><ul><li></li></ul>`,
			},
			config:     PresetMinimal(),
			contains:   []string{`<span style="color:red">x</span>`, "<li><p></p></li>"},
			wantOrigin: OriginHTML,
		},
		{
			name: "structural preset flattens inline markup",
			doc: source.Document{
				Content: `<p>intro</p><table class="grid"><tr><td><b>cell</b></td></tr></table>`,
			},
			config:     PresetStructural(),
			contains:   []string{"intro", "<td>cell</td>"},
			excludes:   []string{"<b>", "class=", "<p>intro"},
			wantOrigin: OriginHTML,
		},
		{
			name: "spreadsheet preset skips flattening",
			doc: source.Document{
				Content: `<div><table><tr><td><b>1</b></td></tr></table></div>`,
			},
			config:     PresetSpreadsheet(),
			contains:   []string{"<div>", "<b>1</b>"},
			wantOrigin: OriginSpreadsheet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := mustNew(t, tt.config)
			result := n.Normalize(tt.doc)

			if result.Error != nil {
				t.Fatalf("Normalize() error = %v", result.Error)
			}
			for _, want := range tt.contains {
				if !strings.Contains(result.Content, want) {
					t.Errorf("expected output to contain %q, got %q", want, result.Content)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(result.Content, unwanted) {
					t.Errorf("expected output not to contain %q, got %q", unwanted, result.Content)
				}
			}
			if result.Stats.Origin != tt.wantOrigin {
				t.Errorf("Origin = %q, want %q", result.Stats.Origin, tt.wantOrigin)
			}
		})
	}
}

func TestNormalize_Errors(t *testing.T) {
	t.Run("input too large", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxInputBytes = 16
		n := mustNew(t, cfg)

		result := n.Normalize(source.Document{Content: strings.Repeat("<p>x</p>", 10), Name: "big.html"})
		if !errors.Is(result.Error, ErrInputTooLarge) {
			t.Fatalf("expected ErrInputTooLarge, got %v", result.Error)
		}
		if !strings.Contains(result.Error.Error(), "big.html") {
			t.Errorf("expected document name in error, got %v", result.Error)
		}
		if result.Content != "" {
			t.Errorf("expected no content, got %q", result.Content)
		}
		if result.Stats.InputBytes != 80 {
			t.Errorf("InputBytes = %d, want 80", result.Stats.InputBytes)
		}
	})

	t.Run("unsupported format", func(t *testing.T) {
		n := mustNew(t, nil)
		result := n.Normalize(source.Document{Content: "%PDF-1.4", MIME: "application/pdf"})
		if !errors.Is(result.Error, ErrUnsupportedFormat) {
			t.Errorf("expected ErrUnsupportedFormat, got %v", result.Error)
		}
	})

	t.Run("clean returns errors", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxInputBytes = 1
		n := mustNew(t, cfg)
		if _, err := n.Clean("<p>too big</p>"); !errors.Is(err, ErrInputTooLarge) {
			t.Errorf("expected ErrInputTooLarge, got %v", err)
		}
	})
}

func TestNormalize_Stats(t *testing.T) {
	n := mustNew(t, nil)
	in := `<div data-pm-slice="1"><ul class="task-list"><li><input type="checkbox" checked> a</li></ul></div>`

	result := n.Normalize(source.Document{Content: in})
	stats := n.Stats()

	if stats != result.Stats {
		t.Fatal("expected Stats() to report the last run")
	}
	if stats.InputBytes != len(in) || stats.OutputBytes != len(result.Content) {
		t.Errorf("unexpected sizes: %d -> %d", stats.InputBytes, stats.OutputBytes)
	}
	if stats.SliceWrappersRemoved != 1 || stats.ChecklistsConverted != 1 || stats.TaskItemsMarked != 1 {
		t.Errorf("unexpected counters: %+v", stats)
	}
	for _, step := range []string{StepConvert, StepSniff, StepSliceWrappers, StepSanitize, StepOrganize, StepScrub} {
		if _, ok := stats.StepDurations[step]; !ok {
			t.Errorf("expected duration for step %q", step)
		}
	}
	if !strings.Contains(stats.String(), "Checklists: 1 converted") {
		t.Errorf("unexpected summary:\n%s", stats.String())
	}
}

func TestNormalize_SniffRuleOption(t *testing.T) {
	never := SniffRule{Name: "never", Match: func(*html.Node) bool { return false }}
	n := mustNew(t, nil, WithSniffRules(never))

	result := n.Normalize(source.Document{Content: `<table><tr><td>1</td></tr></table>`})
	if result.Stats.Origin != OriginHTML {
		t.Errorf("expected custom rules to disable detection, got origin %q", result.Stats.Origin)
	}
}

func TestNormalize_UnicodeNFC(t *testing.T) {
	n := mustNew(t, nil)
	// decomposed input: "e" followed by U+0301
	got, err := n.Clean("<p>cafe\u0301</p>")
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if !strings.Contains(got, "caf\u00e9") {
		t.Errorf("expected composed form, got %q", got)
	}
}

func TestNormalize_Concurrent(t *testing.T) {
	n := mustNew(t, nil)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := n.Clean(`<div><p>para</p><ul><li></li></ul></div>`)
			if err != nil {
				t.Errorf("Clean() error = %v", err)
				return
			}
			if !strings.Contains(out, "<li><p></p></li>") {
				t.Errorf("unexpected output %q", out)
			}
		}()
	}
	wg.Wait()
}
