package source

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeMIME(t *testing.T) {
	tests := map[string]string{
		"Text/HTML; charset=utf-8": MIMEHTML,
		"md":                       MIMEMarkdown,
		"text/x-markdown":          MIMEMarkdown,
		" TXT ":                    MIMEText,
		"application/xhtml+xml":    MIMEHTML,
		"image/png":                "image/png",
	}
	for in, want := range tests {
		if got := NormalizeMIME(in); got != want {
			t.Errorf("NormalizeMIME(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"full document", "<!DOCTYPE html><html><body><p>x</p></body></html>", MIMEHTML},
		{"fragment", "<ul><li>a</li></ul>", MIMEHTML},
		{"comment first", "<!-- StartFragment --><b>x</b>", MIMEHTML},
		{"heading", "# Heading\n\nbody text", MIMEMarkdown},
		{"task list", "- [ ] todo\n", MIMEMarkdown},
		{"link", "see [docs](https://example.com)", MIMEMarkdown},
		{"two weak signals", "- one\n- two\n", MIMEMarkdown},
		{"single weak signal", "1. first thing", MIMEText},
		{"plain prose", "just some words\non two lines", MIMEText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect([]byte(tt.content)); got != tt.want {
				t.Errorf("Detect(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestDocument_Resolve(t *testing.T) {
	d := Document{Content: "# not html", MIME: "html"}
	if got := d.Resolve(); got != MIMEHTML {
		t.Errorf("expected declared MIME to win, got %q", got)
	}
	d.MIME = ""
	if got := d.Resolve(); got != MIMEMarkdown {
		t.Errorf("expected detection, got %q", got)
	}
}

func TestToHTML(t *testing.T) {
	tests := []struct {
		name     string
		doc      Document
		contains string
		wantErr  error
	}{
		{
			name:     "html passes through",
			doc:      Document{Content: "<p>x</p>", MIME: MIMEHTML},
			contains: "<p>x</p>",
		},
		{
			name:     "markdown is rendered",
			doc:      Document{Content: "**bold**", MIME: "md"},
			contains: "<strong>bold</strong>",
		},
		{
			name:     "text is escaped",
			doc:      Document{Content: "a < b", MIME: MIMEText},
			contains: "<p>a &lt; b</p>",
		},
		{
			name:    "unsupported",
			doc:     Document{Content: "%PDF-1.4", MIME: "application/pdf"},
			wantErr: ErrUnsupportedFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.doc)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ToHTML() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToHTML() error = %v", err)
			}
			if !strings.Contains(got, tt.contains) {
				t.Errorf("expected %q in %q", tt.contains, got)
			}
		})
	}
}

func TestMarkdownToHTML_TaskList(t *testing.T) {
	got, err := MarkdownToHTML("- [x] done\n- [ ] open\n\n* plain\n")
	if err != nil {
		t.Fatalf("MarkdownToHTML() error = %v", err)
	}
	if strings.Count(got, `class="task-list"`) != 1 {
		t.Errorf("expected only the checkbox list to be tagged, got %q", got)
	}
	for _, want := range []string{`type="checkbox"`, `checked=""`, "<li>plain</li>"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in %q", want, got)
		}
	}
}

func TestTextToHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"paragraphs and breaks", "a\nb\n\nc<d>", "<p>a<br>b</p><p>c&lt;d&gt;</p>"},
		{"crlf", "a\r\nb", "<p>a<br>b</p>"},
		{"blank runs", "a\n \n\n\nb", "<p>a</p><p>b</p>"},
		{"empty", "  \n\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TextToHTML(tt.in); got != tt.want {
				t.Errorf("TextToHTML(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
