package commands

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOutputCleaner(t *testing.T) {
	tests := []struct {
		format  string
		pretty  bool
		name    string
		ext     string
		wantErr bool
	}{
		{format: "html", name: "chain(noop)", ext: "html"},
		{format: "", pretty: true, name: "chain(pretty)", ext: "html"},
		{format: "Markdown", name: "chain(markdown)", ext: "md"},
		{format: "pdf", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			cl, ext, err := outputCleaner(tt.format, tt.pretty, false, false)
			if (err != nil) != tt.wantErr {
				t.Fatalf("outputCleaner() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if cl.Name() != tt.name || ext != tt.ext {
				t.Errorf("outputCleaner() = (%s, %s), want (%s, %s)", cl.Name(), ext, tt.name, tt.ext)
			}
		})
	}
}

func TestContentSink(t *testing.T) {
	dir := t.TempDir()

	t.Run("stdout", func(t *testing.T) {
		buf := &bytes.Buffer{}
		s, err := newContentSink("", "html", 2, buf)
		if err != nil {
			t.Fatal(err)
		}
		_ = s.write("a", "<p>a</p>")
		_ = s.write("b", "<p>b</p>")
		if buf.String() != "<p>a</p>\n<p>b</p>\n" {
			t.Errorf("unexpected stdout: %q", buf.String())
		}
	})

	t.Run("directory", func(t *testing.T) {
		s, err := newContentSink(dir, "md", 2, io.Discard)
		if err != nil {
			t.Fatal(err)
		}
		if err := s.write("in/paste.html", "# x"); err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(filepath.Join(dir, "paste.md"))
		if err != nil || string(data) != "# x" {
			t.Errorf("unexpected file content %q, err %v", data, err)
		}
	})

	t.Run("single file", func(t *testing.T) {
		path := filepath.Join(dir, "out.html")
		s, err := newContentSink(path, "html", 1, io.Discard)
		if err != nil {
			t.Fatal(err)
		}
		_ = s.write("stdin", "<p>x</p>")
		if data, _ := os.ReadFile(path); string(data) != "<p>x</p>" {
			t.Errorf("unexpected file content %q", data)
		}
	})

	t.Run("file for several inputs", func(t *testing.T) {
		if _, err := newContentSink(filepath.Join(dir, "one.html"), "html", 3, io.Discard); err == nil {
			t.Error("expected error when several inputs target one file")
		}
	})
}

func TestNormalizeCommand_Stdin(t *testing.T) {
	out := &bytes.Buffer{}
	rootCmd.SetArgs([]string{"normalize", "--quiet", "--mime", "html"})
	rootCmd.SetIn(strings.NewReader(`<div data-pm-slice="1 1 []"><p class="MsoNormal">Hi<o:p></o:p></p></div>`))
	rootCmd.SetOut(out)
	rootCmd.SetErr(io.Discard)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "<p>Hi</p>") || strings.Contains(got, "MsoNormal") {
		t.Errorf("unexpected output %q", got)
	}
}
