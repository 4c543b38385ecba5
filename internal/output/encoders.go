package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// jsonWriter buffers reports and emits one object, or an array when more
// than one report was written.
type jsonWriter struct {
	w       *bufio.Writer
	pretty  bool
	indent  string
	reports []*Report
}

func newJSONWriter(w io.Writer, pretty bool, indent string) *jsonWriter {
	return &jsonWriter{w: bufio.NewWriter(w), pretty: pretty, indent: indent}
}

func (w *jsonWriter) Write(r *Report) error {
	w.reports = append(w.reports, r)
	return nil
}

func (w *jsonWriter) Close() error {
	if len(w.reports) == 0 {
		return nil
	}

	var v any = w.reports
	if len(w.reports) == 1 {
		v = w.reports[0]
	}

	var (
		data []byte
		err  error
	)
	if w.pretty {
		data, err = json.MarshalIndent(v, "", w.indent)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	if _, err := w.w.Write(append(data, '\n')); err != nil {
		return err
	}
	return w.w.Flush()
}

// jsonlWriter streams one compact object per line.
type jsonlWriter struct {
	w *bufio.Writer
}

func newJSONLWriter(w io.Writer) *jsonlWriter {
	return &jsonlWriter{w: bufio.NewWriter(w)}
}

func (w *jsonlWriter) Write(r *Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	if _, err := w.w.Write(append(data, '\n')); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *jsonlWriter) Close() error {
	return w.w.Flush()
}

// yamlWriter buffers reports like jsonWriter.
type yamlWriter struct {
	w       *bufio.Writer
	reports []*Report
}

func newYAMLWriter(w io.Writer) *yamlWriter {
	return &yamlWriter{w: bufio.NewWriter(w)}
}

func (w *yamlWriter) Write(r *Report) error {
	w.reports = append(w.reports, r)
	return nil
}

func (w *yamlWriter) Close() error {
	if len(w.reports) == 0 {
		return nil
	}

	encoder := yaml.NewEncoder(w.w)
	encoder.SetIndent(2)

	var v any = w.reports
	if len(w.reports) == 1 {
		v = w.reports[0]
	}
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	return w.w.Flush()
}

// textWriter prints the human summary of each report as it arrives.
type textWriter struct {
	w       *bufio.Writer
	written int
}

func newTextWriter(w io.Writer) *textWriter {
	return &textWriter{w: bufio.NewWriter(w)}
}

func (w *textWriter) Write(r *Report) error {
	if w.written > 0 {
		if _, err := w.w.WriteString("\n"); err != nil {
			return err
		}
	}
	w.written++
	if _, err := w.w.WriteString(r.String()); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *textWriter) Close() error {
	return w.w.Flush()
}
