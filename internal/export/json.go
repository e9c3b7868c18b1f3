package export

import (
	"encoding/json"
	"io"
)

// JSONWriter outputs documents in JSON format for tool integration.
//
// Design decision: We use standard encoding/json rather than a
// third-party JSON library because it's sufficient for our needs and
// behaves consistently across Go versions.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the document as a single JSON object.
func (w *JSONWriter) Write(doc *Document) (int, error) {
	var data []byte
	var err error
	if w.indent {
		data, err = json.MarshalIndent(doc, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}

// JSONLWriter outputs one JSON object per line: first the metadata,
// then every result page, then every keyword node. Line-oriented output
// streams cleanly into jq and log pipelines.
type JSONLWriter struct {
	baseWriter
}

// NewJSONLWriter creates a JSONLWriter that outputs to the given writer.
func NewJSONLWriter(output io.Writer) *JSONLWriter {
	return &JSONLWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the document line by line.
func (w *JSONLWriter) Write(doc *Document) (int, error) {
	counter := &countingWriter{inner: w.output}
	enc := json.NewEncoder(counter)

	type line struct {
		Record string `json:"record"`
		Data   any    `json:"data"`
	}

	if err := enc.Encode(line{Record: "run", Data: doc.Metadata}); err != nil {
		return counter.n, err
	}
	for i := range doc.Results {
		if err := enc.Encode(line{Record: "serp", Data: &doc.Results[i]}); err != nil {
			return counter.n, err
		}
	}
	for i := range doc.Keywords {
		if err := enc.Encode(line{Record: "keyword", Data: &doc.Keywords[i]}); err != nil {
			return counter.n, err
		}
	}
	return counter.n, nil
}

// countingWriter tracks bytes written through it.
type countingWriter struct {
	inner io.Writer
	n     int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.inner.Write(p)
	c.n += n
	return n, err
}
