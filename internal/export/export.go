package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/serpharvest/serpharvest/internal/model"
)

// ErrUnknownFormat is returned when a format name has no writer.
var ErrUnknownFormat = errors.New("export: unknown format")

// Document is the unit of export: one finished run.
type Document struct {
	// Metadata records the run's provenance.
	Metadata model.RunMetadata `json:"metadata"`

	// Results holds the scraped result pages, when the run scraped.
	Results []model.SerpResult `json:"results,omitempty"`

	// Keywords holds the discovered keyword nodes, when the run expanded.
	Keywords []model.KeywordNode `json:"keywords,omitempty"`

	// Stats summarizes the keyword tree. Nil for scrape runs.
	Stats *model.KeywordStats `json:"stats,omitempty"`

	// Failures lists tasks dropped after exhausting retries.
	Failures []model.TaskFailure `json:"failures,omitempty"`
}

// Writer outputs a document in one format.
//
// Design decision: We use an interface to allow different output
// formats and destinations with the same API: files, stdout, or
// network connections all look the same to callers.
type Writer interface {
	// Write outputs the document to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(doc *Document) (int, error)
}

// Formats lists the supported format names.
func Formats() []string {
	return []string{"json", "jsonl", "csv", "md", "xlsx"}
}

// ForFormat returns the writer for a format name.
func ForFormat(format string, output io.Writer) (Writer, error) {
	switch format {
	case "json":
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case "jsonl":
		return NewJSONLWriter(output), nil
	case "csv":
		return NewCSVWriter(output), nil
	case "md":
		return NewMarkdownWriter(output), nil
	case "xlsx":
		return NewXLSXWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// MultiWriter writes a document to several Writers in order.
// Useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the document to all configured Writers.
// Returns the total bytes written. Stops on the first error.
func (m *MultiWriter) Write(doc *Document) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(doc)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides the shared output destination.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
