package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

// CSVWriter outputs documents as comma-separated values. Scrape runs
// produce one row per organic result; expansion runs produce one row
// per discovered keyword. A document carrying both emits the organic
// rows only.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the document as CSV.
func (w *CSVWriter) Write(doc *Document) (int, error) {
	counter := &countingWriter{inner: w.output}
	cw := csv.NewWriter(counter)

	if len(doc.Results) > 0 {
		if err := w.writeResults(cw, doc); err != nil {
			return counter.n, err
		}
	} else {
		if err := w.writeKeywords(cw, doc); err != nil {
			return counter.n, err
		}
	}

	cw.Flush()
	return counter.n, cw.Error()
}

func (w *CSVWriter) writeResults(cw *csv.Writer, doc *Document) error {
	header := []string{"keyword", "page", "position", "title", "url", "domain", "description"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := range doc.Results {
		res := &doc.Results[i]
		for j := range res.Organic {
			org := &res.Organic[j]
			row := []string{
				res.Keyword,
				strconv.Itoa(res.Page),
				strconv.Itoa(org.Position),
				org.Title,
				org.URL,
				org.Domain,
				org.Description,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *CSVWriter) writeKeywords(cw *csv.Writer, doc *Document) error {
	header := []string{"keyword", "depth", "parent", "relevance", "source_query", "discovered_at"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := range doc.Keywords {
		n := &doc.Keywords[i]
		row := []string{
			n.Keyword,
			strconv.Itoa(n.Depth),
			n.Parent,
			strconv.Itoa(n.Relevance),
			n.SourceQuery,
			n.DiscoveredAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}
