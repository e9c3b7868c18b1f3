package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// XLSXWriter outputs documents as an Excel workbook with one sheet per
// section: run metadata, organic results, and discovered keywords.
type XLSXWriter struct {
	baseWriter
}

// NewXLSXWriter creates an XLSXWriter that outputs to the given writer.
func NewXLSXWriter(output io.Writer) *XLSXWriter {
	return &XLSXWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the document as an xlsx workbook.
func (w *XLSXWriter) Write(doc *Document) (int, error) {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory file

	if err := w.writeRunSheet(f, doc); err != nil {
		return 0, err
	}
	if len(doc.Results) > 0 {
		if err := w.writeResultsSheet(f, doc); err != nil {
			return 0, err
		}
	}
	if len(doc.Keywords) > 0 {
		if err := w.writeKeywordsSheet(f, doc); err != nil {
			return 0, err
		}
	}

	n, err := f.WriteTo(w.output)
	return int(n), err
}

// writeRunSheet fills the default sheet with run metadata.
func (w *XLSXWriter) writeRunSheet(f *excelize.File, doc *Document) error {
	const sheet = "Run"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	meta := doc.Metadata
	rows := [][]any{
		{"Property", "Value"},
		{"Run ID", meta.ID},
		{"Kind", string(meta.Kind)},
		{"Seeds", fmt.Sprintf("%v", meta.Seeds)},
		{"Language", meta.Language},
		{"Country", meta.Country},
		{"Generated", meta.GeneratedAt.UTC().Format(time.RFC3339)},
		{"Tasks", meta.TaskCount},
		{"Failed tasks", meta.FailedTasks},
	}
	return writeRows(f, sheet, rows)
}

func (w *XLSXWriter) writeResultsSheet(f *excelize.File, doc *Document) error {
	const sheet = "Results"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]any{{"Keyword", "Page", "Position", "Title", "URL", "Domain", "Description"}}
	for i := range doc.Results {
		res := &doc.Results[i]
		for j := range res.Organic {
			org := &res.Organic[j]
			rows = append(rows, []any{
				res.Keyword, res.Page, org.Position, org.Title, org.URL, org.Domain, org.Description,
			})
		}
	}
	return writeRows(f, sheet, rows)
}

func (w *XLSXWriter) writeKeywordsSheet(f *excelize.File, doc *Document) error {
	const sheet = "Keywords"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]any{{"Keyword", "Depth", "Parent", "Relevance", "Source query", "Discovered"}}
	for i := range doc.Keywords {
		n := &doc.Keywords[i]
		rows = append(rows, []any{
			n.Keyword, n.Depth, n.Parent, n.Relevance, n.SourceQuery,
			n.DiscoveredAt.UTC().Format(time.RFC3339),
		})
	}
	return writeRows(f, sheet, rows)
}

// writeRows writes rows starting at A1.
func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
