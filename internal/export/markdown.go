package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/serpharvest/serpharvest/internal/model"
)

// MarkdownWriter outputs documents in Markdown for documentation and
// sharing.
//
// Design decision: We use the nao1215/markdown library for fluent
// markdown generation: type-safe tables, lists, and code blocks without
// hand-assembled strings.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the document in Markdown format.
func (w *MarkdownWriter) Write(doc *Document) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, doc)
	w.writeResults(md, doc.Results)
	w.writeKeywords(md, doc.Keywords)
	w.writeStats(md, doc.Stats)
	w.writeFailures(md, doc.Failures)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, doc *Document) {
	md.H1("Harvest Report")
	md.PlainText("")

	meta := doc.Metadata
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", meta.ID},
			{"Kind", string(meta.Kind)},
			{"Seeds", fmt.Sprintf("%v", meta.Seeds)},
			{"Language", meta.Language},
			{"Country", meta.Country},
			{"Generated", meta.GeneratedAt.UTC().Format(time.RFC3339)},
			{"Tasks", strconv.Itoa(meta.TaskCount)},
			{"Failed tasks", strconv.Itoa(meta.FailedTasks)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeResults(md *markdown.Markdown, results []model.SerpResult) {
	if len(results) == 0 {
		return
	}

	md.H2("Search Results")
	md.PlainText("")
	for i := range results {
		res := &results[i]
		md.H3(fmt.Sprintf("%s (page %d)", res.Keyword, res.Page))
		md.PlainText("")

		rows := make([][]string, 0, len(res.Organic))
		for j := range res.Organic {
			org := &res.Organic[j]
			rows = append(rows, []string{
				strconv.Itoa(org.Position),
				org.Title,
				org.Domain,
				org.URL,
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"#", "Title", "Domain", "URL"},
			Rows:   rows,
		})
		md.PlainText("")

		if len(res.RelatedKeywords) > 0 {
			md.H4("Related searches")
			md.BulletList(res.RelatedKeywords...)
			md.PlainText("")
		}
		if len(res.PeopleAlsoAsk) > 0 {
			md.H4("People also ask")
			md.BulletList(res.PeopleAlsoAsk...)
			md.PlainText("")
		}
	}
}

func (w *MarkdownWriter) writeKeywords(md *markdown.Markdown, nodes []model.KeywordNode) {
	if len(nodes) == 0 {
		return
	}

	md.H2("Discovered Keywords")
	md.PlainText("")

	rows := make([][]string, 0, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		rows = append(rows, []string{
			n.Keyword,
			strconv.Itoa(n.Depth),
			n.Parent,
			strconv.Itoa(n.Relevance),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Keyword", "Depth", "Parent", "Relevance"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeStats(md *markdown.Markdown, stats *model.KeywordStats) {
	if stats == nil || stats.TotalKeywords == 0 {
		return
	}

	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Total keywords", strconv.Itoa(stats.TotalKeywords)},
			{"Average relevance", fmt.Sprintf("%.1f", stats.AverageRelevance)},
			{"Average length", fmt.Sprintf("%.1f", stats.AverageLength)},
			{"Average word count", fmt.Sprintf("%.2f", stats.AverageWordCount)},
			{"Long-tail share", fmt.Sprintf("%.1f%%", stats.LongTailPercentage)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, failures []model.TaskFailure) {
	if len(failures) == 0 {
		return
	}

	md.H2("Failed Tasks")
	md.PlainText("")

	rows := make([][]string, 0, len(failures))
	for _, f := range failures {
		rows = append(rows, []string{
			f.Keyword,
			string(f.Purpose),
			strconv.Itoa(f.Attempts),
			f.Reason,
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Keyword", "Purpose", "Attempts", "Reason"},
		Rows:   rows,
	})
}
