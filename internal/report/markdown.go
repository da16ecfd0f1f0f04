package report

import (
	"io"
	"sort"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	for _, site := range report.Sites {
		w.writeSite(md, site)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run-level information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *Report) {
	md.H1("Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Sites", strconv.Itoa(len(report.Sites))},
			{"Pages Classified", strconv.Itoa(report.TotalPages())},
			{"Articles Found", strconv.Itoa(report.TotalArticles())},
		},
	})
	md.PlainText("")
}

// writeSite writes one site's section: status, classification breakdown,
// and the articles table.
func (w *MarkdownWriter) writeSite(md *markdown.Markdown, site Site) {
	md.H2(site.Domain)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed URL", "`" + site.URL + "`"},
			{"Session", site.LoginState},
			{"Pages Classified", strconv.Itoa(len(site.Results))},
			{"Status", w.statusText(site)},
		},
	})
	md.PlainText("")

	if site.Error != "" {
		md.Warningf("Crawl of %s failed: %s", site.Domain, site.Error)
		md.PlainText("")
		return
	}

	w.writeClassificationChart(md, site)
	w.writeArticles(md, site)
}

// statusText returns the status text based on the site's outcome.
func (w *MarkdownWriter) statusText(site Site) string {
	if site.Error != "" {
		return "❌ Error"
	}
	return "✅ Complete"
}

// writeClassificationChart writes a mermaid pie chart for the site's
// classification distribution.
func (w *MarkdownWriter) writeClassificationChart(md *markdown.Markdown, site Site) {
	counts := site.ClassificationCounts()
	if len(counts) == 0 {
		return
	}

	titler := cases.Title(language.English)

	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Page Classification"),
		piechart.WithShowData(true),
	)
	for _, label := range labels {
		chart.LabelAndIntValue(titler.String(label), uint64(counts[label]))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeArticles writes the table of extracted articles.
func (w *MarkdownWriter) writeArticles(md *markdown.Markdown, site Site) {
	articles := site.Articles()
	if len(articles) == 0 {
		md.PlainText("No articles found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(articles))
	for i, a := range articles {
		rows[i] = []string{
			truncateString(a.Article.Title, 60),
			truncateString(a.URL, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Title", "URL"},
		Rows:   rows,
	})
	md.PlainText("")

	// Full article bodies collapse into details blocks to keep the
	// document scannable.
	for _, a := range articles {
		if a.Article.Body != "" {
			md.Details(a.Article.Title, a.Article.Body)
		}
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by sevenbot*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
