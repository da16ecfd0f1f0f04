package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables article bodies in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with article bodies.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	for _, site := range report.Sites {
		w.writeSite(&sb, site)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run-level information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *Report) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          CRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Generated:        %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Sites:            %d\n", len(report.Sites)))
	sb.WriteString(fmt.Sprintf("Pages Classified: %d\n", report.TotalPages()))
	sb.WriteString(fmt.Sprintf("Articles Found:   %d\n", report.TotalArticles()))
	sb.WriteString("\n")
}

// writeSite writes one site's section.
func (w *SimpleWriter) writeSite(sb *strings.Builder, site Site) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(strings.ToUpper(site.Domain))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Seed URL: %s\n", site.URL))
	sb.WriteString(fmt.Sprintf("  Session:  %s\n", site.LoginState))

	if site.Error != "" {
		sb.WriteString(fmt.Sprintf("  Status:   ERROR - %s\n\n", site.Error))
		return
	}
	sb.WriteString("  Status:   Complete\n\n")

	w.writeClassificationSummary(sb, site)
	w.writeArticles(sb, site)
}

// writeClassificationSummary writes the per-label page counts.
func (w *SimpleWriter) writeClassificationSummary(sb *strings.Builder, site Site) {
	counts := site.ClassificationCounts()
	if len(counts) == 0 {
		sb.WriteString("  No pages classified\n\n")
		return
	}

	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		sb.WriteString(fmt.Sprintf("  %-10s %d\n", strings.ToUpper(label)+":", counts[label]))
	}
	sb.WriteString("\n")
}

// writeArticles writes the extracted articles.
func (w *SimpleWriter) writeArticles(sb *strings.Builder, site Site) {
	articles := site.Articles()
	if len(articles) == 0 {
		return
	}

	for _, a := range articles {
		sb.WriteString(fmt.Sprintf("  [+] %s\n", a.Article.Title))
		sb.WriteString(fmt.Sprintf("      %s\n", a.URL))
		if w.verbose && a.Article.Body != "" {
			sb.WriteString(fmt.Sprintf("      %s\n", a.Article.Body))
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by sevenbot\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
