package reporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"sort"

	"github.com/amosWeiskopf/crawlgate/internal/config"
	"github.com/amosWeiskopf/crawlgate/internal/models"
)

// Formats supported by GenerateReport
var Formats = []string{"text", "json", "markdown", "html"}

// Reporter handles report generation in various formats
type Reporter struct{}

// New creates a new Reporter instance
func New() *Reporter {
	return &Reporter{}
}

// Open builds the snapshot sink selected by the storage configuration
func Open(cfg config.StorageConfig) (Sink, error) {
	switch cfg.Type {
	case "", "file":
		return NewFileSink(cfg.Path)
	case "sqlite":
		return NewSQLiteSink(cfg.Path)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownStorage, cfg.Type)
	}
}

// GenerateReport renders the summary in the specified format
func (r *Reporter) GenerateReport(summary models.Summary, format string) (string, error) {
	switch format {
	case "text":
		return r.generateText(summary), nil
	case "json":
		return r.generateJSON(summary)
	case "markdown":
		return r.generateMarkdown(summary), nil
	case "html":
		return r.generateHTML(summary)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// generateText concatenates the four snapshot files in their on-disk format
func (r *Reporter) generateText(s models.Summary) string {
	var buf bytes.Buffer
	buf.WriteString(FormatPageCount(s.UniquePages))
	buf.WriteString("\n")
	buf.WriteString(FormatLongestPage(s.Longest))
	buf.WriteString("\n")
	buf.WriteString(FormatTopWords(s.TopWords))
	buf.WriteString("\nSubdomains:\n")
	buf.WriteString(FormatSubdomains(s.Subdomains))
	return buf.String()
}

// generateJSON creates a JSON formatted report
func (r *Reporter) generateJSON(s models.Summary) (string, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(data), nil
}

// generateMarkdown creates a Markdown formatted report
func (r *Reporter) generateMarkdown(s models.Summary) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Crawl Report\n\n")
	fmt.Fprintf(&buf, "*Generated on %s*\n\n", s.GeneratedAt.Format("January 2, 2006"))

	fmt.Fprintf(&buf, "## Summary\n\n")
	fmt.Fprintf(&buf, "| Metric | Value |\n")
	fmt.Fprintf(&buf, "|--------|-------|\n")
	fmt.Fprintf(&buf, "| Unique pages | %d |\n", s.UniquePages)
	fmt.Fprintf(&buf, "| Processed | %d |\n", s.Processed)
	fmt.Fprintf(&buf, "| Discovered | %d |\n", s.Discovered)
	fmt.Fprintf(&buf, "| Checkpoints | %d |\n", s.Checkpoints)
	fmt.Fprintf(&buf, "| Fingerprints | %d |\n\n", s.Fingerprints)

	if s.Longest.URL != "" {
		fmt.Fprintf(&buf, "## Longest Page\n\n")
		fmt.Fprintf(&buf, "%s (%d words)\n\n", s.Longest.URL, s.Longest.WordCount)
	}

	if len(s.Rejections) > 0 {
		fmt.Fprintf(&buf, "## Rejections\n\n")
		reasons := make([]string, 0, len(s.Rejections))
		for reason := range s.Rejections {
			reasons = append(reasons, string(reason))
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			fmt.Fprintf(&buf, "- **%s:** %d\n", reason, s.Rejections[models.Reason(reason)])
		}
		fmt.Fprintf(&buf, "\n")
	}

	if len(s.TopWords) > 0 {
		fmt.Fprintf(&buf, "## Most Common Words\n\n")
		fmt.Fprintf(&buf, "| # | Word | Count |\n")
		fmt.Fprintf(&buf, "|---|------|-------|\n")
		for i, w := range s.TopWords {
			fmt.Fprintf(&buf, "| %d | %s | %d |\n", i+1, w.Word, w.Count)
		}
		fmt.Fprintf(&buf, "\n")
	}

	if len(s.Subdomains) > 0 {
		fmt.Fprintf(&buf, "## Subdomains\n\n")
		for _, row := range s.Subdomains {
			fmt.Fprintf(&buf, "- %s: %d\n", row.Origin, row.Pages)
		}
		fmt.Fprintf(&buf, "\n")
	}

	if len(s.TrapPatterns) > 0 {
		fmt.Fprintf(&buf, "## Trap Patterns\n\n")
		for _, p := range s.TrapPatterns {
			fmt.Fprintf(&buf, "- `%s`\n", p)
		}
		fmt.Fprintf(&buf, "\n")
	}

	return buf.String()
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Crawl Report</title>
    <style>
        body { font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; max-width: 960px; margin: 0 auto; padding: 20px; }
        table { border-collapse: collapse; }
        td, th { padding: 0.25rem 0.75rem; border-bottom: 1px solid #ddd; text-align: left; }
    </style>
</head>
<body>
    <h1>Crawl Report</h1>
    <p>Generated on {{.GeneratedAt.Format "January 2, 2006"}}</p>
    <p>Unique pages: <strong>{{.UniquePages}}</strong> of {{.Processed}} processed</p>
    {{if .Longest.URL}}<p>Longest page: <a href="{{.Longest.URL}}">{{.Longest.URL}}</a> ({{.Longest.WordCount}} words)</p>{{end}}

    {{if .TopWords}}
    <h2>Most Common Words</h2>
    <table>
        <tr><th>Word</th><th>Count</th></tr>
        {{range .TopWords}}<tr><td>{{.Word}}</td><td>{{.Count}}</td></tr>
        {{end}}
    </table>
    {{end}}

    {{if .Subdomains}}
    <h2>Subdomains</h2>
    <table>
        <tr><th>Origin</th><th>Pages</th></tr>
        {{range .Subdomains}}<tr><td>{{.Origin}}</td><td>{{.Pages}}</td></tr>
        {{end}}
    </table>
    {{end}}
</body>
</html>
`

// generateHTML creates an HTML formatted report
func (r *Reporter) generateHTML(s models.Summary) (string, error) {
	t, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, s); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}
