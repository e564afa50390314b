package reporter

import (
	"fmt"
	"strings"

	"github.com/amosWeiskopf/crawlgate/internal/models"
)

// Kind names one persisted snapshot
type Kind string

const (
	KindPageCount  Kind = "unique_pages"
	KindTopWords   Kind = "common_words"
	KindLongest    Kind = "longest_page"
	KindSubdomains Kind = "subdomains"
)

// Kinds lists every snapshot kind in a stable order
var Kinds = []Kind{KindPageCount, KindTopWords, KindLongest, KindSubdomains}

// Sink persists statistics snapshots. Every write replaces the previous
// snapshot of the same kind.
type Sink interface {
	WritePageCount(n int) error
	WriteTopWords(words []models.WordCount) error
	WriteLongestPage(page models.LongestPage) error
	WriteSubdomains(rows []models.SubdomainCount) error
	Close() error
}

// FormatPageCount renders the unique page snapshot
func FormatPageCount(n int) string {
	return fmt.Sprintf("Total Unique Pages: %d\n", n)
}

// FormatTopWords renders the word frequency snapshot
func FormatTopWords(words []models.WordCount) string {
	var b strings.Builder
	b.WriteString("Most Common Words:\n")
	for _, w := range words {
		fmt.Fprintf(&b, "%s: %d\n", w.Word, w.Count)
	}
	return b.String()
}

// FormatLongestPage renders the longest page snapshot
func FormatLongestPage(page models.LongestPage) string {
	return fmt.Sprintf("Longest Page URL: %s\nWord Count: %d\n", page.URL, page.WordCount)
}

// FormatSubdomains renders one "scheme://host, count" line per subdomain
func FormatSubdomains(rows []models.SubdomainCount) string {
	var b strings.Builder
	for _, row := range rows {
		fmt.Fprintf(&b, "%s, %d\n", row.Origin, row.Pages)
	}
	return b.String()
}
