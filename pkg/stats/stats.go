// Package stats aggregates word frequencies, the longest page and per-subdomain
// page counts for accepted pages, and persists them as snapshots.
package stats

import (
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/amosWeiskopf/crawlgate/internal/models"
	"github.com/amosWeiskopf/crawlgate/pkg/reporter"
	"github.com/amosWeiskopf/crawlgate/pkg/utils"
)

// MinWordLength is the rune count a word must exceed to be counted
const MinWordLength = 2

// TextSource strips the given tags from a document and returns its text
type TextSource interface {
	StrippedText(body []byte, tags ...string) string
}

// Options configures an Aggregator
type Options struct {
	SubdomainSuffix string
	TopWords        int
	Stopwords       []string
	// LongestPageTags are removed before counting the words of a page for
	// the longest page record.
	LongestPageTags []string
	// PersistInterval is the minimum spacing between progress snapshots.
	// Zero writes them on every call.
	PersistInterval time.Duration
}

type subdomain struct {
	origin string
	urls   map[string]struct{}
}

// Aggregator collects statistics over accepted pages
type Aggregator struct {
	mu sync.Mutex

	sink    reporter.Sink
	text    TextSource
	logger  zerolog.Logger
	limiter *rate.Limiter

	stop        utils.StopWords
	suffix      string
	topN        int
	boilerplate []string

	words       map[string]int
	order       []string
	longest     models.LongestPage
	subdomains  map[string]*subdomain
	pages       int
	checkpoints int

	// wmu serializes sink writes; marks holds the newest state written per kind
	wmu   sync.Mutex
	marks map[reporter.Kind]int
}

// New creates an Aggregator writing snapshots to sink
func New(sink reporter.Sink, text TextSource, opts Options, logger zerolog.Logger) *Aggregator {
	limit := rate.Inf
	if opts.PersistInterval > 0 {
		limit = rate.Every(opts.PersistInterval)
	}
	if opts.TopWords <= 0 {
		opts.TopWords = 50
	}

	return &Aggregator{
		sink:        sink,
		text:        text,
		logger:      logger.With().Str("component", "stats").Logger(),
		limiter:     rate.NewLimiter(limit, 1),
		stop:        utils.NewStopWords(opts.Stopwords),
		suffix:      strings.ToLower(opts.SubdomainSuffix),
		topN:        opts.TopWords,
		boilerplate: opts.LongestPageTags,
		words:       make(map[string]int),
		subdomains:  make(map[string]*subdomain),
		marks:       make(map[reporter.Kind]int),
	}
}

// RecordWords adds the words of text to the frequency table. Words are
// lowercased; stop words and words of two characters or fewer are skipped.
func (a *Aggregator) RecordWords(text string) {
	tokens := utils.FilterWords(utils.Words(text), a.stop, MinWordLength)

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, w := range tokens {
		if _, ok := a.words[w]; !ok {
			a.order = append(a.order, w)
		}
		a.words[w]++
	}
}

// ObserveLongest counts the words of body and replaces the longest page
// record when the count strictly exceeds it. Nothing is persisted.
func (a *Aggregator) ObserveLongest(rawURL string, body []byte) bool {
	count := len(utils.LetterWords(a.text.StrippedText(body, a.boilerplate...)))

	a.mu.Lock()
	defer a.mu.Unlock()
	if count <= a.longest.WordCount {
		return false
	}
	a.longest = models.LongestPage{URL: rawURL, WordCount: count}
	return true
}

// UpdateLongest is ObserveLongest followed by an immediate write of the
// longest page snapshot when the record changed.
func (a *Aggregator) UpdateLongest(rawURL string, body []byte) bool {
	if !a.ObserveLongest(rawURL, body) {
		return false
	}
	a.PersistLongest()
	return true
}

// RecordSubdomain adds rawURL to its host's page set when the host is the
// configured suffix or a subdomain of it. The scheme of the first URL seen
// for a host is used in its report line.
func (a *Aggregator) RecordSubdomain(rawURL string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return
	}
	host := strings.ToLower(u.Hostname())
	if host == "" || !a.inSuffix(host) {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	sd, ok := a.subdomains[host]
	if !ok {
		sd = &subdomain{origin: u.Scheme + "://" + host, urls: make(map[string]struct{})}
		a.subdomains[host] = sd
	}
	sd.urls[rawURL] = struct{}{}
}

func (a *Aggregator) inSuffix(host string) bool {
	if a.suffix == "" {
		return true
	}
	return host == a.suffix || strings.HasSuffix(host, "."+a.suffix)
}

// CountPage records one more accepted page and returns the new total
func (a *Aggregator) CountPage() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pages++
	return a.pages
}

// Pages returns the number of accepted pages
func (a *Aggregator) Pages() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pages
}

// TopWords returns the n most frequent words. Equal counts keep the order in
// which the words were first seen.
func (a *Aggregator) TopWords(n int) []models.WordCount {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.topWordsLocked(n)
}

func (a *Aggregator) topWordsLocked(n int) []models.WordCount {
	all := make([]models.WordCount, len(a.order))
	for i, w := range a.order {
		all[i] = models.WordCount{Word: w, Count: a.words[w]}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Count > all[j].Count
	})
	if n >= 0 && len(all) > n {
		all = all[:n]
	}
	return all
}

// Longest returns the current longest page record
func (a *Aggregator) Longest() models.LongestPage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.longest
}

// Subdomains returns one row per recorded host, sorted by host
func (a *Aggregator) Subdomains() []models.SubdomainCount {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.subdomainsLocked()
}

func (a *Aggregator) subdomainsLocked() []models.SubdomainCount {
	rows := make([]models.SubdomainCount, 0, len(a.subdomains))
	for host, sd := range a.subdomains {
		rows = append(rows, models.SubdomainCount{Origin: sd.origin, Host: host, Pages: len(sd.urls)})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Host < rows[j].Host })
	return rows
}

// Snapshot returns a copy of the aggregated statistics
func (a *Aggregator) Snapshot() models.Summary {
	a.mu.Lock()
	defer a.mu.Unlock()
	return models.Summary{
		GeneratedAt: time.Now().UTC(),
		UniquePages: a.pages,
		Checkpoints: a.checkpoints,
		Longest:     a.longest,
		TopWords:    a.topWordsLocked(a.topN),
		Subdomains:  a.subdomainsLocked(),
	}
}
