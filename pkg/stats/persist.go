package stats

import (
	"github.com/amosWeiskopf/crawlgate/internal/models"
	"github.com/amosWeiskopf/crawlgate/pkg/reporter"
)

// Snapshot writes never fail the caller; sink errors are logged and dropped.
// Every statistic only grows, so each write carries a mark (page count, word
// count or recorded subdomain pages) and a write older than the last one of
// its kind is skipped.

// Checkpoint writes the subdomain report
func (a *Aggregator) Checkpoint() {
	a.mu.Lock()
	a.checkpoints++
	n, pages := a.checkpoints, a.pages
	rows := a.subdomainsLocked()
	a.mu.Unlock()

	a.logger.Info().Int("checkpoint", n).Int("pages", pages).Int("subdomains", len(rows)).Msg("checkpoint")
	a.persistSubdomains(rows)
}

// PersistLongest writes the longest page snapshot
func (a *Aggregator) PersistLongest() {
	a.persistLongest(a.Longest())
}

// PersistPageCount writes the accepted page count
func (a *Aggregator) PersistPageCount() {
	a.persistPageCount(a.Pages())
}

// PersistTopWords writes the n most common words
func (a *Aggregator) PersistTopWords(n int) {
	a.mu.Lock()
	words, pages := a.topWordsLocked(n), a.pages
	a.mu.Unlock()
	a.persistTopWords(words, pages)
}

// PersistProgress writes the page count and top words unless a previous
// progress write happened less than the persist interval ago. It reports
// whether the snapshots were written.
func (a *Aggregator) PersistProgress() bool {
	if !a.limiter.Allow() {
		return false
	}
	a.PersistPageCount()
	a.PersistTopWords(a.topN)
	return true
}

// Flush writes every snapshot regardless of the persist interval
func (a *Aggregator) Flush() {
	a.PersistPageCount()
	a.PersistTopWords(a.topN)
	a.PersistLongest()
	a.persistSubdomains(a.Subdomains())
}

func (a *Aggregator) persistPageCount(n int) {
	a.write(reporter.KindPageCount, n, func() error {
		return a.sink.WritePageCount(n)
	})
}

func (a *Aggregator) persistTopWords(words []models.WordCount, pages int) {
	a.write(reporter.KindTopWords, pages, func() error {
		return a.sink.WriteTopWords(words)
	})
}

func (a *Aggregator) persistLongest(page models.LongestPage) {
	a.write(reporter.KindLongest, page.WordCount, func() error {
		return a.sink.WriteLongestPage(page)
	})
}

func (a *Aggregator) persistSubdomains(rows []models.SubdomainCount) {
	total := 0
	for _, row := range rows {
		total += row.Pages
	}
	a.write(reporter.KindSubdomains, total, func() error {
		return a.sink.WriteSubdomains(rows)
	})
}

func (a *Aggregator) write(kind reporter.Kind, mark int, fn func() error) {
	a.wmu.Lock()
	defer a.wmu.Unlock()

	if last, ok := a.marks[kind]; ok && mark < last {
		a.logger.Debug().Str("kind", string(kind)).Int("mark", mark).Int("written", last).Msg("skipping stale snapshot")
		return
	}
	if err := fn(); err != nil {
		a.logger.Warn().Err(err).Str("kind", string(kind)).Msg("failed to persist snapshot")
		return
	}
	a.marks[kind] = mark
}
