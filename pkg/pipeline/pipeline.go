// Package pipeline decides, page by page, what enters the crawl corpus.
package pipeline

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/amosWeiskopf/crawlgate/internal/config"
	"github.com/amosWeiskopf/crawlgate/internal/models"
	"github.com/amosWeiskopf/crawlgate/pkg/dedup"
	"github.com/amosWeiskopf/crawlgate/pkg/extractor"
	"github.com/amosWeiskopf/crawlgate/pkg/links"
	"github.com/amosWeiskopf/crawlgate/pkg/quality"
	"github.com/amosWeiskopf/crawlgate/pkg/reporter"
	"github.com/amosWeiskopf/crawlgate/pkg/stats"
	"github.com/amosWeiskopf/crawlgate/pkg/trap"
	"github.com/amosWeiskopf/crawlgate/pkg/urlpolicy"
)

// DefaultCheckpointInterval is how many accepted pages separate two checkpoints
const DefaultCheckpointInterval = 100

// Components are the collaborators a Pipeline runs a page through
type Components struct {
	Text    quality.TextExtractor
	Policy  *urlpolicy.Policy
	Trap    *trap.Detector
	Quality quality.Strategy
	Dedup   *dedup.Detector
	Links   *links.Extractor
	Stats   *stats.Aggregator
}

// Pipeline owns all crawl admission state
type Pipeline struct {
	mu sync.Mutex

	seen               *SeenSet
	c                  Components
	checkpointInterval int
	logger             zerolog.Logger

	processed  int
	rejections map[models.Reason]int
}

// New creates a Pipeline. A non-positive interval falls back to
// DefaultCheckpointInterval.
func New(c Components, checkpointInterval int, logger zerolog.Logger) *Pipeline {
	if checkpointInterval <= 0 {
		checkpointInterval = DefaultCheckpointInterval
	}
	return &Pipeline{
		seen:               NewSeenSet(),
		c:                  c,
		checkpointInterval: checkpointInterval,
		logger:             logger.With().Str("component", "pipeline").Logger(),
		rejections:         make(map[models.Reason]int),
	}
}

// FromConfig wires every component from configuration
func FromConfig(cfg *config.Config, sink reporter.Sink, logger zerolog.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	ext := extractor.New(extractor.Mode(cfg.Content.Extractor), cfg.Content.DetectCharset)

	policy, err := urlpolicy.New(urlpolicy.Rules{
		AllowedHosts:       cfg.Admission.AllowedHosts,
		PortalHost:         cfg.Admission.PortalHost,
		PortalPathPrefix:   cfg.Admission.PortalPathPrefix,
		RejectedExtensions: cfg.Admission.RejectedExtensions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build admission policy: %w", err)
	}

	strategy, err := quality.New(ext, quality.Options{
		Strategy:       cfg.Quality.Strategy,
		MinWords:       cfg.Quality.MinWords,
		MinTextRatio:   cfg.Quality.MinTextRatio,
		MinKeywordHits: cfg.Quality.MinKeywordHits,
		Keywords:       cfg.Quality.Keywords,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build quality filter: %w", err)
	}

	agg := stats.New(sink, ext, stats.Options{
		SubdomainSuffix: cfg.Stats.SubdomainSuffix,
		TopWords:        cfg.Stats.TopWords,
		Stopwords:       cfg.Stats.Stopwords,
		LongestPageTags: extractor.BoilerplateTags,
		PersistInterval: cfg.Storage.PersistInterval,
	}, logger)

	return New(Components{
		Text:    ext,
		Policy:  policy,
		Trap:    trap.New(cfg.Trap.Threshold),
		Quality: strategy,
		Dedup:   dedup.New(cfg.Dedup.DistanceThreshold),
		Links:   links.New(ext, logger),
		Stats:   agg,
	}, cfg.Stats.CheckpointInterval, logger), nil
}

// Process runs one fetched page through the pipeline and returns the newly
// discovered candidate URLs. Rejected pages return an empty slice and no
// error; only a URL that cannot be parsed is an error.
func (p *Pipeline) Process(rawURL string, res models.FetchResult) ([]string, error) {
	d, err := p.ProcessDecision(rawURL, res)
	if err != nil {
		return []string{}, err
	}
	if d.Discovered == nil {
		return []string{}, nil
	}
	return d.Discovered, nil
}

// pending are the snapshot writes owed after a decision
type pending struct {
	longest    bool
	checkpoint bool
	progress   bool
}

// ProcessDecision is Process with the verdict and its reason
func (p *Pipeline) ProcessDecision(rawURL string, res models.FetchResult) (models.Decision, error) {
	d, todo, err := p.decide(rawURL, res)
	if err != nil {
		return d, err
	}

	if todo.longest {
		p.c.Stats.PersistLongest()
	}
	if todo.checkpoint {
		p.c.Stats.Checkpoint()
	}
	if todo.progress {
		p.c.Stats.PersistProgress()
	}
	return d, nil
}

func (p *Pipeline) decide(rawURL string, res models.FetchResult) (models.Decision, pending, error) {
	canonical, err := urlpolicy.Normalize(rawURL)
	if err != nil {
		return models.Decision{URL: rawURL, Verdict: models.Rejected}, pending{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.processed++
	if p.seen.State(canonical) == Processed {
		return p.reject(canonical, models.ReasonSeen), pending{}, nil
	}

	tripped, err := p.c.Trap.IsTrap(canonical)
	if err != nil {
		return p.reject(canonical, models.ReasonInadmissible), pending{}, err
	}
	if tripped {
		return p.reject(canonical, models.ReasonTrap), pending{}, nil
	}
	if !res.HasContent() {
		return p.reject(canonical, models.ReasonEmpty), pending{}, nil
	}
	if !p.c.Policy.IsAdmissible(canonical) {
		return p.reject(canonical, models.ReasonInadmissible), pending{}, nil
	}
	if !p.c.Quality.HasSufficientText(res.Body) {
		return p.reject(canonical, models.ReasonLowQuality), pending{}, nil
	}

	text := p.c.Text.Text(res.Body)
	if p.c.Dedup.IsDuplicate(text) {
		return p.reject(canonical, models.ReasonDuplicate), pending{}, nil
	}

	var todo pending
	todo.longest = p.c.Stats.ObserveLongest(canonical, res.Body)
	p.c.Stats.RecordWords(text)
	p.seen.MarkProcessed(canonical)
	p.c.Stats.RecordSubdomain(canonical)
	if n := p.c.Stats.CountPage(); n%p.checkpointInterval == 0 {
		todo.checkpoint = true
	}

	discovered := []string{}
	for _, link := range p.c.Links.Extract(res) {
		if !p.c.Policy.IsAdmissible(link) {
			continue
		}
		if p.seen.MarkDiscovered(link) {
			discovered = append(discovered, link)
		}
	}
	todo.progress = true

	p.logger.Debug().Str("url", canonical).Int("discovered", len(discovered)).Msg("accepted")
	return models.Decision{
		URL:        canonical,
		Verdict:    models.Accepted,
		Reason:     models.ReasonAccepted,
		Discovered: discovered,
	}, todo, nil
}

func (p *Pipeline) reject(canonical string, reason models.Reason) models.Decision {
	p.rejections[reason]++
	p.logger.Debug().Str("url", canonical).Str("reason", string(reason)).Msg("rejected")
	return models.Decision{URL: canonical, Verdict: models.Rejected, Reason: reason}
}

// Seen exposes the seen URL set
func (p *Pipeline) Seen() *SeenSet {
	return p.seen
}

// Summary combines the aggregated statistics with the pipeline counters
func (p *Pipeline) Summary() models.Summary {
	s := p.c.Stats.Snapshot()

	p.mu.Lock()
	s.Processed = p.processed
	s.Rejections = make(map[models.Reason]int, len(p.rejections))
	for reason, n := range p.rejections {
		s.Rejections[reason] = n
	}
	p.mu.Unlock()

	s.TrapPatterns = p.c.Trap.Tripped()
	s.Fingerprints = p.c.Dedup.Len()
	s.Discovered = p.seen.Count(Discovered)
	return s
}

// Flush writes every statistics snapshot
func (p *Pipeline) Flush() {
	p.c.Stats.Flush()
}
