package pipeline

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/crawlgate/internal/config"
	"github.com/amosWeiskopf/crawlgate/internal/models"
	"github.com/amosWeiskopf/crawlgate/internal/testpages"
	"github.com/amosWeiskopf/crawlgate/pkg/dedup"
	"github.com/amosWeiskopf/crawlgate/pkg/extractor"
	"github.com/amosWeiskopf/crawlgate/pkg/links"
	"github.com/amosWeiskopf/crawlgate/pkg/quality"
	"github.com/amosWeiskopf/crawlgate/pkg/stats"
	"github.com/amosWeiskopf/crawlgate/pkg/trap"
	"github.com/amosWeiskopf/crawlgate/pkg/urlpolicy"
)

// recordingSink counts snapshot writes
type recordingSink struct {
	mu         sync.Mutex
	pageCounts []int
	topWords   int
	longest    []models.LongestPage
	subdomains [][]models.SubdomainCount
}

func (s *recordingSink) WritePageCount(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageCounts = append(s.pageCounts, n)
	return nil
}

func (s *recordingSink) WriteTopWords([]models.WordCount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topWords++
	return nil
}

func (s *recordingSink) WriteLongestPage(page models.LongestPage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.longest = append(s.longest, page)
	return nil
}

func (s *recordingSink) WriteSubdomains(rows []models.SubdomainCount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subdomains = append(s.subdomains, rows)
	return nil
}

func (s *recordingSink) Close() error { return nil }

func (s *recordingSink) checkpoints() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subdomains)
}

func newPipeline(t *testing.T) (*Pipeline, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	p, err := FromConfig(config.Default(), sink, zerolog.Nop())
	require.NoError(t, err)
	return p, sink
}

func page(text string, extra ...string) models.FetchResult {
	body := "<html><body><p>" + text + "</p>" + strings.Join(extra, "") + "</body></html>"
	return models.FetchResult{Status: 200, Body: []byte(body)}
}

func at(res models.FetchResult, finalURL string) models.FetchResult {
	res.FinalURL = finalURL
	return res
}

func TestProcessAcceptsAndDiscovers(t *testing.T) {
	p, _ := newPipeline(t)

	res := at(page(testpages.ML,
		`<a href="/people">People</a>`,
		`<a href="https://www.stat.uci.edu/seminars">Seminars</a>`,
		`<a href="https://example.com/">Elsewhere</a>`,
		`<a href="/slides.pdf">Slides</a>`,
		`<a href="/people#bio">Bio</a>`,
		`<a href="/ml">Self</a>`,
	), "https://www.ics.uci.edu/ml")

	d, err := p.ProcessDecision("https://www.ics.uci.edu/ml#top", res)
	require.NoError(t, err)

	assert.Equal(t, models.Accepted, d.Verdict)
	assert.Equal(t, models.ReasonAccepted, d.Reason)
	assert.Equal(t, "https://www.ics.uci.edu/ml", d.URL)
	assert.Equal(t, []string{
		"https://www.ics.uci.edu/people",
		"https://www.stat.uci.edu/seminars",
	}, d.Discovered)

	assert.Equal(t, Processed, p.Seen().State("https://www.ics.uci.edu/ml"))
	assert.Equal(t, Discovered, p.Seen().State("https://www.ics.uci.edu/people"))
	assert.Equal(t, Unseen, p.Seen().State("https://example.com/"))
}

func TestProcessIsIdempotent(t *testing.T) {
	p, sink := newPipeline(t)
	res := at(page(testpages.ML, `<a href="/people">People</a>`), "https://www.ics.uci.edu/ml")

	first, err := p.Process("https://www.ics.uci.edu/ml", res)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.ics.uci.edu/people"}, first)
	summary := p.Summary()

	d, err := p.ProcessDecision("https://www.ics.uci.edu/ml", res)
	require.NoError(t, err)
	assert.Equal(t, models.Rejected, d.Verdict)
	assert.Equal(t, models.ReasonSeen, d.Reason)

	again, err := p.Process("https://www.ics.uci.edu/ml#again", res)
	require.NoError(t, err)
	assert.NotNil(t, again)
	assert.Empty(t, again)

	after := p.Summary()
	assert.Equal(t, summary.UniquePages, after.UniquePages)
	assert.Equal(t, summary.TopWords, after.TopWords)
	assert.Equal(t, summary.Fingerprints, after.Fingerprints)
	assert.Equal(t, []int{1}, sink.pageCounts)
}

func TestDiscoveredURLCanBeProcessed(t *testing.T) {
	p, _ := newPipeline(t)

	out, err := p.Process("https://www.ics.uci.edu/ml",
		at(page(testpages.ML, `<a href="/systems">Systems</a>`), "https://www.ics.uci.edu/ml"))
	require.NoError(t, err)
	require.Equal(t, []string{"https://www.ics.uci.edu/systems"}, out)

	d, err := p.ProcessDecision("https://www.ics.uci.edu/systems",
		at(page(testpages.Systems, `<a href="/ml">ML</a>`), "https://www.ics.uci.edu/systems"))
	require.NoError(t, err)
	assert.Equal(t, models.Accepted, d.Verdict)
	// already processed pages are not handed out again
	assert.Empty(t, d.Discovered)
}

func TestRejectedURLCanBeRetried(t *testing.T) {
	p, _ := newPipeline(t)
	u := "https://www.ics.uci.edu/ml"

	d, err := p.ProcessDecision(u, models.FetchResult{Status: 503, FinalURL: u, Error: "service unavailable"})
	require.NoError(t, err)
	assert.Equal(t, models.ReasonEmpty, d.Reason)
	assert.Equal(t, Unseen, p.Seen().State(u))

	d, err = p.ProcessDecision(u, at(page(testpages.ML), u))
	require.NoError(t, err)
	assert.Equal(t, models.Accepted, d.Verdict)
	assert.Equal(t, Processed, p.Seen().State(u))

	s := p.Summary()
	assert.Equal(t, 1, s.UniquePages)
	assert.Equal(t, 2, s.Processed)
	assert.Equal(t, 1, s.Rejections[models.ReasonEmpty])
}

func TestResubmittedURLCountsTowardTrap(t *testing.T) {
	p, _ := newPipeline(t)
	u := "https://www.ics.uci.edu/events/2024/05"
	pattern, err := urlpolicy.PatternOf(u)
	require.NoError(t, err)

	thin := at(page("Only a handful of words here."), u)
	for i := 1; i <= 3; i++ {
		d, err := p.ProcessDecision(u, thin)
		require.NoError(t, err)
		assert.Equal(t, models.ReasonLowQuality, d.Reason, "attempt %d", i)
		assert.Equal(t, i, p.c.Trap.Count(pattern))
	}
	assert.Equal(t, Unseen, p.Seen().State(u))
}

func TestTrapFiresOnEleventhSighting(t *testing.T) {
	p, _ := newPipeline(t)
	notFound := models.FetchResult{Status: 404}

	for i := 1; i <= 10; i++ {
		d, err := p.ProcessDecision(fmt.Sprintf("https://www.ics.uci.edu/events/2024/%d", i), notFound)
		require.NoError(t, err)
		assert.Equal(t, models.ReasonEmpty, d.Reason, "sighting %d", i)
	}

	d, err := p.ProcessDecision("https://www.ics.uci.edu/events/2024/11", at(page(testpages.ML), "https://www.ics.uci.edu/events/2024/11"))
	require.NoError(t, err)
	assert.Equal(t, models.Rejected, d.Verdict)
	assert.Equal(t, models.ReasonTrap, d.Reason)

	assert.Equal(t, []string{"https://www.ics.uci.edu/events/[digit]/[digit]"}, p.Summary().TrapPatterns)
}

func TestRejections(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		res    models.FetchResult
		reason models.Reason
	}{
		{"not found", "https://www.ics.uci.edu/missing", models.FetchResult{Status: 404, Error: "not found"}, models.ReasonEmpty},
		{"empty body", "https://www.ics.uci.edu/blank", models.FetchResult{Status: 200}, models.ReasonEmpty},
		{"foreign host", "https://example.com/ml", page(testpages.ML), models.ReasonInadmissible},
		{"rejected extension", "https://www.ics.uci.edu/paper.pdf", page(testpages.ML), models.ReasonInadmissible},
		{"portal outside prefix", "https://today.uci.edu/news/ml", page(testpages.ML), models.ReasonInadmissible},
		{"too few words", "https://www.ics.uci.edu/short", page("Only a handful of words here."), models.ReasonLowQuality},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newPipeline(t)
			tt.res.FinalURL = tt.url

			d, err := p.ProcessDecision(tt.url, tt.res)
			require.NoError(t, err)
			assert.Equal(t, models.Rejected, d.Verdict)
			assert.Equal(t, tt.reason, d.Reason)
			assert.Empty(t, d.Discovered)
			assert.Equal(t, 1, p.Summary().Rejections[tt.reason])
		})
	}
}

func TestPortalPathIsAdmitted(t *testing.T) {
	p, _ := newPipeline(t)
	u := "https://today.uci.edu/department/information_computer_sciences/news/ml"

	d, err := p.ProcessDecision(u, at(page(testpages.ML), u))
	require.NoError(t, err)
	assert.Equal(t, models.Accepted, d.Verdict)
}

func TestNearDuplicateRejected(t *testing.T) {
	p, _ := newPipeline(t)

	d, err := p.ProcessDecision("https://www.ics.uci.edu/ml", at(page(testpages.ML), "https://www.ics.uci.edu/ml"))
	require.NoError(t, err)
	require.Equal(t, models.Accepted, d.Verdict)

	variant := strings.Replace(testpages.ML, "December deadline", "January deadline", 1)
	d, err = p.ProcessDecision("https://vision.ics.uci.edu/ml", at(page(variant), "https://vision.ics.uci.edu/ml"))
	require.NoError(t, err)
	assert.Equal(t, models.ReasonDuplicate, d.Reason)

	d, err = p.ProcessDecision("https://www.ics.uci.edu/history", at(page(testpages.History), "https://www.ics.uci.edu/history"))
	require.NoError(t, err)
	assert.Equal(t, models.Accepted, d.Verdict)

	s := p.Summary()
	assert.Equal(t, 2, s.UniquePages)
	assert.Equal(t, 2, s.Fingerprints)
	// the duplicate host never reached the subdomain index
	for _, row := range s.Subdomains {
		assert.NotEqual(t, "vision.ics.uci.edu", row.Host)
	}
}

func TestMalformedURL(t *testing.T) {
	p, _ := newPipeline(t)

	out, err := p.Process("http://[::1", page(testpages.ML))
	assert.ErrorIs(t, err, urlpolicy.ErrMalformedURL)
	assert.Empty(t, out)
	assert.Equal(t, 0, p.Seen().Len())
}

func TestStatisticsFollowAcceptedPages(t *testing.T) {
	p, sink := newPipeline(t)

	for path, text := range map[string]string{"ml": testpages.ML, "systems": testpages.Systems} {
		u := "https://www.ics.uci.edu/" + path
		_, err := p.Process(u, at(page(text), u))
		require.NoError(t, err)
	}

	s := p.Summary()
	assert.Equal(t, 2, s.UniquePages)
	assert.Equal(t, 2, s.Processed)
	require.Len(t, s.Subdomains, 1)
	assert.Equal(t, models.SubdomainCount{Origin: "https://www.ics.uci.edu", Host: "www.ics.uci.edu", Pages: 2}, s.Subdomains[0])
	assert.NotEmpty(t, s.TopWords)
	for _, w := range s.TopWords {
		assert.NotEqual(t, "the", w.Word)
		assert.Greater(t, len(w.Word), 2)
	}
	assert.NotEmpty(t, s.Longest.URL)

	// page count and top words after every accepted page, longest on each improvement
	assert.Equal(t, []int{1, 2}, sink.pageCounts)
	assert.Equal(t, 2, sink.topWords)
	require.NotEmpty(t, sink.longest)
	assert.Equal(t, s.Longest, sink.longest[len(sink.longest)-1])
}

func TestCheckpointEveryHundredAcceptedPages(t *testing.T) {
	sink := &recordingSink{}
	ext := extractor.New(extractor.ModeVisible, false)
	policy, err := urlpolicy.New(urlpolicy.Rules{AllowedHosts: []string{"ics.uci.edu"}})
	require.NoError(t, err)

	p := New(Components{
		Text:    ext,
		Policy:  policy,
		Trap:    trap.New(1000),
		Quality: quality.NewWordCount(ext, 1),
		Dedup:   dedup.New(0),
		Links:   links.New(ext, zerolog.Nop()),
		Stats:   stats.New(sink, ext, stats.Options{SubdomainSuffix: "uci.edu"}, zerolog.Nop()),
	}, 100, zerolog.Nop())

	for i := 1; i <= 250; i++ {
		u := fmt.Sprintf("https://www.ics.uci.edu/p/%d", i)
		d, err := p.ProcessDecision(u, at(page("content"), u))
		require.NoError(t, err)
		require.Equal(t, models.Accepted, d.Verdict)

		switch {
		case i < 100:
			require.Equal(t, 0, sink.checkpoints(), "page %d", i)
		case i < 200:
			require.Equal(t, 1, sink.checkpoints(), "page %d", i)
		default:
			require.Equal(t, 2, sink.checkpoints(), "page %d", i)
		}
	}

	assert.Equal(t, 100, sink.subdomains[0][0].Pages)
	assert.Equal(t, 200, sink.subdomains[1][0].Pages)
	assert.Equal(t, 2, p.Summary().Checkpoints)
}

func TestRejectedPagesDoNotCountTowardCheckpoints(t *testing.T) {
	sink := &recordingSink{}
	ext := extractor.New(extractor.ModeVisible, false)
	policy, err := urlpolicy.New(urlpolicy.Rules{AllowedHosts: []string{"ics.uci.edu"}})
	require.NoError(t, err)

	p := New(Components{
		Text:    ext,
		Policy:  policy,
		Trap:    trap.New(1000),
		Quality: quality.NewWordCount(ext, 1),
		Dedup:   dedup.New(0),
		Links:   links.New(ext, zerolog.Nop()),
		Stats:   stats.New(sink, ext, stats.Options{}, zerolog.Nop()),
	}, 2, zerolog.Nop())

	accept := func(u string) {
		_, err := p.Process(u, at(page("content"), u))
		require.NoError(t, err)
	}
	accept("https://www.ics.uci.edu/a")
	_, err = p.Process("https://www.ics.uci.edu/gone", models.FetchResult{Status: 500})
	require.NoError(t, err)
	assert.Equal(t, 0, sink.checkpoints())

	accept("https://www.ics.uci.edu/b")
	assert.Equal(t, 1, sink.checkpoints())
}

func TestConcurrentProcessAcceptsOnce(t *testing.T) {
	p, _ := newPipeline(t)
	u := "https://www.ics.uci.edu/ml"
	res := at(page(testpages.ML), u)

	var wg sync.WaitGroup
	verdicts := make(chan models.Verdict, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := p.ProcessDecision(u, res)
			if err == nil {
				verdicts <- d.Verdict
			}
		}()
	}
	wg.Wait()
	close(verdicts)

	accepted := 0
	for v := range verdicts {
		if v == models.Accepted {
			accepted++
		}
	}
	assert.Equal(t, 1, accepted)
	assert.Equal(t, 1, p.Summary().UniquePages)
}

func TestFromConfigRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Quality.Strategy = "vibes"

	_, err := FromConfig(cfg, &recordingSink{}, zerolog.Nop())
	assert.ErrorIs(t, err, config.ErrUnknownStrategy)
}

func TestSeenSet(t *testing.T) {
	s := NewSeenSet()

	assert.True(t, s.MarkDiscovered("a"))
	assert.False(t, s.MarkDiscovered("a"))
	assert.Equal(t, Discovered, s.State("a"))

	assert.True(t, s.MarkProcessed("a"))
	assert.False(t, s.MarkProcessed("a"))
	assert.False(t, s.MarkDiscovered("a"))
	assert.Equal(t, Processed, s.State("a"))

	assert.Equal(t, Unseen, s.State("b"))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 1, s.Count(Processed))
	assert.Equal(t, "processed", Processed.String())
}
