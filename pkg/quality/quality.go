// Package quality rejects pages that carry too little informational text to be worth indexing.
package quality

import (
	"fmt"

	"github.com/amosWeiskopf/crawlgate/pkg/utils"
)

// TextExtractor returns the visible text of raw markup
type TextExtractor interface {
	Text(body []byte) string
}

// Strategy decides whether a page body has enough text
type Strategy interface {
	Name() string
	HasSufficientText(body []byte) bool
}

// WordCount accepts pages with at least Min word tokens of visible text
type WordCount struct {
	Min       int
	extractor TextExtractor
}

// NewWordCount creates the absolute word-count strategy
func NewWordCount(extractor TextExtractor, min int) *WordCount {
	return &WordCount{Min: min, extractor: extractor}
}

// Name returns the strategy name
func (w *WordCount) Name() string { return "word_count" }

// HasSufficientText implements Strategy
func (w *WordCount) HasSufficientText(body []byte) bool {
	if len(body) == 0 {
		return false
	}
	return utils.CountWords(w.extractor.Text(body)) >= w.Min
}

// TextDensity accepts pages whose visible text makes up at least MinRatio of the
// markup and that mention the keyword set at least MinKeywordHits times.
type TextDensity struct {
	MinRatio       float64
	MinKeywordHits int
	Keywords       []string
	extractor      TextExtractor
}

// NewTextDensity creates the text-to-markup ratio strategy
func NewTextDensity(extractor TextExtractor, minRatio float64, minKeywordHits int, keywords []string) *TextDensity {
	return &TextDensity{
		MinRatio:       minRatio,
		MinKeywordHits: minKeywordHits,
		Keywords:       keywords,
		extractor:      extractor,
	}
}

// Name returns the strategy name
func (d *TextDensity) Name() string { return "text_density" }

// HasSufficientText implements Strategy
func (d *TextDensity) HasSufficientText(body []byte) bool {
	if len(body) == 0 {
		return false
	}
	text := d.extractor.Text(body)
	ratio := float64(len(text)) / float64(len(body))
	if ratio < d.MinRatio {
		return false
	}
	return utils.CountKeywords(text, d.Keywords) >= d.MinKeywordHits
}

// Options carries the settings for every strategy
type Options struct {
	Strategy       string
	MinWords       int
	MinTextRatio   float64
	MinKeywordHits int
	Keywords       []string
}

// New returns the strategy named in opts
func New(extractor TextExtractor, opts Options) (Strategy, error) {
	switch opts.Strategy {
	case "", "word_count":
		return NewWordCount(extractor, opts.MinWords), nil
	case "text_density":
		return NewTextDensity(extractor, opts.MinTextRatio, opts.MinKeywordHits, opts.Keywords), nil
	default:
		return nil, fmt.Errorf("unknown quality strategy: %s", opts.Strategy)
	}
}
