// Package links pulls candidate URLs out of fetched pages.
package links

import (
	whatwgUrl "github.com/nlnwa/whatwg-url/url"
	"github.com/rs/zerolog"

	"github.com/amosWeiskopf/crawlgate/internal/models"
	"github.com/amosWeiskopf/crawlgate/pkg/urlpolicy"
)

var urlParser = whatwgUrl.NewParser(whatwgUrl.WithPercentEncodeSinglePercentSign())

// HrefSource finds the raw href targets of a document
type HrefSource interface {
	Links(body []byte) []string
}

// Extractor resolves the links of a page into canonical absolute URLs
type Extractor struct {
	source HrefSource
	logger zerolog.Logger
}

// New creates an Extractor
func New(source HrefSource, logger zerolog.Logger) *Extractor {
	return &Extractor{
		source: source,
		logger: logger.With().Str("component", "links").Logger(),
	}
}

// Extract returns every link of the page resolved against its final URL, in
// document order. Pages without content yield an empty slice. Hrefs that do
// not resolve are skipped.
func (e *Extractor) Extract(res models.FetchResult) []string {
	if !res.HasContent() {
		return []string{}
	}

	hrefs := e.source.Links(res.Body)
	out := make([]string, 0, len(hrefs))
	for _, href := range hrefs {
		u, err := urlParser.ParseRef(res.FinalURL, href)
		if err != nil {
			e.logger.Debug().Err(err).Str("base", res.FinalURL).Str("href", href).Msg("unresolvable link")
			continue
		}
		canonical, err := urlpolicy.Normalize(u.Href(true))
		if err != nil {
			e.logger.Debug().Err(err).Str("href", href).Msg("link failed to normalize")
			continue
		}
		out = append(out, canonical)
	}
	return out
}
