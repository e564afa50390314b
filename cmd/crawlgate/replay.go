package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/amosWeiskopf/crawlgate/internal/models"
	"github.com/amosWeiskopf/crawlgate/pkg/pipeline"
	"github.com/amosWeiskopf/crawlgate/pkg/urlpolicy"
)

// replayResult tallies one replay run
type replayResult struct {
	Processed int
	Accepted  int
	Rejected  int
	Missing   int
}

// loadRecords decodes a stream of JSON fetch records, one object after another
func loadRecords(r io.Reader) ([]models.Record, error) {
	dec := json.NewDecoder(r)
	var records []models.Record
	for {
		var rec models.Record
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
}

func replayFile(p *pipeline.Pipeline, path string, seeds []string, logger zerolog.Logger) (replayResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return replayResult{}, fmt.Errorf("failed to open replay file: %w", err)
	}
	defer f.Close()

	records, err := loadRecords(f)
	if err != nil {
		return replayResult{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return replay(p, records, seeds, logger), nil
}

// replay plays the harness: it processes the seeds, then every discovered URL
// in the order it was returned. URLs without a record are counted as missing.
func replay(p *pipeline.Pipeline, records []models.Record, seeds []string, logger zerolog.Logger) replayResult {
	byURL := make(map[string]models.Record, len(records))
	for _, rec := range records {
		canonical, err := urlpolicy.Normalize(rec.URL)
		if err != nil {
			logger.Warn().Err(err).Str("url", rec.URL).Msg("skipping record")
			continue
		}
		if _, dup := byURL[canonical]; !dup {
			byURL[canonical] = rec
		}
	}

	if len(seeds) == 0 && len(records) > 0 {
		seeds = []string{records[0].URL}
	}

	var result replayResult
	queue := append([]string(nil), seeds...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		canonical, err := urlpolicy.Normalize(next)
		if err != nil {
			logger.Warn().Err(err).Str("url", next).Msg("skipping seed")
			continue
		}
		rec, ok := byURL[canonical]
		if !ok {
			result.Missing++
			logger.Debug().Str("url", canonical).Msg("no recorded fetch")
			continue
		}

		d, err := p.ProcessDecision(rec.URL, rec.FetchResult())
		if err != nil {
			logger.Warn().Err(err).Str("url", rec.URL).Msg("processing failed")
			continue
		}
		result.Processed++
		if d.Verdict == models.Accepted {
			result.Accepted++
		} else {
			result.Rejected++
		}
		queue = append(queue, d.Discovered...)
	}

	logger.Info().
		Int("processed", result.Processed).
		Int("accepted", result.Accepted).
		Int("rejected", result.Rejected).
		Int("missing", result.Missing).
		Msg("replay finished")
	return result
}

// checkURLs prints one line per URL with its canonical form, trap pattern and
// admissibility
func checkURLs(out io.Writer, policy *urlpolicy.Policy, urls []string) error {
	for _, raw := range urls {
		canonical, err := urlpolicy.Normalize(raw)
		if err != nil {
			return err
		}
		pattern, err := urlpolicy.PatternOf(canonical)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\n  canonical:  %s\n  pattern:    %s\n  admissible: %t\n",
			raw, canonical, pattern, policy.IsAdmissible(canonical))
	}
	return nil
}
