package models

import "net/http"

// FetchResult is what the crawling harness hands over for one fetched page
type FetchResult struct {
	Status   int    `json:"status"`
	FinalURL string `json:"final_url"`
	Body     []byte `json:"body,omitempty"`
	Error    string `json:"error,omitempty"`
}

// HasContent reports whether the fetch produced a usable body
func (r FetchResult) HasContent() bool {
	return r.Status == http.StatusOK && len(r.Body) > 0
}

// Verdict is the terminal state of a page in the admission pipeline
type Verdict string

const (
	Accepted Verdict = "accepted"
	Rejected Verdict = "rejected"
)

// Reason explains why a page ended in its verdict
type Reason string

const (
	ReasonAccepted     Reason = "accepted"
	ReasonSeen         Reason = "seen"
	ReasonTrap         Reason = "trap"
	ReasonEmpty        Reason = "empty"
	ReasonInadmissible Reason = "inadmissible"
	ReasonLowQuality   Reason = "low_quality"
	ReasonDuplicate    Reason = "duplicate"
)

// Decision is the outcome of running one page through the pipeline
type Decision struct {
	URL        string   `json:"url"`
	Verdict    Verdict  `json:"verdict"`
	Reason     Reason   `json:"reason"`
	Discovered []string `json:"discovered,omitempty"`
}

// Record is one line of a replay file
type Record struct {
	URL      string `json:"url"`
	Status   int    `json:"status"`
	FinalURL string `json:"final_url"`
	Body     string `json:"body"`
	Error    string `json:"error,omitempty"`
}

// FetchResult converts the record into the pipeline input
func (r Record) FetchResult() FetchResult {
	res := FetchResult{
		Status:   r.Status,
		FinalURL: r.FinalURL,
		Error:    r.Error,
	}
	if res.FinalURL == "" {
		res.FinalURL = r.URL
	}
	if r.Body != "" {
		res.Body = []byte(r.Body)
	}
	return res
}
