package models

import "time"

// WordCount is one entry of the word frequency table
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// LongestPage records the accepted page with the most words
type LongestPage struct {
	URL       string `json:"url"`
	WordCount int    `json:"word_count"`
}

// SubdomainCount is one line of the subdomain report
type SubdomainCount struct {
	Origin string `json:"origin"` // scheme://host
	Host   string `json:"host"`
	Pages  int    `json:"pages"`
}

// Summary is a point-in-time view of the crawl statistics
type Summary struct {
	GeneratedAt  time.Time        `json:"generated_at"`
	UniquePages  int              `json:"unique_pages"`
	Processed    int              `json:"processed"`
	Checkpoints  int              `json:"checkpoints"`
	Longest      LongestPage      `json:"longest_page"`
	TopWords     []WordCount      `json:"top_words"`
	Subdomains   []SubdomainCount `json:"subdomains"`
	Rejections   map[Reason]int   `json:"rejections,omitempty"`
	TrapPatterns []string         `json:"trap_patterns,omitempty"`
	Fingerprints int              `json:"fingerprints"`
	Discovered   int              `json:"discovered"`
}
