package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	wordPattern   = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	letterPattern = regexp.MustCompile(`\b[a-z]{3,}\b`)
)

// Words splits text into word tokens the way a \w+ scanner would
func Words(text string) []string {
	return wordPattern.FindAllString(text, -1)
}

// CountWords returns the number of word tokens in text
func CountWords(text string) int {
	return len(wordPattern.FindAllStringIndex(text, -1))
}

// LetterWords returns lowercased alphabetic runs of three or more letters.
// Numbers, identifiers and markup leftovers are not counted.
func LetterWords(text string) []string {
	return letterPattern.FindAllString(strings.ToLower(text), -1)
}

// StopWords is a lookup set of words ignored in frequency statistics
type StopWords map[string]bool

// NewStopWords builds the lookup set, lowercasing every entry
func NewStopWords(words []string) StopWords {
	set := make(StopWords, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = true
	}
	return set
}

// FilterWords lowercases tokens and drops stop words and tokens of minLen runes or fewer
func FilterWords(tokens []string, stop StopWords, minLen int) []string {
	filtered := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.ToLower(tok)
		if utf8.RuneCountInString(tok) <= minLen || stop[tok] {
			continue
		}
		filtered = append(filtered, tok)
	}
	return filtered
}

// CountKeywords sums the whole-word occurrences of every keyword in text, case-insensitively
func CountKeywords(text string, keywords []string) int {
	if len(keywords) == 0 {
		return 0
	}
	want := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		want[strings.ToLower(k)] = true
	}

	hits := 0
	for _, tok := range Words(text) {
		if want[strings.ToLower(tok)] {
			hits++
		}
	}
	return hits
}
