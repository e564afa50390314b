// Package dedup detects near-duplicate pages with 64-bit SimHash fingerprints.
package dedup

import (
	"math/bits"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ShingleWidth is the number of characters in one fingerprint feature
const ShingleWidth = 4

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// Features turns text into weighted character shingles. The text is lowercased
// and stripped of everything but word characters before shingling.
func Features(text string) map[string]int {
	runes := []rune(nonWord.ReplaceAllString(strings.ToLower(text), ""))

	features := make(map[string]int)
	if len(runes) <= ShingleWidth {
		features[string(runes)]++
		return features
	}
	for i := 0; i+ShingleWidth <= len(runes); i++ {
		features[string(runes[i:i+ShingleWidth])]++
	}
	return features
}

// Fingerprint computes the SimHash of text. Each bit is a weighted majority
// vote over the xxhash of every feature, so similar texts share most bits.
func Fingerprint(text string) uint64 {
	var votes [64]int
	for feature, weight := range Features(text) {
		h := xxhash.Sum64String(feature)
		for i := 0; i < 64; i++ {
			if h&(1<<uint(i)) != 0 {
				votes[i] += weight
			} else {
				votes[i] -= weight
			}
		}
	}

	var fp uint64
	for i, v := range votes {
		if v > 0 {
			fp |= 1 << uint(i)
		}
	}
	return fp
}

// Distance returns the Hamming distance between two fingerprints
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}
