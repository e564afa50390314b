package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFetchResultHasContent(t *testing.T) {
	tests := []struct {
		name string
		res  FetchResult
		want bool
	}{
		{"ok with body", FetchResult{Status: 200, Body: []byte("<p>hi</p>")}, true},
		{"ok without body", FetchResult{Status: 200}, false},
		{"ok with empty body", FetchResult{Status: 200, Body: []byte{}}, false},
		{"not found", FetchResult{Status: 404, Body: []byte("missing")}, false},
		{"redirect", FetchResult{Status: 301, Body: []byte("moved")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.res.HasContent())
		})
	}
}

func TestRecordFetchResult(t *testing.T) {
	res := Record{URL: "https://www.ics.uci.edu/a", Status: 200, Body: "<p>x</p>"}.FetchResult()
	assert.Equal(t, "https://www.ics.uci.edu/a", res.FinalURL)
	assert.Equal(t, []byte("<p>x</p>"), res.Body)

	res = Record{URL: "https://www.ics.uci.edu/a", FinalURL: "https://www.ics.uci.edu/b", Status: 500}.FetchResult()
	assert.Equal(t, "https://www.ics.uci.edu/b", res.FinalURL)
	assert.Nil(t, res.Body)
}
