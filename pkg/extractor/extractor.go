package extractor

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/markusmobius/go-trafilatura"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html"
	"golang.org/x/text/encoding/htmlindex"
)

// Mode selects how page text is extracted
type Mode string

const (
	// ModeVisible returns every visible text node of the document
	ModeVisible Mode = "visible"
	// ModeMain returns the main content block found by trafilatura
	ModeMain Mode = "main"
)

// invisibleTags never contribute visible text
var invisibleTags = []string{"script", "style", "noscript", "template"}

// BoilerplateTags are stripped before counting words for the longest page
var BoilerplateTags = []string{"script", "style", "nav", "header", "footer", "aside"}

// Extractor handles content extraction from HTML
type Extractor struct {
	mode          Mode
	detectCharset bool
}

// New creates a new Extractor instance
func New(mode Mode, detectCharset bool) *Extractor {
	if mode == "" {
		mode = ModeVisible
	}
	return &Extractor{mode: mode, detectCharset: detectCharset}
}

// Decode returns body as UTF-8. Bodies that are already valid UTF-8, or whose
// charset cannot be detected, are returned unchanged.
func (e *Extractor) Decode(body []byte) []byte {
	if !e.detectCharset || utf8.Valid(body) {
		return body
	}

	result, err := chardet.NewHtmlDetector().DetectBest(body)
	if err != nil || result == nil {
		return body
	}
	enc, err := htmlindex.Get(result.Charset)
	if err != nil {
		return body
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return body
	}
	return decoded
}

// Text extracts the page text according to the extractor mode
func (e *Extractor) Text(body []byte) string {
	body = e.Decode(body)
	if e.mode == ModeMain {
		result, err := trafilatura.Extract(bytes.NewReader(body), trafilatura.Options{})
		if err == nil && result != nil && result.ContentText != "" {
			return strings.Join(strings.Fields(result.ContentText), " ")
		}
	}
	return visibleText(body, invisibleTags)
}

// StrippedText extracts visible text after removing the given tags
func (e *Extractor) StrippedText(body []byte, tags ...string) string {
	return visibleText(e.Decode(body), tags)
}

// Links returns every href of an <a> element in document order, unresolved
func (e *Extractor) Links(body []byte) []string {
	doc, err := html.Parse(bytes.NewReader(e.Decode(body)))
	if err != nil {
		return nil
	}

	var links []string
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					links = append(links, attr.Val)
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(doc)

	return links
}

// visibleText joins the trimmed text nodes of the document with single spaces
func visibleText(body []byte, remove []string) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	if len(remove) > 0 {
		doc.Find(strings.Join(remove, ", ")).Remove()
	}

	var parts []string
	var f func(*html.Node)
	f = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if s := strings.TrimSpace(n.Data); s != "" {
				parts = append(parts, s)
			}
		case html.CommentNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	for _, n := range doc.Nodes {
		f(n)
	}

	return strings.Join(parts, " ")
}
