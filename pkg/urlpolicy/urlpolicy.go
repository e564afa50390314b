// Package urlpolicy canonicalizes URLs and decides whether they may enter the crawl.
package urlpolicy

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

// ErrMalformedURL is returned when a URL string cannot be parsed at all.
var ErrMalformedURL = errors.New("malformed URL")

// DigitPlaceholder replaces every run of digits in a URL pattern.
const DigitPlaceholder = "[digit]"

var digitRun = regexp.MustCompile(`\d+`)

// Normalize strips the fragment from rawURL and returns the canonical form.
func Normalize(rawURL string) (string, error) {
	u, err := parse(rawURL)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// PatternOf maps rawURL to its trap-detection key: scheme://host followed by the
// path with every digit run replaced. The query string is not part of the key.
func PatternOf(rawURL string) (string, error) {
	u, err := parse(rawURL)
	if err != nil {
		return "", err
	}
	path := digitRun.ReplaceAllLiteralString(u.Path, DigitPlaceholder)
	return u.Scheme + "://" + u.Host + path, nil
}

func parse(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedURL, err)
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u, nil
}

// Rules configures a Policy
type Rules struct {
	// AllowedHosts are domain suffixes; a host matches when it equals the suffix or is a
	// subdomain of it. Entries containing glob metacharacters are used as glob patterns.
	AllowedHosts []string
	// PortalHost is admitted only below PortalPathPrefix.
	PortalHost       string
	PortalPathPrefix string
	// RejectedExtensions without the leading dot, e.g. "pdf".
	RejectedExtensions []string
}

// Policy decides URL admissibility
type Policy struct {
	hosts      []glob.Glob
	portalHost string
	portalPath string
	extensions []string
}

// New compiles the rules into a Policy
func New(rules Rules) (*Policy, error) {
	p := &Policy{
		portalHost: strings.ToLower(rules.PortalHost),
		portalPath: rules.PortalPathPrefix,
	}

	for _, host := range rules.AllowedHosts {
		host = strings.ToLower(strings.TrimSpace(host))
		if host == "" {
			continue
		}
		patterns := []string{host, "*." + host}
		if strings.ContainsAny(host, "*?[{") {
			patterns = []string{host}
		}
		for _, pattern := range patterns {
			g, err := glob.Compile(pattern)
			if err != nil {
				return nil, fmt.Errorf("invalid host pattern %q: %w", pattern, err)
			}
			p.hosts = append(p.hosts, g)
		}
	}

	for _, ext := range rules.RejectedExtensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			p.extensions = append(p.extensions, "."+ext)
		}
	}

	return p, nil
}

// IsAdmissible reports whether rawURL passes the scheme, host and extension rules.
// A URL that cannot be parsed is not admissible.
func (p *Policy) IsAdmissible(rawURL string) bool {
	u, err := parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if !p.hostAllowed(u) {
		return false
	}
	return !p.rejectedExtension(u.Path)
}

func (p *Policy) hostAllowed(u *url.URL) bool {
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	for _, g := range p.hosts {
		if g.Match(host) {
			return true
		}
	}
	return p.portalHost != "" && host == p.portalHost && strings.HasPrefix(u.Path, p.portalPath)
}

func (p *Policy) rejectedExtension(path string) bool {
	path = strings.ToLower(path)
	for _, ext := range p.extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
