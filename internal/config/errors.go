package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoAllowedHosts is returned when neither allowed hosts nor a portal host is configured.
	ErrNoAllowedHosts = errors.New("no allowed hosts: set admission.allowed_hosts or admission.portal_host")

	// ErrInvalidThreshold is returned when a numeric threshold is out of range.
	ErrInvalidThreshold = errors.New("threshold out of range")

	// ErrUnknownStrategy is returned for a quality strategy other than word_count or text_density.
	ErrUnknownStrategy = errors.New("unknown quality strategy")

	// ErrNoKeywords is returned when the text_density strategy needs keyword hits but has no keywords.
	ErrNoKeywords = errors.New("quality.keywords is empty but quality.min_keyword_hits is positive")

	// ErrUnknownExtractor is returned for a content extractor other than visible or main.
	ErrUnknownExtractor = errors.New("unknown content extractor")

	// ErrUnknownStorage is returned for a storage type other than file or sqlite.
	ErrUnknownStorage = errors.New("unknown storage type")

	// ErrPublicSuffix is returned when stats.subdomain_suffix is itself a public suffix.
	ErrPublicSuffix = errors.New("subdomain suffix is a public suffix")
)
