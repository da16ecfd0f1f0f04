package model

import (
	"net/url"
	"strings"
)

// CanonicalDomain normalizes a URL to the site key used throughout the
// crawler and both database tables: the host with the scheme and any
// leading "www." stripped.
//
// Design decision: unparseable input is returned unchanged rather than
// rejected. The domain is a lookup key, and a garbage key that matches
// nothing is harmless, while an error here would abort construction for
// sites we could still crawl anonymously.
func CanonicalDomain(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return rawURL
	}

	// url.Parse treats "example.com/path" as a path-only URL, so make
	// sure there is a scheme before parsing.
	withScheme := trimmed
	if !strings.Contains(withScheme, "://") {
		withScheme = "https://" + withScheme
	}

	u, err := url.Parse(withScheme)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}

	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}
