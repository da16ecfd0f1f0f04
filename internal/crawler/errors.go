package crawler

import "errors"

// Crawl engine errors. ErrNoSessionCookies is deliberately fatal: earlier
// login-resolution steps degrade to anonymous mode, but an empty cookie jar
// after a submitted login form means the site accepted the form without
// establishing a session, and crawling on as if logged in would silently
// return paywalled stubs. This asymmetry is intentional; do not unify it
// with the anonymous fallback.
var (
	// ErrNoSessionCookies is returned when login form submission completed
	// but the browser session holds no cookies.
	ErrNoSessionCookies = errors.New("no session cookies found after login")

	// ErrNoWebsiteURL is returned when the crawler is constructed without
	// a target URL.
	ErrNoWebsiteURL = errors.New("no website URL specified")
)
