package browser

import "context"

// Cookie is a browser session cookie. Only the fields the login flow needs
// to retain and reapply are modeled.
type Cookie struct {
	Name   string
	Value  string
	Domain string
	Path   string
}

// Session is the browser surface consumed by the crawl engine. One session
// holds one page which is reused sequentially for the entire crawl; it is
// not shared across concurrent crawls of different domains.
//
// Design decision: The engine depends on this interface rather than on
// chromedp so that crawl logic is testable with an in-memory fake and the
// automation backend can change without touching the engine.
type Session interface {
	// Navigate loads the URL in the session's page and waits for the
	// document to settle.
	Navigate(ctx context.Context, url string) error

	// HTML returns the rendered markup of the current page. It must not
	// mutate page state.
	HTML(ctx context.Context) (string, error)

	// Fill types a value into the element matched by the CSS selector.
	Fill(ctx context.Context, selector, value string) error

	// Click clicks the element matched by the CSS selector and waits for
	// any resulting navigation to settle.
	Click(ctx context.Context, selector string) error

	// Cookies returns the cookies currently held by the session.
	Cookies(ctx context.Context) ([]Cookie, error)

	// SetCookies installs cookies into the session before navigation.
	SetCookies(ctx context.Context, cookies []Cookie) error

	// Close releases the browser and all pages. Safe to call on every
	// exit path.
	Close() error
}
