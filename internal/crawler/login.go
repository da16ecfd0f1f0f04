package crawler

import (
	"context"
	"fmt"
	"net/url"

	"github.com/SaidBouzegarn/sevenbot-prod-v2/internal/extract"
)

// LoginState is the state of the login resolution machine. The terminal
// states are StateLoggedIn and StateAnonymous; every resolution failure
// before form submission lands in StateAnonymous and the crawl proceeds
// unauthenticated.
type LoginState int

// Login resolution states, in resolution order.
const (
	// StateNoCredentials means no username/password was supplied.
	StateNoCredentials LoginState = iota

	// StateCredentialsPresent means credentials exist and resolution started.
	StateCredentialsPresent

	// StateLoginURLResolved means a usable login URL is known.
	StateLoginURLResolved

	// StateSelectorsResolved means all three form selectors are known.
	StateSelectorsResolved

	// StateLoggedIn means the form was submitted and session cookies exist.
	StateLoggedIn

	// StateAnonymous means the crawl proceeds without authentication.
	StateAnonymous
)

// String returns a human-readable state name for logging.
func (s LoginState) String() string {
	switch s {
	case StateNoCredentials:
		return "no-credentials"
	case StateCredentialsPresent:
		return "credentials-present"
	case StateLoginURLResolved:
		return "login-url-resolved"
	case StateSelectorsResolved:
		return "selectors-resolved"
	case StateLoggedIn:
		return "logged-in"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// resolveLogin runs the login state machine. The session is expected to be
// on the site's root page when called.
//
// Every step up to and including selector resolution degrades to
// StateAnonymous on failure. Form submission and cookie verification do
// not: a submitted form with no resulting cookies is a fatal error (see
// ErrNoSessionCookies).
func (c *Crawler) resolveLogin(ctx context.Context) (LoginState, error) {
	if !c.site.HasCredentials() {
		c.logger.Info("no authentication credentials provided, running in anonymous mode",
			"domain", c.domain)
		return StateAnonymous, nil
	}

	if !c.resolveLoginURL(ctx) {
		return StateAnonymous, nil
	}
	if !c.resolveSelectors(ctx) {
		return StateAnonymous, nil
	}
	if err := c.attemptLogin(ctx); err != nil {
		return StateAnonymous, err
	}

	return StateLoggedIn, nil
}

// resolveLoginURL ensures c.site.LoginURL holds a well-formed URL, asking
// the classifier to infer one from the current page when unset. Returns
// false when no usable login URL could be established.
func (c *Crawler) resolveLoginURL(ctx context.Context) bool {
	if c.site.LoginURL == "" {
		pageHTML, err := c.session.HTML(ctx)
		if err != nil {
			c.logger.Warn("could not read page markup for login URL detection, continuing without authentication",
				"domain", c.domain, "error", err)
			return false
		}

		detected, err := c.classifier.DetectLoginURL(ctx, pageHTML)
		if err != nil {
			c.logger.Warn("could not determine login URL, continuing without authentication",
				"domain", c.domain, "error", err)
			return false
		}
		c.site.LoginURL = detected
	}

	if !isWellFormedURL(c.site.LoginURL) {
		c.logger.Warn("login URL is missing or malformed, continuing without authentication",
			"domain", c.domain, "login_url", c.site.LoginURL)
		c.site.LoginURL = ""
		return false
	}

	return true
}

// resolveSelectors ensures all three login selectors are set, asking the
// classifier to detect them from the login page's markup when any is
// missing. Returns false when the three selectors could not be established.
func (c *Crawler) resolveSelectors(ctx context.Context) bool {
	if c.site.HasSelectors() {
		return true
	}

	if err := c.session.Navigate(ctx, c.site.LoginURL); err != nil {
		c.logger.Warn("could not load login page for selector detection, continuing without authentication",
			"domain", c.domain, "error", err)
		return false
	}

	loginHTML, err := c.session.HTML(ctx)
	if err != nil {
		c.logger.Warn("could not read login page markup, continuing without authentication",
			"domain", c.domain, "error", err)
		return false
	}

	cleaned, err := extract.CleanForLogin(loginHTML)
	if err != nil {
		c.logger.Warn("could not prune login page markup, continuing without authentication",
			"domain", c.domain, "error", err)
		return false
	}

	selectors, err := c.classifier.DetectSelectors(ctx, cleaned)
	if err != nil {
		c.logger.Warn("could not detect login selectors, continuing without authentication",
			"domain", c.domain, "error", err)
		return false
	}
	if !selectors.Complete() {
		c.logger.Warn("one or more login selectors are empty, continuing without authentication",
			"domain", c.domain)
		return false
	}

	c.site.UsernameSelector = selectors.Username
	c.site.PasswordSelector = selectors.Password
	c.site.SubmitSelector = selectors.Submit
	return true
}

// attemptLogin navigates to the login page, fills and submits the form,
// and verifies the session by requiring a non-empty cookie set. All errors
// here are fatal for crawler construction.
func (c *Crawler) attemptLogin(ctx context.Context) error {
	if err := c.session.Navigate(ctx, c.site.LoginURL); err != nil {
		return fmt.Errorf("failed to open login page: %w", err)
	}
	if err := c.session.Fill(ctx, c.site.UsernameSelector, c.site.Username); err != nil {
		return fmt.Errorf("failed to fill username field: %w", err)
	}
	if err := c.session.Fill(ctx, c.site.PasswordSelector, c.site.Password); err != nil {
		return fmt.Errorf("failed to fill password field: %w", err)
	}
	if err := c.session.Click(ctx, c.site.SubmitSelector); err != nil {
		return fmt.Errorf("failed to submit login form: %w", err)
	}

	cookies, err := c.session.Cookies(ctx)
	if err != nil {
		return fmt.Errorf("failed to read session cookies: %w", err)
	}
	if len(cookies) == 0 {
		return ErrNoSessionCookies
	}

	c.cookies = cookies
	c.logger.Info("login succeeded", "domain", c.domain, "cookies", len(cookies))
	return nil
}

// isWellFormedURL reports whether s is an absolute http(s) URL.
func isWellFormedURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
