package model

import "time"

// Website is the stored login configuration for one canonical domain.
// Rows are created implicitly on the first persisted crawl of a domain and
// updated with merge-on-write semantics; the crawler never deletes them.
type Website struct {
	// Domain is the canonical domain, the primary key of the websites table.
	Domain string

	// LoginURL is the page holding the login form.
	LoginURL string

	// Username and Password are the site credentials.
	Username string
	Password string

	// UsernameSelector, PasswordSelector, and SubmitSelector locate the
	// login form fields and submit control on the login page.
	UsernameSelector string
	PasswordSelector string
	SubmitSelector   string

	// LastUpdated is when the row was last written.
	LastUpdated time.Time
}

// HasCredentials reports whether both username and password are set.
func (w Website) HasCredentials() bool {
	return w.Username != "" && w.Password != ""
}

// HasSelectors reports whether all three login selectors are set.
func (w Website) HasSelectors() bool {
	return w.UsernameSelector != "" && w.PasswordSelector != "" && w.SubmitSelector != ""
}

// MergeWebsite combines a stored site configuration with caller-provided
// values into the effective configuration for a session. A non-empty
// provided field always wins; stored values only fill fields the caller
// left unset. Neither input is modified.
func MergeWebsite(stored, provided Website) Website {
	effective := provided
	if effective.Domain == "" {
		effective.Domain = stored.Domain
	}
	if effective.LoginURL == "" {
		effective.LoginURL = stored.LoginURL
	}
	if effective.Username == "" {
		effective.Username = stored.Username
	}
	if effective.Password == "" {
		effective.Password = stored.Password
	}
	if effective.UsernameSelector == "" {
		effective.UsernameSelector = stored.UsernameSelector
	}
	if effective.PasswordSelector == "" {
		effective.PasswordSelector = stored.PasswordSelector
	}
	if effective.SubmitSelector == "" {
		effective.SubmitSelector = stored.SubmitSelector
	}
	return effective
}
