package config

// SiteConfig holds per-site credentials and login form selectors.
// Sites that need no authentication can omit every field; the crawler
// then runs anonymously.
type SiteConfig struct {
	// Username and Password authenticate against the site.
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`

	// LoginURL is the address of the login page. When empty it is
	// detected from the site's root page at crawl time.
	LoginURL string `yaml:"loginUrl,omitempty"`

	// UsernameSelector, PasswordSelector, and SubmitSelector are CSS
	// selectors for the login form fields. When any is empty the full
	// set is detected from the login page's markup at crawl time.
	UsernameSelector string `yaml:"usernameSelector,omitempty"`
	PasswordSelector string `yaml:"passwordSelector,omitempty"`
	SubmitSelector   string `yaml:"submitSelector,omitempty"`
}

// File represents the structure of the .sevenbot configuration file.
type File struct {
	// Sites maps canonical domains to their site-specific configurations.
	// Keys should be the domain without protocol or www prefix
	// (e.g., "news.example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific domain.
// It merges the site-specific configuration over the defaults.
func (cf *File) GetSiteConfig(domain string) SiteConfig {
	// Start with defaults
	result := cf.Defaults

	// Override with site-specific configuration if present
	if siteConfig, ok := cf.Sites[domain]; ok {
		if siteConfig.Username != "" {
			result.Username = siteConfig.Username
		}
		if siteConfig.Password != "" {
			result.Password = siteConfig.Password
		}
		if siteConfig.LoginURL != "" {
			result.LoginURL = siteConfig.LoginURL
		}
		if siteConfig.UsernameSelector != "" {
			result.UsernameSelector = siteConfig.UsernameSelector
		}
		if siteConfig.PasswordSelector != "" {
			result.PasswordSelector = siteConfig.PasswordSelector
		}
		if siteConfig.SubmitSelector != "" {
			result.SubmitSelector = siteConfig.SubmitSelector
		}
	}

	return result
}
