package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultMaxPages is the page quota per crawl session. The quota bounds
	// classified pages, not URLs dequeued, so a site full of unclassifiable
	// pages still terminates when its frontier drains.
	DefaultMaxPages = 25

	// DefaultBatchSize is the number of domains crawled concurrently when
	// processing multiple targets. Each domain holds a full headless
	// browser, so this is memory-bound well before it is CPU-bound.
	DefaultBatchSize = 3

	// DefaultNavigationTimeout bounds each page load. Rendered news pages
	// routinely take tens of seconds to settle once analytics and ad
	// scripts pile in, so the default is generous.
	DefaultNavigationTimeout = 45 * time.Second

	// DefaultErrorRate is the false-positive bound of the visited-URL
	// membership cache. At 1% a crawl wastes at most one page fetch per
	// hundred revisit checks, which is cheaper than a bigger cache.
	DefaultErrorRate = 0.01

	// AppName is the application name used for XDG directory paths.
	AppName = "sevenbot"
)

// Config holds all configuration options for a crawl run.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// Targets is the list of website URLs to crawl.
	// Must contain at least one URL.
	Targets []string

	// Username and Password authenticate against the target site.
	// They apply to every target in this run; per-site credentials
	// belong in the configuration file instead.
	Username string
	Password string

	// LoginURL is the address of the login page. When empty it is
	// detected from the site's root page.
	LoginURL string

	// UsernameSelector, PasswordSelector, and SubmitSelector are CSS
	// selectors for the login form. When any is empty the full set is
	// detected from the login page's markup.
	UsernameSelector string
	PasswordSelector string
	SubmitSelector   string

	// RootOnly disables the frontier loop: only each target's root page
	// is visited, classified, and recorded.
	RootOnly bool

	// MaxPages is the page quota per crawl session.
	// A value of 0 means use the default (DefaultMaxPages).
	MaxPages int

	// ErrorRate is the false-positive bound of the visited-URL membership
	// cache. A value of 0 means use the default (DefaultErrorRate).
	ErrorRate float64

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// BatchSize is the number of domains crawled concurrently when
	// processing multiple targets.
	BatchSize int

	// Headless controls whether the browser runs without a visible window.
	// Disabling it is occasionally useful when a site's bot detection
	// rejects headless sessions.
	Headless bool

	// NavigationTimeout bounds each page load and browser interaction.
	NavigationTimeout time.Duration

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .sevenbot in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds per-site credentials and selectors loaded from
	// the config file. This is populated by LoadConfigFile.
	SiteConfigs *File

	// OpenAIAPIKey authenticates against the OpenAI API. Populated from
	// the OPENAI_API_KEY environment variable, never from a flag, so the
	// key stays out of shell history.
	OpenAIAPIKey string

	// OpenAIModel overrides the model used for page classification.
	// When empty the classifier default is used.
	OpenAIModel string

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// DBDir is the directory path for storing the SQLite database.
	// Defaults to XDG data directory (~/.local/share/sevenbot on Linux).
	DBDir string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., quota, timeout).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		MaxPages:          DefaultMaxPages,
		BatchSize:         DefaultBatchSize,
		ErrorRate:         DefaultErrorRate,
		NavigationTimeout: DefaultNavigationTimeout,
		Headless:          true,
		DBDir:             XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for sevenbot.
// On Linux: ~/.local/share/sevenbot
// On macOS: ~/Library/Application Support/sevenbot
// On Windows: %LOCALAPPDATA%\sevenbot
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sevenbot.
// On Linux: ~/.config/sevenbot
// On macOS: ~/Library/Application Support/sevenbot
// On Windows: %APPDATA%\sevenbot
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for sevenbot.
// On Linux: ~/.cache/sevenbot
// On macOS: ~/Library/Caches/sevenbot
// On Windows: %LOCALAPPDATA%\sevenbot\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any crawling begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one target to crawl
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	// Credentials come as a pair; one half is a typo, not a mode
	if (c.Username == "") != (c.Password == "") {
		return ErrPartialCredentials
	}

	// MaxPages must be positive; zero would mean no crawling
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}

	// BatchSize must be positive; zero would mean no workers
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// ErrorRate must be a probability strictly between 0 and 1
	if c.ErrorRate <= 0 || c.ErrorRate >= 1 {
		return ErrInvalidErrorRate
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.NavigationTimeout <= 0 {
		return ErrInvalidTimeout
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
