package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/openai/openai-go"
	"github.com/spf13/cobra"

	"github.com/SaidBouzegarn/sevenbot-prod-v2/internal/browser"
	"github.com/SaidBouzegarn/sevenbot-prod-v2/internal/classify"
	"github.com/SaidBouzegarn/sevenbot-prod-v2/internal/config"
	"github.com/SaidBouzegarn/sevenbot-prod-v2/internal/crawler"
	"github.com/SaidBouzegarn/sevenbot-prod-v2/internal/database"
	"github.com/SaidBouzegarn/sevenbot-prod-v2/internal/log"
	"github.com/SaidBouzegarn/sevenbot-prod-v2/internal/model"
	"github.com/SaidBouzegarn/sevenbot-prod-v2/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [website-url]...",
		Short: "Crawl news sites and extract articles",
		Long: `Crawl opens each website in a headless browser, classifies its pages
with an LLM, and extracts article content.

Starting from the root page, the crawler follows links the LLM judges
likely to lead to articles, breadth first, until the page quota is
reached or the frontier is exhausted. URLs visited in earlier runs are
remembered per domain and skipped.

Sites that require a login can be crawled with credentials. The login
page and form selectors are detected automatically when not provided;
detection failures fall back to an anonymous crawl.

Examples:
  # Crawl a single site
  sevenbot crawl https://news.example.com

  # Crawl several sites concurrently
  sevenbot crawl https://a.example.com https://b.example.com

  # Crawl with credentials
  sevenbot crawl -u alice --password s3cret https://news.example.com

  # Classify only each site's root page
  sevenbot crawl --root-only https://news.example.com

  # Output a JSON report to a file
  sevenbot crawl --json -o report.json https://news.example.com

Configuration file (.sevenbot) example:
  sites:
    news.example.com:
      username: alice
      password: s3cret
      loginUrl: https://news.example.com/login`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Authentication flags
	cmd.Flags().StringP("username", "u", "", "Username for site login")
	cmd.Flags().String("password", "", "Password for site login")
	cmd.Flags().String("login-url", "", "Login page URL (detected automatically when empty)")
	cmd.Flags().String("username-selector", "", "CSS selector of the username field")
	cmd.Flags().String("password-selector", "", "CSS selector of the password field")
	cmd.Flags().String("submit-selector", "", "CSS selector of the submit button")

	// Crawl behavior flags
	cmd.Flags().Bool("root-only", false, "Classify only each site's root page")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to classify per site")
	cmd.Flags().Float64("error-rate", config.DefaultErrorRate,
		"False-positive rate of the visited-URL cache")
	cmd.Flags().DurationP("timeout", "t", config.DefaultNavigationTimeout,
		"Timeout for each page load")
	cmd.Flags().Bool("headless", true, "Run the browser without a visible window")
	cmd.Flags().String("model", "", "OpenAI model for page classification")

	// Batch crawling flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of sites crawled concurrently")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sevenbot in current or home directory)")

	// Storage flags
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory for the visited-URL database")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if cfg.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Graceful shutdown: a signal flushes each in-flight session's ledger
	// before the process exits.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Targets = args
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")

	var err error

	if cfg.Username, err = cmd.Flags().GetString("username"); err != nil {
		return nil, err
	}
	if cfg.Password, err = cmd.Flags().GetString("password"); err != nil {
		return nil, err
	}
	if cfg.LoginURL, err = cmd.Flags().GetString("login-url"); err != nil {
		return nil, err
	}
	if cfg.UsernameSelector, err = cmd.Flags().GetString("username-selector"); err != nil {
		return nil, err
	}
	if cfg.PasswordSelector, err = cmd.Flags().GetString("password-selector"); err != nil {
		return nil, err
	}
	if cfg.SubmitSelector, err = cmd.Flags().GetString("submit-selector"); err != nil {
		return nil, err
	}

	if cfg.RootOnly, err = cmd.Flags().GetBool("root-only"); err != nil {
		return nil, err
	}
	if cfg.MaxPages, err = cmd.Flags().GetInt("max-pages"); err != nil {
		return nil, err
	}
	if cfg.ErrorRate, err = cmd.Flags().GetFloat64("error-rate"); err != nil {
		return nil, err
	}
	if cfg.NavigationTimeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.Headless, err = cmd.Flags().GetBool("headless"); err != nil {
		return nil, err
	}
	if cfg.OpenAIModel, err = cmd.Flags().GetString("model"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = cmd.Flags().GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = cmd.Flags().GetString("db-dir"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// runCrawl executes the crawl across all targets.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"targets", cfg.Targets,
		"batchSize", cfg.BatchSize,
		"maxPages", cfg.MaxPages,
	)

	store, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()
	logger.Info("database opened", "dir", cfg.DBDir)

	classifier := newClassifier(cfg)

	batch := crawler.NewBatch(
		newCrawlerFactory(cfg, store, classifier, logger),
		crawler.WithConcurrency(cfg.BatchSize),
		crawler.WithBatchLogger(logger),
	)

	startTime := time.Now()
	results, err := batch.Run(ctx, cfg.Targets)
	if err != nil {
		// Partial results are still worth reporting after cancellation.
		logger.Warn("crawl interrupted", "error", err)
	}
	fmt.Printf("Crawl finished in %s\n\n", time.Since(startTime).Round(time.Millisecond))

	return outputReport(cfg, report.New(toReportSites(results)))
}

// newClassifier builds the OpenAI classifier from configuration.
func newClassifier(cfg *config.Config) *classify.OpenAIClassifier {
	var opts []classify.OpenAIOption
	if cfg.OpenAIModel != "" {
		opts = append(opts, classify.WithModel(openai.ChatModel(cfg.OpenAIModel)))
	}
	return classify.NewOpenAIClassifier(cfg.OpenAIAPIKey, opts...)
}

// newCrawlerFactory returns a factory that builds one crawler per target,
// each with its own browser session.
func newCrawlerFactory(cfg *config.Config, store *database.Store, classifier *classify.OpenAIClassifier, logger *slog.Logger) crawler.Factory {
	return func(ctx context.Context, websiteURL string) (*crawler.Crawler, error) {
		session, err := browser.NewChrome(ctx,
			browser.WithHeadless(cfg.Headless),
			browser.WithTimeout(cfg.NavigationTimeout),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}

		c, err := crawler.New(ctx, crawler.Config{
			WebsiteURL: websiteURL,
			Site:       siteForTarget(cfg, websiteURL),
			Crawl:      !cfg.RootOnly,
			MaxPages:   cfg.MaxPages,
			ErrorRate:  cfg.ErrorRate,
			Logger:     logger,
		}, store, session, classifier)
		if err != nil {
			_ = session.Close()
			return nil, err
		}
		return c, nil
	}
}

// siteForTarget resolves the effective site settings for one target:
// config-file values for the target's domain, overridden by CLI flags.
func siteForTarget(cfg *config.Config, websiteURL string) model.Website {
	domain := model.CanonicalDomain(websiteURL)

	var fromFile model.Website
	if cfg.SiteConfigs != nil {
		sc := cfg.SiteConfigs.GetSiteConfig(domain)
		fromFile = model.Website{
			Username:         sc.Username,
			Password:         sc.Password,
			LoginURL:         sc.LoginURL,
			UsernameSelector: sc.UsernameSelector,
			PasswordSelector: sc.PasswordSelector,
			SubmitSelector:   sc.SubmitSelector,
		}
	}

	fromFlags := model.Website{
		Username:         cfg.Username,
		Password:         cfg.Password,
		LoginURL:         cfg.LoginURL,
		UsernameSelector: cfg.UsernameSelector,
		PasswordSelector: cfg.PasswordSelector,
		SubmitSelector:   cfg.SubmitSelector,
	}

	site := model.MergeWebsite(fromFile, fromFlags)
	site.Domain = domain
	return site
}

// toReportSites converts batch outcomes into report entries.
func toReportSites(results []crawler.SiteResult) []report.Site {
	sites := make([]report.Site, 0, len(results))
	for _, res := range results {
		site := report.Site{
			URL:        res.WebsiteURL,
			Domain:     model.CanonicalDomain(res.WebsiteURL),
			LoginState: res.LoginState.String(),
			Results:    res.Results,
		}
		if res.Err != nil {
			site.Error = res.Err.Error()
		}
		sites = append(sites, site)
	}
	return sites
}

// outputReport outputs the crawl report in the requested format.
func outputReport(cfg *config.Config, rep *report.Report) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with secure permissions (0600).
		// Reports may contain article content from authenticated sessions.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(rep)
	return err
}
