package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/SaidBouzegarn/sevenbot-prod-v2/internal/browser"
	"github.com/SaidBouzegarn/sevenbot-prod-v2/internal/config"
	"github.com/SaidBouzegarn/sevenbot-prod-v2/internal/crawler"
	"github.com/SaidBouzegarn/sevenbot-prod-v2/internal/database"
	"github.com/SaidBouzegarn/sevenbot-prod-v2/internal/log"
	"github.com/SaidBouzegarn/sevenbot-prod-v2/internal/model"
	"github.com/SaidBouzegarn/sevenbot-prod-v2/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the crawler over HTTP",
		Long: `Serve starts an HTTP server exposing the crawler for service integration.

Each POST /scrape request runs a crawl synchronously and returns the
articles found, with titles and bodies truncated for interactive use.
GET /health reports liveness.

Examples:
  # Serve on the default address
  sevenbot serve

  # Serve on a specific port
  sevenbot serve --addr :9090

  # Trigger a crawl
  curl -X POST localhost:8000/scrape -d '{"website_url": "https://news.example.com"}'`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().String("addr", ":8000", "Address to listen on")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Default page quota per crawl request")
	cmd.Flags().DurationP("timeout", "t", config.DefaultNavigationTimeout,
		"Timeout for each page load")
	cmd.Flags().Bool("headless", true, "Run the browser without a visible window")
	cmd.Flags().String("model", "", "OpenAI model for page classification")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory for the visited-URL database")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}

	var err error
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}
	if cfg.MaxPages, err = cmd.Flags().GetInt("max-pages"); err != nil {
		return err
	}
	if cfg.NavigationTimeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return err
	}
	if cfg.Headless, err = cmd.Flags().GetBool("headless"); err != nil {
		return err
	}
	if cfg.OpenAIModel, err = cmd.Flags().GetString("model"); err != nil {
		return err
	}
	if cfg.DBDir, err = cmd.Flags().GetString("db-dir"); err != nil {
		return err
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runServe(ctx, addr, cfg, logger)
}

// runServe opens the store and serves until the context is cancelled.
func runServe(ctx context.Context, addr string, cfg *config.Config, logger *slog.Logger) error {
	store, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	classifier := newClassifier(cfg)

	scrape := func(ctx context.Context, req server.ScrapeRequest) ([]model.CrawlResult, error) {
		session, err := browser.NewChrome(ctx,
			browser.WithHeadless(cfg.Headless),
			browser.WithTimeout(cfg.NavigationTimeout),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		defer session.Close()

		maxPages := req.MaxPages
		if maxPages <= 0 {
			maxPages = cfg.MaxPages
		}

		c, err := crawler.New(ctx, crawler.Config{
			WebsiteURL: req.WebsiteURL,
			Site: model.Website{
				Username:         req.Username,
				Password:         req.Password,
				LoginURL:         req.LoginURL,
				UsernameSelector: req.UsernameSelector,
				PasswordSelector: req.PasswordSelector,
				SubmitSelector:   req.SubmitSelector,
			},
			Crawl:     req.CrawlEnabled(),
			MaxPages:  maxPages,
			ErrorRate: cfg.ErrorRate,
			Logger:    logger,
		}, store, session, classifier)
		if err != nil {
			return nil, err
		}

		return c.Scrape(ctx)
	}

	srv := server.NewHTTPServer(addr, server.New(scrape, logger))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
