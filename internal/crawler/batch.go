package crawler

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/SaidBouzegarn/sevenbot-prod-v2/internal/model"
)

// Factory builds a ready-to-scrape Crawler for one website URL. Each
// crawler gets its own browser session: sessions are reused sequentially
// within a domain but never shared across domains.
type Factory func(ctx context.Context, websiteURL string) (*Crawler, error)

// SiteResult is the outcome of crawling one domain within a batch.
type SiteResult struct {
	// WebsiteURL is the seed URL that was crawled.
	WebsiteURL string

	// Results are the classified pages, in visit order.
	Results []model.CrawlResult

	// LoginState is the terminal login state, when construction succeeded.
	LoginState LoginState

	// Err is the fatal error that ended the crawl, if any.
	Err error
}

// Batch crawls multiple independent domains concurrently while each domain
// keeps its own sequential breadth-first crawl.
//
// Design decision: Per-domain failures are recorded in the SiteResult, not
// returned to the errgroup, so one broken site never cancels the others.
type Batch struct {
	factory     Factory
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithConcurrency sets how many domains crawl simultaneously. Default is 3:
// each domain holds a full headless browser, so this is memory-bound well
// before it is CPU-bound.
func WithConcurrency(n int) BatchOption {
	return func(b *Batch) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithBatchLogger sets a custom logger for batch-level progress.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *Batch) {
		b.logger = logger
	}
}

// NewBatch creates a Batch that builds crawlers through factory.
func NewBatch(factory Factory, opts ...BatchOption) *Batch {
	b := &Batch{
		factory:     factory,
		concurrency: 3,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Run crawls all website URLs and returns one SiteResult per URL, in input
// order. The error return reflects context cancellation only.
func (b *Batch) Run(ctx context.Context, websiteURLs []string) ([]SiteResult, error) {
	b.logger.Info("starting batch crawl",
		"sites", len(websiteURLs),
		"concurrency", b.concurrency,
	)

	results := make([]SiteResult, len(websiteURLs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, websiteURL := range websiteURLs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				results[i] = SiteResult{WebsiteURL: websiteURL, Err: gctx.Err()}
				return gctx.Err()
			default:
			}

			results[i] = b.crawlSite(gctx, websiteURL)
			return nil
		})
	}

	err := g.Wait()
	return results, err
}

// crawlSite builds, runs, and closes one crawler.
func (b *Batch) crawlSite(ctx context.Context, websiteURL string) SiteResult {
	res := SiteResult{WebsiteURL: websiteURL}

	c, err := b.factory(ctx, websiteURL)
	if err != nil {
		b.logger.Warn("crawler construction failed", "url", websiteURL, "error", err)
		res.Err = err
		return res
	}
	defer func() {
		if err := c.Close(); err != nil {
			b.logger.Warn("failed to close crawler", "url", websiteURL, "error", err)
		}
	}()

	res.LoginState = c.LoginState()
	res.Results, res.Err = c.Scrape(ctx)

	if res.Err != nil {
		b.logger.Warn("crawl failed", "url", websiteURL, "error", res.Err)
	} else {
		b.logger.Info("crawl completed", "url", websiteURL, "articles", len(res.Results))
	}

	return res
}
