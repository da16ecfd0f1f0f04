package crawler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SaidBouzegarn/sevenbot-prod-v2/internal/browser"
	"github.com/SaidBouzegarn/sevenbot-prod-v2/internal/classify"
	"github.com/SaidBouzegarn/sevenbot-prod-v2/internal/database"
	"github.com/SaidBouzegarn/sevenbot-prod-v2/internal/extract"
	"github.com/SaidBouzegarn/sevenbot-prod-v2/internal/model"
	"github.com/SaidBouzegarn/sevenbot-prod-v2/internal/visited"
)

// DefaultMaxPages is the default page quota per crawl session. The quota
// bounds successfully classified results, not URLs dequeued.
const DefaultMaxPages = 25

// Config holds per-session crawl parameters.
type Config struct {
	// WebsiteURL is the seed URL of the crawl.
	WebsiteURL string

	// Site carries caller-provided credentials, login URL, and selectors.
	// Fields left empty are back-filled from the site config store.
	Site model.Website

	// Crawl enables the frontier loop. When false only the seed page is
	// visited, classified, and recorded.
	Crawl bool

	// MaxPages is the page quota. Zero means DefaultMaxPages.
	MaxPages int

	// ErrorRate is the false-positive bound of the membership cache.
	// Zero means the cache default (1%).
	ErrorRate float64

	// Logger receives crawl progress. Nil means slog.Default().
	Logger *slog.Logger
}

// Crawler crawls one domain with one browser session. It owns the frontier
// and the membership cache exclusively for the duration of a Scrape call;
// the store is shared and only touched through short-lived calls.
type Crawler struct {
	store      *database.Store
	session    browser.Session
	classifier classify.Classifier
	logger     *slog.Logger

	websiteURL string
	domain     string
	site       model.Website
	crawl      bool
	maxPages   int

	state   LoginState
	cookies []browser.Cookie
	filter  *visited.ScalableFilter
}

// New builds a crawler for cfg.WebsiteURL: it loads the stored site
// configuration and merges it under the caller-provided values, rehydrates
// the membership cache from the ledger, navigates to the seed page, and
// runs the login state machine.
//
// Store errors and login verification failure are fatal here; everything
// else degrades to an anonymous crawl. On error the session is left to the
// caller to close.
func New(ctx context.Context, cfg Config, store *database.Store, session browser.Session, classifier classify.Classifier) (*Crawler, error) {
	if cfg.WebsiteURL == "" {
		return nil, ErrNoWebsiteURL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	c := &Crawler{
		store:      store,
		session:    session,
		classifier: classifier,
		logger:     logger,
		websiteURL: cfg.WebsiteURL,
		domain:     model.CanonicalDomain(cfg.WebsiteURL),
		crawl:      cfg.Crawl,
		maxPages:   maxPages,
	}

	// Stored values fill only the attributes the caller left unset;
	// explicitly provided credentials and selectors always win.
	stored, _, err := store.Website(ctx, c.domain)
	if err != nil {
		return nil, fmt.Errorf("failed to load site config: %w", err)
	}
	c.site = model.MergeWebsite(stored, cfg.Site)
	c.site.Domain = c.domain

	// Rehydrate the membership cache from the ledger snapshot. Duplicates
	// within a session cost one extra bloom lookup; revisits across
	// sessions cost a full page fetch, so the cache is seeded up front.
	records, err := store.VisitedURLs(ctx, c.domain)
	if err != nil {
		return nil, fmt.Errorf("failed to load visited urls: %w", err)
	}
	c.filter = visited.NewScalableFilter(visited.DefaultInitialCapacity, cfg.ErrorRate)
	for _, rec := range records {
		c.filter.Add(rec.URL)
	}
	logger.Debug("membership cache rehydrated", "domain", c.domain, "urls", len(records))

	if err := session.Navigate(ctx, c.websiteURL); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", c.websiteURL, err)
	}

	c.state, err = c.resolveLogin(ctx)
	if err != nil {
		return nil, fmt.Errorf("login failed for %s: %w", c.domain, err)
	}
	logger.Info("login resolution finished", "domain", c.domain, "state", c.state.String())

	return c, nil
}

// Domain returns the canonical domain of the crawl target.
func (c *Crawler) Domain() string {
	return c.domain
}

// LoginState returns the terminal state of the login state machine.
func (c *Crawler) LoginState() LoginState {
	return c.state
}

// Close releases the browser session.
func (c *Crawler) Close() error {
	return c.session.Close()
}

// Scrape runs the breadth-first crawl and returns classified pages in
// visit order, at most MaxPages of them. Newly visited URLs are flushed to
// the ledger in one batch at the end; a crash mid-crawl loses durability
// only for this session's URLs, which a later session will revisit once.
func (c *Crawler) Scrape(ctx context.Context) ([]model.CrawlResult, error) {
	if len(c.cookies) > 0 {
		if err := c.session.SetCookies(ctx, c.cookies); err != nil {
			return nil, fmt.Errorf("failed to reapply session cookies: %w", err)
		}
	}

	if err := c.session.Navigate(ctx, c.websiteURL); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", c.websiteURL, err)
	}

	results := make([]model.CrawlResult, 0, c.maxPages)
	var accumulator []model.VisitedRecord
	var queue frontier

	// Seed: triage the root page's links and classify its content. The
	// root is always recorded visited, even when classification fails.
	rootArticle := c.visitPage(ctx, c.websiteURL, &queue, &results)
	accumulator = append(accumulator, model.NewVisitedRecord(c.websiteURL, c.domain, rootArticle))
	c.filter.Add(c.websiteURL)

	if !c.crawl {
		return results, c.flush(ctx, accumulator)
	}

	for queue.len() > 0 && len(results) < c.maxPages {
		select {
		case <-ctx.Done():
			// Flush what we have; the ledger keeps partial sessions
			// from being recrawled in full.
			if err := c.flush(ctx, accumulator); err != nil {
				c.logger.Error("flush after cancellation failed", "domain", c.domain, "error", err)
			}
			return results, ctx.Err()
		default:
		}

		current, _ := queue.pop()

		// Membership-cache skips do not count against the quota.
		if c.filter.Contains(current) {
			continue
		}

		c.logger.Debug("crawling url", "url", current)

		article := c.visitPage(ctx, current, &queue, &results)
		accumulator = append(accumulator, model.NewVisitedRecord(current, c.domain, article))
		c.filter.Add(current)
	}

	return results, c.flush(ctx, accumulator)
}

// visitPage navigates to pageURL (unless the session is already there from
// the seed navigation), classifies its content, and enqueues the triaged
// outbound links. Any failure is logged and absorbed: the page is still
// treated as visited, with a nil article when classification failed.
// A successful classification is appended to results.
func (c *Crawler) visitPage(ctx context.Context, pageURL string, queue *frontier, results *[]model.CrawlResult) *model.Article {
	if pageURL != c.websiteURL {
		if err := c.session.Navigate(ctx, pageURL); err != nil {
			c.logger.Warn("could not load page, skipping", "url", pageURL, "error", err)
			return nil
		}
	}

	pageHTML, err := c.session.HTML(ctx)
	if err != nil {
		c.logger.Warn("could not read page markup, skipping", "url", pageURL, "error", err)
		return nil
	}

	var article *model.Article
	article, err = c.classifier.ClassifyArticle(ctx, pageHTML)
	if err != nil {
		c.logger.Warn("could not classify page content", "url", pageURL, "error", err)
		article = nil
	} else {
		*results = append(*results, model.CrawlResult{URL: pageURL, Article: article})
	}

	c.enqueueLikelyLinks(ctx, pageURL, pageHTML, queue)

	return article
}

// enqueueLikelyLinks extracts the page's outbound links, asks the
// classifier to triage them, drops hallucinated suggestions, and appends
// the survivors to the frontier tail. All failures are logged and absorbed.
func (c *Crawler) enqueueLikelyLinks(ctx context.Context, pageURL, pageHTML string, queue *frontier) {
	extractor, err := extract.New(pageURL)
	if err != nil {
		c.logger.Warn("could not resolve page URL for link extraction", "url", pageURL, "error", err)
		return
	}

	links, err := extractor.Links(pageHTML)
	if err != nil {
		c.logger.Warn("could not extract links", "url", pageURL, "error", err)
		return
	}
	if len(links) == 0 {
		return
	}

	suggested, err := c.classifier.SelectLikelyURLs(ctx, links)
	if err != nil {
		c.logger.Warn("could not select likely URLs", "url", pageURL, "error", err)
		return
	}

	kept, hallucinated := filterSuggested(suggested, links)
	if hallucinated > 0 {
		c.logger.Warn("classifier suggested URLs not present on page",
			"url", pageURL, "hallucinated", hallucinated)
	}
	c.logger.Debug("frontier extended", "url", pageURL, "observed", len(links), "enqueued", len(kept))

	queue.push(kept...)
}

// flush writes the session's visited accumulator to the ledger in one
// batch and persists the effective site configuration so later sessions
// can back-fill credentials and selectors.
func (c *Crawler) flush(ctx context.Context, accumulator []model.VisitedRecord) error {
	if err := c.store.RecordVisited(ctx, accumulator); err != nil {
		return fmt.Errorf("failed to flush visited urls: %w", err)
	}

	// Config write-back is best effort: losing it costs one re-resolution
	// next session, not data.
	if err := c.store.UpsertWebsite(ctx, c.site); err != nil {
		c.logger.Warn("could not persist site config", "domain", c.domain, "error", err)
	}

	c.logger.Info("crawl session flushed", "domain", c.domain, "visited", len(accumulator))
	return nil
}
