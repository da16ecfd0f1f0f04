package report

import (
	"time"

	"github.com/SaidBouzegarn/sevenbot-prod-v2/internal/model"
)

// Site is the reportable outcome of crawling one domain.
type Site struct {
	// URL is the seed URL that was crawled.
	URL string `json:"url"`

	// Domain is the canonical domain of the site.
	Domain string `json:"domain"`

	// LoginState describes how the session was authenticated
	// ("logged-in" or "anonymous").
	LoginState string `json:"login_state"`

	// Error holds the fatal error that ended the crawl, if any.
	Error string `json:"error,omitempty"`

	// Results are the classified pages, in visit order.
	Results []model.CrawlResult `json:"results"`
}

// Report aggregates the outcome of one crawl run across all target sites.
type Report struct {
	// GeneratedAt is when the report was produced.
	GeneratedAt time.Time `json:"generated_at"`

	// Sites holds one entry per crawl target, in input order.
	Sites []Site `json:"sites"`
}

// New creates a Report timestamped now.
func New(sites []Site) *Report {
	return &Report{
		GeneratedAt: time.Now(),
		Sites:       sites,
	}
}

// ClassificationCounts tallies pages per classification label for one site.
// Pages whose articles carry an unrecognized label are counted under their
// own label, so the map is authoritative rather than a fixed enum.
func (s Site) ClassificationCounts() map[string]int {
	counts := make(map[string]int)
	for _, r := range s.Results {
		if r.Article == nil {
			continue
		}
		counts[r.Article.Classification]++
	}
	return counts
}

// Articles returns only the results classified as articles.
func (s Site) Articles() []model.CrawlResult {
	var articles []model.CrawlResult
	for _, r := range s.Results {
		if r.Article.IsArticle() {
			articles = append(articles, r)
		}
	}
	return articles
}

// TotalPages returns the number of classified pages across all sites.
func (r *Report) TotalPages() int {
	var total int
	for _, s := range r.Sites {
		total += len(s.Results)
	}
	return total
}

// TotalArticles returns the number of article pages across all sites.
func (r *Report) TotalArticles() int {
	var total int
	for _, s := range r.Sites {
		total += len(s.Articles())
	}
	return total
}
