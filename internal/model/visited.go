package model

import "time"

// VisitedRecord is one row of the visited-URL ledger. Records are written
// once per (URL, domain) pair and never updated afterwards.
type VisitedRecord struct {
	// URL is the visited page URL.
	URL string

	// Domain is the canonical domain the URL belongs to.
	Domain string

	// VisitDate is when the page was visited.
	VisitDate time.Time

	// IsArticle records the classification outcome. Nil means the page
	// was visited but extraction or classification failed, so it was
	// recorded unclassified to prevent retry loops.
	IsArticle *bool
}

// NewVisitedRecord builds a ledger record for a page visited now.
// article may be nil when classification failed.
func NewVisitedRecord(url, domain string, article *Article) VisitedRecord {
	rec := VisitedRecord{
		URL:       url,
		Domain:    domain,
		VisitDate: time.Now(),
	}
	if article != nil {
		isArticle := article.IsArticle()
		rec.IsArticle = &isArticle
	}
	return rec
}
