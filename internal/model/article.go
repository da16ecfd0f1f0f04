package model

// Article is the classification payload returned by the classification
// service for a single page.
type Article struct {
	// Classification is the page category (e.g. "article", "category",
	// "other") as labelled by the classifier.
	Classification string `json:"classification"`

	// Title is the extracted article title. Empty when the page is not
	// an article.
	Title string `json:"title"`

	// Body is the extracted article body text.
	Body string `json:"body"`
}

// IsArticle reports whether the classifier labelled the page an article.
func (a *Article) IsArticle() bool {
	return a != nil && a.Classification == ClassificationArticle
}

// Classification labels produced by the classification service.
const (
	ClassificationArticle  = "article"
	ClassificationCategory = "category"
	ClassificationOther    = "other"
)

// CrawlResult pairs a visited URL with its classification payload.
// A crawl returns results in the order pages were successfully classified.
type CrawlResult struct {
	// URL is the page that was classified.
	URL string `json:"url"`

	// Article is the classification payload for the page.
	Article *Article `json:"article"`
}

// Link is a single outbound link observed on a page, in document order.
// Hrefs are not guaranteed unique within a page.
type Link struct {
	// Href is the absolute link target.
	Href string `json:"href"`

	// Text is the anchor text, whitespace-trimmed.
	Text string `json:"text"`
}
