package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/SaidBouzegarn/sevenbot-prod-v2/internal/model"
)

// Truncation limits for page content in API responses. Full bodies can
// run to tens of kilobytes per page; the API returns previews so a batch
// response stays small enough for interactive callers.
const (
	maxTitleLen = 200
	maxBodyLen  = 1000
)

// ScrapeRequest is the body of a POST /scrape call.
type ScrapeRequest struct {
	// WebsiteURL is the seed URL of the crawl. Required.
	WebsiteURL string `json:"website_url"`

	// Username and Password authenticate against the site. Optional.
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`

	// LoginURL and the selectors pre-resolve the login flow. Optional;
	// anything left empty is detected at crawl time.
	LoginURL         string `json:"login_url,omitempty"`
	UsernameSelector string `json:"username_selector,omitempty"`
	PasswordSelector string `json:"password_selector,omitempty"`
	SubmitSelector   string `json:"submit_button_selector,omitempty"`

	// Crawl enables the frontier loop. Omitted means true; false
	// classifies only the seed page.
	Crawl *bool `json:"crawl,omitempty"`

	// MaxPages overrides the page quota. Zero means the server default.
	MaxPages int `json:"max_pages,omitempty"`
}

// CrawlEnabled reports whether the frontier loop should run. An absent
// crawl field defaults to a full crawl.
func (r ScrapeRequest) CrawlEnabled() bool {
	return r.Crawl == nil || *r.Crawl
}

// PageResult is one classified page with truncated content. Every
// classified page is returned, not only articles; callers filter on
// the classification label.
type PageResult struct {
	URL            string `json:"url"`
	Classification string `json:"classification"`
	Title          string `json:"title"`
	Body           string `json:"body"`
}

// ScrapeResponse is the body of a successful POST /scrape reply.
type ScrapeResponse struct {
	Status   string       `json:"status"`
	Articles []PageResult `json:"articles"`
}

// errorResponse is the body of a failed reply.
type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// Scraper runs one crawl for an API request. The server owns no browser or
// database state itself; the function binds those per call.
type Scraper func(ctx context.Context, req ScrapeRequest) ([]model.CrawlResult, error)

// Server handles the HTTP API.
type Server struct {
	scrape Scraper
	logger *slog.Logger
}

// New creates a Server that serves crawls through scrape.
func New(scrape Scraper, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{scrape: scrape, logger: logger}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /scrape", s.handleScrape)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// NewHTTPServer wraps the handler in an http.Server with sane timeouts.
// Crawls run synchronously inside the request, so the write timeout must
// cover a full crawl session.
func NewHTTPServer(addr string, s *Server) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}
}

// handleScrape runs a crawl synchronously and returns the classified pages.
func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.WebsiteURL == "" {
		s.writeError(w, http.StatusBadRequest, "website_url is required")
		return
	}

	s.logger.Info("scrape request", "url", req.WebsiteURL, "crawl", req.CrawlEnabled())

	results, err := s.scrape(r.Context(), req)
	if err != nil {
		// Cancelled requests are the client hanging up, not a crawl bug.
		if errors.Is(err, context.Canceled) {
			return
		}
		s.logger.Error("scrape failed", "url", req.WebsiteURL, "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := ScrapeResponse{
		Status:   "ok",
		Articles: make([]PageResult, 0, len(results)),
	}
	for _, res := range results {
		if res.Article == nil {
			continue
		}
		resp.Articles = append(resp.Articles, PageResult{
			URL:            res.URL,
			Classification: res.Article.Classification,
			Title:          truncateRunes(res.Article.Title, maxTitleLen),
			Body:           truncateRunes(res.Article.Body, maxBodyLen),
		})
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Status: "error", Error: msg})
}

// truncateRunes limits s to n runes without splitting a multibyte sequence.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
