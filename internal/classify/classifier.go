package classify

import (
	"context"

	"github.com/SaidBouzegarn/sevenbot-prod-v2/internal/model"
)

// Selectors locate the three login form controls on a login page.
type Selectors struct {
	// Username is the CSS selector for the username/email field.
	Username string `json:"username_selector"`

	// Password is the CSS selector for the password field.
	Password string `json:"password_selector"`

	// Submit is the CSS selector for the submit control.
	Submit string `json:"submit_button_selector"`
}

// Complete reports whether all three selectors are non-empty.
func (s Selectors) Complete() bool {
	return s.Username != "" && s.Password != "" && s.Submit != ""
}

// Classifier is the classification collaborator consumed by the crawl
// engine. Every method may return an error, an empty result, or a result
// referencing URLs that do not exist; the engine never trusts the output
// without checking it against what it actually observed.
type Classifier interface {
	// DetectLoginURL infers the login page URL from rendered page markup.
	DetectLoginURL(ctx context.Context, pageHTML string) (string, error)

	// DetectSelectors infers the login form selectors from login page markup.
	DetectSelectors(ctx context.Context, loginHTML string) (Selectors, error)

	// SelectLikelyURLs triages likely article/category URLs from the
	// observed link set.
	SelectLikelyURLs(ctx context.Context, links []model.Link) ([]string, error)

	// ClassifyArticle classifies page markup and extracts title and body.
	ClassifyArticle(ctx context.Context, pageHTML string) (*model.Article, error)
}
