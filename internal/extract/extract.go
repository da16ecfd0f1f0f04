package extract

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/SaidBouzegarn/sevenbot-prod-v2/internal/model"
)

// Extractor parses rendered page HTML.
//
// Design decision: We use golang.org/x/net/html rather than regex because
// it correctly handles the malformed HTML common on news sites and gives a
// proper DOM-like structure to walk. The extractor never mutates page
// state; it only reads the markup handed to it.
type Extractor struct {
	// baseURL is the URL of the page being parsed, used for resolving
	// relative hrefs.
	baseURL *url.URL
}

// New creates an Extractor with the given base URL.
func New(baseURL string) (*Extractor, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Extractor{baseURL: u}, nil
}

// Links returns all anchor links in document order, with hrefs resolved
// against the base URL. Hrefs are not deduplicated: the crawl engine
// intersects classifier suggestions against this exact set, and the raw
// observed sequence is what the classifier was shown.
func (e *Extractor) Links(content string) ([]model.Link, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, err
	}

	links := make([]model.Link, 0)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := e.resolveURL(getAttr(n, "href")); href != "" {
				links = append(links, model.Link{
					Href: href,
					Text: strings.TrimSpace(nodeText(n)),
				})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links, nil
}

// CleanForLogin prunes page markup down to what selector detection needs:
// forms, inputs, buttons, and labels, serialized with their attributes.
// Scripts, styles, and body text are dropped to keep the prompt small.
func CleanForLogin(content string) (string, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return "", err
	}

	var b strings.Builder

	var walk func(*html.Node, bool)
	walk = func(n *html.Node, insideForm bool) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "svg", "img", "video", "iframe":
				return
			case "form":
				b.WriteString(openTag(n))
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					walk(c, true)
				}
				b.WriteString("</form>\n")
				return
			case "input", "button", "select", "textarea", "label":
				b.WriteString(openTag(n))
				if insideForm && n.Data == "label" {
					if txt := strings.TrimSpace(nodeText(n)); txt != "" {
						b.WriteString(txt)
					}
				}
				b.WriteString("</" + n.Data + ">\n")
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, insideForm)
		}
	}
	walk(doc, false)

	return b.String(), nil
}

// openTag serializes an element's opening tag with all attributes.
func openTag(n *html.Node) string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(n.Data)
	for _, attr := range n.Attr {
		b.WriteString(" ")
		b.WriteString(attr.Key)
		b.WriteString(`="`)
		b.WriteString(attr.Val)
		b.WriteString(`"`)
	}
	b.WriteString(">")
	return b.String()
}

// resolveURL resolves a relative href against the base URL. Non-navigable
// schemes and empty fragments resolve to the empty string.
func (e *Extractor) resolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	return e.baseURL.ResolveReference(u).String()
}

// nodeText collects the text content of a node's subtree.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
