// Package browser provides the browser session the crawl engine drives:
// a single headless Chrome page reused sequentially for navigation, form
// filling, and cookie management.
package browser
