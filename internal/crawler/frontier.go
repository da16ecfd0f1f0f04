package crawler

import "github.com/SaidBouzegarn/sevenbot-prod-v2/internal/model"

// frontier is the FIFO queue of candidate URLs. It is owned exclusively by
// one Scrape call, never persisted, and either drains completely or is
// abandoned when the page quota is reached.
type frontier struct {
	items []string
}

// push appends URLs at the tail, preserving breadth-first ordering: URLs
// discovered at depth d are all queued before anything found at depth d+1.
func (f *frontier) push(urls ...string) {
	f.items = append(f.items, urls...)
}

// pop removes and returns the head URL. ok is false when the queue is empty.
func (f *frontier) pop() (url string, ok bool) {
	if len(f.items) == 0 {
		return "", false
	}
	url = f.items[0]
	f.items = f.items[1:]
	return url, true
}

// len returns the number of queued URLs.
func (f *frontier) len() int {
	return len(f.items)
}

// filterSuggested intersects the classifier's suggested URLs with the hrefs
// actually observed on the page, preserving suggestion order. Anything
// suggested but not observed is a hallucination: dropped and counted, never
// enqueued. The count is diagnostic only.
func filterSuggested(suggested []string, observed []model.Link) (kept []string, hallucinated int) {
	hrefs := make(map[string]struct{}, len(observed))
	for _, l := range observed {
		hrefs[l.Href] = struct{}{}
	}

	kept = make([]string, 0, len(suggested))
	for _, u := range suggested {
		if _, ok := hrefs[u]; ok {
			kept = append(kept, u)
		} else {
			hallucinated++
		}
	}
	return kept, hallucinated
}
