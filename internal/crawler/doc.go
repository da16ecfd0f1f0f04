// Package crawler implements the crawl engine: login resolution with
// anonymous fallback, breadth-first frontier traversal bounded by a page
// quota, hallucination filtering of classifier suggestions, and the
// end-of-session flush that reconciles in-memory crawl state with the
// durable store.
package crawler
