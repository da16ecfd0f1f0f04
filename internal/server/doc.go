// Package server exposes the crawler over HTTP for service integration.
//
// The API is intentionally small: one endpoint that runs a crawl
// synchronously and returns every classified page with truncated
// content, and a health check. Callers that need full article bodies
// should use the CLI's JSON report instead.
package server
