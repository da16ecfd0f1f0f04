// Package main provides the entry point for the sevenbot CLI.
//
// sevenbot crawls news sites with a real browser, classifies pages with an
// LLM, and extracts article content. It remembers visited URLs per domain
// so repeated runs only fetch new pages.
//
// Usage:
//
//	sevenbot crawl <website-url>
//	sevenbot serve --addr :8000
//
// See --help for all available options.
package main

// main is the entry point for sevenbot.
func main() {
	Execute()
}
