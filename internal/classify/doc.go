// Package classify defines the classification service the crawl engine
// consults: login URL detection, login selector detection, likely-URL
// triage, and article classification. All capabilities are best-effort and
// externally hosted; callers must treat empty, malformed, or fabricated
// outputs as expected.
package classify
