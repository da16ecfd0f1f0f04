// Package database provides SQLite-backed storage for the visited-URL
// ledger and per-site login configuration. It is the durable source of
// truth reconciling crawl state across sessions.
package database
