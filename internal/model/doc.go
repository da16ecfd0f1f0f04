// Package model defines the core data types shared across the crawler:
// canonical domains, site login configuration, visited-URL records, and
// classified articles.
package model
