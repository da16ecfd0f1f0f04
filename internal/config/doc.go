// Package config provides configuration structures and utilities for sevenbot.
// It defines the main configuration options for crawling news sites,
// per-site credentials, and report generation preferences.
package config
