package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/SaidBouzegarn/sevenbot-prod-v2/internal/model"
)

// Store provides SQLite-based storage for the visited-URL ledger and the
// per-site login configuration.
//
// Design decision: One database file holds both tables. The tables share a
// lifecycle (both are keyed by canonical domain) and a single file keeps
// backup and inspection trivial.
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default store options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a Store at the specified directory.
// Schema bootstrap is idempotent: both tables are created if absent.
// A store that cannot be opened or bootstrapped is a fatal condition for
// the crawl session, so errors here are propagated rather than degraded.
func Open(dbDir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dbDir, "sevenbot.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	-- Visited pages, one row per (url, domain). is_article is NULL when
	-- the page was visited but classification failed.
	CREATE TABLE IF NOT EXISTS visited_urls (
		url TEXT,
		domain TEXT,
		visit_date TIMESTAMP,
		is_article BOOLEAN,
		PRIMARY KEY (url, domain)
	);

	CREATE INDEX IF NOT EXISTS idx_visited_domain ON visited_urls(domain);

	-- Per-site login configuration, keyed by canonical domain.
	CREATE TABLE IF NOT EXISTS websites (
		url TEXT PRIMARY KEY,
		login_url TEXT,
		username TEXT,
		password TEXT,
		username_selector TEXT,
		password_selector TEXT,
		submit_button_selector TEXT,
		last_updated TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// VisitedURLs reads all ledger records for a domain. The result is used to
// rehydrate the in-memory membership cache at session start.
func (s *Store) VisitedURLs(ctx context.Context, domain string) ([]model.VisitedRecord, error) {
	query := `
	SELECT url, domain, visit_date, is_article
	FROM visited_urls
	WHERE domain = ?
	`

	rows, err := s.db.QueryContext(ctx, query, domain)
	if err != nil {
		return nil, fmt.Errorf("failed to query visited urls: %w", err)
	}
	defer rows.Close()

	var records []model.VisitedRecord
	for rows.Next() {
		var rec model.VisitedRecord
		var visitDate sql.NullString
		var isArticle sql.NullBool

		if err := rows.Scan(&rec.URL, &rec.Domain, &visitDate, &isArticle); err != nil {
			return nil, fmt.Errorf("failed to scan visited url: %w", err)
		}

		if visitDate.Valid {
			rec.VisitDate = parseTimestamp(visitDate.String)
		}
		if isArticle.Valid {
			v := isArticle.Bool
			rec.IsArticle = &v
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

// RecordVisited upserts a batch of visited records in a single transaction,
// ignoring rows whose (url, domain) pair already exists. The call is
// idempotent: applying the same batch twice leaves the ledger identical.
// An empty batch is a no-op.
func (s *Store) RecordVisited(ctx context.Context, records []model.VisitedRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO visited_urls (url, domain, visit_date, is_article)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (url, domain) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		var isArticle any
		if rec.IsArticle != nil {
			isArticle = *rec.IsArticle
		}

		visitDate := rec.VisitDate
		if visitDate.IsZero() {
			visitDate = time.Now()
		}

		if _, err := stmt.ExecContext(ctx, rec.URL, rec.Domain, visitDate.UTC().Format(sqliteTimeFormat), isArticle); err != nil {
			return fmt.Errorf("failed to insert visited url %q: %w", rec.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit visited urls: %w", err)
	}

	return nil
}

// Website retrieves the stored login configuration for a domain.
// It returns (zero value, false, nil) when no row exists.
func (s *Store) Website(ctx context.Context, domain string) (model.Website, bool, error) {
	query := `
	SELECT url, login_url, username, password,
	       username_selector, password_selector, submit_button_selector, last_updated
	FROM websites
	WHERE url = ?
	`

	var site model.Website
	var loginURL, username, password sql.NullString
	var usernameSel, passwordSel, submitSel sql.NullString
	var lastUpdated sql.NullString

	err := s.db.QueryRowContext(ctx, query, domain).Scan(
		&site.Domain,
		&loginURL,
		&username,
		&password,
		&usernameSel,
		&passwordSel,
		&submitSel,
		&lastUpdated,
	)
	if err == sql.ErrNoRows {
		return model.Website{}, false, nil
	}
	if err != nil {
		return model.Website{}, false, fmt.Errorf("failed to get website config: %w", err)
	}

	site.LoginURL = loginURL.String
	site.Username = username.String
	site.Password = password.String
	site.UsernameSelector = usernameSel.String
	site.PasswordSelector = passwordSel.String
	site.SubmitSelector = submitSel.String
	if lastUpdated.Valid {
		site.LastUpdated = parseTimestamp(lastUpdated.String)
	}

	return site, true, nil
}

// UpsertWebsite inserts or merge-updates a site configuration. On update,
// only non-empty incoming fields overwrite the stored row; empty fields
// preserve the prior value (COALESCE merge). Rows are never deleted.
func (s *Store) UpsertWebsite(ctx context.Context, site model.Website) error {
	query := `
	INSERT INTO websites
		(url, login_url, username, password,
		 username_selector, password_selector, submit_button_selector, last_updated)
	VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT (url) DO UPDATE SET
		login_url = COALESCE(excluded.login_url, login_url),
		username = COALESCE(excluded.username, username),
		password = COALESCE(excluded.password, password),
		username_selector = COALESCE(excluded.username_selector, username_selector),
		password_selector = COALESCE(excluded.password_selector, password_selector),
		submit_button_selector = COALESCE(excluded.submit_button_selector, submit_button_selector),
		last_updated = CURRENT_TIMESTAMP
	`

	_, err := s.db.ExecContext(ctx, query,
		site.Domain,
		nullable(site.LoginURL),
		nullable(site.Username),
		nullable(site.Password),
		nullable(site.UsernameSelector),
		nullable(site.PasswordSelector),
		nullable(site.SubmitSelector),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert website config: %w", err)
	}

	return nil
}

// nullable maps empty strings to NULL so COALESCE preserves stored values.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// sqliteTimeFormat is the canonical datetime format written to SQLite.
const sqliteTimeFormat = "2006-01-02 15:04:05"

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	sqliteTimeFormat,          // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
