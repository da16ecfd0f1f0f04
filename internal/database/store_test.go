package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/SaidBouzegarn/sevenbot-prod-v2/internal/model"
)

// setupTestStore creates a temporary store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	return s
}

// boolPtr returns a pointer to b.
func boolPtr(b bool) *bool {
	return &b
}

// TestOpen tests store opening and schema bootstrap.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		s, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}
		defer s.Close()

		if _, err := os.Stat(filepath.Join(dbDir, "sevenbot.db")); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		opts := Options{CreateIfNotExists: false, EnableWAL: true}
		if _, err := Open(filepath.Join(t.TempDir(), "missing"), opts); err == nil {
			t.Fatal("expected error when database does not exist")
		}
	})

	t.Run("bootstrap is idempotent across reopens", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		s1, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("first open failed: %v", err)
		}

		ctx := context.Background()
		rec := model.NewVisitedRecord("https://example.com/a", "example.com", nil)
		if err := s1.RecordVisited(ctx, []model.VisitedRecord{rec}); err != nil {
			t.Fatalf("failed to record: %v", err)
		}
		if err := s1.Close(); err != nil {
			t.Fatalf("failed to close: %v", err)
		}

		s2, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("second open failed: %v", err)
		}
		defer s2.Close()

		records, err := s2.VisitedURLs(ctx, "example.com")
		if err != nil {
			t.Fatalf("failed to load visited urls: %v", err)
		}
		if len(records) != 1 {
			t.Errorf("got %d records after reopen, want 1", len(records))
		}
	})
}

// TestRecordVisited tests batch upsert behavior of the ledger.
func TestRecordVisited(t *testing.T) {
	t.Parallel()

	t.Run("empty batch is a no-op", func(t *testing.T) {
		t.Parallel()

		s := setupTestStore(t)
		if err := s.RecordVisited(context.Background(), nil); err != nil {
			t.Fatalf("empty batch returned error: %v", err)
		}
	})

	t.Run("applying the same batch twice is idempotent", func(t *testing.T) {
		t.Parallel()

		s := setupTestStore(t)
		ctx := context.Background()

		batch := []model.VisitedRecord{
			{URL: "https://example.com/a", Domain: "example.com", VisitDate: time.Now(), IsArticle: boolPtr(true)},
			{URL: "https://example.com/b", Domain: "example.com", VisitDate: time.Now(), IsArticle: boolPtr(false)},
			{URL: "https://example.com/c", Domain: "example.com", VisitDate: time.Now()},
		}

		if err := s.RecordVisited(ctx, batch); err != nil {
			t.Fatalf("first RecordVisited failed: %v", err)
		}
		if err := s.RecordVisited(ctx, batch); err != nil {
			t.Fatalf("second RecordVisited failed: %v", err)
		}

		records, err := s.VisitedURLs(ctx, "example.com")
		if err != nil {
			t.Fatalf("VisitedURLs failed: %v", err)
		}
		if len(records) != 3 {
			t.Errorf("got %d records, want 3", len(records))
		}
	})

	t.Run("conflicting rows keep the first write", func(t *testing.T) {
		t.Parallel()

		s := setupTestStore(t)
		ctx := context.Background()

		first := model.VisitedRecord{
			URL: "https://example.com/a", Domain: "example.com",
			VisitDate: time.Now(), IsArticle: boolPtr(true),
		}
		if err := s.RecordVisited(ctx, []model.VisitedRecord{first}); err != nil {
			t.Fatalf("first write failed: %v", err)
		}

		second := first
		second.IsArticle = boolPtr(false)
		if err := s.RecordVisited(ctx, []model.VisitedRecord{second}); err != nil {
			t.Fatalf("second write failed: %v", err)
		}

		records, err := s.VisitedURLs(ctx, "example.com")
		if err != nil {
			t.Fatalf("VisitedURLs failed: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("got %d records, want 1", len(records))
		}
		if records[0].IsArticle == nil || !*records[0].IsArticle {
			t.Error("conflict-ignore overwrote the original row")
		}
	})

	t.Run("null classification round-trips", func(t *testing.T) {
		t.Parallel()

		s := setupTestStore(t)
		ctx := context.Background()

		rec := model.VisitedRecord{URL: "https://example.com/x", Domain: "example.com", VisitDate: time.Now()}
		if err := s.RecordVisited(ctx, []model.VisitedRecord{rec}); err != nil {
			t.Fatalf("RecordVisited failed: %v", err)
		}

		records, err := s.VisitedURLs(ctx, "example.com")
		if err != nil {
			t.Fatalf("VisitedURLs failed: %v", err)
		}
		if len(records) != 1 || records[0].IsArticle != nil {
			t.Error("expected one record with nil IsArticle")
		}
	})

	t.Run("records are scoped by domain", func(t *testing.T) {
		t.Parallel()

		s := setupTestStore(t)
		ctx := context.Background()

		batch := []model.VisitedRecord{
			{URL: "https://a.com/1", Domain: "a.com", VisitDate: time.Now()},
			{URL: "https://b.com/1", Domain: "b.com", VisitDate: time.Now()},
		}
		if err := s.RecordVisited(ctx, batch); err != nil {
			t.Fatalf("RecordVisited failed: %v", err)
		}

		records, err := s.VisitedURLs(ctx, "a.com")
		if err != nil {
			t.Fatalf("VisitedURLs failed: %v", err)
		}
		if len(records) != 1 || records[0].URL != "https://a.com/1" {
			t.Errorf("domain scoping broken: %+v", records)
		}
	})
}

// TestWebsiteConfig tests site configuration load and merge-on-write.
func TestWebsiteConfig(t *testing.T) {
	t.Parallel()

	t.Run("absent domain returns not found", func(t *testing.T) {
		t.Parallel()

		s := setupTestStore(t)

		_, found, err := s.Website(context.Background(), "missing.com")
		if err != nil {
			t.Fatalf("Website failed: %v", err)
		}
		if found {
			t.Error("expected not found for absent domain")
		}
	})

	t.Run("insert then load round-trips", func(t *testing.T) {
		t.Parallel()

		s := setupTestStore(t)
		ctx := context.Background()

		site := model.Website{
			Domain:           "example.com",
			LoginURL:         "https://example.com/login",
			Username:         "user",
			Password:         "pass",
			UsernameSelector: "#username",
			PasswordSelector: "#password",
			SubmitSelector:   "button[type=submit]",
		}
		if err := s.UpsertWebsite(ctx, site); err != nil {
			t.Fatalf("UpsertWebsite failed: %v", err)
		}

		got, found, err := s.Website(ctx, "example.com")
		if err != nil {
			t.Fatalf("Website failed: %v", err)
		}
		if !found {
			t.Fatal("expected row after insert")
		}
		if got.LoginURL != site.LoginURL || got.Username != site.Username || got.SubmitSelector != site.SubmitSelector {
			t.Errorf("round-trip mismatch: %+v", got)
		}
		if got.LastUpdated.IsZero() {
			t.Error("LastUpdated not set on insert")
		}
	})

	t.Run("partial upsert preserves other fields", func(t *testing.T) {
		t.Parallel()

		s := setupTestStore(t)
		ctx := context.Background()

		full := model.Website{
			Domain:           "example.com",
			LoginURL:         "https://example.com/login",
			Username:         "user",
			Password:         "pass",
			UsernameSelector: "#username",
			PasswordSelector: "#password",
			SubmitSelector:   "#submit",
		}
		if err := s.UpsertWebsite(ctx, full); err != nil {
			t.Fatalf("initial upsert failed: %v", err)
		}

		partial := model.Website{Domain: "example.com", Username: "new-user"}
		if err := s.UpsertWebsite(ctx, partial); err != nil {
			t.Fatalf("partial upsert failed: %v", err)
		}

		got, found, err := s.Website(ctx, "example.com")
		if err != nil || !found {
			t.Fatalf("Website failed: found=%v err=%v", found, err)
		}
		if got.Username != "new-user" {
			t.Errorf("Username = %q, want updated value", got.Username)
		}
		if got.Password != "pass" || got.LoginURL != "https://example.com/login" || got.SubmitSelector != "#submit" {
			t.Errorf("partial upsert clobbered stored fields: %+v", got)
		}
	})
}
