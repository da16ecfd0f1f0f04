package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
)

func TestBatchRun(t *testing.T) {
	t.Parallel()

	t.Run("results keep input order", func(t *testing.T) {
		t.Parallel()

		store := setupStore(t)
		factory := func(ctx context.Context, websiteURL string) (*Crawler, error) {
			session := newFakeSession(map[string]string{websiteURL: pageWithLinks()})
			return New(ctx, Config{
				WebsiteURL: websiteURL,
				Logger:     quietLogger(),
			}, store, session, &fakeClassifier{})
		}

		urls := []string{
			"https://one.example",
			"https://two.example",
			"https://three.example",
		}

		batch := NewBatch(factory, WithBatchLogger(quietLogger()))
		results, err := batch.Run(context.Background(), urls)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		if len(results) != len(urls) {
			t.Fatalf("got %d results, want %d", len(results), len(urls))
		}
		for i, r := range results {
			if r.WebsiteURL != urls[i] {
				t.Errorf("results[%d].WebsiteURL = %s, want %s", i, r.WebsiteURL, urls[i])
			}
			if r.Err != nil {
				t.Errorf("results[%d].Err = %v", i, r.Err)
			}
			if len(r.Results) != 1 {
				t.Errorf("results[%d] has %d pages, want 1", i, len(r.Results))
			}
		}
	})

	t.Run("one broken site does not cancel the others", func(t *testing.T) {
		t.Parallel()

		store := setupStore(t)
		factory := func(ctx context.Context, websiteURL string) (*Crawler, error) {
			if websiteURL == "https://broken.example" {
				return nil, errors.New("browser launch failed")
			}
			session := newFakeSession(map[string]string{websiteURL: pageWithLinks()})
			return New(ctx, Config{
				WebsiteURL: websiteURL,
				Logger:     quietLogger(),
			}, store, session, &fakeClassifier{})
		}

		batch := NewBatch(factory, WithBatchLogger(quietLogger()))
		results, err := batch.Run(context.Background(),
			[]string{"https://ok.example", "https://broken.example", "https://also-ok.example"})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		if results[0].Err != nil || results[2].Err != nil {
			t.Errorf("healthy sites failed: %v, %v", results[0].Err, results[2].Err)
		}
		if results[1].Err == nil {
			t.Error("broken site reported no error")
		}
	})

	t.Run("concurrency limit is honored", func(t *testing.T) {
		t.Parallel()

		var active, peak atomic.Int64

		store := setupStore(t)
		factory := func(ctx context.Context, websiteURL string) (*Crawler, error) {
			n := active.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			defer active.Add(-1)

			session := newFakeSession(map[string]string{websiteURL: pageWithLinks()})
			return New(ctx, Config{
				WebsiteURL: websiteURL,
				Logger:     quietLogger(),
			}, store, session, &fakeClassifier{})
		}

		urls := make([]string, 8)
		for i := range urls {
			urls[i] = fmt.Sprintf("https://site%d.example", i)
		}

		batch := NewBatch(factory, WithConcurrency(2), WithBatchLogger(quietLogger()))
		if _, err := batch.Run(context.Background(), urls); err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		if peak.Load() > 2 {
			t.Errorf("peak concurrent factories = %d, want at most 2", peak.Load())
		}
	})

	t.Run("sessions are closed after each crawl", func(t *testing.T) {
		t.Parallel()

		store := setupStore(t)
		var sessions []*fakeSession
		factory := func(ctx context.Context, websiteURL string) (*Crawler, error) {
			session := newFakeSession(map[string]string{websiteURL: pageWithLinks()})
			sessions = append(sessions, session)
			return New(ctx, Config{
				WebsiteURL: websiteURL,
				Logger:     quietLogger(),
			}, store, session, &fakeClassifier{})
		}

		batch := NewBatch(factory, WithConcurrency(1), WithBatchLogger(quietLogger()))
		if _, err := batch.Run(context.Background(), []string{"https://a.example", "https://b.example"}); err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		for i, s := range sessions {
			if !s.closed {
				t.Errorf("session %d not closed", i)
			}
		}
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		t.Parallel()

		batch := NewBatch(func(context.Context, string) (*Crawler, error) {
			t.Error("factory called for empty input")
			return nil, nil
		}, WithBatchLogger(quietLogger()))

		results, err := batch.Run(context.Background(), nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if len(results) != 0 {
			t.Errorf("results = %v, want none", results)
		}
	})
}
