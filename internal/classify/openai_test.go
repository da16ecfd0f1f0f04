package classify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestNormalizeLikelyURLs tests the string-or-list response normalization.
func TestNormalizeLikelyURLs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{
			name: "list of urls",
			raw:  `["https://a.com/1","https://a.com/2"]`,
			want: []string{"https://a.com/1", "https://a.com/2"},
		},
		{
			name: "single string",
			raw:  `"https://a.com/1"`,
			want: []string{"https://a.com/1"},
		},
		{
			name: "empty string",
			raw:  `""`,
			want: nil,
		},
		{
			name: "null",
			raw:  `null`,
			want: nil,
		},
		{
			name: "empty list",
			raw:  `[]`,
			want: []string{},
		},
		{
			name: "list with empty entries filtered",
			raw:  `["https://a.com/1",""]`,
			want: []string{"https://a.com/1"},
		},
		{
			name:    "object is rejected",
			raw:     `{"url":"https://a.com/1"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := normalizeLikelyURLs(json.RawMessage(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// TestRequestTimeout tests that a stalled completion call is cut off
// instead of blocking its caller.
func TestRequestTimeout(t *testing.T) {
	t.Parallel()

	t.Run("stalled call is aborted", func(t *testing.T) {
		t.Parallel()

		// The handler never answers; it returns only once the client
		// gives up on the request. The body must be drained first:
		// the server only notices a client disconnect (and cancels
		// r.Context()) once the request body has been consumed.
		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			io.Copy(io.Discard, r.Body)
			<-r.Context().Done()
		}))
		defer srv.Close()

		c := NewOpenAIClassifier("test-key",
			WithBaseURL(srv.URL),
			WithRequestTimeout(100*time.Millisecond),
		)

		start := time.Now()
		_, err := c.DetectLoginURL(context.Background(), "<html></html>")
		if err == nil {
			t.Fatal("expected error from stalled call")
		}
		if elapsed := time.Since(start); elapsed > 10*time.Second {
			t.Errorf("call blocked for %v, want prompt abort", elapsed)
		}
	})

	t.Run("default timeout applies", func(t *testing.T) {
		t.Parallel()

		c := NewOpenAIClassifier("test-key")
		if c.timeout != DefaultRequestTimeout {
			t.Errorf("timeout = %v, want %v", c.timeout, DefaultRequestTimeout)
		}
	})

	t.Run("non-positive timeout keeps the default", func(t *testing.T) {
		t.Parallel()

		c := NewOpenAIClassifier("test-key", WithRequestTimeout(0))
		if c.timeout != DefaultRequestTimeout {
			t.Errorf("timeout = %v, want %v", c.timeout, DefaultRequestTimeout)
		}
	})
}

// TestSelectorsComplete tests the all-three-present predicate.
func TestSelectorsComplete(t *testing.T) {
	t.Parallel()

	if (Selectors{Username: "#u", Password: "#p"}).Complete() {
		t.Error("Complete() = true with missing submit selector")
	}
	if !(Selectors{Username: "#u", Password: "#p", Submit: "#s"}).Complete() {
		t.Error("Complete() = false with all selectors present")
	}
}

// TestTruncate tests prompt capping.
func TestTruncate(t *testing.T) {
	t.Parallel()

	t.Run("short input untouched", func(t *testing.T) {
		t.Parallel()

		if got := truncate("hello"); got != "hello" {
			t.Errorf("truncate changed short input: %q", got)
		}
	})

	t.Run("long input capped without splitting runes", func(t *testing.T) {
		t.Parallel()

		long := strings.Repeat("é", maxPromptBytes)
		got := truncate(long)

		if len(got) > maxPromptBytes {
			t.Errorf("len = %d, want <= %d", len(got), maxPromptBytes)
		}
		if !strings.HasSuffix(got, "é") {
			t.Error("truncate split a multibyte rune")
		}
	})
}
