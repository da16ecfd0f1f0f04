package browser

import (
	"testing"
	"time"
)

// TestOptions tests option plumbing without launching a browser.
func TestOptions(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		o := &options{headless: true, userAgent: DefaultUserAgent, timeout: DefaultNavigationTimeout}

		if !o.headless {
			t.Error("default should be headless")
		}
		if o.timeout != DefaultNavigationTimeout {
			t.Errorf("timeout = %v, want %v", o.timeout, DefaultNavigationTimeout)
		}
	})

	t.Run("overrides apply", func(t *testing.T) {
		t.Parallel()

		o := &options{headless: true, userAgent: DefaultUserAgent, timeout: DefaultNavigationTimeout}
		for _, opt := range []Option{
			WithHeadless(false),
			WithUserAgent("TestAgent/1.0"),
			WithTimeout(5 * time.Second),
		} {
			opt(o)
		}

		if o.headless {
			t.Error("WithHeadless(false) not applied")
		}
		if o.userAgent != "TestAgent/1.0" {
			t.Errorf("userAgent = %q", o.userAgent)
		}
		if o.timeout != 5*time.Second {
			t.Errorf("timeout = %v", o.timeout)
		}
	})

	t.Run("invalid values keep defaults", func(t *testing.T) {
		t.Parallel()

		o := &options{headless: true, userAgent: DefaultUserAgent, timeout: DefaultNavigationTimeout}
		WithUserAgent("")(o)
		WithTimeout(0)(o)

		if o.userAgent != DefaultUserAgent {
			t.Error("empty user agent overwrote default")
		}
		if o.timeout != DefaultNavigationTimeout {
			t.Error("zero timeout overwrote default")
		}
	})
}
