package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.MaxPages != DefaultMaxPages {
		t.Errorf("MaxPages = %d, want %d", cfg.MaxPages, DefaultMaxPages)
	}
	if cfg.BatchSize != DefaultBatchSize {
		t.Errorf("BatchSize = %d, want %d", cfg.BatchSize, DefaultBatchSize)
	}
	if cfg.ErrorRate != DefaultErrorRate {
		t.Errorf("ErrorRate = %v, want %v", cfg.ErrorRate, DefaultErrorRate)
	}
	if cfg.NavigationTimeout != DefaultNavigationTimeout {
		t.Errorf("NavigationTimeout = %v, want %v", cfg.NavigationTimeout, DefaultNavigationTimeout)
	}
	if !cfg.Headless {
		t.Error("Headless should default to true")
	}
	if cfg.DBDir == "" {
		t.Error("DBDir should default to the XDG data directory")
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := NewConfig()
		cfg.Targets = []string{"https://news.example.com"}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:   "valid config with credentials",
			mutate: func(c *Config) { c.Username = "user"; c.Password = "pass" },
		},
		{
			name:    "no targets",
			mutate:  func(c *Config) { c.Targets = nil },
			wantErr: ErrNoTarget,
		},
		{
			name:    "username without password",
			mutate:  func(c *Config) { c.Username = "user" },
			wantErr: ErrPartialCredentials,
		},
		{
			name:    "password without username",
			mutate:  func(c *Config) { c.Password = "pass" },
			wantErr: ErrPartialCredentials,
		},
		{
			name:    "zero max pages",
			mutate:  func(c *Config) { c.MaxPages = 0 },
			wantErr: ErrInvalidMaxPages,
		},
		{
			name:    "negative max pages",
			mutate:  func(c *Config) { c.MaxPages = -1 },
			wantErr: ErrInvalidMaxPages,
		},
		{
			name:    "zero batch size",
			mutate:  func(c *Config) { c.BatchSize = 0 },
			wantErr: ErrInvalidBatchSize,
		},
		{
			name:    "error rate of zero",
			mutate:  func(c *Config) { c.ErrorRate = 0 },
			wantErr: ErrInvalidErrorRate,
		},
		{
			name:    "error rate of one",
			mutate:  func(c *Config) { c.ErrorRate = 1 },
			wantErr: ErrInvalidErrorRate,
		},
		{
			name:    "zero navigation timeout",
			mutate:  func(c *Config) { c.NavigationTimeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "conflicting report formats",
			mutate:  func(c *Config) { c.JSONReport = true; c.MarkdownReport = true },
			wantErr: ErrConflictingReportFormats,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFileGetSiteConfig(t *testing.T) {
	t.Parallel()

	cf := &File{
		Defaults: SiteConfig{
			UsernameSelector: "#default-user",
			PasswordSelector: "#default-pass",
			SubmitSelector:   "#default-submit",
		},
		Sites: map[string]SiteConfig{
			"news.example.com": {
				Username:         "alice",
				Password:         "s3cret",
				LoginURL:         "https://news.example.com/login",
				UsernameSelector: "#user",
			},
			"other.example.com": {
				Username: "bob",
				Password: "hunter2",
			},
		},
	}

	t.Run("site values override defaults field by field", func(t *testing.T) {
		t.Parallel()

		got := cf.GetSiteConfig("news.example.com")
		if got.Username != "alice" || got.Password != "s3cret" {
			t.Errorf("credentials = %q/%q", got.Username, got.Password)
		}
		if got.UsernameSelector != "#user" {
			t.Errorf("UsernameSelector = %q, want site override", got.UsernameSelector)
		}
		if got.PasswordSelector != "#default-pass" || got.SubmitSelector != "#default-submit" {
			t.Errorf("defaults not inherited: %+v", got)
		}
	})

	t.Run("unset site fields inherit defaults", func(t *testing.T) {
		t.Parallel()

		got := cf.GetSiteConfig("other.example.com")
		if got.Username != "bob" {
			t.Errorf("Username = %q, want bob", got.Username)
		}
		if got.UsernameSelector != "#default-user" {
			t.Errorf("UsernameSelector = %q, want default", got.UsernameSelector)
		}
	})

	t.Run("unknown domain returns defaults", func(t *testing.T) {
		t.Parallel()

		got := cf.GetSiteConfig("unknown.example.com")
		if got.Username != "" || got.UsernameSelector != "#default-user" {
			t.Errorf("got %+v, want bare defaults", got)
		}
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("valid file", func(t *testing.T) {
		t.Parallel()

		content := `
sites:
  news.example.com:
    username: alice
    password: s3cret
    loginUrl: https://news.example.com/login
    usernameSelector: "#user"
    passwordSelector: "#pass"
defaults:
  submitSelector: "button[type=submit]"
`
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile failed: %v", err)
		}

		site := cf.GetSiteConfig("news.example.com")
		if site.Username != "alice" || site.LoginURL != "https://news.example.com/login" {
			t.Errorf("site config = %+v", site)
		}
		if site.SubmitSelector != "button[type=submit]" {
			t.Errorf("SubmitSelector = %q, want inherited default", site.SubmitSelector)
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("err = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("malformed yaml returns error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("sites: [not a map"), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("empty file yields usable config", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile failed: %v", err)
		}
		if cf.Sites == nil {
			t.Error("Sites map should be initialized")
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit path that exists", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("sites:"), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if got := FindConfigFile(path); got != path {
			t.Errorf("FindConfigFile = %q, want %q", got, path)
		}
	})

	t.Run("explicit path that does not exist", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "nope")); got != "" {
			t.Errorf("FindConfigFile = %q, want empty", got)
		}
	})
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{
		"data":   XDGDataDir(),
		"config": XDGConfigDir(),
		"cache":  XDGCacheDir(),
	} {
		if dir == "" {
			t.Errorf("%s dir is empty", name)
		}
		if !strings.HasSuffix(dir, AppName) {
			t.Errorf("%s dir %q does not end in %q", name, dir, AppName)
		}
	}
}

func TestDefaultsAreSane(t *testing.T) {
	t.Parallel()

	if DefaultMaxPages <= 0 {
		t.Error("DefaultMaxPages must be positive")
	}
	if DefaultErrorRate <= 0 || DefaultErrorRate >= 1 {
		t.Error("DefaultErrorRate must be a probability")
	}
	if DefaultNavigationTimeout < time.Second {
		t.Error("DefaultNavigationTimeout is implausibly short")
	}
}
