package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points Load at an empty .env so the developer's file never leaks in.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("PORTFOLIO_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg := Load()

	if cfg.ListenPort != ":8080" {
		t.Errorf("ListenPort = %q, want :8080", cfg.ListenPort)
	}
	if cfg.ContentRoot != "./wwwroot/blogs-pages" {
		t.Errorf("ContentRoot = %q", cfg.ContentRoot)
	}
	if cfg.ReloadInterval != 0 {
		t.Errorf("ReloadInterval = %v, want 0", cfg.ReloadInterval)
	}
	if cfg.TerminalBufferSize != 100 || cfg.TerminalMaxInput != 256 {
		t.Errorf("terminal defaults = %d/%d", cfg.TerminalBufferSize, cfg.TerminalMaxInput)
	}
	if cfg.SessionIdleTTL != 30*time.Minute {
		t.Errorf("SessionIdleTTL = %v", cfg.SessionIdleTTL)
	}
	if cfg.RedisEnabled() {
		t.Error("Redis should be disabled by default")
	}
	if !cfg.MetricsEnabled {
		t.Error("metrics should be enabled by default")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("PORTFOLIO_CONTENT_ROOT", "/srv/blog")
	t.Setenv("PORTFOLIO_RELOAD_INTERVAL", "10m")
	t.Setenv("PORTFOLIO_LOG_LEVEL", "DEBUG")
	t.Setenv("PORTFOLIO_SITE_URL", "https://example.com/")
	t.Setenv("PORTFOLIO_ALLOWED_CIDRS", `"10.0.0.0/8", 127.0.0.1`)
	t.Setenv("PORTFOLIO_REDIS_ADDR", "redis:6379")

	cfg := Load()

	if cfg.ContentRoot != "/srv/blog" || cfg.ReloadInterval != 10*time.Minute {
		t.Errorf("blog settings = %q/%v", cfg.ContentRoot, cfg.ReloadInterval)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.SiteURL != "https://example.com" {
		t.Errorf("SiteURL = %q, trailing slash should be trimmed", cfg.SiteURL)
	}
	if len(cfg.AllowedCIDRS) != 2 || cfg.AllowedCIDRS[0] != "10.0.0.0/8" {
		t.Errorf("AllowedCIDRS = %v", cfg.AllowedCIDRS)
	}
	if !cfg.RedisEnabled() {
		t.Error("Redis should be enabled when an address is set")
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "PORTFOLIO_TERMINAL_BUFFER_SIZE=42\nPORTFOLIO_SITE_TITLE=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORTFOLIO_ENV_FILE", path)
	t.Setenv("PORTFOLIO_SITE_TITLE", "from-env")
	// godotenv sets variables for the process; make sure the test cleans up.
	t.Setenv("PORTFOLIO_TERMINAL_BUFFER_SIZE", "")
	if err := os.Unsetenv("PORTFOLIO_TERMINAL_BUFFER_SIZE"); err != nil {
		t.Fatal(err)
	}

	cfg := Load()

	if cfg.TerminalBufferSize != 42 {
		t.Errorf("TerminalBufferSize = %d, want 42 from .env", cfg.TerminalBufferSize)
	}
	if cfg.SiteTitle != "from-env" {
		t.Errorf("SiteTitle = %q, environment should win over .env", cfg.SiteTitle)
	}
}

func TestLoadInvalidPanics(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"log level", "PORTFOLIO_LOG_LEVEL", "verbose"},
		{"buffer size", "PORTFOLIO_TERMINAL_BUFFER_SIZE", "0"},
		{"short session key", "PORTFOLIO_SESSION_KEY", "too-short"},
		{"bad cidr", "PORTFOLIO_ALLOWED_CIDRS", "not-a-network"},
		{"bad redis addr", "PORTFOLIO_REDIS_ADDR", "no-port"},
		{"bad site url", "PORTFOLIO_SITE_URL", "not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.value)

			defer func() {
				r := recover()
				if r == nil {
					t.Fatal("Load() should have panicked")
				}
				if !strings.Contains(r.(string), "invalid configuration") {
					t.Errorf("panic = %v", r)
				}
			}()
			Load()
		})
	}
}

func TestRedacted(t *testing.T) {
	cfg := &Config{RedisPassword: "secret", SessionKey: strings.Repeat("k", 32)}
	red := cfg.Redacted()
	if red.RedisPassword == "secret" || red.SessionKey == cfg.SessionKey {
		t.Error("Redacted() should hide secrets")
	}
	if cfg.RedisPassword != "secret" {
		t.Error("Redacted() should not modify the original")
	}
}

func TestGetenvInt(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		def      int
		expected int
	}{
		{"valid", "42", 1, 42},
		{"invalid uses default", "forty-two", 7, 7},
		{"missing uses default", "", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT", tt.value)
			if got := getenvInt("TEST_INT", tt.def); got != tt.expected {
				t.Errorf("getenvInt() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{"valid duration", "5s", time.Second, 5 * time.Second},
		{"invalid duration uses default", "invalid", 10 * time.Second, 10 * time.Second},
		{"missing variable uses default", "", 15 * time.Second, 15 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.value)
			if got := mustDuration("TEST_DURATION", tt.def); got != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		def      bool
		expected bool
	}{
		{"true value", "true", false, true},
		{"false value", "false", true, false},
		{"invalid value uses default", "invalid", true, true},
		{"missing variable uses default", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.value)
			if got := mustBool("TEST_BOOL", tt.def); got != tt.expected {
				t.Errorf("mustBool() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{" a , 'b' ,, \"c\" ", []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := splitAndTrim(tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("splitAndTrim(%q) = %v, want %v", tt.input, got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("splitAndTrim(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.expected[i])
				}
			}
		})
	}
}
