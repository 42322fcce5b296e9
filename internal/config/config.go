package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	ListenPort      string        `validate:"required"` // ex: ":8080"
	ShutdownTimeout time.Duration `validate:"gt=0"`     // ex: 5s

	LogLevel  string `validate:"oneof=debug info warn error"`
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Blog content
	ContentRoot           string        `validate:"required"` // folder scanned for meta.json + content.md
	ReloadInterval        time.Duration `validate:"gte=0"`    // periodic rescan, 0 = disabled
	StartupReloadAttempts int           `validate:"gte=1"`    // tries before giving up at startup

	// Public site, used for absolute links in rss.xml and sitemap.xml
	SiteURL         string `validate:"required,url"`
	SiteTitle       string `validate:"required"`
	SiteDescription string

	// Terminal
	TerminalBufferSize   int           `validate:"gte=1,lte=10000"` // lines kept per session
	TerminalMaxInput     int           `validate:"gte=1,lte=4096"`  // max input length in bytes
	SessionKey           string        `validate:"omitempty,min=32"` // cookie signing key, random when empty
	SessionIdleTTL       time.Duration `validate:"gt=0"`
	SessionSweepInterval time.Duration `validate:"gt=0"`
	MaxSessions          int           `validate:"gte=0"` // 0 = unbounded

	// Rate limiting of the terminal endpoint, per client IP
	RateLimitBurst  int `validate:"gte=1"`
	RateLimitPerMin int `validate:"gte=1"`

	// Redis (optional, only used to broadcast reloads between replicas)
	RedisAddr           string        `validate:"omitempty,hostname_port"` // ex: "localhost:6379", empty = disabled
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           `validate:"gte=0"`
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration `validate:"gt=0"` // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration `validate:"gt=0"` // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           `validate:"gte=1"`
	RedisConnectTimeout time.Duration `validate:"gt=0"` // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration `validate:"gt=0"` // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           `validate:"gte=0"`

	MetricsEnabled bool

	AllowedCIDRS []string `validate:"dive,cidr|ip"` // restrict admin endpoints (reload, readyz, infra, metrics)
	AllowedHosts []string // optional, Host headers accepted on admin endpoints
	TrustProxy   bool     // true => trust X-Forwarded-For headers
}

// Load reads the configuration from the environment, after applying the
// optional .env file. It panics on invalid values.
func Load() *Config {
	loadDotEnv(getenv("PORTFOLIO_ENV_FILE", ".env"))

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("PORTFOLIO_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("PORTFOLIO_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  strings.ToLower(getenv("PORTFOLIO_LOG_LEVEL", "info")),
		PrettyLog: mustBool("PORTFOLIO_PRETTY_LOG", true),

		// Blog
		ContentRoot:           getenv("PORTFOLIO_CONTENT_ROOT", "./wwwroot/blogs-pages"),
		ReloadInterval:        mustDuration("PORTFOLIO_RELOAD_INTERVAL", 0),
		StartupReloadAttempts: getenvInt("PORTFOLIO_STARTUP_RELOAD_ATTEMPTS", 5),

		SiteURL:         strings.TrimRight(getenv("PORTFOLIO_SITE_URL", "http://localhost:8080"), "/"),
		SiteTitle:       getenv("PORTFOLIO_SITE_TITLE", "Portfolio"),
		SiteDescription: getenv("PORTFOLIO_SITE_DESCRIPTION", ""),

		// Terminal
		TerminalBufferSize:   getenvInt("PORTFOLIO_TERMINAL_BUFFER_SIZE", 100),
		TerminalMaxInput:     getenvInt("PORTFOLIO_TERMINAL_MAX_INPUT", 256),
		SessionKey:           getenv("PORTFOLIO_SESSION_KEY", ""),
		SessionIdleTTL:       mustDuration("PORTFOLIO_SESSION_IDLE_TTL", 30*time.Minute),
		SessionSweepInterval: mustDuration("PORTFOLIO_SESSION_SWEEP_INTERVAL", 5*time.Minute),
		MaxSessions:          getenvInt("PORTFOLIO_MAX_SESSIONS", 10000),

		RateLimitBurst:  getenvInt("PORTFOLIO_RATE_LIMIT_BURST", 20),
		RateLimitPerMin: getenvInt("PORTFOLIO_RATE_LIMIT_PER_MIN", 60),

		// Redis settings
		RedisAddr:           getenv("PORTFOLIO_REDIS_ADDR", ""),
		RedisUser:           getenv("PORTFOLIO_REDIS_USERNAME", ""),
		RedisPassword:       getenv("PORTFOLIO_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("PORTFOLIO_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		MetricsEnabled: mustBool("PORTFOLIO_METRICS_ENABLED", true),

		// Access restrictions
		AllowedCIDRS: parseAllowedIPs(getenv("PORTFOLIO_ALLOWED_CIDRS", "")),
		AllowedHosts: splitAndTrim(getenv("PORTFOLIO_ALLOWED_HOSTS", "")),
		TrustProxy:   mustBool("PORTFOLIO_TRUST_PROXY", false),
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("❌ FATAL: invalid configuration: %v", err))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Validate checks every field constraint.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return validate.Struct(c)
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cfgCopy := *c
	if cfgCopy.RedisPassword != "" {
		cfgCopy.RedisPassword = "***REDACTED***"
	}
	if cfgCopy.SessionKey != "" {
		cfgCopy.SessionKey = "***REDACTED***"
	}
	return cfgCopy
}

// RedisEnabled reports whether a Redis address is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// loadDotEnv applies path when it exists. Variables already set in the
// environment win.
func loadDotEnv(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Sprintf("❌ FATAL: cannot load %s: %v", path, err))
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
