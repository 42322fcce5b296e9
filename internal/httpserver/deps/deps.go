package deps

import (
	"context"
	"time"

	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/portfolio/internal/catalog"
	"github.com/MrSnakeDoc/portfolio/internal/index"
	"github.com/MrSnakeDoc/portfolio/internal/logger"
	"github.com/MrSnakeDoc/portfolio/internal/metrics"
	"github.com/MrSnakeDoc/portfolio/internal/terminal"
	"github.com/MrSnakeDoc/portfolio/internal/terminal/session"
)

// ReloadPublisher tells the other instances to reload their content.
type ReloadPublisher interface {
	Publish(ctx context.Context) error
}

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed on admin endpoints
	AllowedCIDRS []string         // IPs allowed to access admin endpoints
	TrustProxy   bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)

	RedisClient *redis.Client    // nil when Redis is disabled
	BlogIndex   *index.BlogIndex // In-memory blog index
	Catalog     *catalog.Catalog // Technologies, experiences and projects
	Metrics     *metrics.Metrics // nil when metrics are disabled

	// Terminal
	Dispatcher       *terminal.Dispatcher
	Sessions         *session.Store
	SessionCookies   sessions.Store // signs the cookie carrying the session id
	TerminalMaxInput int            // max input length in bytes
	RateLimitBurst   int
	RateLimitPerMin  int

	// Public site, used for absolute links in feeds
	SiteURL         string
	SiteTitle       string
	SiteDescription string

	ReloadTrigger   chan struct{}   // Channel to trigger manual blog reload
	ReloadPublisher ReloadPublisher // nil when Redis is disabled
}
