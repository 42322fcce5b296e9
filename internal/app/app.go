package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/portfolio/internal/catalog"
	"github.com/MrSnakeDoc/portfolio/internal/config"
	"github.com/MrSnakeDoc/portfolio/internal/httpserver"
	"github.com/MrSnakeDoc/portfolio/internal/httpserver/deps"
	"github.com/MrSnakeDoc/portfolio/internal/index"
	"github.com/MrSnakeDoc/portfolio/internal/logger"
	"github.com/MrSnakeDoc/portfolio/internal/markdown"
	"github.com/MrSnakeDoc/portfolio/internal/metrics"
	"github.com/MrSnakeDoc/portfolio/internal/redis"
	"github.com/MrSnakeDoc/portfolio/internal/scheduler"
	"github.com/MrSnakeDoc/portfolio/internal/sources/blog"
	"github.com/MrSnakeDoc/portfolio/internal/terminal"
	"github.com/MrSnakeDoc/portfolio/internal/terminal/session"
	"github.com/MrSnakeDoc/portfolio/internal/utils"
	"github.com/MrSnakeDoc/portfolio/internal/version"
)

const sessionKeyLength = 32

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	blogIndex   *index.BlogIndex
	reloader    *scheduler.BlogReloader
	collector   *scheduler.SessionCollector
	broadcaster *scheduler.ReloadBroadcaster
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	cat, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	// Blog index, filled by the reloader before the server starts
	loader := blog.NewLoader(cfg.ContentRoot, markdown.New())
	blogIndex := index.NewBlogIndex(loader, loggerClient.With(logger.Component("blog")))

	// Create manual reload trigger channel
	reloadTrigger := make(chan struct{}, 1)

	reloader := scheduler.NewBlogReloader(
		blogIndex,
		m,
		loggerClient.With(logger.Component("reloader")),
		cfg.ReloadInterval,
		uint(cfg.StartupReloadAttempts),
		reloadTrigger,
	)

	// Terminal
	registry := terminal.NewDefaultRegistry()
	dispatcher := terminal.NewDispatcher(registry, m)
	sessionStore := session.NewStore(cfg.TerminalBufferSize, cfg.MaxSessions, cfg.SessionIdleTTL)
	collector := scheduler.NewSessionCollector(
		sessionStore,
		m,
		loggerClient.With(logger.Component("sessions")),
		cfg.SessionSweepInterval,
	)

	cookies, err := newCookieStore(cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	// Redis is optional: it only relays reload requests between instances.
	var (
		redisClient *goredis.Client
		broadcaster *scheduler.ReloadBroadcaster
		publisher   deps.ReloadPublisher
	)
	if cfg.RedisEnabled() {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		redisClient, err = redis.New(context.Background(), redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		loggerClient.Info("Redis initialized successfully")

		broadcaster = scheduler.NewReloadBroadcaster(
			redisClient,
			uuid.NewString(),
			reloadTrigger,
			loggerClient.With(logger.Component("broadcaster")),
		)
		publisher = broadcaster
	} else {
		loggerClient.Info("redis not configured, reloads stay local to this instance")
	}

	d := deps.Deps{
		Logger:           loggerClient,
		StartTime:        time.Now(),
		Version:          version.Version,
		Commit:           version.Commit,
		BuildDate:        version.BuildDate,
		GoVersion:        version.GoVersion,
		TimeNow:          time.Now,
		AllowedHosts:     cfg.AllowedHosts,
		AllowedCIDRS:     cfg.AllowedCIDRS,
		TrustProxy:       cfg.TrustProxy,
		RedisClient:      redisClient,
		BlogIndex:        blogIndex,
		Catalog:          cat,
		Metrics:          m,
		Dispatcher:       dispatcher,
		Sessions:         sessionStore,
		SessionCookies:   cookies,
		TerminalMaxInput: cfg.TerminalMaxInput,
		RateLimitBurst:   cfg.RateLimitBurst,
		RateLimitPerMin:  cfg.RateLimitPerMin,
		SiteURL:          cfg.SiteURL,
		SiteTitle:        cfg.SiteTitle,
		SiteDescription:  cfg.SiteDescription,
		ReloadTrigger:    reloadTrigger,
		ReloadPublisher:  publisher,
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg, loggerClient, d),
		redisClient: redisClient,
		blogIndex:   blogIndex,
		reloader:    reloader,
		collector:   collector,
		broadcaster: broadcaster,
	}, nil
}

// newCookieStore signs terminal cookies with the configured key, or with a
// random one that does not survive restarts.
func newCookieStore(cfg *config.Config, log logger.Logger) (*sessions.CookieStore, error) {
	key := []byte(cfg.SessionKey)
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(sessionKeyLength)
		if key == nil {
			return nil, fmt.Errorf("failed to generate session key")
		}
		log.Warn("no session key configured, terminal sessions reset on restart")
	}

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(cfg.SessionIdleTTL.Seconds()),
		SameSite: http.SameSiteLaxMode,
		Secure:   strings.HasPrefix(cfg.SiteURL, "https://"),
	}
	return store, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting portfolio v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load the blog before accepting requests, then refresh in background
	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start blog reloader: %w", err)
	}
	a.logger.Info("blog reloader started",
		logger.Int("pages", a.blogIndex.Count()),
		logger.Duration("interval", a.cfg.ReloadInterval))

	if err := a.collector.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session collector: %w", err)
	}
	a.logger.Info("session collector started",
		logger.Duration("interval", a.cfg.SessionSweepInterval))

	if a.broadcaster != nil {
		if err := a.broadcaster.Start(ctx); err != nil {
			a.logger.Warn("reload broadcast disabled", logger.Error(err))
			a.broadcaster = nil
		}
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.reloader.Stop()
	a.collector.Stop()
	if a.broadcaster != nil {
		a.broadcaster.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		utils.MustClose(a.redisClient, a.logger, "redis")
	}

	a.logger.Info("✅ portfolio stopped cleanly")
	_ = a.logger.Sync()
	return nil
}
