package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/MrSnakeDoc/portfolio/internal/index"
	"github.com/MrSnakeDoc/portfolio/internal/logger"
)

const (
	// DefaultStartupAttempts bounds the initial reload retries.
	DefaultStartupAttempts = 5

	startupRetryInterval = 500 * time.Millisecond
	startupRetryMaxWait  = 5 * time.Second
)

// ReloadRecorder observes finished reloads.
type ReloadRecorder interface {
	ReloadFinished(took time.Duration, pages, tags int, err error)
}

// BlogReloader owns every write to the blog index: the startup load, the
// optional periodic rescan and manual triggers. Running all reloads on one
// goroutine keeps the index single-writer.
type BlogReloader struct {
	index           *index.BlogIndex
	recorder        ReloadRecorder
	logger          logger.Logger
	interval        time.Duration
	startupAttempts uint
	stopCh          chan struct{}
	stopOnce        sync.Once
	manualTrigger   <-chan struct{}
}

// NewBlogReloader creates a reloader. interval <= 0 disables periodic
// rescans; recorder may be nil.
func NewBlogReloader(
	idx *index.BlogIndex,
	recorder ReloadRecorder,
	log logger.Logger,
	interval time.Duration,
	startupAttempts uint,
	manualTrigger <-chan struct{},
) *BlogReloader {
	if startupAttempts == 0 {
		startupAttempts = DefaultStartupAttempts
	}

	return &BlogReloader{
		index:           idx,
		recorder:        recorder,
		logger:          log,
		interval:        interval,
		startupAttempts: startupAttempts,
		stopCh:          make(chan struct{}),
		manualTrigger:   manualTrigger,
	}
}

// Start loads the index, retrying with backoff, and then serves triggers in
// the background. It returns once the first load succeeded.
func (br *BlogReloader) Start(ctx context.Context) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, br.Reload(ctx)
	},
		backoff.WithBackOff(&backoff.ExponentialBackOff{
			InitialInterval:     startupRetryInterval,
			RandomizationFactor: backoff.DefaultRandomizationFactor,
			Multiplier:          backoff.DefaultMultiplier,
			MaxInterval:         startupRetryMaxWait,
		}),
		backoff.WithMaxTries(br.startupAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			br.logger.Warn("initial blog reload failed, retrying",
				logger.Duration("next_retry_in", next),
				logger.Error(err))
		}),
	)
	if err != nil {
		return fmt.Errorf("initial reload failed: %w", err)
	}

	go br.loop(ctx)
	return nil
}

func (br *BlogReloader) loop(ctx context.Context) {
	var tick <-chan time.Time
	if br.interval > 0 {
		ticker := time.NewTicker(br.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-tick:
			br.reloadAndLog(ctx, "periodic")
		case <-br.manualTrigger:
			br.logger.Info("manual reload triggered")
			br.reloadAndLog(ctx, "manual")
		case <-br.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (br *BlogReloader) reloadAndLog(ctx context.Context, reason string) {
	if err := br.Reload(ctx); err != nil {
		br.logger.Error("failed to reload blog pages",
			logger.String("reason", reason),
			logger.Error(err))
	}
}

// Stop ends the background loop. It is safe to call more than once.
func (br *BlogReloader) Stop() {
	br.stopOnce.Do(func() { close(br.stopCh) })
}

// Reload rescans the content root once.
func (br *BlogReloader) Reload(ctx context.Context) error {
	started := time.Now()
	err := br.index.Reload(ctx)
	took := time.Since(started)

	if br.recorder != nil {
		br.recorder.ReloadFinished(took, br.index.Count(), br.index.TagCount(), err)
	}
	if err != nil {
		return err
	}

	br.logger.Info("blog pages reloaded",
		logger.Int("pages", br.index.Count()),
		logger.Int("tags", br.index.TagCount()),
		logger.Duration("took", took))
	return nil
}
