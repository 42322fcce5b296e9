package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/portfolio/internal/logger"
	"github.com/MrSnakeDoc/portfolio/internal/terminal/session"
)

const (
	// DefaultSweepInterval is used when no interval is configured.
	DefaultSweepInterval = 5 * time.Minute
)

// SessionRecorder observes the number of live sessions.
type SessionRecorder interface {
	SessionsChanged(n int)
}

// SessionCollector periodically drops idle terminal sessions.
type SessionCollector struct {
	store    *session.Store
	recorder SessionRecorder
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewSessionCollector creates a collector; recorder may be nil.
func NewSessionCollector(
	store *session.Store,
	recorder SessionRecorder,
	log logger.Logger,
	interval time.Duration,
) *SessionCollector {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	return &SessionCollector{
		store:    store,
		recorder: recorder,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start sweeps in the background until Stop or ctx is done.
func (sc *SessionCollector) Start(ctx context.Context) error {
	ticker := time.NewTicker(sc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sc.Collect(ctx)
			case <-sc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the collector. It is safe to call more than once.
func (sc *SessionCollector) Stop() {
	sc.stopOnce.Do(func() { close(sc.stopCh) })
}

// Collect removes idle sessions once and returns how many were removed.
func (sc *SessionCollector) Collect(_ context.Context) int {
	removed := sc.store.Sweep()
	live := sc.store.Len()

	if sc.recorder != nil {
		sc.recorder.SessionsChanged(live)
	}

	if removed > 0 {
		sc.logger.Info("idle terminal sessions collected",
			logger.Int("removed", removed),
			logger.Int("live", live))
	} else {
		sc.logger.Debug("no idle terminal sessions to collect")
	}
	return removed
}
