package worker

import (
	"context"
	"log/slog"
	"time"

	"planboard.app/server/common/logger"
	"planboard.app/server/internal/queue"
)

type ReclaimerConfig struct {
	MinIdle   time.Duration
	Interval  time.Duration
	BatchSize int64
}

// Reclaimer periodically claims stale pending messages. This covers a
// worker dying after XREADGROUP but before XACK.
type Reclaimer struct {
	claimer Claimer
	handle  func(ctx context.Context, msg queue.Message)
	cfg     ReclaimerConfig

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// NewReclaimer runs claimed messages through handle, normally Worker.Handle.
func NewReclaimer(claimer Claimer, handle func(ctx context.Context, msg queue.Message), cfg ReclaimerConfig) *Reclaimer {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	return &Reclaimer{
		claimer:   claimer,
		handle:    handle,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Run starts the reclaimer loop. Blocks until Stop() is called or ctx ends.
func (r *Reclaimer) Run(ctx context.Context) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "planboard.worker.reclaimer",
	})

	defer close(r.stoppedCh)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "reclaimer started",
		"interval", r.cfg.Interval,
		"min_idle", r.cfg.MinIdle)

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			slog.InfoContext(ctx, "reclaimer stopping")
			return
		case <-ticker.C:
			r.ReclaimOnce(ctx)
		}
	}
}

func (r *Reclaimer) Stop() {
	close(r.stopCh)
	<-r.stoppedCh
}

// ReclaimOnce performs one reclaim cycle.
func (r *Reclaimer) ReclaimOnce(ctx context.Context) {
	messages, err := r.claimer.Claim(ctx, r.cfg.MinIdle, r.cfg.BatchSize)
	if err != nil {
		slog.ErrorContext(ctx, "reclaim cycle error", "error", err)
		return
	}
	if len(messages) == 0 {
		return
	}

	slog.InfoContext(ctx, "reclaimed stale pending messages", "count", len(messages))
	for _, msg := range messages {
		r.handle(ctx, msg)
	}
}
