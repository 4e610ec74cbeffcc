// AngelaMos | 2026
// worker.go

package commission

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmiplatform/rewards-backend/internal/config"
	"github.com/dmiplatform/rewards-backend/internal/metrics"
)

const (
	redeliverBaseDelay = 30 * time.Second
	redeliverMaxDelay  = 30 * time.Minute
)

// retryDelay doubles per attempt, capped. Attempt counts come from the
// outbox row, so restarts keep the schedule instead of resetting it.
func retryDelay(attempts int) time.Duration {
	delay := redeliverBaseDelay
	for i := 0; i < attempts && delay < redeliverMaxDelay; i++ {
		delay *= 2
	}
	if delay > redeliverMaxDelay {
		delay = redeliverMaxDelay
	}
	return delay
}

// Worker periodically re-runs pending reward events that a synchronous
// fan-out left unfinished. Processing is idempotent per level, so picking
// an event up again is always safe.
type Worker struct {
	engine   *Engine
	repo     Repository
	interval time.Duration
	batch    int
	logger   *slog.Logger
}

func NewWorker(
	engine *Engine,
	repo Repository,
	cfg config.FanoutWorkerConfig,
	logger *slog.Logger,
) *Worker {
	return &Worker{
		engine:   engine,
		repo:     repo,
		interval: cfg.RedeliverInterval,
		batch:    cfg.BatchSize,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled. Intended to be launched from main as
// a goroutine alongside the HTTP server.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("commission redelivery worker started",
		"interval", w.interval,
		"batch_size", w.batch,
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("commission redelivery worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Worker) sweep(ctx context.Context) {
	events, err := w.repo.PendingEvents(ctx, w.batch)
	if err != nil {
		w.logger.Error("load pending reward events failed", "error", err)
		return
	}

	for i := range events {
		if ctx.Err() != nil {
			return
		}

		ev := &events[i]
		metrics.FanoutRedeliveries.Inc()

		if err := w.engine.Process(ctx, ev); err != nil {
			w.logger.Warn("redelivery attempt failed",
				"event_id", ev.ID,
				"attempts", ev.Attempts,
				"error", err,
			)
		}
	}
}
