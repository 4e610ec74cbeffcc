// AngelaMos | 2026
// engine.go

package commission

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dmiplatform/rewards-backend/internal/account"
	"github.com/dmiplatform/rewards-backend/internal/core"
	"github.com/dmiplatform/rewards-backend/internal/metrics"
)

// Directory is the read side of the referral graph: each account carries its
// own referred_by pointer, so walking ancestors is repeated lookups.
type Directory interface {
	GetByID(ctx context.Context, id string) (*account.Account, error)
}

// Engine fans a reward event out across up to MaxLevels referral ancestors.
// Each level is its own short transaction: a failure at one level neither
// rolls back earlier levels nor blocks later ones. Unfinished events stay
// pending in the outbox and are re-run by the redelivery worker; the
// (source_event_id, level) unique key makes re-runs no-ops for levels that
// already paid.
type Engine struct {
	directory Directory
	repo      Repository
	rates     *RateTable
	logger    *slog.Logger
}

func NewEngine(
	directory Directory,
	repo Repository,
	rates *RateTable,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		directory: directory,
		repo:      repo,
		rates:     rates,
		logger:    logger,
	}
}

// Process walks the ancestor chain and pays each level. The walk is a plain
// loop with an explicit depth counter; referral trees of any depth cost at
// most MaxLevels lookups. Returns an error only when the event could not be
// fully settled and remains queued for redelivery.
func (e *Engine) Process(ctx context.Context, ev *RewardEvent) error {
	origin, err := e.directory.GetByID(ctx, ev.OriginUserID)
	if err != nil {
		return e.requeue(ctx, ev, fmt.Errorf("resolve origin: %w", err))
	}

	next := origin.ReferredBy
	var firstErr error

	for level := 1; level <= MaxLevels; level++ {
		if next == nil || *next == "" {
			break
		}

		ancestor, err := e.directory.GetByID(ctx, *next)
		if err != nil {
			// Without the ancestor row the rest of the chain is unreachable;
			// leave the event pending and let redelivery resume the walk.
			firstErr = fmt.Errorf("resolve ancestor at level %d: %w", level, err)
			break
		}

		rec := e.buildRecord(ev, level, ancestor)

		credited, err := e.repo.RecordPayout(ctx, rec)
		switch {
		case err != nil:
			metrics.CommissionLevelFailures.
				WithLabelValues(strconv.Itoa(level)).Inc()
			e.logger.Warn("commission level failed",
				"event_id", ev.ID,
				"level", level,
				"recipient", ancestor.ID,
				"error", err,
			)
			if firstErr == nil {
				firstErr = fmt.Errorf("level %d: %w", level, err)
			}
		case credited:
			metrics.CommissionsPaidTotal.
				WithLabelValues(strconv.Itoa(level), string(ev.EventType)).Inc()
			core.AddSpanEvent(ctx, "commission.paid",
				attribute.Int("level", level),
				attribute.String("event_type", string(ev.EventType)),
				attribute.Float64("amount", rec.Amount),
			)
		}

		next = ancestor.ReferredBy
	}

	if firstErr != nil {
		return e.requeue(ctx, ev, firstErr)
	}

	if err := e.repo.MarkEventCompleted(ctx, ev.ID); err != nil {
		// The payouts committed; completion marking is safe to redo later.
		e.logger.Warn("mark event completed failed",
			"event_id", ev.ID,
			"error", err,
		)
	}

	return nil
}

// Dispatch runs Process but swallows the error: commission fan-out failures
// never surface to the user whose claim or purchase triggered the event. The
// primary credit already committed; the outbox guarantees eventual fan-out.
func (e *Engine) Dispatch(ctx context.Context, ev *RewardEvent) {
	if err := e.Process(ctx, ev); err != nil {
		e.logger.Warn("commission fan-out deferred to redelivery",
			"event_id", ev.ID,
			"event_type", ev.EventType,
			"error", err,
		)
	}
}

func (e *Engine) buildRecord(
	ev *RewardEvent,
	level int,
	ancestor *account.Account,
) *Record {
	rec := &Record{
		ID:            uuid.New().String(),
		SourceEventID: ev.ID,
		Level:         level,
		EventType:     ev.EventType,
		FromUserID:    ev.OriginUserID,
		ToUserID:      ancestor.ID,
	}

	if ev.EventType == EventSignup {
		rec.Currency = CurrencyDMI
		rec.Amount = float64(e.rates.SignupBonus(level, ancestor.IsPremium))
		return rec
	}

	rate := e.rates.Rate(level, ancestor.IsPremium, ev.EventType)
	rec.Currency = CurrencyUSDT
	rec.RateApplied = rate
	rec.Amount = ev.Amount * rate
	return rec
}

func (e *Engine) requeue(
	ctx context.Context,
	ev *RewardEvent,
	cause error,
) error {
	nextAttempt := time.Now().Add(retryDelay(ev.Attempts))

	if err := e.repo.MarkEventRetry(ctx, ev.ID, nextAttempt); err != nil {
		e.logger.Error("requeue reward event failed",
			"event_id", ev.ID,
			"error", err,
		)
	}

	return cause
}
