// AngelaMos | 2026
// service.go

package claim

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmiplatform/rewards-backend/internal/commission"
	"github.com/dmiplatform/rewards-backend/internal/config"
	"github.com/dmiplatform/rewards-backend/internal/core"
	"github.com/dmiplatform/rewards-backend/internal/metrics"
)

// Dispatcher hands a committed reward event to the commission engine.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev *commission.RewardEvent)
}

type Service struct {
	repo   Repository
	engine Dispatcher
	cfg    config.RewardsConfig
	logger *slog.Logger
}

func NewService(
	repo Repository,
	engine Dispatcher,
	cfg config.RewardsConfig,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:   repo,
		engine: engine,
		cfg:    cfg,
		logger: logger,
	}
}

// Claim settles the plan's daily earning. Transient store failures retry;
// window and lock rejections surface to the caller as-is.
func (s *Service) Claim(
	ctx context.Context,
	userID, activePlanID string,
	idempotencyKey *string,
) (*Result, error) {
	start := time.Now()

	var (
		result *Result
		ev     *commission.RewardEvent
	)

	err := core.WithStoreRetry(ctx, s.cfg.StoreRetryAttempts, func() error {
		var opErr error
		result, ev, opErr = s.repo.Execute(ctx, userID, activePlanID, idempotencyKey)
		return opErr
	})

	metrics.ClaimDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ClaimsTotal.WithLabelValues(claimResultLabel(err)).Inc()
		return nil, err
	}

	metrics.ClaimsTotal.WithLabelValues(metrics.ResultSuccess).Inc()

	if result.Replayed {
		s.logger.Info("claim replayed from idempotency key",
			"user_id", userID,
			"plan", activePlanID,
		)
		return result, nil
	}

	s.logger.Info("claim settled",
		"user_id", userID,
		"plan", activePlanID,
		"amount", result.Record.Amount,
	)

	s.engine.Dispatch(ctx, ev)

	return result, nil
}

// Status reports eligibility without locking anything. The answer can go
// stale the moment it is produced; Claim re-checks under the row lock.
func (s *Service) Status(
	ctx context.Context,
	userID, activePlanID string,
) (*StatusResponse, error) {
	p, err := s.repo.GetPlan(ctx, userID, activePlanID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	next := NextClaimTime(p)

	return &StatusResponse{
		PlanID:        p.ID,
		CanClaim:      Eligible(p, now) == nil,
		NextClaimTime: next,
		ExpiresAt:     p.ExpiresAt,
		DailyEarning:  p.DailyEarning,
		Expired:       p.Expired(now),
	}, nil
}

func claimResultLabel(err error) string {
	appErr, ok := core.AsAppError(err)
	if !ok {
		return metrics.ResultError
	}

	switch appErr.Code {
	case "CLAIM_TOO_EARLY":
		return metrics.ResultTooEarly
	case "PLAN_EXPIRED":
		return metrics.ResultExpired
	case "CONCURRENT_CLAIM_CONFLICT":
		return metrics.ResultConflict
	default:
		return metrics.ResultError
	}
}
