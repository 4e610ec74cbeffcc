// AngelaMos | 2026
// service.go

package referral

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmiplatform/rewards-backend/internal/account"
	"github.com/dmiplatform/rewards-backend/internal/commission"
	"github.com/dmiplatform/rewards-backend/internal/config"
	"github.com/dmiplatform/rewards-backend/internal/core"
)

// Dispatcher hands a committed reward event to the commission engine.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev *commission.RewardEvent)
}

type Service struct {
	repo     Repository
	accounts *account.Service
	engine   Dispatcher
	cfg      config.RewardsConfig
	logger   *slog.Logger
}

func NewService(
	repo Repository,
	accounts *account.Service,
	engine Dispatcher,
	cfg config.RewardsConfig,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		accounts: accounts,
		engine:   engine,
		cfg:      cfg,
		logger:   logger,
	}
}

// Apply binds the caller under the code's owner and pays the signup
// bonuses up the new chain. The bind is permanent.
func (s *Service) Apply(
	ctx context.Context,
	userID, code string,
) (*account.Account, error) {
	var (
		parent *account.Account
		ev     *commission.RewardEvent
	)

	err := core.WithStoreRetry(ctx, s.cfg.StoreRetryAttempts, func() error {
		var opErr error
		parent, ev, opErr = s.repo.Apply(ctx, userID, code)
		return opErr
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("referral code applied",
		"user_id", userID,
		"parent_id", parent.ID,
	)

	s.engine.Dispatch(ctx, ev)

	return parent, nil
}

func (s *Service) Summary(ctx context.Context, userID string) (*Summary, error) {
	acct, err := s.accounts.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}

	levels, err := s.repo.LevelStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		ReferralCode: acct.ReferralCode,
		Levels:       levels,
	}
	for _, lvl := range levels {
		summary.TotalTeamSize += lvl.TeamSize
		summary.TotalEarnedUSDT += lvl.EarnedUSDT
	}

	return summary, nil
}
