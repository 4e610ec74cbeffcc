// AngelaMos | 2026
// service.go

package plan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmiplatform/rewards-backend/internal/catalog"
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
	repo    Repository
	catalog *catalog.Catalog
	engine  Dispatcher
	cfg     config.RewardsConfig
	logger  *slog.Logger
}

func NewService(
	repo Repository,
	cat *catalog.Catalog,
	engine Dispatcher,
	cfg config.RewardsConfig,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:    repo,
		catalog: cat,
		engine:  engine,
		cfg:     cfg,
		logger:  logger,
	}
}

// Purchase snapshots the catalog entry into a new active plan, credits the
// first day's earning immediately and opens the purchase reward event.
// Commission fan-out runs after the transaction commits; its outcome never
// affects the purchase result.
func (s *Service) Purchase(
	ctx context.Context,
	userID, planID string,
) (*ActivePlan, error) {
	entry, err := s.catalog.Get(planID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("plan")
		}
		return nil, err
	}

	if err := validatePlanSpec(entry); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &ActivePlan{
		ID:              uuid.New().String(),
		UserID:          userID,
		PlanID:          entry.ID,
		PlanName:        entry.Name,
		Price:           entry.Price,
		DailyEarning:    entry.DailyEarning,
		BoostMultiplier: entry.BoostMultiplier,
		PurchasedAt:     now,
		ExpiresAt:       now.AddDate(0, 0, entry.DurationDays),
	}

	ev := &commission.RewardEvent{
		ID:           uuid.New().String(),
		EventType:    commission.EventPlanPurchase,
		OriginUserID: userID,
		Amount:       entry.Price,
	}

	markPremium := entry.Price >= s.cfg.PremiumThreshold

	err = core.WithStoreRetry(ctx, s.cfg.StoreRetryAttempts, func() error {
		return s.repo.Purchase(ctx, p, markPremium, ev)
	})
	if err != nil {
		return nil, fmt.Errorf("purchase plan %s: %w", planID, err)
	}

	metrics.PlanPurchasesTotal.Inc()

	s.logger.Info("plan purchased",
		"user_id", userID,
		"plan_id", planID,
		"price", entry.Price,
		"premium", markPremium,
	)

	s.engine.Dispatch(ctx, ev)

	return p, nil
}

func (s *Service) ListCatalog() []catalog.Plan {
	return s.catalog.List()
}

func (s *Service) ListActive(
	ctx context.Context,
	userID string,
) ([]ActivePlan, error) {
	return s.repo.ListActiveByUser(ctx, userID, time.Now().UTC())
}

// validatePlanSpec rejects malformed catalog entries at purchase time as a
// second line of defense behind config validation: a plan that cannot earn
// or cannot expire must never become an active row.
func validatePlanSpec(entry catalog.Plan) error {
	if entry.Price <= 0 || entry.DailyEarning <= 0 ||
		entry.DurationDays <= 0 || entry.BoostMultiplier < 1 {
		return core.NewAppError(
			http.StatusUnprocessableEntity,
			"INVALID_PLAN_SPEC",
			"plan specification is invalid",
		)
	}
	return nil
}
