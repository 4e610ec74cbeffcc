// AngelaMos | 2026
// repository.go

package plan

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dmiplatform/rewards-backend/internal/account"
	"github.com/dmiplatform/rewards-backend/internal/commission"
	"github.com/dmiplatform/rewards-backend/internal/core"
)

type Repository interface {
	// Purchase commits the plan row, the day-zero earning credit, the
	// premium flag flip when the price crosses the threshold, and the
	// purchase reward-event outbox row as one transaction.
	Purchase(
		ctx context.Context,
		p *ActivePlan,
		markPremium bool,
		ev *commission.RewardEvent,
	) error

	ListActiveByUser(
		ctx context.Context,
		userID string,
		now time.Time,
	) ([]ActivePlan, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Purchase(
	ctx context.Context,
	p *ActivePlan,
	markPremium bool,
	ev *commission.RewardEvent,
) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO active_plans (
				id, user_id, plan_id, plan_name, price,
				daily_earning, boost_multiplier, purchased_at, expires_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

		if _, err := tx.ExecContext(ctx, query,
			p.ID,
			p.UserID,
			p.PlanID,
			p.PlanName,
			p.Price,
			p.DailyEarning,
			p.BoostMultiplier,
			p.PurchasedAt,
			p.ExpiresAt,
		); err != nil {
			return fmt.Errorf("insert active plan: %w", err)
		}

		accounts := account.NewRepository(tx)

		if err := accounts.CreditUSDT(ctx, p.UserID, p.DailyEarning); err != nil {
			return fmt.Errorf("day-zero credit: %w", err)
		}

		if markPremium {
			if err := accounts.MarkPremium(ctx, p.UserID); err != nil {
				return fmt.Errorf("mark premium: %w", err)
			}
		}

		return commission.InsertEventTx(ctx, tx, ev)
	})
}

func (r *repository) ListActiveByUser(
	ctx context.Context,
	userID string,
	now time.Time,
) ([]ActivePlan, error) {
	query := `
		SELECT id, user_id, plan_id, plan_name, price, daily_earning,
		       boost_multiplier, purchased_at, expires_at, last_claim_at
		FROM active_plans
		WHERE user_id = $1 AND expires_at > $2
		ORDER BY purchased_at DESC`

	var plans []ActivePlan
	if err := r.db.SelectContext(ctx, &plans, query, userID, now); err != nil {
		return nil, fmt.Errorf("list active plans: %w", err)
	}

	return plans, nil
}
