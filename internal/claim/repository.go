// AngelaMos | 2026
// repository.go

package claim

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dmiplatform/rewards-backend/internal/account"
	"github.com/dmiplatform/rewards-backend/internal/commission"
	"github.com/dmiplatform/rewards-backend/internal/core"
	"github.com/dmiplatform/rewards-backend/internal/plan"
)

// errReplayed signals that the idempotency key already settled a claim; the
// transaction rolled back and the original record answers the request.
var errReplayed = errors.New("claim already settled for idempotency key")

type Repository interface {
	// Execute settles one claim atomically: row lock, in-window re-check,
	// balance credit, cooldown reset and the outbox event, all or nothing.
	// A second caller hitting the same plan row mid-claim loses immediately
	// instead of queueing on the lock.
	Execute(
		ctx context.Context,
		userID, activePlanID string,
		idempotencyKey *string,
	) (*Result, *commission.RewardEvent, error)

	GetPlan(
		ctx context.Context,
		userID, activePlanID string,
	) (*plan.ActivePlan, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Execute(
	ctx context.Context,
	userID, activePlanID string,
	idempotencyKey *string,
) (*Result, *commission.RewardEvent, error) {
	now := time.Now().UTC()

	var (
		rec Record
		ev  *commission.RewardEvent
	)

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			SELECT id, user_id, plan_id, plan_name, price, daily_earning,
			       boost_multiplier, purchased_at, expires_at, last_claim_at
			FROM active_plans
			WHERE id = $1 AND user_id = $2
			FOR UPDATE NOWAIT`

		var p plan.ActivePlan
		if err := tx.GetContext(ctx, &p, query, activePlanID, userID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return PlanNotFoundError()
			}
			if core.IsLockNotAvailable(err) {
				return ConcurrentClaimError()
			}
			return fmt.Errorf("lock plan row: %w", err)
		}

		// A retried request must get its original result back, not a
		// cooldown rejection caused by its own earlier success, so the key
		// lookup runs before eligibility.
		if idempotencyKey != nil {
			var existing int
			check := `
				SELECT COUNT(*) FROM claim_records
				WHERE user_id = $1 AND idempotency_key = $2`
			if err := tx.GetContext(
				ctx, &existing, check, userID, *idempotencyKey,
			); err != nil {
				return fmt.Errorf("check idempotency key: %w", err)
			}
			if existing > 0 {
				return errReplayed
			}
		}

		// The pre-flight status check ran outside the lock; only this
		// in-transaction check decides.
		if err := Eligible(&p, now); err != nil {
			return err
		}

		rec = Record{
			ID:             uuid.New().String(),
			UserID:         userID,
			ActivePlanID:   activePlanID,
			Amount:         p.DailyEarning,
			IdempotencyKey: idempotencyKey,
			ClaimedAt:      now,
		}

		insert := `
			INSERT INTO claim_records (
				id, user_id, active_plan_id, amount, idempotency_key, claimed_at
			)
			VALUES ($1, $2, $3, $4, $5, $6)`

		if _, err := tx.ExecContext(ctx, insert,
			rec.ID,
			rec.UserID,
			rec.ActivePlanID,
			rec.Amount,
			rec.IdempotencyKey,
			rec.ClaimedAt,
		); err != nil {
			if core.IsDuplicateKey(err) {
				return errReplayed
			}
			return fmt.Errorf("insert claim record: %w", err)
		}

		accounts := account.NewRepository(tx)
		if err := accounts.CreditUSDT(ctx, userID, p.DailyEarning); err != nil {
			return fmt.Errorf("credit claim earning: %w", err)
		}

		reset := `UPDATE active_plans SET last_claim_at = $1 WHERE id = $2`
		if _, err := tx.ExecContext(ctx, reset, now, activePlanID); err != nil {
			return fmt.Errorf("reset claim cooldown: %w", err)
		}

		ev = &commission.RewardEvent{
			ID:           uuid.New().String(),
			EventType:    commission.EventDailyClaim,
			OriginUserID: userID,
			Amount:       p.DailyEarning,
		}

		return commission.InsertEventTx(ctx, tx, ev)
	})

	if errors.Is(err, errReplayed) {
		return r.replay(ctx, userID, idempotencyKey)
	}
	if err != nil {
		return nil, nil, err
	}

	return &Result{
		Record:      rec,
		NextClaimAt: now.Add(Cooldown),
	}, ev, nil
}

// replay answers a retried request with the claim the same key settled
// earlier. The fan-out already ran for that claim, so no event is returned.
func (r *repository) replay(
	ctx context.Context,
	userID string,
	idempotencyKey *string,
) (*Result, *commission.RewardEvent, error) {
	if idempotencyKey == nil {
		return nil, nil, fmt.Errorf("duplicate claim record without idempotency key")
	}

	query := `
		SELECT id, user_id, active_plan_id, amount, idempotency_key, claimed_at
		FROM claim_records
		WHERE user_id = $1 AND idempotency_key = $2`

	var rec Record
	if err := r.db.GetContext(ctx, &rec, query, userID, *idempotencyKey); err != nil {
		return nil, nil, fmt.Errorf("load replayed claim: %w", err)
	}

	return &Result{
		Record:      rec,
		NextClaimAt: rec.ClaimedAt.Add(Cooldown),
		Replayed:    true,
	}, nil, nil
}

func (r *repository) GetPlan(
	ctx context.Context,
	userID, activePlanID string,
) (*plan.ActivePlan, error) {
	query := `
		SELECT id, user_id, plan_id, plan_name, price, daily_earning,
		       boost_multiplier, purchased_at, expires_at, last_claim_at
		FROM active_plans
		WHERE id = $1 AND user_id = $2`

	var p plan.ActivePlan
	if err := r.db.GetContext(ctx, &p, query, activePlanID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, PlanNotFoundError()
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}

	return &p, nil
}
