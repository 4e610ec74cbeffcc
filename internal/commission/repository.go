// AngelaMos | 2026
// repository.go

package commission

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dmiplatform/rewards-backend/internal/core"
)

type Repository interface {
	// RecordPayout atomically appends the commission record and credits the
	// recipient. Returns false when a record for (source_event_id, level)
	// already exists; the balance is untouched in that case.
	RecordPayout(ctx context.Context, rec *Record) (bool, error)

	MarkEventCompleted(ctx context.Context, eventID string) error
	MarkEventRetry(
		ctx context.Context,
		eventID string,
		nextAttempt time.Time,
	) error
	PendingEvents(ctx context.Context, limit int) ([]RewardEvent, error)
	PendingCount(ctx context.Context) (int, error)

	ListByRecipient(
		ctx context.Context,
		userID string,
		page, pageSize int,
	) ([]Record, int, error)
	TotalEarnedUSDT(ctx context.Context, userID string) (float64, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// InsertEventTx writes the reward-event outbox row inside the caller's
// transaction so the event exists iff the primary credit committed.
func InsertEventTx(ctx context.Context, tx core.DBTX, ev *RewardEvent) error {
	query := `
		INSERT INTO reward_events (id, event_type, origin_user_id, amount, status)
		VALUES ($1, $2, $3, $4, 'pending')`

	if _, err := tx.ExecContext(ctx, query,
		ev.ID,
		ev.EventType,
		ev.OriginUserID,
		ev.Amount,
	); err != nil {
		if core.IsDuplicateKey(err) {
			return fmt.Errorf("insert reward event: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("insert reward event: %w", err)
	}

	return nil
}

func (r *repository) RecordPayout(
	ctx context.Context,
	rec *Record,
) (bool, error) {
	var credited bool

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		insert := `
			INSERT INTO commission_records
				(id, source_event_id, level, event_type,
				 from_user_id, to_user_id, amount, rate_applied, currency)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (source_event_id, level) DO NOTHING`

		result, err := tx.ExecContext(ctx, insert,
			rec.ID,
			rec.SourceEventID,
			rec.Level,
			rec.EventType,
			rec.FromUserID,
			rec.ToUserID,
			rec.Amount,
			rec.RateApplied,
			rec.Currency,
		)
		if err != nil {
			return fmt.Errorf("insert commission record: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("insert commission record: %w", err)
		}

		if rows == 0 {
			// Retry of an already-paid level: idempotent no-op.
			return nil
		}

		credited = true

		if rec.Amount == 0 {
			return nil
		}

		var creditQuery string
		switch rec.Currency {
		case CurrencyDMI:
			creditQuery = `
				UPDATE accounts
				SET dmi_balance = dmi_balance + $2, updated_at = NOW()
				WHERE id = $1 AND deleted_at IS NULL`
		default:
			creditQuery = `
				UPDATE accounts
				SET usdt_balance = usdt_balance + $2, updated_at = NOW()
				WHERE id = $1 AND deleted_at IS NULL`
		}

		creditResult, err := tx.ExecContext(ctx, creditQuery,
			rec.ToUserID,
			rec.Amount,
		)
		if err != nil {
			return fmt.Errorf("credit commission: %w", err)
		}

		creditRows, err := creditResult.RowsAffected()
		if err != nil {
			return fmt.Errorf("credit commission: %w", err)
		}

		if creditRows == 0 {
			return fmt.Errorf("credit commission: %w", core.ErrNotFound)
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	return credited, nil
}

func (r *repository) MarkEventCompleted(
	ctx context.Context,
	eventID string,
) error {
	query := `
		UPDATE reward_events
		SET status = 'completed', completed_at = NOW()
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, eventID); err != nil {
		return fmt.Errorf("mark event completed: %w", err)
	}

	return nil
}

func (r *repository) MarkEventRetry(
	ctx context.Context,
	eventID string,
	nextAttempt time.Time,
) error {
	query := `
		UPDATE reward_events
		SET attempts = attempts + 1, next_attempt_at = $2
		WHERE id = $1 AND status = 'pending'`

	if _, err := r.db.ExecContext(ctx, query, eventID, nextAttempt); err != nil {
		return fmt.Errorf("mark event retry: %w", err)
	}

	return nil
}

func (r *repository) PendingEvents(
	ctx context.Context,
	limit int,
) ([]RewardEvent, error) {
	query := `
		SELECT id, event_type, origin_user_id, amount, status,
		       attempts, next_attempt_at, created_at, completed_at
		FROM reward_events
		WHERE status = 'pending' AND next_attempt_at <= NOW()
		ORDER BY created_at
		LIMIT $1`

	var events []RewardEvent
	if err := r.db.SelectContext(ctx, &events, query, limit); err != nil {
		return nil, fmt.Errorf("list pending events: %w", err)
	}

	return events, nil
}

func (r *repository) PendingCount(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM reward_events WHERE status = 'pending'`

	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count pending events: %w", err)
	}

	return count, nil
}

func (r *repository) ListByRecipient(
	ctx context.Context,
	userID string,
	page, pageSize int,
) ([]Record, int, error) {
	countQuery := `
		SELECT COUNT(*) FROM commission_records WHERE to_user_id = $1`

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, fmt.Errorf("count commissions: %w", err)
	}

	query := `
		SELECT id, source_event_id, level, event_type,
		       from_user_id, to_user_id, amount, rate_applied, currency,
		       created_at
		FROM commission_records
		WHERE to_user_id = $1
		ORDER BY created_at DESC, level
		LIMIT $2 OFFSET $3`

	var records []Record
	err := r.db.SelectContext(ctx, &records, query,
		userID,
		pageSize,
		(page-1)*pageSize,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list commissions: %w", err)
	}

	return records, total, nil
}

func (r *repository) TotalEarnedUSDT(
	ctx context.Context,
	userID string,
) (float64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM commission_records
		WHERE to_user_id = $1 AND currency = 'usdt'`

	var total float64
	if err := r.db.GetContext(ctx, &total, query, userID); err != nil {
		return 0, fmt.Errorf("total commissions: %w", err)
	}

	return total, nil
}
