// AngelaMos | 2026
// repository.go

package referral

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dmiplatform/rewards-backend/internal/account"
	"github.com/dmiplatform/rewards-backend/internal/commission"
	"github.com/dmiplatform/rewards-backend/internal/core"
)

type Repository interface {
	// Apply binds childID under the owner of code and opens the signup
	// reward event, all in one transaction. The bind is write-once; a
	// second apply for the same child fails no matter which code it names.
	Apply(
		ctx context.Context,
		childID, code string,
	) (*account.Account, *commission.RewardEvent, error)

	LevelStats(ctx context.Context, userID string) ([]LevelStat, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func InvalidCodeError() *core.AppError {
	return core.NewAppError(
		http.StatusNotFound,
		"INVALID_CODE",
		"referral code does not exist",
	)
}

func SelfReferralError() *core.AppError {
	return core.NewAppError(
		http.StatusConflict,
		"SELF_REFERRAL",
		"cannot apply your own referral code",
	)
}

func AlreadyAppliedError() *core.AppError {
	return core.NewAppError(
		http.StatusConflict,
		"ALREADY_APPLIED",
		"a referral code was already applied to this account",
	)
}

func CircularReferralError() *core.AppError {
	return core.NewAppError(
		http.StatusConflict,
		"CIRCULAR_REFERRAL",
		"applying this code would create a referral cycle",
	)
}

func (r *repository) Apply(
	ctx context.Context,
	childID, code string,
) (*account.Account, *commission.RewardEvent, error) {
	var (
		parent *account.Account
		ev     *commission.RewardEvent
	)

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		accounts := account.NewRepository(tx)

		var err error
		parent, err = accounts.GetByReferralCode(ctx, code)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return InvalidCodeError()
			}
			return fmt.Errorf("resolve referral code: %w", err)
		}

		if parent.ID == childID {
			return SelfReferralError()
		}

		if err := r.checkCycle(ctx, accounts, childID, parent); err != nil {
			return err
		}

		edge := `
			INSERT INTO referral_edges (child_id, parent_id, code, created_at)
			VALUES ($1, $2, $3, $4)`

		if _, err := tx.ExecContext(ctx, edge,
			childID, parent.ID, code, time.Now().UTC(),
		); err != nil {
			if core.IsDuplicateKey(err) {
				return AlreadyAppliedError()
			}
			return fmt.Errorf("insert referral edge: %w", err)
		}

		if err := accounts.SetReferrer(ctx, childID, parent.ID, code); err != nil {
			if errors.Is(err, core.ErrConflict) {
				return AlreadyAppliedError()
			}
			return fmt.Errorf("set referrer: %w", err)
		}

		ev = &commission.RewardEvent{
			ID:           uuid.New().String(),
			EventType:    commission.EventSignup,
			OriginUserID: childID,
		}

		return commission.InsertEventTx(ctx, tx, ev)
	})
	if err != nil {
		return nil, nil, err
	}

	return parent, ev, nil
}

// checkCycle walks up from the prospective parent. Payouts are bounded at
// MaxLevels regardless, but a cycle in the graph would still corrupt team
// summaries, so the walk goes as deep as the chain does.
func (r *repository) checkCycle(
	ctx context.Context,
	accounts account.Repository,
	childID string,
	parent *account.Account,
) error {
	seen := map[string]bool{parent.ID: true}
	next := parent.ReferredBy

	for next != nil && *next != "" {
		if *next == childID {
			return CircularReferralError()
		}
		if seen[*next] {
			return nil
		}
		seen[*next] = true

		ancestor, err := accounts.GetByID(ctx, *next)
		if err != nil {
			return fmt.Errorf("walk referral chain: %w", err)
		}
		next = ancestor.ReferredBy
	}

	return nil
}

// LevelStats counts the referral team per depth and joins in the
// commissions each depth has generated. The recursive walk stops at
// MaxLevels; deeper descendants are invisible here just as they are
// invisible to payouts.
func (r *repository) LevelStats(
	ctx context.Context,
	userID string,
) ([]LevelStat, error) {
	query := `
		WITH RECURSIVE team AS (
			SELECT id, 1 AS level
			FROM accounts
			WHERE referred_by = $1 AND deleted_at IS NULL
			UNION ALL
			SELECT a.id, t.level + 1
			FROM accounts a
			JOIN team t ON a.referred_by = t.id
			WHERE t.level < $2 AND a.deleted_at IS NULL
		),
		counts AS (
			SELECT level, COUNT(*) AS team_size
			FROM team
			GROUP BY level
		),
		earned AS (
			SELECT level, COALESCE(SUM(amount), 0) AS earned_usdt
			FROM commission_records
			WHERE to_user_id = $1 AND currency = 'usdt'
			GROUP BY level
		)
		SELECT gs.level,
		       COALESCE(c.team_size, 0) AS team_size,
		       COALESCE(e.earned_usdt, 0) AS earned_usdt
		FROM generate_series(1, $2) AS gs(level)
		LEFT JOIN counts c ON c.level = gs.level
		LEFT JOIN earned e ON e.level = gs.level
		ORDER BY gs.level`

	var stats []LevelStat
	if err := r.db.SelectContext(
		ctx, &stats, query, userID, commission.MaxLevels,
	); err != nil {
		return nil, fmt.Errorf("referral level stats: %w", err)
	}

	return stats, nil
}
