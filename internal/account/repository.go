// AngelaMos | 2026
// repository.go

package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmiplatform/rewards-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByReferralCode(ctx context.Context, code string) (*Account, error)
	CreditUSDT(ctx context.Context, id string, amount float64) error
	CreditDMI(ctx context.Context, id string, amount int64) error
	MarkPremium(ctx context.Context, id string) error
	SetReferrer(ctx context.Context, childID, parentID, code string) error
}

type repository struct {
	db core.DBTX
}

// NewRepository binds the repository to db, which may be a pool or an open
// transaction. Mutations that must share a transaction with other writes are
// invoked on a repository constructed over that transaction.
func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, account *Account) error {
	query := `
		INSERT INTO accounts (id, referral_code)
		VALUES ($1, $2)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, account, query,
		account.ID,
		account.ReferralCode,
	)
	if err != nil {
		if core.IsDuplicateKey(err) {
			return fmt.Errorf("create account: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create account: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Account, error) {
	query := `
		SELECT id, referral_code, referred_by, applied_referral_code,
		       is_premium, usdt_balance, dmi_balance,
		       created_at, updated_at, deleted_at
		FROM accounts
		WHERE id = $1 AND deleted_at IS NULL`

	var account Account
	err := r.db.GetContext(ctx, &account, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get account: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	return &account, nil
}

func (r *repository) GetByReferralCode(
	ctx context.Context,
	code string,
) (*Account, error) {
	query := `
		SELECT id, referral_code, referred_by, applied_referral_code,
		       is_premium, usdt_balance, dmi_balance,
		       created_at, updated_at, deleted_at
		FROM accounts
		WHERE referral_code = $1 AND deleted_at IS NULL`

	var account Account
	err := r.db.GetContext(ctx, &account, query, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get account by code: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account by code: %w", err)
	}

	return &account, nil
}

func (r *repository) CreditUSDT(
	ctx context.Context,
	id string,
	amount float64,
) error {
	query := `
		UPDATE accounts
		SET usdt_balance = usdt_balance + $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execCredit(ctx, "credit usdt", query, id, amount)
}

func (r *repository) CreditDMI(
	ctx context.Context,
	id string,
	amount int64,
) error {
	query := `
		UPDATE accounts
		SET dmi_balance = dmi_balance + $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execCredit(ctx, "credit dmi", query, id, amount)
}

// MarkPremium flips the sticky premium flag. Idempotent; the flag never
// transitions back.
func (r *repository) MarkPremium(ctx context.Context, id string) error {
	query := `
		UPDATE accounts
		SET is_premium = TRUE, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("mark premium: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark premium: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("mark premium: %w", core.ErrNotFound)
	}

	return nil
}

// SetReferrer records the write-once referral pointer. The guard is in the
// WHERE clause: an account with referred_by already set matches zero rows,
// which surfaces as ErrConflict.
func (r *repository) SetReferrer(
	ctx context.Context,
	childID, parentID, code string,
) error {
	query := `
		UPDATE accounts
		SET referred_by = $2, applied_referral_code = $3, updated_at = NOW()
		WHERE id = $1 AND referred_by IS NULL AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, childID, parentID, code)
	if err != nil {
		return fmt.Errorf("set referrer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set referrer: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("set referrer: %w", core.ErrConflict)
	}

	return nil
}

func (r *repository) execCredit(
	ctx context.Context,
	op, query string,
	args ...any,
) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}
