// AngelaMos | 2026
// entity.go

package account

import (
	"time"
)

// Account is a user's financial state on the rewards platform. Identity and
// credentials live in the auth service; this row carries only what the
// earnings and commission engine needs.
//
// USDTBalance accumulates daily earnings and percentage commissions.
// DMIBalance holds mined coins plus flat signup bonuses.
// IsPremium is sticky: set when the user first buys a plan at or above the
// premium threshold, never cleared.
type Account struct {
	ID                  string     `db:"id"`
	ReferralCode        string     `db:"referral_code"`
	ReferredBy          *string    `db:"referred_by"`
	AppliedReferralCode *string    `db:"applied_referral_code"`
	IsPremium           bool       `db:"is_premium"`
	USDTBalance         float64    `db:"usdt_balance"`
	DMIBalance          int64      `db:"dmi_balance"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"`
	DeletedAt           *time.Time `db:"deleted_at"`
}

func (a *Account) HasReferrer() bool {
	return a.ReferredBy != nil && *a.ReferredBy != ""
}
