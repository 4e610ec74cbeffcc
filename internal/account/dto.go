// AngelaMos | 2026
// dto.go

package account

import (
	"time"
)

type AccountResponse struct {
	ID                  string    `json:"id"`
	ReferralCode        string    `json:"referral_code"`
	ReferredBy          *string   `json:"referred_by,omitempty"`
	AppliedReferralCode *string   `json:"applied_referral_code,omitempty"`
	IsPremium           bool      `json:"is_premium"`
	USDTBalance         float64   `json:"usdt_balance"`
	DMIBalance          int64     `json:"dmi_balance"`
	CreatedAt           time.Time `json:"created_at"`
}

func ToAccountResponse(a *Account) AccountResponse {
	return AccountResponse{
		ID:                  a.ID,
		ReferralCode:        a.ReferralCode,
		ReferredBy:          a.ReferredBy,
		AppliedReferralCode: a.AppliedReferralCode,
		IsPremium:           a.IsPremium,
		USDTBalance:         a.USDTBalance,
		DMIBalance:          a.DMIBalance,
		CreatedAt:           a.CreatedAt,
	}
}
