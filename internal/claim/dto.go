// AngelaMos | 2026
// dto.go

package claim

import (
	"time"
)

type StatusResponse struct {
	PlanID        string    `json:"plan_id"`
	CanClaim      bool      `json:"can_claim"`
	NextClaimTime time.Time `json:"next_claim_time"`
	ExpiresAt     time.Time `json:"expires_at"`
	DailyEarning  float64   `json:"daily_earning"`
	Expired       bool      `json:"expired"`
}

type ClaimResponse struct {
	ClaimID       string    `json:"claim_id"`
	PlanID        string    `json:"plan_id"`
	Amount        float64   `json:"amount"`
	ClaimedAt     time.Time `json:"claimed_at"`
	NextClaimTime time.Time `json:"next_claim_time"`
	Replayed      bool      `json:"replayed,omitempty"`
}

func ToClaimResponse(res *Result) ClaimResponse {
	return ClaimResponse{
		ClaimID:       res.Record.ID,
		PlanID:        res.Record.ActivePlanID,
		Amount:        res.Record.Amount,
		ClaimedAt:     res.Record.ClaimedAt,
		NextClaimTime: res.NextClaimAt,
		Replayed:      res.Replayed,
	}
}
