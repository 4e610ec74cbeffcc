// AngelaMos | 2026
// claim.go

package claim

import (
	"net/http"
	"time"

	"github.com/dmiplatform/rewards-backend/internal/core"
	"github.com/dmiplatform/rewards-backend/internal/plan"
)

// Cooldown is the rolling claim window. It anchors to the previous claim's
// timestamp, not to calendar days, so claiming late shifts every later
// window by the same amount.
const Cooldown = 24 * time.Hour

// NextClaimTime is when the plan's next claim unlocks: one cooldown after
// the last claim, or after purchase if nothing was claimed yet.
func NextClaimTime(p *plan.ActivePlan) time.Time {
	base := p.PurchasedAt
	if p.LastClaimAt != nil {
		base = *p.LastClaimAt
	}
	return base.Add(Cooldown)
}

// Eligible returns nil when the plan can be claimed at now, or the exact
// client-facing error otherwise.
func Eligible(p *plan.ActivePlan, now time.Time) error {
	if p.Expired(now) {
		return PlanExpiredError(p.ExpiresAt)
	}

	if next := NextClaimTime(p); now.Before(next) {
		return TooEarlyError(next)
	}

	return nil
}

func TooEarlyError(nextClaimAt time.Time) *core.AppError {
	return core.NewAppError(
		http.StatusConflict,
		"CLAIM_TOO_EARLY",
		"claim window has not opened yet",
	).WithDetails(map[string]any{
		"next_claim_time": nextClaimAt.UTC(),
	})
}

func PlanExpiredError(expiredAt time.Time) *core.AppError {
	return core.NewAppError(
		http.StatusConflict,
		"PLAN_EXPIRED",
		"plan has expired and no longer earns",
	).WithDetails(map[string]any{
		"expired_at": expiredAt.UTC(),
	})
}

func PlanNotFoundError() *core.AppError {
	return core.NewAppError(
		http.StatusNotFound,
		"PLAN_NOT_FOUND",
		"no such plan for this account",
	)
}

func ConcurrentClaimError() *core.AppError {
	return core.NewAppError(
		http.StatusConflict,
		"CONCURRENT_CLAIM_CONFLICT",
		"another claim for this plan is in progress",
	)
}
