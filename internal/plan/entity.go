// AngelaMos | 2026
// entity.go

package plan

import (
	"time"
)

// ActivePlan snapshots the catalog entry at purchase time. Later catalog
// edits or reloads never change what an already-purchased plan earns.
type ActivePlan struct {
	ID              string     `db:"id"`
	UserID          string     `db:"user_id"`
	PlanID          string     `db:"plan_id"`
	PlanName        string     `db:"plan_name"`
	Price           float64    `db:"price"`
	DailyEarning    float64    `db:"daily_earning"`
	BoostMultiplier float64    `db:"boost_multiplier"`
	PurchasedAt     time.Time  `db:"purchased_at"`
	ExpiresAt       time.Time  `db:"expires_at"`
	LastClaimAt     *time.Time `db:"last_claim_at"`
}

func (p *ActivePlan) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}
