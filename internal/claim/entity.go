// AngelaMos | 2026
// entity.go

package claim

import (
	"time"
)

// Record is one settled daily claim. Rows are append-only; the optional
// idempotency key is unique per user so a retried request can be answered
// with the original result instead of a second credit.
type Record struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	ActivePlanID   string    `db:"active_plan_id"`
	Amount         float64   `db:"amount"`
	IdempotencyKey *string   `db:"idempotency_key"`
	ClaimedAt      time.Time `db:"claimed_at"`
}

// Result is what a settled claim reports back: the record itself, when the
// next window opens, and whether this response replays an earlier claim
// matched by idempotency key.
type Result struct {
	Record      Record
	NextClaimAt time.Time
	Replayed    bool
}
