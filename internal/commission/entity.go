// AngelaMos | 2026
// entity.go

package commission

import (
	"time"
)

// MaxLevels bounds the ancestor walk. Ancestors past the fifth level never
// receive anything, regardless of tree depth.
const MaxLevels = 5

type EventType string

const (
	EventPlanPurchase EventType = "plan_purchase"
	EventDailyClaim   EventType = "daily_claim"
	EventSignup       EventType = "signup"
)

type Currency string

const (
	CurrencyUSDT Currency = "usdt"
	CurrencyDMI  Currency = "dmi"
)

const (
	EventStatusPending   = "pending"
	EventStatusCompleted = "completed"
)

// RewardEvent is the outbox row written in the same transaction as the
// primary credit (purchase, claim or signup). Its ID doubles as the
// commission idempotency root: (ID, level) is unique across all payouts, so
// re-processing an event can never double-pay.
type RewardEvent struct {
	ID            string     `db:"id"`
	EventType     EventType  `db:"event_type"`
	OriginUserID  string     `db:"origin_user_id"`
	Amount        float64    `db:"amount"`
	Status        string     `db:"status"`
	Attempts      int        `db:"attempts"`
	NextAttemptAt time.Time  `db:"next_attempt_at"`
	CreatedAt     time.Time  `db:"created_at"`
	CompletedAt   *time.Time `db:"completed_at"`
}

// Record is one paid commission level: append-only, unique per
// (source_event_id, level).
type Record struct {
	ID            string    `db:"id"`
	SourceEventID string    `db:"source_event_id"`
	Level         int       `db:"level"`
	EventType     EventType `db:"event_type"`
	FromUserID    string    `db:"from_user_id"`
	ToUserID      string    `db:"to_user_id"`
	Amount        float64   `db:"amount"`
	RateApplied   float64   `db:"rate_applied"`
	Currency      Currency  `db:"currency"`
	CreatedAt     time.Time `db:"created_at"`
}
