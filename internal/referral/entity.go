// AngelaMos | 2026
// entity.go

package referral

import (
	"time"
)

// Edge is the immutable parent link written when a referral code is
// applied. child_id is the primary key: one parent per account, forever.
type Edge struct {
	ChildID   string    `db:"child_id"`
	ParentID  string    `db:"parent_id"`
	Code      string    `db:"code"`
	CreatedAt time.Time `db:"created_at"`
}

// LevelStat is one row of the team summary: how many descendants sit at
// this depth and how much commission they have generated for the account.
type LevelStat struct {
	Level      int     `db:"level" json:"level"`
	TeamSize   int     `db:"team_size" json:"team_size"`
	EarnedUSDT float64 `db:"earned_usdt" json:"earned_usdt"`
}

type Summary struct {
	ReferralCode    string      `json:"referral_code"`
	TotalTeamSize   int         `json:"total_team_size"`
	TotalEarnedUSDT float64     `json:"total_earned_usdt"`
	Levels          []LevelStat `json:"levels"`
}
