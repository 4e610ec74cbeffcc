// AngelaMos | 2026
// claim_test.go

package claim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmiplatform/rewards-backend/internal/core"
	"github.com/dmiplatform/rewards-backend/internal/plan"
)

func testPlan(purchased time.Time, lastClaim *time.Time) *plan.ActivePlan {
	return &plan.ActivePlan{
		ID:           "ap-1",
		UserID:       "u1",
		PlanID:       "starter",
		DailyEarning: 0.5,
		PurchasedAt:  purchased,
		ExpiresAt:    purchased.AddDate(0, 0, 30),
		LastClaimAt:  lastClaim,
	}
}

func TestNextClaimTimeAnchorsToPurchase(t *testing.T) {
	purchased := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := testPlan(purchased, nil)

	require.Equal(t, purchased.Add(Cooldown), NextClaimTime(p))
}

func TestNextClaimTimeAnchorsToLastClaim(t *testing.T) {
	purchased := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Claimed three hours late; the next window shifts with it.
	last := purchased.Add(27 * time.Hour)
	p := testPlan(purchased, &last)

	require.Equal(t, last.Add(Cooldown), NextClaimTime(p))
}

func TestEligibleTooEarly(t *testing.T) {
	purchased := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := testPlan(purchased, nil)

	err := Eligible(p, purchased.Add(23*time.Hour+59*time.Minute))
	require.Error(t, err)

	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, "CLAIM_TOO_EARLY", appErr.Code)
}

func TestEligibleAtWindowBoundary(t *testing.T) {
	purchased := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := testPlan(purchased, nil)

	require.NoError(t, Eligible(p, purchased.Add(Cooldown)))
	require.NoError(t, Eligible(p, purchased.Add(Cooldown+time.Minute)))
}

func TestEligibleExpiredPlan(t *testing.T) {
	purchased := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := testPlan(purchased, nil)

	err := Eligible(p, p.ExpiresAt)
	require.Error(t, err)

	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, "PLAN_EXPIRED", appErr.Code)
}

func TestEligibleExpiryBeatsCooldown(t *testing.T) {
	purchased := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Last claim just before expiry; both conditions hold but expiry wins.
	last := purchased.AddDate(0, 0, 30).Add(-time.Hour)
	p := testPlan(purchased, &last)

	err := Eligible(p, p.ExpiresAt.Add(time.Hour))
	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, "PLAN_EXPIRED", appErr.Code)
}
