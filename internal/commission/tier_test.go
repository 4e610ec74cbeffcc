// AngelaMos | 2026
// tier_test.go

package commission

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmiplatform/rewards-backend/internal/config"
)

func TestRateTableLookup(t *testing.T) {
	rates := testRates(t)

	require.InDelta(t, 0.10, rates.Rate(1, false, EventPlanPurchase), 1e-9)
	require.InDelta(t, 0.12, rates.Rate(1, true, EventPlanPurchase), 1e-9)
	require.InDelta(t, 0.05, rates.Rate(1, false, EventDailyClaim), 1e-9)

	// Claim rates configured for level 1 only.
	require.Zero(t, rates.Rate(2, false, EventDailyClaim))

	// Signup events have no percentage rate.
	require.Zero(t, rates.Rate(1, false, EventSignup))
}

func TestRateTableMissingLevelPaysNothing(t *testing.T) {
	rates := testRates(t)

	require.Zero(t, rates.Rate(6, false, EventPlanPurchase))
	require.Zero(t, rates.SignupBonus(5, false))
}

func TestNewRateTableRejectsDuplicateLevels(t *testing.T) {
	_, err := NewRateTable(config.RewardsConfig{
		PurchaseRates: []config.CommissionTier{
			{Level: 1, Standard: 0.10},
			{Level: 1, Standard: 0.20},
		},
	})
	require.Error(t, err)
}

func TestRetryDelayDoublesAndCaps(t *testing.T) {
	require.Equal(t, redeliverBaseDelay, retryDelay(0))
	require.Equal(t, 2*redeliverBaseDelay, retryDelay(1))
	require.Equal(t, 4*redeliverBaseDelay, retryDelay(2))
	require.Equal(t, redeliverMaxDelay, retryDelay(50))
}
