// AngelaMos | 2026
// config_test.go

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateTiersRejectsOutOfRangeLevel(t *testing.T) {
	err := validateTiers(&RewardsConfig{
		PurchaseRates: []CommissionTier{{Level: 6, Standard: 0.1}},
	})
	require.Error(t, err)

	err = validateTiers(&RewardsConfig{
		ClaimRates: []CommissionTier{{Level: 0, Standard: 0.1}},
	})
	require.Error(t, err)
}

func TestValidateTiersRejectsNegativeRates(t *testing.T) {
	err := validateTiers(&RewardsConfig{
		PurchaseRates: []CommissionTier{{Level: 1, Standard: -0.1}},
	})
	require.Error(t, err)

	err = validateTiers(&RewardsConfig{
		SignupBonuses: []SignupBonusTier{{Level: 1, Premium: -5}},
	})
	require.Error(t, err)
}

func TestValidateTiersAcceptsFullTable(t *testing.T) {
	r := &RewardsConfig{
		PurchaseRates: []CommissionTier{
			{Level: 1, Standard: 0.10, Premium: 0.12},
			{Level: 2, Standard: 0.05, Premium: 0.06},
			{Level: 3, Standard: 0.03, Premium: 0.04},
			{Level: 4, Standard: 0.02, Premium: 0.03},
			{Level: 5, Standard: 0.01, Premium: 0.02},
		},
		SignupBonuses: []SignupBonusTier{
			{Level: 1, Standard: 500, Premium: 750},
		},
	}
	require.NoError(t, validateTiers(r))
}

func TestValidateCatalogRejectsBadEntries(t *testing.T) {
	cases := []PlanEntry{
		{ID: "p", Name: "p", Price: 0, DurationDays: 30, DailyEarning: 1, BoostMultiplier: 1},
		{ID: "p", Name: "p", Price: 10, DurationDays: 0, DailyEarning: 1, BoostMultiplier: 1},
		{ID: "p", Name: "p", Price: 10, DurationDays: 30, DailyEarning: 0, BoostMultiplier: 1},
		{ID: "p", Name: "p", Price: 10, DurationDays: 30, DailyEarning: 1, BoostMultiplier: 0.5},
		{ID: "", Name: "p", Price: 10, DurationDays: 30, DailyEarning: 1, BoostMultiplier: 1},
	}

	for _, entry := range cases {
		err := validateCatalog(&CatalogConfig{Plans: []PlanEntry{entry}})
		require.Error(t, err, "entry %+v should be rejected", entry)
	}
}

func TestValidateCatalogAcceptsEmptyCatalog(t *testing.T) {
	require.NoError(t, validateCatalog(&CatalogConfig{}))
}
