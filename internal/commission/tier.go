// AngelaMos | 2026
// tier.go

package commission

import (
	"fmt"

	"github.com/dmiplatform/rewards-backend/internal/config"
)

// RateTable is the compiled tier configuration: percentage rates per
// (level, recipient premium status) for purchase and claim events, and flat
// DMI bonuses for signups. Levels absent from the config pay nothing at that
// depth; the walk still records a zero payout so replays stay idempotent.
//
// The premium dimension always refers to the commission recipient (the
// ancestor), evaluated at payout time. The table is data, not policy: which
// column applies is decided here once, not scattered through the config.
type RateTable struct {
	purchase map[int]config.CommissionTier
	claim    map[int]config.CommissionTier
	signup   map[int]config.SignupBonusTier
}

func NewRateTable(cfg config.RewardsConfig) (*RateTable, error) {
	t := &RateTable{
		purchase: make(map[int]config.CommissionTier, MaxLevels),
		claim:    make(map[int]config.CommissionTier, MaxLevels),
		signup:   make(map[int]config.SignupBonusTier, MaxLevels),
	}

	for _, tier := range cfg.PurchaseRates {
		if _, dup := t.purchase[tier.Level]; dup {
			return nil, fmt.Errorf("duplicate purchase rate for level %d", tier.Level)
		}
		t.purchase[tier.Level] = tier
	}

	for _, tier := range cfg.ClaimRates {
		if _, dup := t.claim[tier.Level]; dup {
			return nil, fmt.Errorf("duplicate claim rate for level %d", tier.Level)
		}
		t.claim[tier.Level] = tier
	}

	for _, tier := range cfg.SignupBonuses {
		if _, dup := t.signup[tier.Level]; dup {
			return nil, fmt.Errorf("duplicate signup bonus for level %d", tier.Level)
		}
		t.signup[tier.Level] = tier
	}

	return t, nil
}

// Rate returns the percentage rate for a purchase or claim event at the
// given level. Signup events have no percentage rate; use SignupBonus.
func (t *RateTable) Rate(level int, premium bool, eventType EventType) float64 {
	var tiers map[int]config.CommissionTier

	switch eventType {
	case EventPlanPurchase:
		tiers = t.purchase
	case EventDailyClaim:
		tiers = t.claim
	default:
		return 0
	}

	tier, ok := tiers[level]
	if !ok {
		return 0
	}

	if premium {
		return tier.Premium
	}
	return tier.Standard
}

// SignupBonus returns the flat DMI-coin bonus for a signup event at the
// given level.
func (t *RateTable) SignupBonus(level int, premium bool) int64 {
	tier, ok := t.signup[level]
	if !ok {
		return 0
	}

	if premium {
		return tier.Premium
	}
	return tier.Standard
}
