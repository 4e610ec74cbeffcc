// AngelaMos | 2026
// service_test.go

package boost

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmiplatform/rewards-backend/internal/commission"
	"github.com/dmiplatform/rewards-backend/internal/plan"
)

type fakePlanRepository struct {
	active []plan.ActivePlan
}

func (f *fakePlanRepository) Purchase(
	_ context.Context,
	_ *plan.ActivePlan,
	_ bool,
	_ *commission.RewardEvent,
) error {
	return nil
}

func (f *fakePlanRepository) ListActiveByUser(
	_ context.Context,
	_ string,
	_ time.Time,
) ([]plan.ActivePlan, error) {
	return f.active, nil
}

func TestEffectiveBoostDefaultsToOne(t *testing.T) {
	svc := NewService(&fakePlanRepository{})

	boost, err := svc.Effective(context.Background(), "u1")
	require.NoError(t, err)
	require.InDelta(t, 1.0, boost.Multiplier, 1e-9)
	require.Zero(t, boost.ActivePlans)
	require.Empty(t, boost.Sources)
}

func TestEffectiveBoostStacksMultiplicatively(t *testing.T) {
	expires := time.Now().UTC().Add(24 * time.Hour)
	svc := NewService(&fakePlanRepository{active: []plan.ActivePlan{
		{PlanID: "pro", PlanName: "Pro Miner", BoostMultiplier: 2, ExpiresAt: expires},
		{PlanID: "whale", PlanName: "Whale Miner", BoostMultiplier: 4, ExpiresAt: expires},
	}})

	boost, err := svc.Effective(context.Background(), "u1")
	require.NoError(t, err)
	require.InDelta(t, 8.0, boost.Multiplier, 1e-9)
	require.Equal(t, 2, boost.ActivePlans)
	require.Len(t, boost.Sources, 2)
}

func TestEffectiveBoostSinglePlan(t *testing.T) {
	svc := NewService(&fakePlanRepository{active: []plan.ActivePlan{
		{PlanID: "starter", BoostMultiplier: 1.2, ExpiresAt: time.Now().Add(time.Hour)},
	}})

	boost, err := svc.Effective(context.Background(), "u1")
	require.NoError(t, err)
	require.InDelta(t, 1.2, boost.Multiplier, 1e-9)
}
