// AngelaMos | 2026
// service_test.go

package plan

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmiplatform/rewards-backend/internal/catalog"
	"github.com/dmiplatform/rewards-backend/internal/commission"
	"github.com/dmiplatform/rewards-backend/internal/config"
	"github.com/dmiplatform/rewards-backend/internal/core"
)

type fakeRepository struct {
	purchased   *ActivePlan
	markPremium bool
	event       *commission.RewardEvent
	active      []ActivePlan
	err         error
}

func (f *fakeRepository) Purchase(
	_ context.Context,
	p *ActivePlan,
	markPremium bool,
	ev *commission.RewardEvent,
) error {
	if f.err != nil {
		return f.err
	}
	f.purchased = p
	f.markPremium = markPremium
	f.event = ev
	return nil
}

func (f *fakeRepository) ListActiveByUser(
	_ context.Context,
	_ string,
	_ time.Time,
) ([]ActivePlan, error) {
	return f.active, f.err
}

type fakeDispatcher struct {
	events []*commission.RewardEvent
}

func (f *fakeDispatcher) Dispatch(_ context.Context, ev *commission.RewardEvent) {
	f.events = append(f.events, ev)
}

func testCatalog() *catalog.Catalog {
	return catalog.New([]config.PlanEntry{
		{
			ID: "starter", Name: "Starter Miner", Price: 10,
			DurationDays: 30, DailyEarning: 0.5, BoostMultiplier: 1.2,
		},
		{
			ID: "pro", Name: "Pro Miner", Price: 50,
			DurationDays: 60, DailyEarning: 3, BoostMultiplier: 2,
		},
		{
			ID: "broken", Name: "Broken", Price: 10,
			DurationDays: 0, DailyEarning: 1, BoostMultiplier: 1,
		},
	}, nil)
}

func newTestService(repo Repository, dispatcher Dispatcher) *Service {
	return NewService(
		repo,
		testCatalog(),
		dispatcher,
		config.RewardsConfig{PremiumThreshold: 50, StoreRetryAttempts: 1},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func TestPurchaseSnapshotsCatalogEntry(t *testing.T) {
	repo := &fakeRepository{}
	dispatcher := &fakeDispatcher{}
	svc := newTestService(repo, dispatcher)

	p, err := svc.Purchase(context.Background(), "u1", "starter")
	require.NoError(t, err)

	require.Equal(t, "starter", p.PlanID)
	require.Equal(t, "Starter Miner", p.PlanName)
	require.InDelta(t, 10.0, p.Price, 1e-9)
	require.InDelta(t, 0.5, p.DailyEarning, 1e-9)
	require.InDelta(t, 1.2, p.BoostMultiplier, 1e-9)
	require.Equal(t, p.PurchasedAt.AddDate(0, 0, 30), p.ExpiresAt)

	require.NotNil(t, repo.event)
	require.Equal(t, commission.EventPlanPurchase, repo.event.EventType)
	require.InDelta(t, 10.0, repo.event.Amount, 1e-9)

	require.Len(t, dispatcher.events, 1)
	require.Same(t, repo.event, dispatcher.events[0])
}

func TestPurchaseBelowThresholdStaysStandard(t *testing.T) {
	repo := &fakeRepository{}
	svc := newTestService(repo, &fakeDispatcher{})

	_, err := svc.Purchase(context.Background(), "u1", "starter")
	require.NoError(t, err)
	require.False(t, repo.markPremium)
}

func TestPurchaseAtThresholdMarksPremium(t *testing.T) {
	repo := &fakeRepository{}
	svc := newTestService(repo, &fakeDispatcher{})

	_, err := svc.Purchase(context.Background(), "u1", "pro")
	require.NoError(t, err)
	require.True(t, repo.markPremium)
}

func TestPurchaseUnknownPlan(t *testing.T) {
	repo := &fakeRepository{}
	dispatcher := &fakeDispatcher{}
	svc := newTestService(repo, dispatcher)

	_, err := svc.Purchase(context.Background(), "u1", "nonexistent")
	require.Error(t, err)

	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, "NOT_FOUND", appErr.Code)
	require.Empty(t, dispatcher.events)
}

func TestPurchaseRejectsInvalidPlanSpec(t *testing.T) {
	repo := &fakeRepository{}
	dispatcher := &fakeDispatcher{}
	svc := newTestService(repo, dispatcher)

	_, err := svc.Purchase(context.Background(), "u1", "broken")
	require.Error(t, err)

	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, "INVALID_PLAN_SPEC", appErr.Code)
	require.Nil(t, repo.purchased)
	require.Empty(t, dispatcher.events)
}
