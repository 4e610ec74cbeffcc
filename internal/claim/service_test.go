// AngelaMos | 2026
// service_test.go

package claim

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmiplatform/rewards-backend/internal/commission"
	"github.com/dmiplatform/rewards-backend/internal/config"
	"github.com/dmiplatform/rewards-backend/internal/metrics"
	"github.com/dmiplatform/rewards-backend/internal/plan"
)

type fakeRepository struct {
	result    *Result
	event     *commission.RewardEvent
	err       error
	plan      *plan.ActivePlan
	execCalls int
}

func (f *fakeRepository) Execute(
	_ context.Context,
	_, _ string,
	_ *string,
) (*Result, *commission.RewardEvent, error) {
	f.execCalls++
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.result, f.event, nil
}

func (f *fakeRepository) GetPlan(
	_ context.Context,
	_, _ string,
) (*plan.ActivePlan, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.plan, nil
}

type fakeDispatcher struct {
	events []*commission.RewardEvent
}

func (f *fakeDispatcher) Dispatch(_ context.Context, ev *commission.RewardEvent) {
	f.events = append(f.events, ev)
}

func newTestService(repo Repository, dispatcher Dispatcher) *Service {
	return NewService(
		repo,
		dispatcher,
		config.RewardsConfig{StoreRetryAttempts: 1},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func TestClaimDispatchesFanOut(t *testing.T) {
	now := time.Now().UTC()
	ev := &commission.RewardEvent{
		ID:           "ev-1",
		EventType:    commission.EventDailyClaim,
		OriginUserID: "u1",
		Amount:       0.5,
	}
	repo := &fakeRepository{
		result: &Result{
			Record: Record{
				ID:           "cl-1",
				UserID:       "u1",
				ActivePlanID: "ap-1",
				Amount:       0.5,
				ClaimedAt:    now,
			},
			NextClaimAt: now.Add(Cooldown),
		},
		event: ev,
	}
	dispatcher := &fakeDispatcher{}
	svc := newTestService(repo, dispatcher)

	result, err := svc.Claim(context.Background(), "u1", "ap-1", nil)
	require.NoError(t, err)
	require.InDelta(t, 0.5, result.Record.Amount, 1e-9)
	require.Len(t, dispatcher.events, 1)
	require.Same(t, ev, dispatcher.events[0])
}

func TestClaimReplayedSkipsFanOut(t *testing.T) {
	now := time.Now().UTC()
	repo := &fakeRepository{
		result: &Result{
			Record:      Record{ID: "cl-1", Amount: 0.5, ClaimedAt: now},
			NextClaimAt: now.Add(Cooldown),
			Replayed:    true,
		},
	}
	dispatcher := &fakeDispatcher{}
	svc := newTestService(repo, dispatcher)

	result, err := svc.Claim(context.Background(), "u1", "ap-1", nil)
	require.NoError(t, err)
	require.True(t, result.Replayed)
	require.Empty(t, dispatcher.events)
}

func TestClaimBusinessErrorsPassThrough(t *testing.T) {
	next := time.Now().UTC().Add(3 * time.Hour)
	repo := &fakeRepository{err: TooEarlyError(next)}
	dispatcher := &fakeDispatcher{}
	svc := newTestService(repo, dispatcher)

	_, err := svc.Claim(context.Background(), "u1", "ap-1", nil)
	require.Error(t, err)
	require.Equal(t, metrics.ResultTooEarly, claimResultLabel(err))

	// A business rejection never burns retry attempts.
	require.Equal(t, 1, repo.execCalls)
	require.Empty(t, dispatcher.events)
}

func TestStatusReportsNextWindow(t *testing.T) {
	purchased := time.Now().UTC().Add(-2 * time.Hour)
	repo := &fakeRepository{
		plan: &plan.ActivePlan{
			ID:           "ap-1",
			UserID:       "u1",
			DailyEarning: 3,
			PurchasedAt:  purchased,
			ExpiresAt:    purchased.AddDate(0, 0, 60),
		},
	}
	svc := newTestService(repo, &fakeDispatcher{})

	status, err := svc.Status(context.Background(), "u1", "ap-1")
	require.NoError(t, err)
	require.False(t, status.CanClaim)
	require.Equal(t, purchased.Add(Cooldown), status.NextClaimTime)
	require.False(t, status.Expired)
	require.InDelta(t, 3.0, status.DailyEarning, 1e-9)
}

func TestClaimResultLabels(t *testing.T) {
	require.Equal(t, metrics.ResultConflict, claimResultLabel(ConcurrentClaimError()))
	require.Equal(t, metrics.ResultExpired, claimResultLabel(PlanExpiredError(time.Now())))
}
