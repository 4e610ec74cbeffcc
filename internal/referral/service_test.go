// AngelaMos | 2026
// service_test.go

package referral

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmiplatform/rewards-backend/internal/account"
	"github.com/dmiplatform/rewards-backend/internal/commission"
	"github.com/dmiplatform/rewards-backend/internal/config"
	"github.com/dmiplatform/rewards-backend/internal/core"
)

type fakeRepository struct {
	parent *account.Account
	event  *commission.RewardEvent
	err    error
	stats  []LevelStat
}

func (f *fakeRepository) Apply(
	_ context.Context,
	_, _ string,
) (*account.Account, *commission.RewardEvent, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.parent, f.event, nil
}

func (f *fakeRepository) LevelStats(
	_ context.Context,
	_ string,
) ([]LevelStat, error) {
	return f.stats, f.err
}

type fakeAccountRepository struct {
	accounts map[string]*account.Account
}

func (f *fakeAccountRepository) Create(_ context.Context, a *account.Account) error {
	if _, exists := f.accounts[a.ID]; exists {
		return fmt.Errorf("create: %w", core.ErrDuplicateKey)
	}
	f.accounts[a.ID] = a
	return nil
}

func (f *fakeAccountRepository) GetByID(
	_ context.Context,
	id string,
) (*account.Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return nil, fmt.Errorf("get: %w", core.ErrNotFound)
	}
	return a, nil
}

func (f *fakeAccountRepository) GetByReferralCode(
	_ context.Context,
	code string,
) (*account.Account, error) {
	for _, a := range f.accounts {
		if a.ReferralCode == code {
			return a, nil
		}
	}
	return nil, fmt.Errorf("get by code: %w", core.ErrNotFound)
}

func (f *fakeAccountRepository) CreditUSDT(_ context.Context, _ string, _ float64) error {
	return nil
}

func (f *fakeAccountRepository) CreditDMI(_ context.Context, _ string, _ int64) error {
	return nil
}

func (f *fakeAccountRepository) MarkPremium(_ context.Context, _ string) error {
	return nil
}

func (f *fakeAccountRepository) SetReferrer(
	_ context.Context,
	childID, parentID, code string,
) error {
	child, ok := f.accounts[childID]
	if !ok {
		return fmt.Errorf("set referrer: %w", core.ErrNotFound)
	}
	if child.ReferredBy != nil {
		return fmt.Errorf("set referrer: %w", core.ErrConflict)
	}
	child.ReferredBy = &parentID
	child.AppliedReferralCode = &code
	return nil
}

type fakeDispatcher struct {
	events []*commission.RewardEvent
}

func (f *fakeDispatcher) Dispatch(_ context.Context, ev *commission.RewardEvent) {
	f.events = append(f.events, ev)
}

func newTestService(repo Repository, dispatcher Dispatcher) *Service {
	accounts := account.NewService(&fakeAccountRepository{
		accounts: map[string]*account.Account{
			"u1": {ID: "u1", ReferralCode: "U1CODE"},
		},
	})

	return NewService(
		repo,
		accounts,
		dispatcher,
		config.RewardsConfig{StoreRetryAttempts: 1},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func TestApplyDispatchesSignupEvent(t *testing.T) {
	ev := &commission.RewardEvent{
		ID:           "ev-signup",
		EventType:    commission.EventSignup,
		OriginUserID: "u1",
	}
	repo := &fakeRepository{
		parent: &account.Account{ID: "parent-1"},
		event:  ev,
	}
	dispatcher := &fakeDispatcher{}
	svc := newTestService(repo, dispatcher)

	parent, err := svc.Apply(context.Background(), "u1", "PARENTCODE")
	require.NoError(t, err)
	require.Equal(t, "parent-1", parent.ID)
	require.Len(t, dispatcher.events, 1)
	require.Same(t, ev, dispatcher.events[0])
}

func TestApplyBusinessErrorsPassThrough(t *testing.T) {
	repo := &fakeRepository{err: AlreadyAppliedError()}
	dispatcher := &fakeDispatcher{}
	svc := newTestService(repo, dispatcher)

	_, err := svc.Apply(context.Background(), "u1", "PARENTCODE")
	require.Error(t, err)

	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, "ALREADY_APPLIED", appErr.Code)
	require.Empty(t, dispatcher.events)
}

func TestSummaryAggregatesLevels(t *testing.T) {
	repo := &fakeRepository{stats: []LevelStat{
		{Level: 1, TeamSize: 3, EarnedUSDT: 12.5},
		{Level: 2, TeamSize: 7, EarnedUSDT: 4.25},
		{Level: 3, TeamSize: 0, EarnedUSDT: 0},
		{Level: 4, TeamSize: 0, EarnedUSDT: 0},
		{Level: 5, TeamSize: 0, EarnedUSDT: 0},
	}}
	svc := newTestService(repo, &fakeDispatcher{})

	summary, err := svc.Summary(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "U1CODE", summary.ReferralCode)
	require.Equal(t, 10, summary.TotalTeamSize)
	require.InDelta(t, 16.75, summary.TotalEarnedUSDT, 1e-9)
	require.Len(t, summary.Levels, 5)
}
