// AngelaMos | 2026
// engine_test.go

package commission

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmiplatform/rewards-backend/internal/account"
	"github.com/dmiplatform/rewards-backend/internal/config"
	"github.com/dmiplatform/rewards-backend/internal/core"
)

type memDirectory struct {
	accounts map[string]*account.Account
}

func (d *memDirectory) GetByID(
	_ context.Context,
	id string,
) (*account.Account, error) {
	a, ok := d.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", id, core.ErrNotFound)
	}
	return a, nil
}

type memRepository struct {
	payouts    map[string]*Record
	usdt       map[string]float64
	dmi        map[string]int64
	completed  map[string]bool
	retried    map[string]int
	failLevels map[int]bool
}

func newMemRepository() *memRepository {
	return &memRepository{
		payouts:    make(map[string]*Record),
		usdt:       make(map[string]float64),
		dmi:        make(map[string]int64),
		completed:  make(map[string]bool),
		retried:    make(map[string]int),
		failLevels: make(map[int]bool),
	}
}

func payoutKey(eventID string, level int) string {
	return fmt.Sprintf("%s:%d", eventID, level)
}

func (r *memRepository) RecordPayout(
	_ context.Context,
	rec *Record,
) (bool, error) {
	if r.failLevels[rec.Level] {
		return false, fmt.Errorf("level %d store failure", rec.Level)
	}

	key := payoutKey(rec.SourceEventID, rec.Level)
	if _, exists := r.payouts[key]; exists {
		return false, nil
	}

	r.payouts[key] = rec
	switch rec.Currency {
	case CurrencyDMI:
		r.dmi[rec.ToUserID] += int64(rec.Amount)
	default:
		r.usdt[rec.ToUserID] += rec.Amount
	}
	return true, nil
}

func (r *memRepository) MarkEventCompleted(_ context.Context, eventID string) error {
	r.completed[eventID] = true
	return nil
}

func (r *memRepository) MarkEventRetry(
	_ context.Context,
	eventID string,
	_ time.Time,
) error {
	r.retried[eventID]++
	return nil
}

func (r *memRepository) PendingEvents(_ context.Context, _ int) ([]RewardEvent, error) {
	return nil, nil
}

func (r *memRepository) PendingCount(_ context.Context) (int, error) {
	return 0, nil
}

func (r *memRepository) ListByRecipient(
	_ context.Context, _ string, _, _ int,
) ([]Record, int, error) {
	return nil, 0, nil
}

func (r *memRepository) TotalEarnedUSDT(_ context.Context, _ string) (float64, error) {
	return 0, nil
}

func testRates(t *testing.T) *RateTable {
	t.Helper()

	rates, err := NewRateTable(config.RewardsConfig{
		PurchaseRates: []config.CommissionTier{
			{Level: 1, Standard: 0.10, Premium: 0.12},
			{Level: 2, Standard: 0.05, Premium: 0.06},
			{Level: 3, Standard: 0.03, Premium: 0.04},
			{Level: 4, Standard: 0.02, Premium: 0.03},
			{Level: 5, Standard: 0.01, Premium: 0.02},
		},
		ClaimRates: []config.CommissionTier{
			{Level: 1, Standard: 0.05, Premium: 0.07},
		},
		SignupBonuses: []config.SignupBonusTier{
			{Level: 1, Standard: 500, Premium: 750},
			{Level: 2, Standard: 250, Premium: 400},
		},
	})
	require.NoError(t, err)
	return rates
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// chain builds accounts u0 <- u1 <- ... <- uN where u0 is the origin and
// each account's referrer is the next one up.
func chain(n int) *memDirectory {
	dir := &memDirectory{accounts: make(map[string]*account.Account)}
	for i := 0; i <= n; i++ {
		id := fmt.Sprintf("u%d", i)
		a := &account.Account{ID: id}
		if i < n {
			parent := fmt.Sprintf("u%d", i+1)
			a.ReferredBy = &parent
		}
		dir.accounts[id] = a
	}
	return dir
}

func TestProcessFanOutStopsAtFifthLevel(t *testing.T) {
	dir := chain(7)
	repo := newMemRepository()
	engine := NewEngine(dir, repo, testRates(t), testLogger())

	ev := &RewardEvent{
		ID:           "ev-1",
		EventType:    EventPlanPurchase,
		OriginUserID: "u0",
		Amount:       50,
	}

	require.NoError(t, engine.Process(context.Background(), ev))

	require.InDelta(t, 5.0, repo.usdt["u1"], 1e-9)
	require.InDelta(t, 2.5, repo.usdt["u2"], 1e-9)
	require.InDelta(t, 1.5, repo.usdt["u3"], 1e-9)
	require.InDelta(t, 1.0, repo.usdt["u4"], 1e-9)
	require.InDelta(t, 0.5, repo.usdt["u5"], 1e-9)

	// Sixth-level ancestor exists but is out of range.
	require.Zero(t, repo.usdt["u6"])
	require.Len(t, repo.payouts, 5)
	require.True(t, repo.completed["ev-1"])
}

func TestProcessReplayDoesNotDoublePay(t *testing.T) {
	dir := chain(3)
	repo := newMemRepository()
	engine := NewEngine(dir, repo, testRates(t), testLogger())

	ev := &RewardEvent{
		ID:           "ev-replay",
		EventType:    EventPlanPurchase,
		OriginUserID: "u0",
		Amount:       100,
	}

	require.NoError(t, engine.Process(context.Background(), ev))
	balancesAfterFirst := map[string]float64{}
	for id, v := range repo.usdt {
		balancesAfterFirst[id] = v
	}

	require.NoError(t, engine.Process(context.Background(), ev))
	require.Equal(t, balancesAfterFirst, repo.usdt)
}

func TestProcessContinuesPastFailedLevel(t *testing.T) {
	dir := chain(5)
	repo := newMemRepository()
	repo.failLevels[3] = true
	engine := NewEngine(dir, repo, testRates(t), testLogger())

	ev := &RewardEvent{
		ID:           "ev-partial",
		EventType:    EventPlanPurchase,
		OriginUserID: "u0",
		Amount:       50,
	}

	err := engine.Process(context.Background(), ev)
	require.Error(t, err)

	// Levels around the failure still paid.
	require.InDelta(t, 5.0, repo.usdt["u1"], 1e-9)
	require.InDelta(t, 2.5, repo.usdt["u2"], 1e-9)
	require.Zero(t, repo.usdt["u3"])
	require.InDelta(t, 1.0, repo.usdt["u4"], 1e-9)
	require.InDelta(t, 0.5, repo.usdt["u5"], 1e-9)

	require.False(t, repo.completed["ev-partial"])
	require.Equal(t, 1, repo.retried["ev-partial"])

	// The retry pays only the missing level.
	repo.failLevels = map[int]bool{}
	require.NoError(t, engine.Process(context.Background(), ev))
	require.InDelta(t, 1.5, repo.usdt["u3"], 1e-9)
	require.InDelta(t, 5.0, repo.usdt["u1"], 1e-9)
	require.True(t, repo.completed["ev-partial"])
}

func TestProcessPremiumRecipientGetsPremiumRate(t *testing.T) {
	dir := chain(2)
	dir.accounts["u1"].IsPremium = true
	repo := newMemRepository()
	engine := NewEngine(dir, repo, testRates(t), testLogger())

	ev := &RewardEvent{
		ID:           "ev-premium",
		EventType:    EventPlanPurchase,
		OriginUserID: "u0",
		Amount:       100,
	}

	require.NoError(t, engine.Process(context.Background(), ev))

	require.InDelta(t, 12.0, repo.usdt["u1"], 1e-9)
	require.InDelta(t, 5.0, repo.usdt["u2"], 1e-9)
}

func TestProcessSignupPaysFlatCoinBonuses(t *testing.T) {
	dir := chain(3)
	dir.accounts["u2"].IsPremium = true
	repo := newMemRepository()
	engine := NewEngine(dir, repo, testRates(t), testLogger())

	ev := &RewardEvent{
		ID:           "ev-signup",
		EventType:    EventSignup,
		OriginUserID: "u0",
	}

	require.NoError(t, engine.Process(context.Background(), ev))

	require.Equal(t, int64(500), repo.dmi["u1"])
	require.Equal(t, int64(400), repo.dmi["u2"])

	// No bonus configured past level 2: a zero record still lands so the
	// level is settled.
	require.Equal(t, int64(0), repo.dmi["u3"])
	require.Contains(t, repo.payouts, payoutKey("ev-signup", 3))
	require.Zero(t, repo.usdt["u1"])
}

func TestProcessNoReferrerCompletesImmediately(t *testing.T) {
	dir := &memDirectory{accounts: map[string]*account.Account{
		"solo": {ID: "solo"},
	}}
	repo := newMemRepository()
	engine := NewEngine(dir, repo, testRates(t), testLogger())

	ev := &RewardEvent{
		ID:           "ev-solo",
		EventType:    EventDailyClaim,
		OriginUserID: "solo",
		Amount:       3,
	}

	require.NoError(t, engine.Process(context.Background(), ev))
	require.Empty(t, repo.payouts)
	require.True(t, repo.completed["ev-solo"])
}

func TestProcessMissingAncestorRequeues(t *testing.T) {
	ghost := "ghost"
	dir := &memDirectory{accounts: map[string]*account.Account{
		"u0": {ID: "u0", ReferredBy: &ghost},
	}}
	repo := newMemRepository()
	engine := NewEngine(dir, repo, testRates(t), testLogger())

	ev := &RewardEvent{
		ID:           "ev-ghost",
		EventType:    EventPlanPurchase,
		OriginUserID: "u0",
		Amount:       10,
	}

	require.Error(t, engine.Process(context.Background(), ev))
	require.Equal(t, 1, repo.retried["ev-ghost"])
	require.False(t, repo.completed["ev-ghost"])
}
