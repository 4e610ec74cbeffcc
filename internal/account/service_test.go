// AngelaMos | 2026
// service_test.go

package account

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmiplatform/rewards-backend/internal/core"
)

type fakeRepository struct {
	accounts     map[string]*Account
	failCreate   bool
	createCalls  int
	getByIDCalls int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{accounts: make(map[string]*Account)}
}

func (f *fakeRepository) Create(_ context.Context, a *Account) error {
	f.createCalls++
	if f.failCreate {
		// Simulate losing the race: the winner's row lands just before
		// this insert hits the unique constraint.
		f.accounts[a.ID] = &Account{ID: a.ID, ReferralCode: "RACEWINNER"}
		return fmt.Errorf("create: %w", core.ErrDuplicateKey)
	}
	if _, exists := f.accounts[a.ID]; exists {
		return fmt.Errorf("create: %w", core.ErrDuplicateKey)
	}
	f.accounts[a.ID] = a
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id string) (*Account, error) {
	f.getByIDCalls++
	a, ok := f.accounts[id]
	if !ok {
		return nil, fmt.Errorf("get: %w", core.ErrNotFound)
	}
	return a, nil
}

func (f *fakeRepository) GetByReferralCode(
	_ context.Context,
	code string,
) (*Account, error) {
	for _, a := range f.accounts {
		if a.ReferralCode == code {
			return a, nil
		}
	}
	return nil, fmt.Errorf("get by code: %w", core.ErrNotFound)
}

func (f *fakeRepository) CreditUSDT(_ context.Context, id string, amount float64) error {
	a, ok := f.accounts[id]
	if !ok {
		return fmt.Errorf("credit: %w", core.ErrNotFound)
	}
	a.USDTBalance += amount
	return nil
}

func (f *fakeRepository) CreditDMI(_ context.Context, id string, amount int64) error {
	a, ok := f.accounts[id]
	if !ok {
		return fmt.Errorf("credit: %w", core.ErrNotFound)
	}
	a.DMIBalance += amount
	return nil
}

func (f *fakeRepository) MarkPremium(_ context.Context, id string) error {
	a, ok := f.accounts[id]
	if !ok {
		return fmt.Errorf("mark premium: %w", core.ErrNotFound)
	}
	a.IsPremium = true
	return nil
}

func (f *fakeRepository) SetReferrer(
	_ context.Context,
	childID, parentID, code string,
) error {
	a, ok := f.accounts[childID]
	if !ok {
		return fmt.Errorf("set referrer: %w", core.ErrNotFound)
	}
	if a.ReferredBy != nil {
		return fmt.Errorf("set referrer: %w", core.ErrConflict)
	}
	a.ReferredBy = &parentID
	a.AppliedReferralCode = &code
	return nil
}

func TestEnsureCreatesOnFirstTouch(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	a, err := svc.Ensure(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "u1", a.ID)
	require.Len(t, a.ReferralCode, 10)
	require.Equal(t, 1, repo.createCalls)
}

func TestEnsureIsIdempotent(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	first, err := svc.Ensure(context.Background(), "u1")
	require.NoError(t, err)

	second, err := svc.Ensure(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, first.ReferralCode, second.ReferralCode)
	require.Equal(t, 1, repo.createCalls)
}

func TestEnsureSurvivesCreateRace(t *testing.T) {
	repo := newFakeRepository()
	repo.failCreate = true
	svc := NewService(repo)

	a, err := svc.Ensure(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "u1", a.ID)
	require.Equal(t, "RACEWINNER", a.ReferralCode)
}

func TestEnsureRejectsEmptyUserID(t *testing.T) {
	svc := NewService(newFakeRepository())

	_, err := svc.Ensure(context.Background(), "")
	require.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestNewReferralCodeShape(t *testing.T) {
	seen := make(map[string]bool)
	for range 50 {
		code := NewReferralCode()
		require.Len(t, code, 10)
		require.Equal(t, strings.ToUpper(code), code)
		require.False(t, seen[code], "codes should not repeat")
		seen[code] = true
	}
}
