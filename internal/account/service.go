// AngelaMos | 2026
// service.go

package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dmiplatform/rewards-backend/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Ensure provisions the account row for a user the first time a rewards
// request arrives. The auth service owns registration; rewards rows are
// created lazily on first touch so the two systems need no shared migration.
func (s *Service) Ensure(ctx context.Context, userID string) (*Account, error) {
	if userID == "" {
		return nil, fmt.Errorf("ensure account: %w", core.ErrUnauthorized)
	}

	existing, err := s.repo.GetByID(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	account := &Account{
		ID:           userID,
		ReferralCode: NewReferralCode(),
	}

	if createErr := s.repo.Create(ctx, account); createErr != nil {
		// Lost a race with a concurrent first request; the row exists now.
		if isDuplicate(createErr) {
			return s.repo.GetByID(ctx, userID)
		}
		return nil, createErr
	}

	return account, nil
}

func (s *Service) Get(ctx context.Context, userID string) (*Account, error) {
	return s.Ensure(ctx, userID)
}

// NewReferralCode derives a short shareable code. UUIDs give collision
// resistance; the unique index on referral_code backstops the truncation.
func NewReferralCode() string {
	return strings.ToUpper(strings.ReplaceAll(
		uuid.New().String(), "-", "",
	)[:10])
}

func isNotFound(err error) bool {
	return errors.Is(err, core.ErrNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, core.ErrDuplicateKey)
}
