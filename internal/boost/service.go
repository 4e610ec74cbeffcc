// AngelaMos | 2026
// service.go

package boost

import (
	"context"
	"time"

	"github.com/dmiplatform/rewards-backend/internal/plan"
)

// Service computes the effective mining-rate multiplier: the product of
// every non-expired plan's boost. Stacking is multiplicative, so two 2x
// plans yield 4x, and an account with no active plans mines at 1x.
type Service struct {
	plans plan.Repository
}

func NewService(plans plan.Repository) *Service {
	return &Service{plans: plans}
}

type Boost struct {
	Multiplier  float64       `json:"multiplier"`
	ActivePlans int           `json:"active_plans"`
	Sources     []BoostSource `json:"sources,omitempty"`
}

type BoostSource struct {
	PlanID     string    `json:"plan_id"`
	PlanName   string    `json:"plan_name"`
	Multiplier float64   `json:"multiplier"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func (s *Service) Effective(ctx context.Context, userID string) (*Boost, error) {
	active, err := s.plans.ListActiveByUser(ctx, userID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	boost := &Boost{Multiplier: 1.0}

	for i := range active {
		p := &active[i]
		boost.Multiplier *= p.BoostMultiplier
		boost.ActivePlans++
		boost.Sources = append(boost.Sources, BoostSource{
			PlanID:     p.PlanID,
			PlanName:   p.PlanName,
			Multiplier: p.BoostMultiplier,
			ExpiresAt:  p.ExpiresAt,
		})
	}

	return boost, nil
}
