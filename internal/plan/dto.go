// AngelaMos | 2026
// dto.go

package plan

import (
	"time"

	"github.com/dmiplatform/rewards-backend/internal/catalog"
)

type PurchaseRequest struct {
	PlanID string `json:"plan_id" validate:"required"`
}

type CatalogPlanResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	DurationDays    int     `json:"duration_days"`
	DailyEarning    float64 `json:"daily_earning"`
	BoostMultiplier float64 `json:"boost_multiplier"`
}

type ActivePlanResponse struct {
	ID              string     `json:"id"`
	PlanID          string     `json:"plan_id"`
	PlanName        string     `json:"plan_name"`
	Price           float64    `json:"price"`
	DailyEarning    float64    `json:"daily_earning"`
	BoostMultiplier float64    `json:"boost_multiplier"`
	PurchasedAt     time.Time  `json:"purchased_at"`
	ExpiresAt       time.Time  `json:"expires_at"`
	LastClaimAt     *time.Time `json:"last_claim_at,omitempty"`
}

type CatalogResponse struct {
	Plans []CatalogPlanResponse `json:"plans"`
}

func ToCatalogResponse(plans []catalog.Plan) CatalogResponse {
	out := make([]CatalogPlanResponse, len(plans))
	for i, p := range plans {
		out[i] = CatalogPlanResponse{
			ID:              p.ID,
			Name:            p.Name,
			Price:           p.Price,
			DurationDays:    p.DurationDays,
			DailyEarning:    p.DailyEarning,
			BoostMultiplier: p.BoostMultiplier,
		}
	}
	return CatalogResponse{Plans: out}
}

func ToActivePlanResponse(p *ActivePlan) ActivePlanResponse {
	return ActivePlanResponse{
		ID:              p.ID,
		PlanID:          p.PlanID,
		PlanName:        p.PlanName,
		Price:           p.Price,
		DailyEarning:    p.DailyEarning,
		BoostMultiplier: p.BoostMultiplier,
		PurchasedAt:     p.PurchasedAt,
		ExpiresAt:       p.ExpiresAt,
		LastClaimAt:     p.LastClaimAt,
	}
}

func ToActivePlanResponses(plans []ActivePlan) []ActivePlanResponse {
	out := make([]ActivePlanResponse, len(plans))
	for i := range plans {
		out[i] = ToActivePlanResponse(&plans[i])
	}
	return out
}
