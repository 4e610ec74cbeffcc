// AngelaMos | 2026
// handler.go

package claim

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmiplatform/rewards-backend/internal/core"
	"github.com/dmiplatform/rewards-backend/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches the claim endpoints under the plans resource.
// The POST carries the per-user rate limit on top of authentication.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	rateLimiter func(http.Handler) http.Handler,
) {
	r.With(authenticator).
		Get("/plans/{planID}/claim-status", h.ClaimStatus)
	r.With(authenticator, rateLimiter).
		Post("/plans/{planID}/claim", h.Claim)
}

func (h *Handler) ClaimStatus(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	planID := chi.URLParam(r, "planID")

	status, err := h.service.Status(r.Context(), userID, planID)
	if err != nil {
		if _, ok := core.AsAppError(err); ok {
			core.JSONError(w, err)
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, status)
}

func (h *Handler) Claim(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	planID := chi.URLParam(r, "planID")

	var idempotencyKey *string
	if key := r.Header.Get("Idempotency-Key"); key != "" {
		idempotencyKey = &key
	}

	result, err := h.service.Claim(r.Context(), userID, planID, idempotencyKey)
	if err != nil {
		if _, ok := core.AsAppError(err); ok {
			core.JSONError(w, err)
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToClaimResponse(result))
}
