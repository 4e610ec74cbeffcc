// AngelaMos | 2026
// handler.go

package boost

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

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.With(authenticator).Get("/mining/boost", h.EffectiveBoost)
}

func (h *Handler) EffectiveBoost(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	boost, err := h.service.Effective(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, boost)
}
