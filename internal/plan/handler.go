// AngelaMos | 2026
// handler.go

package plan

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/dmiplatform/rewards-backend/internal/core"
	"github.com/dmiplatform/rewards-backend/internal/middleware"
)

type Handler struct {
	service  *Service
	validate *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/plans", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.ListActive)
		r.Get("/catalog", h.ListCatalog)
		r.Post("/purchase", h.Purchase)
	})
}

func (h *Handler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	core.OK(w, ToCatalogResponse(h.service.ListCatalog()))
}

func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	plans, err := h.service.ListActive(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToActivePlanResponses(plans))
}

func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		core.UnprocessableEntity(w, core.FormatValidationError(err))
		return
	}

	userID := middleware.GetUserID(r.Context())

	p, err := h.service.Purchase(r.Context(), userID, req.PlanID)
	if err != nil {
		if appErr, ok := core.AsAppError(err); ok {
			core.JSONError(w, appErr)
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToActivePlanResponse(p))
}
