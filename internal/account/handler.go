// AngelaMos | 2026
// handler.go

package account

import (
	"errors"
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
	r.Route("/account", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.GetAccount)
	})
}

// EnsureAccount provisions the rewards row before any handler that writes
// balances runs. Sits directly after authentication in the chain.
func EnsureAccount(svc *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := middleware.GetUserID(r.Context())

			if _, err := svc.Ensure(r.Context(), userID); err != nil {
				if errors.Is(err, core.ErrUnauthorized) {
					core.JSONError(w, core.UnauthorizedError("authentication required"))
					return
				}
				core.InternalServerError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	account, err := h.service.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrUnauthorized) {
			core.JSONError(w, core.UnauthorizedError("authentication required"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToAccountResponse(account))
}
