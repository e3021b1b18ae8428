// AngelaMos | 2026
// handler.go

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/manufacto/booking/internal/core"
	"github.com/manufacto/booking/internal/middleware"
	"github.com/manufacto/booking/internal/user"
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
	r.With(authenticator).Get("/account", h.Account)
}

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/users/{userID}/dossier", h.Dossier)
}

func (h *Handler) Account(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Account(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, view)
}

func (h *Handler) Dossier(w http.ResponseWriter, r *http.Request) {
	userID, ok := core.URLID(w, r, "userID", user.ErrUserNotFound)
	if !ok {
		return
	}

	view, err := h.service.Dossier(r.Context(), userID)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, view)
}
