// AngelaMos | 2026
// handler.go

package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/manufacto/booking/internal/activity"
	"github.com/manufacto/booking/internal/core"
)

const msgSessionsUnavailable = "Impossible de récupérer les sessions disponibles."

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/activities/{activityID}/sessions", h.AvailableSessions)
}

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/board", h.Board)
}

func (h *Handler) AvailableSessions(w http.ResponseWriter, r *http.Request) {
	activityID, ok := core.URLID(w, r, "activityID", activity.ErrActivityNotFound)
	if !ok {
		return
	}

	sessions, err := h.service.AvailableSessions(r.Context(), activityID)
	if err != nil {
		if core.IsAppError(err) {
			core.JSONError(w, err)
			return
		}
		core.FailWithMessage(w, err, msgSessionsUnavailable)
		return
	}

	core.OK(w, sessions)
}

func (h *Handler) Board(w http.ResponseWriter, r *http.Request) {
	board, err := h.service.Board(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, board)
}
