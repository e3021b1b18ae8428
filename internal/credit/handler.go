// AngelaMos | 2026
// handler.go

package credit

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/manufacto/booking/internal/core"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/users/{userID}/credits", h.History)
	r.Post("/users/{userID}/credits", h.AddCredit)
}

func (h *Handler) AddCredit(w http.ResponseWriter, r *http.Request) {
	userID, ok := core.URLID(w, r, "userID", ErrUserNotFound)
	if !ok {
		return
	}

	var req AddCreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	c, err := h.service.AddCredit(r.Context(), userID, req.Amount)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.CreatedMessage(w, ToCreditResponse(c), "Crédits ajoutés")
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := core.URLID(w, r, "userID", ErrUserNotFound)
	if !ok {
		return
	}

	history, err := h.service.History(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	balance, err := h.service.Balance(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, struct {
		BalanceResponse
		History []HistoryEntry `json:"history"`
	}{
		BalanceResponse: BalanceResponse{UserID: userID, Balance: balance},
		History:         history,
	})
}
