// AngelaMos | 2026
// handler.go

package registration

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/manufacto/booking/internal/core"
	"github.com/manufacto/booking/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	limiter func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)

		r.With(limiter).Post("/sessions/{sessionID}/registrations", h.Book)
		r.Post("/account/registrations/{registrationID}/cancel", h.Cancel)
	})
}

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/sessions/{sessionID}/registrations", h.AdminAdd)
	r.Delete("/registrations/{registrationID}", h.AdminRemove)
}

// writeBookingError shows domain refusals as they are and any store
// failure as the generic booking message.
func writeBookingError(w http.ResponseWriter, r *http.Request, err error) {
	if core.IsAppError(err) || errors.Is(err, core.ErrUnauthorized) {
		core.JSONError(w, err)
		return
	}
	core.SetSpanError(r.Context(), err)
	core.FailWithMessage(w, err, MsgBookingFailed)
}

func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := core.URLID(w, r, "sessionID", ErrSessionNotFound)
	if !ok {
		return
	}

	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		core.BadRequest(w, "invalid request body")
		return
	}

	reg, err := h.service.Book(
		r.Context(),
		sessionID,
		middleware.GetUserID(r.Context()),
		req.PaymentType,
	)
	if err != nil {
		writeBookingError(w, r, err)
		return
	}

	core.CreatedMessage(w, ToRegistrationResponse(reg, StatusConfirmed), MsgBookingConfirmed)
}

func (h *Handler) AdminAdd(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := core.URLID(w, r, "sessionID", ErrSessionNotFound)
	if !ok {
		return
	}

	var req AdminAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	reg, err := h.service.AdminAdd(
		r.Context(),
		sessionID,
		req.UserID,
		req.PaymentType,
	)
	if err != nil {
		writeBookingError(w, r, err)
		return
	}

	core.CreatedMessage(w, ToRegistrationResponse(reg, StatusConfirmed), MsgBookingConfirmed)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	registrationID, ok := core.URLID(w, r, "registrationID", ErrRegistrationNotFound)
	if !ok {
		return
	}

	reg, err := h.service.Cancel(
		r.Context(),
		registrationID,
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OKMessage(w, ToRegistrationResponse(reg, StatusCancelled), MsgCancelled)
}

func (h *Handler) AdminRemove(w http.ResponseWriter, r *http.Request) {
	registrationID, ok := core.URLID(w, r, "registrationID", ErrRegistrationNotFound)
	if !ok {
		return
	}

	reg, err := h.service.AdminRemove(r.Context(), registrationID)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OKMessage(w, ToRegistrationResponse(reg, StatusCancelled), MsgCancelled)
}
