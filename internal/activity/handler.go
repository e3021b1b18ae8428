// AngelaMos | 2026
// handler.go

package activity

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/manufacto/booking/internal/core"
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

// RegisterRoutes mounts the public catalog endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/activities", h.List)
	r.Get("/activities/{activityID}", h.Get)
}

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/activities", h.AdminList)
	r.Post("/activities", h.Create)
	r.Get("/activities/{activityID}", h.Get)
	r.Put("/activities/{activityID}", h.Update)
	r.Delete("/activities/{activityID}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	activities, err := h.service.ListCached(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, activities)
}

func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	activities, err := h.service.List(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToActivityResponseList(activities))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	activityID, ok := core.URLID(w, r, "activityID", ErrActivityNotFound)
	if !ok {
		return
	}

	a, err := h.service.Get(r.Context(), activityID)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToActivityResponse(a))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (ActivityRequest, bool) {
	var req ActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return req, false
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return req, false
	}

	return req, true
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	a, err := h.service.Create(r.Context(), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, ToActivityResponse(a))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	activityID, ok := core.URLID(w, r, "activityID", ErrActivityNotFound)
	if !ok {
		return
	}

	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	a, err := h.service.Update(r.Context(), activityID, req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToActivityResponse(a))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	activityID, ok := core.URLID(w, r, "activityID", ErrActivityNotFound)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), activityID); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}
