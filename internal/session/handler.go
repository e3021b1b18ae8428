// AngelaMos | 2026
// handler.go

package session

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/manufacto/booking/internal/activity"
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

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/sessions", h.Create)
	r.Get("/sessions/{sessionID}", h.Get)
	r.Put("/sessions/{sessionID}", h.Update)
	r.Get("/activities/{activityID}/sessions/week", h.Week)
	r.Post("/activities/{activityID}/sessions/duplicate-week", h.DuplicateWeek)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	sessions, err := h.service.Create(r.Context(), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, ToSessionResponseList(sessions))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := core.URLID(w, r, "sessionID", ErrSessionNotFound)
	if !ok {
		return
	}

	sess, err := h.service.Get(r.Context(), sessionID)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToSessionResponse(sess))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := core.URLID(w, r, "sessionID", ErrSessionNotFound)
	if !ok {
		return
	}

	var req UpdateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	sess, err := h.service.Update(r.Context(), sessionID, req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToSessionResponse(sess))
}

// Week lists one week of sessions; ?offset defaults to -1, last week.
func (h *Handler) Week(w http.ResponseWriter, r *http.Request) {
	activityID, ok := core.URLID(w, r, "activityID", activity.ErrActivityNotFound)
	if !ok {
		return
	}

	offset := -1
	if raw := r.URL.Query().Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			core.BadRequest(w, "offset must be an integer")
			return
		}
		offset = parsed
	}

	from, to, sessions, err := h.service.Week(r.Context(), activityID, offset)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, WeekResponse{
		WeekStart: from,
		WeekEnd:   to,
		Sessions:  ToSessionResponseList(sessions),
	})
}

func (h *Handler) DuplicateWeek(w http.ResponseWriter, r *http.Request) {
	activityID, ok := core.URLID(w, r, "activityID", activity.ErrActivityNotFound)
	if !ok {
		return
	}

	var req DuplicateWeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		core.BadRequest(w, "invalid request body")
		return
	}

	source, target := req.Offsets()

	created, err := h.service.DuplicateWeek(r.Context(), activityID, source, target)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.CreatedMessage(w, DuplicateWeekResponse{
		Created:  len(created),
		Sessions: ToSessionResponseList(created),
	}, strconv.Itoa(len(created))+" session(s) créée(s)")
}
