package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"maintplane/internal/controller/middleware"
	"maintplane/pkg/api"
)

// CompleteSchedule handles POST /schedules/{id}/complete.
func (h *Handlers) CompleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.httpError(w, "Invalid schedule id", http.StatusBadRequest)
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.CompleteScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var actual *time.Time
	if req.ActualDate != "" {
		d, err := time.Parse(api.DateLayout, req.ActualDate)
		if err != nil {
			h.httpError(w, "actual_date must be formatted as YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		actual = &d
	}

	ds, err := h.service.CompleteDirectSchedule(r.Context(), id, userID, actual)
	if err != nil {
		h.domainError(w, r, err)
		return
	}
	h.respondJson(w, http.StatusOK, toDirectSchedule(ds))
}

// CancelSchedule handles POST /schedules/{id}/cancel.
func (h *Handlers) CancelSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.httpError(w, "Invalid schedule id", http.StatusBadRequest)
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.CancelScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ds, err := h.service.CancelDirectSchedule(r.Context(), id, userID, req.Reason)
	if err != nil {
		h.domainError(w, r, err)
		return
	}
	h.respondJson(w, http.StatusOK, toDirectSchedule(ds))
}
