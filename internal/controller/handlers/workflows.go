package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"maintplane/internal/controller/middleware"
	"maintplane/pkg/api"
)

// GetWorkflow handles GET /workflows/{id}.
func (h *Handlers) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.httpError(w, "Invalid workflow id", http.StatusBadRequest)
		return
	}

	wf, err := h.service.GetWorkflow(r.Context(), id)
	if err != nil {
		h.domainError(w, r, err)
		return
	}
	h.respondJson(w, http.StatusOK, toWorkflow(wf))
}

// GetHistory handles GET /workflows/{id}/history.
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.httpError(w, "Invalid workflow id", http.StatusBadRequest)
		return
	}

	events, err := h.service.History(r.Context(), id)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	resp := api.HistoryResponse{Events: make([]api.WorkflowEventResponse, 0, len(events))}
	for _, ev := range events {
		resp.Events = append(resp.Events, api.WorkflowEventResponse{
			ID:         ev.ID,
			SequenceNo: ev.SequenceNo,
			Action:     ev.Action,
			ActorID:    idString(ev.ActorID),
			Note:       ev.Note,
			CreatedAt:  ev.CreatedAt,
		})
	}
	h.respondJson(w, http.StatusOK, resp)
}

// Approve handles POST /workflows/{id}/approve.
// The caller must hold the job role of the active step.
func (h *Handlers) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.httpError(w, "Invalid workflow id", http.StatusBadRequest)
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.StepNo < 0 {
		h.httpError(w, "step_no must be positive", http.StatusBadRequest)
		return
	}

	res, err := h.service.ApproveActiveStep(r.Context(), id, userID, req.StepNo, req.Comment)
	if err != nil {
		h.domainError(w, r, err)
		return
	}
	h.respondJson(w, http.StatusOK, api.DecisionResponse{Workflow: toWorkflow(res.Workflow), Replayed: res.Replayed})
}

// Reject handles POST /workflows/{id}/reject. A reason is required.
func (h *Handlers) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.httpError(w, "Invalid workflow id", http.StatusBadRequest)
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Reason) == "" {
		h.httpError(w, "reason is required", http.StatusBadRequest)
		return
	}
	if req.StepNo < 0 {
		h.httpError(w, "step_no must be positive", http.StatusBadRequest)
		return
	}

	res, err := h.service.RejectActiveStep(r.Context(), id, userID, req.StepNo, req.Reason)
	if err != nil {
		h.domainError(w, r, err)
		return
	}
	h.respondJson(w, http.StatusOK, api.DecisionResponse{Workflow: toWorkflow(res.Workflow), Replayed: res.Replayed})
}
