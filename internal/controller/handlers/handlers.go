// Package handlers contains HTTP handlers for the controller API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"maintplane/internal/logger"
	"maintplane/internal/maintenance"
	"maintplane/internal/store"
	"maintplane/pkg/api"

	"github.com/google/uuid"
)

// StoreFactory combines the persistence the handlers use directly.
type StoreFactory interface {
	BeginTx(ctx context.Context) (store.Tx, error)
	Ping(ctx context.Context) error
	store.UserStore
}

// MaintenanceService is the domain surface exposed over HTTP.
type MaintenanceService interface {
	Today() time.Time
	RunEligibilityAndInstantiate(ctx context.Context, today time.Time) (*maintenance.RunReport, error)
	PreviewEligibility(ctx context.Context, today time.Time) ([]maintenance.Eligibility, error)
	GetWorkflow(ctx context.Context, workflowID uuid.UUID) (*store.Workflow, error)
	History(ctx context.Context, cycleID uuid.UUID) ([]store.WorkflowEvent, error)
	ApproveActiveStep(ctx context.Context, workflowID, userID uuid.UUID, stepNo int, comment string) (*maintenance.DecisionResult, error)
	RejectActiveStep(ctx context.Context, workflowID, userID uuid.UUID, stepNo int, reason string) (*maintenance.DecisionResult, error)
	ProjectNotifications(ctx context.Context, userID *uuid.UUID, today time.Time) ([]maintenance.Notification, error)
	CompleteDirectSchedule(ctx context.Context, scheduleID, userID uuid.UUID, actual *time.Time) (*store.DirectSchedule, error)
	CancelDirectSchedule(ctx context.Context, scheduleID, userID uuid.UUID, reason string) (*store.DirectSchedule, error)
}

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	service MaintenanceService
	store   StoreFactory
	logger  *slog.Logger
}

// New creates a new Handlers instance.
func New(svc MaintenanceService, s StoreFactory, log *slog.Logger) *Handlers {
	if log == nil {
		log = logger.Discard()
	}
	return &Handlers{service: svc, store: s, logger: log}
}

// A helper function to write standard JSON responses.
func (h *Handlers) respondJson(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// A helper function to return consistent error messages.
func (h *Handlers) httpError(w http.ResponseWriter, message string, code int) {
	h.respondJson(w, code, api.ErrorResponse{
		Error: message,
		Code:  strconv.Itoa(code),
	})
}

// domainError maps a service error to its HTTP status and error kind.
func (h *Handlers) domainError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, maintenance.ErrInvalidTransition), errors.Is(err, maintenance.ErrDuplicateCycle):
		status = http.StatusConflict
	case errors.Is(err, maintenance.ErrAuthorizationDenied):
		status = http.StatusForbidden
	case errors.Is(err, maintenance.ErrConfigurationMissing):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, maintenance.ErrPersistenceFailure):
		status = http.StatusServiceUnavailable
	}

	message := err.Error()
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context(), h.logger).Error("request failed", "path", r.URL.Path, "error", err)
		message = http.StatusText(status)
	}
	h.respondJson(w, status, api.ErrorResponse{
		Error: message,
		Code:  strconv.Itoa(status),
		Kind:  maintenance.ErrorKind(err),
	})
}

// parseDate parses an optional DateLayout value, falling back to today.
func (h *Handlers) parseDate(value string) (time.Time, error) {
	if value == "" {
		return h.service.Today(), nil
	}
	d, err := time.Parse(api.DateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return maintenance.Day(d), nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue("id"))
}

func dateString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(api.DateLayout)
	return &s
}

func idString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func toRunReport(r *maintenance.RunReport) api.RunReportResponse {
	resp := api.RunReportResponse{
		RunID:                  r.RunID,
		AsOf:                   r.AsOf.Format(api.DateLayout),
		WorkflowsCreated:       r.WorkflowsCreated,
		DirectSchedulesCreated: r.DirectSchedulesCreated,
		Skipped:                r.Skipped,
		Failed:                 r.Failed,
		AssetTypesSkipped:      r.AssetTypesSkipped,
		SkipReasons:            r.SkipReasons,
	}
	for _, f := range r.Failures {
		resp.Failures = append(resp.Failures, api.ItemFailure{
			AssetTypeID:       f.AssetTypeID.String(),
			AssetID:           idString(f.AssetID),
			MaintenanceTypeID: f.MaintenanceTypeID,
			Error:             f.Error,
		})
	}
	return resp
}

func toWorkflow(wf *store.Workflow) api.WorkflowResponse {
	resp := api.WorkflowResponse{
		ID:                wf.ID.String(),
		AssetID:           wf.AssetID.String(),
		AssetTypeID:       wf.AssetTypeID.String(),
		MaintenanceTypeID: wf.MaintenanceTypeID,
		PlannedDate:       wf.PlannedDate.Format(api.DateLayout),
		ActualDate:        wf.ActualDate,
		Status:            string(wf.Status),
		CreatedAt:         wf.CreatedAt,
		UpdatedAt:         wf.UpdatedAt,
		Steps:             make([]api.WorkflowStepResponse, 0, len(wf.Steps)),
	}
	for _, st := range wf.Steps {
		resp.Steps = append(resp.Steps, api.WorkflowStepResponse{
			ID:           st.ID.String(),
			SequenceNo:   st.SequenceNo,
			JobRoleID:    st.JobRoleID,
			DepartmentID: st.DepartmentID,
			Status:       string(st.Status),
			ActedBy:      idString(st.ActedBy),
			ActedAt:      st.ActedAt,
			Comment:      st.Comment,
		})
	}
	return resp
}

func toDirectSchedule(ds *store.DirectSchedule) api.DirectScheduleResponse {
	return api.DirectScheduleResponse{
		ID:                ds.ID.String(),
		AssetID:           ds.AssetID.String(),
		AssetTypeID:       ds.AssetTypeID.String(),
		MaintenanceTypeID: ds.MaintenanceTypeID,
		PlannedDate:       ds.PlannedDate.Format(api.DateLayout),
		ActualDate:        ds.ActualDate,
		Status:            string(ds.Status),
	}
}
