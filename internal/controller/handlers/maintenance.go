package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"maintplane/internal/logger"
	"maintplane/pkg/api"
)

// Generate handles POST /maintenance/generate (admin only).
// It runs eligibility for every maintained asset as of the given date.
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	var req api.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	today, err := h.parseDate(req.AsOf)
	if err != nil {
		h.httpError(w, "as_of must be formatted as YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	h.run(w, r, today)
}

// InternalGenerate handles POST /internal/maintenance/generate.
// It is the scheduled entry point and always runs as of today.
func (h *Handlers) InternalGenerate(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.service.Today())
}

func (h *Handlers) run(w http.ResponseWriter, r *http.Request, today time.Time) {
	report, err := h.service.RunEligibilityAndInstantiate(r.Context(), today)
	log := logger.FromContext(r.Context(), h.logger)
	if err != nil {
		// Cycles created before the interruption are committed; keep their counts.
		if report != nil {
			log.Warn("maintenance run interrupted",
				"run_id", report.RunID,
				"workflows_created", report.WorkflowsCreated,
				"direct_schedules_created", report.DirectSchedulesCreated,
				"skipped", report.Skipped,
				"failed", report.Failed,
				"error", err,
			)
		}
		h.domainError(w, r, err)
		return
	}
	log.Info("maintenance run completed",
		"run_id", report.RunID,
		"workflows_created", report.WorkflowsCreated,
		"direct_schedules_created", report.DirectSchedulesCreated,
		"failed", report.Failed,
	)
	h.respondJson(w, http.StatusOK, toRunReport(report))
}

// Preview handles GET /maintenance/preview?as_of=YYYY-MM-DD (admin only).
func (h *Handlers) Preview(w http.ResponseWriter, r *http.Request) {
	today, err := h.parseDate(r.URL.Query().Get("as_of"))
	if err != nil {
		h.httpError(w, "as_of must be formatted as YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	results, err := h.service.PreviewEligibility(r.Context(), today)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	resp := api.PreviewResponse{
		AsOf:    today.Format(api.DateLayout),
		Results: make([]api.EligibilityResponse, 0, len(results)),
	}
	for _, e := range results {
		resp.Results = append(resp.Results, api.EligibilityResponse{
			AssetID:           e.AssetID.String(),
			AssetTypeID:       e.AssetTypeID.String(),
			MaintenanceTypeID: e.MaintenanceTypeID,
			Eligible:          e.Eligible,
			Reason:            e.Reason,
			ReferenceDate:     dateString(e.ReferenceDate),
			PlannedDate:       dateString(e.PlannedDate),
			WindowStart:       dateString(e.WindowStart),
			DaysRemaining:     e.DaysRemaining,
		})
	}
	h.respondJson(w, http.StatusOK, resp)
}
