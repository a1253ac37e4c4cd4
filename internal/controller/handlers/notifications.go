package handlers

import (
	"net/http"

	"maintplane/internal/controller/middleware"
	"maintplane/pkg/api"
)

// Notifications handles GET /notifications.
// Administrators may pass all=true to see every role holder's items.
func (h *Handlers) Notifications(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.httpError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	filter := &user.ID
	if r.URL.Query().Get("all") == "true" {
		if !user.IsAdmin {
			h.httpError(w, "Administrator role required", http.StatusForbidden)
			return
		}
		filter = nil
	}

	items, err := h.service.ProjectNotifications(r.Context(), filter, h.service.Today())
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	resp := api.NotificationsResponse{Notifications: make([]api.NotificationResponse, 0, len(items))}
	for _, n := range items {
		resp.Notifications = append(resp.Notifications, api.NotificationResponse{
			UserID:            n.UserID.String(),
			WorkflowID:        n.WorkflowID.String(),
			AssetID:           n.AssetID.String(),
			MaintenanceTypeID: n.MaintenanceTypeID,
			StepID:            n.StepID.String(),
			SequenceNo:        n.SequenceNo,
			JobRoleID:         n.JobRoleID,
			DepartmentID:      n.DepartmentID,
			PlannedDate:       n.PlannedDate.Format(api.DateLayout),
			DaysUntilDue:      n.DaysUntilDue,
			DaysUntilCutoff:   n.DaysUntilCutoff,
			Urgent:            n.Urgent,
			Overdue:           n.Overdue,
		})
	}
	h.respondJson(w, http.StatusOK, resp)
}
