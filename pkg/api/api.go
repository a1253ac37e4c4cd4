// Package api contains shared JSON request/response structs.
// This package is shared between the CLI, the scheduler and the controller.
package api

import "time"

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// GenerateRequest is the request body for triggering a maintenance run.
type GenerateRequest struct {
	// AsOf overrides today's date, formatted as DateLayout.
	AsOf string `json:"as_of,omitempty"`
}

// ItemFailure is one asset or asset type a run could not process.
type ItemFailure struct {
	AssetTypeID       string  `json:"asset_type_id"`
	AssetID           *string `json:"asset_id,omitempty"`
	MaintenanceTypeID string  `json:"maintenance_type_id,omitempty"`
	Error             string  `json:"error"`
}

// RunReportResponse summarises a maintenance run.
type RunReportResponse struct {
	RunID                  string         `json:"run_id"`
	AsOf                   string         `json:"as_of"`
	WorkflowsCreated       int            `json:"workflows_created"`
	DirectSchedulesCreated int            `json:"direct_schedules_created"`
	Skipped                int            `json:"skipped"`
	Failed                 int            `json:"failed"`
	AssetTypesSkipped      int            `json:"asset_types_skipped"`
	SkipReasons            map[string]int `json:"skip_reasons,omitempty"`
	Failures               []ItemFailure  `json:"failures,omitempty"`
}

// EligibilityResponse is the eligibility of one asset for one maintenance type.
type EligibilityResponse struct {
	AssetID           string  `json:"asset_id"`
	AssetTypeID       string  `json:"asset_type_id"`
	MaintenanceTypeID string  `json:"maintenance_type_id"`
	Eligible          bool    `json:"eligible"`
	Reason            string  `json:"reason,omitempty"`
	ReferenceDate     *string `json:"reference_date,omitempty"`
	PlannedDate       *string `json:"planned_date,omitempty"`
	WindowStart       *string `json:"window_start,omitempty"`
	DaysRemaining     int     `json:"days_remaining"`
}

// PreviewResponse is the response body for an eligibility preview.
type PreviewResponse struct {
	AsOf    string                `json:"as_of"`
	Results []EligibilityResponse `json:"results"`
}

// WorkflowStepResponse represents an approval step in API responses.
type WorkflowStepResponse struct {
	ID           string     `json:"id"`
	SequenceNo   int        `json:"sequence_no"`
	JobRoleID    string     `json:"job_role_id"`
	DepartmentID string     `json:"department_id,omitempty"`
	Status       string     `json:"status"`
	ActedBy      *string    `json:"acted_by,omitempty"`
	ActedAt      *time.Time `json:"acted_at,omitempty"`
	Comment      *string    `json:"comment,omitempty"`
}

// WorkflowResponse represents a workflow header with its steps.
type WorkflowResponse struct {
	ID                string                 `json:"id"`
	AssetID           string                 `json:"asset_id"`
	AssetTypeID       string                 `json:"asset_type_id"`
	MaintenanceTypeID string                 `json:"maintenance_type_id"`
	PlannedDate       string                 `json:"planned_date"`
	ActualDate        *time.Time             `json:"actual_date,omitempty"`
	Status            string                 `json:"status"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
	Steps             []WorkflowStepResponse `json:"steps"`
}

// ApproveRequest is the request body for approving the active step.
type ApproveRequest struct {
	// StepNo pins the step being approved. Zero targets the active step.
	StepNo  int    `json:"step_no,omitempty"`
	Comment string `json:"comment,omitempty"`
}

// RejectRequest is the request body for rejecting the active step.
type RejectRequest struct {
	StepNo int    `json:"step_no,omitempty"`
	Reason string `json:"reason"`
}

// DecisionResponse is the workflow state after a decision.
type DecisionResponse struct {
	Workflow WorkflowResponse `json:"workflow"`
	// Replayed is true when the decision had already been applied.
	Replayed bool `json:"replayed"`
}

// WorkflowEventResponse is one audit trail entry.
type WorkflowEventResponse struct {
	ID         int64     `json:"id"`
	SequenceNo *int      `json:"sequence_no,omitempty"`
	Action     string    `json:"action"`
	ActorID    *string   `json:"actor_id,omitempty"`
	Note       *string   `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// HistoryResponse is the audit trail of a workflow or direct schedule.
type HistoryResponse struct {
	Events []WorkflowEventResponse `json:"events"`
}

// NotificationResponse is one pending action.
type NotificationResponse struct {
	UserID            string `json:"user_id"`
	WorkflowID        string `json:"workflow_id"`
	AssetID           string `json:"asset_id"`
	MaintenanceTypeID string `json:"maintenance_type_id"`
	StepID            string `json:"step_id"`
	SequenceNo        int    `json:"sequence_no"`
	JobRoleID         string `json:"job_role_id"`
	DepartmentID      string `json:"department_id,omitempty"`
	PlannedDate       string `json:"planned_date"`
	DaysUntilDue      int    `json:"days_until_due"`
	DaysUntilCutoff   int    `json:"days_until_cutoff"`
	Urgent            bool   `json:"urgent"`
	Overdue           bool   `json:"overdue"`
}

// NotificationsResponse is the response body for notification queries.
type NotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
}

// CompleteScheduleRequest is the request body for completing a direct schedule.
type CompleteScheduleRequest struct {
	// ActualDate defaults to now, formatted as DateLayout.
	ActualDate string `json:"actual_date,omitempty"`
}

// CancelScheduleRequest is the request body for cancelling a direct schedule.
type CancelScheduleRequest struct {
	Reason string `json:"reason,omitempty"`
}

// DirectScheduleResponse represents a direct schedule in API responses.
type DirectScheduleResponse struct {
	ID                string     `json:"id"`
	AssetID           string     `json:"asset_id"`
	AssetTypeID       string     `json:"asset_type_id"`
	MaintenanceTypeID string     `json:"maintenance_type_id"`
	PlannedDate       string     `json:"planned_date"`
	ActualDate        *time.Time `json:"actual_date,omitempty"`
	Status            string     `json:"status"`
}

// CreateUserRequest is the request body for provisioning a user.
type CreateUserRequest struct {
	Name    string   `json:"name"`
	Roles   []string `json:"roles"`
	IsAdmin bool     `json:"is_admin,omitempty"`
}

// CreateUserResponse is the response body after provisioning a user.
type CreateUserResponse struct {
	ID     string   `json:"user_id"`
	Name   string   `json:"name"`
	Roles  []string `json:"roles"`
	ApiKey string   `json:"api_key"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	// Kind classifies domain failures, e.g. "invalid_transition" or "configuration_missing".
	Kind string `json:"kind,omitempty"`
}
