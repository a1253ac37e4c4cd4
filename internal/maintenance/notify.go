package maintenance

import (
	"context"
	"slices"
	"sort"
	"time"

	"maintplane/internal/store"

	"github.com/google/uuid"
)

// RoleResolver resolves job role membership. Identity and tenancy live
// behind it.
type RoleResolver interface {
	RoleHolders(ctx context.Context, jobRoleID string) ([]uuid.UUID, error)
	UserRoles(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// Notification is one item requiring a user's action.
type Notification struct {
	UserID            uuid.UUID `json:"user_id"`
	WorkflowID        uuid.UUID `json:"workflow_id"`
	AssetID           uuid.UUID `json:"asset_id"`
	MaintenanceTypeID string    `json:"maintenance_type_id"`
	StepID            uuid.UUID `json:"step_id"`
	SequenceNo        int       `json:"sequence_no"`
	JobRoleID         string    `json:"job_role_id"`
	DepartmentID      string    `json:"department_id"`
	PlannedDate       time.Time `json:"planned_date"`
	DaysUntilDue      int       `json:"days_until_due"`
	DaysUntilCutoff   int       `json:"days_until_cutoff"`
	// Urgent is set once the eligibility cutoff has been reached.
	Urgent bool `json:"urgent"`
	// Overdue is set once the planned date has been reached.
	Overdue bool `json:"overdue"`
}

// Projector derives pending actions from open workflows. It never writes.
type Projector struct {
	roles    RoleResolver
	leadTime func(assetTypeID uuid.UUID) int
}

// NewProjector returns a projector. leadTime maps an asset type to its lead time in days.
func NewProjector(roles RoleResolver, leadTime func(assetTypeID uuid.UUID) int) *Projector {
	return &Projector{roles: roles, leadTime: leadTime}
}

// Project returns one notification per (open workflow, holder of its active
// step's role). When userID is non-nil only that user's items are returned.
func (p *Projector) Project(ctx context.Context, open []store.Workflow, userID *uuid.UUID, today time.Time) ([]Notification, error) {
	today = Day(today)

	var userRoles []string
	if userID != nil {
		roles, err := p.roles.UserRoles(ctx, *userID)
		if err != nil {
			return nil, persistence("resolve user roles", err)
		}
		userRoles = roles
	}

	holders := map[string][]uuid.UUID{}
	var out []Notification
	for i := range open {
		wf := &open[i]
		if !wf.Status.Open() {
			continue
		}
		idx := ActiveStep(wf)
		if idx < 0 {
			continue
		}
		step := wf.Steps[idx]

		var recipients []uuid.UUID
		if userID != nil {
			if !slices.Contains(userRoles, step.JobRoleID) {
				continue
			}
			recipients = []uuid.UUID{*userID}
		} else {
			ids, ok := holders[step.JobRoleID]
			if !ok {
				var err error
				ids, err = p.roles.RoleHolders(ctx, step.JobRoleID)
				if err != nil {
					return nil, persistence("resolve role holders", err)
				}
				holders[step.JobRoleID] = ids
			}
			recipients = ids
		}

		planned := Day(wf.PlannedDate)
		cutoff := planned.AddDate(0, 0, -p.leadTime(wf.AssetTypeID))
		untilDue := DaysBetween(today, planned)
		untilCutoff := DaysBetween(today, cutoff)
		for _, uid := range recipients {
			out = append(out, Notification{
				UserID:            uid,
				WorkflowID:        wf.ID,
				AssetID:           wf.AssetID,
				MaintenanceTypeID: wf.MaintenanceTypeID,
				StepID:            step.ID,
				SequenceNo:        step.SequenceNo,
				JobRoleID:         step.JobRoleID,
				DepartmentID:      step.DepartmentID,
				PlannedDate:       planned,
				DaysUntilDue:      untilDue,
				DaysUntilCutoff:   untilCutoff,
				Urgent:            untilCutoff <= 0,
				Overdue:           untilDue <= 0,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PlannedDate.Equal(out[j].PlannedDate) {
			return out[i].PlannedDate.Before(out[j].PlannedDate)
		}
		if out[i].WorkflowID != out[j].WorkflowID {
			return out[i].WorkflowID.String() < out[j].WorkflowID.String()
		}
		return out[i].UserID.String() < out[j].UserID.String()
	})
	return out, nil
}
