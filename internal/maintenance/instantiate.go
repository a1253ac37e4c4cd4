package maintenance

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"maintplane/internal/store"

	"github.com/google/uuid"
)

// ValidateSequence checks that an approval chain is usable: non-empty,
// numbered 1..N without gaps or duplicates, and every step bound to a job role.
func ValidateSequence(steps []store.SequenceStep) error {
	if len(steps) == 0 {
		return fmt.Errorf("%w: no approval sequence", ErrConfigurationMissing)
	}
	ordered := sortedSequence(steps)
	for i, s := range ordered {
		if s.SequenceNo != i+1 {
			return fmt.Errorf("%w: approval sequence is not contiguous at step %d (found %d)", ErrConfigurationMissing, i+1, s.SequenceNo)
		}
		if strings.TrimSpace(s.JobRoleID) == "" {
			return fmt.Errorf("%w: approval step %d has no job role", ErrConfigurationMissing, s.SequenceNo)
		}
	}
	return nil
}

func sortedSequence(steps []store.SequenceStep) []store.SequenceStep {
	ordered := append([]store.SequenceStep(nil), steps...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SequenceNo < ordered[j].SequenceNo
	})
	return ordered
}

// NewWorkflow expands an approval chain into a workflow for one asset.
// The lowest step is activated and the header is IN_PROGRESS on return.
func NewWorkflow(asset store.Asset, maintenanceTypeID string, planned time.Time, steps []store.SequenceStep, now time.Time) (*store.Workflow, error) {
	if err := ValidateSequence(steps); err != nil {
		return nil, err
	}

	wf := &store.Workflow{
		ID:                uuid.New(),
		AssetID:           asset.ID,
		AssetGroupID:      asset.AssetGroupID,
		AssetTypeID:       asset.AssetTypeID,
		MaintenanceTypeID: maintenanceTypeID,
		PlannedDate:       Day(planned),
		Status:            store.HeaderStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	for _, s := range sortedSequence(steps) {
		wf.Steps = append(wf.Steps, store.WorkflowStep{
			ID:           uuid.New(),
			WorkflowID:   wf.ID,
			SequenceNo:   s.SequenceNo,
			JobRoleID:    s.JobRoleID,
			DepartmentID: s.DepartmentID,
			Status:       store.StepStatusQueued,
		})
	}

	start(wf, now)
	return wf, nil
}

// NewDirectSchedule builds the bypass record for an asset whose type has no
// usable approval chain.
func NewDirectSchedule(asset store.Asset, maintenanceTypeID string, planned time.Time, now time.Time) *store.DirectSchedule {
	return &store.DirectSchedule{
		ID:                uuid.New(),
		AssetID:           asset.ID,
		AssetTypeID:       asset.AssetTypeID,
		MaintenanceTypeID: maintenanceTypeID,
		PlannedDate:       Day(planned),
		Status:            store.HeaderStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}
