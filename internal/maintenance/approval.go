package maintenance

import (
	"fmt"
	"slices"
	"time"

	"maintplane/internal/store"

	"github.com/google/uuid"
)

// Action is a decision taken on an approval step.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

func (a Action) stepStatus() store.StepStatus {
	if a == ActionReject {
		return store.StepStatusRejected
	}
	return store.StepStatusApproved
}

// Decision is one approve or reject request against a workflow.
type Decision struct {
	Action Action
	// StepNo targets a specific step. Zero means the current active step.
	StepNo     int
	ActorID    uuid.UUID
	ActorRoles []string
	Note       string
	At         time.Time
	// ReplayWindow bounds how long after resolving a step the same actor's
	// untargeted repeat of the same action is treated as a replay.
	ReplayWindow time.Duration
}

// Outcome describes what Apply did.
type Outcome struct {
	// Replayed is true when the targeted step was already resolved by the
	// same action and nothing changed.
	Replayed bool
	// Step is the step the decision applied to.
	Step store.WorkflowStep
	// Activated is the step that became active, if any.
	Activated *store.WorkflowStep
}

// start activates the lowest queued step of a freshly built workflow.
func start(wf *store.Workflow, now time.Time) {
	if len(wf.Steps) == 0 {
		return
	}
	wf.Steps[0].Status = store.StepStatusActive
	wf.Status = store.HeaderStatusInProgress
	wf.UpdatedAt = now
}

// ActiveStep returns the index of the step awaiting action, or -1.
func ActiveStep(wf *store.Workflow) int {
	for i := range wf.Steps {
		if wf.Steps[i].Status == store.StepStatusActive {
			return i
		}
	}
	return -1
}

func stepIndex(wf *store.Workflow, sequenceNo int) int {
	for i := range wf.Steps {
		if wf.Steps[i].SequenceNo == sequenceNo {
			return i
		}
	}
	return -1
}

func lastResolved(wf *store.Workflow) int {
	idx := -1
	for i := range wf.Steps {
		if wf.Steps[i].Status.Resolved() && (idx < 0 || wf.Steps[i].SequenceNo > wf.Steps[idx].SequenceNo) {
			idx = i
		}
	}
	return idx
}

// Apply advances wf by one decision. It mutates wf in place. On error wf is
// left untouched.
func Apply(wf *store.Workflow, d Decision) (Outcome, error) {
	idx, err := target(wf, d)
	if err != nil {
		return Outcome{}, err
	}
	step := &wf.Steps[idx]

	if !slices.Contains(d.ActorRoles, step.JobRoleID) {
		return Outcome{}, fmt.Errorf("%w: step %d requires job role %q", ErrAuthorizationDenied, step.SequenceNo, step.JobRoleID)
	}

	if step.Status.Resolved() {
		if step.Status != d.Action.stepStatus() {
			return Outcome{}, fmt.Errorf("%w: step %d is already %s", ErrInvalidTransition, step.SequenceNo, step.Status)
		}
		return Outcome{Replayed: true, Step: *step}, nil
	}

	actor := d.ActorID
	at := d.At
	step.Status = d.Action.stepStatus()
	step.ActedBy = &actor
	step.ActedAt = &at
	if d.Note != "" {
		note := d.Note
		step.Comment = &note
	}
	if wf.Status == store.HeaderStatusPending {
		wf.Status = store.HeaderStatusInProgress
	}
	wf.UpdatedAt = at

	out := Outcome{Step: *step}
	switch d.Action {
	case ActionReject:
		// Remaining queued steps stay queued for the audit trail.
		wf.Status = store.HeaderStatusCancelled
		wf.ActualDate = &at
	default:
		if next := stepIndex(wf, step.SequenceNo+1); next >= 0 {
			wf.Steps[next].Status = store.StepStatusActive
			activated := wf.Steps[next]
			out.Activated = &activated
		} else {
			wf.Status = store.HeaderStatusCompleted
			wf.ActualDate = &at
		}
	}
	return out, nil
}

// target picks the step a decision applies to without mutating wf.
func target(wf *store.Workflow, d Decision) (int, error) {
	if d.Action != ActionApprove && d.Action != ActionReject {
		return -1, fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, d.Action)
	}

	if d.StepNo > 0 {
		idx := stepIndex(wf, d.StepNo)
		if idx < 0 {
			return -1, fmt.Errorf("%w: workflow has no step %d", ErrInvalidTransition, d.StepNo)
		}
		switch wf.Steps[idx].Status {
		case store.StepStatusActive, store.StepStatusApproved, store.StepStatusRejected:
			return idx, nil
		}
		return -1, fmt.Errorf("%w: step %d is %s", ErrInvalidTransition, d.StepNo, wf.Steps[idx].Status)
	}

	if idx := recentByActor(wf, d); idx >= 0 {
		return idx, nil
	}
	if idx := ActiveStep(wf); idx >= 0 {
		if !wf.Status.Open() {
			return -1, fmt.Errorf("%w: workflow is %s", ErrInvalidTransition, wf.Status)
		}
		return idx, nil
	}
	if !wf.Status.Open() {
		if idx := lastResolved(wf); idx >= 0 {
			return idx, nil
		}
	}
	return -1, fmt.Errorf("%w: workflow %s has no active step", ErrInvalidTransition, wf.ID)
}

// recentByActor returns the last resolved step when d repeats it: same actor,
// same action, inside the replay window. Otherwise it returns -1.
func recentByActor(wf *store.Workflow, d Decision) int {
	if !wf.Status.Open() || d.ReplayWindow <= 0 {
		return -1
	}
	idx := lastResolved(wf)
	if idx < 0 {
		return -1
	}
	step := wf.Steps[idx]
	if step.Status != d.Action.stepStatus() || step.ActedBy == nil || *step.ActedBy != d.ActorID || step.ActedAt == nil {
		return -1
	}
	if d.At.Sub(*step.ActedAt) > d.ReplayWindow {
		return -1
	}
	return idx
}
