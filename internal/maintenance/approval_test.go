package maintenance

import (
	"fmt"
	"testing"
	"time"

	"maintplane/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeStepChain() []store.SequenceStep {
	// Deliberately unordered: instantiation sorts by sequence number.
	return []store.SequenceStep{
		{SequenceNo: 2, JobRoleID: "supervisor", DepartmentID: "ops"},
		{SequenceNo: 1, JobRoleID: "technician", DepartmentID: "ops"},
		{SequenceNo: 3, JobRoleID: "manager", DepartmentID: "finance"},
	}
}

func newTestWorkflow(t *testing.T) *store.Workflow {
	t.Helper()
	asset := store.Asset{ID: uuid.New(), AssetTypeID: uuid.New()}
	wf, err := NewWorkflow(asset, "pm", date(2024, 7, 1), threeStepChain(), time.Now())
	require.NoError(t, err)
	return wf
}

// requireSequential checks that an in-progress workflow has exactly one
// active step with resolved steps below and queued steps above it.
func requireSequential(t *testing.T, wf *store.Workflow) {
	t.Helper()
	if wf.Status != store.HeaderStatusInProgress {
		return
	}
	active := ActiveStep(wf)
	require.GreaterOrEqual(t, active, 0, "in-progress workflow without active step")
	activeSeq := wf.Steps[active].SequenceNo
	count := 0
	for _, s := range wf.Steps {
		switch {
		case s.Status == store.StepStatusActive:
			count++
		case s.SequenceNo < activeSeq:
			assert.True(t, s.Status.Resolved(), "step %d below active is %s", s.SequenceNo, s.Status)
		default:
			assert.Equal(t, store.StepStatusQueued, s.Status, "step %d above active", s.SequenceNo)
		}
	}
	assert.Equal(t, 1, count, "active step count")
}

func approve(roles ...string) Decision {
	return Decision{Action: ActionApprove, ActorID: uuid.New(), ActorRoles: roles, At: time.Now()}
}

func reject(roles ...string) Decision {
	return Decision{Action: ActionReject, ActorID: uuid.New(), ActorRoles: roles, Note: "not needed", At: time.Now()}
}

func TestValidateSequence(t *testing.T) {
	tests := []struct {
		name    string
		steps   []store.SequenceStep
		wantErr bool
	}{
		{"valid unordered", threeStepChain(), false},
		{"empty", nil, true},
		{"gap", []store.SequenceStep{{SequenceNo: 1, JobRoleID: "a"}, {SequenceNo: 3, JobRoleID: "b"}}, true},
		{"starts at two", []store.SequenceStep{{SequenceNo: 2, JobRoleID: "a"}}, true},
		{"duplicate", []store.SequenceStep{{SequenceNo: 1, JobRoleID: "a"}, {SequenceNo: 1, JobRoleID: "b"}}, true},
		{"missing role", []store.SequenceStep{{SequenceNo: 1, JobRoleID: " "}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSequence(tt.steps)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrConfigurationMissing)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewWorkflow_ActivatesFirstStep(t *testing.T) {
	wf := newTestWorkflow(t)

	assert.Equal(t, store.HeaderStatusInProgress, wf.Status)
	require.Len(t, wf.Steps, 3)
	for i, s := range wf.Steps {
		assert.Equal(t, i+1, s.SequenceNo)
		assert.Equal(t, wf.ID, s.WorkflowID)
	}
	assert.Equal(t, store.StepStatusActive, wf.Steps[0].Status)
	assert.Equal(t, "technician", wf.Steps[0].JobRoleID)
	assert.Equal(t, store.StepStatusQueued, wf.Steps[1].Status)
	assert.Equal(t, store.StepStatusQueued, wf.Steps[2].Status)
	assert.Nil(t, wf.ActualDate)
	requireSequential(t, wf)
}

func TestNewWorkflow_RejectsMalformedChain(t *testing.T) {
	_, err := NewWorkflow(store.Asset{ID: uuid.New()}, "pm", date(2024, 7, 1), []store.SequenceStep{{SequenceNo: 2, JobRoleID: "x"}}, time.Now())
	assert.ErrorIs(t, err, ErrConfigurationMissing)
}

func TestApply_ApproveAllStepsCompletes(t *testing.T) {
	wf := newTestWorkflow(t)

	out, err := Apply(wf, approve("technician"))
	require.NoError(t, err)
	assert.Equal(t, 1, out.Step.SequenceNo)
	require.NotNil(t, out.Activated)
	assert.Equal(t, 2, out.Activated.SequenceNo)
	requireSequential(t, wf)

	_, err = Apply(wf, approve("supervisor"))
	require.NoError(t, err)
	requireSequential(t, wf)

	final := approve("manager")
	out, err = Apply(wf, final)
	require.NoError(t, err)
	assert.Nil(t, out.Activated)
	assert.Equal(t, store.HeaderStatusCompleted, wf.Status)
	require.NotNil(t, wf.ActualDate)
	assert.Equal(t, final.At, *wf.ActualDate)
	for _, s := range wf.Steps {
		assert.Equal(t, store.StepStatusApproved, s.Status)
		assert.NotNil(t, s.ActedBy)
	}
}

func TestApply_RejectCancelsAndFreezes(t *testing.T) {
	wf := newTestWorkflow(t)
	_, err := Apply(wf, approve("technician"))
	require.NoError(t, err)

	out, err := Apply(wf, reject("supervisor"))
	require.NoError(t, err)
	assert.Nil(t, out.Activated)
	assert.Equal(t, store.HeaderStatusCancelled, wf.Status)
	assert.NotNil(t, wf.ActualDate)
	assert.Equal(t, store.StepStatusApproved, wf.Steps[0].Status)
	assert.Equal(t, store.StepStatusRejected, wf.Steps[1].Status)
	require.NotNil(t, wf.Steps[1].Comment)
	assert.Equal(t, "not needed", *wf.Steps[1].Comment)
	assert.Equal(t, store.StepStatusQueued, wf.Steps[2].Status)

	// Nothing can ever leave QUEUED after a rejection.
	_, err = Apply(wf, approve("manager"))
	assert.ErrorIs(t, err, ErrAuthorizationDenied)
	_, err = Apply(wf, Decision{Action: ActionApprove, StepNo: 3, ActorRoles: []string{"manager"}, At: time.Now()})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, store.StepStatusQueued, wf.Steps[2].Status)
}

func TestApply_WrongRoleDenied(t *testing.T) {
	wf := newTestWorkflow(t)

	_, err := Apply(wf, approve("manager"))
	assert.ErrorIs(t, err, ErrAuthorizationDenied)
	assert.Equal(t, store.StepStatusActive, wf.Steps[0].Status)
	assert.Nil(t, wf.Steps[0].ActedBy)
}

func TestApply_QueuedStepIsInvalid(t *testing.T) {
	wf := newTestWorkflow(t)

	_, err := Apply(wf, Decision{Action: ActionApprove, StepNo: 2, ActorRoles: []string{"supervisor"}, At: time.Now()})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = Apply(wf, Decision{Action: ActionApprove, StepNo: 9, ActorRoles: []string{"supervisor"}, At: time.Now()})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	requireSequential(t, wf)
}

func TestApply_RepeatedApprovalIsReplayed(t *testing.T) {
	wf := newTestWorkflow(t)
	d := approve("technician", "supervisor")
	d.StepNo = 1

	first, err := Apply(wf, d)
	require.NoError(t, err)
	assert.False(t, first.Replayed)
	afterFirst := *wf
	afterFirst.Steps = append([]store.WorkflowStep(nil), wf.Steps...)

	second, err := Apply(wf, d)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, afterFirst.Steps, wf.Steps, "second call must not advance step 2")
	assert.Equal(t, store.StepStatusActive, wf.Steps[1].Status)
}

func TestApply_OppositeDecisionOnResolvedStep(t *testing.T) {
	wf := newTestWorkflow(t)
	_, err := Apply(wf, approve("technician"))
	require.NoError(t, err)

	d := reject("technician")
	d.StepNo = 1
	_, err = Apply(wf, d)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApply_TerminalWorkflowReplaysMatchingAction(t *testing.T) {
	wf := newTestWorkflow(t)
	_, err := Apply(wf, reject("technician"))
	require.NoError(t, err)

	out, err := Apply(wf, reject("technician"))
	require.NoError(t, err)
	assert.True(t, out.Replayed)

	_, err = Apply(wf, approve("technician"))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApply_PendingHeaderMovesToInProgress(t *testing.T) {
	wf := newTestWorkflow(t)
	wf.Status = store.HeaderStatusPending

	_, err := Apply(wf, approve("technician"))
	require.NoError(t, err)
	assert.Equal(t, store.HeaderStatusInProgress, wf.Status)
}

func TestApply_UnknownAction(t *testing.T) {
	wf := newTestWorkflow(t)
	_, err := Apply(wf, Decision{Action: "escalate", ActorRoles: []string{"technician"}})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, KindConfigurationMissing, ErrorKind(ValidateSequence(nil)))
	assert.Equal(t, KindPersistenceFailure, ErrorKind(persistence("op", assert.AnError)))
	assert.Equal(t, KindUnknown, ErrorKind(assert.AnError))
	assert.Equal(t, KindNotFound, ErrorKind(fmt.Errorf("load: %w", store.ErrNotFound)))
}
