package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"maintplane/internal/logger"
	"maintplane/internal/store"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DecisionResult is the workflow state after an approve or reject call.
type DecisionResult struct {
	Workflow *store.Workflow
	// Replayed is true when the call repeated an earlier decision and changed nothing.
	Replayed bool
}

// ApproveActiveStep approves the active step of a workflow on behalf of userID.
// stepNo, when non-zero, pins the step the caller saw so that a repeated call
// is a no-op instead of approving the next step. Without stepNo, a repeat by the
// same user within the replay window is a no-op; a user holding the next
// step's role too must pin stepNo to approve it inside that window.
func (s *Service) ApproveActiveStep(ctx context.Context, workflowID, userID uuid.UUID, stepNo int, comment string) (*DecisionResult, error) {
	return s.decide(ctx, workflowID, userID, Decision{Action: ActionApprove, StepNo: stepNo, Note: comment})
}

// RejectActiveStep rejects the active step and cancels the workflow.
func (s *Service) RejectActiveStep(ctx context.Context, workflowID, userID uuid.UUID, stepNo int, reason string) (*DecisionResult, error) {
	return s.decide(ctx, workflowID, userID, Decision{Action: ActionReject, StepNo: stepNo, Note: reason})
}

func (s *Service) decide(ctx context.Context, workflowID, userID uuid.UUID, d Decision) (*DecisionResult, error) {
	ctx, span := s.tracer.Start(ctx, "maintenance.decide",
		trace.WithAttributes(
			attribute.String("workflow.id", workflowID.String()),
			attribute.String("decision.action", string(d.Action)),
		),
	)
	defer span.End()
	log := logger.FromContext(ctx, s.logger).With("workflow_id", workflowID, "user_id", userID, "action", d.Action)

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, persistence("begin transaction", err)
	}
	defer tx.Rollback()

	wf, err := s.store.GetWorkflowByID(ctx, tx, workflowID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, persistence("load workflow", err)
	}

	// Roles are read under the workflow lock so the check and the write see
	// the same membership.
	roles, err := s.store.UserRolesTx(ctx, tx, userID)
	if err != nil {
		return nil, persistence("resolve user roles", err)
	}

	d.ActorID = userID
	d.ActorRoles = roles
	d.At = s.now().UTC()
	d.ReplayWindow = s.config.ReplayWindow

	out, err := Apply(wf, d)
	if err != nil {
		span.RecordError(err)
		log.Info("decision refused", "error", err)
		return nil, err
	}
	if out.Replayed {
		s.metrics.decided(ctx, d.Action, true)
		return &DecisionResult{Workflow: wf, Replayed: true}, nil
	}

	if err := s.store.UpdateWorkflow(ctx, tx, wf); err != nil {
		return nil, persistence("update workflow", err)
	}

	seq := out.Step.SequenceNo
	action := EventApproved
	if d.Action == ActionReject {
		action = EventRejected
	}
	if err := s.appendEvent(ctx, tx, wf.ID, &seq, action, &userID, d.Note); err != nil {
		return nil, err
	}
	if out.Activated != nil {
		next := out.Activated.SequenceNo
		if err := s.appendEvent(ctx, tx, wf.ID, &next, EventActivated, nil, ""); err != nil {
			return nil, err
		}
	}
	switch wf.Status {
	case store.HeaderStatusCompleted:
		err = s.appendEvent(ctx, tx, wf.ID, nil, EventCompleted, &userID, "")
	case store.HeaderStatusCancelled:
		err = s.appendEvent(ctx, tx, wf.ID, nil, EventCancelled, &userID, "")
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, persistence("commit", err)
	}

	s.metrics.decided(ctx, d.Action, false)
	log.Info("decision applied", "sequence_no", seq, "workflow_status", wf.Status)
	return &DecisionResult{Workflow: wf}, nil
}

// GetWorkflow returns a workflow with its steps.
func (s *Service) GetWorkflow(ctx context.Context, workflowID uuid.UUID) (*store.Workflow, error) {
	wf, err := s.store.GetWorkflowByID(ctx, nil, workflowID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, persistence("load workflow", err)
	}
	return wf, nil
}

// History returns the audit trail of a workflow or direct schedule.
func (s *Service) History(ctx context.Context, cycleID uuid.UUID) ([]store.WorkflowEvent, error) {
	events, err := s.store.ListEvents(ctx, cycleID)
	if err != nil {
		return nil, persistence("list events", err)
	}
	return events, nil
}

// ProjectNotifications returns the pending actions of userID, or of every
// role holder when userID is nil.
func (s *Service) ProjectNotifications(ctx context.Context, userID *uuid.UUID, today time.Time) ([]Notification, error) {
	types, err := s.store.ListAssetTypes(ctx)
	if err != nil {
		return nil, persistence("list asset types", err)
	}
	leadTimes := make(map[uuid.UUID]int, len(types))
	for _, at := range types {
		leadTimes[at.ID] = s.calc.LeadTime(at)
	}

	open, err := s.store.ListOpenWorkflows(ctx)
	if err != nil {
		return nil, persistence("list open workflows", err)
	}

	p := NewProjector(s.store, func(id uuid.UUID) int {
		if lt, ok := leadTimes[id]; ok {
			return lt
		}
		return s.calc.DefaultLeadTimeDays
	})
	return p.Project(ctx, open, userID, today)
}

// CompleteDirectSchedule marks a direct schedule as performed. actual defaults to today.
func (s *Service) CompleteDirectSchedule(ctx context.Context, scheduleID, userID uuid.UUID, actual *time.Time) (*store.DirectSchedule, error) {
	return s.closeDirectSchedule(ctx, scheduleID, userID, store.HeaderStatusCompleted, actual, "")
}

// CancelDirectSchedule cancels a direct schedule.
func (s *Service) CancelDirectSchedule(ctx context.Context, scheduleID, userID uuid.UUID, reason string) (*store.DirectSchedule, error) {
	return s.closeDirectSchedule(ctx, scheduleID, userID, store.HeaderStatusCancelled, nil, reason)
}

func (s *Service) closeDirectSchedule(ctx context.Context, scheduleID, userID uuid.UUID, status store.HeaderStatus, actual *time.Time, note string) (*store.DirectSchedule, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, persistence("begin transaction", err)
	}
	defer tx.Rollback()

	ds, err := s.store.GetDirectScheduleByID(ctx, tx, scheduleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, persistence("load direct schedule", err)
	}

	if !ds.Status.Open() {
		if ds.Status == status {
			return ds, nil
		}
		return nil, fmt.Errorf("%w: direct schedule is %s", ErrInvalidTransition, ds.Status)
	}

	now := s.now().UTC()
	stamp := now
	if actual != nil {
		stamp = *actual
	}
	ds.Status = status
	ds.ActualDate = &stamp
	ds.UpdatedAt = now

	if err := s.store.UpdateDirectSchedule(ctx, tx, ds); err != nil {
		return nil, persistence("update direct schedule", err)
	}
	action := EventCompleted
	if status == store.HeaderStatusCancelled {
		action = EventCancelled
	}
	if err := s.appendEvent(ctx, tx, ds.ID, nil, action, &userID, note); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, persistence("commit", err)
	}
	return ds, nil
}
