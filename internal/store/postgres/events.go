package postgres

import (
	"context"
	"fmt"

	"maintplane/internal/store"

	"github.com/google/uuid"
)

// AppendEvent adds an audit trail entry and sets its ID.
func (s *Store) AppendEvent(ctx context.Context, tx store.DBTransaction, ev *store.WorkflowEvent) error {
	query := `
		INSERT INTO workflow_events (cycle_id, sequence_no, action, actor_id, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := s.getExecutor(tx).QueryRowContext(ctx, query,
		ev.CycleID,
		ev.SequenceNo,
		ev.Action,
		ev.ActorID,
		ev.Note,
		ev.CreatedAt,
	).Scan(&ev.ID)
	if err != nil {
		return fmt.Errorf("failed to append %s event for %s: %w", ev.Action, ev.CycleID, err)
	}
	return nil
}

// ListEvents returns the audit trail of a cycle, oldest first.
func (s *Store) ListEvents(ctx context.Context, cycleID uuid.UUID) ([]store.WorkflowEvent, error) {
	query := `
		SELECT id, cycle_id, sequence_no, action, actor_id, note, created_at
		FROM workflow_events
		WHERE cycle_id = $1
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query, cycleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events for %s: %w", cycleID, err)
	}
	defer rows.Close()

	var events []store.WorkflowEvent
	for rows.Next() {
		var ev store.WorkflowEvent
		if err := rows.Scan(&ev.ID, &ev.CycleID, &ev.SequenceNo, &ev.Action, &ev.ActorID, &ev.Note, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
