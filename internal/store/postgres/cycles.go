package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"maintplane/internal/store"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const workflowColumns = `id, asset_id, asset_group_id, asset_type_id, maintenance_type_id, planned_date, actual_date, status, created_at, updated_at`

const stepColumns = `id, workflow_id, sequence_no, job_role_id, department_id, status, acted_by, acted_at, comment`

const scheduleColumns = `id, asset_id, asset_type_id, maintenance_type_id, planned_date, actual_date, status, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// ListCycles returns every workflow and direct schedule of the given assets.
func (s *Store) ListCycles(ctx context.Context, assetIDs []uuid.UUID) ([]store.CycleRecord, error) {
	if len(assetIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT id, asset_id, 'workflow', maintenance_type_id, status, actual_date
		FROM maintenance_workflows
		WHERE asset_id = ANY($1)
		UNION ALL
		SELECT id, asset_id, 'direct_schedule', maintenance_type_id, status, actual_date
		FROM direct_schedules
		WHERE asset_id = ANY($1)
	`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(uuidStrings(assetIDs)))
	if err != nil {
		return nil, fmt.Errorf("failed to list cycles: %w", err)
	}
	defer rows.Close()

	var records []store.CycleRecord
	for rows.Next() {
		var r store.CycleRecord
		if err := rows.Scan(&r.ID, &r.AssetID, &r.Kind, &r.MaintenanceTypeID, &r.Status, &r.ActualDate); err != nil {
			return nil, fmt.Errorf("failed to scan cycle: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// claimOpenCycle inserts the asset's open-cycle row. The primary key on
// asset_id makes concurrent claims for the same asset mutually exclusive.
func (s *Store) claimOpenCycle(ctx context.Context, exec store.DBTransaction, assetID, cycleID uuid.UUID, kind store.CycleKind, at time.Time) error {
	query := `
		INSERT INTO asset_open_cycles (asset_id, cycle_id, kind, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (asset_id) DO NOTHING
	`
	res, err := exec.ExecContext(ctx, query, assetID, cycleID, kind, at)
	if err != nil {
		return fmt.Errorf("failed to claim open cycle for asset %s: %w", assetID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrOpenCycleExists
	}
	return nil
}

func (s *Store) releaseOpenCycle(ctx context.Context, exec store.DBTransaction, assetID, cycleID uuid.UUID) error {
	query := `DELETE FROM asset_open_cycles WHERE asset_id = $1 AND cycle_id = $2`
	if _, err := exec.ExecContext(ctx, query, assetID, cycleID); err != nil {
		return fmt.Errorf("failed to release open cycle for asset %s: %w", assetID, err)
	}
	return nil
}

// CreateWorkflow claims the asset's open-cycle slot and inserts the header and its steps.
func (s *Store) CreateWorkflow(ctx context.Context, tx store.DBTransaction, wf *store.Workflow) error {
	exec := s.getExecutor(tx)
	if err := s.claimOpenCycle(ctx, exec, wf.AssetID, wf.ID, store.CycleKindWorkflow, wf.CreatedAt); err != nil {
		return err
	}

	query := `
		INSERT INTO maintenance_workflows (` + workflowColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := exec.ExecContext(ctx, query,
		wf.ID,
		wf.AssetID,
		wf.AssetGroupID,
		wf.AssetTypeID,
		wf.MaintenanceTypeID,
		wf.PlannedDate,
		wf.ActualDate,
		wf.Status,
		wf.CreatedAt,
		wf.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert workflow %s: %w", wf.ID, err)
	}

	stepQuery := `
		INSERT INTO workflow_steps (` + stepColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for _, st := range wf.Steps {
		_, err := exec.ExecContext(ctx, stepQuery,
			st.ID,
			st.WorkflowID,
			st.SequenceNo,
			st.JobRoleID,
			st.DepartmentID,
			st.Status,
			st.ActedBy,
			st.ActedAt,
			st.Comment,
		)
		if err != nil {
			return fmt.Errorf("failed to insert step %d of workflow %s: %w", st.SequenceNo, wf.ID, err)
		}
	}
	return nil
}

func scanWorkflow(row scanner) (*store.Workflow, error) {
	var wf store.Workflow
	err := row.Scan(
		&wf.ID,
		&wf.AssetID,
		&wf.AssetGroupID,
		&wf.AssetTypeID,
		&wf.MaintenanceTypeID,
		&wf.PlannedDate,
		&wf.ActualDate,
		&wf.Status,
		&wf.CreatedAt,
		&wf.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &wf, nil
}

func scanStep(row scanner) (store.WorkflowStep, error) {
	var st store.WorkflowStep
	err := row.Scan(
		&st.ID,
		&st.WorkflowID,
		&st.SequenceNo,
		&st.JobRoleID,
		&st.DepartmentID,
		&st.Status,
		&st.ActedBy,
		&st.ActedAt,
		&st.Comment,
	)
	return st, err
}

// GetWorkflowByID returns a workflow with its steps. Inside a transaction the
// header row stays locked until the transaction ends.
func (s *Store) GetWorkflowByID(ctx context.Context, tx store.DBTransaction, id uuid.UUID) (*store.Workflow, error) {
	exec := s.getExecutor(tx)

	query := `SELECT ` + workflowColumns + ` FROM maintenance_workflows WHERE id = $1`
	if tx != nil {
		query += ` FOR UPDATE`
	}
	wf, err := scanWorkflow(exec.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow %s: %w", id, err)
	}

	stepQuery := `SELECT ` + stepColumns + ` FROM workflow_steps WHERE workflow_id = $1 ORDER BY sequence_no`
	rows, err := exec.QueryContext(ctx, stepQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get steps of workflow %s: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		st, err := scanStep(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		wf.Steps = append(wf.Steps, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return wf, nil
}

// UpdateWorkflow writes header and step state. Steps are written in sequence
// order so that at no point two steps are ACTIVE.
func (s *Store) UpdateWorkflow(ctx context.Context, tx store.DBTransaction, wf *store.Workflow) error {
	exec := s.getExecutor(tx)

	query := `
		UPDATE maintenance_workflows
		SET status = $2, actual_date = $3, updated_at = $4
		WHERE id = $1
	`
	res, err := exec.ExecContext(ctx, query, wf.ID, wf.Status, wf.ActualDate, wf.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update workflow %s: %w", wf.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}

	stepQuery := `
		UPDATE workflow_steps
		SET status = $2, acted_by = $3, acted_at = $4, comment = $5
		WHERE id = $1
	`
	for _, st := range wf.Steps {
		if _, err := exec.ExecContext(ctx, stepQuery, st.ID, st.Status, st.ActedBy, st.ActedAt, st.Comment); err != nil {
			return fmt.Errorf("failed to update step %d of workflow %s: %w", st.SequenceNo, wf.ID, err)
		}
	}

	if !wf.Status.Open() {
		return s.releaseOpenCycle(ctx, exec, wf.AssetID, wf.ID)
	}
	return nil
}

// ListOpenWorkflows returns every PENDING or IN_PROGRESS workflow with its
// steps, earliest planned date first.
func (s *Store) ListOpenWorkflows(ctx context.Context) ([]store.Workflow, error) {
	query := `
		SELECT ` + workflowColumns + `
		FROM maintenance_workflows
		WHERE status IN ('PENDING', 'IN_PROGRESS')
		ORDER BY planned_date, id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list open workflows: %w", err)
	}
	defer rows.Close()

	var workflows []store.Workflow
	index := map[uuid.UUID]int{}
	for rows.Next() {
		wf, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}
		index[wf.ID] = len(workflows)
		workflows = append(workflows, *wf)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(workflows) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(workflows))
	for i, wf := range workflows {
		ids[i] = wf.ID
	}
	stepQuery := `
		SELECT ` + stepColumns + `
		FROM workflow_steps
		WHERE workflow_id = ANY($1)
		ORDER BY workflow_id, sequence_no
	`
	stepRows, err := s.db.QueryContext(ctx, stepQuery, pq.Array(uuidStrings(ids)))
	if err != nil {
		return nil, fmt.Errorf("failed to list open workflow steps: %w", err)
	}
	defer stepRows.Close()
	for stepRows.Next() {
		st, err := scanStep(stepRows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		if i, ok := index[st.WorkflowID]; ok {
			workflows[i].Steps = append(workflows[i].Steps, st)
		}
	}
	return workflows, stepRows.Err()
}

// CreateDirectSchedule claims the asset's open-cycle slot and inserts the schedule.
func (s *Store) CreateDirectSchedule(ctx context.Context, tx store.DBTransaction, ds *store.DirectSchedule) error {
	exec := s.getExecutor(tx)
	if err := s.claimOpenCycle(ctx, exec, ds.AssetID, ds.ID, store.CycleKindDirectSchedule, ds.CreatedAt); err != nil {
		return err
	}

	query := `
		INSERT INTO direct_schedules (` + scheduleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := exec.ExecContext(ctx, query,
		ds.ID,
		ds.AssetID,
		ds.AssetTypeID,
		ds.MaintenanceTypeID,
		ds.PlannedDate,
		ds.ActualDate,
		ds.Status,
		ds.CreatedAt,
		ds.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert direct schedule %s: %w", ds.ID, err)
	}
	return nil
}

// GetDirectScheduleByID returns a direct schedule, locking it inside a transaction.
func (s *Store) GetDirectScheduleByID(ctx context.Context, tx store.DBTransaction, id uuid.UUID) (*store.DirectSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM direct_schedules WHERE id = $1`
	if tx != nil {
		query += ` FOR UPDATE`
	}

	var ds store.DirectSchedule
	err := s.getExecutor(tx).QueryRowContext(ctx, query, id).Scan(
		&ds.ID,
		&ds.AssetID,
		&ds.AssetTypeID,
		&ds.MaintenanceTypeID,
		&ds.PlannedDate,
		&ds.ActualDate,
		&ds.Status,
		&ds.CreatedAt,
		&ds.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get direct schedule %s: %w", id, err)
	}
	return &ds, nil
}

// UpdateDirectSchedule writes schedule state and releases the open-cycle slot once closed.
func (s *Store) UpdateDirectSchedule(ctx context.Context, tx store.DBTransaction, ds *store.DirectSchedule) error {
	exec := s.getExecutor(tx)

	query := `
		UPDATE direct_schedules
		SET status = $2, actual_date = $3, updated_at = $4
		WHERE id = $1
	`
	res, err := exec.ExecContext(ctx, query, ds.ID, ds.Status, ds.ActualDate, ds.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update direct schedule %s: %w", ds.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}

	if !ds.Status.Open() {
		return s.releaseOpenCycle(ctx, exec, ds.AssetID, ds.ID)
	}
	return nil
}

// CountOpenCycles returns the number of assets holding an open cycle.
func (s *Store) CountOpenCycles(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM asset_open_cycles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count open cycles: %w", err)
	}
	return n, nil
}
