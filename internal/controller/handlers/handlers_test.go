package handlers

import (
	"context"
	"database/sql"
	"time"

	"maintplane/internal/maintenance"
	"maintplane/internal/store"

	"github.com/google/uuid"
)

// Mock transaction
type mockTx struct {
	committed bool
}

func (m *mockTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (m *mockTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (m *mockTx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}

func (m *mockTx) Commit() error {
	m.committed = true
	return nil
}

func (m *mockTx) Rollback() error { return nil }

// Mock Store
type mockStore struct {
	beginTxErr    error
	pingErr       error
	createUserErr error

	// Spies
	tx              *mockTx
	createdUser     *store.User
	capturedKeyHash string
	capturedRoles   []string
}

func (m *mockStore) BeginTx(ctx context.Context) (store.Tx, error) {
	if m.beginTxErr != nil {
		return nil, m.beginTxErr
	}
	m.tx = &mockTx{}
	return m.tx, nil
}

func (m *mockStore) Ping(ctx context.Context) error {
	return m.pingErr
}

func (m *mockStore) CreateUser(ctx context.Context, tx store.DBTransaction, user *store.User, hashedKey string, roles []string) error {
	if m.createUserErr != nil {
		return m.createUserErr
	}
	m.createdUser = user
	m.capturedKeyHash = hashedKey
	m.capturedRoles = roles
	return nil
}

func (m *mockStore) GetUserByID(ctx context.Context, id uuid.UUID) (*store.User, error) {
	return nil, store.ErrNotFound
}

func (m *mockStore) GetUserByAPIKeyHash(ctx context.Context, hash string) (*store.User, error) {
	return nil, store.ErrNotFound
}

// Mock Service
type mockService struct {
	today time.Time

	runResp      *maintenance.RunReport
	runErr       error
	previewResp  []maintenance.Eligibility
	previewErr   error
	workflowResp *store.Workflow
	workflowErr  error
	historyResp  []store.WorkflowEvent
	historyErr   error
	decisionResp *maintenance.DecisionResult
	decisionErr  error
	notifyResp   []maintenance.Notification
	notifyErr    error
	scheduleResp *store.DirectSchedule
	scheduleErr  error

	// Spies
	capturedToday  time.Time
	capturedUserID uuid.UUID
	capturedFilter *uuid.UUID
	capturedStepNo int
	capturedNote   string
	capturedActual *time.Time
	notifyCalled   bool
}

func (m *mockService) Today() time.Time {
	return m.today
}

func (m *mockService) RunEligibilityAndInstantiate(ctx context.Context, today time.Time) (*maintenance.RunReport, error) {
	m.capturedToday = today
	if m.runErr != nil {
		return m.runResp, m.runErr
	}
	if m.runResp != nil {
		return m.runResp, nil
	}
	return &maintenance.RunReport{RunID: "run-1", AsOf: today, SkipReasons: map[string]int{}}, nil
}

func (m *mockService) PreviewEligibility(ctx context.Context, today time.Time) ([]maintenance.Eligibility, error) {
	m.capturedToday = today
	return m.previewResp, m.previewErr
}

func (m *mockService) GetWorkflow(ctx context.Context, workflowID uuid.UUID) (*store.Workflow, error) {
	return m.workflowResp, m.workflowErr
}

func (m *mockService) History(ctx context.Context, cycleID uuid.UUID) ([]store.WorkflowEvent, error) {
	return m.historyResp, m.historyErr
}

func (m *mockService) ApproveActiveStep(ctx context.Context, workflowID, userID uuid.UUID, stepNo int, comment string) (*maintenance.DecisionResult, error) {
	m.capturedUserID = userID
	m.capturedStepNo = stepNo
	m.capturedNote = comment
	return m.decisionResp, m.decisionErr
}

func (m *mockService) RejectActiveStep(ctx context.Context, workflowID, userID uuid.UUID, stepNo int, reason string) (*maintenance.DecisionResult, error) {
	m.capturedUserID = userID
	m.capturedStepNo = stepNo
	m.capturedNote = reason
	return m.decisionResp, m.decisionErr
}

func (m *mockService) ProjectNotifications(ctx context.Context, userID *uuid.UUID, today time.Time) ([]maintenance.Notification, error) {
	m.notifyCalled = true
	m.capturedFilter = userID
	return m.notifyResp, m.notifyErr
}

func (m *mockService) CompleteDirectSchedule(ctx context.Context, scheduleID, userID uuid.UUID, actual *time.Time) (*store.DirectSchedule, error) {
	m.capturedUserID = userID
	m.capturedActual = actual
	return m.scheduleResp, m.scheduleErr
}

func (m *mockService) CancelDirectSchedule(ctx context.Context, scheduleID, userID uuid.UUID, reason string) (*store.DirectSchedule, error) {
	m.capturedUserID = userID
	m.capturedNote = reason
	return m.scheduleResp, m.scheduleErr
}

func sampleWorkflow(status store.HeaderStatus) *store.Workflow {
	id := uuid.New()
	return &store.Workflow{
		ID:                id,
		AssetID:           uuid.New(),
		AssetTypeID:       uuid.New(),
		MaintenanceTypeID: "pm",
		PlannedDate:       time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		Status:            status,
		Steps: []store.WorkflowStep{
			{ID: uuid.New(), WorkflowID: id, SequenceNo: 1, JobRoleID: "technician", Status: store.StepStatusActive},
			{ID: uuid.New(), WorkflowID: id, SequenceNo: 2, JobRoleID: "supervisor", Status: store.StepStatusQueued},
		},
	}
}
