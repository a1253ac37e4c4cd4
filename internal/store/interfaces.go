package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrOpenCycleExists is returned when creating a cycle for an asset that
	// already holds an open workflow or direct schedule.
	ErrOpenCycleExists = errors.New("asset already has an open maintenance cycle")
)

// DBTransaction defines the methods shared by *sql.DB and *sql.Tx
// This allows us to pass either a connection pool or an active transaction to the repository methods.
type DBTransaction interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Tx interface {
	DBTransaction
	Commit() error
	Rollback() error
}

// AssetStore reads asset master data. It is owned by asset intake.
type AssetStore interface {
	// ListAssetTypes returns every asset type.
	ListAssetTypes(ctx context.Context) ([]AssetType, error)

	// ListAssetsByType returns the assets of one asset type.
	ListAssetsByType(ctx context.Context, assetTypeID uuid.UUID) ([]Asset, error)
}

// ConfigStore reads maintenance configuration. Read-only for the core.
type ConfigStore interface {
	// ListFrequencies returns the frequencies configured for an asset type.
	ListFrequencies(ctx context.Context, assetTypeID uuid.UUID) ([]MaintenanceFrequency, error)

	// ListSequence returns the approval chain of an asset type ordered by sequence number.
	ListSequence(ctx context.Context, assetTypeID uuid.UUID) ([]SequenceStep, error)
}

// CycleStore persists workflows, direct schedules and their audit trail.
type CycleStore interface {
	// ListCycles returns every workflow and direct schedule of the given assets.
	ListCycles(ctx context.Context, assetIDs []uuid.UUID) ([]CycleRecord, error)

	// CreateWorkflow claims the asset's open-cycle slot and inserts the header
	// with all of its steps. Returns ErrOpenCycleExists when the slot is taken.
	CreateWorkflow(ctx context.Context, tx DBTransaction, wf *Workflow) error

	// CreateDirectSchedule claims the asset's open-cycle slot and inserts the schedule.
	// Returns ErrOpenCycleExists when the slot is taken.
	CreateDirectSchedule(ctx context.Context, tx DBTransaction, ds *DirectSchedule) error

	// GetWorkflowByID returns a workflow with its steps. When tx is a
	// transaction the header row is locked until it ends.
	GetWorkflowByID(ctx context.Context, tx DBTransaction, id uuid.UUID) (*Workflow, error)

	// UpdateWorkflow writes header and step state. A closed header releases
	// the asset's open-cycle slot.
	UpdateWorkflow(ctx context.Context, tx DBTransaction, wf *Workflow) error

	// ListOpenWorkflows returns every PENDING or IN_PROGRESS workflow with its steps.
	ListOpenWorkflows(ctx context.Context) ([]Workflow, error)

	// GetDirectScheduleByID returns a direct schedule, locking it when tx is a transaction.
	GetDirectScheduleByID(ctx context.Context, tx DBTransaction, id uuid.UUID) (*DirectSchedule, error)

	// UpdateDirectSchedule writes schedule state. A closed schedule releases
	// the asset's open-cycle slot.
	UpdateDirectSchedule(ctx context.Context, tx DBTransaction, ds *DirectSchedule) error

	// AppendEvent adds an audit trail entry.
	AppendEvent(ctx context.Context, tx DBTransaction, ev *WorkflowEvent) error

	// ListEvents returns the audit trail of a cycle, oldest first.
	ListEvents(ctx context.Context, cycleID uuid.UUID) ([]WorkflowEvent, error)

	// CountOpenCycles returns the number of assets holding an open cycle.
	CountOpenCycles(ctx context.Context) (int64, error)
}

// UserStore handles retrieving user information for authentication.
type UserStore interface {
	// CreateUser inserts a user with its API key hash and job roles.
	CreateUser(ctx context.Context, tx DBTransaction, user *User, hashedKey string, roles []string) error

	// GetUserByID returns a user by its ID.
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetUserByAPIKeyHash returns a user by its API key hash.
	GetUserByAPIKeyHash(ctx context.Context, hash string) (*User, error)
}

// RoleStore resolves job role membership.
type RoleStore interface {
	// RoleHolders returns the users currently holding a job role.
	RoleHolders(ctx context.Context, jobRoleID string) ([]uuid.UUID, error)

	// UserRoles returns the job roles a user currently holds.
	UserRoles(ctx context.Context, userID uuid.UUID) ([]string, error)

	// UserRolesTx is UserRoles read through tx.
	UserRolesTx(ctx context.Context, tx DBTransaction, userID uuid.UUID) ([]string, error)
}
