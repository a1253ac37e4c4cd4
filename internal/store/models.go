// Package store contains the database layer for maintplane.
package store

import (
	"time"

	"github.com/google/uuid"
)

// TimeUnit is the unit a maintenance frequency is expressed in.
type TimeUnit string

const (
	UnitDays   TimeUnit = "days"
	UnitWeeks  TimeUnit = "weeks"
	UnitMonths TimeUnit = "months"
	UnitYears  TimeUnit = "years"
)

// Valid reports whether u is one of the known units.
func (u TimeUnit) Valid() bool {
	switch u {
	case UnitDays, UnitWeeks, UnitMonths, UnitYears:
		return true
	}
	return false
}

// AssetType is reference data describing a class of assets.
type AssetType struct {
	ID                  uuid.UUID
	Name                string
	MaintenanceRequired bool
	// LeadTimeDays is nil when the type has no lead time configured.
	LeadTimeDays *int
}

// MaintenanceFrequency is how often an asset type needs one maintenance type.
type MaintenanceFrequency struct {
	AssetTypeID       uuid.UUID
	MaintenanceTypeID string
	Frequency         int
	Unit              TimeUnit
}

// SequenceStep is one entry of an asset type's approval chain.
type SequenceStep struct {
	AssetTypeID  uuid.UUID
	SequenceNo   int
	JobRoleID    string
	DepartmentID string
}

// Asset is a tracked physical asset.
type Asset struct {
	ID           uuid.UUID
	AssetTypeID  uuid.UUID
	AssetGroupID *uuid.UUID
	Name         string
	PurchaseDate *time.Time
	OrgID        string
	BranchID     string
}

// CycleKind distinguishes the two records that can hold an asset's open cycle.
type CycleKind string

const (
	CycleKindWorkflow       CycleKind = "workflow"
	CycleKindDirectSchedule CycleKind = "direct_schedule"
)

// HeaderStatus is the lifecycle state of a workflow header or direct schedule.
type HeaderStatus string

const (
	HeaderStatusPending    HeaderStatus = "PENDING"
	HeaderStatusInProgress HeaderStatus = "IN_PROGRESS"
	HeaderStatusCompleted  HeaderStatus = "COMPLETED"
	HeaderStatusCancelled  HeaderStatus = "CANCELLED"
)

// Open reports whether the status still holds the asset's open cycle.
func (s HeaderStatus) Open() bool {
	return s == HeaderStatusPending || s == HeaderStatusInProgress
}

// StepStatus is the lifecycle state of a single approval step.
type StepStatus string

const (
	StepStatusQueued   StepStatus = "QUEUED"
	StepStatusActive   StepStatus = "ACTIVE"
	StepStatusApproved StepStatus = "APPROVED"
	StepStatusRejected StepStatus = "REJECTED"
)

// Resolved reports whether the step has been acted on.
func (s StepStatus) Resolved() bool {
	return s == StepStatusApproved || s == StepStatusRejected
}

// Workflow is a maintenance workflow header with its ordered steps.
type Workflow struct {
	ID                uuid.UUID
	AssetID           uuid.UUID
	AssetGroupID      *uuid.UUID
	AssetTypeID       uuid.UUID
	MaintenanceTypeID string
	PlannedDate       time.Time
	ActualDate        *time.Time
	Status            HeaderStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Steps             []WorkflowStep
}

// WorkflowStep is one approval step of a workflow.
type WorkflowStep struct {
	ID           uuid.UUID
	WorkflowID   uuid.UUID
	SequenceNo   int
	JobRoleID    string
	DepartmentID string
	Status       StepStatus
	ActedBy      *uuid.UUID
	ActedAt      *time.Time
	Comment      *string
}

// DirectSchedule is the single-step record used when an asset type has no
// usable approval chain.
type DirectSchedule struct {
	ID                uuid.UUID
	AssetID           uuid.UUID
	AssetTypeID       uuid.UUID
	MaintenanceTypeID string
	PlannedDate       time.Time
	ActualDate        *time.Time
	Status            HeaderStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CycleRecord is the part of a workflow or direct schedule the eligibility
// calculation needs.
type CycleRecord struct {
	ID                uuid.UUID
	AssetID           uuid.UUID
	Kind              CycleKind
	MaintenanceTypeID string
	Status            HeaderStatus
	ActualDate        *time.Time
}

// WorkflowEvent is one audit trail entry for a workflow or direct schedule.
type WorkflowEvent struct {
	ID         int64
	CycleID    uuid.UUID
	SequenceNo *int
	Action     string
	ActorID    *uuid.UUID
	Note       *string
	CreatedAt  time.Time
}

// User is a caller that can hold job roles.
type User struct {
	ID        uuid.UUID
	Name      string
	IsAdmin   bool
	CreatedAt time.Time
}
