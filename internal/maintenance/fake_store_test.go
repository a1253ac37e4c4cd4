package maintenance

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"maintplane/internal/store"

	"github.com/google/uuid"
)

// fakeStore is an in-memory Store. Creating a cycle reserves the asset's
// open-cycle slot immediately, the way a unique row would, and the rest of
// the transaction becomes visible on Commit.
type fakeStore struct {
	mu sync.Mutex

	types     []store.AssetType
	freqs     map[uuid.UUID][]store.MaintenanceFrequency
	sequences map[uuid.UUID][]store.SequenceStep
	assets    map[uuid.UUID][]store.Asset
	roles     map[uuid.UUID][]string

	workflows map[uuid.UUID]*store.Workflow
	schedules map[uuid.UUID]*store.DirectSchedule
	open      map[uuid.UUID]uuid.UUID
	events    []store.WorkflowEvent

	listTypesErr error
	createErr    map[uuid.UUID]error
	beginTxCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		freqs:     map[uuid.UUID][]store.MaintenanceFrequency{},
		sequences: map[uuid.UUID][]store.SequenceStep{},
		assets:    map[uuid.UUID][]store.Asset{},
		roles:     map[uuid.UUID][]string{},
		workflows: map[uuid.UUID]*store.Workflow{},
		schedules: map[uuid.UUID]*store.DirectSchedule{},
		open:      map[uuid.UUID]uuid.UUID{},
		createErr: map[uuid.UUID]error{},
	}
}

type fakeTx struct {
	s         *fakeStore
	reserved  []uuid.UUID
	workflows []*store.Workflow
	schedules []*store.DirectSchedule
	events    []store.WorkflowEvent
	done      bool
}

func (tx *fakeTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (tx *fakeTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (tx *fakeTx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}

func (tx *fakeTx) Commit() error {
	s := tx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if tx.done {
		return sql.ErrTxDone
	}
	tx.done = true
	for _, wf := range tx.workflows {
		s.workflows[wf.ID] = copyWorkflow(wf)
		if !wf.Status.Open() {
			delete(s.open, wf.AssetID)
		}
	}
	for _, ds := range tx.schedules {
		c := *ds
		s.schedules[ds.ID] = &c
		if !ds.Status.Open() {
			delete(s.open, ds.AssetID)
		}
	}
	for _, ev := range tx.events {
		ev.ID = int64(len(s.events) + 1)
		s.events = append(s.events, ev)
	}
	return nil
}

func (tx *fakeTx) Rollback() error {
	s := tx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if tx.done {
		return sql.ErrTxDone
	}
	tx.done = true
	for _, assetID := range tx.reserved {
		delete(s.open, assetID)
	}
	return nil
}

func copyWorkflow(wf *store.Workflow) *store.Workflow {
	c := *wf
	c.Steps = append([]store.WorkflowStep(nil), wf.Steps...)
	return &c
}

func (s *fakeStore) BeginTx(ctx context.Context) (store.Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beginTxCalls++
	return &fakeTx{s: s}, nil
}

func (s *fakeStore) ListAssetTypes(ctx context.Context) ([]store.AssetType, error) {
	return s.types, s.listTypesErr
}

func (s *fakeStore) ListAssetsByType(ctx context.Context, assetTypeID uuid.UUID) ([]store.Asset, error) {
	return s.assets[assetTypeID], nil
}

func (s *fakeStore) ListFrequencies(ctx context.Context, assetTypeID uuid.UUID) ([]store.MaintenanceFrequency, error) {
	return append([]store.MaintenanceFrequency(nil), s.freqs[assetTypeID]...), nil
}

func (s *fakeStore) ListSequence(ctx context.Context, assetTypeID uuid.UUID) ([]store.SequenceStep, error) {
	return s.sequences[assetTypeID], nil
}

func (s *fakeStore) ListCycles(ctx context.Context, assetIDs []uuid.UUID) ([]store.CycleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := map[uuid.UUID]bool{}
	for _, id := range assetIDs {
		want[id] = true
	}
	var out []store.CycleRecord
	for _, wf := range s.workflows {
		if want[wf.AssetID] {
			out = append(out, store.CycleRecord{ID: wf.ID, AssetID: wf.AssetID, Kind: store.CycleKindWorkflow, MaintenanceTypeID: wf.MaintenanceTypeID, Status: wf.Status, ActualDate: wf.ActualDate})
		}
	}
	for _, ds := range s.schedules {
		if want[ds.AssetID] {
			out = append(out, store.CycleRecord{ID: ds.ID, AssetID: ds.AssetID, Kind: store.CycleKindDirectSchedule, MaintenanceTypeID: ds.MaintenanceTypeID, Status: ds.Status, ActualDate: ds.ActualDate})
		}
	}
	return out, nil
}

func (s *fakeStore) reserve(tx *fakeTx, assetID, cycleID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.createErr[assetID]; err != nil {
		return err
	}
	if _, taken := s.open[assetID]; taken {
		return store.ErrOpenCycleExists
	}
	s.open[assetID] = cycleID
	tx.reserved = append(tx.reserved, assetID)
	return nil
}

func (s *fakeStore) CreateWorkflow(ctx context.Context, tx store.DBTransaction, wf *store.Workflow) error {
	ftx := tx.(*fakeTx)
	if err := s.reserve(ftx, wf.AssetID, wf.ID); err != nil {
		return err
	}
	ftx.workflows = append(ftx.workflows, copyWorkflow(wf))
	return nil
}

func (s *fakeStore) CreateDirectSchedule(ctx context.Context, tx store.DBTransaction, ds *store.DirectSchedule) error {
	ftx := tx.(*fakeTx)
	if err := s.reserve(ftx, ds.AssetID, ds.ID); err != nil {
		return err
	}
	c := *ds
	ftx.schedules = append(ftx.schedules, &c)
	return nil
}

func (s *fakeStore) GetWorkflowByID(ctx context.Context, tx store.DBTransaction, id uuid.UUID) (*store.Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wf, ok := s.workflows[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyWorkflow(wf), nil
}

func (s *fakeStore) UpdateWorkflow(ctx context.Context, tx store.DBTransaction, wf *store.Workflow) error {
	ftx := tx.(*fakeTx)
	ftx.workflows = append(ftx.workflows, copyWorkflow(wf))
	return nil
}

func (s *fakeStore) ListOpenWorkflows(ctx context.Context) ([]store.Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.Workflow
	for _, wf := range s.workflows {
		if wf.Status.Open() {
			out = append(out, *copyWorkflow(wf))
		}
	}
	return out, nil
}

func (s *fakeStore) GetDirectScheduleByID(ctx context.Context, tx store.DBTransaction, id uuid.UUID) (*store.DirectSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.schedules[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := *ds
	return &c, nil
}

func (s *fakeStore) UpdateDirectSchedule(ctx context.Context, tx store.DBTransaction, ds *store.DirectSchedule) error {
	ftx := tx.(*fakeTx)
	c := *ds
	ftx.schedules = append(ftx.schedules, &c)
	return nil
}

func (s *fakeStore) AppendEvent(ctx context.Context, tx store.DBTransaction, ev *store.WorkflowEvent) error {
	ftx, ok := tx.(*fakeTx)
	if !ok {
		return errors.New("events must be written in a transaction")
	}
	ftx.events = append(ftx.events, *ev)
	return nil
}

func (s *fakeStore) ListEvents(ctx context.Context, cycleID uuid.UUID) ([]store.WorkflowEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.WorkflowEvent
	for _, ev := range s.events {
		if ev.CycleID == cycleID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (s *fakeStore) CountOpenCycles(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.open)), nil
}

func (s *fakeStore) RoleHolders(ctx context.Context, jobRoleID string) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for uid, roles := range s.roles {
		for _, r := range roles {
			if r == jobRoleID {
				out = append(out, uid)
			}
		}
	}
	return out, nil
}

func (s *fakeStore) UserRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roles[userID], nil
}

func (s *fakeStore) UserRolesTx(ctx context.Context, tx store.DBTransaction, userID uuid.UUID) ([]string, error) {
	return s.UserRoles(ctx, userID)
}
