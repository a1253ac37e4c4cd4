// Package maintenance decides when assets are due for maintenance and drives
// the role-based approval chain of each maintenance cycle.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"maintplane/internal/logger"
	"maintplane/internal/store"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Audit trail actions.
const (
	EventCreated   = "created"
	EventActivated = "activated"
	EventApproved  = "approved"
	EventRejected  = "rejected"
	EventCompleted = "completed"
	EventCancelled = "cancelled"
)

// Batch-level skip reasons, in addition to the eligibility reasons.
const (
	ReasonDuplicateCycle = "duplicate_cycle"
)

// Store combines the persistence the service needs.
type Store interface {
	BeginTx(ctx context.Context) (store.Tx, error)
	store.AssetStore
	store.ConfigStore
	store.CycleStore
	RoleResolver
	UserRolesTx(ctx context.Context, tx store.DBTransaction, userID uuid.UUID) ([]string, error)
}

// Config tunes the service.
type Config struct {
	// Concurrency is the number of assets processed in parallel by a batch run.
	Concurrency int
	// DefaultLeadTimeDays applies to asset types without a lead time. Negative selects DefaultLeadTimeDays.
	DefaultLeadTimeDays int
	// Location derives the implicit "today" from the clock and the calendar
	// date of recorded actual dates.
	Location *time.Location
	// ReplayWindow is how long an untargeted repeat of a user's last decision
	// is answered as a replay. Zero selects DefaultReplayWindow.
	ReplayWindow time.Duration
}

// DefaultReplayWindow applies when Config.ReplayWindow is zero.
const DefaultReplayWindow = 10 * time.Minute

// Service is the entry point used by the controller and the scheduler.
type Service struct {
	store   Store
	calc    Calculator
	config  Config
	logger  *slog.Logger
	metrics *serviceMetrics
	tracer  trace.Tracer
	now     func() time.Time
}

// NewService creates a new maintenance service.
func NewService(s Store, config Config, log *slog.Logger) *Service {
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.ReplayWindow <= 0 {
		config.ReplayWindow = DefaultReplayWindow
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		store:   s,
		calc:    NewCalculator(config.DefaultLeadTimeDays),
		config:  config,
		logger:  log,
		metrics: newServiceMetrics(log),
		tracer:  otel.Tracer(instrumentationName),
		now:     time.Now,
	}
}

// Today returns the current calendar date in the configured location.
func (s *Service) Today() time.Time {
	return DayIn(s.now(), s.config.Location)
}

// ItemFailure records one asset (or asset type) that could not be processed.
type ItemFailure struct {
	AssetTypeID       uuid.UUID  `json:"asset_type_id"`
	AssetID           *uuid.UUID `json:"asset_id,omitempty"`
	MaintenanceTypeID string     `json:"maintenance_type_id,omitempty"`
	Error             string     `json:"error"`
}

// RunReport aggregates the outcome of one batch run.
type RunReport struct {
	RunID                  string         `json:"run_id"`
	AsOf                   time.Time      `json:"as_of"`
	WorkflowsCreated       int            `json:"workflows_created"`
	DirectSchedulesCreated int            `json:"direct_schedules_created"`
	Skipped                int            `json:"skipped"`
	Failed                 int            `json:"failed"`
	AssetTypesSkipped      int            `json:"asset_types_skipped"`
	SkipReasons            map[string]int `json:"skip_reasons"`
	Failures               []ItemFailure  `json:"failures,omitempty"`

	mu sync.Mutex
}

func (r *RunReport) created(kind store.CycleKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if kind == store.CycleKindWorkflow {
		r.WorkflowsCreated++
	} else {
		r.DirectSchedulesCreated++
	}
}

func (r *RunReport) skip(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Skipped++
	r.SkipReasons[reason]++
}

func (r *RunReport) fail(f ItemFailure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failed++
	r.Failures = append(r.Failures, f)
}

func (r *RunReport) skipType() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.AssetTypesSkipped++
}

// chain is the resolved approval configuration of one asset type.
type chain struct {
	steps []store.SequenceStep
	// err is non-nil when the chain is unusable and the bypass path applies.
	err error
}

// RunEligibilityAndInstantiate evaluates every maintained asset against its
// frequencies as of today and creates a workflow or direct schedule for each
// eligible one. Per-asset failures are reported, not returned. An error is
// returned only when the run could not start.
func (s *Service) RunEligibilityAndInstantiate(ctx context.Context, today time.Time) (*RunReport, error) {
	report := &RunReport{
		RunID:       uuid.NewString(),
		AsOf:        Day(today),
		SkipReasons: map[string]int{},
	}
	ctx = logger.WithRunID(ctx, report.RunID)
	ctx, span := s.tracer.Start(ctx, "maintenance.run",
		trace.WithAttributes(
			attribute.String("run.id", report.RunID),
			attribute.String("run.as_of", report.AsOf.Format(time.DateOnly)),
		),
	)
	defer span.End()

	log := logger.FromContext(ctx, s.logger)
	log.Info("maintenance run started", "as_of", report.AsOf.Format(time.DateOnly))

	types, err := s.store.ListAssetTypes(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list asset types")
		return nil, persistence("list asset types", err)
	}

	for _, at := range types {
		if !at.MaintenanceRequired {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		s.runAssetType(ctx, at, report)
	}

	span.SetAttributes(
		attribute.Int("run.workflows_created", report.WorkflowsCreated),
		attribute.Int("run.direct_schedules_created", report.DirectSchedulesCreated),
		attribute.Int("run.failed", report.Failed),
	)
	log.Info("maintenance run finished",
		"workflows_created", report.WorkflowsCreated,
		"direct_schedules_created", report.DirectSchedulesCreated,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"asset_types_skipped", report.AssetTypesSkipped,
	)
	return report, ctx.Err()
}

func (s *Service) runAssetType(ctx context.Context, at store.AssetType, report *RunReport) {
	log := logger.FromContext(ctx, s.logger).With("asset_type_id", at.ID)

	freqs, assets, history, ch, err := s.loadAssetType(ctx, at)
	if err != nil {
		log.Error("failed to load asset type", "error", err)
		report.fail(ItemFailure{AssetTypeID: at.ID, Error: err.Error()})
		return
	}
	if len(freqs) == 0 {
		log.Warn("asset type skipped", "error", fmt.Errorf("%w: no maintenance frequency", ErrConfigurationMissing))
		report.skipType()
		return
	}
	if ch.err != nil {
		log.Warn("approval chain unusable, using direct schedules", "error", ch.err)
	}

	sem := make(chan struct{}, s.config.Concurrency)
	var wg sync.WaitGroup
	for _, asset := range assets {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(asset store.Asset) {
			defer wg.Done()
			defer func() { <-sem }()
			s.processAsset(ctx, at, asset, freqs, ch, history[asset.ID], report)
		}(asset)
	}
	wg.Wait()
}

func (s *Service) loadAssetType(ctx context.Context, at store.AssetType) ([]store.MaintenanceFrequency, []store.Asset, map[uuid.UUID][]store.CycleRecord, chain, error) {
	freqs, err := s.store.ListFrequencies(ctx, at.ID)
	if err != nil {
		return nil, nil, nil, chain{}, persistence("list frequencies", err)
	}
	if len(freqs) == 0 {
		return nil, nil, nil, chain{}, nil
	}
	sort.SliceStable(freqs, func(i, j int) bool {
		return freqs[i].MaintenanceTypeID < freqs[j].MaintenanceTypeID
	})

	steps, err := s.store.ListSequence(ctx, at.ID)
	if err != nil {
		return nil, nil, nil, chain{}, persistence("list sequence", err)
	}
	ch := chain{steps: steps, err: ValidateSequence(steps)}

	assets, err := s.store.ListAssetsByType(ctx, at.ID)
	if err != nil {
		return nil, nil, nil, chain{}, persistence("list assets", err)
	}
	if len(assets) == 0 {
		return freqs, nil, nil, ch, nil
	}

	ids := make([]uuid.UUID, 0, len(assets))
	for _, a := range assets {
		ids = append(ids, a.ID)
	}
	records, err := s.store.ListCycles(ctx, ids)
	if err != nil {
		return nil, nil, nil, chain{}, persistence("list cycles", err)
	}
	history := make(map[uuid.UUID][]store.CycleRecord, len(assets))
	for _, rec := range records {
		if rec.ActualDate != nil {
			d := DayIn(*rec.ActualDate, s.config.Location)
			rec.ActualDate = &d
		}
		history[rec.AssetID] = append(history[rec.AssetID], rec)
	}
	return freqs, assets, history, ch, nil
}

func (s *Service) processAsset(ctx context.Context, at store.AssetType, asset store.Asset, freqs []store.MaintenanceFrequency, ch chain, history []store.CycleRecord, report *RunReport) {
	ctx, span := s.tracer.Start(ctx, "maintenance.process_asset",
		trace.WithAttributes(attribute.String("asset.id", asset.ID.String())),
	)
	defer span.End()
	log := logger.FromContext(ctx, s.logger).With("asset_id", asset.ID, "asset_type_id", at.ID)

	history = append([]store.CycleRecord(nil), history...)
	for _, freq := range freqs {
		e := s.calc.Evaluate(EligibilityInput{
			Asset:     asset,
			AssetType: at,
			Frequency: freq,
			History:   history,
			Today:     report.AsOf,
		})
		if !e.Eligible {
			switch e.Reason {
			case ReasonNoPurchaseDate:
				log.Info("asset has no purchase date", "maintenance_type_id", freq.MaintenanceTypeID)
			case ReasonInvalidFrequency:
				log.Warn("maintenance frequency is invalid",
					"maintenance_type_id", freq.MaintenanceTypeID,
					"error", fmt.Errorf("%w: frequency %d %s", ErrConfigurationMissing, freq.Frequency, freq.Unit))
			case ReasonNotDue:
				log.Debug("asset not due", "maintenance_type_id", freq.MaintenanceTypeID, "days_remaining", e.DaysRemaining)
			}
			report.skip(e.Reason)
			s.metrics.skipped(ctx, e.Reason)
			continue
		}

		rec, err := s.instantiate(ctx, asset, freq.MaintenanceTypeID, *e.PlannedDate, ch)
		if errors.Is(err, ErrDuplicateCycle) {
			report.skip(ReasonDuplicateCycle)
			s.metrics.skipped(ctx, ReasonDuplicateCycle)
			continue
		}
		if err != nil {
			span.RecordError(err)
			log.Error("failed to create maintenance cycle", "maintenance_type_id", freq.MaintenanceTypeID, "error", err)
			id := asset.ID
			report.fail(ItemFailure{AssetTypeID: at.ID, AssetID: &id, MaintenanceTypeID: freq.MaintenanceTypeID, Error: err.Error()})
			s.metrics.failed(ctx)
			continue
		}

		log.Info("maintenance cycle created",
			"cycle_id", rec.ID,
			"kind", rec.Kind,
			"maintenance_type_id", freq.MaintenanceTypeID,
			"planned_date", e.PlannedDate.Format(time.DateOnly),
		)
		report.created(rec.Kind)
		s.metrics.created(ctx, string(rec.Kind))
		history = append(history, rec)
	}
}

// instantiate creates the cycle for one eligible asset in a single transaction.
func (s *Service) instantiate(ctx context.Context, asset store.Asset, maintenanceTypeID string, planned time.Time, ch chain) (store.CycleRecord, error) {
	now := s.now().UTC()

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return store.CycleRecord{}, persistence("begin transaction", err)
	}
	defer tx.Rollback()

	rec := store.CycleRecord{
		AssetID:           asset.ID,
		MaintenanceTypeID: maintenanceTypeID,
	}

	if ch.err == nil {
		wf, err := NewWorkflow(asset, maintenanceTypeID, planned, ch.steps, now)
		if err != nil {
			return store.CycleRecord{}, err
		}
		if err := s.store.CreateWorkflow(ctx, tx, wf); err != nil {
			return store.CycleRecord{}, createErr(err)
		}
		if err := s.appendEvent(ctx, tx, wf.ID, nil, EventCreated, nil, ""); err != nil {
			return store.CycleRecord{}, err
		}
		first := wf.Steps[0].SequenceNo
		if err := s.appendEvent(ctx, tx, wf.ID, &first, EventActivated, nil, ""); err != nil {
			return store.CycleRecord{}, err
		}
		rec.ID, rec.Kind, rec.Status = wf.ID, store.CycleKindWorkflow, wf.Status
	} else {
		ds := NewDirectSchedule(asset, maintenanceTypeID, planned, now)
		if err := s.store.CreateDirectSchedule(ctx, tx, ds); err != nil {
			return store.CycleRecord{}, createErr(err)
		}
		if err := s.appendEvent(ctx, tx, ds.ID, nil, EventCreated, nil, ch.err.Error()); err != nil {
			return store.CycleRecord{}, err
		}
		rec.ID, rec.Kind, rec.Status = ds.ID, store.CycleKindDirectSchedule, ds.Status
	}

	if err := tx.Commit(); err != nil {
		return store.CycleRecord{}, persistence("commit", err)
	}
	return rec, nil
}

func createErr(err error) error {
	if errors.Is(err, store.ErrOpenCycleExists) {
		return fmt.Errorf("%w: %w", ErrDuplicateCycle, err)
	}
	return persistence("create cycle", err)
}

func (s *Service) appendEvent(ctx context.Context, tx store.DBTransaction, cycleID uuid.UUID, seq *int, action string, actor *uuid.UUID, note string) error {
	ev := &store.WorkflowEvent{
		CycleID:    cycleID,
		SequenceNo: seq,
		Action:     action,
		ActorID:    actor,
		CreatedAt:  s.now().UTC(),
	}
	if note != "" {
		ev.Note = &note
	}
	if err := s.store.AppendEvent(ctx, tx, ev); err != nil {
		return persistence("append event", err)
	}
	return nil
}

// PreviewEligibility evaluates every maintained asset as of today without
// creating anything.
func (s *Service) PreviewEligibility(ctx context.Context, today time.Time) ([]Eligibility, error) {
	types, err := s.store.ListAssetTypes(ctx)
	if err != nil {
		return nil, persistence("list asset types", err)
	}

	var out []Eligibility
	for _, at := range types {
		if !at.MaintenanceRequired {
			continue
		}
		freqs, assets, history, _, err := s.loadAssetType(ctx, at)
		if err != nil {
			return nil, err
		}
		for _, asset := range assets {
			for _, freq := range freqs {
				out = append(out, s.calc.Evaluate(EligibilityInput{
					Asset:     asset,
					AssetType: at,
					Frequency: freq,
					History:   history[asset.ID],
					Today:     today,
				}))
			}
		}
	}
	return out, nil
}
