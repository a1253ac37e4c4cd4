package maintenance

import (
	"time"

	"maintplane/internal/store"

	"github.com/google/uuid"
)

// DefaultLeadTimeDays is used when an asset type has no lead time configured.
const DefaultLeadTimeDays = 10

// Skip reasons reported for assets that are not eligible.
const (
	ReasonNoPurchaseDate   = "no_purchase_date"
	ReasonOpenCycle        = "open_cycle"
	ReasonNotDue           = "not_due"
	ReasonInvalidFrequency = "invalid_frequency"
)

// EligibilityInput is everything needed to decide whether one asset is due
// for one maintenance type.
type EligibilityInput struct {
	Asset     store.Asset
	AssetType store.AssetType
	Frequency store.MaintenanceFrequency
	// History holds the asset's workflows and direct schedules.
	History []store.CycleRecord
	Today   time.Time
}

// Eligibility is the result of evaluating one asset against one frequency.
type Eligibility struct {
	AssetID           uuid.UUID  `json:"asset_id"`
	AssetTypeID       uuid.UUID  `json:"asset_type_id"`
	MaintenanceTypeID string     `json:"maintenance_type_id"`
	Eligible          bool       `json:"eligible"`
	Reason            string     `json:"reason,omitempty"`
	ReferenceDate     *time.Time `json:"reference_date,omitempty"`
	PlannedDate       *time.Time `json:"planned_date,omitempty"`
	WindowStart       *time.Time `json:"window_start,omitempty"`
	// DaysRemaining is the number of days until the window opens. Zero when eligible.
	DaysRemaining int `json:"days_remaining"`
}

// Calculator evaluates eligibility. It holds no state besides the fallback
// lead time, so Evaluate is a pure function of its input.
type Calculator struct {
	DefaultLeadTimeDays int
}

// NewCalculator returns a calculator falling back to leadTimeDays, or to
// DefaultLeadTimeDays when leadTimeDays is negative.
func NewCalculator(leadTimeDays int) Calculator {
	if leadTimeDays < 0 {
		leadTimeDays = DefaultLeadTimeDays
	}
	return Calculator{DefaultLeadTimeDays: leadTimeDays}
}

// LeadTime returns the lead time in days of an asset type.
func (c Calculator) LeadTime(at store.AssetType) int {
	if at.LeadTimeDays != nil && *at.LeadTimeDays >= 0 {
		return *at.LeadTimeDays
	}
	return c.DefaultLeadTimeDays
}

// Evaluate decides whether the asset may get a new cycle on in.Today.
func (c Calculator) Evaluate(in EligibilityInput) Eligibility {
	res := Eligibility{
		AssetID:           in.Asset.ID,
		AssetTypeID:       in.AssetType.ID,
		MaintenanceTypeID: in.Frequency.MaintenanceTypeID,
	}

	if in.Asset.PurchaseDate == nil {
		res.Reason = ReasonNoPurchaseDate
		return res
	}
	if in.Frequency.Frequency < 1 || !in.Frequency.Unit.Valid() {
		res.Reason = ReasonInvalidFrequency
		return res
	}

	reference := Day(*in.Asset.PurchaseDate)
	for _, rec := range in.History {
		if rec.Status.Open() {
			res.Reason = ReasonOpenCycle
			return res
		}
		if rec.ActualDate == nil {
			continue
		}
		if d := Day(*rec.ActualDate); d.After(reference) {
			reference = d
		}
	}

	planned := AddInterval(reference, in.Frequency.Frequency, in.Frequency.Unit)
	windowStart := planned.AddDate(0, 0, -c.LeadTime(in.AssetType))
	res.ReferenceDate = &reference
	res.PlannedDate = &planned
	res.WindowStart = &windowStart

	today := Day(in.Today)
	if today.Before(windowStart) {
		res.Reason = ReasonNotDue
		res.DaysRemaining = DaysBetween(today, windowStart)
		return res
	}
	res.Eligible = true
	return res
}
