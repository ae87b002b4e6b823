// Package calc is the built-in tax engine: it rates an assessment's
// units and books the resulting demand through the billing port. Remote
// calculators plug in behind the same domain port.
package calc

import (
	"context"
	"fmt"
	"math"

	"github.com/neomorfeo/assessiq/internal/domain"
)

// Compile-time check: Engine implements domain.CalculationEngine.
var _ domain.CalculationEngine = (*Engine)(nil)

// Paise-per-square-unit rates by usage category. The fallback applies
// to categories without a configured rate.
var defaultRates = map[string]int64{
	"RESIDENTIAL": 250,
	"COMMERCIAL":  900,
	"INDUSTRIAL":  600,
}

const fallbackRate = 400

// Engine computes owed tax and upserts the financial-year demand.
// Calculate is idempotent: the demand id is derived from the assessment,
// so recalculation overwrites the same row.
type Engine struct {
	billing domain.BillingService
	rates   map[string]int64
}

// New creates an engine booking demands through the given billing service.
func New(billing domain.BillingService) *Engine {
	return &Engine{billing: billing, rates: defaultRates}
}

// Calculate rates the assessment's units and resubmits the demand for
// its financial-year tax period.
func (e *Engine) Calculate(ctx context.Context, assessment domain.Assessment, property domain.Property) error {
	from, to, err := domain.FinancialYearPeriod(assessment.FinancialYear)
	if err != nil {
		return err
	}

	var total int64
	for _, unit := range assessment.Units {
		rate, ok := e.rates[unit.UsageCategory]
		if !ok {
			rate = fallbackRate
		}
		total += int64(math.Round(unit.BuiltUpArea)) * rate
	}
	if len(assessment.Units) == 0 {
		// Unassessed structures still owe the base rate for the parcel.
		total = fallbackRate
	}

	demand := domain.Demand{
		ID:            demandID(assessment),
		TenantID:      assessment.TenantID,
		ConsumerCode:  property.BillingAccount(),
		TaxPeriodFrom: from,
		TaxPeriodTo:   to,
		Status:        domain.DemandActive,
		TaxAmount:     total,
	}

	_, err = e.billing.UpdateDemands(ctx, domain.DemandUpdateRequest{
		Demands: []domain.Demand{demand},
	})
	if err != nil {
		return fmt.Errorf("booking demand for %s: %w", assessment.AssessmentNumber, err)
	}
	return nil
}

// demandID derives a stable demand identity so recalculation replaces
// rather than duplicates.
func demandID(a domain.Assessment) string {
	return "DEM-" + a.PropertyID + "-" + a.FinancialYear
}
