package calc_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neomorfeo/assessiq/internal/adapter/calc"
	"github.com/neomorfeo/assessiq/internal/domain"
)

type recordingBilling struct {
	requests []domain.DemandUpdateRequest
	err      error
}

func (b *recordingBilling) FetchDemands(_ context.Context, _ domain.DemandSearch) ([]domain.Demand, error) {
	return nil, nil
}

func (b *recordingBilling) UpdateDemands(_ context.Context, request domain.DemandUpdateRequest) ([]domain.Demand, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.requests = append(b.requests, request)
	return request.Demands, nil
}

func testAssessment(units ...domain.Unit) domain.Assessment {
	return domain.Assessment{
		AssessmentNumber: "ASMT-2023-24-abcd1234",
		TenantID:         "pb.amritsar",
		PropertyID:       "PT-100",
		FinancialYear:    "2023-24",
		Units:            units,
	}
}

func TestCalculate_RatesUnitsByUsageCategory(t *testing.T) {
	billing := &recordingBilling{}
	engine := calc.New(billing)

	assessment := testAssessment(
		domain.Unit{UsageCategory: "RESIDENTIAL", BuiltUpArea: 120},
		domain.Unit{UsageCategory: "COMMERCIAL", BuiltUpArea: 40},
	)
	property := domain.Property{PropertyID: "PT-100"}

	if err := engine.Calculate(context.Background(), assessment, property); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(billing.requests) != 1 {
		t.Fatalf("billing requests = %d, want 1", len(billing.requests))
	}
	demands := billing.requests[0].Demands
	if len(demands) != 1 {
		t.Fatalf("demands = %d, want 1", len(demands))
	}

	d := demands[0]
	// 120 * 250 + 40 * 900
	if d.TaxAmount != 66000 {
		t.Errorf("TaxAmount = %d, want 66000", d.TaxAmount)
	}
	if d.ID != "DEM-PT-100-2023-24" {
		t.Errorf("ID = %q, want DEM-PT-100-2023-24", d.ID)
	}
	if d.ConsumerCode != "PT-100" {
		t.Errorf("ConsumerCode = %q, want PT-100", d.ConsumerCode)
	}
	if d.Status != domain.DemandActive {
		t.Errorf("Status = %q, want ACTIVE", d.Status)
	}

	wantFrom := time.Date(2023, time.April, 1, 0, 0, 0, 0, time.UTC)
	if !d.TaxPeriodFrom.Equal(wantFrom) {
		t.Errorf("TaxPeriodFrom = %v, want %v", d.TaxPeriodFrom, wantFrom)
	}
	wantTo := time.Date(2024, time.March, 31, 23, 59, 59, 0, time.UTC)
	if !d.TaxPeriodTo.Equal(wantTo) {
		t.Errorf("TaxPeriodTo = %v, want %v", d.TaxPeriodTo, wantTo)
	}
}

func TestCalculate_UnknownCategoryUsesFallback(t *testing.T) {
	billing := &recordingBilling{}
	engine := calc.New(billing)

	assessment := testAssessment(domain.Unit{UsageCategory: "AGRICULTURAL", BuiltUpArea: 10})
	if err := engine.Calculate(context.Background(), assessment, domain.Property{PropertyID: "PT-100"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := billing.requests[0].Demands[0].TaxAmount; got != 4000 {
		t.Errorf("TaxAmount = %d, want 4000", got)
	}
}

func TestCalculate_NoUnitsChargesBaseRate(t *testing.T) {
	billing := &recordingBilling{}
	engine := calc.New(billing)

	if err := engine.Calculate(context.Background(), testAssessment(), domain.Property{PropertyID: "PT-100"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := billing.requests[0].Demands[0].TaxAmount; got != 400 {
		t.Errorf("TaxAmount = %d, want base 400", got)
	}
}

func TestCalculate_RecalculationKeepsDemandIdentity(t *testing.T) {
	billing := &recordingBilling{}
	engine := calc.New(billing)
	assessment := testAssessment(domain.Unit{UsageCategory: "RESIDENTIAL", BuiltUpArea: 100})
	property := domain.Property{PropertyID: "PT-100"}

	if err := engine.Calculate(context.Background(), assessment, property); err != nil {
		t.Fatalf("first run: %v", err)
	}
	assessment.Units[0].BuiltUpArea = 150
	if err := engine.Calculate(context.Background(), assessment, property); err != nil {
		t.Fatalf("second run: %v", err)
	}

	if billing.requests[0].Demands[0].ID != billing.requests[1].Demands[0].ID {
		t.Error("recalculation must reuse the same demand id")
	}
}

func TestCalculate_InvalidFinancialYear(t *testing.T) {
	engine := calc.New(&recordingBilling{})

	assessment := testAssessment()
	assessment.FinancialYear = "bogus"
	if err := engine.Calculate(context.Background(), assessment, domain.Property{}); err == nil {
		t.Fatal("expected error for malformed financial year")
	}
}

func TestCalculate_BillingFailureSurfaces(t *testing.T) {
	engine := calc.New(&recordingBilling{err: errors.New("billing down")})

	assessment := testAssessment(domain.Unit{UsageCategory: "RESIDENTIAL", BuiltUpArea: 100})
	if err := engine.Calculate(context.Background(), assessment, domain.Property{PropertyID: "PT-100"}); err == nil {
		t.Fatal("expected billing failure to surface")
	}
}
