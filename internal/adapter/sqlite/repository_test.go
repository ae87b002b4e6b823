package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neomorfeo/assessiq/internal/adapter/sqlite"
	"github.com/neomorfeo/assessiq/internal/domain"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func sampleAssessment(id, property, year string, status domain.Status, created time.Time) domain.Assessment {
	return domain.Assessment{
		ID:               id,
		AssessmentNumber: "ASMT-" + year + "-" + id,
		TenantID:         "pb.amritsar",
		PropertyID:       property,
		FinancialYear:    year,
		AssessmentDate:   created,
		Source:           "MUNICIPAL_RECORDS",
		Channel:          "CFC",
		Status:           status,
		Owners:           []domain.OwnerInfo{{OwnerID: "u-1", Status: "ACTIVE"}},
		Units:            []domain.Unit{{ID: "un-1", UsageCategory: "RESIDENTIAL", BuiltUpArea: 120}},
		AuditDetails: domain.AuditDetails{
			CreatedBy:    "u-1",
			CreatedTime:  created,
			ModifiedBy:   "u-1",
			ModifiedTime: created,
		},
	}
}

func TestUpsertAndGetByKey_Roundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created := time.Date(2023, time.June, 1, 12, 0, 0, 0, time.UTC)
	a := sampleAssessment("a-1", "PT-100", "2023-24", domain.StatusInWorkflow, created)
	a.Workflow = &domain.ProcessInstance{
		TenantID:        "pb.amritsar",
		BusinessService: domain.BusinessServiceAssessment,
		Action:          domain.ActionInitiate,
		State:           domain.WorkflowState{Name: "INITIATED", ApplicationStatus: "INWORKFLOW"},
	}

	if err := store.Upsert(ctx, a); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := store.GetByKey(ctx, a.Key())
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.AssessmentNumber != a.AssessmentNumber {
		t.Errorf("AssessmentNumber = %q, want %q", got.AssessmentNumber, a.AssessmentNumber)
	}
	if got.Status != domain.StatusInWorkflow {
		t.Errorf("Status = %q, want %q", got.Status, domain.StatusInWorkflow)
	}
	if !got.AssessmentDate.Equal(created) {
		t.Errorf("AssessmentDate = %v, want %v", got.AssessmentDate, created)
	}
	if len(got.Owners) != 1 || got.Owners[0].OwnerID != "u-1" {
		t.Errorf("Owners = %+v, want one owner u-1", got.Owners)
	}
	if len(got.Units) != 1 || got.Units[0].BuiltUpArea != 120 {
		t.Errorf("Units = %+v, want one 120 sq unit", got.Units)
	}
	if got.Workflow == nil || got.Workflow.State.Name != "INITIATED" {
		t.Errorf("Workflow = %+v, want INITIATED state", got.Workflow)
	}
	if got.AuditDetails.CreatedBy != "u-1" {
		t.Errorf("CreatedBy = %q, want u-1", got.AuditDetails.CreatedBy)
	}
}

func TestGetByKey_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetByKey(context.Background(), domain.Key{TenantID: "pb.amritsar", ID: "missing"})
	if !errors.Is(err, domain.ErrAssessmentNotFound) {
		t.Fatalf("expected ErrAssessmentNotFound, got %v", err)
	}
}

func TestUpsert_ReplacesExistingRow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	created := time.Date(2023, time.June, 1, 12, 0, 0, 0, time.UTC)

	a := sampleAssessment("a-1", "PT-100", "2023-24", domain.StatusInWorkflow, created)
	if err := store.Upsert(ctx, a); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	a.Status = domain.StatusActive
	a.AuditDetails.ModifiedBy = "u-2"
	if err := store.Upsert(ctx, a); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := store.GetByKey(ctx, a.Key())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.StatusActive {
		t.Errorf("Status = %q, want updated ACTIVE", got.Status)
	}
	if got.AuditDetails.ModifiedBy != "u-2" {
		t.Errorf("ModifiedBy = %q, want u-2", got.AuditDetails.ModifiedBy)
	}
}

func TestUpsert_ActivePerPropertyYearIsUnique(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	created := time.Date(2023, time.June, 1, 12, 0, 0, 0, time.UTC)

	first := sampleAssessment("a-1", "PT-100", "2023-24", domain.StatusActive, created)
	if err := store.Upsert(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := sampleAssessment("a-2", "PT-100", "2023-24", domain.StatusActive, created)
	err := store.Upsert(ctx, second)
	var dup *domain.DuplicateAssessmentError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateAssessmentError, got %v", err)
	}
	if dup.PropertyID != "PT-100" || dup.FinancialYear != "2023-24" {
		t.Errorf("error = %+v, want PT-100 / 2023-24", dup)
	}
}

func TestUpsert_IndexIgnoresNonActiveRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	created := time.Date(2023, time.June, 1, 12, 0, 0, 0, time.UTC)

	cancelled := sampleAssessment("a-1", "PT-100", "2023-24", domain.StatusCancelled, created)
	if err := store.Upsert(ctx, cancelled); err != nil {
		t.Fatalf("cancelled upsert: %v", err)
	}

	// A cancelled row does not block a fresh active assessment.
	active := sampleAssessment("a-2", "PT-100", "2023-24", domain.StatusActive, created)
	if err := store.Upsert(ctx, active); err != nil {
		t.Fatalf("active upsert after cancelled: %v", err)
	}

	// A different year is also fine.
	nextYear := sampleAssessment("a-3", "PT-100", "2024-25", domain.StatusActive, created)
	if err := store.Upsert(ctx, nextYear); err != nil {
		t.Fatalf("next year upsert: %v", err)
	}
}

func TestSearch_Filters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2023, time.June, 1, 12, 0, 0, 0, time.UTC)

	rows := []domain.Assessment{
		sampleAssessment("a-1", "PT-100", "2023-24", domain.StatusActive, base),
		sampleAssessment("a-2", "PT-200", "2023-24", domain.StatusCancelled, base.Add(time.Hour)),
		sampleAssessment("a-3", "PT-100", "2024-25", domain.StatusActive, base.Add(2*time.Hour)),
	}
	for _, a := range rows {
		if err := store.Upsert(ctx, a); err != nil {
			t.Fatalf("seeding %s: %v", a.ID, err)
		}
	}

	active := domain.StatusActive
	got, err := store.Search(ctx, domain.SearchCriteria{
		TenantID: "pb.amritsar",
		Status:   &active,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("active results = %d, want 2", len(got))
	}
	// Newest first.
	if got[0].ID != "a-3" || got[1].ID != "a-1" {
		t.Errorf("order = [%s %s], want [a-3 a-1]", got[0].ID, got[1].ID)
	}

	got, err = store.Search(ctx, domain.SearchCriteria{
		PropertyIDs:   []string{"PT-100"},
		FinancialYear: "2023-24",
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a-1" {
		t.Errorf("property+year results = %+v, want [a-1]", got)
	}

	got, err = store.Search(ctx, domain.SearchCriteria{
		AssessmentNumbers: []string{"ASMT-2023-24-a-1", "ASMT-2024-25-a-3"},
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("number results = %d, want 2", len(got))
	}
}

func TestSearch_LimitAndOffset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2023, time.June, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"a-1", "a-2", "a-3"} {
		a := sampleAssessment(id, "PT-"+id, "2023-24", domain.StatusActive, base.Add(time.Duration(i)*time.Hour))
		if err := store.Upsert(ctx, a); err != nil {
			t.Fatalf("seeding %s: %v", id, err)
		}
	}

	limit, offset := 1, 1
	got, err := store.Search(ctx, domain.SearchCriteria{Limit: &limit, Offset: &offset})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a-2" {
		t.Errorf("page = %+v, want [a-2]", got)
	}
}

func TestFetchNumbers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2023, time.June, 1, 12, 0, 0, 0, time.UTC)

	if err := store.Upsert(ctx, sampleAssessment("a-1", "PT-100", "2023-24", domain.StatusActive, base)); err != nil {
		t.Fatalf("seeding: %v", err)
	}
	if err := store.Upsert(ctx, sampleAssessment("a-2", "PT-200", "2024-25", domain.StatusActive, base)); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	numbers, err := store.FetchNumbers(ctx, domain.SearchCriteria{
		TenantID:      "pb.amritsar",
		FinancialYear: "2023-24",
	})
	if err != nil {
		t.Fatalf("fetch numbers: %v", err)
	}
	if len(numbers) != 1 || numbers[0] != "ASMT-2023-24-a-1" {
		t.Errorf("numbers = %v, want [ASMT-2023-24-a-1]", numbers)
	}
}

func TestPropertyRegistry_Resolve(t *testing.T) {
	store := newTestStore(t)
	registry := sqlite.NewPropertyRegistry(store)
	ctx := context.Background()

	property := domain.Property{
		PropertyID:    "PT-100",
		TenantID:      "pb.amritsar",
		UsageCategory: "RESIDENTIAL",
		OwnerIDs:      []string{"u-1", "u-2"},
	}
	if err := registry.Put(ctx, property); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := registry.Resolve(ctx, domain.AssessmentRequest{
		Assessment: domain.Assessment{TenantID: "pb.amritsar", PropertyID: "PT-100"},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.UsageCategory != "RESIDENTIAL" {
		t.Errorf("UsageCategory = %q, want RESIDENTIAL", got.UsageCategory)
	}
	if len(got.OwnerIDs) != 2 {
		t.Errorf("OwnerIDs = %v, want two owners", got.OwnerIDs)
	}
}

func TestPropertyRegistry_NotFound(t *testing.T) {
	store := newTestStore(t)
	registry := sqlite.NewPropertyRegistry(store)

	_, err := registry.Resolve(context.Background(), domain.AssessmentRequest{
		Assessment: domain.Assessment{TenantID: "pb.amritsar", PropertyID: "PT-404"},
	})
	var notFound *domain.PropertyNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected PropertyNotFoundError, got %v", err)
	}
	if notFound.PropertyID != "PT-404" {
		t.Errorf("PropertyID = %q, want PT-404", notFound.PropertyID)
	}
}

func TestDemandRepository_UpdateAndFetch(t *testing.T) {
	store := newTestStore(t)
	repo := sqlite.NewDemandRepository(store)
	ctx := context.Background()

	from := time.Date(2023, time.April, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.March, 31, 23, 59, 59, 0, time.UTC)
	batch := []domain.Demand{
		{ID: "d-2", TenantID: "pb.amritsar", ConsumerCode: "PT-100", TaxPeriodFrom: from.AddDate(1, 0, 0), TaxPeriodTo: to.AddDate(1, 0, 0), Status: domain.DemandActive, TaxAmount: 42000},
		{ID: "d-1", TenantID: "pb.amritsar", ConsumerCode: "PT-100", TaxPeriodFrom: from, TaxPeriodTo: to, Status: domain.DemandActive, TaxAmount: 30000},
	}

	if _, err := repo.UpdateDemands(ctx, domain.DemandUpdateRequest{Demands: batch}); err != nil {
		t.Fatalf("update demands: %v", err)
	}

	got, err := repo.FetchDemands(ctx, domain.DemandSearch{TenantID: "pb.amritsar", ConsumerCode: "PT-100"})
	if err != nil {
		t.Fatalf("fetch demands: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("demands = %d, want 2", len(got))
	}
	// Ordered by period start.
	if got[0].ID != "d-1" || got[1].ID != "d-2" {
		t.Errorf("order = [%s %s], want [d-1 d-2]", got[0].ID, got[1].ID)
	}
	if !got[0].TaxPeriodFrom.Equal(from) {
		t.Errorf("TaxPeriodFrom = %v, want %v", got[0].TaxPeriodFrom, from)
	}
}

func TestDemandRepository_StatusFlipPersists(t *testing.T) {
	store := newTestStore(t)
	repo := sqlite.NewDemandRepository(store)
	ctx := context.Background()

	from := time.Date(2022, time.April, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, time.March, 31, 23, 59, 59, 0, time.UTC)
	demand := domain.Demand{ID: "d-1", TenantID: "pb.amritsar", ConsumerCode: "PT-100", TaxPeriodFrom: from, TaxPeriodTo: to, Status: domain.DemandActive, TaxAmount: 30000}

	if _, err := repo.UpdateDemands(ctx, domain.DemandUpdateRequest{Demands: []domain.Demand{demand}}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	demand.Status = domain.DemandCancelled
	if _, err := repo.UpdateDemands(ctx, domain.DemandUpdateRequest{Demands: []domain.Demand{demand}}); err != nil {
		t.Fatalf("flip: %v", err)
	}

	got, err := repo.FetchDemands(ctx, domain.DemandSearch{TenantID: "pb.amritsar", ConsumerCode: "PT-100"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 1 || got[0].Status != domain.DemandCancelled {
		t.Errorf("demand = %+v, want one CANCELLED row", got)
	}
}
