package app

import (
	"context"
	"time"

	"github.com/neomorfeo/assessiq/internal/domain"
)

// DemandLifecycleManager retires demands whose tax period has elapsed.
type DemandLifecycleManager struct {
	billing domain.BillingService
	now     func() time.Time
}

// NewDemandLifecycleManager creates a manager over the billing port.
// A nil clock defaults to time.Now.
func NewDemandLifecycleManager(billing domain.BillingService, now func() time.Time) *DemandLifecycleManager {
	if now == nil {
		now = time.Now
	}
	return &DemandLifecycleManager{billing: billing, now: now}
}

// RetireStaleDemands fetches all demands for the request's billing
// account, cancels the ones whose tax period lies strictly in the past,
// and resubmits the entire fetched batch in one call, untouched demands
// included, as the billing service refreshes derived fields on resubmit.
// An empty fetch is a no-op. Any billing failure fails the enclosing
// create/update; there is no partial success.
func (m *DemandLifecycleManager) RetireStaleDemands(ctx context.Context, request domain.AssessmentRequest) error {
	search := domain.DemandSearch{
		TenantID:     request.Assessment.TenantID,
		ConsumerCode: request.Assessment.PropertyID,
	}

	demands, err := m.billing.FetchDemands(ctx, search)
	if err != nil {
		return &domain.BillingServiceError{Op: "fetch demands", Err: err}
	}
	if len(demands) == 0 {
		return nil
	}

	now := m.now()
	for i := range demands {
		if demands[i].Stale(now) {
			demands[i].Status = domain.DemandCancelled
		}
	}

	update := domain.DemandUpdateRequest{
		RequestInfo: request.RequestInfo,
		Demands:     demands,
	}
	if _, err := m.billing.UpdateDemands(ctx, update); err != nil {
		return &domain.BillingServiceError{Op: "update demands", Err: err}
	}
	return nil
}
