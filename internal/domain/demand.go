package domain

import "time"

// DemandStatus is the billing state of a demand.
type DemandStatus string

const (
	DemandActive    DemandStatus = "ACTIVE"
	DemandCancelled DemandStatus = "CANCELLED"
)

// Demand is a billable claim against a billing account (consumer code)
// for one tax period. Amounts are opaque to the lifecycle core: they are
// carried through untouched; only Status is ever flipped here.
type Demand struct {
	ID             string
	TenantID       string
	ConsumerCode   string
	TaxPeriodFrom  time.Time
	TaxPeriodTo    time.Time
	Status         DemandStatus
	TaxAmount      int64
	CollectedPaise int64
}

// Stale reports whether the demand's tax period has elapsed as of now.
// The comparison is strict: a demand ending exactly at now is not stale.
func (d Demand) Stale(now time.Time) bool {
	return d.TaxPeriodTo.Before(now)
}

// DemandSearch identifies the billing account whose demands are fetched.
type DemandSearch struct {
	TenantID     string
	ConsumerCode string
}

// DemandUpdateRequest resubmits a batch of demands to the billing service.
type DemandUpdateRequest struct {
	RequestInfo RequestInfo
	Demands     []Demand
}
