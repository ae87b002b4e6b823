package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/neomorfeo/assessiq/internal/domain"
)

// DemandRepository implements the billing collaborator over the shared
// database. Batch updates run in one transaction: the resubmission is
// all-or-nothing, matching the caller's contract.
type DemandRepository struct {
	db *sql.DB
}

// Compile-time check: DemandRepository implements domain.BillingService.
var _ domain.BillingService = (*DemandRepository)(nil)

// NewDemandRepository creates a repository over the store's database.
func NewDemandRepository(store *Store) *DemandRepository {
	return &DemandRepository{db: store.DB()}
}

// FetchDemands returns all demands booked under the billing account.
func (r *DemandRepository) FetchDemands(ctx context.Context, search domain.DemandSearch) ([]domain.Demand, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tenant_id, consumer_code, tax_period_from, tax_period_to, status, tax_amount, collected_paise
		 FROM demands WHERE tenant_id = ? AND consumer_code = ?
		 ORDER BY tax_period_from`,
		search.TenantID, search.ConsumerCode,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching demands: %w", err)
	}
	defer rows.Close()

	var demands []domain.Demand
	for rows.Next() {
		var d domain.Demand
		var from, to, status string
		if err := rows.Scan(&d.ID, &d.TenantID, &d.ConsumerCode, &from, &to, &status, &d.TaxAmount, &d.CollectedPaise); err != nil {
			return nil, fmt.Errorf("scanning demand: %w", err)
		}
		d.Status = domain.DemandStatus(status)
		d.TaxPeriodFrom, _ = time.Parse(timeFormat, from)
		d.TaxPeriodTo, _ = time.Parse(timeFormat, to)
		demands = append(demands, d)
	}

	return demands, rows.Err()
}

// UpdateDemands writes the whole batch in one transaction and returns it.
func (r *DemandRepository) UpdateDemands(ctx context.Context, request domain.DemandUpdateRequest) ([]domain.Demand, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning demand update: %w", err)
	}
	defer tx.Rollback()

	for _, d := range request.Demands {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO demands (id, tenant_id, consumer_code, tax_period_from, tax_period_to, status, tax_amount, collected_paise)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				status = excluded.status,
				tax_amount = excluded.tax_amount,
				collected_paise = excluded.collected_paise`,
			d.ID, d.TenantID, d.ConsumerCode,
			d.TaxPeriodFrom.UTC().Format(timeFormat), d.TaxPeriodTo.UTC().Format(timeFormat),
			string(d.Status), d.TaxAmount, d.CollectedPaise,
		)
		if err != nil {
			return nil, fmt.Errorf("writing demand %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing demand update: %w", err)
	}

	return request.Demands, nil
}
