package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/neomorfeo/assessiq/internal/domain"
)

// PropertyRegistry resolves properties from the shared database. It
// stands in for the external property service in single-node
// deployments.
type PropertyRegistry struct {
	db *sql.DB
}

// Compile-time check: PropertyRegistry implements domain.PropertyResolver.
var _ domain.PropertyResolver = (*PropertyRegistry)(nil)

// NewPropertyRegistry creates a registry over the store's database.
func NewPropertyRegistry(store *Store) *PropertyRegistry {
	return &PropertyRegistry{db: store.DB()}
}

// Resolve looks up the property the request's assessment refers to.
func (r *PropertyRegistry) Resolve(ctx context.Context, request domain.AssessmentRequest) (domain.Property, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT property_id, tenant_id, usage_category, owner_ids
		 FROM properties WHERE tenant_id = ? AND property_id = ?`,
		request.Assessment.TenantID, request.Assessment.PropertyID,
	)

	var p domain.Property
	var ownerIDs string
	err := row.Scan(&p.PropertyID, &p.TenantID, &p.UsageCategory, &ownerIDs)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Property{}, &domain.PropertyNotFoundError{PropertyID: request.Assessment.PropertyID}
		}
		return domain.Property{}, fmt.Errorf("scanning property: %w", err)
	}

	if err := json.Unmarshal([]byte(ownerIDs), &p.OwnerIDs); err != nil {
		return domain.Property{}, fmt.Errorf("decoding owner ids: %w", err)
	}

	return p, nil
}

// Put registers a property. Used for seeding and tests.
func (r *PropertyRegistry) Put(ctx context.Context, p domain.Property) error {
	ownerIDs, err := json.Marshal(p.OwnerIDs)
	if err != nil {
		return fmt.Errorf("encoding owner ids: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO properties (property_id, tenant_id, usage_category, owner_ids)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(property_id) DO UPDATE SET
			tenant_id = excluded.tenant_id,
			usage_category = excluded.usage_category,
			owner_ids = excluded.owner_ids`,
		p.PropertyID, p.TenantID, p.UsageCategory, string(ownerIDs),
	)
	if err != nil {
		return fmt.Errorf("upserting property: %w", err)
	}
	return nil
}
