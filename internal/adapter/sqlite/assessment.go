package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/neomorfeo/assessiq/internal/domain"
)

// Compile-time check: Store implements domain.AssessmentStore.
var _ domain.AssessmentStore = (*Store)(nil)

const assessmentColumns = `id, assessment_number, tenant_id, property_id, financial_year,
	assessment_date, source, channel, status, owners, units, documents, workflow,
	created_by, created_time, modified_by, modified_time`

// GetByKey returns the stored assessment for (tenantId, id).
func (s *Store) GetByKey(ctx context.Context, key domain.Key) (domain.Assessment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+assessmentColumns+` FROM assessments WHERE tenant_id = ? AND id = ?`,
		key.TenantID, key.ID,
	)
	return scanAssessment(row.Scan)
}

// Search returns assessments matching the criteria. Filters compose with
// AND; slice-valued filters become IN clauses.
func (s *Store) Search(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Assessment, error) {
	query := `SELECT ` + assessmentColumns + ` FROM assessments WHERE 1=1`
	var args []any

	if criteria.TenantID != "" {
		query += ` AND tenant_id = ?`
		args = append(args, criteria.TenantID)
	}
	if len(criteria.IDs) > 0 {
		query += ` AND id IN (` + placeholders(len(criteria.IDs)) + `)`
		for _, id := range criteria.IDs {
			args = append(args, id)
		}
	}
	if len(criteria.PropertyIDs) > 0 {
		query += ` AND property_id IN (` + placeholders(len(criteria.PropertyIDs)) + `)`
		for _, id := range criteria.PropertyIDs {
			args = append(args, id)
		}
	}
	if len(criteria.AssessmentNumbers) > 0 {
		query += ` AND assessment_number IN (` + placeholders(len(criteria.AssessmentNumbers)) + `)`
		for _, n := range criteria.AssessmentNumbers {
			args = append(args, n)
		}
	}
	if criteria.FinancialYear != "" {
		query += ` AND financial_year = ?`
		args = append(args, criteria.FinancialYear)
	}
	if criteria.Status != nil {
		query += ` AND status = ?`
		args = append(args, string(*criteria.Status))
	}

	query += ` ORDER BY created_time DESC`

	if criteria.Limit != nil {
		query += ` LIMIT ?`
		args = append(args, *criteria.Limit)
	}
	if criteria.Offset != nil && *criteria.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, *criteria.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching assessments: %w", err)
	}
	defer rows.Close()

	var out []domain.Assessment
	for rows.Next() {
		a, err := scanAssessment(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}

	return out, rows.Err()
}

// FetchNumbers is the lightweight lookup resolving candidate assessment
// numbers for plain search.
func (s *Store) FetchNumbers(ctx context.Context, criteria domain.SearchCriteria) ([]string, error) {
	query := `SELECT assessment_number FROM assessments WHERE 1=1`
	var args []any

	if criteria.TenantID != "" {
		query += ` AND tenant_id = ?`
		args = append(args, criteria.TenantID)
	}
	if criteria.FinancialYear != "" {
		query += ` AND financial_year = ?`
		args = append(args, criteria.FinancialYear)
	}
	if criteria.Status != nil {
		query += ` AND status = ?`
		args = append(args, string(*criteria.Status))
	}

	query += ` ORDER BY created_time DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching assessment numbers: %w", err)
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scanning assessment number: %w", err)
		}
		numbers = append(numbers, n)
	}

	return numbers, rows.Err()
}

// Upsert writes an assessment snapshot, inserting or replacing by id.
// A violation of the active-per-(property, year) index surfaces as a
// DuplicateAssessmentError.
func (s *Store) Upsert(ctx context.Context, a domain.Assessment) error {
	owners, err := json.Marshal(a.Owners)
	if err != nil {
		return fmt.Errorf("encoding owners: %w", err)
	}
	units, err := json.Marshal(a.Units)
	if err != nil {
		return fmt.Errorf("encoding units: %w", err)
	}
	documents, err := json.Marshal(a.Documents)
	if err != nil {
		return fmt.Errorf("encoding documents: %w", err)
	}

	var workflow any
	if a.Workflow != nil {
		encoded, err := json.Marshal(a.Workflow)
		if err != nil {
			return fmt.Errorf("encoding workflow: %w", err)
		}
		workflow = string(encoded)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO assessments (`+assessmentColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			assessment_number = excluded.assessment_number,
			property_id = excluded.property_id,
			financial_year = excluded.financial_year,
			assessment_date = excluded.assessment_date,
			source = excluded.source,
			channel = excluded.channel,
			status = excluded.status,
			owners = excluded.owners,
			units = excluded.units,
			documents = excluded.documents,
			workflow = excluded.workflow,
			modified_by = excluded.modified_by,
			modified_time = excluded.modified_time`,
		a.ID, a.AssessmentNumber, a.TenantID, a.PropertyID, a.FinancialYear,
		a.AssessmentDate.UTC().Format(timeFormat), a.Source, a.Channel, string(a.Status),
		string(owners), string(units), string(documents), workflow,
		a.AuditDetails.CreatedBy, a.AuditDetails.CreatedTime.UTC().Format(timeFormat),
		a.AuditDetails.ModifiedBy, a.AuditDetails.ModifiedTime.UTC().Format(timeFormat),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicateAssessmentError{
				PropertyID:    a.PropertyID,
				FinancialYear: a.FinancialYear,
			}
		}
		return fmt.Errorf("upserting assessment: %w", err)
	}
	return nil
}

// scanAssessment reads one assessment row via the given scan function,
// decoding the JSON-encoded nested slices.
func scanAssessment(scan func(...any) error) (domain.Assessment, error) {
	var a domain.Assessment
	var status, assessmentDate, createdTime, modifiedTime string
	var owners, units, documents string
	var workflow sql.NullString

	err := scan(&a.ID, &a.AssessmentNumber, &a.TenantID, &a.PropertyID, &a.FinancialYear,
		&assessmentDate, &a.Source, &a.Channel, &status, &owners, &units, &documents, &workflow,
		&a.AuditDetails.CreatedBy, &createdTime, &a.AuditDetails.ModifiedBy, &modifiedTime,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Assessment{}, domain.ErrAssessmentNotFound
		}
		return domain.Assessment{}, fmt.Errorf("scanning assessment: %w", err)
	}

	a.Status = domain.Status(status)
	a.AssessmentDate, _ = time.Parse(timeFormat, assessmentDate)
	a.AuditDetails.CreatedTime, _ = time.Parse(timeFormat, createdTime)
	a.AuditDetails.ModifiedTime, _ = time.Parse(timeFormat, modifiedTime)

	if err := json.Unmarshal([]byte(owners), &a.Owners); err != nil {
		return domain.Assessment{}, fmt.Errorf("decoding owners: %w", err)
	}
	if err := json.Unmarshal([]byte(units), &a.Units); err != nil {
		return domain.Assessment{}, fmt.Errorf("decoding units: %w", err)
	}
	if err := json.Unmarshal([]byte(documents), &a.Documents); err != nil {
		return domain.Assessment{}, fmt.Errorf("decoding documents: %w", err)
	}
	if workflow.Valid {
		a.Workflow = &domain.ProcessInstance{}
		if err := json.Unmarshal([]byte(workflow.String), a.Workflow); err != nil {
			return domain.Assessment{}, fmt.Errorf("decoding workflow: %w", err)
		}
	}

	return a, nil
}
