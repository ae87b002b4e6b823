package domain

import "time"

// Status represents the lifecycle state of an assessment.
type Status string

const (
	StatusActive     Status = "ACTIVE"
	StatusInactive   Status = "INACTIVE"
	StatusInWorkflow Status = "INWORKFLOW"
	StatusCancelled  Status = "CANCELLED"
)

// ParseStatus maps a raw application status string (as returned by the
// workflow engine) to a Status. Unknown strings are a mapping failure,
// never a silent default.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusActive, StatusInactive, StatusInWorkflow, StatusCancelled:
		return Status(raw), nil
	}
	return "", &UnmappedStatusError{Raw: raw}
}

// OwnerInfo links an assessment to a property owner.
type OwnerInfo struct {
	OwnerID string
	Status  string
}

// Unit is a rateable portion of the assessed property.
type Unit struct {
	ID            string
	UsageCategory string
	OccupancyType string
	BuiltUpArea   float64
}

// Document is a file attached to an assessment. Attaching the first
// document to an existing assessment counts as an object addition for
// workflow-trigger evaluation.
type Document struct {
	ID           string
	DocumentType string
	FileStoreID  string
}

// AuditDetails records who touched the record and when.
type AuditDetails struct {
	CreatedBy    string
	CreatedTime  time.Time
	ModifiedBy   string
	ModifiedTime time.Time
}

// Assessment is a property's tax obligation record for a financial year.
// Identity is (PropertyID, FinancialYear) plus a generated AssessmentNumber;
// at most one ACTIVE assessment may exist per (PropertyID, FinancialYear).
type Assessment struct {
	ID               string
	AssessmentNumber string
	TenantID         string
	PropertyID       string
	FinancialYear    string
	AssessmentDate   time.Time
	Source           string
	Channel          string
	Status           Status
	Owners           []OwnerInfo
	Units            []Unit
	Documents        []Document
	Workflow         *ProcessInstance
	AuditDetails     AuditDetails
}

// Key identifies a stored assessment within a tenant.
type Key struct {
	TenantID string
	ID       string
}

// Key returns the store key for the assessment.
func (a Assessment) Key() Key {
	return Key{TenantID: a.TenantID, ID: a.ID}
}

// RequestInfo carries caller metadata alongside a mutation.
type RequestInfo struct {
	UserID        string
	CorrelationID string
}

// AssessmentRequest is the unit of work handed to the orchestrator:
// the proposed assessment plus request metadata. Enrichment mutates it
// in place.
type AssessmentRequest struct {
	RequestInfo RequestInfo
	Assessment  Assessment
}

// FinancialYearPeriod resolves a fiscal period string like "2023-24" to
// its [start, end] timestamps: April 1 of the first year through the last
// instant of March 31 of the following year, UTC.
func FinancialYearPeriod(financialYear string) (time.Time, time.Time, error) {
	var startYear, endSuffix int
	if _, err := parseFinancialYear(financialYear, &startYear, &endSuffix); err != nil {
		return time.Time{}, time.Time{}, err
	}
	from := time.Date(startYear, time.April, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(startYear+1, time.March, 31, 23, 59, 59, 0, time.UTC)
	return from, to, nil
}

// IsValidFinancialYear reports whether s has the "YYYY-YY" shape with
// consecutive years (e.g. "2023-24").
func IsValidFinancialYear(s string) bool {
	var startYear, endSuffix int
	ok, err := parseFinancialYear(s, &startYear, &endSuffix)
	return err == nil && ok
}

func parseFinancialYear(s string, startYear, endSuffix *int) (bool, error) {
	if len(s) != 7 || s[4] != '-' {
		return false, &ValidationError{Reason: "financial year must look like 2023-24"}
	}
	for i, c := range s {
		if i == 4 {
			continue
		}
		if c < '0' || c > '9' {
			return false, &ValidationError{Reason: "financial year must look like 2023-24"}
		}
	}
	*startYear = int(s[0]-'0')*1000 + int(s[1]-'0')*100 + int(s[2]-'0')*10 + int(s[3]-'0')
	*endSuffix = int(s[5]-'0')*10 + int(s[6]-'0')
	if (*startYear+1)%100 != *endSuffix {
		return false, &ValidationError{Reason: "financial year end must follow the start year"}
	}
	return true, nil
}
