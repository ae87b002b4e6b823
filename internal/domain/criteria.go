package domain

// SearchCriteria holds optional filters for assessment lookups.
// Limit and Offset distinguish "unset" (nil) from zero so the plain
// search surface can apply configured defaults.
type SearchCriteria struct {
	TenantID          string
	IDs               []string
	PropertyIDs       []string
	AssessmentNumbers []string
	FinancialYear     string
	Status            *Status
	Limit             *int
	Offset            *int
}

// HasDirectFilters reports whether the caller supplied any identifier
// filter. Direct filters bypass the assessment-number pre-resolution in
// plain search.
func (c SearchCriteria) HasDirectFilters() bool {
	return len(c.IDs) > 0 || len(c.PropertyIDs) > 0 || len(c.AssessmentNumbers) > 0
}
