package app

import "github.com/neomorfeo/assessiq/internal/domain"

// Field identifiers produced by the diff. Configuration trigger lists
// refer to these exact strings.
const (
	FieldFinancialYear  = "financialYear"
	FieldAssessmentDate = "assessmentDate"
	FieldSource         = "source"
	FieldChannel        = "channel"
	FieldOwners         = "owners"
	FieldUnits          = "units"
)

// Object kind identifiers produced by the diff for newly attached nested
// structures.
const (
	ObjectDocument = "Document"
	ObjectUnit     = "Unit"
)

// DiffTriggerEvaluator decides whether a mutation must enter the workflow
// path. It is a pure function over the proposed and stored assessments
// plus the configured trigger sets; no I/O, no side effects.
type DiffTriggerEvaluator struct {
	triggerFields  map[string]struct{}
	triggerObjects map[string]struct{}
}

// NewDiffTriggerEvaluator builds an evaluator from trigger sets already
// parsed by NewConfig.
func NewDiffTriggerEvaluator(triggerFields, triggerObjects map[string]struct{}) *DiffTriggerEvaluator {
	return &DiffTriggerEvaluator{
		triggerFields:  triggerFields,
		triggerObjects: triggerObjects,
	}
}

// Evaluate reports whether the change from stored to next touches a
// configured trigger field or attaches a configured trigger object kind.
func (e *DiffTriggerEvaluator) Evaluate(next, stored domain.Assessment) bool {
	for _, field := range ChangedFields(next, stored) {
		if _, ok := e.triggerFields[field]; ok {
			return true
		}
	}
	for _, kind := range AddedObjects(next, stored) {
		if _, ok := e.triggerObjects[kind]; ok {
			return true
		}
	}
	return false
}

// ChangedFields computes the semantic diff of simple fields between the
// proposed and stored assessments. Collection-valued fields compare
// order-independently.
func ChangedFields(next, stored domain.Assessment) []string {
	var changed []string

	if next.FinancialYear != stored.FinancialYear {
		changed = append(changed, FieldFinancialYear)
	}
	if !next.AssessmentDate.Equal(stored.AssessmentDate) {
		changed = append(changed, FieldAssessmentDate)
	}
	if next.Source != stored.Source {
		changed = append(changed, FieldSource)
	}
	if next.Channel != stored.Channel {
		changed = append(changed, FieldChannel)
	}
	if !sameOwners(next.Owners, stored.Owners) {
		changed = append(changed, FieldOwners)
	}
	if !sameUnits(next.Units, stored.Units) {
		changed = append(changed, FieldUnits)
	}

	return changed
}

// AddedObjects reports the kinds of nested structures present in next but
// entirely absent in stored.
func AddedObjects(next, stored domain.Assessment) []string {
	var added []string
	if len(stored.Documents) == 0 && len(next.Documents) > 0 {
		added = append(added, ObjectDocument)
	}
	if len(stored.Units) == 0 && len(next.Units) > 0 {
		added = append(added, ObjectUnit)
	}
	return added
}

func sameOwners(a, b []domain.OwnerInfo) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[domain.OwnerInfo]int, len(a))
	for _, o := range a {
		seen[o]++
	}
	for _, o := range b {
		seen[o]--
		if seen[o] < 0 {
			return false
		}
	}
	return true
}

func sameUnits(a, b []domain.Unit) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[domain.Unit]int, len(a))
	for _, u := range a {
		seen[u]++
	}
	for _, u := range b {
		seen[u]--
		if seen[u] < 0 {
			return false
		}
	}
	return true
}
