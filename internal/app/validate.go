package app

import "github.com/neomorfeo/assessiq/internal/domain"

// RequestValidator is the default Validator. The rule set here is
// deliberately thin: structural checks only. Tenant-specific rule
// content belongs to whatever implementation replaces this behind the
// port.
type RequestValidator struct{}

// NewRequestValidator creates the default validator.
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{}
}

// ValidateCreate checks a create request against the resolved property.
func (v *RequestValidator) ValidateCreate(request domain.AssessmentRequest, property domain.Property) error {
	a := request.Assessment
	if a.TenantID == "" {
		return &domain.ValidationError{Reason: "tenantId is required"}
	}
	if !domain.IsValidFinancialYear(a.FinancialYear) {
		return &domain.ValidationError{Reason: "financial year must look like 2023-24"}
	}
	if a.PropertyID != property.PropertyID {
		return &domain.ValidationError{Reason: "assessment does not reference the resolved property"}
	}
	if len(a.Owners) == 0 {
		return &domain.ValidationError{Reason: "at least one owner is required"}
	}
	return nil
}

// ValidateUpdate checks an update against the stored baseline. Identity
// fields are immutable; a mutation entering the workflow path must carry
// an actionable workflow payload.
func (v *RequestValidator) ValidateUpdate(request domain.AssessmentRequest, stored domain.Assessment, property domain.Property, workflowTriggered bool) error {
	a := request.Assessment
	if a.PropertyID != stored.PropertyID {
		return &domain.ValidationError{Reason: "propertyId cannot change on update"}
	}
	if a.AssessmentNumber != stored.AssessmentNumber {
		return &domain.ValidationError{Reason: "assessmentNumber cannot change on update"}
	}
	if stored.Status == domain.StatusCancelled {
		return &domain.ValidationError{Reason: "cancelled assessments cannot be updated"}
	}
	if (workflowTriggered || a.Status == domain.StatusInWorkflow) &&
		(a.Workflow == nil || a.Workflow.Action == "") {
		return &domain.ValidationError{Reason: "workflow action is required for this update"}
	}
	return nil
}
