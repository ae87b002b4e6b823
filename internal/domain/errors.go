package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrAssessmentNotFound = errors.New("assessment not found")
)

// DuplicateAssessmentError is returned when an ACTIVE assessment already
// exists for the (propertyId, financialYear) pair.
type DuplicateAssessmentError struct {
	PropertyID    string
	FinancialYear string
}

func (e *DuplicateAssessmentError) Error() string {
	return fmt.Sprintf("property %s already has an active assessment for financial year %s", e.PropertyID, e.FinancialYear)
}

// PropertyNotFoundError is returned when the referenced property cannot
// be resolved.
type PropertyNotFoundError struct {
	PropertyID string
}

func (e *PropertyNotFoundError) Error() string {
	return fmt.Sprintf("property %q not found", e.PropertyID)
}

// ValidationError is returned when a create or update request violates a
// content rule.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// WorkflowEngineError wraps a failed call to the workflow engine. The
// enclosing operation aborts; there is no local retry.
type WorkflowEngineError struct {
	Op  string
	Err error
}

func (e *WorkflowEngineError) Error() string {
	return fmt.Sprintf("workflow engine: %s: %v", e.Op, e.Err)
}

func (e *WorkflowEngineError) Unwrap() error { return e.Err }

// UnmappedStatusError is returned when the workflow engine reports an
// application status this core does not recognize. Mapping fails closed.
type UnmappedStatusError struct {
	Raw string
}

func (e *UnmappedStatusError) Error() string {
	return fmt.Sprintf("unmapped application status %q", e.Raw)
}

// CalculationError wraps a failed tax computation.
type CalculationError struct {
	Err error
}

func (e *CalculationError) Error() string {
	return fmt.Sprintf("tax calculation: %v", e.Err)
}

func (e *CalculationError) Unwrap() error { return e.Err }

// BillingServiceError wraps a failed call to the billing collaborator.
type BillingServiceError struct {
	Op  string
	Err error
}

func (e *BillingServiceError) Error() string {
	return fmt.Sprintf("billing service: %s: %v", e.Op, e.Err)
}

func (e *BillingServiceError) Unwrap() error { return e.Err }

// ConfigurationError is returned for malformed configuration, e.g. an
// empty entry in a trigger list.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %s: %s", e.Key, e.Reason)
}
