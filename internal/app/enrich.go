package app

import (
	"fmt"
	"time"

	"github.com/neomorfeo/assessiq/internal/domain"
)

// EnrichmentService is the default Enricher: it stamps derived
// identifiers and audit fields onto requests in place. It stays behind
// the port so tests and alternative deployments can substitute it.
type EnrichmentService struct {
	now func() time.Time
}

// NewEnrichmentService creates the default enricher. A nil clock
// defaults to time.Now.
func NewEnrichmentService(now func() time.Time) *EnrichmentService {
	if now == nil {
		now = time.Now
	}
	return &EnrichmentService{now: now}
}

// EnrichCreate assigns the assessment id and number, stamps audit
// fields, and defaults the status for the non-workflow path. The
// orchestrator overrides the status when routing through the workflow.
func (e *EnrichmentService) EnrichCreate(request *domain.AssessmentRequest) error {
	id, err := generateID()
	if err != nil {
		return fmt.Errorf("generating assessment id: %w", err)
	}

	a := &request.Assessment
	a.ID = id
	a.AssessmentNumber = assessmentNumber(a.FinancialYear, id)
	a.Status = domain.StatusActive

	now := e.now().UTC()
	if a.AssessmentDate.IsZero() {
		a.AssessmentDate = now
	}
	a.AuditDetails = domain.AuditDetails{
		CreatedBy:    request.RequestInfo.UserID,
		CreatedTime:  now,
		ModifiedBy:   request.RequestInfo.UserID,
		ModifiedTime: now,
	}
	return nil
}

// EnrichUpdate refreshes the modification audit fields and rebinds the
// assessment to its resolved property.
func (e *EnrichmentService) EnrichUpdate(request *domain.AssessmentRequest, property domain.Property) error {
	a := &request.Assessment
	a.PropertyID = property.PropertyID
	a.AuditDetails.ModifiedBy = request.RequestInfo.UserID
	a.AuditDetails.ModifiedTime = e.now().UTC()
	return nil
}

// EnrichProcessInstance builds the process-instance payload for the
// workflow engine out of the request.
func (e *EnrichmentService) EnrichProcessInstance(request *domain.AssessmentRequest, property domain.Property) error {
	if request.Assessment.Workflow == nil {
		request.Assessment.Workflow = &domain.ProcessInstance{}
	}
	wf := request.Assessment.Workflow
	wf.TenantID = request.Assessment.TenantID
	wf.BusinessService = domain.BusinessServiceAssessment
	wf.ModuleName = "PT"
	if len(wf.Assignees) == 0 {
		wf.Assignees = property.OwnerIDs
	}
	return nil
}
