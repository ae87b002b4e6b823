package app

import (
	"context"

	"github.com/neomorfeo/assessiq/internal/domain"
)

// AssessmentService orchestrates the assessment lifecycle: creation,
// conditional entry into the workflow, tax recalculation, retirement of
// stale demands, and the final event hand-off. It is the sole entry
// point; collaborators are ports so tests substitute doubles.
//
// There is no local recovery: every collaborator failure aborts the
// remaining steps of the current operation and surfaces unchanged. A
// failure after calculation or demand retirement but before the event
// publish leaves stored state and published-event state divergent; that
// is accepted behavior requiring operator reconciliation, not a bug.
type AssessmentService struct {
	cfg        *Config
	store      domain.AssessmentStore
	properties domain.PropertyResolver
	validator  domain.Validator
	enricher   domain.Enricher
	workflow   *WorkflowStateSync
	demands    *DemandLifecycleManager
	calc       *CalculationTrigger
	diff       *DiffTriggerEvaluator
	publisher  domain.EventPublisher
}

// NewAssessmentService wires the orchestrator from its collaborators.
func NewAssessmentService(
	cfg *Config,
	store domain.AssessmentStore,
	properties domain.PropertyResolver,
	validator domain.Validator,
	enricher domain.Enricher,
	workflow *WorkflowStateSync,
	demands *DemandLifecycleManager,
	calc *CalculationTrigger,
	publisher domain.EventPublisher,
) *AssessmentService {
	return &AssessmentService{
		cfg:        cfg,
		store:      store,
		properties: properties,
		validator:  validator,
		enricher:   enricher,
		workflow:   workflow,
		demands:    demands,
		calc:       calc,
		diff:       NewDiffTriggerEvaluator(cfg.TriggerFields, cfg.TriggerObjects),
		publisher:  publisher,
	}
}

// Create runs the create use case: resolve property, validate, enrich,
// reject duplicates, branch on workflow configuration, retire stale
// demands, publish the create event last.
//
// The uniqueness check is check-then-act: two concurrent creates for the
// same (property, year) can both pass it. The invariant proper is owned
// by the store's unique constraint; this check is a fast-path rejection.
func (s *AssessmentService) Create(ctx context.Context, request *domain.AssessmentRequest) (domain.Assessment, error) {
	property, err := s.properties.Resolve(ctx, *request)
	if err != nil {
		return domain.Assessment{}, err
	}

	if err := s.validator.ValidateCreate(*request, property); err != nil {
		return domain.Assessment{}, err
	}

	if err := s.enricher.EnrichCreate(request); err != nil {
		return domain.Assessment{}, err
	}

	active := domain.StatusActive
	existing, err := s.store.Search(ctx, domain.SearchCriteria{
		TenantID:      request.Assessment.TenantID,
		PropertyIDs:   []string{property.PropertyID},
		FinancialYear: request.Assessment.FinancialYear,
		Status:        &active,
	})
	if err != nil {
		return domain.Assessment{}, err
	}
	if len(existing) > 0 {
		return domain.Assessment{}, &domain.DuplicateAssessmentError{
			PropertyID:    property.PropertyID,
			FinancialYear: request.Assessment.FinancialYear,
		}
	}

	if s.cfg.WorkflowEnabled {
		state, err := s.workflow.Initiate(ctx, initiationRequest(request))
		if err != nil {
			return domain.Assessment{}, err
		}
		request.Assessment.Workflow.State = state
		request.Assessment.Status = domain.StatusInWorkflow
	} else {
		if err := s.calc.Calculate(ctx, request.Assessment, property); err != nil {
			return domain.Assessment{}, err
		}
	}

	if err := s.demands.RetireStaleDemands(ctx, *request); err != nil {
		return domain.Assessment{}, err
	}

	if err := s.publisher.Publish(ctx, TopicCreateAssessment, *request); err != nil {
		return domain.Assessment{}, err
	}

	return request.Assessment, nil
}

// Update runs the update use case. The stored assessment is always
// re-fetched as the diff baseline; a client-supplied "previous" value is
// never trusted, which prevents trigger spoofing.
func (s *AssessmentService) Update(ctx context.Context, request *domain.AssessmentRequest) (domain.Assessment, error) {
	property, err := s.properties.Resolve(ctx, *request)
	if err != nil {
		return domain.Assessment{}, err
	}

	if err := s.enricher.EnrichUpdate(request, property); err != nil {
		return domain.Assessment{}, err
	}

	stored, err := s.store.GetByKey(ctx, request.Assessment.Key())
	if err != nil {
		return domain.Assessment{}, err
	}

	// The engine state comes from the stored baseline, never the client.
	if request.Assessment.Workflow != nil && stored.Workflow != nil {
		request.Assessment.Workflow.State = stored.Workflow.State
	}

	triggered := s.diff.Evaluate(request.Assessment, stored)

	if err := s.validator.ValidateUpdate(*request, stored, property, triggered); err != nil {
		return domain.Assessment{}, err
	}

	switch {
	case (request.Assessment.Status == domain.StatusInWorkflow || triggered) && s.cfg.WorkflowEnabled:
		if err := s.advanceWorkflow(ctx, request, property); err != nil {
			return domain.Assessment{}, err
		}
		if err := s.publisher.Publish(ctx, TopicUpdateAssessment, *request); err != nil {
			return domain.Assessment{}, err
		}

	case !s.cfg.WorkflowEnabled:
		if err := s.calc.Calculate(ctx, request.Assessment, property); err != nil {
			return domain.Assessment{}, err
		}
		if err := s.publisher.Publish(ctx, TopicUpdateAssessment, *request); err != nil {
			return domain.Assessment{}, err
		}

	default:
		// Workflow enabled but nothing triggered it and the status is not
		// pending: silent no-op, no state change, no event. Existing
		// behavior, preserved deliberately.
	}

	return request.Assessment, nil
}

// advanceWorkflow routes an update through the workflow engine and syncs
// the resulting state and status back onto the assessment.
func (s *AssessmentService) advanceWorkflow(ctx context.Context, request *domain.AssessmentRequest, property domain.Property) error {
	bs, err := s.workflow.BusinessService(ctx, request.Assessment.TenantID, domain.BusinessServiceAssessment)
	if err != nil {
		return err
	}

	if err := s.enricher.EnrichProcessInstance(request, property); err != nil {
		return err
	}

	// While the current state still permits edits, re-run update
	// enrichment once more: a server-side correction window before the
	// payload is forwarded to the engine. A design seam, kept.
	if s.workflow.IsStateUpdatable(request.Assessment.Workflow.State.Name, bs) {
		if err := s.enricher.EnrichUpdate(request, property); err != nil {
			return err
		}
	}

	state, err := s.workflow.Advance(ctx, domain.ProcessInstanceRequest{
		RequestInfo:     request.RequestInfo,
		ProcessInstance: *request.Assessment.Workflow,
	})
	if err != nil {
		return err
	}

	status, err := s.workflow.MapStatus(state.ApplicationStatus)
	if err != nil {
		return err
	}

	request.Assessment.Workflow.State = state
	request.Assessment.Status = status

	if IsDemandTriggerState(state.Name, s.cfg.DemandTriggerState) {
		if err := s.calc.Calculate(ctx, request.Assessment, property); err != nil {
			return err
		}
	}

	return nil
}

// Search returns assessments matching the criteria.
func (s *AssessmentService) Search(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Assessment, error) {
	return s.store.Search(ctx, criteria)
}

// PlainSearch is the normalized bulk-search surface: limits are clamped
// to the configured maximum, unset limit/offset fall back to defaults,
// and without direct identifier filters candidate assessment numbers are
// resolved first, short-circuiting to empty when none match.
func (s *AssessmentService) PlainSearch(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Assessment, error) {
	limit := s.cfg.DefaultLimit
	if criteria.Limit != nil {
		limit = *criteria.Limit
		if limit > s.cfg.MaxSearchLimit {
			limit = s.cfg.MaxSearchLimit
		}
	}
	offset := s.cfg.DefaultOffset
	if criteria.Offset != nil {
		offset = *criteria.Offset
	}

	scoped := domain.SearchCriteria{
		TenantID: criteria.TenantID,
		Limit:    &limit,
		Offset:   &offset,
	}

	if criteria.HasDirectFilters() {
		scoped.IDs = criteria.IDs
		scoped.PropertyIDs = criteria.PropertyIDs
		scoped.AssessmentNumbers = criteria.AssessmentNumbers
	} else {
		numbers, err := s.store.FetchNumbers(ctx, criteria)
		if err != nil {
			return nil, err
		}
		if len(numbers) == 0 {
			return []domain.Assessment{}, nil
		}
		scoped.AssessmentNumbers = numbers
	}

	return s.store.Search(ctx, scoped)
}

// initiationRequest prepares the workflow-initiation payload for a
// freshly enriched create request.
func initiationRequest(request *domain.AssessmentRequest) domain.ProcessInstanceRequest {
	if request.Assessment.Workflow == nil {
		request.Assessment.Workflow = &domain.ProcessInstance{}
	}
	wf := request.Assessment.Workflow
	wf.TenantID = request.Assessment.TenantID
	wf.BusinessService = domain.BusinessServiceAssessment
	wf.ModuleName = "PT"
	if wf.Action == "" {
		wf.Action = domain.ActionInitiate
	}
	return domain.ProcessInstanceRequest{
		RequestInfo:     request.RequestInfo,
		ProcessInstance: *wf,
	}
}
