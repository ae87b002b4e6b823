package app

import (
	"context"
	"strings"

	"github.com/neomorfeo/assessiq/internal/domain"
)

// WorkflowStateSync wraps the workflow engine port: it initiates and
// advances process instances, answers updatability lookups, and maps raw
// engine statuses onto the assessment status enum.
type WorkflowStateSync struct {
	engine domain.WorkflowEngine
}

// NewWorkflowStateSync creates a sync wrapper around the given engine.
func NewWorkflowStateSync(engine domain.WorkflowEngine) *WorkflowStateSync {
	return &WorkflowStateSync{engine: engine}
}

// Initiate starts a process instance for the request's assessment and
// returns the resulting state. Engine failures are fatal to the enclosing
// operation.
func (s *WorkflowStateSync) Initiate(ctx context.Context, request domain.ProcessInstanceRequest) (domain.WorkflowState, error) {
	state, err := s.engine.Transition(ctx, request)
	if err != nil {
		return domain.WorkflowState{}, &domain.WorkflowEngineError{Op: "initiate", Err: err}
	}
	return state, nil
}

// Advance moves an existing process instance along by the request's
// action and returns the resulting state.
func (s *WorkflowStateSync) Advance(ctx context.Context, request domain.ProcessInstanceRequest) (domain.WorkflowState, error) {
	state, err := s.engine.Transition(ctx, request)
	if err != nil {
		return domain.WorkflowState{}, &domain.WorkflowEngineError{Op: "advance", Err: err}
	}
	return state, nil
}

// BusinessService fetches the workflow definition for a tenant.
func (s *WorkflowStateSync) BusinessService(ctx context.Context, tenantID, code string) (domain.BusinessService, error) {
	bs, err := s.engine.BusinessService(ctx, tenantID, code)
	if err != nil {
		return domain.BusinessService{}, &domain.WorkflowEngineError{Op: "business service lookup", Err: err}
	}
	return bs, nil
}

// IsStateUpdatable reports whether the named state still permits payload
// edits. Pure lookup against the definition; an unknown state is not
// updatable.
func (s *WorkflowStateSync) IsStateUpdatable(stateName string, bs domain.BusinessService) bool {
	def, ok := bs.StateByName(stateName)
	return ok && def.IsStateUpdatable
}

// MapStatus converts the raw application status string into a Status.
// It fails closed: unrecognized strings yield an UnmappedStatusError,
// never a default.
func (s *WorkflowStateSync) MapStatus(raw string) (domain.Status, error) {
	return domain.ParseStatus(raw)
}

// IsDemandTriggerState reports whether the state name matches the
// configured demand-trigger state, case-insensitively.
func IsDemandTriggerState(stateName, configured string) bool {
	return configured != "" && strings.EqualFold(stateName, configured)
}
