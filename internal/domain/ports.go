package domain

import "context"

// AssessmentStore defines the persistence contract for assessments.
// Upsert is used by the event worker applying published snapshots; the
// orchestrator itself only reads.
type AssessmentStore interface {
	GetByKey(ctx context.Context, key Key) (Assessment, error)
	Search(ctx context.Context, criteria SearchCriteria) ([]Assessment, error)
	FetchNumbers(ctx context.Context, criteria SearchCriteria) ([]string, error)
	Upsert(ctx context.Context, assessment Assessment) error
}

// PropertyResolver resolves the property an assessment refers to.
type PropertyResolver interface {
	Resolve(ctx context.Context, request AssessmentRequest) (Property, error)
}

// Validator runs content validation. Rule content lives behind this port
// so the orchestrator stays rule-agnostic.
type Validator interface {
	ValidateCreate(request AssessmentRequest, property Property) error
	ValidateUpdate(request AssessmentRequest, stored Assessment, property Property, workflowTriggered bool) error
}

// Enricher mutates a request in place with derived identifiers and audit
// fields.
type Enricher interface {
	EnrichCreate(request *AssessmentRequest) error
	EnrichUpdate(request *AssessmentRequest, property Property) error
	EnrichProcessInstance(request *AssessmentRequest, property Property) error
}

// WorkflowEngine is the external approval state machine.
type WorkflowEngine interface {
	BusinessService(ctx context.Context, tenantID, code string) (BusinessService, error)
	Transition(ctx context.Context, request ProcessInstanceRequest) (WorkflowState, error)
}

// BillingService owns demands. This core only reads them and flips their
// status; amounts pass through opaque.
type BillingService interface {
	FetchDemands(ctx context.Context, search DemandSearch) ([]Demand, error)
	UpdateDemands(ctx context.Context, request DemandUpdateRequest) ([]Demand, error)
}

// CalculationEngine computes owed tax for an (assessment, property) pair.
// Calls are idempotent from the caller's point of view.
type CalculationEngine interface {
	Calculate(ctx context.Context, assessment Assessment, property Property) error
}

// EventPublisher hands create/update events to downstream consumers.
// The hand-off is fire-and-forget: delivery is at-least-once and no
// acknowledgment is awaited.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, request AssessmentRequest) error
}
