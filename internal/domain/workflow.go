package domain

// BusinessServiceAssessment is the workflow type assessments are routed
// through.
const BusinessServiceAssessment = "ASMT"

// Workflow actions understood by the default assessment business service.
const (
	ActionInitiate = "INITIATE"
	ActionApprove  = "APPROVE"
	ActionReject   = "REJECT"
)

// WorkflowState is what the workflow engine reports after a transition:
// the state's name and the raw application status to map onto Status.
type WorkflowState struct {
	Name              string
	ApplicationStatus string
}

// ProcessInstance is an assessment's slice of the externally managed
// approval state machine.
type ProcessInstance struct {
	TenantID        string
	BusinessService string
	ModuleName      string
	Action          string
	Comment         string
	Assignees       []string
	State           WorkflowState
}

// ProcessInstanceRequest is the payload sent to the workflow engine to
// initiate or advance a process instance.
type ProcessInstanceRequest struct {
	RequestInfo     RequestInfo
	ProcessInstance ProcessInstance
}

// ActionDefinition names a transition an actor may take out of a state.
type ActionDefinition struct {
	Action    string
	NextState string
}

// StateDefinition describes one state of a business service: whether the
// application payload may still be edited there, the application status it
// maps to, and the outgoing actions.
type StateDefinition struct {
	Name              string
	ApplicationStatus string
	IsStateUpdatable  bool
	IsTerminal        bool
	Actions           []ActionDefinition
}

// BusinessService is the external definition of valid states and
// transitions for one workflow type within a tenant.
type BusinessService struct {
	TenantID string
	Code     string
	States   []StateDefinition
}

// StateByName returns the definition of the named state, if present.
func (b BusinessService) StateByName(name string) (StateDefinition, bool) {
	for _, s := range b.States {
		if s.Name == name {
			return s, true
		}
	}
	return StateDefinition{}, false
}
