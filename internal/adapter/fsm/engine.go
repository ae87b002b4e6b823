// Package fsm provides an in-process WorkflowEngine driven by
// BusinessService definitions. External engines plug in behind the same
// domain port; this adapter keeps single-node deployments self-contained.
package fsm

import (
	"context"
	"errors"
	"fmt"

	loopfsm "github.com/looplab/fsm"

	"github.com/neomorfeo/assessiq/internal/domain"
)

// Compile-time check: Engine implements domain.WorkflowEngine.
var _ domain.WorkflowEngine = (*Engine)(nil)

// StateOpen is the implicit state of a process instance that has not
// been initiated yet.
const StateOpen = "OPEN"

// DefaultAssessmentService is the built-in workflow definition for
// assessments: INITIATE opens the approval loop, APPROVE activates the
// assessment, REJECT cancels it.
func DefaultAssessmentService(tenantID string) domain.BusinessService {
	return domain.BusinessService{
		TenantID: tenantID,
		Code:     domain.BusinessServiceAssessment,
		States: []domain.StateDefinition{
			{
				Name:    StateOpen,
				Actions: []domain.ActionDefinition{{Action: domain.ActionInitiate, NextState: "INITIATED"}},
			},
			{
				Name:              "INITIATED",
				ApplicationStatus: string(domain.StatusInWorkflow),
				IsStateUpdatable:  true,
				Actions: []domain.ActionDefinition{
					{Action: domain.ActionApprove, NextState: "APPROVED"},
					{Action: domain.ActionReject, NextState: "REJECTED"},
				},
			},
			{
				Name:              "APPROVED",
				ApplicationStatus: string(domain.StatusActive),
				IsTerminal:        true,
			},
			{
				Name:              "REJECTED",
				ApplicationStatus: string(domain.StatusCancelled),
				IsTerminal:        true,
			},
		},
	}
}

// Engine validates and applies workflow transitions using looplab/fsm.
// It creates a short-lived FSM instance per Transition call, initialized
// with the process instance's current state, because looplab/fsm tracks
// the current state internally.
type Engine struct {
	services map[string]domain.BusinessService
}

// New creates an engine serving the given business service definitions.
// With no definitions it serves the default assessment service.
func New(services ...domain.BusinessService) *Engine {
	e := &Engine{services: make(map[string]domain.BusinessService)}
	if len(services) == 0 {
		services = []domain.BusinessService{DefaultAssessmentService("")}
	}
	for _, bs := range services {
		e.services[bs.Code] = bs
	}
	return e
}

// BusinessService returns the definition for the given workflow code,
// bound to the tenant.
func (e *Engine) BusinessService(_ context.Context, tenantID, code string) (domain.BusinessService, error) {
	bs, ok := e.services[code]
	if !ok {
		return domain.BusinessService{}, fmt.Errorf("unknown business service %q", code)
	}
	bs.TenantID = tenantID
	return bs, nil
}

// Transition applies the request's action to its current state and
// returns the resulting workflow state.
func (e *Engine) Transition(ctx context.Context, request domain.ProcessInstanceRequest) (domain.WorkflowState, error) {
	pi := request.ProcessInstance

	bs, ok := e.services[pi.BusinessService]
	if !ok {
		return domain.WorkflowState{}, fmt.Errorf("unknown business service %q", pi.BusinessService)
	}

	current := pi.State.Name
	if current == "" {
		current = StateOpen
	}

	machine := loopfsm.NewFSM(current, eventsFor(bs), nil)

	if err := machine.Event(ctx, pi.Action); err != nil {
		var invalidEvent loopfsm.InvalidEventError
		var noTransition loopfsm.NoTransitionError
		if errors.As(err, &invalidEvent) || errors.As(err, &noTransition) {
			return domain.WorkflowState{}, fmt.Errorf("action %q is not valid from state %q", pi.Action, current)
		}
		return domain.WorkflowState{}, err
	}

	next, ok := bs.StateByName(machine.Current())
	if !ok {
		return domain.WorkflowState{}, fmt.Errorf("transition landed in undefined state %q", machine.Current())
	}

	return domain.WorkflowState{
		Name:              next.Name,
		ApplicationStatus: next.ApplicationStatus,
	}, nil
}

// eventsFor converts a business service definition into looplab/fsm
// EventDesc format, consolidating actions with the same name and
// destination into a single EventDesc with multiple source states.
func eventsFor(bs domain.BusinessService) []loopfsm.EventDesc {
	type key struct {
		action string
		dst    string
	}
	grouped := make(map[key][]string)
	order := make([]key, 0)

	for _, state := range bs.States {
		for _, action := range state.Actions {
			k := key{action: action.Action, dst: action.NextState}
			if _, exists := grouped[k]; !exists {
				order = append(order, k)
			}
			grouped[k] = append(grouped[k], state.Name)
		}
	}

	out := make([]loopfsm.EventDesc, 0, len(order))
	for _, k := range order {
		out = append(out, loopfsm.EventDesc{
			Name: k.action,
			Src:  grouped[k],
			Dst:  k.dst,
		})
	}
	return out
}
