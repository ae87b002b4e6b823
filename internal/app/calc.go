package app

import (
	"context"

	"github.com/neomorfeo/assessiq/internal/domain"
)

// CalculationTrigger invokes tax (re)computation for an
// (assessment, property) pair. The computation itself is the engine's
// business; failures surface as CalculationError and abort the enclosing
// operation.
type CalculationTrigger struct {
	engine domain.CalculationEngine
}

// NewCalculationTrigger creates a trigger over the calculation port.
func NewCalculationTrigger(engine domain.CalculationEngine) *CalculationTrigger {
	return &CalculationTrigger{engine: engine}
}

// Calculate computes tax now. Safe to call again on a retry at a higher
// layer; idempotency is the engine's contract.
func (t *CalculationTrigger) Calculate(ctx context.Context, assessment domain.Assessment, property domain.Property) error {
	if err := t.engine.Calculate(ctx, assessment, property); err != nil {
		return &domain.CalculationError{Err: err}
	}
	return nil
}
