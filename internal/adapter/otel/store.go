package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/assessiq/internal/domain"
)

const tracerName = "github.com/neomorfeo/assessiq/internal/adapter/otel"

// TracingStore wraps a domain.AssessmentStore with OpenTelemetry
// tracing. Each method creates a span with semantic attributes and
// records errors.
type TracingStore struct {
	next   domain.AssessmentStore
	tracer trace.Tracer
}

// Compile-time check: TracingStore implements domain.AssessmentStore.
var _ domain.AssessmentStore = (*TracingStore)(nil)

// NewTracingStore creates a tracing decorator around the given store.
func NewTracingStore(next domain.AssessmentStore) *TracingStore {
	return &TracingStore{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (s *TracingStore) GetByKey(ctx context.Context, key domain.Key) (domain.Assessment, error) {
	ctx, span := s.tracer.Start(ctx, "AssessmentStore.GetByKey",
		trace.WithAttributes(
			attribute.String("assessment.id", key.ID),
			attribute.String("tenant.id", key.TenantID),
		),
	)
	defer span.End()

	assessment, err := s.next.GetByKey(ctx, key)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return assessment, err
}

func (s *TracingStore) Search(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Assessment, error) {
	ctx, span := s.tracer.Start(ctx, "AssessmentStore.Search",
		trace.WithAttributes(
			attribute.String("tenant.id", criteria.TenantID),
			attribute.String("criteria.financial_year", criteria.FinancialYear),
			attribute.Int("criteria.property_ids", len(criteria.PropertyIDs)),
		),
	)
	defer span.End()

	if criteria.Status != nil {
		span.SetAttributes(attribute.String("criteria.status", string(*criteria.Status)))
	}

	assessments, err := s.next.Search(ctx, criteria)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("result.count", len(assessments)))
	}
	return assessments, err
}

func (s *TracingStore) FetchNumbers(ctx context.Context, criteria domain.SearchCriteria) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "AssessmentStore.FetchNumbers",
		trace.WithAttributes(attribute.String("tenant.id", criteria.TenantID)),
	)
	defer span.End()

	numbers, err := s.next.FetchNumbers(ctx, criteria)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("result.count", len(numbers)))
	}
	return numbers, err
}

func (s *TracingStore) Upsert(ctx context.Context, assessment domain.Assessment) error {
	ctx, span := s.tracer.Start(ctx, "AssessmentStore.Upsert",
		trace.WithAttributes(
			attribute.String("assessment.number", assessment.AssessmentNumber),
			attribute.String("assessment.status", string(assessment.Status)),
		),
	)
	defer span.End()

	err := s.next.Upsert(ctx, assessment)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
